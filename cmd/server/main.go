package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"agentchain/internal/catalog"
	"agentchain/internal/config"
	"agentchain/internal/handler"
	"agentchain/internal/middleware"
	"agentchain/internal/repository/postgres"
	serviceAgent "agentchain/internal/service/agent"
	"agentchain/internal/service/chain"
	serviceConversation "agentchain/internal/service/conversation"
	serviceResource "agentchain/internal/service/resource"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging. DEBUG defaults on outside prod and can be
	// overridden either way.
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if dir := os.Getenv("LOG_DIR"); dir != "" {
		logFile, err := config.SetupLogFile(dir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	agentRepo := postgres.NewAgentRepository(repoConfig)
	resourceRepo := postgres.NewResourceRepository(repoConfig)
	conversationRepo := postgres.NewConversationRepository(repoConfig)
	messageRepo := postgres.NewMessageRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Load the built-in agent catalog
	builtins, err := catalog.New()
	if err != nil {
		log.Fatalf("Failed to load built-in agent catalog: %v", err)
	}
	logger.Info("agent catalog loaded", "builtin_agents", len(builtins.Agents()))

	// Setup LLM providers. The mock provider claims mock- models and sits
	// first so development works without an API key.
	providers := []serviceAgent.Provider{
		serviceAgent.NewMockProvider(),
		serviceAgent.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, logger),
	}

	// Create services
	agentService := serviceAgent.NewService(agentRepo, builtins, cfg.DefaultModel, logger)
	resourceService := serviceResource.NewService(resourceRepo, logger)
	conversationService := serviceConversation.NewService(conversationRepo, messageRepo, txManager, logger)
	executor := serviceAgent.NewExecutor(agentService, providers, logger)

	// The process owns one live session
	session := chain.NewSession(executor, conversationService, logger)

	// Create handlers
	agentHandler := handler.NewAgentHandler(agentService, executor, logger)
	resourceHandler := handler.NewResourceHandler(resourceService, logger)
	conversationHandler := handler.NewConversationHandler(conversationService, logger)
	sessionHandler := handler.NewSessionHandler(session, agentService, resourceService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", sessionHandler.HealthCheck)

	// Agent routes
	mux.HandleFunc("GET /api/agents", agentHandler.ListAgents)
	mux.HandleFunc("POST /api/agents", agentHandler.CreateAgent)
	mux.HandleFunc("GET /api/agents/{id}", agentHandler.GetAgent)
	mux.HandleFunc("PUT /api/agents/{id}", agentHandler.UpdateAgent)
	mux.HandleFunc("DELETE /api/agents/{id}", agentHandler.DeleteAgent)
	mux.HandleFunc("POST /api/agents/{id}/execute", agentHandler.ExecuteAgent)

	// Resource routes
	mux.HandleFunc("GET /api/resources", resourceHandler.ListResources)
	mux.HandleFunc("POST /api/resources", resourceHandler.CreateResource)
	mux.HandleFunc("GET /api/resources/{id}", resourceHandler.GetResource)
	mux.HandleFunc("PUT /api/resources/{id}", resourceHandler.UpdateResource)
	mux.HandleFunc("DELETE /api/resources/{id}", resourceHandler.DeleteResource)

	// Conversation routes
	mux.HandleFunc("GET /api/conversations", conversationHandler.ListConversations)
	mux.HandleFunc("GET /api/conversations/{id}", conversationHandler.GetConversation)
	mux.HandleFunc("PATCH /api/conversations/{id}", conversationHandler.RenameConversation)
	mux.HandleFunc("DELETE /api/conversations/{id}", conversationHandler.DeleteConversation)

	// Session routes
	mux.HandleFunc("GET /api/session", sessionHandler.GetSession)
	mux.HandleFunc("PATCH /api/session/input", sessionHandler.EditInput)
	mux.HandleFunc("POST /api/session/agent", sessionHandler.SelectAgent)
	mux.HandleFunc("POST /api/session/resources", sessionHandler.AttachResource)
	mux.HandleFunc("DELETE /api/session/resources/{id}", sessionHandler.DetachResource)
	mux.HandleFunc("POST /api/session/execute", sessionHandler.Execute)
	mux.HandleFunc("POST /api/session/retry", sessionHandler.Retry)
	mux.HandleFunc("POST /api/session/clear", sessionHandler.Clear)
	mux.HandleFunc("POST /api/session/save", sessionHandler.Save)
	mux.HandleFunc("POST /api/session/load/{conversationId}", sessionHandler.Load)

	// Build middleware chain
	var httpHandler http.Handler = mux
	httpHandler = middleware.Recovery(logger)(httpHandler)

	// CORS - must wrap everything to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second, // Execution rounds block on the LLM provider
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
