package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"agentchain/internal/config"
	"agentchain/internal/domain"
	"agentchain/internal/domain/services"
	"agentchain/internal/repository/postgres"
	serviceResource "agentchain/internal/service/resource"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed resources")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: Cannot run --drop-tables in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	// Create repositories and services
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	resourceRepo := postgres.NewResourceRepository(repoConfig)
	resourceService := serviceResource.NewService(resourceRepo, logger)

	// Seed sample resources
	log.Println("Seeding sample resources...")
	for i, req := range getSeedResources() {
		resource, err := resourceService.CreateResource(ctx, req)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				log.Printf("Skipped existing resource: %s", req.Title)
				continue
			}
			log.Printf("Failed to create resource '%s': %v", req.Title, err)
			continue
		}
		log.Printf("Created resource %d: %s (ID: %s)", i+1, resource.Title, resource.ID)
	}

	log.Println("Seeding complete!")
}

// schemaStatements returns the table and index DDL in creation order.
func schemaStatements(tables *postgres.TableNames, tablePrefix string) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Agents + ` (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			system_prompt TEXT NOT NULL,
			model TEXT NOT NULL,
			temperature DOUBLE PRECISION NOT NULL DEFAULT 0.7,
			max_tokens INTEGER NOT NULL DEFAULT 2000,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Resources + ` (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			file_name TEXT NOT NULL,
			file_size BIGINT NOT NULL DEFAULT 0,
			parsed_content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Conversations + ` (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		// agent_id is TEXT, not UUID: built-in agents use slug ids
		// (e.g. "story-generation") while custom agents use UUIDs.
		`CREATE TABLE IF NOT EXISTS ` + tables.Messages + ` (
			id UUID PRIMARY KEY,
			conversation_id UUID NOT NULL REFERENCES ` + tables.Conversations + `(id) ON DELETE CASCADE,
			node_type TEXT NOT NULL,
			content TEXT NOT NULL,
			sort INTEGER NOT NULL,
			agent_id TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `messages_conversation ON ` + tables.Messages + `(conversation_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `messages_conversation_sort ON ` + tables.Messages + `(conversation_id, sort)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `agents_category ON ` + tables.Agents + `(category)`,
	}
}

// runSchema creates tables and indexes if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	for _, ddl := range schemaStatements(tables, tablePrefix) {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Messages,
		tables.Conversations,
		tables.Resources,
		tables.Agents,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  Dropped %s", table)
	}

	return nil
}

// getSeedResources returns sample reference documents for development
func getSeedResources() []*services.CreateResourceRequest {
	return []*services.CreateResourceRequest{
		{
			Title:         "Product Requirements Document",
			Description:   "Complete product requirements document containing functional specifications",
			Type:          "text",
			FileName:      "product-requirements.txt",
			ParsedContent: "The user management system needs to support user registration, login, personal information management and other basic functions...",
		},
		{
			Title:         "User Research Report",
			Description:   "Research report based on user interviews",
			Type:          "text",
			FileName:      "user-research.txt",
			ParsedContent: "Through research on 100 users, we found that users care most about system usability and security...",
		},
		{
			Title:         "Competitive Analysis",
			Description:   "Competitor product feature analysis",
			Type:          "md",
			FileName:      "competitive-analysis.md",
			ParsedContent: "Analysis of mainstream user management systems in the market, including feature comparison and pros/cons analysis...",
		},
		{
			Title:         "Technical Constraints",
			Description:   "Technical implementation constraints",
			Type:          "text",
			FileName:      "technical-constraints.txt",
			ParsedContent: "The system needs to support high concurrency, use microservice architecture, database using MySQL...",
		},
		{
			Title:         "User Story Template",
			Description:   "Standard User Story writing template",
			Type:          "md",
			FileName:      "user-story-template.md",
			ParsedContent: "As a [user role], I want [feature description], so that [value/goal]",
		},
	}
}
