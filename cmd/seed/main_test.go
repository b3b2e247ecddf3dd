package main

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"agentchain/internal/catalog"
	"agentchain/internal/repository/postgres"
)

// Built-in agents carry slug ids while custom agents carry UUIDs, so the
// messages agent_id column must accept both.
func TestMessagesSchemaStoresCatalogAgentIDs(t *testing.T) {
	cat, err := catalog.New()
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}

	slugIDs := 0
	for _, a := range cat.Agents() {
		if _, err := uuid.Parse(a.ID); err != nil {
			slugIDs++
		}
	}
	if slugIDs == 0 {
		t.Fatal("expected at least one built-in agent with a non-UUID id")
	}

	tables := postgres.NewTableNames("test_")
	var messagesDDL string
	for _, ddl := range schemaStatements(tables, "test_") {
		if strings.Contains(ddl, "CREATE TABLE IF NOT EXISTS "+tables.Messages+" ") {
			messagesDDL = ddl
			break
		}
	}
	if messagesDDL == "" {
		t.Fatalf("no CREATE TABLE statement for %s", tables.Messages)
	}

	if strings.Contains(messagesDDL, "agent_id UUID") {
		t.Error("agent_id declared as UUID; slug agent ids would be rejected on insert")
	}
	if !strings.Contains(messagesDDL, "agent_id TEXT") {
		t.Error("agent_id column must be TEXT to store both slug and UUID agent ids")
	}
}

func TestSchemaStatementsCoverAllTables(t *testing.T) {
	tables := postgres.NewTableNames("dev_")
	statements := strings.Join(schemaStatements(tables, "dev_"), "\n")

	for _, table := range []string{tables.Agents, tables.Resources, tables.Conversations, tables.Messages} {
		if !strings.Contains(statements, "CREATE TABLE IF NOT EXISTS "+table+" ") {
			t.Errorf("missing CREATE TABLE for %s", table)
		}
	}
}
