package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	schemaSQL := `
CREATE TABLE IF NOT EXISTS exports (
    id UUID PRIMARY KEY,
    session_id UUID NOT NULL,
    filename VARCHAR(255) NOT NULL,
    format VARCHAR(10) NOT NULL CHECK (format IN ('txt', 'docx')),
    mime_type VARCHAR(255) NOT NULL,
    size BIGINT NOT NULL,
    storage_path TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);`

	if _, err = pool.Exec(ctx, schemaSQL); err != nil {
		log.Fatalf("Failed to create exports table: %v", err)
	}
	log.Println("Created exports table")

	indexes := []struct {
		name string
		sql  string
	}{
		{
			name: "Session lookup",
			sql:  "CREATE INDEX IF NOT EXISTS idx_exports_session ON exports(session_id, created_at DESC);",
		},
	}

	for _, idx := range indexes {
		if _, err = pool.Exec(ctx, idx.sql); err != nil {
			log.Printf("Warning: Failed to create index %s: %v", idx.name, err)
		} else {
			log.Printf("Created index: %s", idx.name)
		}
	}

	fmt.Println("Database schema created successfully")
}
