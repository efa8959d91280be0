package main

import (
	"context"
	"log"
	"os"

	"askdb-be/pkg/database"
	"askdb-be/pkg/rag/retrieve"
	"askdb-be/pkg/vectorstore"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, database.PoolConfig{})
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: Extensions (Things GORM AutoMigrate doesn't do)
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate the vector index table
	store := vectorstore.NewStore(db)
	if _, err := store.GetOrCreateCollection(context.Background(), retrieve.CollectionName); err != nil {
		log.Fatal("Error: Migration failed:", err)
	}

	// 5. Approximate nearest-neighbor index for cosine distance
	ivfflat := `CREATE INDEX IF NOT EXISTS idx_schema_embeddings_ann
		ON schema_embeddings USING ivfflat (embedding_value vector_cosine_ops) WITH (lists = 100);`
	if err := db.Exec(ivfflat).Error; err != nil {
		log.Printf("Warn: Failed to create ANN index: %v. Queries fall back to sequential scan.", err)
	}

	log.Println("✅ Migration complete.")
}
