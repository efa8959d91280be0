package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"askdb-be/internal/config"
	"askdb-be/pkg/database"
	"askdb-be/pkg/embedding"
	"askdb-be/pkg/rag/retrieve"
	"askdb-be/pkg/vectorstore"

	"gorm.io/datatypes"
)

// schemaDoc is one entry of the seed file: a table name plus the natural
// language description of its schema that gets embedded.
type schemaDoc struct {
	TableName string                 `json:"table_name"`
	Document  string                 `json:"document"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

func main() {
	seedFile := flag.String("file", "schemas.json", "JSON file with schema documents to index")
	flag.Parse()

	cfg := config.Load()

	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.PoolConfig{})
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	var embedder embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embedder = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbedModel)
	} else {
		embedder = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
	}

	raw, err := os.ReadFile(*seedFile)
	if err != nil {
		log.Fatalf("Error: Failed to read %s: %v", *seedFile, err)
	}

	var docs []schemaDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		log.Fatalf("Error: Failed to parse %s: %v", *seedFile, err)
	}

	ctx := context.Background()
	store := vectorstore.NewStore(db)
	collection, err := store.GetOrCreateCollection(ctx, retrieve.CollectionName)
	if err != nil {
		log.Fatal("Error: Failed to open collection:", err)
	}

	log.Printf("Seeding %d schema documents...", len(docs))

	seeded := 0
	for _, doc := range docs {
		if doc.TableName == "" || doc.Document == "" {
			log.Printf("Warn: Skipping entry with empty table_name or document")
			continue
		}

		embedCtx, cancel := context.WithTimeout(ctx, cfg.Pipeline.EmbedTimeout)
		res, err := embedder.Generate(embedCtx, doc.Document, "RETRIEVAL_DOCUMENT")
		cancel()
		if err != nil {
			log.Printf("Warn: Failed to embed %s: %v. Skipping.", doc.TableName, err)
			continue
		}

		var metadata datatypes.JSON
		if doc.Metadata != nil {
			if b, err := json.Marshal(doc.Metadata); err == nil {
				metadata = datatypes.JSON(b)
			}
		}

		if err := collection.Upsert(ctx, doc.TableName, doc.Document, metadata, res.Embedding.Values); err != nil {
			log.Printf("Warn: Failed to upsert %s: %v. Skipping.", doc.TableName, err)
			continue
		}
		seeded++
		log.Printf("  indexed %s", doc.TableName)
	}

	log.Printf("✅ Seeded %d/%d schema documents.", seeded, len(docs))
}
