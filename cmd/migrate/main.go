package main

import (
	"log"
	"os"

	"chat-search-be/internal/model"
	"chat-search-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	log.Println("Step 2: Running AutoMigrate...")

	if err := db.AutoMigrate(&model.ChatMessage{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 3: Creating search indexes...")

	postMigrationSQL := []string{
		// HNSW index for the cosine operator used by SearchSimilarWithScore
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_embedding
		 ON chat_messages USING hnsw (embedding vector_cosine_ops);`,

		// GIN index matching the expression used by SearchLexicalWithScore
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_message_fts
		 ON chat_messages USING GIN (to_tsvector('english', message));`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
