package main

import (
	"context"
	"log"
	"os"
	"strings"

	"ai-support-be/internal/entity"
	"ai-support-be/internal/repository/unitofwork"
	"ai-support-be/pkg/database"
	"ai-support-be/pkg/prompt/template"

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

	db, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		log.Fatalf("Error: Failed to begin transaction: %v", err)
	}
	defer uow.Rollback()

	log.Println("Seeding global prompt templates...")
	for _, key := range template.DefaultKeys() {
		content, _ := template.Default(key)
		tpl := &entity.PromptTemplate{
			Key:      key,
			Content:  content,
			IsActive: true,
			Category: categoryFor(key),
		}
		if err := uow.PromptTemplateRepository().UpsertTemplate(ctx, tpl); err != nil {
			log.Fatalf("Error: Failed to seed template %s: %v", key, err)
		}
	}

	// Comma separated platform keys, shared by companies without their own.
	if raw := os.Getenv("SEED_GEMINI_KEYS"); raw != "" {
		log.Println("Seeding platform Gemini keys...")
		for i, secret := range strings.Split(raw, ",") {
			secret = strings.TrimSpace(secret)
			if secret == "" {
				continue
			}
			key := &entity.AiApiKey{
				Provider: "gemini",
				Secret:   secret,
				Priority: i,
			}
			if err := uow.AiKeyRepository().Create(ctx, key); err != nil {
				log.Fatalf("Error: Failed to seed key #%d: %v", i, err)
			}
		}
	}

	if err := uow.Commit(); err != nil {
		log.Fatalf("Error: Commit failed: %v", err)
	}
	log.Printf("✅ Success: seeded %d templates.", len(template.DefaultKeys()))
}

func categoryFor(key string) string {
	switch {
	case strings.HasPrefix(key, template.FallbackPrefix):
		return entity.TemplateCategoryFallback
	case strings.HasPrefix(key, "personality"):
		return entity.TemplateCategoryPersonality
	case strings.HasPrefix(key, "platform_context"), key == template.KeyPostContext, key == template.KeyReplyContext:
		return entity.TemplateCategoryContext
	case strings.HasPrefix(key, "shipping"):
		return entity.TemplateCategoryShipping
	case strings.HasPrefix(key, "customer"):
		return entity.TemplateCategoryCustomer
	case strings.HasPrefix(key, "history"), key == template.KeyFirstInteraction:
		return entity.TemplateCategoryHistory
	case strings.HasPrefix(key, "rag"), key == template.KeyLastMentionedProduct, key == template.KeyNoProductsFound:
		return entity.TemplateCategoryRAG
	default:
		return entity.TemplateCategoryGuardrail
	}
}
