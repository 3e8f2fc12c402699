package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"

	"carecompanion-be/internal/model"
	"carecompanion-be/internal/repository/implementation"
	"carecompanion-be/pkg/database"
	"carecompanion-be/pkg/embedding"
	"carecompanion-be/pkg/utils"
)

const (
	chunkSize    = 1500
	chunkOverlap = 200
)

// documentInput mirrors one entry of the ingest file.
type documentInput struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	ContentType string   `json:"content_type"`
	Category    string   `json:"category"`
	SourceURL   string   `json:"source_url"`
	Tags        []string `json:"tags"`
}

var (
	inputPath = flag.String("file", "", "Path to a JSON file containing an array of documents")
	provider  = flag.String("provider", "", "Embedding provider override (gemini or ollama)")
	dryRun    = flag.Bool("dry-run", false, "Parse and chunk documents without writing to the database")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system environment variables")
	}

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldRed := color.New(color.FgRed, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	if *inputPath == "" {
		fmt.Println(boldRed("Error: -file is required"))
		flag.Usage()
		os.Exit(1)
	}

	docs, err := readDocuments(*inputPath)
	if err != nil {
		log.Fatalf("%s %v", boldRed("Failed to read input:"), err)
	}
	fmt.Printf("%s %s (%d documents)\n", boldGreen("Loaded"), cyan(*inputPath), len(docs))

	if *dryRun {
		for i, doc := range docs {
			chunks := utils.SplitText(ingestText(doc), chunkSize, chunkOverlap)
			fmt.Printf("  [%d] %s: %d chunks\n", i+1, doc.Title, len(chunks))
		}
		fmt.Println(yellow("Dry run, nothing written."))
		return
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal(boldRed("DB_CONNECTION_STRING environment variable is not set"))
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatalf("%s %v", boldRed("Failed to connect to database:"), err)
	}
	if err := database.EnsureVectorExtension(db); err != nil {
		log.Fatalf("%s %v", boldRed("Failed to ensure pgvector extension:"), err)
	}
	if err := db.AutoMigrate(&model.KnowledgeDocument{}, &model.DocumentEmbedding{}); err != nil {
		log.Fatalf("%s %v", boldRed("Failed to migrate schema:"), err)
	}

	embedder := buildEmbedder(*provider)
	repo := implementation.NewKnowledgeRepository(db)
	ctx := context.Background()

	var failed int
	for i, doc := range docs {
		fmt.Printf("[%d/%d] %s ... ", i+1, len(docs), cyan(doc.Title))

		record, err := toRecord(doc)
		if err != nil {
			failed++
			fmt.Println(boldRed("SKIP"), err)
			continue
		}

		if err := repo.CreateDocument(ctx, record); err != nil {
			failed++
			fmt.Println(boldRed("FAIL"), err)
			continue
		}

		chunks := utils.SplitText(ingestText(doc), chunkSize, chunkOverlap)
		embeddings := make([]*model.DocumentEmbedding, 0, len(chunks))
		var embedErr error
		for idx, chunk := range chunks {
			res, err := embedder.Generate(ctx, chunk, embedding.TaskRetrievalDocument)
			if err != nil {
				embedErr = fmt.Errorf("chunk %d: %w", idx, err)
				break
			}
			embeddings = append(embeddings, &model.DocumentEmbedding{
				Id:             uuid.New(),
				DocumentId:     record.Id,
				ChunkIndex:     idx,
				Chunk:          chunk,
				EmbeddingValue: pgvector.NewVector(res.Embedding.Values),
				CreatedAt:      time.Now(),
			})
		}
		if embedErr != nil {
			failed++
			fmt.Println(boldRed("FAIL"), embedErr)
			continue
		}

		if err := repo.ReplaceEmbeddings(ctx, record.Id, embeddings); err != nil {
			failed++
			fmt.Println(boldRed("FAIL"), err)
			continue
		}

		fmt.Printf("%s (%d chunks)\n", boldGreen("OK"), len(chunks))
	}

	fmt.Println()
	if failed > 0 {
		fmt.Printf("%s %d of %d documents failed\n", boldRed("Done with errors:"), failed, len(docs))
		os.Exit(1)
	}
	fmt.Printf("%s %d documents indexed\n", boldGreen("Done:"), len(docs))
}

func readDocuments(path string) ([]documentInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var docs []documentInput
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%s contains no documents", path)
	}
	return docs, nil
}

// ingestText embeds the title alongside the content so title-only
// matches work, same shape the background consumer produces.
func ingestText(doc documentInput) string {
	contentType := doc.ContentType
	if contentType == "" {
		contentType = model.ContentTypeMedicalArticle
	}
	return fmt.Sprintf("Title: %s\nType: %s\n\n%s", doc.Title, contentType, doc.Content)
}

func toRecord(doc documentInput) (*model.KnowledgeDocument, error) {
	if doc.Title == "" || doc.Content == "" {
		return nil, fmt.Errorf("title and content are required")
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = model.ContentTypeMedicalArticle
	}

	var tags datatypes.JSON
	if len(doc.Tags) > 0 {
		raw, err := json.Marshal(doc.Tags)
		if err != nil {
			return nil, fmt.Errorf("encode tags: %w", err)
		}
		tags = datatypes.JSON(raw)
	}

	return &model.KnowledgeDocument{
		Id:          uuid.New(),
		Title:       doc.Title,
		Content:     doc.Content,
		ContentType: contentType,
		Category:    doc.Category,
		SourceURL:   doc.SourceURL,
		Tags:        tags,
	}, nil
}

func buildEmbedder(override string) embedding.EmbeddingProvider {
	providerName := override
	if providerName == "" {
		providerName = os.Getenv("EMBEDDING_PROVIDER")
	}

	if providerName == "ollama" {
		baseURL := os.Getenv("OLLAMA_BASE_URL")
		modelName := os.Getenv("OLLAMA_EMBEDDING_MODEL")
		return embedding.NewOllamaProvider(baseURL, modelName, 30*time.Second)
	}

	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GOOGLE_GEMINI_API_KEY environment variable is not set")
	}
	return embedding.NewGeminiProvider(apiKey, 30*time.Second)
}
