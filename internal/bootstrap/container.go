package bootstrap

import (
	"context"
	"log"
	"time"

	"carecompanion-be/internal/config"
	"carecompanion-be/internal/controller"
	"carecompanion-be/internal/pkg/logger"
	"carecompanion-be/internal/repository/implementation"
	"carecompanion-be/internal/service"
	"carecompanion-be/pkg/answer"
	"carecompanion-be/pkg/embedding"
	"carecompanion-be/pkg/events"
	"carecompanion-be/pkg/llm/factory"
	"carecompanion-be/pkg/retrieval"
	"carecompanion-be/pkg/session"

	pktNats "carecompanion-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController      controller.IChatController
	KnowledgeController controller.IKnowledgeController
	CategoryController  controller.ICategoryController
	HealthController    controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	Sessions        *session.Store

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	repo := implementation.NewKnowledgeRepository(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
			30*time.Second,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini, 30*time.Second)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}
	// Repeated patient questions skip the embedding round trip.
	embeddingProvider = embedding.NewCachedProvider(embeddingProvider, 30*time.Minute)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		llmAPIKey(cfg),
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// Event audit trail. Every published event lands in the structured log
	// so operators can follow chat and indexing activity without psql.
	if natsPub != nil {
		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			err = natsSub.Subscribe(context.Background(), "events.>", "carecompanion-audit",
				func(_ context.Context, event events.Event) error {
					sysLogger.Info("events", event.EventType(), event.Payload())
					return nil
				})
			if err != nil {
				log.Printf("[WARN] Failed to subscribe to event bus: %v", err)
			}
		}
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// 5. Retrieval + Answering core
	retrievalConfig := retrieval.DefaultConfig()
	retrievalConfig.VectorWeight = cfg.Retrieval.VectorWeight
	retrievalConfig.KeywordWeight = cfg.Retrieval.KeywordWeight
	retrievalConfig.TopK = cfg.Retrieval.TopK

	// Malformed weights are a deployment mistake; refuse to start.
	retriever, err := retrieval.NewRetriever(embeddingProvider, repo, repo, retrievalConfig, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Invalid retrieval configuration: %v", err)
	}

	composer := answer.NewComposer(llmProvider, answer.DefaultConfig(), sysLogger)

	sessions := session.NewStore(
		session.RealClock(),
		time.Duration(cfg.Session.TTLMinutes)*time.Minute,
		sysLogger,
	)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Keys.EmbedTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.EmbedTopic,
		repo,
		embeddingProvider,
		natsPub,
		sysLogger,
	)

	chatService := service.NewChatService(sessions, retriever, composer, natsPub, sysLogger)
	knowledgeService := service.NewKnowledgeService(repo, retriever, publisherService, natsPub, rdb, sysLogger)

	// 7. Controllers
	return &Container{
		ChatController:      controller.NewChatController(chatService),
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),
		CategoryController:  controller.NewCategoryController(),
		HealthController:    controller.NewHealthController(db, rdb),

		ConsumerService: consumerService,
		Sessions:        sessions,
		Logger:          sysLogger,
	}
}

func llmAPIKey(cfg *config.Config) string {
	switch cfg.Ai.LLMProvider {
	case "gemini":
		return cfg.Keys.GoogleGemini
	case "huggingface":
		return cfg.Keys.HuggingFace
	default:
		return ""
	}
}
