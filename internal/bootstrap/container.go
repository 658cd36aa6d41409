package bootstrap

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"research-tutor-be/internal/config"
	"research-tutor-be/internal/controller"
	"research-tutor-be/internal/handler"
	"research-tutor-be/internal/pkg/logger"
	"research-tutor-be/internal/repository/memory"
	"research-tutor-be/internal/repository/unitofwork"
	"research-tutor-be/internal/service"
	"research-tutor-be/internal/websocket"
	"research-tutor-be/pkg/embedding"
	"research-tutor-be/pkg/llm/factory"
	pktNats "research-tutor-be/pkg/nats"
	"research-tutor-be/pkg/rag"
	"research-tutor-be/pkg/rag/generate"
)

const reindexTopic = "corpus_reindex"

type Container struct {
	// Controllers
	SessionController controller.ISessionController
	ChatController    controller.IChatController
	CorpusController  controller.ICorpusController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & event push
	EventHandler *handler.EventHandler
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Model backends
	embeddingProvider := embedding.NewOllamaProvider(
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaEmbedModel,
		cfg.Ai.EmbeddingDimension,
	)
	log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

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
		rdb = nil
	}

	wsLogger := logger.NewIsolatedLogger("logs/events.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. RAG pipeline
	retriever := rag.NewRetriever(embeddingProvider, sysLogger)
	indexer := rag.NewIndexer(embeddingProvider, uowFactory, sysLogger, rag.IndexerConfig{
		DocsDir:      cfg.Rag.DocsDir,
		ChunkSize:    cfg.Rag.ChunkSize,
		ChunkOverlap: cfg.Rag.ChunkOverlap,
	})
	genManager := generate.NewManager(generate.Config{
		FragmentBuffer: cfg.Rag.FragmentBuffer,
		IdleTimeout:    cfg.Rag.StreamIdleTimeout,
	})
	runtimeRepo := memory.NewRuntimeRepository()

	// 6. Services
	publisherService := service.NewPublisherService(pubSub, reindexTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		reindexTopic,
		indexer,
		natsPub,
		sysLogger,
	)

	sessionService := service.NewSessionService(uowFactory, natsPub, sysLogger)
	chatService := service.NewChatService(
		uowFactory,
		llmProvider,
		retriever,
		genManager,
		runtimeRepo,
		natsPub,
		sysLogger,
		cfg.Ai,
		cfg.Rag,
	)
	corpusService := service.NewCorpusService(indexer, publisherService, sysLogger)

	notifService := service.NewNotificationService(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}

	eventHandler := handler.NewEventHandler(wsHub, wsLogger)

	return &Container{
		SessionController: controller.NewSessionController(sessionService),
		ChatController:    controller.NewChatController(chatService),
		CorpusController:  controller.NewCorpusController(corpusService),

		ConsumerService: consumerService,

		EventHandler: eventHandler,
		WebSocketHub: wsHub,
	}
}
