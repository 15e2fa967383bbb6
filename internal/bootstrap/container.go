package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-support-be/internal/config"
	"ai-support-be/internal/controller"
	"ai-support-be/internal/pkg/logger"
	"ai-support-be/internal/repository/implementation"
	"ai-support-be/internal/repository/memory"
	"ai-support-be/internal/repository/unitofwork"
	"ai-support-be/internal/service"
	"ai-support-be/pkg/cache"
	"ai-support-be/pkg/generation"
	"ai-support-be/pkg/keys"
	"ai-support-be/pkg/llm"
	"ai-support-be/pkg/llm/factory"
	"ai-support-be/pkg/prompt"
	"ai-support-be/pkg/prompt/resolver"
	"ai-support-be/pkg/prompt/template"
	"ai-support-be/pkg/queue"

	pktNats "ai-support-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SupportController  controller.ISupportController
	TemplateController controller.ITemplateController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IInteractionConsumerService
	Generator       *generation.Generator

	Logger logger.ILogger

	natsSub *pktNats.Subscriber
	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	interactionLogger := logger.NewIsolatedLogger(cfg.App.InteractionLogPath)
	c.Logger = sysLogger
	c.closers = append(c.closers, func() { _ = sysLogger.Sync(); _ = interactionLogger.Sync() })

	// 2. Job Bus: NATS when reachable, in-process watermill channel otherwise
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var enqueuer queue.Enqueuer = queue.NewChannelEnqueuer(pubSub)
	if natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger); err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v (using in-process queue)", err)
	} else {
		enqueuer = natsPub
		c.closers = append(c.closers, natsPub.Close)

		if natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger); err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			c.natsSub = natsSub
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	// 3. Response Cache: Redis when reachable, process memory otherwise
	var responseCache cache.ResponseCache
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (using in-memory response cache)", err)
		_ = rdb.Close()
		responseCache = cache.NewMemoryCache(cfg.Ai.ResponseCacheTTL)
	} else {
		responseCache = cache.NewRedisCache(rdb, cfg.Ai.ResponseCacheTTL)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// 4. Prompt Pipeline
	templateRepo := implementation.NewPromptTemplateRepository(db)
	templateStore := template.NewStore(
		templateRepo,
		memory.NewTemplateCache(cfg.Ai.TemplateCacheTTL, time.Now),
		sysLogger,
	)
	shippingResolver := resolver.NewShippingResolver(implementation.NewShippingZoneRepository(db))

	strict := make([]prompt.Intent, 0, len(cfg.Ai.StrictNoDataIntents))
	for _, i := range cfg.Ai.StrictNoDataIntents {
		strict = append(strict, prompt.Intent(i))
	}
	builder := prompt.NewBuilder(templateStore, shippingResolver, sysLogger, prompt.Config{
		HistoryCharLimit:    cfg.Ai.HistoryCharLimit,
		StrictNoDataIntents: strict,
	})

	// 5. Generation Loop
	keyManager := keys.NewManager(implementation.NewAiKeyRepository(db), sysLogger, keys.Config{
		DefaultProvider:   cfg.Ai.DefaultProvider,
		DefaultModel:      cfg.Ai.DefaultModel,
		RefreshInterval:   cfg.Ai.TemplateCacheTTL,
		RequestsPerMinute: cfg.Ai.KeyRequestsPerMinute,
	}, time.Now)

	registry := factory.NewRegistry(cfg.Ai.DefaultProvider, mustProviders(cfg)...)
	log.Printf("[INFO] Default LLM Provider: %s (%s)", cfg.Ai.DefaultProvider, cfg.Ai.DefaultModel)

	c.Generator = generation.NewGenerator(keyManager, registry, responseCache, enqueuer, sysLogger, generation.Config{
		MinResponseLength:     cfg.Ai.MinResponseLength,
		ShortResponseCooldown: cfg.Ai.ShortResponseCooldown,
		RateLimitCooldown:     cfg.Ai.RateLimitCooldown,
		CacheableMessageTypes: cfg.Ai.CacheableMessageTypes,
	})

	// 6. Services
	supportService := service.NewSupportService(builder, c.Generator, templateStore, sysLogger)
	templateService := service.NewTemplateService(templateRepo, templateStore, sysLogger)
	c.ConsumerService = service.NewInteractionConsumerService(pubSub, uowFactory, interactionLogger)

	// 7. Controllers
	c.SupportController = controller.NewSupportController(supportService)
	c.TemplateController = controller.NewTemplateController(templateService)

	return c
}

func mustProviders(cfg *config.Config) []llm.LLMProvider {
	names := []string{"gemini", "openai", "ollama"}
	providers := make([]llm.LLMProvider, 0, len(names))
	for _, name := range names {
		baseURL := cfg.Ai.OpenAIBaseURL
		if name == "ollama" {
			baseURL = cfg.Ai.OllamaBaseURL
		}
		p, err := factory.NewLLMProvider(name, cfg.Ai.DefaultModel, baseURL)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize LLM Provider %s: %v", name, err)
		}
		providers = append(providers, p)
	}
	return providers
}

// StartConsumers attaches the interaction consumer to NATS when connected, and always to the in-process bus.
func (c *Container) StartConsumers(ctx context.Context) error {
	if c.natsSub != nil {
		jobs := []struct{ queue, job, durable string }{
			{queue.QueueAIInteractions, queue.JobLogInteraction, "ai-interaction-logger"},
			{queue.QueueAIUsage, queue.JobRecordUsage, "ai-usage-recorder"},
		}
		for _, j := range jobs {
			if err := c.natsSub.Subscribe(ctx, j.queue, j.job, j.durable, c.ConsumerService.HandleJob); err != nil {
				return err
			}
		}
	}
	return c.ConsumerService.Consume(ctx)
}

// Close flushes background jobs and releases connections in reverse order.
func (c *Container) Close() {
	if c.Generator != nil {
		c.Generator.Wait()
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
