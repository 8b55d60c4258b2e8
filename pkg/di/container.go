package di

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	billingrepo "companion-chat/backend/billing/repository"
	billingservice "companion-chat/backend/billing/service"
	charrepo "companion-chat/backend/character/repository"
	charservice "companion-chat/backend/character/service"
	convrepo "companion-chat/backend/conversation/repository"
	convservice "companion-chat/backend/conversation/service"
	"companion-chat/backend/image"
	"companion-chat/backend/llm"
	"companion-chat/backend/pkg/cache"
	"companion-chat/backend/pkg/config"
	"companion-chat/backend/pkg/jwt"
	"companion-chat/backend/pkg/logger"
	"companion-chat/backend/pkg/secrets"
	"companion-chat/backend/shared/observability"
	"companion-chat/backend/shared/redis"
	userrepo "companion-chat/backend/user/repository"
	userservice "companion-chat/backend/user/service"
)

// Container holds all the dependencies for the application
type Container struct {
	DB               *gorm.DB
	Logger           *logger.Logger
	Config           *config.Config
	Redis            *redis.Client
	JWTService       *jwt.Service
	Metrics          *observability.ChatMetrics
	UserService      *userservice.UserService
	CharacterService *charservice.CharacterService
	Entitlements     *billingservice.EntitlementService
	Store            convservice.Store
	Sessions         *convservice.SessionManager
	ReplyGenerator   llm.ReplyGenerator
	ImageGenerator   image.Generator
}

// New wires the application. Secrets with a Vault backing fall back to
// the environment when Vault is disabled.
func New(db *gorm.DB, cfg *config.Config, log *logger.Logger) (*Container, error) {
	secretManager, err := secrets.NewManager(log)
	if err != nil {
		return nil, fmt.Errorf("initializing secrets: %w", err)
	}
	ctx := context.Background()

	jwtService := jwt.NewService(
		secretManager.GetOrDefault(ctx, "JWT_SECRET", cfg.JWT.Secret),
		cfg.JWT.Expiry,
	)

	redisClient := redis.NewClient()

	metrics, err := observability.NewChatMetrics()
	if err != nil {
		return nil, fmt.Errorf("initializing metrics: %w", err)
	}

	// persona catalog with an in-process read-through cache
	var catalogCache *cache.Cache
	if cfg.Cache.Enabled {
		catalogCache = cache.New(cache.Options{
			DefaultExpiration: cfg.Cache.TTL,
			CleanupInterval:   cfg.Cache.PurgeWindow,
			MaxItems:          cfg.Cache.MaxSize,
		})
	}
	characterService := charservice.NewCharacterService(charrepo.NewGormCharacterRepository(db), catalogCache)

	userService := userservice.NewUserService(userrepo.NewGormUserRepository(db), jwtService, log)

	entitlements := billingservice.NewEntitlementService(
		billingrepo.NewGormSubscriptionRepository(db),
		redisClient,
		cfg.Billing.EntitlementTTL,
		log,
	)

	replyGenerator, err := buildReplyGenerator(ctx, cfg, secretManager, log)
	if err != nil {
		return nil, err
	}

	imageGenerator, err := buildImageGenerator(ctx, cfg, secretManager, log)
	if err != nil {
		return nil, err
	}

	store := convservice.NewRepoStore(
		convrepo.NewGormConversationRepository(db),
		convrepo.NewGormMessageRepository(db),
	)

	sessions := convservice.NewSessionManager(
		characterService,
		store,
		replyGenerator,
		imageGenerator,
		convservice.Limits{
			MaxMessages:      cfg.Chat.MaxMessagesPerConversation,
			MaxConversations: cfg.Chat.MaxConversationsPerUser,
			TitleLength:      cfg.Chat.TitleLength,
			HistoryLimit:     cfg.LLM.HistoryLimit,
		},
		cfg.LLM.MaxIntroLen,
		cfg.Chat.SessionTTL,
		metrics,
		log,
	)

	return &Container{
		DB:               db,
		Logger:           log,
		Config:           cfg,
		Redis:            redisClient,
		JWTService:       jwtService,
		Metrics:          metrics,
		UserService:      userService,
		CharacterService: characterService,
		Entitlements:     entitlements,
		Store:            store,
		Sessions:         sessions,
		ReplyGenerator:   replyGenerator,
		ImageGenerator:   imageGenerator,
	}, nil
}

// buildReplyGenerator returns the OpenAI-backed generator behind a
// circuit breaker, or a mock when no API key is configured so local
// development works out of the box.
func buildReplyGenerator(ctx context.Context, cfg *config.Config, sm *secrets.Manager, log *logger.Logger) (llm.ReplyGenerator, error) {
	apiKey := sm.GetOrDefault(ctx, "LLM_API_KEY", cfg.LLM.APIKey)
	if apiKey == "" {
		log.Warn("no LLM API key configured, using mock reply generator")
		return llm.NewMockGenerator(), nil
	}

	gen, err := llm.NewOpenAIGenerator(llm.OpenAIConfig{
		APIKey:         apiKey,
		BaseURL:        cfg.LLM.BaseURL,
		ChatModel:      cfg.LLM.ChatModel,
		IntroModel:     cfg.LLM.IntroModel,
		MaxIntroTokens: cfg.LLM.MaxIntroLen,
		HistoryLimit:   cfg.LLM.HistoryLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing reply generator: %w", err)
	}
	return llm.NewBreakerGenerator(gen, log), nil
}

func buildImageGenerator(ctx context.Context, cfg *config.Config, sm *secrets.Manager, log *logger.Logger) (image.Generator, error) {
	apiKey := sm.GetOrDefault(ctx, "IMAGE_API_KEY", cfg.Image.APIKey)
	if apiKey == "" {
		log.Warn("no image API key configured, image generation disabled")
		return nil, nil
	}

	client, err := image.NewClient(image.Config{
		Endpoint: cfg.Image.Endpoint,
		APIKey:   apiKey,
		ModelID:  cfg.Image.ModelID,
		Timeout:  cfg.Image.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing image generator: %w", err)
	}
	return client, nil
}

// Close releases long-lived resources
func (c *Container) Close() {
	if c.Sessions != nil {
		c.Sessions.Close()
	}
}
