package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/tip2talk/server/internal/config"
	"github.com/tip2talk/server/internal/db"
	"github.com/tip2talk/server/internal/realtime"
	"github.com/tip2talk/server/internal/repository"
	"github.com/tip2talk/server/internal/service"
	"github.com/tip2talk/server/internal/service/payment"
	"github.com/tip2talk/server/internal/storage"
)

type App struct {
	Cfg              *config.Config
	DB               *sqlx.DB
	Hub              *realtime.Hub
	AuthService      *service.AuthService
	ProfileService   *service.ProfileService
	ChatService      *service.ChatService
	LedgerService    *service.LedgerService
	StatsService     *service.StatsService
	VideoCallService *service.VideoCallService
	PaymentService   payment.Provider
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	if cfg.DBAutoMigrate {
		err = db.RunMigrations(database.DB, cfg.DBDriver)
		if err != nil {
			return nil, fmt.Errorf("failed to run migrations: %v", err)
		}
	}

	// Repositories
	profileRepository := repository.NewProfileRepository(database)
	conversationRepository := repository.NewConversationRepository(database)
	messageRepository := repository.NewMessageRepository(database)
	purchaseRepository := repository.NewPurchaseRepository(database)
	tipRepository := repository.NewTipRepository(database)
	transactionRepository := repository.NewTransactionRepository(database)
	videoCallRepository := repository.NewVideoCallRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Realtime hub
	hub := realtime.NewHub()

	// Services
	authService := service.NewAuthService(profileRepository, cfg.JWTSecret, cfg.JWTExpiry)
	profileService := service.NewProfileService(profileRepository, fileStorage)
	chatService := service.NewChatService(
		conversationRepository,
		messageRepository,
		purchaseRepository,
		fileStorage,
		hub,
	)
	ledgerService := service.NewLedgerService(
		transactionRepository,
		purchaseRepository,
		tipRepository,
		profileRepository,
		chatService,
	)
	statsService := service.NewStatsService(
		transactionRepository,
		conversationRepository,
		messageRepository,
		tipRepository,
		purchaseRepository,
		videoCallRepository,
	)
	videoCallService := service.NewVideoCallService(videoCallRepository, profileRepository)

	paymentProvider, err := payment.NewProvider(cfg, profileRepository, ledgerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment provider: %v", err)
	}

	return &App{
		Cfg:              cfg,
		DB:               database,
		Hub:              hub,
		AuthService:      authService,
		ProfileService:   profileService,
		ChatService:      chatService,
		LedgerService:    ledgerService,
		StatsService:     statsService,
		VideoCallService: videoCallService,
		PaymentService:   paymentProvider,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
