package main

import (
	"errors"
	"log/slog"
	"os"
	"time"

	httpapi "github.com/immxrtalbeast/research_hub/internal/api/http"
	"github.com/immxrtalbeast/research_hub/internal/auth"
	"github.com/immxrtalbeast/research_hub/internal/config"
	"github.com/immxrtalbeast/research_hub/internal/repository"
	"github.com/immxrtalbeast/research_hub/internal/repository/model"
	"github.com/immxrtalbeast/research_hub/internal/service"
	"github.com/immxrtalbeast/research_hub/lib/logger/slogpretty"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	if cfg.Session.Secret == "" {
		log.Error("session secret is empty")
		os.Exit(1)
	}

	db, err := connectDatabase(cfg.Database)
	if err != nil {
		log.Error("failed to connect database", slog.Any("error", err))
		os.Exit(1)
	}

	userRepo := repository.NewGormUserRepository(db)
	projectRepo := repository.NewGormProjectRepository(db)
	messageRepo := repository.NewGormMessageRepository(db)

	tokens := auth.NewTokenManager(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.Issuer)
	verifier := auth.NewSessionVerifier(tokens, userRepo, log)

	membership := service.NewMembershipService(projectRepo, log)
	registry := service.NewRoomRegistry(log)
	chatService := service.NewChatService(verifier, membership, messageRepo, registry, log, service.ChatConfig{
		HistoryLimit:       cfg.Chat.HistoryLimit,
		StorageTimeout:     cfg.Chat.StorageTimeout,
		MaxAttachmentBytes: cfg.Chat.MaxAttachmentMB << 20,
	})

	chatController := httpapi.NewChatController(chatService, log)

	router := httpapi.SetupRouter(chatController)

	log.Info("starting application", slog.String("addr", cfg.HTTP.Address))
	if err := router.Run(cfg.HTTP.Address); err != nil {
		log.Error("http server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

func connectDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is empty")
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.Collaborator{},
		&model.Attachment{},
		&model.ChatMessage{},
	)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
