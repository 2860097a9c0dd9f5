package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"

	"tadbirbot/internal/bot"
	"tadbirbot/internal/config"
	"tadbirbot/internal/database"
	"tadbirbot/internal/domain"
	"tadbirbot/internal/events"
	"tadbirbot/internal/google"
	"tadbirbot/internal/logging"
	"tadbirbot/internal/models"
	"tadbirbot/internal/repository"
	"tadbirbot/internal/service"
	"tadbirbot/internal/subscription"
	"tadbirbot/internal/ticket"
	"tadbirbot/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return err
	}
	defer db.Close()

	if err := seedChannels(cfg, db, &logger); err != nil {
		logger.Warn().Err(err).Msg("Ошибка загрузки каналов из файла")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sheetsService := initGoogleSheets(ctx, cfg, &logger)
	redisClient, stateService := initStateService(ctx, cfg, &logger)

	// Воркер зеркалирования реестра участников
	var ledger domain.LedgerSyncer = worker.NopSyncer{}
	if sheetsService != nil {
		ledgerWorker := worker.NewLedgerWorker(sheetsService, redisClient, &logger)
		go ledgerWorker.Start(ctx)
		ledger = ledgerWorker
	}

	eventBus := events.NewEventBus()
	subscribeAudit(eventBus, &logger)

	registrationService := service.NewRegistrationService(db, eventBus, ledger, &logger)
	paymentService := service.NewPaymentService(db, eventBus, ledger, &logger)
	eventService := service.NewEventService(db, &logger)
	metrics := bot.NewMetrics()

	startMetrics(ctx, cfg, &logger)

	backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
	go backupService.Start(ctx)
	if cfg.Backup.Enabled {
		defer func() {
			if err := backupService.Backup("shutdown"); err != nil {
				logger.Error().Err(err).Msg("Shutdown backup failed")
			}
		}()
	}

	var attendance domain.AttendanceMarker
	if sheetsService != nil {
		attendance = sheetsService
	}

	return startBot(ctx, cfg, db, stateService, registrationService, paymentService, eventService, attendance, metrics, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if cfg.Backup.Enabled {
		if err := os.MkdirAll(cfg.Backup.StoragePath, 0o755); err != nil {
			logger.Error().Err(err).Msg("Ошибка создания директории для бэкапов")
			return err
		}
	}
	return nil
}

// seedChannels загружает обязательные каналы из файла при старте.
// Каналы, добавленные через /add_channel, остаются как есть.
func seedChannels(cfg *config.Config, db *database.DB, logger *zerolog.Logger) error {
	if cfg.Bot.ChannelsFile == "" {
		return nil
	}

	data, err := os.ReadFile(cfg.Bot.ChannelsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var channelsConfig struct {
		Channels []models.Channel `yaml:"channels"`
	}
	if err := yaml.Unmarshal(data, &channelsConfig); err != nil {
		return err
	}

	ctx := context.Background()
	for i := range channelsConfig.Channels {
		ch := channelsConfig.Channels[i]
		if err := db.AddChannel(ctx, &ch); err != nil {
			logger.Warn().Err(err).Str("chat_id", ch.ChatID).Msg("Канал не добавлен")
		}
	}
	logger.Info().Int("count", len(channelsConfig.Channels)).Msg("Каналы загружены из файла")
	return nil
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.CredentialsFile == "" || cfg.Google.SpreadsheetID == "" {
		logger.Info().Msg("Google Sheets не настроен, реестр не зеркалируется")
		return nil
	}

	sheetsService, err := google.NewSheetsService(cfg.Google.CredentialsFile, cfg.Google.SpreadsheetID, cfg.Google.SheetName)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Google Sheets service")
		return nil
	}

	if err := sheetsService.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("Google Sheets connection test failed")
		return nil
	}

	if email, err := google.GetServiceAccountEmail(cfg.Google.CredentialsFile); err == nil {
		logger.Info().Str("service_account", email).Msg("Google Sheets service initialized successfully")
	}
	return sheetsService
}

func initStateService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.StateService) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	primaryRepo := repository.NewRedisStateRepository(redisClient, time.Duration(models.DefaultStateTTL)*time.Second)
	fallbackRepo := repository.NewMemoryStateRepository(time.Duration(models.DefaultStateTTL) * time.Second)
	stateRepo := repository.NewFailoverStateRepository(primaryRepo, fallbackRepo, logger)
	return redisClient, service.NewStateService(stateRepo, logger)
}

// subscribeAudit пишет в журнал все переходы статусов участников.
func subscribeAudit(bus *events.EventBus, logger *zerolog.Logger) {
	handler := func(ev *events.Event) error {
		var payload events.UserEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		logger.Info().
			Str("event", ev.Type).
			Int64("telegram_id", payload.TelegramID).
			Str("status", payload.Status).
			Str("ticket_id", payload.TicketID).
			Str("changed_by", payload.ChangedBy).
			Msg("Статус участника изменён")
		return nil
	}

	for _, eventType := range []string{
		events.EventRegistrationCompleted,
		events.EventPaymentSubmitted,
		events.EventPaymentApproved,
		events.EventPaymentRejected,
	} {
		bus.Subscribe(eventType, handler)
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func startBot(
	ctx context.Context,
	cfg *config.Config,
	db *database.DB,
	stateService *service.StateService,
	registrationService *service.RegistrationService,
	paymentService *service.PaymentService,
	eventService *service.EventService,
	attendance domain.AttendanceMarker,
	metrics *bot.Metrics,
	logger *zerolog.Logger,
) error {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		logger.Error().Msg("Задайте токен бота в config.yaml")
		return os.ErrInvalid
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	botWrapper := bot.NewBotWrapper(botAPI)
	tgService := service.NewTelegramService(botWrapper)
	verifier := subscription.NewVerifier(botWrapper, logger)
	renderer := ticket.NewRenderer()

	telegramBot := bot.NewBot(
		tgService, cfg, stateService, db, verifier,
		registrationService, paymentService, eventService,
		renderer, attendance, metrics, logger,
	)

	logger.Info().Msg("Бот запущен...")
	telegramBot.Start(ctx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}
