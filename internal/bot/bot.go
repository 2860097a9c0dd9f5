package bot

import (
	"context"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tadbirbot/internal/config"
	"tadbirbot/internal/domain"
	"tadbirbot/internal/i18n"
	"tadbirbot/internal/models"
	"tadbirbot/internal/service"
)

type Bot struct {
	tgService    domain.TelegramService
	config       *config.Config
	stateService domain.StateManager
	repo         domain.Repository
	verifier     domain.MembershipVerifier
	registration *service.RegistrationService
	payments     *service.PaymentService
	eventsSvc    *service.EventService
	renderer     domain.TicketRenderer
	attendance   domain.AttendanceMarker
	metrics      *Metrics
	logger       *zerolog.Logger
}

func NewBot(
	tgService domain.TelegramService,
	cfg *config.Config,
	stateService domain.StateManager,
	repo domain.Repository,
	verifier domain.MembershipVerifier,
	registration *service.RegistrationService,
	payments *service.PaymentService,
	eventsSvc *service.EventService,
	renderer domain.TicketRenderer,
	attendance domain.AttendanceMarker,
	metrics *Metrics,
	logger *zerolog.Logger,
) *Bot {
	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	return &Bot{
		tgService:    tgService,
		config:       cfg,
		stateService: stateService,
		repo:         repo,
		verifier:     verifier,
		registration: registration,
		payments:     payments,
		eventsSvc:    eventsSvc,
		renderer:     renderer,
		attendance:   attendance,
		metrics:      metrics,
		logger:       logger,
	}
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	// Отдельный контекст на каждое обновление
	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		var userID int64
		if update.Message != nil {
			userID = update.Message.From.ID
		} else if update.CallbackQuery != nil {
			userID = update.CallbackQuery.From.ID
		}

		if userID == 0 {
			return
		}

		if !b.isAdmin(userID) {
			allowed, err := b.stateService.CheckRateLimit(updateCtx, userID,
				b.config.Bot.RateLimitMessages, time.Duration(b.config.Bot.RateLimitWindow)*time.Second)
			if err != nil {
				b.logger.Error().Err(err).Int64("user_id", userID).Msg("Rate limit check failed")
			} else if !allowed {
				b.logger.Warn().Int64("user_id", userID).Msg("Rate limit exceeded")
				if update.Message != nil {
					lang := b.userLang(updateCtx, userID)
					b.sendText(update.Message.Chat.ID, i18n.T(lang, "rate_limited"))
				}
				return
			}
		}

		if update.CallbackQuery != nil {
			if b.metrics != nil {
				b.metrics.CallbacksProcessed.Inc()
			}
			b.handleCallbackQuery(updateCtx, update)
			return
		}

		if update.Message == nil {
			return
		}

		if b.metrics != nil {
			b.metrics.MessagesProcessed.Inc()
		}
		b.handleMessage(updateCtx, update)
	})
}

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	userID := msg.From.ID

	user, err := b.repo.GetUser(ctx, userID)
	if err != nil {
		b.logError(ctx, err, userID, "get user")
		return
	}
	lang := user.Lang()

	// Шлюз подписки прогоняется на каждом сообщении независимо от шага
	// диалога, админы проходят без проверки
	if !b.isAdmin(userID) && !b.passesGate(ctx, userID, msg.Chat.ID, lang) {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Состояние диалога приоритетнее пунктов меню
	state, err := b.stateService.GetUserState(ctx, userID)
	if err != nil {
		b.logError(ctx, err, userID, "get state")
	}
	if state != nil {
		switch state.CurrentStep {
		case models.StateWaitingFullName:
			b.handleFullNameInput(ctx, msg, user, state)
			return
		case models.StateWaitingContact:
			b.handleContactInput(ctx, msg, user, state)
			return
		case models.StateWaitingPaymentScreenshot:
			b.handleReceiptInput(ctx, msg, user, state)
			return
		}
	}

	if b.isAdmin(userID) && b.handleAdminText(ctx, msg) {
		return
	}

	switch msg.Text {
	case i18n.T(lang, "btn_events"):
		b.showLatestEvent(ctx, msg.Chat.ID, user)
	case i18n.T(lang, "btn_my_info"):
		b.showMyInfo(ctx, msg.Chat.ID, user)
	case i18n.T(lang, "btn_contact"):
		b.showContact(msg.Chat.ID, lang)
	case i18n.T(lang, "btn_change_language"):
		b.promptChangeLanguage(msg.Chat.ID, lang)
	default:
		// Неизвестный текст вне диалога игнорируем, показываем меню
		if user.IsRegistered() {
			b.sendWithMainMenu(msg.Chat.ID, lang, i18n.Tf(lang, "welcome_back", user.FullName))
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	switch {
	case cmd == "start":
		b.handleStart(ctx, msg)
	case b.isAdmin(msg.From.ID):
		b.handleAdminCommand(ctx, msg)
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	data := cb.Data
	userID := cb.From.ID

	// Колбэки тоже идут через шлюз подписки; check_subscription проверяет
	// подписку сам и обходить его нельзя, иначе пользователь застрянет
	if data != "check_subscription" && !b.isAdmin(userID) {
		chatID := userID
		if cb.Message != nil {
			chatID = cb.Message.Chat.ID
		}
		if !b.passesGate(ctx, userID, chatID, b.userLang(ctx, userID)) {
			b.answerCallback(cb.ID, "")
			return
		}
	}

	switch {
	case strings.HasPrefix(data, "lang_"):
		b.handleLanguageSelected(ctx, cb, strings.TrimPrefix(data, "lang_"))
	case strings.HasPrefix(data, "change_lang_"):
		b.handleLanguageChanged(ctx, cb, strings.TrimPrefix(data, "change_lang_"))
	case data == "check_subscription":
		b.handleCheckSubscription(ctx, cb)
	case strings.HasPrefix(data, "pay_event_"):
		b.handlePayEvent(ctx, cb, strings.TrimPrefix(data, "pay_event_"))
	case strings.HasPrefix(data, "confirm_terms_"):
		b.handleConfirmTerms(ctx, cb, strings.TrimPrefix(data, "confirm_terms_"))
	case data == "cancel_payment":
		b.handleCancelPayment(ctx, cb)
	case data == "back_to_main":
		b.handleBackToMain(ctx, cb)
	case strings.HasPrefix(data, "my_qr_"):
		b.handleMyQR(ctx, cb)
	case strings.HasPrefix(data, "payment_status_"):
		b.handlePaymentStatus(ctx, cb)
	case strings.HasPrefix(data, "review_payment_"):
		b.handleReviewPayment(ctx, cb, strings.TrimPrefix(data, "review_payment_"))
	case strings.HasPrefix(data, "approve_"):
		b.handleAdjudication(ctx, cb, strings.TrimPrefix(data, "approve_"), true)
	case strings.HasPrefix(data, "reject_"):
		b.handleAdjudication(ctx, cb, strings.TrimPrefix(data, "reject_"), false)
	default:
		b.logger.Warn().Str("data", data).Int64("user_id", userID).Msg("Unknown callback data")
		b.answerCallback(cb.ID, "")
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.config.IsAdmin(userID)
}

func (b *Bot) userLang(ctx context.Context, userID int64) string {
	user, err := b.repo.GetUser(ctx, userID)
	if err != nil || user == nil {
		return models.DefaultLanguage
	}
	return user.Lang()
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) sendHTML(chatID int64, text string) {
	if _, err := b.tgService.SendHTML(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) sendWithMainMenu(chatID int64, lang, text string) {
	if _, err := b.tgService.SendWithKeyboard(chatID, text, mainMenuKeyboard(lang)); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	if err := b.tgService.AnswerCallback(callbackID, text); err != nil {
		b.logger.Error().Err(err).Msg("Failed to answer callback")
	}
}

func (b *Bot) logError(ctx context.Context, err error, userID int64, op string) {
	zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("Handler failed: " + op)
	if b.metrics != nil {
		b.metrics.ErrorsTotal.Inc()
	}
}
