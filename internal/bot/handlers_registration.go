package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tadbirbot/internal/i18n"
	"tadbirbot/internal/models"
	"tadbirbot/internal/service"
)

// handleLanguageSelected — первый выбор языка, затем заново шлюз и анкета.
func (b *Bot) handleLanguageSelected(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) {
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID

	if !models.SupportedLanguage(lang) {
		lang = models.DefaultLanguage
	}

	if _, err := b.registration.EnsureUser(ctx, userID, cb.From.UserName); err != nil {
		b.logError(ctx, err, userID, "ensure user")
		b.alertCallback(cb.ID, i18n.T(lang, "error_generic"))
		return
	}
	if err := b.registration.SetLanguage(ctx, userID, lang); err != nil {
		b.logError(ctx, err, userID, "set language")
		b.alertCallback(cb.ID, i18n.T(lang, "error_generic"))
		return
	}

	b.answerCallback(cb.ID, "✅ "+i18n.LanguageName(lang))

	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		b.logError(ctx, err, userID, "clear state")
	}
	b.deleteMessage(chatID, cb.Message.MessageID)

	if !b.passesGate(ctx, userID, chatID, lang) {
		return
	}

	b.sendText(chatID, i18n.T(lang, "enter_full_name"))
	b.setState(ctx, userID, models.StateWaitingFullName, nil)
}

// handleLanguageChanged — смена языка из главного меню.
func (b *Bot) handleLanguageChanged(ctx context.Context, cb *tgbotapi.CallbackQuery, lang string) {
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID

	if !models.SupportedLanguage(lang) {
		lang = models.DefaultLanguage
	}

	if err := b.registration.SetLanguage(ctx, userID, lang); err != nil {
		b.logError(ctx, err, userID, "set language")
		b.alertCallback(cb.ID, i18n.T(lang, "error_generic"))
		return
	}

	b.sendWithMainMenu(chatID, lang, i18n.Tf(lang, "language_changed", i18n.LanguageName(lang)))
	b.deleteMessage(chatID, cb.Message.MessageID)
	b.answerCallback(cb.ID, "")

	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		b.logError(ctx, err, userID, "clear state")
	}
}

func (b *Bot) handleCheckSubscription(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID

	user, err := b.repo.GetUser(ctx, userID)
	if err != nil {
		b.logError(ctx, err, userID, "get user")
		b.alertCallback(cb.ID, i18n.T(models.DefaultLanguage, "error_generic"))
		return
	}
	lang := user.Lang()

	channels, err := b.repo.ListChannels(ctx)
	if err != nil {
		b.logError(ctx, err, userID, "list channels")
		b.alertCallback(cb.ID, i18n.T(lang, "error_generic"))
		return
	}

	if !b.verifier.Verify(ctx, userID, channels) {
		b.alertCallback(cb.ID, i18n.T(lang, "not_subscribed"))
		return
	}

	b.deleteMessage(chatID, cb.Message.MessageID)
	b.answerCallback(cb.ID, i18n.T(lang, "subscription_confirmed"))

	if user.IsRegistered() {
		status := i18n.StatusText(user.RegistrationStatus(), lang)
		b.sendWithMainMenu(chatID, lang, i18n.Tf(lang, "welcome_back", user.FullName)+"\n\n"+status)
		if err := b.stateService.ClearUserState(ctx, userID); err != nil {
			b.logError(ctx, err, userID, "clear state")
		}
		return
	}

	b.sendText(chatID, i18n.T(lang, "enter_full_name"))
	b.setState(ctx, userID, models.StateWaitingFullName, nil)
}

func (b *Bot) handleFullNameInput(ctx context.Context, msg *tgbotapi.Message, user *models.User, state *models.UserState) {
	userID := msg.From.ID
	lang := user.Lang()

	fullName, errKey := service.ValidateFullName(msg.Text)
	if errKey != "" {
		// Ошибка ввода не сбрасывает шаг
		b.sendText(msg.Chat.ID, i18n.T(lang, errKey))
		return
	}

	if _, err := b.tgService.SendWithKeyboard(msg.Chat.ID, i18n.T(lang, "send_phone"), contactKeyboard(lang)); err != nil {
		b.logError(ctx, err, userID, "send contact prompt")
	}
	b.setState(ctx, userID, models.StateWaitingContact, map[string]interface{}{
		"full_name": fullName,
	})
}

func (b *Bot) handleContactInput(ctx context.Context, msg *tgbotapi.Message, user *models.User, state *models.UserState) {
	userID := msg.From.ID
	lang := user.Lang()
	fullName := state.GetString("full_name")

	var phone string
	switch {
	case msg.Contact != nil:
		phone = service.NormalizeContactPhone(msg.Contact.PhoneNumber)
	case msg.Text != "":
		var errKey string
		phone, errKey = service.NormalizePhone(msg.Text)
		if errKey != "" {
			b.sendText(msg.Chat.ID, i18n.T(lang, errKey))
			return
		}
	default:
		b.sendText(msg.Chat.ID, i18n.T(lang, "err_phone_required"))
		return
	}

	if err := b.registration.Complete(ctx, userID, fullName, phone); err != nil {
		b.logError(ctx, err, userID, "complete registration")
		b.sendText(msg.Chat.ID, i18n.T(lang, "error_generic"))
		return
	}
	if b.metrics != nil {
		b.metrics.RegistrationsCompleted.Inc()
	}

	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		b.logError(ctx, err, userID, "clear state")
	}

	b.sendWithMainMenu(msg.Chat.ID, lang, i18n.Tf(lang, "registered_success", fullName, phone))
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if err := b.tgService.DeleteMessage(chatID, messageID); err != nil {
		b.logger.Debug().Err(err).Int64("chat_id", chatID).Msg("Failed to delete message")
	}
}

func (b *Bot) alertCallback(callbackID, text string) {
	if err := b.tgService.AnswerCallbackAlert(callbackID, text); err != nil {
		b.logger.Error().Err(err).Msg("Failed to answer callback")
	}
}
