package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tadbirbot/internal/i18n"
	"tadbirbot/internal/models"
)

// showLatestEvent показывает карточку самого свежего активного мероприятия.
func (b *Bot) showLatestEvent(ctx context.Context, chatID int64, user *models.User) {
	lang := user.Lang()

	if !user.IsRegistered() {
		b.sendText(chatID, i18n.T(lang, "not_registered_yet"))
		return
	}

	event, err := b.eventsSvc.Latest(ctx, lang)
	if err != nil {
		b.logError(ctx, err, user.TelegramID, "latest event")
		b.sendText(chatID, i18n.T(lang, "error_generic"))
		return
	}
	if event == nil {
		b.sendText(chatID, i18n.T(lang, "no_active_events"))
		return
	}

	if user.PaymentStatus == models.StatusApproved && user.EventID.Valid && user.EventID.Int64 == event.ID {
		b.sendWithMainMenu(chatID, lang, i18n.Tf(lang, "already_approved_event", event.Name))
		return
	}

	card := i18n.Tf(lang, "event_details",
		event.Name, event.Date, event.Time, event.Address, i18n.FormatAmount(event.PaymentAmount))
	msg := tgbotapi.NewMessage(chatID, card)
	msg.ParseMode = models.ParseModeHTML
	msg.ReplyMarkup = eventKeyboard(lang, event.ID)
	if _, err := b.tgService.Send(msg); err != nil {
		b.logError(ctx, err, user.TelegramID, "send event card")
	}
}

func (b *Bot) showMyInfo(ctx context.Context, chatID int64, user *models.User) {
	lang := user.Lang()

	if !user.IsRegistered() {
		b.sendText(chatID, i18n.T(lang, "not_registered_yet"))
		return
	}

	eventName := "—"
	if user.EventID.Valid {
		if event, err := b.eventsSvc.Get(ctx, user.EventID.Int64, lang); err == nil && event != nil {
			eventName = event.Name
		}
	}

	ticketID := user.TicketID
	if ticketID == "" {
		ticketID = fmt.Sprintf("%d", user.TelegramID)
	}

	text := i18n.Tf(lang, "my_info",
		user.FullName,
		user.Phone,
		eventName,
		i18n.StatusText(user.RegistrationStatus(), lang),
		ticketID,
		i18n.LanguageName(lang),
	)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = models.ParseModeHTML
	msg.ReplyMarkup = profileKeyboard(lang, user.TelegramID, user.PaymentStatus == models.StatusApproved)
	if _, err := b.tgService.Send(msg); err != nil {
		b.logError(ctx, err, user.TelegramID, "send my info")
	}
}

func (b *Bot) showContact(chatID int64, lang string) {
	b.sendWithMainMenu(chatID, lang, i18n.Tf(lang, "contact_info", b.config.Bot.AdminContact))
}

func (b *Bot) promptChangeLanguage(chatID int64, lang string) {
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, i18n.T(lang, "change_language_prompt"), languageKeyboard("change_lang_")); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send language prompt")
	}
}

func (b *Bot) handleBackToMain(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID

	user, err := b.repo.GetUser(ctx, userID)
	if err != nil {
		b.logError(ctx, err, userID, "get user")
		return
	}
	lang := user.Lang()

	b.deleteMessage(chatID, cb.Message.MessageID)
	b.answerCallback(cb.ID, "")
	name := cb.From.FirstName
	if user.IsRegistered() {
		name = user.FullName
	}
	b.sendWithMainMenu(chatID, lang, i18n.Tf(lang, "welcome_back", name))
}

// handleMyQR отправляет QR-билет; доступен только после одобрения оплаты.
func (b *Bot) handleMyQR(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID

	user, err := b.repo.GetUser(ctx, userID)
	if err != nil {
		b.logError(ctx, err, userID, "get user")
		return
	}
	lang := user.Lang()

	if user == nil || user.PaymentStatus != models.StatusApproved || user.TicketID == "" {
		b.alertCallback(cb.ID, i18n.T(lang, "qr_after_approval_only"))
		return
	}

	png, err := b.renderer.Render(user.TicketID)
	if err != nil {
		b.logError(ctx, err, userID, "render qr")
		b.alertCallback(cb.ID, i18n.T(lang, "qr_not_found"))
		return
	}

	caption := i18n.Tf(lang, "qr_caption", user.TicketID)
	if _, err := b.tgService.SendPhotoBytes(chatID, user.TicketID+".png", png, caption); err != nil {
		b.logError(ctx, err, userID, "send qr photo")
	}
	b.answerCallback(cb.ID, "")
}

func (b *Bot) handlePaymentStatus(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID

	user, err := b.repo.GetUser(ctx, userID)
	if err != nil {
		b.logError(ctx, err, userID, "get user")
		return
	}
	lang := user.Lang()

	eventName := "—"
	if user != nil && user.EventID.Valid {
		if event, err := b.eventsSvc.Get(ctx, user.EventID.Int64, lang); err == nil && event != nil {
			eventName = event.Name
		}
	}

	b.sendText(chatID, i18n.Tf(lang, "payment_status_line",
		i18n.StatusText(user.RegistrationStatus(), lang), eventName))
	b.answerCallback(cb.ID, "")
}
