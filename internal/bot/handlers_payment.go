package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tadbirbot/internal/i18n"
	"tadbirbot/internal/models"
	"tadbirbot/internal/service"
)

func backToMainKeyboard(lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_back_to_main"), "back_to_main"),
		),
	)
}

// handlePayEvent показывает условия участия перед реквизитами.
func (b *Bot) handlePayEvent(ctx context.Context, cb *tgbotapi.CallbackQuery, rawEventID string) {
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID

	eventID, err := strconv.ParseInt(rawEventID, 10, 64)
	if err != nil {
		b.alertCallback(cb.ID, i18n.T(models.DefaultLanguage, "error_generic"))
		return
	}

	user, err := b.repo.GetUser(ctx, userID)
	if err != nil {
		b.logError(ctx, err, userID, "get user")
		b.alertCallback(cb.ID, i18n.T(models.DefaultLanguage, "error_generic"))
		return
	}
	lang := user.Lang()

	if !user.IsRegistered() {
		b.alertCallback(cb.ID, i18n.T(lang, "not_registered_yet"))
		return
	}

	if user.PaymentStatus == models.StatusApproved && user.EventID.Valid && user.EventID.Int64 == eventID {
		kb := backToMainKeyboard(lang)
		if _, err := b.tgService.EditMessage(chatID, cb.Message.MessageID, i18n.T(lang, "already_approved"), &kb); err != nil {
			b.logError(ctx, err, userID, "edit message")
		}
		b.answerCallback(cb.ID, "")
		return
	}

	event, err := b.eventsSvc.Get(ctx, eventID, lang)
	if err != nil || event == nil {
		b.alertCallback(cb.ID, i18n.T(lang, "error_generic"))
		return
	}

	text := i18n.T(lang, "event_terms") + fmt.Sprintf("\n🎪 <b>Tadbir:</b> %s", event.Name)
	msg := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, text)
	msg.ParseMode = models.ParseModeHTML
	kb := termsKeyboard(lang, eventID)
	msg.ReplyMarkup = &kb
	if _, err := b.tgService.Send(msg); err != nil {
		b.logError(ctx, err, userID, "send terms")
	}
	b.answerCallback(cb.ID, "")
}

// handleConfirmTerms закрепляет мероприятие и показывает реквизиты оплаты.
// Полнота анкеты перепроверяется на входе: кнопка могла остаться в старом
// сообщении после сброса профиля.
func (b *Bot) handleConfirmTerms(ctx context.Context, cb *tgbotapi.CallbackQuery, rawEventID string) {
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID

	user, err := b.repo.GetUser(ctx, userID)
	if err != nil {
		b.logError(ctx, err, userID, "get user")
		b.alertCallback(cb.ID, i18n.T(models.DefaultLanguage, "error_generic"))
		return
	}
	lang := user.Lang()

	if !user.IsRegistered() {
		b.alertCallback(cb.ID, i18n.T(lang, "not_registered_yet"))
		return
	}

	eventID, err := strconv.ParseInt(rawEventID, 10, 64)
	if err != nil {
		b.alertCallback(cb.ID, i18n.T(lang, "error_generic"))
		return
	}

	event, err := b.payments.Begin(ctx, userID, eventID, lang)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyApproved) {
			kb := backToMainKeyboard(lang)
			if _, err := b.tgService.EditMessage(chatID, cb.Message.MessageID, i18n.T(lang, "already_approved"), &kb); err != nil {
				b.logError(ctx, err, userID, "edit message")
			}
			b.answerCallback(cb.ID, "")
			return
		}
		b.logError(ctx, err, userID, "begin payment")
		b.alertCallback(cb.ID, i18n.T(lang, "error_generic"))
		return
	}

	text := i18n.Tf(lang, "payment_requisites",
		event.Name, event.Date, event.Time, event.Address,
		i18n.FormatAmount(event.PaymentAmount),
		b.config.Payment.CardNumber, b.config.Payment.CardOwner)

	msg := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, text)
	msg.ParseMode = models.ParseModeHTML
	kb := paymentKeyboard(lang)
	msg.ReplyMarkup = &kb
	if _, err := b.tgService.Send(msg); err != nil {
		b.logError(ctx, err, userID, "send requisites")
	}

	b.setState(ctx, userID, models.StateWaitingPaymentScreenshot, map[string]interface{}{
		"event_id": eventID,
	})
	b.answerCallback(cb.ID, "")
}

// handleCancelPayment снимает выбор мероприятия, статус оплаты не меняется.
func (b *Bot) handleCancelPayment(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID
	lang := b.userLang(ctx, userID)

	if err := b.payments.Cancel(ctx, userID); err != nil {
		b.logError(ctx, err, userID, "cancel payment")
	}
	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		b.logError(ctx, err, userID, "clear state")
	}

	b.deleteMessage(chatID, cb.Message.MessageID)
	b.sendWithMainMenu(chatID, lang, i18n.T(lang, "payment_cancelled"))
	b.answerCallback(cb.ID, "")
}

// handleReceiptInput принимает чек только как фото и уведомляет админов.
func (b *Bot) handleReceiptInput(ctx context.Context, msg *tgbotapi.Message, user *models.User, state *models.UserState) {
	userID := msg.From.ID
	lang := user.Lang()

	if len(msg.Photo) == 0 {
		b.sendText(msg.Chat.ID, i18n.T(lang, "err_receipt_photo"))
		return
	}
	fileID := msg.Photo[len(msg.Photo)-1].FileID

	updated, err := b.payments.SubmitReceipt(ctx, userID)
	if err != nil {
		b.logError(ctx, err, userID, "submit receipt")
		b.sendText(msg.Chat.ID, i18n.T(lang, "error_generic"))
		return
	}
	if b.metrics != nil {
		b.metrics.ReceiptsSubmitted.Inc()
	}

	b.notifyAdmins(ctx, updated, fileID)

	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		b.logError(ctx, err, userID, "clear state")
	}
	b.sendWithMainMenu(msg.Chat.ID, lang, i18n.T(lang, "receipt_sent"))
}

// notifyAdmins рассылает чек каждому админу; сбой одного не мешает остальным.
func (b *Bot) notifyAdmins(ctx context.Context, user *models.User, fileID string) {
	eventName := "Noma'lum tadbir"
	if user != nil && user.EventID.Valid {
		if event, err := b.eventsSvc.Get(ctx, user.EventID.Int64, models.DefaultLanguage); err == nil && event != nil {
			eventName = event.Name
		}
	}

	caption := fmt.Sprintf(`
💳 <b>YANGI TO'LOV CHEKI</b>

👤 <b>Ism:</b> %s
📱 <b>Telefon:</b> %s
🎪 <b>Tadbir:</b> %s
🆔 <b>User ID:</b> <code>%d</code>

✅ Tasdiqlash: /approve_%d
❌ Rad etish: /reject_%d
`, user.FullName, user.Phone, eventName, user.TelegramID, user.TelegramID, user.TelegramID)

	for _, adminID := range b.config.Admins {
		photo := tgbotapi.NewPhoto(adminID, tgbotapi.FileID(fileID))
		photo.Caption = caption
		photo.ParseMode = models.ParseModeHTML
		photo.ReplyMarkup = adjudicationKeyboard(user.TelegramID)
		if _, err := b.tgService.Send(photo); err != nil {
			b.logger.Error().Err(err).Int64("admin_id", adminID).Msg("Failed to notify admin")
		}
	}
}
