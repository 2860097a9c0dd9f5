package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tadbirbot/internal/i18n"
	"tadbirbot/internal/models"
)

// handleStart — единая точка входа. Шлюз подписки уже пройден на уровне
// диспетчера; дальше завершённая регистрация, недостающие поля анкеты,
// выбор языка.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	// /start всегда сбрасывает диалог
	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		b.logError(ctx, err, userID, "clear state")
	}

	user, err := b.repo.GetUser(ctx, userID)
	if err != nil {
		b.logError(ctx, err, userID, "get user")
		b.sendText(chatID, i18n.T(models.DefaultLanguage, "error_generic"))
		return
	}
	lang := user.Lang()

	if user.IsRegistered() {
		status := i18n.StatusText(user.RegistrationStatus(), lang)
		b.sendWithMainMenu(chatID, lang, i18n.Tf(lang, "welcome", user.FullName)+"\n\n"+status)
		return
	}

	if user != nil {
		if user.FullName == "" {
			b.sendText(chatID, i18n.T(lang, "continue_full_name"))
			b.setState(ctx, userID, models.StateWaitingFullName, nil)
			return
		}
		if user.Phone == "" {
			if _, err := b.tgService.SendWithKeyboard(chatID, i18n.T(lang, "continue_phone"), contactKeyboard(lang)); err != nil {
				b.logError(ctx, err, userID, "send contact prompt")
			}
			b.setState(ctx, userID, models.StateWaitingContact, map[string]interface{}{
				"full_name": user.FullName,
			})
			return
		}
	}

	if user == nil {
		if _, err := b.tgService.SendWithInlineKeyboard(chatID, i18n.ChooseLanguage, languageKeyboard("lang_")); err != nil {
			b.logError(ctx, err, userID, "send language prompt")
		}
		b.setState(ctx, userID, models.StateWaitingLanguage, nil)
		return
	}

	// Сюда попадать не должны, но на всякий случай начинаем анкету заново
	b.sendText(chatID, i18n.T(lang, "enter_full_name"))
	b.setState(ctx, userID, models.StateWaitingFullName, nil)
}

// passesGate проверяет подписку и при отказе показывает кнопки каналов.
// Недоступность хранилища трактуется как отказ: шаг диалога не меняется,
// пользователь получает общее сообщение об ошибке.
func (b *Bot) passesGate(ctx context.Context, userID, chatID int64, lang string) bool {
	channels, err := b.repo.ListChannels(ctx)
	if err != nil {
		b.logError(ctx, err, userID, "list channels")
		b.sendText(chatID, i18n.T(lang, "error_generic"))
		return false
	}
	if len(channels) == 0 {
		return true
	}

	subscribed := b.verifier.Verify(ctx, userID, channels)
	if b.metrics != nil {
		result := "passed"
		if !subscribed {
			result = "failed"
		}
		b.metrics.SubscriptionChecks.WithLabelValues(result).Inc()
	}
	if subscribed {
		return true
	}

	if _, err := b.tgService.SendWithInlineKeyboard(chatID, i18n.T(lang, "subscribe_prompt"), subscribeKeyboard(lang, channels)); err != nil {
		b.logError(ctx, err, userID, "send subscribe prompt")
	}
	b.setState(ctx, userID, models.StateWaitingSubscription, nil)
	return false
}

func (b *Bot) setState(ctx context.Context, userID int64, step string, data map[string]interface{}) {
	if err := b.stateService.SetUserState(ctx, userID, step, data); err != nil {
		b.logError(ctx, err, userID, "set state "+step)
	}
}
