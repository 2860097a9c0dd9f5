// Package subscription проверяет подписку участника на обязательные каналы.
package subscription

import (
	"context"
	"strconv"
	"strings"

	"tadbirbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// ChatMemberGetter — единственный вызов Telegram, который нужен проверке.
type ChatMemberGetter interface {
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Статусы Telegram, которые считаются подпиской.
var memberStatuses = map[string]bool{
	"member":        true,
	"administrator": true,
	"creator":       true,
}

// Verifier опрашивает Telegram по каждому каналу на каждом входящем событии.
// Результат не кэшируется: отписка действует немедленно.
type Verifier struct {
	tg     ChatMemberGetter
	logger *zerolog.Logger
}

func NewVerifier(tg ChatMemberGetter, logger *zerolog.Logger) *Verifier {
	return &Verifier{tg: tg, logger: logger}
}

// Verify возвращает true, когда участник подписан на все каналы.
// Пустой список каналов означает отсутствие требования.
// Любая ошибка опроса трактуется как отсутствие подписки.
func (v *Verifier) Verify(ctx context.Context, userID int64, channels []models.Channel) bool {
	if len(channels) == 0 {
		return true
	}

	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = v.logger
	}

	for _, ch := range channels {
		cfg, ok := chatMemberConfig(ch.ChatID, userID)
		if !ok {
			// Нераспознанный формат не блокирует участника
			logger.Warn().Str("chat_id", ch.ChatID).Msg("unknown channel format, skipping")
			continue
		}

		member, err := v.tg.GetChatMember(cfg)
		if err != nil {
			logger.Warn().Err(err).Str("chat_id", ch.ChatID).Int64("user_id", userID).
				Msg("chat member check failed")
			return false
		}

		if !memberStatuses[member.Status] {
			logger.Debug().Str("chat_id", ch.ChatID).Int64("user_id", userID).
				Str("status", member.Status).Msg("user is not subscribed")
			return false
		}
	}

	return true
}

// chatMemberConfig строит запрос по тому, как админ записал канал:
// @username напрямую, "-100…" и числовые id как chat id,
// всё остальное считается нераспознанным.
func chatMemberConfig(chatID string, userID int64) (tgbotapi.GetChatMemberConfig, bool) {
	cfg := tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{UserID: userID},
	}

	switch {
	case strings.HasPrefix(chatID, "@"):
		cfg.SuperGroupUsername = chatID
		return cfg, true
	case strings.HasPrefix(chatID, "-100"):
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return cfg, false
		}
		cfg.ChatID = id
		return cfg, true
	case isNumericID(chatID):
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return cfg, false
		}
		cfg.ChatID = id
		return cfg, true
	default:
		return cfg, false
	}
}

func isNumericID(s string) bool {
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
