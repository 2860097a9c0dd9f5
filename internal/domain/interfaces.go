package domain

import (
	"context"
	"time"

	"tadbirbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Repository — контракт хранилища пользователей, каналов и мероприятий.
type Repository interface {
	GetUser(ctx context.Context, telegramID int64) (*models.User, error)
	CreateUserIfAbsent(ctx context.Context, telegramID int64, username string) (*models.User, error)
	SetLanguage(ctx context.Context, telegramID int64, lang string) error
	CompleteRegistration(ctx context.Context, telegramID int64, fullName, phone string) error
	SetUserEvent(ctx context.Context, telegramID int64, eventID int64) error
	ClearUserEvent(ctx context.Context, telegramID int64) error
	SetPaymentStatus(ctx context.Context, telegramID int64, status string) error
	ResetForNewEvent(ctx context.Context, telegramID int64, ticketID string) error
	ApproveUser(ctx context.Context, telegramID int64, ticketID string) error

	ListChannels(ctx context.Context) ([]models.Channel, error)
	AddChannel(ctx context.Context, channel *models.Channel) error
	DeleteChannel(ctx context.Context, chatID string) error

	ListActiveEvents(ctx context.Context, lang string) ([]models.Event, error)
	LatestActiveEvent(ctx context.Context, lang string) (*models.Event, error)
	GetEvent(ctx context.Context, id int64, lang string) (*models.Event, error)
	CreateEvent(ctx context.Context, event *models.Event, names, addresses map[string]string) error
	SetEventActive(ctx context.Context, id int64, active bool) error
	EventStats(ctx context.Context, eventID int64) (*models.EventStats, error)

	ListPendingApproval(ctx context.Context) ([]models.User, error)
	ListApprovedByEvent(ctx context.Context, eventID int64) ([]models.User, error)
	UserStats(ctx context.Context) (map[string]int, error)
}

// StateRepository — низкоуровневое хранилище состояния диалога.
type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

// StateManager — сервисный слой над StateRepository.
type StateManager interface {
	GetUserState(ctx context.Context, userID int64) (*models.UserState, error)
	SetUserState(ctx context.Context, userID int64, step string, data map[string]interface{}) error
	ClearUserState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

// TelegramSender — минимальная поверхность tgbotapi.BotAPI, которую мы используем.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// TelegramService — удобные операции поверх TelegramSender.
type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendHTML(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	SendPhotoBytes(chatID int64, name string, data []byte, caption string) (tgbotapi.Message, error)
	SendPhotoByID(chatID int64, fileID string, caption string) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	DeleteMessage(chatID int64, messageID int) error
	AnswerCallback(callbackID, text string) error
	AnswerCallbackAlert(callbackID, text string) error
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// MembershipVerifier — проверка подписки на обязательные каналы.
// Запускается на каждом входящем событии, результат не кэшируется.
type MembershipVerifier interface {
	Verify(ctx context.Context, userID int64, channels []models.Channel) bool
}

// LedgerWriter — зеркало реестра участников (Google Sheets).
type LedgerWriter interface {
	UpsertUser(ctx context.Context, row *models.LedgerRow) error
}

// AttendanceMarker отмечает прибытие участника в реестре по билету.
type AttendanceMarker interface {
	MarkArrived(ctx context.Context, ticketID, scannerName string) (string, error)
}

// LedgerSyncer — асинхронная очередь зеркалирования.
type LedgerSyncer interface {
	Enqueue(ctx context.Context, row *models.LedgerRow) error
	Resync(ctx context.Context) (int, error)
}

// EventPublisher — внутрипроцессная шина событий.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// TicketRenderer — генерация изображения QR-билета по стабильному идентификатору.
type TicketRenderer interface {
	Render(ticketID string) ([]byte, error)
}
