package models

// Статусы оплаты. Переходы монотонны:
// pending → pending_approval → {approved, rejected};
// rejected возвращается в pending только при выборе другого мероприятия.
const (
	StatusPending         = "pending"
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
	StatusNotRegistered   = "not_registered"
)

// Шаги диалога регистрации.
const (
	StateWaitingLanguage          = "waiting_language"
	StateWaitingSubscription      = "waiting_subscription"
	StateWaitingFullName          = "waiting_full_name"
	StateWaitingContact           = "waiting_contact"
	StateWaitingPaymentScreenshot = "waiting_payment_screenshot"
)

// Поддерживаемые языки.
const (
	LangUz = "uz"
	LangRu = "ru"
	LangEn = "en"

	DefaultLanguage = LangUz
)

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

const (
	// DefaultStateTTL время жизни состояния диалога в Redis (сутки)
	DefaultStateTTL = 24 * 60 * 60

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений, секунды
	RateLimitWindow = 60

	// LedgerQueueSize размер in-memory очереди воркера реестра
	LedgerQueueSize = 256

	// MinNamePartLen и MaxNamePartLen границы длины имени и фамилии
	MinNamePartLen = 2
	MaxNamePartLen = 50
)

// SupportedLanguage проверяет код языка из callback-данных.
func SupportedLanguage(code string) bool {
	switch code {
	case LangUz, LangRu, LangEn:
		return true
	}
	return false
}
