package service

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"tadbirbot/internal/domain"
	"tadbirbot/internal/events"
	"tadbirbot/internal/models"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)
var phoneJunk = regexp.MustCompile(`[^\d+]`)

// RegistrationService ведёт пользователя от выбора языка до сохранённой анкеты.
type RegistrationService struct {
	repo   domain.Repository
	bus    domain.EventPublisher
	ledger domain.LedgerSyncer
	logger *zerolog.Logger
}

func NewRegistrationService(repo domain.Repository, bus domain.EventPublisher, ledger domain.LedgerSyncer, logger *zerolog.Logger) *RegistrationService {
	return &RegistrationService{
		repo:   repo,
		bus:    bus,
		ledger: ledger,
		logger: logger,
	}
}

// ValidateFullName проверяет "Имя Фамилия" и возвращает нормализованную строку.
// При ошибке второй результат содержит ключ текста для пользователя.
func ValidateFullName(raw string) (string, string) {
	parts := strings.Fields(strings.TrimSpace(raw))
	if len(parts) < 2 {
		return "", "err_full_name_format"
	}

	firstName := parts[0]
	lastName := strings.Join(parts[1:], " ")

	switch n := utf8.RuneCountInString(firstName); {
	case n < models.MinNamePartLen:
		return "", "err_first_name_short"
	case n > models.MaxNamePartLen:
		return "", "err_first_name_long"
	}
	switch n := utf8.RuneCountInString(lastName); {
	case n < models.MinNamePartLen:
		return "", "err_last_name_short"
	case n > models.MaxNamePartLen:
		return "", "err_last_name_long"
	}

	return firstName + " " + lastName, ""
}

// NormalizePhone чистит введённый вручную номер и приводит его к виду +998...
func NormalizePhone(raw string) (string, string) {
	clean := phoneJunk.ReplaceAllString(strings.TrimSpace(raw), "")
	if !phonePattern.MatchString(clean) {
		return "", "err_phone_format"
	}
	if !strings.HasPrefix(clean, "+") {
		clean = "+" + clean
	}
	return clean, ""
}

// NormalizeContactPhone приводит номер из объекта Contact, без проверки формата.
func NormalizeContactPhone(phone string) string {
	if !strings.HasPrefix(phone, "+") {
		return "+" + phone
	}
	return phone
}

func (s *RegistrationService) EnsureUser(ctx context.Context, telegramID int64, username string) (*models.User, error) {
	return s.repo.CreateUserIfAbsent(ctx, telegramID, username)
}

func (s *RegistrationService) SetLanguage(ctx context.Context, telegramID int64, lang string) error {
	if !models.SupportedLanguage(lang) {
		lang = models.DefaultLanguage
	}
	return s.repo.SetLanguage(ctx, telegramID, lang)
}

// Complete сохраняет анкету и рассылает событие о завершении регистрации.
func (s *RegistrationService) Complete(ctx context.Context, telegramID int64, fullName, phone string) error {
	if err := s.repo.CompleteRegistration(ctx, telegramID, fullName, phone); err != nil {
		return err
	}

	user, err := s.repo.GetUser(ctx, telegramID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", telegramID).Msg("failed to reload user after registration")
		user = nil
	}

	payload := events.UserEventPayload{
		TelegramID: telegramID,
		FullName:   fullName,
		Phone:      phone,
	}
	if user != nil {
		payload.Status = user.PaymentStatus
		payload.TicketID = user.TicketID
	}
	if s.bus != nil {
		if err := s.bus.PublishJSON(events.EventRegistrationCompleted, payload); err != nil {
			s.logger.Error().Err(err).Msg("failed to publish registration event")
		}
	}

	// В реестр попадают только обладатели билета; анкета без билета
	// уедет туда при одобрении оплаты.
	if s.ledger != nil && user != nil && user.TicketID != "" {
		row := &models.LedgerRow{
			TicketID: user.TicketID,
			FullName: fullName,
			Phone:    phone,
			Paid:     user.PaymentStatus == models.StatusApproved,
		}
		if err := s.ledger.Enqueue(ctx, row); err != nil {
			s.logger.Error().Err(err).Str("ticket_id", user.TicketID).Msg("failed to enqueue ledger row")
		}
	}

	return nil
}
