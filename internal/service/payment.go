package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"tadbirbot/internal/domain"
	"tadbirbot/internal/events"
	"tadbirbot/internal/models"
	"tadbirbot/internal/ticket"
)

var (
	// ErrAlreadyApproved оплата этого мероприятия уже подтверждена.
	ErrAlreadyApproved = errors.New("payment already approved for this event")
	// ErrNotAwaitingApproval статус пользователя не предполагает решения админа.
	ErrNotAwaitingApproval = errors.New("user is not awaiting approval")
	// ErrEventNotFound мероприятие не найдено или снято с продажи.
	ErrEventNotFound = errors.New("event not found")
)

// PaymentService проводит участника от выбора мероприятия до билета.
type PaymentService struct {
	repo   domain.Repository
	bus    domain.EventPublisher
	ledger domain.LedgerSyncer
	logger *zerolog.Logger
}

func NewPaymentService(repo domain.Repository, bus domain.EventPublisher, ledger domain.LedgerSyncer, logger *zerolog.Logger) *PaymentService {
	return &PaymentService{
		repo:   repo,
		bus:    bus,
		ledger: ledger,
		logger: logger,
	}
}

// Begin закрепляет мероприятие за пользователем и возвращает его карточку.
// Повторная покупка уже оплаченного мероприятия запрещена; переход на другое
// мероприятие обнуляет статус и выдаёт новый идентификатор билета.
func (s *PaymentService) Begin(ctx context.Context, telegramID, eventID int64, lang string) (*models.Event, error) {
	event, err := s.repo.GetEvent(ctx, eventID, lang)
	if err != nil {
		return nil, err
	}
	if event == nil || !event.Active {
		return nil, ErrEventNotFound
	}

	user, err := s.repo.GetUser(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d not found", telegramID)
	}

	if user.PaymentStatus == models.StatusApproved {
		if user.EventID.Valid && user.EventID.Int64 == eventID {
			return event, ErrAlreadyApproved
		}
		// Старый билет аннулируется, идентификатор меняется
		if err := s.repo.ResetForNewEvent(ctx, telegramID, ticket.NewID()); err != nil {
			return nil, err
		}
	}

	if err := s.repo.SetUserEvent(ctx, telegramID, eventID); err != nil {
		return nil, err
	}
	return event, nil
}

// Cancel снимает выбор мероприятия, статус оплаты не трогает.
func (s *PaymentService) Cancel(ctx context.Context, telegramID int64) error {
	return s.repo.ClearUserEvent(ctx, telegramID)
}

// SubmitReceipt переводит пользователя в ожидание решения админа.
func (s *PaymentService) SubmitReceipt(ctx context.Context, telegramID int64) (*models.User, error) {
	if err := s.repo.SetPaymentStatus(ctx, telegramID, models.StatusPendingApproval); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUser(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	s.publish(events.EventPaymentSubmitted, user, "user", telegramID)
	return user, nil
}

// Approve подтверждает оплату и выдаёт билет. Повторное подтверждение
// не меняет уже выданный идентификатор.
func (s *PaymentService) Approve(ctx context.Context, telegramID, adminID int64) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d not found", telegramID)
	}
	if user.PaymentStatus != models.StatusPendingApproval {
		return user, ErrNotAwaitingApproval
	}

	if err := s.repo.ApproveUser(ctx, telegramID, ticket.NewID()); err != nil {
		return nil, err
	}

	user, err = s.repo.GetUser(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	s.publish(events.EventPaymentApproved, user, "admin", adminID)

	if s.ledger != nil && user != nil && user.TicketID != "" {
		row := &models.LedgerRow{
			TicketID: user.TicketID,
			FullName: user.FullName,
			Phone:    user.Phone,
			Paid:     true,
		}
		if err := s.ledger.Enqueue(ctx, row); err != nil {
			s.logger.Error().Err(err).Str("ticket_id", user.TicketID).Msg("failed to enqueue ledger row")
		}
	}

	return user, nil
}

// Reject отклоняет чек; пользователь может прислать новый.
func (s *PaymentService) Reject(ctx context.Context, telegramID, adminID int64) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d not found", telegramID)
	}
	if user.PaymentStatus != models.StatusPendingApproval {
		return user, ErrNotAwaitingApproval
	}

	if err := s.repo.SetPaymentStatus(ctx, telegramID, models.StatusRejected); err != nil {
		return nil, err
	}

	user, err = s.repo.GetUser(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	s.publish(events.EventPaymentRejected, user, "admin", adminID)
	return user, nil
}

// Resync вручную доливает незаписанные строки реестра.
func (s *PaymentService) Resync(ctx context.Context) (int, error) {
	if s.ledger == nil {
		return 0, errors.New("ledger sync is not configured")
	}
	return s.ledger.Resync(ctx)
}

func (s *PaymentService) publish(eventType string, user *models.User, changedBy string, changedByID int64) {
	if s.bus == nil || user == nil {
		return
	}
	payload := events.UserEventPayload{
		TelegramID:  user.TelegramID,
		FullName:    user.FullName,
		Phone:       user.Phone,
		Status:      user.PaymentStatus,
		TicketID:    user.TicketID,
		ChangedBy:   changedBy,
		ChangedByID: changedByID,
	}
	if user.EventID.Valid {
		payload.EventID = user.EventID.Int64
	}
	if err := s.bus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("failed to publish payment event")
	}
}
