package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tadbirbot/internal/models"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) CreateUserIfAbsent(ctx context.Context, telegramID int64, username string) (*models.User, error) {
	args := m.Called(ctx, telegramID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) SetLanguage(ctx context.Context, telegramID int64, lang string) error {
	return m.Called(ctx, telegramID, lang).Error(0)
}
func (m *mockRepo) CompleteRegistration(ctx context.Context, telegramID int64, fullName, phone string) error {
	return m.Called(ctx, telegramID, fullName, phone).Error(0)
}
func (m *mockRepo) SetUserEvent(ctx context.Context, telegramID, eventID int64) error {
	return m.Called(ctx, telegramID, eventID).Error(0)
}
func (m *mockRepo) ClearUserEvent(ctx context.Context, telegramID int64) error {
	return m.Called(ctx, telegramID).Error(0)
}
func (m *mockRepo) SetPaymentStatus(ctx context.Context, telegramID int64, status string) error {
	return m.Called(ctx, telegramID, status).Error(0)
}
func (m *mockRepo) ResetForNewEvent(ctx context.Context, telegramID int64, ticketID string) error {
	return m.Called(ctx, telegramID, ticketID).Error(0)
}
func (m *mockRepo) ApproveUser(ctx context.Context, telegramID int64, ticketID string) error {
	return m.Called(ctx, telegramID, ticketID).Error(0)
}
func (m *mockRepo) ListChannels(ctx context.Context) ([]models.Channel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Channel), args.Error(1)
}
func (m *mockRepo) AddChannel(ctx context.Context, channel *models.Channel) error {
	return m.Called(ctx, channel).Error(0)
}
func (m *mockRepo) DeleteChannel(ctx context.Context, chatID string) error {
	return m.Called(ctx, chatID).Error(0)
}
func (m *mockRepo) ListActiveEvents(ctx context.Context, lang string) ([]models.Event, error) {
	args := m.Called(ctx, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}
func (m *mockRepo) LatestActiveEvent(ctx context.Context, lang string) (*models.Event, error) {
	args := m.Called(ctx, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}
func (m *mockRepo) GetEvent(ctx context.Context, id int64, lang string) (*models.Event, error) {
	args := m.Called(ctx, id, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}
func (m *mockRepo) CreateEvent(ctx context.Context, event *models.Event, names, addresses map[string]string) error {
	return m.Called(ctx, event, names, addresses).Error(0)
}
func (m *mockRepo) SetEventActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}
func (m *mockRepo) EventStats(ctx context.Context, eventID int64) (*models.EventStats, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventStats), args.Error(1)
}
func (m *mockRepo) ListPendingApproval(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}
func (m *mockRepo) ListApprovedByEvent(ctx context.Context, eventID int64) ([]models.User, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}
func (m *mockRepo) UserStats(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

type mockBus struct {
	mock.Mock
}

func (m *mockBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Enqueue(ctx context.Context, row *models.LedgerRow) error {
	return m.Called(ctx, row).Error(0)
}
func (m *mockLedger) Resync(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
