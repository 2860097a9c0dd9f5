package service

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tadbirbot/internal/events"
	"tadbirbot/internal/models"
)

func TestValidateFullName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{"valid", "Alisher Navoiy", "Alisher Navoiy", ""},
		{"extra spaces", "  Alisher   Navoiy  ", "Alisher Navoiy", ""},
		{"three parts", "Mirzo Ulugbek Taragay", "Mirzo Ulugbek Taragay", ""},
		{"cyrillic", "Алишер Навоий", "Алишер Навоий", ""},
		{"single word", "Alisher", "", "err_full_name_format"},
		{"empty", "", "", "err_full_name_format"},
		{"short first name", "A Navoiy", "", "err_first_name_short"},
		{"long first name", strings.Repeat("a", 51) + " Navoiy", "", "err_first_name_long"},
		{"short last name", "Alisher N", "", "err_last_name_short"},
		{"long last name", "Alisher " + strings.Repeat("b", 51), "", "err_last_name_long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errKey := ValidateFullName(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, errKey)
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{"plain international", "+998901234567", "+998901234567", ""},
		{"no plus", "998901234567", "+998901234567", ""},
		{"spaces and dashes", "+998 90 123-45-67", "+998901234567", ""},
		{"parens", "(99890) 123 45 67", "+998901234567", ""},
		{"too short", "12345", "", "err_phone_format"},
		{"too long", "+12345678901234567", "", "err_phone_format"},
		{"letters only", "call me", "", "err_phone_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errKey := NormalizePhone(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, errKey)
		})
	}
}

func TestNormalizeContactPhone(t *testing.T) {
	assert.Equal(t, "+998901234567", NormalizeContactPhone("998901234567"))
	assert.Equal(t, "+998901234567", NormalizeContactPhone("+998901234567"))
}

func TestCompleteRegistration(t *testing.T) {
	repo := new(mockRepo)
	bus := new(mockBus)
	logger := zerolog.Nop()
	svc := NewRegistrationService(repo, bus, nil, &logger)

	repo.On("CompleteRegistration", mock.Anything, int64(100), "Alisher Navoiy", "+998901234567").Return(nil)
	repo.On("GetUser", mock.Anything, int64(100)).Return(&models.User{
		TelegramID:    100,
		FullName:      "Alisher Navoiy",
		Phone:         "+998901234567",
		PaymentStatus: models.StatusPending,
	}, nil)
	bus.On("PublishJSON", events.EventRegistrationCompleted, mock.Anything).Return(nil)

	err := svc.Complete(context.Background(), 100, "Alisher Navoiy", "+998901234567")
	require.NoError(t, err)

	repo.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestCompleteRegistrationWithTicketSyncsLedger(t *testing.T) {
	repo := new(mockRepo)
	bus := new(mockBus)
	ledger := new(mockLedger)
	logger := zerolog.Nop()
	svc := NewRegistrationService(repo, bus, ledger, &logger)

	repo.On("CompleteRegistration", mock.Anything, int64(100), "Alisher Navoiy", "+998901234567").Return(nil)
	repo.On("GetUser", mock.Anything, int64(100)).Return(&models.User{
		TelegramID:    100,
		FullName:      "Alisher Navoiy",
		Phone:         "+998901234567",
		PaymentStatus: models.StatusApproved,
		TicketID:      "TCK-DEADBEEF",
	}, nil)
	bus.On("PublishJSON", events.EventRegistrationCompleted, mock.Anything).Return(nil)
	ledger.On("Enqueue", mock.Anything, mock.MatchedBy(func(row *models.LedgerRow) bool {
		return row.TicketID == "TCK-DEADBEEF" && row.Paid
	})).Return(nil)

	err := svc.Complete(context.Background(), 100, "Alisher Navoiy", "+998901234567")
	require.NoError(t, err)

	ledger.AssertExpectations(t)
}

func TestSetLanguageFallsBackToDefault(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.Nop()
	svc := NewRegistrationService(repo, nil, nil, &logger)

	repo.On("SetLanguage", mock.Anything, int64(100), models.DefaultLanguage).Return(nil)

	err := svc.SetLanguage(context.Background(), 100, "de")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
