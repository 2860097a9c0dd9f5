package database

import (
	"context"
	"os"
	"testing"

	"tadbirbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.New(os.Stdout)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	return db
}

func TestCreateUserIfAbsent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	user, err := db.CreateUserIfAbsent(ctx, 12345, "testuser")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(12345), user.TelegramID)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, models.StatusPending, user.PaymentStatus)
	assert.Equal(t, models.LangUz, user.Language)
	assert.False(t, user.IsRegistered())

	// Повторный вызов не затирает данные, только username
	require.NoError(t, db.CompleteRegistration(ctx, 12345, "Test User", "+998901234567"))

	user, err = db.CreateUserIfAbsent(ctx, 12345, "renamed")
	require.NoError(t, err)
	assert.Equal(t, "renamed", user.Username)
	assert.Equal(t, "Test User", user.FullName)
	assert.True(t, user.IsRegistered())
}

func TestGetUserNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user, err := db.GetUser(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCompleteRegistration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	_, err := db.CreateUserIfAbsent(ctx, 100, "u")
	require.NoError(t, err)

	err = db.CompleteRegistration(ctx, 100, "Ali Valiyev", "+998901112233")
	require.NoError(t, err)

	user, err := db.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "Ali Valiyev", user.FullName)
	assert.Equal(t, "+998901112233", user.Phone)

	// Для несуществующего пользователя возвращается ошибка
	err = db.CompleteRegistration(ctx, 555, "Nobody", "+998900000000")
	assert.Error(t, err)
}

func TestSetLanguage(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	_, err := db.CreateUserIfAbsent(ctx, 100, "u")
	require.NoError(t, err)

	require.NoError(t, db.SetLanguage(ctx, 100, models.LangRu))

	user, _ := db.GetUser(ctx, 100)
	assert.Equal(t, models.LangRu, user.Language)
}

func TestPaymentLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	_, err := db.CreateUserIfAbsent(ctx, 100, "u")
	require.NoError(t, err)
	require.NoError(t, db.SetUserEvent(ctx, 100, 7))

	// Скриншот отправлен
	require.NoError(t, db.SetPaymentStatus(ctx, 100, models.StatusPendingApproval))

	user, _ := db.GetUser(ctx, 100)
	assert.Equal(t, models.StatusPendingApproval, user.PaymentStatus)
	assert.Equal(t, int64(7), user.EventID.Int64)

	// Одобрение выдает билет
	require.NoError(t, db.ApproveUser(ctx, 100, "ticket-1"))

	user, _ = db.GetUser(ctx, 100)
	assert.Equal(t, models.StatusApproved, user.PaymentStatus)
	assert.True(t, user.Approved)
	assert.Equal(t, "ticket-1", user.TicketID)

	// Повторное одобрение не выдает второй билет
	require.NoError(t, db.ApproveUser(ctx, 100, "ticket-2"))

	user, _ = db.GetUser(ctx, 100)
	assert.Equal(t, "ticket-1", user.TicketID)
}

func TestResetForNewEvent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	_, err := db.CreateUserIfAbsent(ctx, 100, "u")
	require.NoError(t, err)
	require.NoError(t, db.SetUserEvent(ctx, 100, 1))
	require.NoError(t, db.ApproveUser(ctx, 100, "old-ticket"))

	require.NoError(t, db.ResetForNewEvent(ctx, 100, "new-ticket"))

	user, _ := db.GetUser(ctx, 100)
	assert.Equal(t, models.StatusPending, user.PaymentStatus)
	assert.False(t, user.Approved)
	assert.Equal(t, "new-ticket", user.TicketID)
	assert.False(t, user.EventID.Valid)
}

func TestClearUserEvent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	_, err := db.CreateUserIfAbsent(ctx, 100, "u")
	require.NoError(t, err)
	require.NoError(t, db.SetUserEvent(ctx, 100, 3))
	require.NoError(t, db.SetPaymentStatus(ctx, 100, models.StatusRejected))

	require.NoError(t, db.ClearUserEvent(ctx, 100))

	// Статус не меняется, снимается только привязка к мероприятию
	user, _ := db.GetUser(ctx, 100)
	assert.False(t, user.EventID.Valid)
	assert.Equal(t, models.StatusRejected, user.PaymentStatus)
}

func TestListPendingApproval(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		_, err := db.CreateUserIfAbsent(ctx, id, "u")
		require.NoError(t, err)
	}
	require.NoError(t, db.SetPaymentStatus(ctx, 1, models.StatusPendingApproval))
	require.NoError(t, db.SetPaymentStatus(ctx, 2, models.StatusApproved))

	pending, err := db.ListPendingApproval(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].TelegramID)
}

func TestListApprovedByEvent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		_, err := db.CreateUserIfAbsent(ctx, id, "u")
		require.NoError(t, err)
		require.NoError(t, db.SetUserEvent(ctx, id, 5))
	}
	require.NoError(t, db.ApproveUser(ctx, 1, "t1"))
	require.NoError(t, db.ApproveUser(ctx, 2, "t2"))
	require.NoError(t, db.SetUserEvent(ctx, 2, 6))

	approved, err := db.ListApprovedByEvent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, int64(1), approved[0].TelegramID)
}

func TestUserStats(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	for id := int64(1); id <= 4; id++ {
		_, err := db.CreateUserIfAbsent(ctx, id, "u")
		require.NoError(t, err)
	}
	require.NoError(t, db.SetPaymentStatus(ctx, 1, models.StatusApproved))
	require.NoError(t, db.SetPaymentStatus(ctx, 2, models.StatusPendingApproval))
	require.NoError(t, db.SetPaymentStatus(ctx, 3, models.StatusRejected))

	stats, err := db.UserStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats["total"])
	assert.Equal(t, 1, stats[models.StatusApproved])
	assert.Equal(t, 1, stats[models.StatusPendingApproval])
	assert.Equal(t, 1, stats[models.StatusRejected])
	assert.Equal(t, 1, stats[models.StatusPending])
}
