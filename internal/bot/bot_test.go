package bot

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"tadbirbot/internal/config"
	"tadbirbot/internal/domain"
	"tadbirbot/internal/i18n"
	"tadbirbot/internal/models"
	"tadbirbot/internal/service"
)

type mockTelegramService struct {
	domain.TelegramService
	updatesChan chan tgbotapi.Update
	sent        []tgbotapi.Chattable
	texts       []string
	callbacks   []string
	alerts      []string
	deleted     int
}

func (m *mockTelegramService) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.sent = append(m.sent, c)
	return tgbotapi.Message{}, nil
}

func (m *mockTelegramService) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	m.texts = append(m.texts, text)
	return m.Send(tgbotapi.NewMessage(chatID, text))
}

func (m *mockTelegramService) SendHTML(chatID int64, text string) (tgbotapi.Message, error) {
	m.texts = append(m.texts, text)
	return m.Send(tgbotapi.NewMessage(chatID, text))
}

func (m *mockTelegramService) SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error) {
	m.texts = append(m.texts, text)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	return m.Send(msg)
}

func (m *mockTelegramService) SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	m.texts = append(m.texts, text)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	return m.Send(msg)
}

func (m *mockTelegramService) SendPhotoBytes(chatID int64, name string, data []byte, caption string) (tgbotapi.Message, error) {
	m.texts = append(m.texts, caption)
	return m.Send(tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: data}))
}

func (m *mockTelegramService) EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	m.texts = append(m.texts, text)
	return tgbotapi.Message{}, nil
}

func (m *mockTelegramService) DeleteMessage(chatID int64, messageID int) error {
	m.deleted++
	return nil
}

func (m *mockTelegramService) AnswerCallback(callbackID, text string) error {
	m.callbacks = append(m.callbacks, text)
	return nil
}

func (m *mockTelegramService) AnswerCallbackAlert(callbackID, text string) error {
	m.alerts = append(m.alerts, text)
	return nil
}

func (m *mockTelegramService) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return m.updatesChan
}

func (m *mockTelegramService) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "test_bot"}
}

type fakeRepo struct {
	domain.Repository
	users       map[int64]*models.User
	channels    []models.Channel
	channelsErr error
	events      map[int64]*models.Event
	latest      *models.Event
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:  make(map[int64]*models.User),
		events: make(map[int64]*models.Event),
	}
}

func (r *fakeRepo) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	return r.users[telegramID], nil
}

func (r *fakeRepo) CreateUserIfAbsent(ctx context.Context, telegramID int64, username string) (*models.User, error) {
	if u, ok := r.users[telegramID]; ok {
		return u, nil
	}
	u := &models.User{TelegramID: telegramID, Username: username, PaymentStatus: models.StatusPending}
	r.users[telegramID] = u
	return u, nil
}

func (r *fakeRepo) SetLanguage(ctx context.Context, telegramID int64, lang string) error {
	if u, ok := r.users[telegramID]; ok {
		u.Language = lang
	}
	return nil
}

func (r *fakeRepo) CompleteRegistration(ctx context.Context, telegramID int64, fullName, phone string) error {
	if u, ok := r.users[telegramID]; ok {
		u.FullName = fullName
		u.Phone = phone
	}
	return nil
}

func (r *fakeRepo) SetUserEvent(ctx context.Context, telegramID int64, eventID int64) error {
	if u, ok := r.users[telegramID]; ok {
		u.EventID = sql.NullInt64{Int64: eventID, Valid: true}
	}
	return nil
}

func (r *fakeRepo) SetPaymentStatus(ctx context.Context, telegramID int64, status string) error {
	if u, ok := r.users[telegramID]; ok {
		u.PaymentStatus = status
	}
	return nil
}

func (r *fakeRepo) ApproveUser(ctx context.Context, telegramID int64, ticketID string) error {
	if u, ok := r.users[telegramID]; ok {
		u.PaymentStatus = models.StatusApproved
		u.Approved = true
		if u.TicketID == "" {
			u.TicketID = ticketID
		}
	}
	return nil
}

func (r *fakeRepo) ListChannels(ctx context.Context) ([]models.Channel, error) {
	if r.channelsErr != nil {
		return nil, r.channelsErr
	}
	return r.channels, nil
}

func (r *fakeRepo) GetEvent(ctx context.Context, id int64, lang string) (*models.Event, error) {
	return r.events[id], nil
}

func (r *fakeRepo) LatestActiveEvent(ctx context.Context, lang string) (*models.Event, error) {
	return r.latest, nil
}

type fakeState struct {
	states map[int64]*models.UserState
}

func (s *fakeState) GetUserState(ctx context.Context, userID int64) (*models.UserState, error) {
	return s.states[userID], nil
}

func (s *fakeState) SetUserState(ctx context.Context, userID int64, step string, data map[string]interface{}) error {
	s.states[userID] = &models.UserState{UserID: userID, CurrentStep: step, TempData: data}
	return nil
}

func (s *fakeState) ClearUserState(ctx context.Context, userID int64) error {
	delete(s.states, userID)
	return nil
}

func (s *fakeState) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	return true, nil
}

type fakeVerifier struct {
	subscribed bool
}

func (v *fakeVerifier) Verify(ctx context.Context, userID int64, channels []models.Channel) bool {
	return v.subscribed
}

const testAdminID int64 = 900

func newTestBot(repo *fakeRepo, tg *mockTelegramService, verifier *fakeVerifier) (*Bot, *fakeState) {
	logger := zerolog.New(io.Discard)
	state := &fakeState{states: make(map[int64]*models.UserState)}

	cfg := &config.Config{
		Telegram: config.TelegramConfig{BotToken: "test"},
		Admins:   []int64{testAdminID},
	}
	cfg.Payment.CardNumber = "8600 0000 0000 0000"
	cfg.Payment.CardOwner = "TEST OWNER"

	registration := service.NewRegistrationService(repo, nil, nil, &logger)
	payments := service.NewPaymentService(repo, nil, nil, &logger)
	eventsSvc := service.NewEventService(repo, &logger)

	b := NewBot(tg, cfg, state, repo, verifier, registration, payments, eventsSvc, nil, nil, nil, &logger)
	return b, state
}

func startMessage(userID int64) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From:     &tgbotapi.User{ID: userID, UserName: "testuser"},
			Chat:     &tgbotapi.Chat{ID: userID},
			Text:     "/start",
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
		},
	}
}

func TestStartNewUserAsksLanguage(t *testing.T) {
	tg := &mockTelegramService{}
	repo := newFakeRepo()
	b, state := newTestBot(repo, tg, &fakeVerifier{subscribed: true})

	b.handleMessage(context.Background(), startMessage(123))

	if got := state.states[123]; got == nil || got.CurrentStep != models.StateWaitingLanguage {
		t.Errorf("expected state %s, got %+v", models.StateWaitingLanguage, got)
	}
	if len(tg.sent) == 0 {
		t.Fatal("expected language prompt sent")
	}
}

func TestStartRegisteredUserGetsMenu(t *testing.T) {
	tg := &mockTelegramService{}
	repo := newFakeRepo()
	repo.users[123] = &models.User{
		TelegramID:    123,
		FullName:      "Aziz Karimov",
		Phone:         "+998901234567",
		Language:      models.LangUz,
		PaymentStatus: models.StatusPending,
	}
	b, state := newTestBot(repo, tg, &fakeVerifier{subscribed: true})

	b.handleMessage(context.Background(), startMessage(123))

	if got := state.states[123]; got != nil {
		t.Errorf("registered user must not get a dialog state, got %+v", got)
	}
	if len(tg.texts) == 0 {
		t.Fatal("expected welcome message sent")
	}
}

func TestStartMissingPhoneAsksContact(t *testing.T) {
	tg := &mockTelegramService{}
	repo := newFakeRepo()
	repo.users[123] = &models.User{TelegramID: 123, FullName: "Aziz Karimov", Language: models.LangRu}
	b, state := newTestBot(repo, tg, &fakeVerifier{subscribed: true})

	b.handleMessage(context.Background(), startMessage(123))

	got := state.states[123]
	if got == nil || got.CurrentStep != models.StateWaitingContact {
		t.Fatalf("expected state %s, got %+v", models.StateWaitingContact, got)
	}
	if got.GetString("full_name") != "Aziz Karimov" {
		t.Errorf("full name must be carried through temp data, got %q", got.GetString("full_name"))
	}
}

func TestStartBlockedBySubscriptionGate(t *testing.T) {
	tg := &mockTelegramService{}
	repo := newFakeRepo()
	repo.channels = []models.Channel{{ChatID: "@tadbir_news", Name: "Yangiliklar"}}
	b, state := newTestBot(repo, tg, &fakeVerifier{subscribed: false})

	b.handleMessage(context.Background(), startMessage(123))

	if got := state.states[123]; got == nil || got.CurrentStep != models.StateWaitingSubscription {
		t.Errorf("expected state %s, got %+v", models.StateWaitingSubscription, got)
	}
}

func TestGateBlocksMenuForUnsubscribed(t *testing.T) {
	tg := &mockTelegramService{}
	repo := newFakeRepo()
	repo.channels = []models.Channel{{ChatID: "@tadbir_news", Name: "Yangiliklar"}}
	repo.users[123] = &models.User{
		TelegramID:    123,
		FullName:      "Aziz Karimov",
		Phone:         "+998901234567",
		Language:      models.LangUz,
		PaymentStatus: models.StatusPending,
	}
	repo.latest = &models.Event{ID: 7, Name: "Navruz bayrami", Active: true}
	b, state := newTestBot(repo, tg, &fakeVerifier{subscribed: false})

	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 123},
			Chat: &tgbotapi.Chat{ID: 123},
			Text: i18n.T(models.LangUz, "btn_events"),
		},
	}
	b.handleMessage(context.Background(), update)

	if got := state.states[123]; got == nil || got.CurrentStep != models.StateWaitingSubscription {
		t.Errorf("expected state %s, got %+v", models.StateWaitingSubscription, got)
	}
	if len(tg.texts) != 1 || tg.texts[0] != i18n.T(models.LangUz, "subscribe_prompt") {
		t.Errorf("only the subscribe prompt must be sent, got %v", tg.texts)
	}
}

func TestGateBlocksCallbackForUnsubscribed(t *testing.T) {
	tg := &mockTelegramService{}
	repo := newFakeRepo()
	repo.channels = []models.Channel{{ChatID: "@tadbir_news", Name: "Yangiliklar"}}
	repo.users[123] = &models.User{
		TelegramID:    123,
		FullName:      "Aziz Karimov",
		Phone:         "+998901234567",
		Language:      models.LangUz,
		PaymentStatus: models.StatusPending,
	}
	repo.events[7] = &models.Event{ID: 7, Name: "Navruz bayrami", Active: true}
	b, state := newTestBot(repo, tg, &fakeVerifier{subscribed: false})

	update := tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb10",
			From: &tgbotapi.User{ID: 123},
			Message: &tgbotapi.Message{
				Chat:      &tgbotapi.Chat{ID: 123},
				MessageID: 20,
			},
			Data: "confirm_terms_7",
		},
	}
	b.handleCallbackQuery(context.Background(), update)

	if repo.users[123].EventID.Valid {
		t.Errorf("unsubscribed user must not attach an event, got %+v", repo.users[123].EventID)
	}
	if got := state.states[123]; got == nil || got.CurrentStep != models.StateWaitingSubscription {
		t.Errorf("expected state %s, got %+v", models.StateWaitingSubscription, got)
	}
	if len(tg.callbacks) == 0 {
		t.Error("blocked callback must still be answered")
	}
}

func TestGateFailsClosedOnChannelListError(t *testing.T) {
	tg := &mockTelegramService{}
	repo := newFakeRepo()
	repo.channelsErr = errors.New("db is locked")
	repo.users[123] = &models.User{
		TelegramID:    123,
		FullName:      "Aziz Karimov",
		Phone:         "+998901234567",
		Language:      models.LangUz,
		PaymentStatus: models.StatusPending,
	}
	repo.latest = &models.Event{ID: 7, Name: "Navruz bayrami", Active: true}
	b, state := newTestBot(repo, tg, &fakeVerifier{subscribed: true})

	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 123},
			Chat: &tgbotapi.Chat{ID: 123},
			Text: i18n.T(models.LangUz, "btn_events"),
		},
	}
	b.handleMessage(context.Background(), update)

	if len(tg.texts) != 1 || tg.texts[0] != i18n.T(models.LangUz, "error_generic") {
		t.Errorf("storage failure must surface a generic error, got %v", tg.texts)
	}
	// Шаг диалога не меняется
	if got := state.states[123]; got != nil {
		t.Errorf("state must stay unchanged on storage failure, got %+v", got)
	}
}

func TestLanguageCallbackStartsProfile(t *testing.T) {
	tg := &mockTelegramService{}
	repo := newFakeRepo()
	b, state := newTestBot(repo, tg, &fakeVerifier{subscribed: true})

	update := tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb1",
			From: &tgbotapi.User{ID: 123, UserName: "testuser"},
			Message: &tgbotapi.Message{
				Chat:      &tgbotapi.Chat{ID: 123},
				MessageID: 10,
			},
			Data: "lang_ru",
		},
	}

	b.handleCallbackQuery(context.Background(), update)

	user := repo.users[123]
	if user == nil {
		t.Fatal("user must be created on language selection")
	}
	if user.Language != models.LangRu {
		t.Errorf("expected language ru, got %q", user.Language)
	}
	if got := state.states[123]; got == nil || got.CurrentStep != models.StateWaitingFullName {
		t.Errorf("expected state %s, got %+v", models.StateWaitingFullName, got)
	}
}

func TestFullNameInput(t *testing.T) {
	tg := &mockTelegramService{}
	repo := newFakeRepo()
	repo.users[123] = &models.User{TelegramID: 123, Language: models.LangUz}
	b, state := newTestBot(repo, tg, &fakeVerifier{subscribed: true})

	state.states[123] = &models.UserState{UserID: 123, CurrentStep: models.StateWaitingFullName}

	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 123},
			Chat: &tgbotapi.Chat{ID: 123},
			Text: "Aziz Karimov",
		},
	}
	b.handleMessage(context.Background(), update)

	got := state.states[123]
	if got == nil || got.CurrentStep != models.StateWaitingContact {
		t.Fatalf("expected state %s, got %+v", models.StateWaitingContact, got)
	}
	if got.GetString("full_name") != "Aziz Karimov" {
		t.Errorf("unexpected stored name: %q", got.GetString("full_name"))
	}
}

func TestFullNameInputRejectsSingleWord(t *testing.T) {
	tg := &mockTelegramService{}
	repo := newFakeRepo()
	repo.users[123] = &models.User{TelegramID: 123, Language: models.LangUz}
	b, state := newTestBot(repo, tg, &fakeVerifier{subscribed: true})

	state.states[123] = &models.UserState{UserID: 123, CurrentStep: models.StateWaitingFullName}

	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 123},
			Chat: &tgbotapi.Chat{ID: 123},
			Text: "Aziz",
		},
	}
	b.handleMessage(context.Background(), update)

	// Шаг не меняется, пользователь пробует снова
	if got := state.states[123]; got == nil || got.CurrentStep != models.StateWaitingFullName {
		t.Errorf("step must stay on full name input, got %+v", got)
	}
	if len(tg.texts) == 0 {
		t.Error("expected validation error sent")
	}
}

func TestContactCompletesRegistration(t *testing.T) {
	tg := &mockTelegramService{}
	repo := newFakeRepo()
	repo.users[123] = &models.User{TelegramID: 123, Language: models.LangUz}
	b, state := newTestBot(repo, tg, &fakeVerifier{subscribed: true})

	state.states[123] = &models.UserState{
		UserID:      123,
		CurrentStep: models.StateWaitingContact,
		TempData:    map[string]interface{}{"full_name": "Aziz Karimov"},
	}

	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			From:    &tgbotapi.User{ID: 123},
			Chat:    &tgbotapi.Chat{ID: 123},
			Contact: &tgbotapi.Contact{PhoneNumber: "998901234567"},
		},
	}
	b.handleMessage(context.Background(), update)

	user := repo.users[123]
	if user.FullName != "Aziz Karimov" || user.Phone != "+998901234567" {
		t.Errorf("registration not saved: %+v", user)
	}
	if got := state.states[123]; got != nil {
		t.Errorf("state must be cleared after registration, got %+v", got)
	}
}

func TestConfirmTermsCallback(t *testing.T) {
	tg := &mockTelegramService{}
	repo := newFakeRepo()
	repo.users[123] = &models.User{
		TelegramID:    123,
		FullName:      "Aziz Karimov",
		Phone:         "+998901234567",
		Language:      models.LangUz,
		PaymentStatus: models.StatusPending,
	}
	repo.events[7] = &models.Event{
		ID: 7, Name: "Navruz bayrami", Address: "Toshkent",
		Date: "21.03.2026", Time: "18:00", PaymentAmount: 150000, Active: true,
	}
	b, state := newTestBot(repo, tg, &fakeVerifier{subscribed: true})

	update := tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb2",
			From: &tgbotapi.User{ID: 123},
			Message: &tgbotapi.Message{
				Chat:      &tgbotapi.Chat{ID: 123},
				MessageID: 11,
			},
			Data: "confirm_terms_7",
		},
	}
	b.handleCallbackQuery(context.Background(), update)

	user := repo.users[123]
	if !user.EventID.Valid || user.EventID.Int64 != 7 {
		t.Errorf("event must be attached to user, got %+v", user.EventID)
	}
	got := state.states[123]
	if got == nil || got.CurrentStep != models.StateWaitingPaymentScreenshot {
		t.Errorf("expected state %s, got %+v", models.StateWaitingPaymentScreenshot, got)
	}
}

func TestConfirmTermsRejectsIncompleteProfile(t *testing.T) {
	tg := &mockTelegramService{}
	repo := newFakeRepo()
	repo.users[123] = &models.User{
		TelegramID: 123,
		FullName:   "Aziz Karimov",
		Language:   models.LangUz,
	}
	repo.events[7] = &models.Event{ID: 7, Name: "Navruz bayrami", Active: true}
	b, state := newTestBot(repo, tg, &fakeVerifier{subscribed: true})

	update := tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb11",
			From: &tgbotapi.User{ID: 123},
			Message: &tgbotapi.Message{
				Chat:      &tgbotapi.Chat{ID: 123},
				MessageID: 21,
			},
			Data: "confirm_terms_7",
		},
	}
	b.handleCallbackQuery(context.Background(), update)

	if repo.users[123].EventID.Valid {
		t.Errorf("user without a phone must not attach an event, got %+v", repo.users[123].EventID)
	}
	if got := state.states[123]; got != nil {
		t.Errorf("incomplete profile must not enter the payment flow, got %+v", got)
	}
	if len(tg.alerts) == 0 {
		t.Error("expected an alert about the incomplete profile")
	}
}

func TestAdjudicationApproveRequiresPendingStatus(t *testing.T) {
	tg := &mockTelegramService{}
	repo := newFakeRepo()
	repo.users[123] = &models.User{
		TelegramID:    123,
		FullName:      "Aziz Karimov",
		Phone:         "+998901234567",
		PaymentStatus: models.StatusPending,
	}
	b, _ := newTestBot(repo, tg, &fakeVerifier{subscribed: true})

	update := tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb3",
			From: &tgbotapi.User{ID: testAdminID},
			Message: &tgbotapi.Message{
				Chat:      &tgbotapi.Chat{ID: testAdminID},
				MessageID: 12,
			},
			Data: "approve_123",
		},
	}
	b.handleCallbackQuery(context.Background(), update)

	if repo.users[123].PaymentStatus != models.StatusPending {
		t.Errorf("user without a receipt must not be approved, got status %q", repo.users[123].PaymentStatus)
	}
}

type fakeAttendance struct {
	name    string
	tickets []string
}

func (a *fakeAttendance) MarkArrived(ctx context.Context, ticketID, scannerName string) (string, error) {
	a.tickets = append(a.tickets, ticketID)
	return a.name, nil
}

func TestAdminCheckin(t *testing.T) {
	tg := &mockTelegramService{}
	repo := newFakeRepo()
	b, _ := newTestBot(repo, tg, &fakeVerifier{subscribed: true})
	attendance := &fakeAttendance{name: "Aziz Karimov"}
	b.attendance = attendance

	text := "/checkin TCK-1A2B3C4D"
	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			From:     &tgbotapi.User{ID: testAdminID, UserName: "admin"},
			Chat:     &tgbotapi.Chat{ID: testAdminID},
			Text:     text,
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 8}},
		},
	}
	b.handleMessage(context.Background(), update)

	if len(attendance.tickets) != 1 || attendance.tickets[0] != "TCK-1A2B3C4D" {
		t.Fatalf("expected check-in for ticket, got %v", attendance.tickets)
	}
	if len(tg.texts) == 0 {
		t.Fatal("expected confirmation sent")
	}
}

func TestAdjudicationIgnoredForNonAdmin(t *testing.T) {
	tg := &mockTelegramService{}
	repo := newFakeRepo()
	repo.users[123] = &models.User{TelegramID: 123, PaymentStatus: models.StatusPendingApproval}
	b, _ := newTestBot(repo, tg, &fakeVerifier{subscribed: true})

	update := tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb4",
			From: &tgbotapi.User{ID: 555},
			Message: &tgbotapi.Message{
				Chat:      &tgbotapi.Chat{ID: 555},
				MessageID: 13,
			},
			Data: "approve_123",
		},
	}
	b.handleCallbackQuery(context.Background(), update)

	if repo.users[123].PaymentStatus != models.StatusPendingApproval {
		t.Errorf("non-admin must not adjudicate, got status %q", repo.users[123].PaymentStatus)
	}
}
