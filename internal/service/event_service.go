package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"tadbirbot/internal/domain"
	"tadbirbot/internal/models"
)

// EventService управляет афишей мероприятий.
type EventService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewEventService(repo domain.Repository, logger *zerolog.Logger) *EventService {
	return &EventService{
		repo:   repo,
		logger: logger,
	}
}

func (s *EventService) ListActive(ctx context.Context, lang string) ([]models.Event, error) {
	return s.repo.ListActiveEvents(ctx, lang)
}

// Latest возвращает самое свежее активное мероприятие либо nil.
func (s *EventService) Latest(ctx context.Context, lang string) (*models.Event, error) {
	return s.repo.LatestActiveEvent(ctx, lang)
}

func (s *EventService) Get(ctx context.Context, id int64, lang string) (*models.Event, error) {
	return s.repo.GetEvent(ctx, id, lang)
}

func (s *EventService) Create(ctx context.Context, event *models.Event, names, addresses map[string]string) error {
	return s.repo.CreateEvent(ctx, event, names, addresses)
}

func (s *EventService) SetActive(ctx context.Context, id int64, active bool) error {
	return s.repo.SetEventActive(ctx, id, active)
}

func (s *EventService) Stats(ctx context.Context, eventID int64) (*models.EventStats, error) {
	return s.repo.EventStats(ctx, eventID)
}

// ParseEventForm разбирает текст формы добавления мероприятия из админ-чата.
// Формат построчный: название uz|ru|en, адрес uz|ru|en, дата, время, сумма.
func ParseEventForm(text string) (*models.Event, map[string]string, map[string]string, bool) {
	lines := make([]string, 0, 5)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 5 {
		return nil, nil, nil, false
	}

	names := splitLocalized(lines[0])
	addresses := splitLocalized(lines[1])
	if names[models.LangUz] == "" {
		return nil, nil, nil, false
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(lines[4], " ", ""), 64)
	if err != nil || amount < 0 {
		return nil, nil, nil, false
	}

	event := &models.Event{
		Date:          lines[2],
		Time:          lines[3],
		PaymentAmount: amount,
		Active:        true,
	}
	return event, names, addresses, true
}

// splitLocalized делит "uz|ru|en"; отсутствующие части наследуют uz.
func splitLocalized(line string) map[string]string {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	out := map[string]string{
		models.LangUz: parts[0],
		models.LangRu: parts[0],
		models.LangEn: parts[0],
	}
	if len(parts) > 1 && parts[1] != "" {
		out[models.LangRu] = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		out[models.LangEn] = parts[2]
	}
	return out
}
