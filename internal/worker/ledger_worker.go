package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tadbirbot/internal/domain"
	"tadbirbot/internal/models"
)

const (
	ledgerQueueKey      = "ledger:queue"
	ledgerDeadLetterKey = "ledger:deadletter"
)

// LedgerWorker зеркалирует строки реестра в таблицу.
// Одна попытка на задачу; неудачные строки уходят в dead-letter
// и доливаются вручную через Resync.
type LedgerWorker struct {
	writer domain.LedgerWriter
	redis  *redis.Client
	queue  chan *models.LedgerRow
	logger *zerolog.Logger
}

func NewLedgerWorker(writer domain.LedgerWriter, redisClient *redis.Client, logger *zerolog.Logger) *LedgerWorker {
	return &LedgerWorker{
		writer: writer,
		redis:  redisClient,
		queue:  make(chan *models.LedgerRow, models.LedgerQueueSize),
		logger: logger,
	}
}

// NopSyncer подставляется вместо воркера, когда таблица не настроена:
// записи молча пропускаются, ручной пересбор сообщает об отсутствии интеграции.
type NopSyncer struct{}

func (NopSyncer) Enqueue(ctx context.Context, row *models.LedgerRow) error { return nil }

func (NopSyncer) Resync(ctx context.Context) (int, error) {
	return 0, errors.New("ledger mirror is not configured")
}

// Enqueue ставит строку в очередь зеркалирования.
// Redis первичен, канал в памяти подхватывает при его недоступности.
func (w *LedgerWorker) Enqueue(ctx context.Context, row *models.LedgerRow) error {
	if row == nil {
		return errors.New("ledger row is nil")
	}
	if row.TicketID == "" {
		return errors.New("ticket id is required")
	}

	if w.redis != nil {
		if err := w.pushRedis(ctx, ledgerQueueKey, row); err != nil {
			w.logger.Warn().Err(err).Str("ticket_id", row.TicketID).
				Msg("Redis push failed, falling back to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- row:
		return nil
	default:
		return errors.New("ledger queue is full")
	}
}

// Start запускает основной цикл; останавливается по ctx.
func (w *LedgerWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("Ledger worker started")
	defer w.logger.Info().Msg("Ledger worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case row := <-w.queue:
			w.process(ctx, row)
		default:
		}

		row, ok := w.popRedis(ctx)
		if !ok {
			select {
			case <-ctx.Done():
				return
			case row := <-w.queue:
				w.process(ctx, row)
			case <-time.After(time.Second):
			}
			continue
		}
		w.process(ctx, row)
	}
}

// Resync переигрывает dead-letter; возвращает число успешно дозаписанных строк.
func (w *LedgerWorker) Resync(ctx context.Context) (int, error) {
	if w.redis == nil {
		return 0, errors.New("redis client is nil")
	}

	synced := 0
	for {
		raw, err := w.redis.RPop(ctx, ledgerDeadLetterKey).Result()
		if errors.Is(err, redis.Nil) {
			return synced, nil
		}
		if err != nil {
			return synced, err
		}

		var row models.LedgerRow
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			w.logger.Error().Err(err).Msg("Failed to decode dead-letter row, dropping")
			continue
		}

		if err := w.writer.UpsertUser(ctx, &row); err != nil {
			// Возвращаем обратно и прекращаем, чтобы не крутить заведомо мёртвую запись
			w.pushDeadLetter(ctx, &row)
			return synced, err
		}
		synced++
	}
}

// DeadLetterCount возвращает размер dead-letter очереди.
func (w *LedgerWorker) DeadLetterCount(ctx context.Context) (int64, error) {
	if w.redis == nil {
		return 0, nil
	}
	return w.redis.LLen(ctx, ledgerDeadLetterKey).Result()
}

func (w *LedgerWorker) process(ctx context.Context, row *models.LedgerRow) {
	if row == nil {
		return
	}
	if err := w.writer.UpsertUser(ctx, row); err != nil {
		w.logger.Error().Err(err).Str("ticket_id", row.TicketID).
			Msg("Ledger upsert failed, moving to dead-letter")
		w.pushDeadLetter(ctx, row)
		return
	}
	w.logger.Debug().Str("ticket_id", row.TicketID).Msg("Ledger row synced")
}

func (w *LedgerWorker) popRedis(ctx context.Context) (*models.LedgerRow, bool) {
	if w.redis == nil {
		return nil, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, ledgerQueueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			w.logger.Error().Err(err).Msg("Redis BRPOP error")
		}
		return nil, false
	}
	if len(res) != 2 {
		return nil, false
	}
	var row models.LedgerRow
	if err := json.Unmarshal([]byte(res[1]), &row); err != nil {
		w.logger.Error().Err(err).Msg("Failed to decode queued ledger row")
		return nil, false
	}
	return &row, true
}

func (w *LedgerWorker) pushRedis(ctx context.Context, key string, row *models.LedgerRow) error {
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, key, data).Err()
}

func (w *LedgerWorker) pushDeadLetter(ctx context.Context, row *models.LedgerRow) {
	if w.redis == nil {
		w.logger.Warn().Str("ticket_id", row.TicketID).
			Msg("No redis, dead-letter row dropped")
		return
	}
	if err := w.pushRedis(ctx, ledgerDeadLetterKey, row); err != nil {
		w.logger.Error().Err(err).Str("ticket_id", row.TicketID).
			Msg("Dead-letter push failed")
	}
}
