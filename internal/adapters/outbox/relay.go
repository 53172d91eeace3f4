package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/sangria/donor-service/internal/config"
	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
)

const (
	// PostgreSQL NOTIFY/LISTEN configuration
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute
	outboxChannelName            = "outbox_channel"

	// Event processing timeouts
	eventProcessTimeout     = 30 * time.Second
	batchProcessTimeout     = 60 * time.Second
	periodicProcessInterval = 90 * time.Second

	healthCheckStaleThreshold = 5 * time.Minute

	maxEventsPerBatch = 100
)

// errMalformedPayload marks events that can never be published.
var errMalformedPayload = errors.New("malformed outbox payload")

// Relay listens for PostgreSQL NOTIFY signals on the outbox_channel
// and publishes donor events to RabbitMQ.
type Relay struct {
	db            *sql.DB
	publisher     ports.DonorEventPublisher
	listener      *pq.Listener
	dbURL         string
	dbCB          *gobreaker.CircuitBreaker
	logger        *zap.Logger
	lastProcessed atomic.Int64
	healthy       atomic.Bool
}

func NewRelay(db *sql.DB, dbURL string, publisher ports.DonorEventPublisher, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Relay{
		db:        db,
		dbURL:     dbURL,
		publisher: publisher,
		dbCB:      config.NewCircuitBreaker("Relay-PostgreSQL", logger),
		logger:    logger.Named("outbox"),
	}
	r.markProcessed()
	r.healthy.Store(true)
	return r
}

func (r *Relay) markProcessed() {
	r.lastProcessed.Store(time.Now().UnixNano())
}

// IsHealthy reports liveness only; an open breaker is degraded, not dead.
func (r *Relay) IsHealthy() bool {
	return r.healthy.Load()
}

// IsReady returns true if the relay can process events (for readiness probes).
func (r *Relay) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}
	if time.Since(time.Unix(0, r.lastProcessed.Load())) > healthCheckStaleThreshold {
		return false
	}
	return r.healthy.Load()
}

// Start begins listening for outbox notifications and processing events.
// This is a blocking call that runs until the context is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Warn("listener error", zap.Error(err))
		}
	}

	r.listener = pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer r.listener.Close()

	if err := r.listener.Listen(outboxChannelName); err != nil {
		return err
	}

	r.logger.Info("listening for notifications", zap.String("channel", outboxChannelName))

	// Catch up on anything written while the relay was down
	if err := r.processUnprocessedEvents(ctx); err != nil {
		r.logger.Error("processing startup backlog", zap.Error(err))
	}

	ticker := time.NewTicker(periodicProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shutting down")
			return ctx.Err()

		case notification := <-r.listener.Notify:
			if notification == nil {
				r.logger.Warn("received nil notification, reconnecting")
				r.healthy.Store(false)
				continue
			}

			if err := r.processEventByID(ctx, notification.Extra); err != nil {
				r.logger.Error("processing event", zap.String("event_id", notification.Extra), zap.Error(err))
			} else {
				r.markProcessed()
				r.healthy.Store(true)
			}

		case <-ticker.C:
			go r.listener.Ping()

			// Safety net for missed notifications
			if err := r.processUnprocessedEvents(ctx); err != nil {
				r.logger.Error("periodic processing", zap.Error(err))
			} else {
				r.markProcessed()
			}
		}
	}
}

// dispatch publishes one outbox record. Unknown event types are skipped so
// they do not block the queue.
func (r *Relay) dispatch(ctx context.Context, id, eventType string, payload []byte) error {
	if eventType != ports.EventDonorTriaged {
		r.logger.Warn("skipping unknown event type", zap.String("event_id", id), zap.String("event_type", eventType))
		return nil
	}

	var evt ports.DonorTriagedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("%w: event %s: %v", errMalformedPayload, id, err)
	}
	return r.publisher.PublishDonorTriaged(ctx, evt)
}

func markProcessed(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id)
	return err
}

// processEventByID processes a single event by its ID.
func (r *Relay) processEventByID(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var id, eventType string
		var payload []byte
		err = tx.QueryRowContext(ctx, `
			SELECT id, event_type, payload
			FROM outbox_events
			WHERE id = $1 AND processed_at IS NULL
			FOR UPDATE SKIP LOCKED`, eventID).Scan(&id, &eventType, &payload)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if err := r.dispatch(ctx, id, eventType, payload); err != nil {
			if !errors.Is(err, errMalformedPayload) {
				return nil, err
			}
			// Mark bad data as processed to avoid infinite retries
			r.logger.Error("dropping event", zap.Error(err))
		}

		if err := markProcessed(ctx, tx, id); err != nil {
			return nil, err
		}
		return nil, tx.Commit()
	})
	return err
}

// processUnprocessedEvents processes all unprocessed events (catch-up/recovery).
func (r *Relay) processUnprocessedEvents(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		rows, err := tx.QueryContext(ctx, `
			SELECT id, event_type, payload
			FROM outbox_events
			WHERE processed_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED`, maxEventsPerBatch)
		if err != nil {
			return nil, err
		}

		type record struct {
			ID        string
			EventType string
			Payload   []byte
		}

		var records []record
		for rows.Next() {
			var rec record
			if err := rows.Scan(&rec.ID, &rec.EventType, &rec.Payload); err != nil {
				rows.Close()
				return nil, err
			}
			records = append(records, rec)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		for _, rec := range records {
			if err := r.dispatch(ctx, rec.ID, rec.EventType, rec.Payload); err != nil {
				if !errors.Is(err, errMalformedPayload) {
					r.logger.Error("publish failed", zap.String("event_id", rec.ID), zap.Error(err))
					continue
				}
				r.logger.Error("dropping event", zap.Error(err))
			}

			if err := markProcessed(ctx, tx, rec.ID); err != nil {
				return nil, err
			}
			r.logger.Debug("processed event", zap.String("event_id", rec.ID))
		}

		return nil, tx.Commit()
	})
	return err
}
