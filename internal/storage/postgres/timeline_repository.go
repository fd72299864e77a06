package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

const timelineColumns = `order_id, type, reason, occurred`

// timelineRepository пишет историю заказа в timeline_events.
type timelineRepository struct {
	db *sql.DB
}

// NewTimelineRepository создаёт PostgreSQL-реализацию TimelineRepository.
func NewTimelineRepository(store *Store) domain.TimelineRepository {
	return &timelineRepository{db: store.DB()}
}

func scanTimelineEvent(row rowScanner) (domain.TimelineEvent, error) {
	var e domain.TimelineEvent
	if err := row.Scan(&e.OrderID, &e.Type, &e.Reason, &e.Occurred); err != nil {
		return domain.TimelineEvent{}, err
	}
	e.Occurred = e.Occurred.UTC()
	return e, nil
}

// Append сохраняет событие. Без Occurred время проставляет сервер БД.
func (r *timelineRepository) Append(ctx context.Context, event domain.TimelineEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	occurred := sql.NullTime{Time: event.Occurred.UTC(), Valid: !event.Occurred.IsZero()}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO timeline_events (`+timelineColumns+`) VALUES ($1, $2, $3, COALESCE($4::timestamptz, NOW()))`,
		event.OrderID, event.Type, event.Reason, occurred,
	)
	if err != nil {
		return fmt.Errorf("insert %s event for order %s: %w", event.Type, event.OrderID, err)
	}
	return nil
}

// List отдаёт события заказа по времени; при равном времени первым идёт записанное раньше.
func (r *timelineRepository) List(ctx context.Context, orderID string) ([]domain.TimelineEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+timelineColumns+` FROM timeline_events WHERE order_id = $1 ORDER BY occurred, id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("select timeline of order %s: %w", orderID, err)
	}
	defer rows.Close()

	history := []domain.TimelineEvent{}
	for rows.Next() {
		e, err := scanTimelineEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan timeline row: %w", err)
		}
		history = append(history, e)
	}
	return history, rows.Err()
}
