package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lumeva/reckon/pkg/models"
)

// Querier is the subset of pgxpool.Pool the stores use; pgxmock satisfies it
// in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// PostgresCatalog reads the catalog from the catalog_items table. The table
// is maintained by the catalog pipeline; this service never writes it.
type PostgresCatalog struct {
	db Querier
}

func NewPostgresCatalog(db Querier) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

const catalogColumns = `id, title, bullets, annotations, category, tags, image_url, purchase_url, position`

func (c *PostgresCatalog) Items(ctx context.Context) ([]models.Item, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_items ORDER BY position ASC`

	rows, err := c.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query catalog items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read catalog items: %w", err)
	}
	return items, nil
}

func (c *PostgresCatalog) Item(ctx context.Context, id string) (*models.Item, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_items WHERE id = $1`

	item, err := scanItem(c.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("catalog item %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func scanItem(row pgx.Row) (*models.Item, error) {
	var (
		item        models.Item
		category    *string
		annotations []byte
	)
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Bullets,
		&annotations,
		&category,
		&item.Tags,
		&item.ImageURL,
		&item.PurchaseURL,
		&item.Position,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan catalog item: %w", err)
	}
	if category != nil {
		item.Category = *category
	}
	if len(annotations) > 0 {
		if err := json.Unmarshal(annotations, &item.Annotations); err != nil {
			return nil, fmt.Errorf("decode annotations for item %q: %w", item.ID, err)
		}
	}
	return &item, nil
}

// PostgresEventLog stores engagement events in the reco_events table,
// append-only.
type PostgresEventLog struct {
	db Querier
}

func NewPostgresEventLog(db Querier) *PostgresEventLog {
	return &PostgresEventLog{db: db}
}

func (l *PostgresEventLog) Append(ctx context.Context, event models.Event) error {
	query := `
		INSERT INTO reco_events (id, user_id, kind, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := l.db.Exec(ctx, query,
		event.ID, event.UserID, event.Kind, []byte(event.Payload), event.CreatedAt)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (l *PostgresEventLog) ListByUser(ctx context.Context, userID string) ([]models.Event, error) {
	query := `
		SELECT id, user_id, kind, payload, created_at
		FROM reco_events
		WHERE user_id = $1
		ORDER BY created_at ASC`

	rows, err := l.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query events for user %q: %w", userID, err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (l *PostgresEventLog) ListAll(ctx context.Context) ([]models.Event, error) {
	query := `
		SELECT id, user_id, kind, payload, created_at
		FROM reco_events
		ORDER BY created_at ASC`

	rows, err := l.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]models.Event, error) {
	var events []models.Event
	for rows.Next() {
		var (
			event   models.Event
			payload []byte
		)
		if err := rows.Scan(&event.ID, &event.UserID, &event.Kind, &payload, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event.Payload = json.RawMessage(payload)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

// PostgresProfiles keeps one last-plan row per user in the user_plans table.
type PostgresProfiles struct {
	db Querier
}

func NewPostgresProfiles(db Querier) *PostgresProfiles {
	return &PostgresProfiles{db: db}
}

func (p *PostgresProfiles) LastPlan(ctx context.Context, userID string) (*models.Plan, error) {
	query := `SELECT context, level, item_ids FROM user_plans WHERE user_id = $1`

	var (
		plan    models.Plan
		context *string
		level   *string
	)
	err := p.db.QueryRow(ctx, query, userID).Scan(&context, &level, &plan.Items)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query plan for user %q: %w", userID, err)
	}
	if context != nil {
		plan.Context = *context
	}
	if level != nil {
		plan.Level = *level
	}
	return &plan, nil
}

func (p *PostgresProfiles) SetLastPlan(ctx context.Context, userID string, plan models.Plan) error {
	query := `
		INSERT INTO user_plans (user_id, context, level, item_ids, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id)
		DO UPDATE SET context = $2, level = $3, item_ids = $4, updated_at = now()`

	_, err := p.db.Exec(ctx, query, userID, plan.Context, plan.Level, plan.Items)
	if err != nil {
		return fmt.Errorf("store plan for user %q: %w", userID, err)
	}
	return nil
}
