package settings

import (
	"context"
	"strconv"

	"github.com/uptrace/bun"

	"garagedesk/infrastructure/sqlite"
	"garagedesk/models"
)

// Setting keys.
const (
	KeyWorkOrderPollSeconds = "workorder_poll_seconds"
	KeySparePollSeconds     = "spare_poll_seconds"
	KeyPushEnabled          = "push_enabled"
)

// DeskSettings are the persisted desk preferences, merged over the config
// file defaults at load.
type DeskSettings struct {
	WorkOrderPollSeconds int
	SparePollSeconds     int
	PushEnabled          bool
}

// Load reads the stored settings, filling gaps from the given defaults.
func Load(ctx context.Context, db *sqlite.DB, defaults DeskSettings) (DeskSettings, error) {
	out := defaults
	if db == nil {
		return out, nil
	}

	rows := make([]models.Setting, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&rows).Scan(ctx)
	})
	if err != nil {
		return out, err
	}

	for _, row := range rows {
		switch row.Key {
		case KeyWorkOrderPollSeconds:
			if v, err := strconv.Atoi(row.Value); err == nil && v > 0 {
				out.WorkOrderPollSeconds = v
			}
		case KeySparePollSeconds:
			if v, err := strconv.Atoi(row.Value); err == nil && v > 0 {
				out.SparePollSeconds = v
			}
		case KeyPushEnabled:
			out.PushEnabled = row.Value == "true"
		}
	}
	return out, nil
}

// Save upserts all settings in one write tx.
func Save(ctx context.Context, db *sqlite.DB, s DeskSettings) error {
	pairs := map[string]string{
		KeyWorkOrderPollSeconds: strconv.Itoa(s.WorkOrderPollSeconds),
		KeySparePollSeconds:     strconv.Itoa(s.SparePollSeconds),
		KeyPushEnabled:          strconv.FormatBool(s.PushEnabled),
	}
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		for key, value := range pairs {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO settings (key, value, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET
  value = excluded.value,
  updated_at = CURRENT_TIMESTAMP`, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}
