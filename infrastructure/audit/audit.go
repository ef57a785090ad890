// Package audit keeps a local trail of desk actions against backend
// entities: submits, confirmed deletes and status pushes.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/uptrace/bun"

	"garagedesk/infrastructure/sqlite"
	"garagedesk/models"
)

// Service writes audit records to the desk database.
type Service struct {
	db *sqlite.DB
}

// NewService creates the audit service. db may be nil, in which case records
// are dropped; auditing must never block desk work.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// Record writes one audit row. Failures are logged and swallowed.
func (s *Service) Record(ctx context.Context, action, entityType, entityID string, before, after any) {
	if s == nil || s.db == nil {
		return
	}
	beforeJSON, err := marshal(before)
	if err != nil {
		slog.Error("audit marshal before failed", slog.Any("err", err))
		return
	}
	afterJSON, err := marshal(after)
	if err != nil {
		slog.Error("audit marshal after failed", slog.Any("err", err))
		return
	}

	err = s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		rec := &models.AuditLog{
			Action:     action,
			EntityType: entityType,
			EntityID:   entityID,
			BeforeJSON: beforeJSON,
			AfterJSON:  afterJSON,
		}
		_, err := tx.NewInsert().Model(rec).Exec(ctx)
		return err
	})
	if err != nil {
		slog.Error("audit write failed", slog.String("action", action), slog.Any("err", err))
	}
}

func marshal(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
