package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/uptrace/bun"

	"garagedesk/infrastructure/audit"
	"garagedesk/infrastructure/sqlite"
	"garagedesk/models"
)

type ImportSummary struct {
	Inserted int
	Updated  int
	Errors   int
}

// ListParts returns the spare parts master ordered by part number. A nil db
// yields an empty catalog, the dropdown degrades to a free-text field.
func ListParts(ctx context.Context, db *sqlite.DB) ([]models.SparePart, error) {
	if db == nil {
		return nil, nil
	}
	parts := make([]models.SparePart, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&parts).Order("part_number ASC").Scan(ctx)
	})
	return parts, err
}

// ImportCSV upserts parts from a CSV with header part_number,name,unit_price.
// Bad rows are counted, not fatal; the whole import runs in one write tx.
func ImportCSV(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, reader io.Reader) (ImportSummary, error) {
	summary := ImportSummary{}
	r := csv.NewReader(reader)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return summary, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 ||
		!strings.EqualFold(strings.TrimSpace(header[0]), "part_number") ||
		!strings.EqualFold(strings.TrimSpace(header[1]), "name") {
		return summary, fmt.Errorf("invalid CSV header; expected part_number,name,unit_price")
	}

	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		for {
			record, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				summary.Errors++
				continue
			}
			if len(record) < 2 {
				summary.Errors++
				continue
			}
			partNumber := strings.TrimSpace(record[0])
			name := strings.TrimSpace(record[1])
			if partNumber == "" || name == "" {
				summary.Errors++
				continue
			}

			unitPrice := 0.0
			if len(record) > 2 && strings.TrimSpace(record[2]) != "" {
				unitPrice, err = strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
				if err != nil || unitPrice < 0 {
					summary.Errors++
					continue
				}
			}

			var exists int
			if err := tx.NewRaw("SELECT COUNT(1) FROM spare_parts WHERE part_number = ?", partNumber).Scan(ctx, &exists); err != nil {
				return err
			}
			if exists > 0 {
				summary.Updated++
			} else {
				summary.Inserted++
			}

			if _, err := tx.ExecContext(ctx, `
INSERT INTO spare_parts (part_number, name, unit_price, created_at, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON CONFLICT(part_number) DO UPDATE SET
  name = excluded.name,
  unit_price = excluded.unit_price,
  updated_at = CURRENT_TIMESTAMP`, partNumber, name, unitPrice); err != nil {
				summary.Errors++
			}
		}
		return nil
	})
	if err != nil {
		return summary, err
	}

	if auditSvc != nil {
		after := map[string]any{"inserted": summary.Inserted, "updated": summary.Updated, "errors": summary.Errors}
		auditSvc.Record(ctx, "catalog.import", "spare_parts", "csv", nil, after)
	}
	return summary, nil
}

// DeletePart removes one part from the master.
func DeletePart(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, id int64) (bool, error) {
	var deleted bool
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model((*models.SparePart)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		affected, _ := res.RowsAffected()
		deleted = affected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	if deleted && auditSvc != nil {
		auditSvc.Record(ctx, "catalog.delete", "spare_parts", strconv.FormatInt(id, 10), nil, nil)
	}
	return deleted, nil
}
