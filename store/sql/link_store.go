// Package sqlstore persists inspection links through bun-backed repositories.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-fleetbridge/core"
)

// InspectionLinkStore upserts links keyed on inspection id. Each field is
// updated independently: an incoming nil keeps whatever value the row already
// holds, so a call supplying only one identifier never erases the other.
type InspectionLinkStore struct {
	db   *bun.DB
	repo repository.Repository[*inspectionLinkRecord]
}

func NewInspectionLinkStore(db *bun.DB) (*InspectionLinkStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*inspectionLinkRecord](db, inspectionLinkHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid inspection link repository wiring: %w", err)
		}
	}
	return &InspectionLinkStore{
		db:   db,
		repo: repo,
	}, nil
}

func (s *InspectionLinkStore) Get(ctx context.Context, inspectionID string) (core.InspectionLink, error) {
	if s == nil || s.db == nil {
		return core.InspectionLink{}, fmt.Errorf("sqlstore: inspection link store is not configured")
	}
	inspectionID = strings.TrimSpace(inspectionID)
	if inspectionID == "" {
		return core.InspectionLink{}, fmt.Errorf("sqlstore: inspection id is required")
	}

	record := &inspectionLinkRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.inspection_id = ?", inspectionID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.InspectionLink{}, core.ErrLinkNotFound
		}
		return core.InspectionLink{}, err
	}
	return record.toDomain(), nil
}

func (s *InspectionLinkStore) Upsert(ctx context.Context, link core.InspectionLink) (core.InspectionLink, error) {
	if s == nil || s.db == nil {
		return core.InspectionLink{}, fmt.Errorf("sqlstore: inspection link store is not configured")
	}
	link.InspectionID = strings.TrimSpace(link.InspectionID)
	if err := link.Validate(); err != nil {
		return core.InspectionLink{}, err
	}
	now := time.Now().UTC()

	var out core.InspectionLink
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findInspectionLinkTx(ctx, tx, link.InspectionID)
		if err != nil {
			return err
		}
		if record == nil {
			record = newInspectionLinkRecord(link, now)
			if _, insertErr := tx.NewInsert().Model(record).Exec(ctx); insertErr != nil {
				if !isUniqueViolation(insertErr) {
					return insertErr
				}
				// Lost an insert race; re-read and fall through to the update path.
				record, err = findInspectionLinkTx(ctx, tx, link.InspectionID)
				if err != nil {
					return err
				}
				if record == nil {
					return insertErr
				}
			} else {
				out = record.toDomain()
				return nil
			}
		}

		if link.InternalNumber != nil {
			value := *link.InternalNumber
			record.InternalNumber = &value
		}
		if link.ExternalWorkOrderID != nil {
			value := *link.ExternalWorkOrderID
			record.ExternalWorkOrderID = &value
		}
		record.UpdatedAt = now
		if _, updateErr := tx.NewUpdate().Model(record).Where("id = ?", record.ID).Exec(ctx); updateErr != nil {
			return updateErr
		}
		out = record.toDomain()
		return nil
	})
	if err != nil {
		return core.InspectionLink{}, err
	}
	return out, nil
}

func newInspectionLinkRecord(link core.InspectionLink, now time.Time) *inspectionLinkRecord {
	record := &inspectionLinkRecord{
		ID:           uuid.NewString(),
		InspectionID: link.InspectionID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if link.InternalNumber != nil {
		value := *link.InternalNumber
		record.InternalNumber = &value
	}
	if link.ExternalWorkOrderID != nil {
		value := *link.ExternalWorkOrderID
		record.ExternalWorkOrderID = &value
	}
	return record
}

func findInspectionLinkTx(ctx context.Context, tx bun.Tx, inspectionID string) (*inspectionLinkRecord, error) {
	record := &inspectionLinkRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.inspection_id = ?", strings.TrimSpace(inspectionID)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func isUniqueViolation(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}

var _ core.InspectionLinkStore = (*InspectionLinkStore)(nil)
