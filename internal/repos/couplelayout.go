package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/attunelab/attune-backend/internal/logger"
	"github.com/attunelab/attune-backend/internal/types"
)

type CoupleLayoutRepo interface {
	// GetByCoupleID returns (nil, nil) when no row exists; absence is a
	// legitimate state handled by the service layer, not a fault.
	GetByCoupleID(ctx context.Context, tx *gorm.DB, coupleID uuid.UUID) (*types.CoupleLayout, error)
	// Upsert writes the full row keyed on the unique couple_id column. Last
	// writer wins; no version check.
	Upsert(ctx context.Context, tx *gorm.DB, row *types.CoupleLayout) (*types.CoupleLayout, error)
}

type coupleLayoutRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCoupleLayoutRepo(db *gorm.DB, baseLog *logger.Logger) CoupleLayoutRepo {
	repoLog := baseLog.With("repo", "CoupleLayoutRepo")
	return &coupleLayoutRepo{db: db, log: repoLog}
}

func (r *coupleLayoutRepo) GetByCoupleID(ctx context.Context, tx *gorm.DB, coupleID uuid.UUID) (*types.CoupleLayout, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if coupleID == uuid.Nil {
		return nil, nil
	}

	var row types.CoupleLayout
	err := transaction.WithContext(ctx).
		Where("couple_id = ?", coupleID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *coupleLayoutRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.CoupleLayout) (*types.CoupleLayout, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil || row.CoupleID == uuid.Nil {
		return nil, errors.New("couple layout upsert requires couple_id")
	}

	// Assign by column map so NULL jsonb fields and a cleared therapist_id
	// are written through; struct-based Assign would skip zero values.
	assign := map[string]interface{}{
		"therapist_id":             row.TherapistID,
		"widget_order":             row.WidgetOrder,
		"enabled_widgets":          row.EnabledWidgets,
		"widget_sizes":             row.WidgetSizes,
		"widget_content_overrides": row.WidgetContentOverrides,
		"updated_at":               time.Now().UTC(),
	}
	if err := transaction.WithContext(ctx).
		Where("couple_id = ?", row.CoupleID).
		Assign(assign).
		FirstOrCreate(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
