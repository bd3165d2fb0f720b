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

type LayoutTemplateRepo interface {
	// ListForTherapist returns templates owned by the therapist plus shared ones.
	ListForTherapist(ctx context.Context, tx *gorm.DB, therapistID uuid.UUID) ([]*types.LayoutTemplate, error)
	// GetByID returns (nil, nil) when the template does not exist.
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.LayoutTemplate, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.LayoutTemplate) (*types.LayoutTemplate, error)
	// Update applies a partial column update. Returns rows affected.
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) (int64, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	// IncrementUsageCount bumps usage_count atomically in the database, so N
	// concurrent applies grow the counter by exactly N.
	IncrementUsageCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type layoutTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLayoutTemplateRepo(db *gorm.DB, baseLog *logger.Logger) LayoutTemplateRepo {
	repoLog := baseLog.With("repo", "LayoutTemplateRepo")
	return &layoutTemplateRepo{db: db, log: repoLog}
}

func (r *layoutTemplateRepo) ListForTherapist(ctx context.Context, tx *gorm.DB, therapistID uuid.UUID) ([]*types.LayoutTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LayoutTemplate
	if therapistID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("therapist_id = ? OR is_shared = ?", therapistID, true).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *layoutTemplateRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.LayoutTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var row types.LayoutTemplate
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *layoutTemplateRepo) Create(ctx context.Context, tx *gorm.DB, row *types.LayoutTemplate) (*types.LayoutTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil, errors.New("layout template create requires a row")
	}

	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *layoutTemplateRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(updates) == 0 {
		return 0, nil
	}
	updates["updated_at"] = time.Now().UTC()

	res := transaction.WithContext(ctx).
		Model(&types.LayoutTemplate{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *layoutTemplateRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.LayoutTemplate{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *layoutTemplateRepo) IncrementUsageCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Model(&types.LayoutTemplate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"updated_at":  time.Now().UTC(),
		}).Error; err != nil {
		return err
	}
	return nil
}
