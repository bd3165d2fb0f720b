package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/attunelab/attune-backend/internal/logger"
	"github.com/attunelab/attune-backend/internal/types"
)

type CoupleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, couples []*types.Couple) ([]*types.Couple, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Couple, error)
	Exists(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
}

type coupleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCoupleRepo(db *gorm.DB, baseLog *logger.Logger) CoupleRepo {
	repoLog := baseLog.With("repo", "CoupleRepo")
	return &coupleRepo{db: db, log: repoLog}
}

func (r *coupleRepo) Create(ctx context.Context, tx *gorm.DB, couples []*types.Couple) ([]*types.Couple, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(couples) == 0 {
		return []*types.Couple{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&couples).Error; err != nil {
		return nil, err
	}
	return couples, nil
}

func (r *coupleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Couple, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Couple
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *coupleRepo) Exists(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return false, nil
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Couple{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
