package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/attunelab/attune-backend/internal/logger"
	"github.com/attunelab/attune-backend/internal/types"
)

type LayoutOverrideRepo interface {
	// GetByUserID returns (nil, nil) when the user never personalized.
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.IndividualLayoutOverride, error)
	// Upsert is a full-record replace keyed on the unique user_id column.
	Upsert(ctx context.Context, tx *gorm.DB, row *types.IndividualLayoutOverride) (*types.IndividualLayoutOverride, error)
	// SetUsePersonalLayout flips only the switch. Returns rows affected so the
	// service can report not-found when no record exists yet.
	SetUsePersonalLayout(ctx context.Context, tx *gorm.DB, userID uuid.UUID, use bool) (int64, error)
	// UpdateHiddenWidgets writes only the hidden_widgets column.
	UpdateHiddenWidgets(ctx context.Context, tx *gorm.DB, userID uuid.UUID, hidden datatypes.JSON) (int64, error)
	// DeleteByUserID removes the record; deleting an absent record is success.
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type layoutOverrideRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLayoutOverrideRepo(db *gorm.DB, baseLog *logger.Logger) LayoutOverrideRepo {
	repoLog := baseLog.With("repo", "LayoutOverrideRepo")
	return &layoutOverrideRepo{db: db, log: repoLog}
}

func (r *layoutOverrideRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.IndividualLayoutOverride, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil {
		return nil, nil
	}

	var row types.IndividualLayoutOverride
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *layoutOverrideRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.IndividualLayoutOverride) (*types.IndividualLayoutOverride, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil || row.UserID == uuid.Nil {
		return nil, errors.New("layout override upsert requires user_id")
	}

	// Full replace: NULL dimension columns must overwrite whatever was stored
	// before, so every column is listed explicitly.
	assign := map[string]interface{}{
		"couple_id":           row.CoupleID,
		"use_personal_layout": row.UsePersonalLayout,
		"widget_order":        row.WidgetOrder,
		"enabled_widgets":     row.EnabledWidgets,
		"widget_sizes":        row.WidgetSizes,
		"hidden_widgets":      row.HiddenWidgets,
		"updated_at":          time.Now().UTC(),
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", row.UserID).
		Assign(assign).
		FirstOrCreate(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *layoutOverrideRepo) SetUsePersonalLayout(ctx context.Context, tx *gorm.DB, userID uuid.UUID, use bool) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.IndividualLayoutOverride{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"use_personal_layout": use,
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *layoutOverrideRepo) UpdateHiddenWidgets(ctx context.Context, tx *gorm.DB, userID uuid.UUID, hidden datatypes.JSON) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.IndividualLayoutOverride{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"hidden_widgets": hidden,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *layoutOverrideRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.IndividualLayoutOverride{}).Error; err != nil {
		return err
	}
	return nil
}
