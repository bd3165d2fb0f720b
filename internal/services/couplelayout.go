package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/attunelab/attune-backend/internal/apierr"
	"github.com/attunelab/attune-backend/internal/cache"
	"github.com/attunelab/attune-backend/internal/catalog"
	"github.com/attunelab/attune-backend/internal/logger"
	"github.com/attunelab/attune-backend/internal/repos"
	"github.com/attunelab/attune-backend/internal/types"
)

type CoupleLayoutService interface {
	// GetCoupleLayout returns the stored layout, or the hard-coded default
	// when the couple never customized. Never a not-found error.
	GetCoupleLayout(ctx context.Context, coupleID uuid.UUID) (*types.CoupleLayout, error)
	// UpsertCoupleLayout merges the supplied fields over the existing record
	// (or the default for a brand-new one) and writes the full row back.
	UpsertCoupleLayout(ctx context.Context, coupleID uuid.UUID, therapistID *uuid.UUID, fields LayoutFields) (*types.CoupleLayout, error)
}

type coupleLayoutService struct {
	db         *gorm.DB
	log        *logger.Logger
	cat        *catalog.Catalog
	layoutRepo repos.CoupleLayoutRepo
	userRepo   repos.UserRepo
	layoutCache cache.LayoutCache
}

func NewCoupleLayoutService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cat *catalog.Catalog,
	layoutRepo repos.CoupleLayoutRepo,
	userRepo repos.UserRepo,
	layoutCache cache.LayoutCache,
) CoupleLayoutService {
	return &coupleLayoutService{
		db:          db,
		log:         baseLog.With("service", "CoupleLayoutService"),
		cat:         cat,
		layoutRepo:  layoutRepo,
		userRepo:    userRepo,
		layoutCache: layoutCache,
	}
}

// defaultCoupleLayout is what every couple sees before any customization:
// catalog order, everything enabled, no size or content overrides. It is not
// persisted until the first customization write.
func defaultCoupleLayout(coupleID uuid.UUID, cat *catalog.Catalog) *types.CoupleLayout {
	order, _ := encodeJSON(cat.WidgetIDs())
	empty, _ := encodeJSON(map[string]interface{}{})
	return &types.CoupleLayout{
		CoupleID:               coupleID,
		WidgetOrder:            order,
		EnabledWidgets:         empty,
		WidgetSizes:            empty,
		WidgetContentOverrides: empty,
	}
}

func (s *coupleLayoutService) GetCoupleLayout(ctx context.Context, coupleID uuid.UUID) (*types.CoupleLayout, error) {
	if coupleID == uuid.Nil {
		return nil, apierr.Validation("missing couple id")
	}

	row, err := s.layoutRepo.GetByCoupleID(ctx, nil, coupleID)
	if err != nil {
		s.log.Warn("GetCoupleLayout: load failed", "error", err, "couple_id", coupleID)
		return nil, apierr.FromDB("get couple layout", err)
	}
	if row == nil {
		return defaultCoupleLayout(coupleID, s.cat), nil
	}
	return row, nil
}

func (s *coupleLayoutService) UpsertCoupleLayout(ctx context.Context, coupleID uuid.UUID, therapistID *uuid.UUID, fields LayoutFields) (*types.CoupleLayout, error) {
	if coupleID == uuid.Nil {
		return nil, apierr.Validation("missing couple id")
	}
	if err := validateSizes(fields.WidgetSizes); err != nil {
		return nil, apierr.Validation(err.Error())
	}

	existing, err := s.layoutRepo.GetByCoupleID(ctx, nil, coupleID)
	if err != nil {
		s.log.Warn("UpsertCoupleLayout: load failed", "error", err, "couple_id", coupleID)
		return nil, apierr.FromDB("get couple layout", err)
	}
	row := existing
	if row == nil {
		row = defaultCoupleLayout(coupleID, s.cat)
	}

	if therapistID != nil && *therapistID != uuid.Nil {
		row.TherapistID = therapistID
	}
	if fields.WidgetOrder != nil {
		if row.WidgetOrder, err = encodeJSON(fields.WidgetOrder); err != nil {
			return nil, apierr.Validation("malformed widget_order")
		}
	}
	if fields.EnabledWidgets != nil {
		if row.EnabledWidgets, err = encodeJSON(fields.EnabledWidgets); err != nil {
			return nil, apierr.Validation("malformed enabled_widgets")
		}
	}
	if fields.WidgetSizes != nil {
		if row.WidgetSizes, err = encodeJSON(fields.WidgetSizes); err != nil {
			return nil, apierr.Validation("malformed widget_sizes")
		}
	}
	if fields.WidgetContentOverrides != nil {
		if row.WidgetContentOverrides, err = encodeJSON(fields.WidgetContentOverrides); err != nil {
			return nil, apierr.Validation("malformed widget_content_overrides")
		}
	}

	saved, err := s.layoutRepo.Upsert(ctx, nil, row)
	if err != nil {
		s.log.Warn("UpsertCoupleLayout: write failed", "error", err, "couple_id", coupleID)
		return nil, apierr.FromDB("upsert couple layout", err)
	}

	invalidateCoupleMembers(ctx, s.log, s.layoutCache, s.userRepo, coupleID)
	return saved, nil
}
