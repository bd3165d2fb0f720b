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

// OverrideFields is the full-replace payload for a personal layout record.
// Nil order/enabled/sizes mean "defer to the couple layout" and are stored as
// NULL, not as empty collections.
type OverrideFields struct {
	CoupleID          uuid.UUID               `json:"couple_id"`
	UsePersonalLayout bool                    `json:"use_personal_layout"`
	WidgetOrder       []string                `json:"widget_order"`
	EnabledWidgets    map[string]bool         `json:"enabled_widgets"`
	WidgetSizes       map[string]catalog.Size `json:"widget_sizes"`
	HiddenWidgets     []string                `json:"hidden_widgets"`
}

type OverrideService interface {
	// GetOverride returns the stored record, or an unpersisted default shape
	// (switch off, nothing hidden) when the user never personalized.
	GetOverride(ctx context.Context, userID uuid.UUID) (*types.IndividualLayoutOverride, error)
	// UpsertOverride creates-or-replaces the whole record.
	UpsertOverride(ctx context.Context, userID uuid.UUID, fields OverrideFields) (*types.IndividualLayoutOverride, error)
	// Toggle flips use_personal_layout; not-found when no record exists yet.
	Toggle(ctx context.Context, userID uuid.UUID, usePersonalLayout bool) (*types.IndividualLayoutOverride, error)
	// SetHidden adds or removes one widget on the personal suppression list.
	// The list never accumulates duplicates. Hiding with no existing record
	// creates one lazily and needs coupleIDIfNew for the foreign key;
	// unhiding with no record is a no-op success.
	SetHidden(ctx context.Context, userID uuid.UUID, widgetID string, hidden bool, coupleIDIfNew uuid.UUID) (*types.IndividualLayoutOverride, error)
	// Reset deletes the record, returning the user to pure couple defaults.
	// Absence of a record is success.
	Reset(ctx context.Context, userID uuid.UUID) error
}

type overrideService struct {
	db           *gorm.DB
	log          *logger.Logger
	overrideRepo repos.LayoutOverrideRepo
	coupleRepo   repos.CoupleRepo
	layoutCache  cache.LayoutCache
}

func NewOverrideService(
	db *gorm.DB,
	baseLog *logger.Logger,
	overrideRepo repos.LayoutOverrideRepo,
	coupleRepo repos.CoupleRepo,
	layoutCache cache.LayoutCache,
) OverrideService {
	return &overrideService{
		db:           db,
		log:          baseLog.With("service", "OverrideService"),
		overrideRepo: overrideRepo,
		coupleRepo:   coupleRepo,
		layoutCache:  layoutCache,
	}
}

func defaultOverride(userID uuid.UUID) *types.IndividualLayoutOverride {
	hidden, _ := encodeJSON([]string{})
	return &types.IndividualLayoutOverride{
		UserID:            userID,
		UsePersonalLayout: false,
		HiddenWidgets:     hidden,
	}
}

func (s *overrideService) GetOverride(ctx context.Context, userID uuid.UUID) (*types.IndividualLayoutOverride, error) {
	if userID == uuid.Nil {
		return nil, apierr.Validation("missing user id")
	}

	row, err := s.overrideRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		s.log.Warn("GetOverride: load failed", "error", err, "user_id", userID)
		return nil, apierr.FromDB("get layout override", err)
	}
	if row == nil {
		return defaultOverride(userID), nil
	}
	return row, nil
}

func (s *overrideService) UpsertOverride(ctx context.Context, userID uuid.UUID, fields OverrideFields) (*types.IndividualLayoutOverride, error) {
	if userID == uuid.Nil {
		return nil, apierr.Validation("missing user id")
	}
	if fields.CoupleID == uuid.Nil {
		return nil, apierr.Validation("missing couple id")
	}
	if err := validateSizes(fields.WidgetSizes); err != nil {
		return nil, apierr.Validation(err.Error())
	}
	exists, err := s.coupleRepo.Exists(ctx, nil, fields.CoupleID)
	if err != nil {
		return nil, apierr.FromDB("check couple", err)
	}
	if !exists {
		return nil, apierr.Validation("unknown couple id")
	}

	row := &types.IndividualLayoutOverride{
		UserID:            userID,
		CoupleID:          fields.CoupleID,
		UsePersonalLayout: fields.UsePersonalLayout,
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
	if row.HiddenWidgets, err = encodeJSON(dedupe(fields.HiddenWidgets)); err != nil {
		return nil, apierr.Validation("malformed hidden_widgets")
	}

	saved, err := s.overrideRepo.Upsert(ctx, nil, row)
	if err != nil {
		s.log.Warn("UpsertOverride: write failed", "error", err, "user_id", userID)
		return nil, apierr.FromDB("upsert layout override", err)
	}

	if s.layoutCache != nil {
		s.layoutCache.InvalidateUsers(ctx, userID)
	}
	return saved, nil
}

func (s *overrideService) Toggle(ctx context.Context, userID uuid.UUID, usePersonalLayout bool) (*types.IndividualLayoutOverride, error) {
	if userID == uuid.Nil {
		return nil, apierr.Validation("missing user id")
	}

	affected, err := s.overrideRepo.SetUsePersonalLayout(ctx, nil, userID, usePersonalLayout)
	if err != nil {
		s.log.Warn("Toggle: write failed", "error", err, "user_id", userID)
		return nil, apierr.FromDB("toggle layout override", err)
	}
	if affected == 0 {
		// Toggling is only meaningful once a personalization action created
		// a baseline record.
		return nil, apierr.NotFound("no layout override to toggle")
	}

	if s.layoutCache != nil {
		s.layoutCache.InvalidateUsers(ctx, userID)
	}
	return s.GetOverride(ctx, userID)
}

func (s *overrideService) SetHidden(ctx context.Context, userID uuid.UUID, widgetID string, hidden bool, coupleIDIfNew uuid.UUID) (*types.IndividualLayoutOverride, error) {
	if userID == uuid.Nil {
		return nil, apierr.Validation("missing user id")
	}
	if widgetID == "" {
		return nil, apierr.Validation("missing widget id")
	}

	row, err := s.overrideRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		s.log.Warn("SetHidden: load failed", "error", err, "user_id", userID)
		return nil, apierr.FromDB("get layout override", err)
	}

	if row == nil {
		if !hidden {
			// Nothing stored and nothing to unhide.
			return defaultOverride(userID), nil
		}
		if coupleIDIfNew == uuid.Nil {
			return nil, apierr.Validation("couple_id required to hide a widget before personalizing")
		}
		exists, err := s.coupleRepo.Exists(ctx, nil, coupleIDIfNew)
		if err != nil {
			return nil, apierr.FromDB("check couple", err)
		}
		if !exists {
			return nil, apierr.Validation("unknown couple id")
		}
		fresh := defaultOverride(userID)
		fresh.CoupleID = coupleIDIfNew
		if fresh.HiddenWidgets, err = encodeJSON([]string{widgetID}); err != nil {
			return nil, apierr.Validation("malformed hidden_widgets")
		}
		saved, err := s.overrideRepo.Upsert(ctx, nil, fresh)
		if err != nil {
			s.log.Warn("SetHidden: create failed", "error", err, "user_id", userID)
			return nil, apierr.FromDB("create layout override", err)
		}
		if s.layoutCache != nil {
			s.layoutCache.InvalidateUsers(ctx, userID)
		}
		return saved, nil
	}

	current := decodeOrder(row.HiddenWidgets)
	next := make([]string, 0, len(current)+1)
	for _, id := range current {
		if id == widgetID {
			continue
		}
		next = append(next, id)
	}
	if hidden {
		next = append(next, widgetID)
	}
	next = dedupe(next)

	encoded, err := encodeJSON(next)
	if err != nil {
		return nil, apierr.Validation("malformed hidden_widgets")
	}
	if _, err := s.overrideRepo.UpdateHiddenWidgets(ctx, nil, userID, encoded); err != nil {
		s.log.Warn("SetHidden: write failed", "error", err, "user_id", userID)
		return nil, apierr.FromDB("update hidden widgets", err)
	}
	row.HiddenWidgets = encoded

	if s.layoutCache != nil {
		s.layoutCache.InvalidateUsers(ctx, userID)
	}
	return row, nil
}

func (s *overrideService) Reset(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return apierr.Validation("missing user id")
	}

	if err := s.overrideRepo.DeleteByUserID(ctx, nil, userID); err != nil {
		s.log.Warn("Reset: delete failed", "error", err, "user_id", userID)
		return apierr.FromDB("reset layout override", err)
	}

	if s.layoutCache != nil {
		s.layoutCache.InvalidateUsers(ctx, userID)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
