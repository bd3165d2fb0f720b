package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/attunelab/attune-backend/internal/apierr"
	"github.com/attunelab/attune-backend/internal/cache"
	"github.com/attunelab/attune-backend/internal/catalog"
	"github.com/attunelab/attune-backend/internal/logger"
	"github.com/attunelab/attune-backend/internal/repos"
	"github.com/attunelab/attune-backend/internal/types"
)

// TemplateFields is the create/update payload for a layout template.
type TemplateFields struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsShared    *bool  `json:"is_shared"`
	LayoutFields
}

type TemplateService interface {
	// ListFor returns templates owned by the therapist plus shared ones.
	ListFor(ctx context.Context, therapistID uuid.UUID) ([]*types.LayoutTemplate, error)
	Get(ctx context.Context, id uuid.UUID) (*types.LayoutTemplate, error)
	Create(ctx context.Context, therapistID uuid.UUID, fields TemplateFields) (*types.LayoutTemplate, error)
	Update(ctx context.Context, id uuid.UUID, fields TemplateFields) (*types.LayoutTemplate, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ApplyTo overwrites the couple layout wholesale from the template,
	// stamps the applying therapist, and bumps usage_count by exactly one.
	ApplyTo(ctx context.Context, templateID, coupleID, therapistID uuid.UUID) (*types.CoupleLayout, error)
	// CopyTo overwrites the target couple layout from the source couple's
	// current layout. No template involved; usage_count untouched.
	CopyTo(ctx context.Context, sourceCoupleID, targetCoupleID, therapistID uuid.UUID) (*types.CoupleLayout, error)
}

type templateService struct {
	db           *gorm.DB
	log          *logger.Logger
	cat          *catalog.Catalog
	templateRepo repos.LayoutTemplateRepo
	layoutRepo   repos.CoupleLayoutRepo
	userRepo     repos.UserRepo
	layoutCache  cache.LayoutCache
}

func NewTemplateService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cat *catalog.Catalog,
	templateRepo repos.LayoutTemplateRepo,
	layoutRepo repos.CoupleLayoutRepo,
	userRepo repos.UserRepo,
	layoutCache cache.LayoutCache,
) TemplateService {
	return &templateService{
		db:           db,
		log:          baseLog.With("service", "TemplateService"),
		cat:          cat,
		templateRepo: templateRepo,
		layoutRepo:   layoutRepo,
		userRepo:     userRepo,
		layoutCache:  layoutCache,
	}
}

func (s *templateService) ListFor(ctx context.Context, therapistID uuid.UUID) ([]*types.LayoutTemplate, error) {
	if therapistID == uuid.Nil {
		return nil, apierr.Validation("missing therapist id")
	}

	templates, err := s.templateRepo.ListForTherapist(ctx, nil, therapistID)
	if err != nil {
		s.log.Warn("ListFor: load failed", "error", err, "therapist_id", therapistID)
		return nil, apierr.FromDB("list layout templates", err)
	}
	return templates, nil
}

func (s *templateService) Get(ctx context.Context, id uuid.UUID) (*types.LayoutTemplate, error) {
	if id == uuid.Nil {
		return nil, apierr.Validation("missing template id")
	}

	row, err := s.templateRepo.GetByID(ctx, nil, id)
	if err != nil {
		s.log.Warn("Get: load failed", "error", err, "template_id", id)
		return nil, apierr.FromDB("get layout template", err)
	}
	if row == nil {
		return nil, apierr.NotFound("layout template not found")
	}
	return row, nil
}

func (s *templateService) Create(ctx context.Context, therapistID uuid.UUID, fields TemplateFields) (*types.LayoutTemplate, error) {
	if therapistID == uuid.Nil {
		return nil, apierr.Validation("missing therapist id")
	}
	if strings.TrimSpace(fields.Name) == "" {
		return nil, apierr.Validation("template name is required")
	}
	if err := validateSizes(fields.WidgetSizes); err != nil {
		return nil, apierr.Validation(err.Error())
	}

	row := &types.LayoutTemplate{
		TherapistID: therapistID,
		Name:        strings.TrimSpace(fields.Name),
		Description: fields.Description,
	}
	if fields.IsShared != nil {
		row.IsShared = *fields.IsShared
	}

	var err error
	if row.WidgetOrder, err = encodeJSON(orEmptyList(fields.WidgetOrder)); err != nil {
		return nil, apierr.Validation("malformed widget_order")
	}
	if row.EnabledWidgets, err = encodeJSON(orEmptyBoolMap(fields.EnabledWidgets)); err != nil {
		return nil, apierr.Validation("malformed enabled_widgets")
	}
	if row.WidgetSizes, err = encodeJSON(orEmptySizeMap(fields.WidgetSizes)); err != nil {
		return nil, apierr.Validation("malformed widget_sizes")
	}
	if row.WidgetContentOverrides, err = encodeJSON(orEmptyRawMap(fields.WidgetContentOverrides)); err != nil {
		return nil, apierr.Validation("malformed widget_content_overrides")
	}

	saved, err := s.templateRepo.Create(ctx, nil, row)
	if err != nil {
		s.log.Warn("Create: write failed", "error", err, "therapist_id", therapistID)
		return nil, apierr.FromDB("create layout template", err)
	}
	return saved, nil
}

func (s *templateService) Update(ctx context.Context, id uuid.UUID, fields TemplateFields) (*types.LayoutTemplate, error) {
	if id == uuid.Nil {
		return nil, apierr.Validation("missing template id")
	}
	if err := validateSizes(fields.WidgetSizes); err != nil {
		return nil, apierr.Validation(err.Error())
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(fields.Name) != "" {
		updates["name"] = strings.TrimSpace(fields.Name)
	}
	if fields.Description != "" {
		updates["description"] = fields.Description
	}
	if fields.IsShared != nil {
		updates["is_shared"] = *fields.IsShared
	}
	var err error
	if fields.WidgetOrder != nil {
		if updates["widget_order"], err = encodeJSON(fields.WidgetOrder); err != nil {
			return nil, apierr.Validation("malformed widget_order")
		}
	}
	if fields.EnabledWidgets != nil {
		if updates["enabled_widgets"], err = encodeJSON(fields.EnabledWidgets); err != nil {
			return nil, apierr.Validation("malformed enabled_widgets")
		}
	}
	if fields.WidgetSizes != nil {
		if updates["widget_sizes"], err = encodeJSON(fields.WidgetSizes); err != nil {
			return nil, apierr.Validation("malformed widget_sizes")
		}
	}
	if fields.WidgetContentOverrides != nil {
		if updates["widget_content_overrides"], err = encodeJSON(fields.WidgetContentOverrides); err != nil {
			return nil, apierr.Validation("malformed widget_content_overrides")
		}
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	affected, err := s.templateRepo.Update(ctx, nil, id, updates)
	if err != nil {
		s.log.Warn("Update: write failed", "error", err, "template_id", id)
		return nil, apierr.FromDB("update layout template", err)
	}
	if affected == 0 {
		return nil, apierr.NotFound("layout template not found")
	}
	return s.Get(ctx, id)
}

func (s *templateService) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return apierr.Validation("missing template id")
	}

	if err := s.templateRepo.DeleteByID(ctx, nil, id); err != nil {
		s.log.Warn("Delete: delete failed", "error", err, "template_id", id)
		return apierr.FromDB("delete layout template", err)
	}
	return nil
}

func (s *templateService) ApplyTo(ctx context.Context, templateID, coupleID, therapistID uuid.UUID) (*types.CoupleLayout, error) {
	if coupleID == uuid.Nil {
		return nil, apierr.Validation("missing couple id")
	}

	tpl, err := s.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}

	saved, err := s.overwriteLayout(ctx, coupleID, therapistID, tpl.WidgetOrder, tpl.EnabledWidgets, tpl.WidgetSizes, tpl.WidgetContentOverrides)
	if err != nil {
		return nil, err
	}

	// Bumped once per successful apply, never on copy. The increment runs in
	// the database so concurrent applies cannot lose updates.
	if err := s.templateRepo.IncrementUsageCount(ctx, nil, templateID); err != nil {
		s.log.Warn("ApplyTo: usage count bump failed", "error", err, "template_id", templateID)
		return nil, apierr.FromDB("increment template usage", err)
	}

	invalidateCoupleMembers(ctx, s.log, s.layoutCache, s.userRepo, coupleID)
	return saved, nil
}

func (s *templateService) CopyTo(ctx context.Context, sourceCoupleID, targetCoupleID, therapistID uuid.UUID) (*types.CoupleLayout, error) {
	if sourceCoupleID == uuid.Nil || targetCoupleID == uuid.Nil {
		return nil, apierr.Validation("missing couple id")
	}
	if sourceCoupleID == targetCoupleID {
		return nil, apierr.Validation("source and target couple are the same")
	}

	src, err := s.layoutRepo.GetByCoupleID(ctx, nil, sourceCoupleID)
	if err != nil {
		s.log.Warn("CopyTo: source load failed", "error", err, "couple_id", sourceCoupleID)
		return nil, apierr.FromDB("get source couple layout", err)
	}
	if src == nil {
		// The source couple never customized; copying its view means copying
		// the hard-coded default.
		src = defaultCoupleLayout(sourceCoupleID, s.cat)
	}

	saved, err := s.overwriteLayout(ctx, targetCoupleID, therapistID, src.WidgetOrder, src.EnabledWidgets, src.WidgetSizes, src.WidgetContentOverrides)
	if err != nil {
		return nil, err
	}

	invalidateCoupleMembers(ctx, s.log, s.layoutCache, s.userRepo, targetCoupleID)
	return saved, nil
}

// overwriteLayout is the single "replace the couple layout's four fields"
// path behind both apply and copy.
func (s *templateService) overwriteLayout(ctx context.Context, coupleID, therapistID uuid.UUID, order, enabled, sizes, content []byte) (*types.CoupleLayout, error) {
	row := &types.CoupleLayout{
		CoupleID:               coupleID,
		WidgetOrder:            order,
		EnabledWidgets:         enabled,
		WidgetSizes:            sizes,
		WidgetContentOverrides: content,
	}
	if therapistID != uuid.Nil {
		row.TherapistID = &therapistID
	}

	saved, err := s.layoutRepo.Upsert(ctx, nil, row)
	if err != nil {
		s.log.Warn("overwriteLayout: write failed", "error", err, "couple_id", coupleID)
		return nil, apierr.FromDB("overwrite couple layout", err)
	}
	return saved, nil
}

func orEmptyList(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func orEmptyBoolMap(v map[string]bool) map[string]bool {
	if v == nil {
		return map[string]bool{}
	}
	return v
}

func orEmptySizeMap(v map[string]catalog.Size) map[string]catalog.Size {
	if v == nil {
		return map[string]catalog.Size{}
	}
	return v
}

func orEmptyRawMap(v map[string]json.RawMessage) map[string]json.RawMessage {
	if v == nil {
		return map[string]json.RawMessage{}
	}
	return v
}
