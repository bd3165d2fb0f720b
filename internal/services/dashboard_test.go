package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/attunelab/attune-backend/internal/apierr"
	"github.com/attunelab/attune-backend/internal/catalog"
	"github.com/attunelab/attune-backend/internal/layout"
	"github.com/attunelab/attune-backend/internal/repos"
	"github.com/attunelab/attune-backend/internal/repos/testutil"
	"github.com/attunelab/attune-backend/internal/services"
)

func newDashboardService(t *testing.T, tx *gorm.DB) services.DashboardService {
	t.Helper()
	log := testutil.Logger(t)
	return services.NewDashboardService(
		tx, log, catalog.Default(),
		repos.NewCoupleLayoutRepo(tx, log),
		repos.NewLayoutOverrideRepo(tx, log),
		repos.NewUserRepo(tx, log),
		nil,
	)
}

func resolvedIDs(widgets []layout.ResolvedWidget) []string {
	out := make([]string, len(widgets))
	for i, w := range widgets {
		out[i] = w.ID
	}
	return out
}

func TestResolveForViewerFollowsCoupleLayout(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newDashboardService(t, tx)
	layoutSvc := newCoupleLayoutService(t, tx)
	couple := testutil.SeedCouple(t, ctx, tx, nil)
	user := testutil.SeedUser(t, ctx, tx, testutil.PtrUUID(couple.ID), "viewer@example.com")

	if _, err := layoutSvc.UpsertCoupleLayout(ctx, couple.ID, nil, services.LayoutFields{
		WidgetOrder:    []string{"mood_tracker", "daily_checkin"},
		EnabledWidgets: map[string]bool{"shared_goals": false},
	}); err != nil {
		t.Fatalf("seed couple layout: %v", err)
	}

	widgets, err := svc.ResolveForViewer(ctx, user.ID)
	if err != nil {
		t.Fatalf("ResolveForViewer: %v", err)
	}
	ids := resolvedIDs(widgets)
	if len(ids) < 2 || ids[0] != "mood_tracker" || ids[1] != "daily_checkin" {
		t.Fatalf("resolved order = %v", ids)
	}
	for _, id := range ids {
		if id == "shared_goals" {
			t.Fatalf("disabled widget leaked into resolved dashboard")
		}
	}
}

func TestResolveForViewerHonorsHiddenWidgets(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newDashboardService(t, tx)
	overrideSvc := newOverrideService(t, tx)
	couple := testutil.SeedCouple(t, ctx, tx, nil)
	user := testutil.SeedUser(t, ctx, tx, testutil.PtrUUID(couple.ID), "hider@example.com")

	if _, err := overrideSvc.SetHidden(ctx, user.ID, "mood_tracker", true, couple.ID); err != nil {
		t.Fatalf("hide widget: %v", err)
	}

	widgets, err := svc.ResolveForViewer(ctx, user.ID)
	if err != nil {
		t.Fatalf("ResolveForViewer: %v", err)
	}
	for _, id := range resolvedIDs(widgets) {
		if id == "mood_tracker" {
			t.Fatalf("hidden widget leaked into resolved dashboard")
		}
	}
}

func TestResolveForViewerPersonalOrderWhenSwitchedOn(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newDashboardService(t, tx)
	overrideSvc := newOverrideService(t, tx)
	couple := testutil.SeedCouple(t, ctx, tx, nil)
	user := testutil.SeedUser(t, ctx, tx, testutil.PtrUUID(couple.ID), "personal@example.com")

	if _, err := overrideSvc.UpsertOverride(ctx, user.ID, services.OverrideFields{
		CoupleID:          couple.ID,
		UsePersonalLayout: true,
		WidgetOrder:       []string{"journal_prompts", "daily_checkin"},
	}); err != nil {
		t.Fatalf("seed override: %v", err)
	}

	widgets, err := svc.ResolveForViewer(ctx, user.ID)
	if err != nil {
		t.Fatalf("ResolveForViewer: %v", err)
	}
	ids := resolvedIDs(widgets)
	if len(ids) < 2 || ids[0] != "journal_prompts" || ids[1] != "daily_checkin" {
		t.Fatalf("resolved order = %v, want personal order first", ids)
	}
}

func TestResolveForViewerUnknownUserIsNotFound(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	svc := newDashboardService(t, tx)

	_, err := svc.ResolveForViewer(context.Background(), uuid.New())
	if err == nil {
		t.Fatalf("expected not-found error")
	}
	if apierr.Code(err) != apierr.CodeNotFound {
		t.Fatalf("error code = %s, want not_found", apierr.Code(err))
	}
}

func TestResolveForViewerWithoutCoupleFallsBackToCatalog(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newDashboardService(t, tx)
	user := testutil.SeedUser(t, ctx, tx, nil, "solo@example.com")

	widgets, err := svc.ResolveForViewer(ctx, user.ID)
	if err != nil {
		t.Fatalf("ResolveForViewer: %v", err)
	}
	if len(widgets) != catalog.Default().Len() {
		t.Fatalf("resolved %d widgets for coupleless viewer, want full catalog %d", len(widgets), catalog.Default().Len())
	}
}
