package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/attunelab/attune-backend/internal/apierr"
	"github.com/attunelab/attune-backend/internal/repos"
	"github.com/attunelab/attune-backend/internal/repos/testutil"
	"github.com/attunelab/attune-backend/internal/services"
)

func newOverrideService(t *testing.T, tx *gorm.DB) services.OverrideService {
	t.Helper()
	log := testutil.Logger(t)
	return services.NewOverrideService(
		tx, log,
		repos.NewLayoutOverrideRepo(tx, log),
		repos.NewCoupleRepo(tx, log),
		nil,
	)
}

func hiddenOf(tb testing.TB, raw []byte) []string {
	tb.Helper()
	var out []string
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		tb.Fatalf("unmarshal hidden_widgets: %v", err)
	}
	return out
}

func TestGetOverrideDefaultsWhenAbsent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newOverrideService(t, tx)
	couple := testutil.SeedCouple(t, ctx, tx, nil)
	user := testutil.SeedUser(t, ctx, tx, testutil.PtrUUID(couple.ID), "fresh@example.com")

	got, err := svc.GetOverride(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOverride: %v", err)
	}
	if got.UsePersonalLayout {
		t.Fatalf("default override has the personal switch on")
	}
	if hidden := hiddenOf(t, got.HiddenWidgets); len(hidden) != 0 {
		t.Fatalf("default override hides widgets: %v", hidden)
	}
}

func TestToggleWithoutRecordIsNotFound(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	svc := newOverrideService(t, tx)

	_, err := svc.Toggle(context.Background(), uuid.New(), true)
	if err == nil {
		t.Fatalf("expected not-found error")
	}
	if apierr.Code(err) != apierr.CodeNotFound {
		t.Fatalf("error code = %s, want not_found", apierr.Code(err))
	}
}

func TestToggleFlipsExistingRecord(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newOverrideService(t, tx)
	couple := testutil.SeedCouple(t, ctx, tx, nil)
	user := testutil.SeedUser(t, ctx, tx, testutil.PtrUUID(couple.ID), "flip@example.com")

	if _, err := svc.UpsertOverride(ctx, user.ID, services.OverrideFields{
		CoupleID:    couple.ID,
		WidgetOrder: []string{"mood_tracker"},
	}); err != nil {
		t.Fatalf("seed upsert: %v", err)
	}

	got, err := svc.Toggle(ctx, user.ID, true)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !got.UsePersonalLayout {
		t.Fatalf("toggle on did not persist")
	}

	got, err = svc.Toggle(ctx, user.ID, false)
	if err != nil {
		t.Fatalf("Toggle off: %v", err)
	}
	if got.UsePersonalLayout {
		t.Fatalf("toggle off did not persist")
	}
	// The stored fields survive the toggle for later re-enabling.
	if len(decodeList(t, got.WidgetOrder)) != 1 {
		t.Fatalf("widget_order lost across toggles: %s", got.WidgetOrder)
	}
}

func TestUpsertOverrideRejectsUnknownCouple(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newOverrideService(t, tx)
	couple := testutil.SeedCouple(t, ctx, tx, nil)
	user := testutil.SeedUser(t, ctx, tx, testutil.PtrUUID(couple.ID), "orphan@example.com")

	_, err := svc.UpsertOverride(ctx, user.ID, services.OverrideFields{CoupleID: uuid.New()})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if apierr.Code(err) != apierr.CodeValidation {
		t.Fatalf("error code = %s, want validation", apierr.Code(err))
	}
}

func TestSetHiddenCreatesRecordLazily(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newOverrideService(t, tx)
	couple := testutil.SeedCouple(t, ctx, tx, nil)
	user := testutil.SeedUser(t, ctx, tx, testutil.PtrUUID(couple.ID), "lazy@example.com")

	got, err := svc.SetHidden(ctx, user.ID, "mood_tracker", true, couple.ID)
	if err != nil {
		t.Fatalf("SetHidden: %v", err)
	}
	if hidden := hiddenOf(t, got.HiddenWidgets); len(hidden) != 1 || hidden[0] != "mood_tracker" {
		t.Fatalf("hidden_widgets = %v", hidden)
	}
	if got.UsePersonalLayout {
		t.Fatalf("lazy create turned the personal switch on")
	}
}

func TestSetHiddenIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newOverrideService(t, tx)
	couple := testutil.SeedCouple(t, ctx, tx, nil)
	user := testutil.SeedUser(t, ctx, tx, testutil.PtrUUID(couple.ID), "twice@example.com")

	if _, err := svc.SetHidden(ctx, user.ID, "mood_tracker", true, couple.ID); err != nil {
		t.Fatalf("first hide: %v", err)
	}
	got, err := svc.SetHidden(ctx, user.ID, "mood_tracker", true, couple.ID)
	if err != nil {
		t.Fatalf("second hide: %v", err)
	}
	if hidden := hiddenOf(t, got.HiddenWidgets); len(hidden) != 1 {
		t.Fatalf("hiding twice accumulated duplicates: %v", hidden)
	}

	got, err = svc.SetHidden(ctx, user.ID, "mood_tracker", false, uuid.Nil)
	if err != nil {
		t.Fatalf("unhide: %v", err)
	}
	if hidden := hiddenOf(t, got.HiddenWidgets); len(hidden) != 0 {
		t.Fatalf("unhide left the widget on the list: %v", hidden)
	}
}

func TestSetHiddenUnhideWithoutRecordIsNoOp(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newOverrideService(t, tx)
	couple := testutil.SeedCouple(t, ctx, tx, nil)
	user := testutil.SeedUser(t, ctx, tx, testutil.PtrUUID(couple.ID), "noop@example.com")

	got, err := svc.SetHidden(ctx, user.ID, "mood_tracker", false, uuid.Nil)
	if err != nil {
		t.Fatalf("SetHidden: %v", err)
	}
	if hidden := hiddenOf(t, got.HiddenWidgets); len(hidden) != 0 {
		t.Fatalf("no-op unhide produced hidden widgets: %v", hidden)
	}

	log := testutil.Logger(t)
	row, err := repos.NewLayoutOverrideRepo(tx, log).GetByUserID(ctx, nil, user.ID)
	if err != nil {
		t.Fatalf("repo get: %v", err)
	}
	if row != nil {
		t.Fatalf("no-op unhide persisted a record")
	}
}

func TestSetHiddenRequiresCoupleIDForLazyCreate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	svc := newOverrideService(t, tx)

	_, err := svc.SetHidden(context.Background(), uuid.New(), "mood_tracker", true, uuid.Nil)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if apierr.Code(err) != apierr.CodeValidation {
		t.Fatalf("error code = %s, want validation", apierr.Code(err))
	}
}

func TestResetDeletesAndToleratesAbsence(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newOverrideService(t, tx)
	couple := testutil.SeedCouple(t, ctx, tx, nil)
	user := testutil.SeedUser(t, ctx, tx, testutil.PtrUUID(couple.ID), "wipe@example.com")

	if _, err := svc.UpsertOverride(ctx, user.ID, services.OverrideFields{
		CoupleID:          couple.ID,
		UsePersonalLayout: true,
	}); err != nil {
		t.Fatalf("seed upsert: %v", err)
	}

	if err := svc.Reset(ctx, user.ID); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := svc.Reset(ctx, user.ID); err != nil {
		t.Fatalf("second Reset: %v", err)
	}

	got, err := svc.GetOverride(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOverride: %v", err)
	}
	if got.UsePersonalLayout {
		t.Fatalf("reset did not return the user to couple defaults")
	}
}
