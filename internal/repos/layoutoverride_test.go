package repos_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/attunelab/attune-backend/internal/repos"
	"github.com/attunelab/attune-backend/internal/repos/testutil"
	"github.com/attunelab/attune-backend/internal/types"
)

func TestLayoutOverrideRepoGetAbsentReturnsNil(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	repo := repos.NewLayoutOverrideRepo(db, log)
	row, err := repo.GetByUserID(context.Background(), tx, uuid.New())
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if row != nil {
		t.Fatalf("expected nil row for absent override, got %+v", row)
	}
}

func TestLayoutOverrideRepoUpsertKeyedOnUserID(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := repos.NewLayoutOverrideRepo(db, log)
	couple := testutil.SeedCouple(t, ctx, tx, nil)
	user := testutil.SeedUser(t, ctx, tx, testutil.PtrUUID(couple.ID), "member@example.com")

	first, err := repo.Upsert(ctx, tx, &types.IndividualLayoutOverride{
		UserID:            user.ID,
		CoupleID:          couple.ID,
		UsePersonalLayout: true,
		WidgetOrder:       mustJSON(t, []string{"b", "a"}),
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// Second upsert with nil dimensions replaces the whole record.
	second, err := repo.Upsert(ctx, tx, &types.IndividualLayoutOverride{
		UserID:   user.ID,
		CoupleID: couple.ID,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("upsert created a second row for the same user")
	}

	got, err := repo.GetByUserID(ctx, tx, user.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if got.UsePersonalLayout {
		t.Fatalf("use_personal_layout survived a full replace")
	}
	if len(got.WidgetOrder) != 0 {
		t.Fatalf("widget_order survived a full replace: %s", got.WidgetOrder)
	}
}

func TestLayoutOverrideRepoSetUsePersonalLayoutReportsMissingRow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := repos.NewLayoutOverrideRepo(db, log)

	affected, err := repo.SetUsePersonalLayout(ctx, tx, uuid.New(), true)
	if err != nil {
		t.Fatalf("SetUsePersonalLayout: %v", err)
	}
	if affected != 0 {
		t.Fatalf("affected = %d for missing row, want 0", affected)
	}

	couple := testutil.SeedCouple(t, ctx, tx, nil)
	user := testutil.SeedUser(t, ctx, tx, testutil.PtrUUID(couple.ID), "toggle@example.com")
	if _, err := repo.Upsert(ctx, tx, &types.IndividualLayoutOverride{UserID: user.ID, CoupleID: couple.ID}); err != nil {
		t.Fatalf("seed upsert: %v", err)
	}

	affected, err = repo.SetUsePersonalLayout(ctx, tx, user.ID, true)
	if err != nil {
		t.Fatalf("SetUsePersonalLayout: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected = %d, want 1", affected)
	}

	got, err := repo.GetByUserID(ctx, tx, user.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if !got.UsePersonalLayout {
		t.Fatalf("toggle did not persist")
	}
}

func TestLayoutOverrideRepoUpdateHiddenWidgetsTouchesOnlyThatColumn(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := repos.NewLayoutOverrideRepo(db, log)
	couple := testutil.SeedCouple(t, ctx, tx, nil)
	user := testutil.SeedUser(t, ctx, tx, testutil.PtrUUID(couple.ID), "hide@example.com")

	if _, err := repo.Upsert(ctx, tx, &types.IndividualLayoutOverride{
		UserID:            user.ID,
		CoupleID:          couple.ID,
		UsePersonalLayout: true,
		WidgetOrder:       mustJSON(t, []string{"a"}),
	}); err != nil {
		t.Fatalf("seed upsert: %v", err)
	}

	if _, err := repo.UpdateHiddenWidgets(ctx, tx, user.ID, mustJSON(t, []string{"b"})); err != nil {
		t.Fatalf("UpdateHiddenWidgets: %v", err)
	}

	got, err := repo.GetByUserID(ctx, tx, user.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	var hidden []string
	if err := json.Unmarshal(got.HiddenWidgets, &hidden); err != nil {
		t.Fatalf("unmarshal hidden_widgets: %v", err)
	}
	if len(hidden) != 1 || hidden[0] != "b" {
		t.Fatalf("hidden_widgets = %v", hidden)
	}
	if !got.UsePersonalLayout || len(got.WidgetOrder) == 0 {
		t.Fatalf("other columns were clobbered by the hidden update: %+v", got)
	}
}

func TestLayoutOverrideRepoDeleteIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	repo := repos.NewLayoutOverrideRepo(db, log)
	couple := testutil.SeedCouple(t, ctx, tx, nil)
	user := testutil.SeedUser(t, ctx, tx, testutil.PtrUUID(couple.ID), "reset@example.com")

	if _, err := repo.Upsert(ctx, tx, &types.IndividualLayoutOverride{UserID: user.ID, CoupleID: couple.ID}); err != nil {
		t.Fatalf("seed upsert: %v", err)
	}

	if err := repo.DeleteByUserID(ctx, tx, user.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := repo.DeleteByUserID(ctx, tx, user.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	row, err := repo.GetByUserID(ctx, tx, user.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if row != nil {
		t.Fatalf("override survived delete")
	}
}
