package services_test

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/attunelab/attune-backend/internal/apierr"
	"github.com/attunelab/attune-backend/internal/catalog"
	"github.com/attunelab/attune-backend/internal/repos"
	"github.com/attunelab/attune-backend/internal/repos/testutil"
	"github.com/attunelab/attune-backend/internal/services"
)

// newCoupleLayoutService wires the service against a rolled-back transaction
// so each test sees an empty store.
func newCoupleLayoutService(t *testing.T, tx *gorm.DB) services.CoupleLayoutService {
	t.Helper()
	log := testutil.Logger(t)
	return services.NewCoupleLayoutService(
		tx, log, catalog.Default(),
		repos.NewCoupleLayoutRepo(tx, log),
		repos.NewUserRepo(tx, log),
		nil,
	)
}

func decodeList(tb testing.TB, raw datatypes.JSON) []string {
	tb.Helper()
	var out []string
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		tb.Fatalf("unmarshal list column: %v", err)
	}
	return out
}

func TestGetCoupleLayoutDefaultsWhenAbsent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newCoupleLayoutService(t, tx)
	couple := testutil.SeedCouple(t, ctx, tx, nil)

	got, err := svc.GetCoupleLayout(ctx, couple.ID)
	if err != nil {
		t.Fatalf("GetCoupleLayout: %v", err)
	}
	if !reflect.DeepEqual(decodeList(t, got.WidgetOrder), catalog.Default().WidgetIDs()) {
		t.Fatalf("default order = %s, want catalog order", got.WidgetOrder)
	}

	// The default is computed, not written.
	log := testutil.Logger(t)
	row, err := repos.NewCoupleLayoutRepo(tx, log).GetByCoupleID(ctx, nil, couple.ID)
	if err != nil {
		t.Fatalf("repo get: %v", err)
	}
	if row != nil {
		t.Fatalf("reading the default persisted a row")
	}
}

func TestUpsertCoupleLayoutMergesOverExisting(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc := newCoupleLayoutService(t, tx)
	couple := testutil.SeedCouple(t, ctx, tx, nil)

	if _, err := svc.UpsertCoupleLayout(ctx, couple.ID, nil, services.LayoutFields{
		WidgetOrder: []string{"mood_tracker", "daily_checkin"},
	}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// Omitted fields keep their stored values.
	got, err := svc.UpsertCoupleLayout(ctx, couple.ID, nil, services.LayoutFields{
		EnabledWidgets: map[string]bool{"daily_checkin": false},
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if order := decodeList(t, got.WidgetOrder); !reflect.DeepEqual(order, []string{"mood_tracker", "daily_checkin"}) {
		t.Fatalf("order after partial upsert = %v", order)
	}
	var enabled map[string]bool
	if err := json.Unmarshal(got.EnabledWidgets, &enabled); err != nil {
		t.Fatalf("unmarshal enabled_widgets: %v", err)
	}
	if enabled["daily_checkin"] {
		t.Fatalf("enabled_widgets not written: %v", enabled)
	}
}

func TestUpsertCoupleLayoutRejectsInvalidSizes(t *testing.T) {
	log := testutil.Logger(t)
	svc := services.NewCoupleLayoutService(nil, log, catalog.Default(), nil, nil, nil)

	_, err := svc.UpsertCoupleLayout(context.Background(), uuid.New(), nil, services.LayoutFields{
		WidgetSizes: map[string]catalog.Size{"daily_checkin": {Columns: 5, Rows: 1}},
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if apierr.Code(err) != apierr.CodeValidation {
		t.Fatalf("error code = %s, want validation", apierr.Code(err))
	}
}
