package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/attunelab/attune-backend/internal/types"
)

func SeedTherapist(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.Therapist {
	tb.Helper()
	th := &types.Therapist{
		ID:        uuid.New(),
		Email:     email,
		FirstName: "Dana",
		LastName:  "Rivers",
	}
	if err := tx.WithContext(ctx).Create(th).Error; err != nil {
		tb.Fatalf("seed therapist: %v", err)
	}
	return th
}

func SeedCouple(tb testing.TB, ctx context.Context, tx *gorm.DB, therapistID *uuid.UUID) *types.Couple {
	tb.Helper()
	c := &types.Couple{
		ID:          uuid.New(),
		TherapistID: therapistID,
		Name:        "couple",
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed couple: %v", err)
	}
	return c
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, coupleID *uuid.UUID, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		CoupleID:  coupleID,
		Email:     email,
		FirstName: "A",
		LastName:  "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }
