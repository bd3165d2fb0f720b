package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/attunelab/attune-backend/internal/cache"
	"github.com/attunelab/attune-backend/internal/logger"
	"github.com/attunelab/attune-backend/internal/repos"
)

// invalidateCoupleMembers drops both members' cached resolved dashboards
// after a write to their couple's layout. Invalidation is best-effort; a
// failed delete just means the entry ages out by TTL.
func invalidateCoupleMembers(ctx context.Context, log *logger.Logger, layoutCache cache.LayoutCache, userRepo repos.UserRepo, coupleID uuid.UUID) {
	if layoutCache == nil || coupleID == uuid.Nil {
		return
	}
	members, err := userRepo.GetByCoupleID(ctx, nil, coupleID)
	if err != nil {
		log.Warn("cache invalidation: member lookup failed", "error", err, "couple_id", coupleID)
		return
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	layoutCache.InvalidateUsers(ctx, ids...)
}
