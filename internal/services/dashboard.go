package services

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/attunelab/attune-backend/internal/apierr"
	"github.com/attunelab/attune-backend/internal/cache"
	"github.com/attunelab/attune-backend/internal/catalog"
	"github.com/attunelab/attune-backend/internal/layout"
	"github.com/attunelab/attune-backend/internal/logger"
	"github.com/attunelab/attune-backend/internal/repos"
	"github.com/attunelab/attune-backend/internal/types"
)

type DashboardService interface {
	// ResolveForViewer computes the ordered visible widget list one member
	// sees on the couple dashboard.
	ResolveForViewer(ctx context.Context, userID uuid.UUID) ([]layout.ResolvedWidget, error)
}

type dashboardService struct {
	db           *gorm.DB
	log          *logger.Logger
	cat          *catalog.Catalog
	layoutRepo   repos.CoupleLayoutRepo
	overrideRepo repos.LayoutOverrideRepo
	userRepo     repos.UserRepo
	layoutCache  cache.LayoutCache
}

func NewDashboardService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cat *catalog.Catalog,
	layoutRepo repos.CoupleLayoutRepo,
	overrideRepo repos.LayoutOverrideRepo,
	userRepo repos.UserRepo,
	layoutCache cache.LayoutCache,
) DashboardService {
	return &dashboardService{
		db:           db,
		log:          baseLog.With("service", "DashboardService"),
		cat:          cat,
		layoutRepo:   layoutRepo,
		overrideRepo: overrideRepo,
		userRepo:     userRepo,
		layoutCache:  layoutCache,
	}
}

func (s *dashboardService) ResolveForViewer(ctx context.Context, userID uuid.UUID) ([]layout.ResolvedWidget, error) {
	if userID == uuid.Nil {
		return nil, apierr.Validation("missing user id")
	}

	if s.layoutCache != nil {
		if widgets, ok := s.layoutCache.GetResolved(ctx, userID); ok {
			return widgets, nil
		}
	}

	var (
		viewer   *types.User
		override *types.IndividualLayoutOverride
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := s.userRepo.GetByIDs(gctx, nil, []uuid.UUID{userID})
		if err != nil {
			return apierr.FromDB("get viewer", err)
		}
		if len(users) == 0 || users[0] == nil {
			return apierr.NotFound("viewer not found")
		}
		viewer = users[0]
		return nil
	})
	g.Go(func() error {
		row, err := s.overrideRepo.GetByUserID(gctx, nil, userID)
		if err != nil {
			return apierr.FromDB("get layout override", err)
		}
		override = row
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Warn("ResolveForViewer: load failed", "error", err, "user_id", userID)
		return nil, err
	}

	// The override's denormalized couple_id wins when present; it is what the
	// record was personalized against.
	coupleID := uuid.Nil
	if override != nil {
		coupleID = override.CoupleID
	} else if viewer.CoupleID != nil {
		coupleID = *viewer.CoupleID
	}

	couple := layout.CoupleView{}
	if coupleID != uuid.Nil {
		row, err := s.layoutRepo.GetByCoupleID(ctx, nil, coupleID)
		if err != nil {
			s.log.Warn("ResolveForViewer: couple layout load failed", "error", err, "couple_id", coupleID)
			return nil, apierr.FromDB("get couple layout", err)
		}
		if row == nil {
			row = defaultCoupleLayout(coupleID, s.cat)
		}
		couple = coupleViewOf(row)
	}

	widgets := layout.Resolve(couple, overrideViewOf(override), s.cat)

	if s.layoutCache != nil {
		s.layoutCache.SetResolved(ctx, userID, widgets)
	}
	return widgets, nil
}
