package catalog

import (
	"context"

	"github.com/avelichko/tourbooking/internal/domain"
	"github.com/avelichko/tourbooking/internal/repository"
)

type CatalogUseCase interface {
	ListActivities(ctx context.Context) ([]domain.Activity, error)
	GetActivity(ctx context.Context, id string) (*domain.Activity, error)
	ListSlots(ctx context.Context, activityID string) ([]domain.Slot, error)
	ListCategories(ctx context.Context, activityID string) ([]domain.TicketCategory, error)
}

type Cache interface {
	GetActivities(ctx context.Context) ([]domain.Activity, error)
	SetActivities(ctx context.Context, activities []domain.Activity) error
	GetSlots(ctx context.Context, activityID string) ([]domain.Slot, error)
	SetSlots(ctx context.Context, activityID string, slots []domain.Slot) error
}

// CatalogService serves read-only catalog lookups with a read-through
// cache. Cache misses or errors fall back to storage.
type CatalogService struct {
	repo  repository.CatalogRepository
	cache Cache
}

func NewCatalogService(repo repository.CatalogRepository, cache Cache) *CatalogService {
	return &CatalogService{repo: repo, cache: cache}
}

func (s *CatalogService) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetActivities(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	activities, err := s.repo.ListActivities(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetActivities(ctx, activities)
	}
	return activities, nil
}

func (s *CatalogService) GetActivity(ctx context.Context, id string) (*domain.Activity, error) {
	return s.repo.GetActivity(ctx, id)
}

func (s *CatalogService) ListSlots(ctx context.Context, activityID string) ([]domain.Slot, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetSlots(ctx, activityID); err == nil && cached != nil {
			return cached, nil
		}
	}

	if _, err := s.repo.GetActivity(ctx, activityID); err != nil {
		return nil, err
	}
	slots, err := s.repo.ListSlots(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetSlots(ctx, activityID, slots)
	}
	return slots, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, activityID string) ([]domain.TicketCategory, error) {
	if _, err := s.repo.GetActivity(ctx, activityID); err != nil {
		return nil, err
	}
	return s.repo.ListCategories(ctx, activityID)
}

var _ CatalogUseCase = (*CatalogService)(nil)
