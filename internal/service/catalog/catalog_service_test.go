package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/avelichko/tourbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Activity), args.Error(1)
}

func (m *MockCatalogRepository) GetActivity(ctx context.Context, id string) (*domain.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockCatalogRepository) ListSlots(ctx context.Context, activityID string) ([]domain.Slot, error) {
	args := m.Called(ctx, activityID)
	return args.Get(0).([]domain.Slot), args.Error(1)
}

func (m *MockCatalogRepository) GetSlot(ctx context.Context, id string) (*domain.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Slot), args.Error(1)
}

func (m *MockCatalogRepository) GetSlotForUpdate(ctx context.Context, id string) (*domain.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Slot), args.Error(1)
}

func (m *MockCatalogRepository) ListCategories(ctx context.Context, activityID string) ([]domain.TicketCategory, error) {
	args := m.Called(ctx, activityID)
	return args.Get(0).([]domain.TicketCategory), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetActivities(ctx context.Context) ([]domain.Activity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Activity), args.Error(1)
}

func (m *MockCache) SetActivities(ctx context.Context, activities []domain.Activity) error {
	args := m.Called(ctx, activities)
	return args.Error(0)
}

func (m *MockCache) GetSlots(ctx context.Context, activityID string) ([]domain.Slot, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Slot), args.Error(1)
}

func (m *MockCache) SetSlots(ctx context.Context, activityID string, slots []domain.Slot) error {
	args := m.Called(ctx, activityID, slots)
	return args.Error(0)
}

func TestCatalogService_ListActivities_CacheMiss(t *testing.T) {
	mockRepo := &MockCatalogRepository{}
	mockCache := &MockCache{}
	service := NewCatalogService(mockRepo, mockCache)

	ctx := context.Background()
	activities := []domain.Activity{{ID: "act-1", Name: "Boat tour"}}

	mockCache.On("GetActivities", ctx).Return(nil, nil).Once()
	mockRepo.On("ListActivities", ctx).Return(activities, nil).Once()
	mockCache.On("SetActivities", ctx, activities).Return(nil).Once()

	got, err := service.ListActivities(ctx)
	assert.NoError(t, err)
	assert.Equal(t, activities, got)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestCatalogService_ListActivities_CacheHit(t *testing.T) {
	mockRepo := &MockCatalogRepository{}
	mockCache := &MockCache{}
	service := NewCatalogService(mockRepo, mockCache)

	ctx := context.Background()
	activities := []domain.Activity{{ID: "act-1", Name: "Boat tour"}}

	mockCache.On("GetActivities", ctx).Return(activities, nil).Once()

	got, err := service.ListActivities(ctx)
	assert.NoError(t, err)
	assert.Equal(t, activities, got)
	mockRepo.AssertNotCalled(t, "ListActivities", ctx)
}

func TestCatalogService_ListSlots(t *testing.T) {
	mockRepo := &MockCatalogRepository{}
	service := NewCatalogService(mockRepo, nil)

	ctx := context.Background()
	slots := []domain.Slot{{ID: "slot-1", ActivityID: "act-1", Capacity: 10}}

	mockRepo.On("GetActivity", ctx, "act-1").Return(&domain.Activity{ID: "act-1"}, nil).Once()
	mockRepo.On("ListSlots", ctx, "act-1").Return(slots, nil).Once()

	got, err := service.ListSlots(ctx, "act-1")
	assert.NoError(t, err)
	assert.Equal(t, slots, got)
}

func TestCatalogService_ListSlots_UnknownActivity(t *testing.T) {
	mockRepo := &MockCatalogRepository{}
	service := NewCatalogService(mockRepo, nil)

	ctx := context.Background()
	mockRepo.On("GetActivity", ctx, "no-such").Return(nil, domain.ErrActivityNotFound).Once()

	_, err := service.ListSlots(ctx, "no-such")
	assert.ErrorIs(t, err, domain.ErrActivityNotFound)
}

func TestCatalogService_ListActivities_RepoError(t *testing.T) {
	mockRepo := &MockCatalogRepository{}
	service := NewCatalogService(mockRepo, nil)

	ctx := context.Background()
	mockRepo.On("ListActivities", ctx).Return([]domain.Activity(nil), errors.New("db down")).Once()

	_, err := service.ListActivities(ctx)
	assert.Error(t, err)
}
