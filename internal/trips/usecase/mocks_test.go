package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tripack/internal/trips/domain/model"
)

// Mock trip repository
type mockTripRepo struct {
	mock.Mock
}

func (m *mockTripRepo) Create(ctx context.Context, trip *model.Trip) error {
	args := m.Called(ctx, trip)
	return args.Error(0)
}

func (m *mockTripRepo) GetByID(ctx context.Context, userID, tripID string) (*model.Trip, error) {
	args := m.Called(ctx, userID, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Trip), args.Error(1)
}

func (m *mockTripRepo) ListByUser(ctx context.Context, userID string) ([]model.Trip, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Trip), args.Error(1)
}

func (m *mockTripRepo) SetCoverImageURL(ctx context.Context, userID, tripID, url string) (bool, error) {
	args := m.Called(ctx, userID, tripID, url)
	return args.Bool(0), args.Error(1)
}

func (m *mockTripRepo) SetProgress(ctx context.Context, userID, tripID string, total, packed int) error {
	args := m.Called(ctx, userID, tripID, total, packed)
	return args.Error(0)
}

// Mock item repository
type mockItemRepo struct {
	mock.Mock
}

func (m *mockItemRepo) Create(ctx context.Context, item *model.PackingItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockItemRepo) CreateMany(ctx context.Context, items []*model.PackingItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *mockItemRepo) GetByID(ctx context.Context, userID, tripID, itemID string) (*model.PackingItem, error) {
	args := m.Called(ctx, userID, tripID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PackingItem), args.Error(1)
}

func (m *mockItemRepo) ListByTrip(ctx context.Context, userID, tripID string) ([]model.PackingItem, error) {
	args := m.Called(ctx, userID, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PackingItem), args.Error(1)
}

func (m *mockItemRepo) SetImageURL(ctx context.Context, userID, tripID, itemID, url string) (bool, error) {
	args := m.Called(ctx, userID, tripID, itemID, url)
	return args.Bool(0), args.Error(1)
}

func (m *mockItemRepo) SetPacked(ctx context.Context, userID, tripID, itemID string, packed bool) (*model.PackingItem, error) {
	args := m.Called(ctx, userID, tripID, itemID, packed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PackingItem), args.Error(1)
}

func (m *mockItemRepo) SetQuantity(ctx context.Context, userID, tripID, itemID string, quantity int) (*model.PackingItem, error) {
	args := m.Called(ctx, userID, tripID, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PackingItem), args.Error(1)
}

func (m *mockItemRepo) Delete(ctx context.Context, userID, tripID, itemID string) (*model.PackingItem, error) {
	args := m.Called(ctx, userID, tripID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PackingItem), args.Error(1)
}

// Mock image cache repository
type mockImageCache struct {
	mock.Mock
}

func (m *mockImageCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockImageCache) PutIfAbsent(ctx context.Context, key, url string) (string, error) {
	args := m.Called(ctx, key, url)
	return args.String(0), args.Error(1)
}

// Mock shared trip repository
type mockSharedRepo struct {
	mock.Mock
}

func (m *mockSharedRepo) Create(ctx context.Context, shared *model.SharedTrip) (string, error) {
	args := m.Called(ctx, shared)
	return args.String(0), args.Error(1)
}

func (m *mockSharedRepo) GetByID(ctx context.Context, sharedID string) (*model.SharedTrip, error) {
	args := m.Called(ctx, sharedID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SharedTrip), args.Error(1)
}

// Mock list generator
type mockListGenerator struct {
	mock.Mock
}

func (m *mockListGenerator) GeneratePackingList(ctx context.Context, destination string, days int) (*model.GeneratedList, error) {
	args := m.Called(ctx, destination, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GeneratedList), args.Error(1)
}

// Mock image generator
type mockImageGenerator struct {
	mock.Mock
}

func (m *mockImageGenerator) GenerateImages(ctx context.Context, prompt string, count int) ([][]byte, error) {
	args := m.Called(ctx, prompt, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]byte), args.Error(1)
}

// Mock object store
type mockObjectStore struct {
	mock.Mock
}

func (m *mockObjectStore) Put(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, objectPath, data, contentType)
	return args.String(0), args.Error(1)
}

// Mock event log
type mockEventLog struct {
	mock.Mock
}

func (m *mockEventLog) Append(ctx context.Context, record model.ChangeRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockEventLog) ReadSince(ctx context.Context, userID, tripID, sinceToken string) ([]model.ChangeRecord, error) {
	args := m.Called(ctx, userID, tripID, sinceToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChangeRecord), args.Error(1)
}
