package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "tripack/internal/shared/errors"
	"tripack/internal/shared/eventbus"
	"tripack/internal/shared/logger"
	"tripack/internal/shared/utils"
	"tripack/internal/trips/domain/model"
	"tripack/internal/trips/usecase"
)

type stubTripRepo struct{ mock.Mock }

func (m *stubTripRepo) Create(ctx context.Context, trip *model.Trip) error {
	return m.Called(ctx, trip).Error(0)
}

func (m *stubTripRepo) GetByID(ctx context.Context, userID, tripID string) (*model.Trip, error) {
	args := m.Called(ctx, userID, tripID)
	var trip *model.Trip
	if args.Get(0) != nil {
		trip = args.Get(0).(*model.Trip)
	}
	return trip, args.Error(1)
}

func (m *stubTripRepo) ListByUser(ctx context.Context, userID string) ([]model.Trip, error) {
	args := m.Called(ctx, userID)
	var trips []model.Trip
	if args.Get(0) != nil {
		trips = args.Get(0).([]model.Trip)
	}
	return trips, args.Error(1)
}

func (m *stubTripRepo) SetCoverImageURL(ctx context.Context, userID, tripID, url string) (bool, error) {
	args := m.Called(ctx, userID, tripID, url)
	return args.Bool(0), args.Error(1)
}

func (m *stubTripRepo) SetProgress(ctx context.Context, userID, tripID string, total, packed int) error {
	return m.Called(ctx, userID, tripID, total, packed).Error(0)
}

type stubItemRepo struct{ mock.Mock }

func (m *stubItemRepo) Create(ctx context.Context, item *model.PackingItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *stubItemRepo) CreateMany(ctx context.Context, items []*model.PackingItem) error {
	return m.Called(ctx, items).Error(0)
}

func (m *stubItemRepo) GetByID(ctx context.Context, userID, tripID, itemID string) (*model.PackingItem, error) {
	args := m.Called(ctx, userID, tripID, itemID)
	var item *model.PackingItem
	if args.Get(0) != nil {
		item = args.Get(0).(*model.PackingItem)
	}
	return item, args.Error(1)
}

func (m *stubItemRepo) ListByTrip(ctx context.Context, userID, tripID string) ([]model.PackingItem, error) {
	args := m.Called(ctx, userID, tripID)
	var items []model.PackingItem
	if args.Get(0) != nil {
		items = args.Get(0).([]model.PackingItem)
	}
	return items, args.Error(1)
}

func (m *stubItemRepo) SetImageURL(ctx context.Context, userID, tripID, itemID, url string) (bool, error) {
	args := m.Called(ctx, userID, tripID, itemID, url)
	return args.Bool(0), args.Error(1)
}

func (m *stubItemRepo) SetPacked(ctx context.Context, userID, tripID, itemID string, packed bool) (*model.PackingItem, error) {
	args := m.Called(ctx, userID, tripID, itemID, packed)
	var item *model.PackingItem
	if args.Get(0) != nil {
		item = args.Get(0).(*model.PackingItem)
	}
	return item, args.Error(1)
}

func (m *stubItemRepo) SetQuantity(ctx context.Context, userID, tripID, itemID string, quantity int) (*model.PackingItem, error) {
	args := m.Called(ctx, userID, tripID, itemID, quantity)
	var item *model.PackingItem
	if args.Get(0) != nil {
		item = args.Get(0).(*model.PackingItem)
	}
	return item, args.Error(1)
}

func (m *stubItemRepo) Delete(ctx context.Context, userID, tripID, itemID string) (*model.PackingItem, error) {
	args := m.Called(ctx, userID, tripID, itemID)
	var item *model.PackingItem
	if args.Get(0) != nil {
		item = args.Get(0).(*model.PackingItem)
	}
	return item, args.Error(1)
}

type stubSharedRepo struct{ mock.Mock }

func (m *stubSharedRepo) Create(ctx context.Context, shared *model.SharedTrip) (string, error) {
	args := m.Called(ctx, shared)
	return args.String(0), args.Error(1)
}

func (m *stubSharedRepo) GetByID(ctx context.Context, sharedID string) (*model.SharedTrip, error) {
	args := m.Called(ctx, sharedID)
	var shared *model.SharedTrip
	if args.Get(0) != nil {
		shared = args.Get(0).(*model.SharedTrip)
	}
	return shared, args.Error(1)
}

type stubListGenerator struct{ mock.Mock }

func (m *stubListGenerator) GeneratePackingList(ctx context.Context, destination string, days int) (*model.GeneratedList, error) {
	args := m.Called(ctx, destination, days)
	var list *model.GeneratedList
	if args.Get(0) != nil {
		list = args.Get(0).(*model.GeneratedList)
	}
	return list, args.Error(1)
}

type stubEventLog struct{ mock.Mock }

func (m *stubEventLog) Append(ctx context.Context, record model.ChangeRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *stubEventLog) ReadSince(ctx context.Context, userID, tripID, sinceToken string) ([]model.ChangeRecord, error) {
	args := m.Called(ctx, userID, tripID, sinceToken)
	var records []model.ChangeRecord
	if args.Get(0) != nil {
		records = args.Get(0).([]model.ChangeRecord)
	}
	return records, args.Error(1)
}

type routerFixture struct {
	app    *fiber.App
	trips  *stubTripRepo
	items  *stubItemRepo
	shared *stubSharedRepo
	gen    *stubListGenerator
	log    *stubEventLog
}

// asUser injects a fixed user identity the way the auth middleware would.
func asUser(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": fiber.Map{"type": "UNAUTHENTICATED", "message": "Authentication required"},
			})
		}
		c.SetUserContext(utils.WithUserID(c.UserContext(), userID))
		return c.Next()
	}
}

func newRouterFixture(t *testing.T, userID string) *routerFixture {
	t.Helper()
	f := &routerFixture{
		trips:  new(stubTripRepo),
		items:  new(stubItemRepo),
		shared: new(stubSharedRepo),
		gen:    new(stubListGenerator),
		log:    new(stubEventLog),
	}

	lg := logger.NewLogger()
	bus := eventbus.NewEventBus(lg)
	tripUC := usecase.NewTripUsecase(f.trips, f.items, f.gen, bus, f.log, lg)
	shareUC := usecase.NewShareUsecase(f.trips, f.items, f.shared, lg)

	handler := NewTripsHTTPHandler(tripUC, shareUC, lg)
	f.app = fiber.New()
	handler.RegisterRoutes(f.app.Group("/api/v1"), asUser(userID))
	return f
}

func decodeBody(t *testing.T, resp *nethttp.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestCreateTripEndpoint(t *testing.T) {
	f := newRouterFixture(t, "user-1")
	f.gen.On("GeneratePackingList", mock.Anything, "Lisbon", 4).Return(&model.GeneratedList{
		Summary: "Pack light.",
		Items:   []model.GeneratedItem{{Name: "Sunscreen", Quantity: 1}},
	}, nil)
	f.trips.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.items.On("CreateMany", mock.Anything, mock.Anything).Return(nil)
	f.log.On("Append", mock.Anything, mock.Anything).Return(nil)

	req := httptest.NewRequest("POST", "/api/v1/trips/", strings.NewReader(`{"destination":"Lisbon","duration":4}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := f.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var trip model.Trip
	decodeBody(t, resp, &trip)
	assert.Equal(t, "Lisbon", trip.Destination)
	assert.Equal(t, "Pack light.", trip.Summary)
	assert.Equal(t, 1, trip.TotalItemsCount)
	assert.Empty(t, trip.CoverImageURL)
}

func TestCreateTripRejectsEmptyDestination(t *testing.T) {
	f := newRouterFixture(t, "user-1")

	req := httptest.NewRequest("POST", "/api/v1/trips/", strings.NewReader(`{"destination":"  ","duration":4}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := f.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "INVALID_ARGUMENT", body["error"]["type"])
	f.gen.AssertNotCalled(t, "GeneratePackingList", mock.Anything, mock.Anything, mock.Anything)
}

func TestTripsRoutesRequireAuth(t *testing.T) {
	f := newRouterFixture(t, "")

	resp, err := f.app.Test(httptest.NewRequest("GET", "/api/v1/trips/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGetTripNotFound(t *testing.T) {
	f := newRouterFixture(t, "user-1")
	f.trips.On("GetByID", mock.Anything, "user-1", "missing").Return(nil, apperrors.ErrTripNotFound)

	resp, err := f.app.Test(httptest.NewRequest("GET", "/api/v1/trips/missing", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body map[string]map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "NOT_FOUND", body["error"]["type"])
}

func TestUpdateItemPatchesPacked(t *testing.T) {
	f := newRouterFixture(t, "user-1")
	after := &model.PackingItem{ID: "item-1", TripID: "trip-1", Name: "Socks", Quantity: 2, Packed: true}
	f.items.On("SetPacked", mock.Anything, "user-1", "trip-1", "item-1", true).Return(after, nil)
	f.log.On("Append", mock.Anything, mock.Anything).Return(nil)

	req := httptest.NewRequest("PATCH", "/api/v1/trips/trip-1/items/item-1", strings.NewReader(`{"packed":true}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := f.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var item model.PackingItem
	decodeBody(t, resp, &item)
	assert.True(t, item.Packed)
	f.items.AssertExpectations(t)
}

func TestUpdateItemRejectsEmptyPatch(t *testing.T) {
	f := newRouterFixture(t, "user-1")

	req := httptest.NewRequest("PATCH", "/api/v1/trips/trip-1/items/item-1", strings.NewReader(`{}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := f.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteItemReturnsNoContent(t *testing.T) {
	f := newRouterFixture(t, "user-1")
	deleted := &model.PackingItem{ID: "item-1", TripID: "trip-1", Name: "Socks"}
	f.items.On("Delete", mock.Anything, "user-1", "trip-1", "item-1").Return(deleted, nil)
	f.log.On("Append", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.app.Test(httptest.NewRequest("DELETE", "/api/v1/trips/trip-1/items/item-1", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestShareTripReturnsSnapshotID(t *testing.T) {
	f := newRouterFixture(t, "user-1")
	trip := &model.Trip{ID: "trip-1", UserID: "user-1", Destination: "Lisbon"}
	f.trips.On("GetByID", mock.Anything, "user-1", "trip-1").Return(trip, nil)
	f.items.On("ListByTrip", mock.Anything, "user-1", "trip-1").Return([]model.PackingItem{}, nil)
	f.shared.On("Create", mock.Anything, mock.Anything).Return("share-abc", nil)

	resp, err := f.app.Test(httptest.NewRequest("POST", "/api/v1/trips/trip-1/share", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "share-abc", body["sharedId"])
}

func TestGetSharedIsPublic(t *testing.T) {
	f := newRouterFixture(t, "")
	f.shared.On("GetByID", mock.Anything, "share-abc").Return(&model.SharedTrip{
		ID:          "share-abc",
		Destination: "Lisbon",
	}, nil)

	resp, err := f.app.Test(httptest.NewRequest("GET", "/api/v1/shared/share-abc", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var shared model.SharedTrip
	decodeBody(t, resp, &shared)
	assert.Equal(t, "Lisbon", shared.Destination)
}

func TestGetSharedNotFound(t *testing.T) {
	f := newRouterFixture(t, "")
	f.shared.On("GetByID", mock.Anything, "nope").Return(nil, apperrors.ErrSharedNotFound)

	resp, err := f.app.Test(httptest.NewRequest("GET", "/api/v1/shared/nope", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestChangeFeedReturnsResumeToken(t *testing.T) {
	f := newRouterFixture(t, "user-1")
	trip := &model.Trip{ID: "trip-1", UserID: "user-1"}
	f.trips.On("GetByID", mock.Anything, "user-1", "trip-1").Return(trip, nil)
	f.log.On("ReadSince", mock.Anything, "user-1", "trip-1", "0-0").Return([]model.ChangeRecord{
		{ID: "1-0", Type: "item.created", TripID: "trip-1"},
		{ID: "2-0", Type: "item.updated", TripID: "trip-1"},
	}, nil)

	resp, err := f.app.Test(httptest.NewRequest("GET", "/api/v1/trips/trip-1/events?since=0-0", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Events      []model.ChangeRecord `json:"events"`
		ResumeToken string               `json:"resumeToken"`
	}
	decodeBody(t, resp, &body)
	assert.Len(t, body.Events, 2)
	assert.Equal(t, "2-0", body.ResumeToken)
}

func TestRerunEnrichmentReportsCount(t *testing.T) {
	f := newRouterFixture(t, "user-1")
	trip := &model.Trip{ID: "trip-1", UserID: "user-1", CoverImageURL: "https://cdn/covers/lisbon.png"}
	f.trips.On("GetByID", mock.Anything, "user-1", "trip-1").Return(trip, nil)
	f.items.On("ListByTrip", mock.Anything, "user-1", "trip-1").Return([]model.PackingItem{
		{ID: "item-1", Name: "Socks"},
		{ID: "item-2", Name: "Hat", ImageURL: "https://cdn/items/hat.png"},
	}, nil)
	f.log.On("Append", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.app.Test(httptest.NewRequest("POST", "/api/v1/trips/trip-1/enrich", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]int
	decodeBody(t, resp, &body)
	assert.Equal(t, 1, body["republished"])
}
