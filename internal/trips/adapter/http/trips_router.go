// Package http exposes the trips module over Fiber: the REST API plus the
// websocket listen endpoint.
package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	apperrors "tripack/internal/shared/errors"
	"tripack/internal/shared/logger"
	"tripack/internal/shared/utils"
	"tripack/internal/trips/domain/model"
	"tripack/internal/trips/usecase"
)

// TripsHTTPHandler handles the trips REST endpoints.
type TripsHTTPHandler struct {
	trips *usecase.TripUsecase
	share *usecase.ShareUsecase
	log   logger.Logger
}

// NewTripsHTTPHandler creates the trips REST handler.
func NewTripsHTTPHandler(trips *usecase.TripUsecase, share *usecase.ShareUsecase, log logger.Logger) *TripsHTTPHandler {
	return &TripsHTTPHandler{
		trips: trips,
		share: share,
		log:   log.WithComponent("trips_http"),
	}
}

// RegisterRoutes mounts the trips API. The protect middleware guards every
// route except the public shared-trip read.
func (h *TripsHTTPHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	router.Get("/shared/:sharedId", h.GetShared)

	trips := router.Group("/trips", protect)
	trips.Post("/", h.CreateTrip)
	trips.Get("/", h.ListTrips)
	trips.Get("/:tripId", h.GetTrip)
	trips.Post("/:tripId/share", h.ShareTrip)
	trips.Post("/:tripId/enrich", h.RerunEnrichment)
	trips.Get("/:tripId/events", h.ChangeFeed)
	trips.Get("/:tripId/items", h.ListItems)
	trips.Post("/:tripId/items", h.AddItem)
	trips.Patch("/:tripId/items/:itemId", h.UpdateItem)
	trips.Delete("/:tripId/items/:itemId", h.DeleteItem)
}

type createTripRequest struct {
	Destination string `json:"destination"`
	Duration    int    `json:"duration"`
}

type addItemRequest struct {
	Name string `json:"name"`
}

type updateItemRequest struct {
	Packed   *bool `json:"packed"`
	Quantity *int  `json:"quantity"`
}

// CreateTrip handles POST /trips
func (h *TripsHTTPHandler) CreateTrip(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return h.respondError(c, apperrors.NewUnauthenticatedError("Authentication required"))
	}

	var req createTripRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, apperrors.NewValidationError("Invalid request body"))
	}

	trip, err := h.trips.CreateTrip(c.UserContext(), userID, req.Destination, req.Duration)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(trip)
}

// ListTrips handles GET /trips
func (h *TripsHTTPHandler) ListTrips(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return h.respondError(c, apperrors.NewUnauthenticatedError("Authentication required"))
	}

	trips, err := h.trips.ListTrips(c.UserContext(), userID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"trips": trips})
}

// GetTrip handles GET /trips/:tripId
func (h *TripsHTTPHandler) GetTrip(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return h.respondError(c, apperrors.NewUnauthenticatedError("Authentication required"))
	}

	trip, err := h.trips.GetTrip(c.UserContext(), userID, c.Params("tripId"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(trip)
}

// ListItems handles GET /trips/:tripId/items
func (h *TripsHTTPHandler) ListItems(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return h.respondError(c, apperrors.NewUnauthenticatedError("Authentication required"))
	}

	items, err := h.trips.ListItems(c.UserContext(), userID, c.Params("tripId"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"items": items})
}

// AddItem handles POST /trips/:tripId/items
func (h *TripsHTTPHandler) AddItem(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return h.respondError(c, apperrors.NewUnauthenticatedError("Authentication required"))
	}

	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, apperrors.NewValidationError("Invalid request body"))
	}

	item, err := h.trips.AddItem(c.UserContext(), userID, c.Params("tripId"), req.Name)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateItem handles PATCH /trips/:tripId/items/:itemId. Packed and
// quantity can be changed independently or together.
func (h *TripsHTTPHandler) UpdateItem(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return h.respondError(c, apperrors.NewUnauthenticatedError("Authentication required"))
	}

	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, apperrors.NewValidationError("Invalid request body"))
	}
	if req.Packed == nil && req.Quantity == nil {
		return h.respondError(c, apperrors.NewValidationError("Nothing to update: provide packed and/or quantity"))
	}

	tripID := c.Params("tripId")
	itemID := c.Params("itemId")

	var item *model.PackingItem
	if req.Quantity != nil {
		item, err = h.trips.SetItemQuantity(c.UserContext(), userID, tripID, itemID, *req.Quantity)
		if err != nil {
			return h.respondError(c, err)
		}
	}
	if req.Packed != nil {
		item, err = h.trips.SetItemPacked(c.UserContext(), userID, tripID, itemID, *req.Packed)
		if err != nil {
			return h.respondError(c, err)
		}
	}
	return c.JSON(item)
}

// DeleteItem handles DELETE /trips/:tripId/items/:itemId
func (h *TripsHTTPHandler) DeleteItem(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return h.respondError(c, apperrors.NewUnauthenticatedError("Authentication required"))
	}

	if err := h.trips.DeleteItem(c.UserContext(), userID, c.Params("tripId"), c.Params("itemId")); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ShareTrip handles POST /trips/:tripId/share
func (h *TripsHTTPHandler) ShareTrip(c *fiber.Ctx) error {
	userID, _ := utils.GetUserIDFromContext(c.UserContext())

	sharedID, err := h.share.ShareTrip(c.UserContext(), userID, c.Params("tripId"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"sharedId": sharedID})
}

// GetShared handles GET /shared/:sharedId. This route is public.
func (h *TripsHTTPHandler) GetShared(c *fiber.Ctx) error {
	shared, err := h.share.GetShared(c.UserContext(), c.Params("sharedId"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(shared)
}

// RerunEnrichment handles POST /trips/:tripId/enrich
func (h *TripsHTTPHandler) RerunEnrichment(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return h.respondError(c, apperrors.NewUnauthenticatedError("Authentication required"))
	}

	republished, err := h.trips.RerunEnrichment(c.UserContext(), userID, c.Params("tripId"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"republished": republished})
}

// ChangeFeed handles GET /trips/:tripId/events. The optional "since" query
// parameter is the resume token of the last record the client saw.
func (h *TripsHTTPHandler) ChangeFeed(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return h.respondError(c, apperrors.NewUnauthenticatedError("Authentication required"))
	}

	records, err := h.trips.ChangeFeed(c.UserContext(), userID, c.Params("tripId"), c.Query("since"))
	if err != nil {
		return h.respondError(c, err)
	}

	resumeToken := c.Query("since")
	if len(records) > 0 {
		resumeToken = records[len(records)-1].ID
	}
	return c.JSON(fiber.Map{"events": records, "resumeToken": resumeToken})
}

// respondError maps domain errors onto the JSON error envelope.
func (h *TripsHTTPHandler) respondError(c *fiber.Ctx, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.HTTPCode).JSON(fiber.Map{
			"error": fiber.Map{"type": string(appErr.Type), "message": appErr.Message},
		})
	}

	h.log.Errorf("Unhandled error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{"type": "INTERNAL", "message": "Internal server error"},
	})
}
