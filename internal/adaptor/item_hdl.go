package adaptor

import (
	"net/http"

	"starter-api/internal/data/entity"
	"starter-api/internal/dto/request"
	"starter-api/internal/usecase"
	"starter-api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ItemHandler struct {
	service usecase.ItemService
	log     *zap.Logger
}

func NewItemHandler(service usecase.ItemService, log *zap.Logger) *ItemHandler {
	return &ItemHandler{
		service: service,
		log:     log,
	}
}

// List handles GET /items
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	items, err := h.service.List(r.Context(), actor, request.ParsePageQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list items")
		return
	}

	utils.ResponseSuccess(w, "Items retrieved successfully", items)
}

// Create handles POST /items
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req request.ItemCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create item")
		return
	}

	utils.ResponseCreated(w, "Item created successfully", item)
}

// CreateForUser handles POST /items/admin?user_id= (admin only)
func (h *ItemHandler) CreateForUser(w http.ResponseWriter, r *http.Request) {
	ownerID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Validation failed", map[string]string{"user_id": "Must be a valid UUID"})
		return
	}

	var req request.ItemCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.service.CreateForUser(r.Context(), ownerID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create item for user")
		return
	}

	utils.ResponseCreated(w, "Item created successfully", item)
}

// Get handles GET /items/{id}
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	item, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		handleServiceError(w, h.log, err, "get item")
		return
	}

	utils.ResponseSuccess(w, "Item retrieved successfully", item)
}

// Update handles PUT /items/{id}
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req request.ItemUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.service.Update(r.Context(), actor, id, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update item")
		return
	}

	utils.ResponseSuccess(w, "Item updated successfully", item)
}

// Delete handles DELETE /items/{id}
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		handleServiceError(w, h.log, err, "delete item")
		return
	}

	utils.ResponseSuccess(w, "Item deleted successfully", nil)
}

func actorFromRequest(w http.ResponseWriter, r *http.Request) (usecase.Actor, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return usecase.Actor{}, false
	}
	role, _ := utils.GetRoleFromContext(r.Context())

	return usecase.Actor{UserID: userID, Role: entity.UserRole(role)}, true
}
