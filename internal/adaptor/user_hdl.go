package adaptor

import (
	"net/http"
	"strconv"

	"starter-api/internal/data/entity"
	"starter-api/internal/dto/request"
	"starter-api/internal/usecase"
	"starter-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserHandler struct {
	service usecase.UserService
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

// GetMe handles GET /users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get current user")
		return
	}

	utils.ResponseSuccess(w, "User retrieved successfully", user)
}

// UpdateMe handles PUT /users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UserUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.service.UpdateMe(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update current user")
		return
	}

	utils.ResponseSuccess(w, "User updated successfully", user)
}

// ArchiveMe handles DELETE /users/me/archive. Only an admin can undo it.
func (h *UserHandler) ArchiveMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.service.Archive(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "archive current user")
		return
	}

	utils.ResponseSuccess(w, "User archived successfully", user)
}

// List handles GET /users?skip=&limit=&with_archived= (admin only)
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page := request.ParsePageQuery(r)
	withArchived, _ := strconv.ParseBool(r.URL.Query().Get("with_archived"))

	users, err := h.service.List(r.Context(), page, withArchived)
	if err != nil {
		handleServiceError(w, h.log, err, "list users")
		return
	}

	utils.ResponseSuccess(w, "Users retrieved successfully", users)
}

// Create handles POST /users?role= (admin only)
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	role := entity.RoleCustomer
	if raw := r.URL.Query().Get("role"); raw != "" {
		role = entity.UserRole(raw)
		switch role {
		case entity.RoleAdmin, entity.RoleModerator, entity.RoleCustomer:
		default:
			utils.ResponseBadRequest(w, "Validation failed", map[string]string{"role": "Must be one of: admin, moderator, customer"})
			return
		}
	}

	var req request.UserCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.service.Create(r.Context(), &req, role)
	if err != nil {
		handleServiceError(w, h.log, err, "create user")
		return
	}

	utils.ResponseCreated(w, "User created successfully", user)
}

// Get handles GET /users/{id} (admin only)
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "get user")
		return
	}

	utils.ResponseSuccess(w, "User retrieved successfully", user)
}

// Update handles PUT /users/{id} (admin only)
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req request.UserAdminUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update user")
		return
	}

	utils.ResponseSuccess(w, "User updated successfully", user)
}

// Archive handles DELETE /users/{id}/archive (admin only)
func (h *UserHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	user, err := h.service.Archive(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "archive user")
		return
	}

	utils.ResponseSuccess(w, "User archived successfully", user)
}

// Unarchive handles PUT /users/{id}/unarchive (admin only)
func (h *UserHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	user, err := h.service.Unarchive(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "unarchive user")
		return
	}

	utils.ResponseSuccess(w, "User unarchived successfully", user)
}

// Delete handles DELETE /users/{id} (admin only)
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.log, err, "delete user")
		return
	}

	utils.ResponseSuccess(w, "User deleted successfully", nil)
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}
