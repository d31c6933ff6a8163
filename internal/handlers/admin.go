package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/certilux/cert-app/internal/auth"
	"github.com/certilux/cert-app/internal/httpx"
	"github.com/certilux/cert-app/internal/models"
)

// AdminHandler manages accounts. Only admins reach these routes; the
// router applies the role gate.
type AdminHandler struct {
	DB *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{DB: db}
}

// ListUsers: GET /admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	dbq := h.DB.Model(&models.User{})
	if role := r.URL.Query().Get("role"); role != "" {
		dbq = dbq.Where("role = ?", role)
	}
	var total int64
	dbq.Count(&total)
	var users []models.User
	if err := dbq.Order("id").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": users, "total": total, "limit": limit, "offset": offset})
}

// SetRole: PUT /admin/users/{id}/role promotes or demotes an account.
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	adminID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	role := models.Role(req.Role)
	if !role.Valid() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "invalid_role", nil)
		return
	}
	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	old := user.Role
	if err := h.DB.Model(&user).Update("role", role).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	if err := h.DB.Create(&models.AuditLog{
		UserID:     adminID,
		EntityType: "User",
		EntityID:   user.ID,
		Action:     "role_change",
		OldValue:   string(old),
		NewValue:   string(role),
	}).Error; err != nil {
		zap.L().Warn("audit write failed", zap.Error(err))
	}
	user.Role = role
	httpx.JSON(w, http.StatusOK, user)
}

// Audit: GET /admin/audit lists the trail, newest first.
func (h *AdminHandler) Audit(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	dbq := h.DB.Model(&models.AuditLog{})
	if et := r.URL.Query().Get("entity_type"); et != "" {
		dbq = dbq.Where("entity_type = ?", et)
	}
	var entries []models.AuditLog
	if err := dbq.Order("id desc").Limit(limit).Find(&entries).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": entries})
}
