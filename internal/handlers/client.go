package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/certilux/cert-app/internal/auth"
	"github.com/certilux/cert-app/internal/httpx"
	"github.com/certilux/cert-app/internal/i18n"
	"github.com/certilux/cert-app/internal/models"
	"github.com/certilux/cert-app/internal/validation"
)

// ClientHandler exposes the partner's client records. Records are
// created by the intake wizard; here they are listed, read and
// corrected.
type ClientHandler struct {
	DB *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{DB: db}
}

// List: GET /clients with optional name search.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

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

	dbq := h.DB.Where("user_id = ?", uid)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbq = dbq.Where("lower(nom) LIKE ? OR lower(prenom) LIKE ? OR lower(email) LIKE ?", like, like, like)
	}
	var total int64
	dbq.Model(&models.Client{}).Count(&total)
	var clients []models.Client
	if err := dbq.Order("id desc").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_clients", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": total, "limit": limit, "offset": offset})
}

func (h *ClientHandler) find(w http.ResponseWriter, r *http.Request) (*models.Client, bool) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	var client models.Client
	if err := h.DB.Where("id = ? AND user_id = ?", id, uid).First(&client).Error; err != nil {
		lang := i18n.LangFrom(r.Context())
		httpx.JSONErrorMsg(w, http.StatusNotFound, "not_found", i18n.T(lang, "not_found"), nil)
		return nil, false
	}
	return &client, true
}

// Get: GET /clients/{id}, with the client's missions.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	client, ok := h.find(w, r)
	if !ok {
		return
	}
	var missions []models.Mission
	h.DB.Where("client_id = ?", client.ID).Order("id desc").Find(&missions)
	httpx.JSON(w, http.StatusOK, map[string]any{"client": client, "missions": missions})
}

// Update: PUT /clients/{id} corrects contact data.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	client, ok := h.find(w, r)
	if !ok {
		return
	}
	var req struct {
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		Email      string `json:"email"`
		Phone      string `json:"phone"`
		Address    string `json:"address"`
		PostalCode string `json:"postal_code"`
		City       string `json:"city"`
		Country    string `json:"country"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("first_name", req.FirstName, v)
	validation.Required("last_name", req.LastName, v)
	validation.Required("email", req.Email, v)
	validation.Email("email", req.Email, v)
	validation.Required("phone", req.Phone, v)
	if !v.Empty() {
		failValidation(w, r, v)
		return
	}
	client.Prenom = strings.TrimSpace(req.FirstName)
	client.Nom = strings.TrimSpace(req.LastName)
	client.Email = strings.TrimSpace(req.Email)
	client.Phone = strings.TrimSpace(req.Phone)
	client.Address = strings.TrimSpace(req.Address)
	client.PostalCode = strings.TrimSpace(req.PostalCode)
	client.City = strings.TrimSpace(req.City)
	client.Country = strings.TrimSpace(req.Country)
	if err := h.DB.Save(client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}
