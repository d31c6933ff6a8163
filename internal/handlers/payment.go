package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"github.com/certilux/cert-app/internal/auth"
	"github.com/certilux/cert-app/internal/httpx"
	"github.com/certilux/cert-app/internal/models"
)

// PaymentHandler tracks payment state. Online payments are settled by
// the processor calling back with the mission reference; the app never
// talks to the processor itself.
type PaymentHandler struct {
	DB *gorm.DB
	// CallbackSecret is the shared secret the processor sends in
	// X-Callback-Token. Empty keeps the webhook closed.
	CallbackSecret string
}

func NewPaymentHandler(db *gorm.DB, callbackSecret string) *PaymentHandler {
	return &PaymentHandler{DB: db, CallbackSecret: callbackSecret}
}

// Status: GET /missions/{id}/payment
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var payment models.Payment
	err := h.DB.Joins("JOIN missions ON missions.id = payments.mission_id").
		Where("payments.mission_id = ? AND missions.user_id = ?", id, uid).
		First(&payment).Error
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}

// Callback: POST /payments/callback is the processor's webhook. It
// resolves the mission by reference and settles the pending payment.
// Requests authenticate with the shared X-Callback-Token header.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Callback-Token")
	if h.CallbackSecret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.CallbackSecret)) != 1 {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_callback_token", nil)
		return
	}
	var req struct {
		Reference string `json:"reference"`
		Status    string `json:"status"` // "paid" or "failed"
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.Status != string(models.PaymentStatusPaid) && req.Status != string(models.PaymentStatusFailed) {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
		return
	}
	var mission models.Mission
	if err := h.DB.Where("reference = ?", req.Reference).First(&mission).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	res := h.DB.Model(&models.Payment{}).
		Where("mission_id = ? AND status = ?", mission.ID, models.PaymentStatusPending).
		Update("status", req.Status)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	if res.RowsAffected == 0 {
		// Already settled; callbacks may repeat.
		httpx.JSON(w, http.StatusOK, map[string]any{"updated": false})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}
