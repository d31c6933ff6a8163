package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/certilux/cert-app/internal/auth"
	"github.com/certilux/cert-app/internal/httpx"
	"github.com/certilux/cert-app/internal/i18n"
	"github.com/certilux/cert-app/internal/models"
	"github.com/certilux/cert-app/internal/monitoring"
	"github.com/certilux/cert-app/internal/pdf"
	"github.com/certilux/cert-app/internal/services"
)

type MissionHandler struct {
	DB  *gorm.DB
	Svc *services.MissionService
}

func NewMissionHandler(db *gorm.DB, svc *services.MissionService) *MissionHandler {
	return &MissionHandler{DB: db, Svc: svc}
}

func pathID(r *http.Request) (uint, bool) {
	id64, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

func missionError(w http.ResponseWriter, r *http.Request, err error) {
	lang := i18n.LangFrom(r.Context())
	switch {
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONErrorMsg(w, http.StatusNotFound, "not_found", i18n.T(lang, "not_found"), nil)
	case errors.Is(err, services.ErrInvalidTransition):
		httpx.JSONErrorMsg(w, http.StatusConflict, "invalid_transition", i18n.T(lang, "invalid_transition"), nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// List: GET /missions with optional status filter and pagination.
func (h *MissionHandler) List(w http.ResponseWriter, r *http.Request) {
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
	if status := r.URL.Query().Get("status"); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	var total int64
	dbq.Model(&models.Mission{}).Count(&total)
	var missions []models.Mission
	if err := dbq.Preload("Client").Order("id desc").Limit(limit).Offset(offset).Find(&missions).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_missions", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": missions, "total": total, "limit": limit, "offset": offset})
}

// Get: GET /missions/{id}
func (h *MissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	m, err := h.Svc.Get(uid, id)
	if err != nil {
		missionError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *MissionHandler) transition(w http.ResponseWriter, r *http.Request, next models.MissionStatus) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	m, warning, err := h.Svc.Transition(r.Context(), uid, id, next)
	if err != nil {
		missionError(w, r, err)
		return
	}
	payload := map[string]any{"mission": m}
	if warning != "" {
		lang := i18n.LangFrom(r.Context())
		payload["warning"] = warning
		payload["warning_message"] = i18n.T(lang, "no_report")
	}
	httpx.JSON(w, http.StatusOK, payload)
}

// Start: POST /missions/{id}/start
func (h *MissionHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.MissionStatusInProgress)
}

// Complete: POST /missions/{id}/complete. Succeeds without a report
// but flags the gap in the response.
func (h *MissionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.MissionStatusCompleted)
}

// Cancel: POST /missions/{id}/cancel
func (h *MissionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.MissionStatusCancelled)
}

// ExportPDF: GET /missions/{id}/pdf streams the certificate. A mission
// without a report still yields a document with a notice.
func (h *MissionHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	m, err := h.Svc.Get(uid, id)
	if err != nil {
		missionError(w, r, err)
		return
	}
	fields, err := h.Svc.LoadReport(uid, id)
	if err != nil {
		missionError(w, r, err)
		return
	}
	out, err := pdf.Render(pdf.Certificate{Mission: m, Client: m.Client, Fields: fields})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_failed", nil)
		return
	}
	monitoring.PDFExports.Inc()

	name := ""
	if m.Client != nil {
		name = m.Client.FullName()
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+pdf.Filename(name)+`"`)
	_, _ = w.Write(out)
}
