package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/certilux/cert-app/internal/auth"
	"github.com/certilux/cert-app/internal/httpx"
	"github.com/certilux/cert-app/internal/i18n"
	"github.com/certilux/cert-app/internal/models"
	"github.com/certilux/cert-app/internal/monitoring"
	"github.com/certilux/cert-app/internal/services"
	"github.com/certilux/cert-app/internal/wizard"
)

// IntakeHandler drives the three-step walk-in registration wizard.
// State lives in the wizard store until the final submit persists the
// whole aggregate through the mission service.
type IntakeHandler struct {
	Store      *wizard.Store
	Svc        *services.MissionService
	PaymentURL string
}

func NewIntakeHandler(store *wizard.Store, svc *services.MissionService, paymentURL string) *IntakeHandler {
	return &IntakeHandler{Store: store, Svc: svc, PaymentURL: paymentURL}
}

func (h *IntakeHandler) session(w http.ResponseWriter, r *http.Request) (*wizard.Session, bool) {
	uid, _ := auth.UserIDFromContext(r.Context())
	s, err := h.Store.Get(r.PathValue("token"), uid)
	if err != nil {
		lang := i18n.LangFrom(r.Context())
		httpx.JSONErrorMsg(w, http.StatusNotFound, "not_found", i18n.T(lang, "not_found"), nil)
		return nil, false
	}
	return s, true
}

func wizardError(w http.ResponseWriter, r *http.Request, err error) {
	lang := i18n.LangFrom(r.Context())
	switch {
	case errors.Is(err, wizard.ErrBusy):
		httpx.JSONErrorMsg(w, http.StatusConflict, "submission_in_flight", i18n.T(lang, "submission_in_flight"), nil)
	case errors.Is(err, wizard.ErrWrongStep):
		httpx.JSONError(w, http.StatusConflict, "wrong_step", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

func snapshotPayload(s *wizard.Session) map[string]any {
	step, info, tier, method := s.Snapshot()
	return map[string]any{
		"token":          s.Token,
		"step":           step,
		"client":         info,
		"tier_code":      tier,
		"payment_method": method,
	}
}

// Open starts a fresh wizard session.
// POST /intake
func (h *IntakeHandler) Open(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	s := h.Store.Open(uid)
	httpx.JSON(w, http.StatusCreated, snapshotPayload(s))
}

// State returns the current step and entered data.
// GET /intake/{token}
func (h *IntakeHandler) State(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, snapshotPayload(s))
}

// Info submits the client info step.
// POST /intake/{token}/info
func (h *IntakeHandler) Info(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var info wizard.ClientInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	violations, err := s.SubmitInfo(info)
	if err != nil {
		wizardError(w, r, err)
		return
	}
	if violations != nil {
		failValidation(w, r, violations)
		return
	}
	httpx.JSON(w, http.StatusOK, snapshotPayload(s))
}

// Service submits the tier selection step.
// POST /intake/{token}/service
func (h *IntakeHandler) Service(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		TierCode string `json:"tier_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	catalog, err := h.Svc.TierCatalog()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	violations, err := s.SelectTier(req.TierCode, catalog)
	if err != nil {
		wizardError(w, r, err)
		return
	}
	if violations != nil {
		failValidation(w, r, violations)
		return
	}
	httpx.JSON(w, http.StatusOK, snapshotPayload(s))
}

// Back steps the wizard backwards.
// POST /intake/{token}/back
func (h *IntakeHandler) Back(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Back(); err != nil {
		wizardError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snapshotPayload(s))
}

// Submit takes the payment method and persists the aggregate. For the
// online method the response carries the processor redirect URL; for
// in-shop methods the mission is created settled.
// POST /intake/{token}/submit
func (h *IntakeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		PaymentMethod string `json:"payment_method"`
		Notes         string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	allowed := []string{string(models.PaymentCash), string(models.PaymentCardInShop), string(models.PaymentOnline)}
	violations, err := s.BeginSubmit(req.PaymentMethod, allowed)
	if err != nil {
		wizardError(w, r, err)
		return
	}
	if violations != nil {
		failValidation(w, r, violations)
		return
	}

	_, info, tier, method := s.Snapshot()
	res, err := h.Svc.CreateIntake(r.Context(), services.IntakeInput{
		UserID:        uid,
		Info:          info,
		TierCode:      tier,
		PaymentMethod: models.PaymentMethod(method),
		Notes:         req.Notes,
	})
	if err != nil {
		// Entered data survives a failed submit so the partner can
		// retry without retyping.
		s.EndSubmit(false)
		if errors.Is(err, services.ErrUnknownTier) {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "unknown_tier", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	s.EndSubmit(true)
	h.Store.Discard(s.Token, uid)
	monitoring.MissionsCreated.Inc()

	payload := map[string]any{
		"mission": res.Mission,
		"client":  res.Client,
	}
	if res.PaymentPending {
		payload["payment_redirect"] = h.PaymentURL + "?reference=" + res.Mission.Reference
	}
	httpx.JSON(w, http.StatusCreated, payload)
}

// Cancel discards the session and everything entered in it.
// DELETE /intake/{token}
func (h *IntakeHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	h.Store.Discard(r.PathValue("token"), uid)
	w.WriteHeader(http.StatusNoContent)
}

// Tiers lists the active service tiers for the selection step.
// GET /tiers
func (h *IntakeHandler) Tiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.Svc.Tiers()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": tiers})
}
