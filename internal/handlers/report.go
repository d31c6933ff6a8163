package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/certilux/cert-app/internal/auth"
	"github.com/certilux/cert-app/internal/httpx"
	"github.com/certilux/cert-app/internal/i18n"
	"github.com/certilux/cert-app/internal/monitoring"
	"github.com/certilux/cert-app/internal/report"
	"github.com/certilux/cert-app/internal/score"
	"github.com/certilux/cert-app/internal/services"
)

// ReportHandler reads and writes the certification report one section
// at a time. Saves merge: a section write never touches fields of
// other sections.
type ReportHandler struct {
	Svc *services.MissionService
}

func NewReportHandler(svc *services.MissionService) *ReportHandler {
	return &ReportHandler{Svc: svc}
}

// Get: GET /missions/{id}/report returns the stored fields as display
// strings, the section layout, and the score rollup.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	fields, err := h.Svc.LoadReport(uid, id)
	if errors.Is(err, services.ErrNotFound) {
		missionError(w, r, err)
		return
	}
	if err != nil {
		lang := i18n.LangFrom(r.Context())
		httpx.JSONErrorMsg(w, http.StatusInternalServerError, "report_load_failed", i18n.T(lang, "report_load_failed"), nil)
		return
	}
	display := fields.Display()

	subScores := make([]string, len(report.ScoreFields))
	for i, sf := range report.ScoreFields {
		subScores[i] = display[sf.Name]
	}

	sections := make([]map[string]any, len(report.Sections))
	for i, sec := range report.Sections {
		names := make([]string, 0)
		for _, f := range report.FieldsOf(sec) {
			names = append(names, f.Name)
		}
		sections[i] = map[string]any{"name": sec, "fields": names}
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"fields":       display,
		"sections":     sections,
		"score_rollup": score.Rollup(subScores...),
	})
}

// SaveSection: PUT /missions/{id}/report/{section} merges one
// section's fields. Unknown or foreign field names are dropped, empty
// values are ignored.
func (h *ReportHandler) SaveSection(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	section, ok := report.SectionByName(r.PathValue("section"))
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "unknown_section", nil)
		return
	}
	var form map[string]string
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	rep, err := h.Svc.SaveReportSection(r.Context(), uid, id, section, form)
	if err != nil {
		missionError(w, r, err)
		return
	}
	monitoring.ReportSections.Inc()
	httpx.JSON(w, http.StatusOK, map[string]any{
		"saved":  section,
		"fields": rep.Fields.Display(),
	})
}
