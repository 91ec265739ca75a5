package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/HaelyDee/tax-help/internal/export"
	"github.com/HaelyDee/tax-help/internal/report"
	"github.com/HaelyDee/tax-help/internal/tax"
	"github.com/HaelyDee/tax-help/internal/valuation"
	"github.com/HaelyDee/tax-help/pkg/logger"
)

// ValuationHandler handles valuation API endpoints
// ⭐ SSOT: 평가 API 핸들러는 이 구조체에서만
type ValuationHandler struct {
	service *report.Service
	logger  *logger.Logger
}

// NewValuationHandler creates a new valuation handler
func NewValuationHandler(service *report.Service, log *logger.Logger) *ValuationHandler {
	return &ValuationHandler{
		service: service,
		logger:  log,
	}
}

// valuationRequest is the wire shape of a report request. Dates travel
// as ISO calendar strings.
type valuationRequest struct {
	Assets   []report.Asset `json:"assets"`
	GiftDate string         `json:"gift_date"`
	Relation string         `json:"relation"`
	Policy   string         `json:"policy,omitempty"`
}

func (r valuationRequest) toDomain() (report.Request, error) {
	giftDate, err := time.ParseInLocation(valuation.DateFormat, r.GiftDate, time.UTC)
	if err != nil {
		return report.Request{}, fmt.Errorf("invalid gift_date %q (want YYYY-MM-DD)", r.GiftDate)
	}
	return report.Request{
		Assets:   r.Assets,
		GiftDate: giftDate,
		Relation: r.Relation,
		Policy:   valuation.Policy(r.Policy),
	}, nil
}

// GetRelations returns the deduction table
// GET /api/relations
func (h *ValuationHandler) GetRelations(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"relations": h.service.Relations(),
	})
}

// Evaluate generates a valuation report
// POST /api/valuation
func (h *ValuationHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.generate(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// Export generates a valuation report and streams it as an xlsx workbook
// POST /api/valuation/export
func (h *ValuationHandler) Export(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.generate(w, r)
	if !ok {
		return
	}

	data, err := export.Workbook(rep)
	if err != nil {
		h.logger.WithError(err).Error("Failed to render workbook")
		respondError(w, http.StatusInternalServerError, "Failed to render workbook")
		return
	}

	filename := fmt.Sprintf("gift_valuation_%s.xlsx", rep.GiftDate.Format(valuation.DateFormat))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(data)
}

// generate parses the request body and runs the report service, writing
// the error response itself when anything fails.
func (h *ValuationHandler) generate(w http.ResponseWriter, r *http.Request) (*report.Report, bool) {
	var body valuationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}

	req, err := body.toDomain()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	rep, err := h.service.Generate(r.Context(), req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate report")
		respondError(w, statusForError(err), err.Error())
		return nil, false
	}

	return rep, true
}

// statusForError maps domain errors onto HTTP statuses: feed outages are
// upstream failures, everything else the client can fix.
func statusForError(err error) int {
	switch {
	case errors.Is(err, valuation.ErrDataUnavailable),
		errors.Is(err, valuation.ErrInsufficientData):
		return http.StatusBadGateway
	case errors.Is(err, tax.ErrUnknownRelation):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
