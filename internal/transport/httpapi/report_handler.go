package httpapi

import (
	"net/http"

	ncusecase "nctrack/internal/usecase/nc"
)

type ReportHandler struct {
	svc *ncusecase.Service
}

func NewReportHandler(svc *ncusecase.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func (h *ReportHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *ReportHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.svc.Analytics(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

func (h *ReportHandler) EffectivenessChecks(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.EffectivenessDue(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
