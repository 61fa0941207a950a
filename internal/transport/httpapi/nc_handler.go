package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"nctrack/internal/ports"
	ncusecase "nctrack/internal/usecase/nc"
)

type NCHandler struct {
	svc *ncusecase.Service
}

func NewNCHandler(svc *ncusecase.Service) *NCHandler {
	return &NCHandler{svc: svc}
}

func recordID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *NCHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ports.NCFilter{
		Status:     q.Get("status"),
		Severity:   q.Get("severity"),
		Category:   q.Get("category"),
		Department: q.Get("department"),
		NCSource:   q.Get("nc_source"),
		Search:     q.Get("search"),
	}

	items, err := h.svc.ListNCs(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *NCHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}

	record, err := h.svc.GetNC(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *NCHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input ncusecase.CreateNCInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	record, err := h.svc.CreateNC(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *NCHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}

	var input ncusecase.UpdateNCInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	record, err := h.svc.UpdateNC(r.Context(), id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *NCHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}

	deleted, err := h.svc.DeleteNC(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Non-conformance not found"})
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Non-conformance deleted successfully"})
}
