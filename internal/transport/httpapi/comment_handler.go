package httpapi

import (
	"encoding/json"
	"net/http"

	ncusecase "nctrack/internal/usecase/nc"
)

type CommentHandler struct {
	svc *ncusecase.Service
}

func NewCommentHandler(svc *ncusecase.Service) *CommentHandler {
	return &CommentHandler{svc: svc}
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}

	comments, err := h.svc.ListComments(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}

	var input ncusecase.AddCommentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	comment, err := h.svc.AddComment(r.Context(), id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) Count(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}

	count, err := h.svc.CountComments(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}
