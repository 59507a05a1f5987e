package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"talentbridge/internal/model"
	"talentbridge/internal/service"
)

type UniversityHandler struct {
	universities *service.UniversityService
}

func NewUniversityHandler(universities *service.UniversityService) *UniversityHandler {
	return &UniversityHandler{universities: universities}
}

func (h *UniversityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUniversityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	university, err := h.universities.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, university)
}

func (h *UniversityHandler) List(w http.ResponseWriter, r *http.Request) {
	universities, err := h.universities.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, universities)
}

func (h *UniversityHandler) Get(w http.ResponseWriter, r *http.Request) {
	university, err := h.universities.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, university)
}
