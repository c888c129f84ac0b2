package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/afterclass/lessons-api/internal/domain"
	"github.com/afterclass/lessons-api/internal/redisx"
)

type LessonsHandler struct {
	Repo  domain.LessonRepository
	Cache Cache
}

func (h *LessonsHandler) Register(r *chi.Mux) {
	r.Get("/lessons", h.listLessons)
	r.Get("/lessons/{id}", h.getLesson)
}

func (h *LessonsHandler) listLessons(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Cache != nil {
		if s, err := h.Cache.Get(ctx, redisx.KeyLessonList); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	lessons, err := h.Repo.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	if lessons == nil {
		lessons = []domain.Lesson{}
	}
	body, _ := json.Marshal(lessons)
	if h.Cache != nil {
		_ = h.Cache.Set(ctx, redisx.KeyLessonList, string(body), redisx.TTLLessonList)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *LessonsHandler) getLesson(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	lesson, err := h.Repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lesson)
}
