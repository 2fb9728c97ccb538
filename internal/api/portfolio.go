package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ziadkadry99/portfolio-ai/internal/portfolio"
)

// PortfolioReader is the read API over the portfolio store.
type PortfolioReader interface {
	ListProjects(ctx context.Context, limit int) ([]portfolio.Project, error)
	ProjectMetrics(ctx context.Context, code string) (portfolio.Metrics, error)
	Summary(ctx context.Context) (portfolio.Summary, error)
}

// RegisterPortfolioRoutes mounts the portfolio read API.
func RegisterPortfolioRoutes(r chi.Router, store PortfolioReader) {
	r.Route("/api/portfolio", func(r chi.Router) {
		r.Get("/projects", handleListProjects(store))
		r.Get("/projects/{code}/metrics", handleProjectMetrics(store))
		r.Get("/summary", handleSummary(store))
	})
}

func handleListProjects(store PortfolioReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		projects, err := store.ListProjects(r.Context(), limit)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("listing projects")
			writeError(w, r, http.StatusInternalServerError, err.Error())
			return
		}
		if projects == nil {
			projects = []portfolio.Project{}
		}
		writeJSON(w, r, http.StatusOK, projects)
	}
}

func handleProjectMetrics(store PortfolioReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := store.ProjectMetrics(r.Context(), chi.URLParam(r, "code"))
		if errors.Is(err, portfolio.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "project not found")
			return
		}
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("computing project metrics")
			writeError(w, r, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, r, http.StatusOK, m)
	}
}

func handleSummary(store PortfolioReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := store.Summary(r.Context())
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("summarizing portfolio")
			writeError(w, r, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, r, http.StatusOK, s)
	}
}
