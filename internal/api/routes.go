package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(30 * time.Second))

		r.Get("/legend", s.handleLegend)
		r.Get("/profiles", s.handleProfiles)
		r.Post("/profiles", s.handleCreateProfile)

		r.Route("/profiles/{id}", func(r chi.Router) {
			r.Use(s.profileMiddleware)

			r.Get("/", s.handleGetProfile)
			r.Delete("/", s.handleDeleteProfile)
			r.Post("/uses", s.handleUse)
			r.Get("/techniques", s.handleListTechniques)
			r.Post("/techniques", s.handleCreateTechnique)
			r.Get("/techniques/{tid}/history", s.handleTechniqueHistory)
			r.Post("/techniques/{tid}/archive", s.handleArchive)
			r.Post("/techniques/{tid}/reactivate", s.handleReactivate)
			r.Get("/radar", s.handleRadar)
			r.Get("/holds", s.handleHolds)
			r.Post("/maintenance", s.handleMaintenance)
		})
	})
	return r
}
