package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"automarket/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Route("/runs", func(r chi.Router) {
				r.Post("/", handler(s.postV1Runs))
				r.Post("/pause", handler(s.postV1RunsPause))
				r.Post("/resume", handler(s.postV1RunsResume))
				r.Post("/stop", handler(s.postV1RunsStop))
				r.Get("/status", handler(s.getV1RunsStatus))
				r.Get("/last", handler(s.getV1RunsLast))
				r.Get("/{id}", handler(s.getV1Run))
			})
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
