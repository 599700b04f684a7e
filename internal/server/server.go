package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"automarket/pkg/logx"
	"automarket/pkg/middlewarex"
)

const logFieldMaxLen = 4096

// Server groups the HTTP handlers of the control API.
type Server struct {
	RunServer
}

func NewServer(
	runServer RunServer,
) Server {
	return Server{
		RunServer: runServer,
	}
}

// Handler builds the router with the standard middleware chain.
func (s Server) Handler(base *slog.Logger, masker logx.SensitiveDataMaskerInterface) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middlewarex.TraceID,
		middlewarex.Logger(base),
		middlewarex.Recovery,
		middlewarex.RequestLogging(masker, logFieldMaxLen),
		middlewarex.ResponseLogging(masker, logFieldMaxLen),
	)

	s.RegisterRoutes(r)

	return r
}
