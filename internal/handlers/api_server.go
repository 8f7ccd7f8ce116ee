// internal/handlers/api_server.go
package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/letsqueue/letsqueue/internal/lobby"
)

// Server bundles the lifecycle service for the HTTP handlers.
type Server struct {
	Svc    *lobby.Service
	Logger *logrus.Logger
}

// NewServer builds a handler Server around the lifecycle service.
func NewServer(svc *lobby.Service, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	return &Server{Svc: svc, Logger: logger}
}
