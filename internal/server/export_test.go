package server

import "github.com/go-chi/chi/v5"

// Routes exposes the router to the external test package.
func (s *Server) Routes() chi.Routes { return s.router }
