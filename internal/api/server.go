// Package api exposes sheets and the rules engine over a JSON HTTP API.
package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dvh/internal/game/ruleset"
	"github.com/cory-johannsen/dvh/internal/game/session"
	"github.com/cory-johannsen/dvh/internal/observability"
)

// Server routes API requests to the session manager.
type Server struct {
	sessions *session.Manager
	catalog  *ruleset.Catalog
	logger   *zap.Logger
	mux      *http.ServeMux
}

// NewServer builds the route table.
//
// Precondition: every argument must be non-nil.
func NewServer(sessions *session.Manager, catalog *ruleset.Catalog, logger *zap.Logger) *Server {
	s := &Server{sessions: sessions, catalog: catalog, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/catalog", s.handleCatalog)

	s.mux.HandleFunc("GET /api/sheets", s.handleListSheets)
	s.mux.HandleFunc("POST /api/sheets", s.handleCreateSheet)
	s.mux.HandleFunc("GET /api/sheets/{id}", s.handleGetSheet)
	s.mux.HandleFunc("PUT /api/sheets/{id}", s.handleUpdateSheet)
	s.mux.HandleFunc("DELETE /api/sheets/{id}", s.handleDeleteSheet)
	s.mux.HandleFunc("GET /api/sheets/{id}/stats", s.handleStats)

	s.mux.HandleFunc("POST /api/sheets/{id}/attributes/{attr}", s.handleAllocate)
	s.mux.HandleFunc("POST /api/sheets/{id}/skills/{skill}/personal", s.handlePersonal)
	s.mux.HandleFunc("POST /api/sheets/{id}/selections/{kind}", s.handleSelect)
	s.mux.HandleFunc("POST /api/sheets/{id}/choices/class", s.handleClassChoice)
	s.mux.HandleFunc("POST /api/sheets/{id}/choices/origin", s.handleOriginChoices)
	s.mux.HandleFunc("POST /api/sheets/{id}/pools/{pool}", s.handlePool)

	s.mux.HandleFunc("POST /api/sheets/{id}/rolls/attribute/{attr}", s.handleRollAttribute)
	s.mux.HandleFunc("POST /api/sheets/{id}/rolls/skill/{skill}", s.handleRollSkill)
	s.mux.HandleFunc("POST /api/sheets/{id}/dice/{skill}/{face}", s.handleDie)
	s.mux.HandleFunc("GET /api/sheets/{id}/rolls", s.handleHistory)

	s.mux.HandleFunc("POST /api/sheets/{id}/items", s.handleAddItem)
	s.mux.HandleFunc("DELETE /api/sheets/{id}/items/{instance}", s.handleRemoveItem)
	s.mux.HandleFunc("POST /api/sheets/{id}/items/{instance}/damage", s.handleWeaponDamage)
}

// ServeHTTP implements http.Handler with access logging.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	observability.AccessLog(s.logger, s.mux).ServeHTTP(w, r)
}
