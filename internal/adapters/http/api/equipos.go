package api

import (
	"net/http"

	"github.com/okian/datastrike/internal/domain/roster"
	"github.com/okian/datastrike/pkg/logger"
)

// RosterHandler handles team and player listing requests.
type RosterHandler struct {
	deps   RosterDependencies
	logger logger.Logger
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(deps RosterDependencies, l logger.Logger) *RosterHandler {
	return &RosterHandler{deps: deps, logger: l}
}

// HandleTeams handles GET /api/equipos requests.
func (h *RosterHandler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	const op = "api.teams"
	teams, err := h.deps.Teams(r.Context())
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	if teams == nil {
		teams = []roster.Team{}
	}
	writeJSON(w, http.StatusOK, teams)
}

// HandlePlayers handles GET /api/equipos/{id}/jugadores requests.
func (h *RosterHandler) HandlePlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.team_players"
	teamID, err := pathID(r)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	players, err := h.deps.PlayersByTeam(r.Context(), teamID)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	if players == nil {
		players = []roster.Player{}
	}
	writeJSON(w, http.StatusOK, players)
}

func (h *RosterHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "roster request failed", logger.Error(err))
	}
	writeError(w, status, code, err)
}
