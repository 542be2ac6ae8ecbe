package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/matthewkirk009-hue/baseball-sim/internal/analytics"
	"github.com/matthewkirk009-hue/baseball-sim/internal/dal"
	"github.com/matthewkirk009-hue/baseball-sim/internal/logger"
	"github.com/matthewkirk009-hue/baseball-sim/internal/models"
	"github.com/matthewkirk009-hue/baseball-sim/internal/pubsub"
	"github.com/matthewkirk009-hue/baseball-sim/internal/sim"
)

// APIHandlers contains all API handler methods
type APIHandlers struct {
	dal       dal.LeagueDAL
	pubsub    *pubsub.PubSub
	analytics analytics.Recorder // optional, nil when analytics is disabled

	mu      sync.Mutex
	games   map[string]*activeGame
	seasons map[string]*activeSeason
}

// activeGame serializes access to one game: sim.Game is a plain value
// object with no locking of its own, so every advance or snapshot on a
// registered game happens under mu.
type activeGame struct {
	mu       sync.Mutex
	game     *sim.Game
	seed     int64
	finished bool
}

type activeSeason struct {
	season *sim.Season
	rng    *rand.Rand
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(d dal.LeagueDAL, ps *pubsub.PubSub, rec analytics.Recorder) *APIHandlers {
	return &APIHandlers{
		dal:       d,
		pubsub:    ps,
		analytics: rec,
		games:     map[string]*activeGame{},
		seasons:   map[string]*activeSeason{},
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpStatus(err error) int {
	if errors.Is(err, dal.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// toPayload flattens any JSON-marshalable value into an event payload.
func toPayload(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	payload := map[string]interface{}{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}
	return payload
}

// GetLeagueState returns the full league snapshot
func (h *APIHandlers) GetLeagueState(w http.ResponseWriter, r *http.Request) {
	logger.Debug("Getting league state")
	state, err := h.dal.GetState()
	if err != nil {
		logger.Error("Failed to get league state", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, state)
}

// ResetLeague restores the default league
func (h *APIHandlers) ResetLeague(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logger.Info("Resetting league")
	if err := h.dal.Reset(); err != nil {
		logger.Error("Failed to reset league", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	h.games = map[string]*activeGame{}
	h.seasons = map[string]*activeSeason{}
	h.mu.Unlock()

	h.pubsub.Publish(pubsub.Event{Type: pubsub.EventLeagueUpdated})

	writeJSON(w, map[string]bool{"ok": true})
}

// ListTeams returns all teams
func (h *APIHandlers) ListTeams(w http.ResponseWriter, r *http.Request) {
	state, err := h.dal.GetState()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, state.Teams)
}

// AddTeam creates a new team
func (h *APIHandlers) AddTeam(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Name    string `json:"name"`
		City    string `json:"city"`
		Stadium string `json:"stadium"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	team, err := h.dal.AddTeam(req.Name, req.City, req.Stadium)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.pubsub.Publish(pubsub.Event{
		Type:    pubsub.EventLeagueUpdated,
		Payload: map[string]interface{}{"teamId": team.ID, "action": "add"},
	})

	writeJSON(w, team)
}

// UpdateTeam updates team metadata
func (h *APIHandlers) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var team models.Team
	if err := json.NewDecoder(r.Body).Decode(&team); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.dal.UpdateTeam(&team)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	h.pubsub.Publish(pubsub.Event{
		Type:    pubsub.EventLeagueUpdated,
		Payload: map[string]interface{}{"teamId": result.ID, "action": "update"},
	})

	writeJSON(w, result)
}

// DeleteTeam removes a team and its roster
func (h *APIHandlers) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID string `json:"id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.Info("Deleting team", "team_id", req.ID)
	if err := h.dal.DeleteTeam(req.ID); err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	h.pubsub.Publish(pubsub.Event{
		Type:    pubsub.EventLeagueUpdated,
		Payload: map[string]interface{}{"teamId": req.ID, "action": "delete"},
	})

	writeJSON(w, map[string]bool{"ok": true})
}

// AddPlayer adds a player to a team roster
func (h *APIHandlers) AddPlayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		TeamID string        `json:"teamId"`
		Player models.Player `json:"player"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.dal.AddPlayer(req.TeamID, &req.Player)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	h.pubsub.Publish(pubsub.Event{
		Type:    pubsub.EventLeagueUpdated,
		Payload: map[string]interface{}{"teamId": req.TeamID, "playerId": result.ID, "action": "addPlayer"},
	})

	writeJSON(w, result)
}

// UpdatePlayer replaces a roster player
func (h *APIHandlers) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		TeamID string        `json:"teamId"`
		Player models.Player `json:"player"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.dal.UpdatePlayer(req.TeamID, &req.Player)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	h.pubsub.Publish(pubsub.Event{
		Type:    pubsub.EventLeagueUpdated,
		Payload: map[string]interface{}{"teamId": req.TeamID, "playerId": result.ID, "action": "updatePlayer"},
	})

	writeJSON(w, result)
}

// DeletePlayer removes a player from a roster
func (h *APIHandlers) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		TeamID   string `json:"teamId"`
		PlayerID string `json:"playerId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.dal.DeletePlayer(req.TeamID, req.PlayerID); err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	h.pubsub.Publish(pubsub.Event{
		Type:    pubsub.EventLeagueUpdated,
		Payload: map[string]interface{}{"teamId": req.TeamID, "playerId": req.PlayerID, "action": "deletePlayer"},
	})

	writeJSON(w, map[string]bool{"ok": true})
}

// SetPlayerAttributes updates a player's six tool ratings
func (h *APIHandlers) SetPlayerAttributes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		TeamID   string            `json:"teamId"`
		PlayerID string            `json:"playerId"`
		Attrs    models.Attributes `json:"attrs"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	player, err := h.dal.SetPlayerAttributes(req.TeamID, req.PlayerID, req.Attrs)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	h.pubsub.Publish(pubsub.Event{
		Type:    pubsub.EventLeagueUpdated,
		Payload: map[string]interface{}{"teamId": req.TeamID, "playerId": player.ID, "action": "setAttributes"},
	})

	writeJSON(w, player)
}

// GetPlayerOverall returns a player's derived ratings
func (h *APIHandlers) GetPlayerOverall(w http.ResponseWriter, r *http.Request) {
	teamID := r.URL.Query().Get("teamId")
	playerID := r.URL.Query().Get("playerId")
	if teamID == "" || playerID == "" {
		http.Error(w, "Missing teamId or playerId parameter", http.StatusBadRequest)
		return
	}

	state, err := h.dal.GetState()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	team := state.FindTeam(teamID)
	if team == nil {
		http.Error(w, "Team not found", http.StatusNotFound)
		return
	}

	for i := range team.Players {
		if team.Players[i].ID == playerID {
			p := &team.Players[i]
			writeJSON(w, map[string]interface{}{
				"playerId": p.ID,
				"overall":  p.Overall(),
			})
			return
		}
	}

	http.Error(w, "Player not found", http.StatusNotFound)
}

// GetTeamOverall returns a team's derived rating
func (h *APIHandlers) GetTeamOverall(w http.ResponseWriter, r *http.Request) {
	teamID := r.URL.Query().Get("teamId")
	if teamID == "" {
		http.Error(w, "Missing teamId parameter", http.StatusBadRequest)
		return
	}

	state, err := h.dal.GetState()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	team := state.FindTeam(teamID)
	if team == nil {
		http.Error(w, "Team not found", http.StatusNotFound)
		return
	}

	writeJSON(w, map[string]interface{}{
		"teamId":  team.ID,
		"overall": team.Overall(),
	})
}

// AnalyticsLeaders returns the all-time home run leaders from the
// analytics store
func (h *APIHandlers) AnalyticsLeaders(w http.ResponseWriter, r *http.Request) {
	if h.analytics == nil {
		http.Error(w, "Analytics not configured", http.StatusServiceUnavailable)
		return
	}

	leaders, err := h.analytics.TopHomeRunHitters(r.Context(), 10)
	if err != nil {
		logger.Error("Failed to query analytics leaders", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, leaders)
}

// EventsSSE provides Server-Sent Events for realtime updates
func (h *APIHandlers) EventsSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	eventChan := h.pubsub.Subscribe()
	defer h.pubsub.Unsubscribe(eventChan)

	// Send initial connection message
	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	for {
		select {
		case event := <-eventChan:
			data, _ := json.Marshal(event)
			fmt.Fprintf(w, "data: %s\n\n", data)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected")
			return
		case <-time.After(30 * time.Second):
			// Send keepalive ping
			fmt.Fprintf(w, ": keepalive\n\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}
