package handlers

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/matthewkirk009-hue/baseball-sim/internal/dal"
	"github.com/matthewkirk009-hue/baseball-sim/internal/logger"
	"github.com/matthewkirk009-hue/baseball-sim/internal/pubsub"
	"github.com/matthewkirk009-hue/baseball-sim/internal/sim"
)

// newID generates a short random identifier with the given prefix.
func newID(prefix string) string {
	b := make([]byte, 4)
	if _, err := crand.Read(b); err != nil {
		return prefix + "_0"
	}
	return prefix + "_" + hex.EncodeToString(b)
}

// GameState is the JSON snapshot of an in-progress or finished game.
type GameState struct {
	ID         string       `json:"id"`
	HomeID     string       `json:"homeId"`
	AwayID     string       `json:"awayId"`
	Inning     int          `json:"inning"`
	TopHalf    bool         `json:"topHalf"`
	Outs       int          `json:"outs"`
	Bases      [3]string    `json:"bases"`
	HomeScore  int          `json:"homeScore"`
	AwayScore  int          `json:"awayScore"`
	HomeErrors int          `json:"homeErrors"`
	AwayErrors int          `json:"awayErrors"`
	Over       bool         `json:"over"`
	Seed       int64        `json:"seed"`
	Box        sim.BoxScore `json:"box"`
}

func snapshotGame(id string, ag *activeGame) GameState {
	g := ag.game
	return GameState{
		ID:         id,
		HomeID:     g.Home.ID,
		AwayID:     g.Away.ID,
		Inning:     g.Inning,
		TopHalf:    g.TopHalf,
		Outs:       g.Outs,
		Bases:      g.Bases,
		HomeScore:  g.HomeScore,
		AwayScore:  g.AwayScore,
		HomeErrors: g.HomeErrors,
		AwayErrors: g.AwayErrors,
		Over:       g.Over(),
		Seed:       ag.seed,
		Box:        g.Box,
	}
}

// StartGame creates a new game between two teams
func (h *APIHandlers) StartGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		HomeID string `json:"homeId"`
		AwayID string `json:"awayId"`
		Seed   *int64 `json:"seed,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state, err := h.dal.GetState()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	home := state.FindTeam(req.HomeID)
	away := state.FindTeam(req.AwayID)

	seed := sim.NewSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}

	game, err := sim.NewGame(home, away, sim.NewRand(seed))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, sim.ErrUnknownTeam) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	id := newID("game")
	ag := &activeGame{game: game, seed: seed}

	h.mu.Lock()
	h.games[id] = ag
	h.mu.Unlock()

	logger.Info("Game started", "game_id", id, "home", req.HomeID, "away", req.AwayID, "seed", seed)

	h.pubsub.Publish(pubsub.Event{
		Type:    pubsub.EventGameStart,
		Payload: map[string]interface{}{"gameId": id, "homeId": req.HomeID, "awayId": req.AwayID},
	})

	ag.mu.Lock()
	defer ag.mu.Unlock()
	writeJSON(w, snapshotGame(id, ag))
}

func (h *APIHandlers) lookupGame(id string) *activeGame {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.games[id]
}

// publishPlay broadcasts one resolved play to subscribers.
func (h *APIHandlers) publishPlay(gameID string, ev *sim.PlayEvent) {
	payload := toPayload(ev)
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["gameId"] = gameID
	h.pubsub.Publish(pubsub.Event{Type: pubsub.EventPlay, Payload: payload})
}

// finishGame publishes the final score and records stat lines once.
// The caller must hold ag.mu; the game no longer mutates once over, so
// the box score is safe to hand to the analytics goroutine.
func (h *APIHandlers) finishGame(gameID string, ag *activeGame) {
	if ag.finished {
		return
	}
	ag.finished = true

	g := ag.game
	logger.Info("Game over", "game_id", gameID, "home_score", g.HomeScore, "away_score", g.AwayScore)

	h.pubsub.Publish(pubsub.Event{
		Type: pubsub.EventGameEnd,
		Payload: map[string]interface{}{
			"gameId":    gameID,
			"homeId":    g.Home.ID,
			"awayId":    g.Away.ID,
			"homeScore": g.HomeScore,
			"awayScore": g.AwayScore,
		},
	})

	if h.analytics == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.analytics.RecordGame(ctx, gameID, g.Home.ID, g.Away.ID, g.Box); err != nil {
			logger.Error("Failed to record game analytics", "game_id", gameID, "error", err)
		}
	}()
}

// PlayNext resolves the next play of a game
func (h *APIHandlers) PlayNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		GameID string `json:"gameId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ag := h.lookupGame(req.GameID)
	if ag == nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	ag.mu.Lock()
	defer ag.mu.Unlock()

	ev, err := ag.game.AdvanceOnePlay()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sim.ErrGameOver) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	h.publishPlay(req.GameID, ev)
	if ag.game.Over() {
		h.finishGame(req.GameID, ag)
	}

	writeJSON(w, map[string]interface{}{
		"event": ev,
		"state": snapshotGame(req.GameID, ag),
	})
}

// PlayHalfInning runs a game to the next half-inning boundary
func (h *APIHandlers) PlayHalfInning(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		GameID string `json:"gameId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ag := h.lookupGame(req.GameID)
	if ag == nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	ag.mu.Lock()
	defer ag.mu.Unlock()

	if ag.game.Over() {
		http.Error(w, sim.ErrGameOver.Error(), http.StatusConflict)
		return
	}

	events, err := ag.game.PlayHalfInning()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for _, ev := range events {
		h.publishPlay(req.GameID, ev)
	}
	if ag.game.Over() {
		h.finishGame(req.GameID, ag)
	}

	writeJSON(w, map[string]interface{}{
		"events": events,
		"state":  snapshotGame(req.GameID, ag),
	})
}

// PlayFullGame runs a game to completion
func (h *APIHandlers) PlayFullGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		GameID string `json:"gameId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ag := h.lookupGame(req.GameID)
	if ag == nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	ag.mu.Lock()
	defer ag.mu.Unlock()

	if ag.game.Over() {
		http.Error(w, sim.ErrGameOver.Error(), http.StatusConflict)
		return
	}

	events, err := ag.game.PlayToCompletion()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.finishGame(req.GameID, ag)

	writeJSON(w, map[string]interface{}{
		"events": events,
		"state":  snapshotGame(req.GameID, ag),
	})
}

// GetGameState returns the current snapshot of a game
func (h *APIHandlers) GetGameState(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	ag := h.lookupGame(id)
	if ag == nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	ag.mu.Lock()
	defer ag.mu.Unlock()
	writeJSON(w, snapshotGame(id, ag))
}

// persistSeason saves the season blob through the DAL.
func (h *APIHandlers) persistSeason(s *sim.Season) {
	data, err := s.Export()
	if err != nil {
		logger.Error("Failed to serialize season", "season_id", s.ID, "error", err)
		return
	}
	if err := h.dal.SaveSeason(s.ID, s.Name, data); err != nil {
		logger.Error("Failed to persist season", "season_id", s.ID, "error", err)
	}
}

// loadSeason returns the in-memory season, falling back to persistence.
func (h *APIHandlers) loadSeason(id string) (*activeSeason, error) {
	h.mu.Lock()
	if as, ok := h.seasons[id]; ok {
		h.mu.Unlock()
		return as, nil
	}
	h.mu.Unlock()

	data, err := h.dal.LoadSeason(id)
	if err != nil {
		return nil, err
	}
	season, err := sim.ImportSeason(data)
	if err != nil {
		return nil, err
	}

	as := &activeSeason{season: season, rng: sim.NewRand(sim.NewSeed())}
	h.mu.Lock()
	h.seasons[id] = as
	h.mu.Unlock()
	return as, nil
}

// CreateSeason builds a new season schedule
func (h *APIHandlers) CreateSeason(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Name         string   `json:"name"`
		TeamIDs      []string `json:"teamIds"`
		GamesPerTeam int      `json:"gamesPerTeam"`
		Seed         *int64   `json:"seed,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Default to every team in the league
	if len(req.TeamIDs) == 0 {
		state, err := h.dal.GetState()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		for _, team := range state.Teams {
			req.TeamIDs = append(req.TeamIDs, team.ID)
		}
	}

	seed := sim.NewSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}
	rng := sim.NewRand(seed)

	season, err := sim.NewSeason(newID("season"), req.Name, req.TeamIDs, req.GamesPerTeam, rng)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	as := &activeSeason{season: season, rng: rng}
	h.mu.Lock()
	h.seasons[season.ID] = as
	h.mu.Unlock()

	h.persistSeason(season)

	logger.Info("Season created", "season_id", season.ID, "teams", len(req.TeamIDs), "fixtures", len(season.Schedule))

	h.pubsub.Publish(pubsub.Event{
		Type:    pubsub.EventSeasonCreated,
		Payload: map[string]interface{}{"seasonId": season.ID, "name": season.Name},
	})

	writeJSON(w, season)
}

// PlaySeasonGames advances a season by up to n fixtures
func (h *APIHandlers) PlaySeasonGames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SeasonID string `json:"seasonId"`
		Games    int    `json:"games"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Games < 1 {
		req.Games = 1
	}

	as, err := h.loadSeason(req.SeasonID)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	state, err := h.dal.GetState()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	if as.season.GamesRemaining() == 0 {
		h.mu.Unlock()
		http.Error(w, sim.ErrScheduleExhausted.Error(), http.StatusConflict)
		return
	}
	played := as.season.PlayGames(state, req.Games, as.rng)
	h.mu.Unlock()

	h.persistSeason(as.season)

	h.pubsub.Publish(pubsub.Event{
		Type: pubsub.EventSeasonAdvanced,
		Payload: map[string]interface{}{
			"seasonId":  req.SeasonID,
			"played":    played,
			"remaining": as.season.GamesRemaining(),
		},
	})

	writeJSON(w, map[string]interface{}{
		"played":    played,
		"remaining": as.season.GamesRemaining(),
		"season":    as.season,
	})
}

// ListSeasons returns the saved season catalog
func (h *APIHandlers) ListSeasons(w http.ResponseWriter, r *http.Request) {
	infos, err := h.dal.ListSeasons()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, infos)
}

// GetSeasonState returns the full season snapshot
func (h *APIHandlers) GetSeasonState(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	as, err := h.loadSeason(id)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	writeJSON(w, as.season)
}

// GetSeasonStandings returns ordered standings
func (h *APIHandlers) GetSeasonStandings(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	as, err := h.loadSeason(id)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	writeJSON(w, as.season.Standings())
}

// GetSeasonLeaders returns batting and pitching leaderboards
func (h *APIHandlers) GetSeasonLeaders(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	as, err := h.loadSeason(id)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	writeJSON(w, map[string]interface{}{
		"batting":  as.season.BattingLeaders(),
		"pitching": as.season.PitchingLeaders(),
	})
}

// ExportSeason returns the raw season blob for download
func (h *APIHandlers) ExportSeason(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	as, err := h.loadSeason(id)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	data, err := as.season.Export()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=season-"+id+".json")
	w.Write(data)
}

// ImportSeason validates and installs an exported season blob
func (h *APIHandlers) ImportSeason(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 8<<20))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	season, err := sim.ImportSeason(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	as := &activeSeason{season: season, rng: sim.NewRand(sim.NewSeed())}
	h.mu.Lock()
	h.seasons[season.ID] = as
	h.mu.Unlock()

	h.persistSeason(season)

	logger.Info("Season imported", "season_id", season.ID, "fixtures", len(season.Schedule), "cursor", season.Cursor)

	h.pubsub.Publish(pubsub.Event{
		Type:    pubsub.EventSeasonImported,
		Payload: map[string]interface{}{"seasonId": season.ID, "name": season.Name},
	})

	writeJSON(w, season)
}

// DeleteSavedSeason removes a persisted season
func (h *APIHandlers) DeleteSavedSeason(w http.ResponseWriter, r *http.Request) {
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

	h.mu.Lock()
	delete(h.seasons, req.ID)
	h.mu.Unlock()

	if deleter, ok := h.dal.(dal.SeasonDeleter); ok {
		if err := deleter.DeleteSeason(req.ID); err != nil && !errors.Is(err, dal.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, map[string]bool{"ok": true})
}
