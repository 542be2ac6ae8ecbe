package dal

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/matthewkirk009-hue/baseball-sim/internal/models"
)

var defaultPalettes = [][3]string{
	{"#14532d", "#bbf7d0", "#ffffff"},
	{"#7c2d12", "#fed7aa", "#111111"},
	{"#1e3a8a", "#bfdbfe", "#f59e0b"},
	{"#581c87", "#e9d5ff", "#facc15"},
	{"#881337", "#fecdd3", "#0f172a"},
	{"#115e59", "#99f6e4", "#f97316"},
}

// MemoryDAL implements LeagueDAL using in-memory storage
type MemoryDAL struct {
	mu      sync.RWMutex
	teams   []models.Team
	seasons map[string][]byte
	meta    map[string]SeasonInfo
}

// NewMemoryDAL creates a new in-memory data access layer seeded with the
// default league
func NewMemoryDAL() *MemoryDAL {
	return &MemoryDAL{
		teams:   getDefaultTeams(),
		seasons: make(map[string][]byte),
		meta:    make(map[string]SeasonInfo),
	}
}

func (m *MemoryDAL) GetState() (*models.LeagueState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Create copies to avoid race conditions
	state := &models.LeagueState{Teams: make([]models.Team, len(m.teams))}
	copy(state.Teams, m.teams)
	for i := range state.Teams {
		players := make([]models.Player, len(m.teams[i].Players))
		copy(players, m.teams[i].Players)
		state.Teams[i].Players = players
	}
	return state, nil
}

func (m *MemoryDAL) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.teams = getDefaultTeams()
	m.seasons = make(map[string][]byte)
	m.meta = make(map[string]SeasonInfo)
	return nil
}

func (m *MemoryDAL) AddTeam(name, city, stadium string) (*models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name == "" {
		name = "New Team"
	}
	now := time.Now().UnixMilli()
	team := models.Team{
		ID:            genID("team"),
		Name:          name,
		City:          city,
		Stadium:       stadium,
		HomeAdvantage: 50,
		Colors:        defaultPalettes[len(m.teams)%len(defaultPalettes)],
		Players:       []models.Player{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.teams = append(m.teams, team)
	return &team, nil
}

func (m *MemoryDAL) UpdateTeam(team *models.Team) (*models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.teams {
		if m.teams[i].ID != team.ID {
			continue
		}
		// Metadata only; the roster is edited through the player calls.
		m.teams[i].Name = team.Name
		m.teams[i].City = team.City
		m.teams[i].Stadium = team.Stadium
		m.teams[i].HomeAdvantage = team.HomeAdvantage
		m.teams[i].Colors = team.Colors
		m.teams[i].Logo = team.Logo
		m.teams[i].UpdatedAt = time.Now().UnixMilli()
		updated := m.teams[i]
		return &updated, nil
	}
	return nil, fmt.Errorf("team %s: %w", team.ID, ErrNotFound)
}

func (m *MemoryDAL) DeleteTeam(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.teams {
		if m.teams[i].ID == id {
			m.teams = append(m.teams[:i], m.teams[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("team %s: %w", id, ErrNotFound)
}

func (m *MemoryDAL) findTeam(id string) *models.Team {
	for i := range m.teams {
		if m.teams[i].ID == id {
			return &m.teams[i]
		}
	}
	return nil
}

func (m *MemoryDAL) AddPlayer(teamID string, player *models.Player) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	team := m.findTeam(teamID)
	if team == nil {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}

	if player.ID == "" {
		player.ID = genID("player")
	}
	fillAttributes(player)
	player.Attrs.Clamp()

	team.Players = append(team.Players, *player)
	team.UpdatedAt = time.Now().UnixMilli()
	return player, nil
}

func (m *MemoryDAL) UpdatePlayer(teamID string, player *models.Player) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	team := m.findTeam(teamID)
	if team == nil {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}

	player.Attrs.Clamp()
	for i := range team.Players {
		if team.Players[i].ID == player.ID {
			team.Players[i] = *player
			team.UpdatedAt = time.Now().UnixMilli()
			return player, nil
		}
	}
	return nil, fmt.Errorf("player %s: %w", player.ID, ErrNotFound)
}

func (m *MemoryDAL) DeletePlayer(teamID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	team := m.findTeam(teamID)
	if team == nil {
		return fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}

	for i := range team.Players {
		if team.Players[i].ID == playerID {
			team.Players = append(team.Players[:i], team.Players[i+1:]...)
			team.UpdatedAt = time.Now().UnixMilli()
			return nil
		}
	}
	return fmt.Errorf("player %s: %w", playerID, ErrNotFound)
}

func (m *MemoryDAL) SetPlayerAttributes(teamID, playerID string, attrs models.Attributes) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	team := m.findTeam(teamID)
	if team == nil {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}

	attrs.Clamp()
	for i := range team.Players {
		if team.Players[i].ID == playerID {
			team.Players[i].Attrs = attrs
			team.UpdatedAt = time.Now().UnixMilli()
			updated := team.Players[i]
			return &updated, nil
		}
	}
	return nil, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
}

func (m *MemoryDAL) SaveSeason(id, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.seasons[id] = stored
	m.meta[id] = SeasonInfo{ID: id, Name: name, UpdatedAt: time.Now().UnixMilli()}
	return nil
}

func (m *MemoryDAL) LoadSeason(id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.seasons[id]
	if !ok {
		return nil, fmt.Errorf("season %s: %w", id, ErrNotFound)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryDAL) ListSeasons() ([]SeasonInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]SeasonInfo, 0, len(m.meta))
	for _, info := range m.meta {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].UpdatedAt > infos[j].UpdatedAt })
	return infos, nil
}

func (m *MemoryDAL) DeleteSeason(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.seasons[id]; !ok {
		return fmt.Errorf("season %s: %w", id, ErrNotFound)
	}
	delete(m.seasons, id)
	delete(m.meta, id)
	return nil
}

func (m *MemoryDAL) Close() error {
	return nil
}

// fillAttributes rolls random values for any attribute left at zero so a
// freshly created player is immediately playable.
func fillAttributes(p *models.Player) {
	attrs := &p.Attrs
	fields := []*int{&attrs.Hit, &attrs.Pwr, &attrs.Spd, &attrs.Def, &attrs.Arm}
	if p.IsPitcher {
		fields = append(fields, &attrs.Pit)
	}
	for _, f := range fields {
		if *f == 0 {
			*f = rollAttribute()
		}
	}
}
