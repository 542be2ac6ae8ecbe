package dal

import (
	"errors"

	"github.com/matthewkirk009-hue/baseball-sim/internal/models"
)

// ErrNotFound is wrapped by implementations when a team, player or
// season id does not exist.
var ErrNotFound = errors.New("not found")

// SeasonInfo is a listing entry for a stored season.
type SeasonInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UpdatedAt int64  `json:"updatedAt"`
}

// LeagueDAL defines the interface for data access layer
type LeagueDAL interface {
	GetState() (*models.LeagueState, error)
	Reset() error

	AddTeam(name, city, stadium string) (*models.Team, error)
	UpdateTeam(team *models.Team) (*models.Team, error)
	DeleteTeam(id string) error

	AddPlayer(teamID string, player *models.Player) (*models.Player, error)
	UpdatePlayer(teamID string, player *models.Player) (*models.Player, error)
	DeletePlayer(teamID, playerID string) error
	SetPlayerAttributes(teamID, playerID string, attrs models.Attributes) (*models.Player, error)

	// Seasons are stored as opaque serialized blobs; the engine owns the
	// format and validates on import.
	SaveSeason(id, name string, data []byte) error
	LoadSeason(id string) ([]byte, error)
	ListSeasons() ([]SeasonInfo, error)

	Close() error
}

// SeasonDeleter is implemented by backends that can remove a stored
// season. Callers type-assert; deletion is optional.
type SeasonDeleter interface {
	DeleteSeason(id string) error
}
