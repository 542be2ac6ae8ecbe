package dal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/matthewkirk009-hue/baseball-sim/internal/models"
)

// PostgresDAL implements LeagueDAL using PostgreSQL
type PostgresDAL struct {
	db *sql.DB
}

// NewPostgresDAL creates a new PostgreSQL data access layer optimized for CloudNativePG
func NewPostgresDAL(connString string) (*PostgresDAL, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	// CloudNativePG optimization: Configure connection pool settings
	db.SetMaxOpenConns(25)                 // Limit max connections (CloudNativePG default max_connections is 100)
	db.SetMaxIdleConns(5)                  // Keep some idle connections for quick reuse
	db.SetConnMaxLifetime(5 * time.Minute) // Recycle connections to handle failovers gracefully
	db.SetConnMaxIdleTime(1 * time.Minute) // Close idle connections to reduce load

	// Test connection with retry logic for Kubernetes DNS resolution
	maxRetries := 5
	retryDelay := 5 * time.Second
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		err := db.PingContext(ctx)
		cancel()

		if err == nil {
			break
		}

		lastErr = err
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("failed to ping postgres after %d retries: %w", maxRetries, lastErr)
	}

	dal := &PostgresDAL{db: db}
	if err := dal.initSchema(); err != nil {
		return nil, err
	}
	return dal, nil
}

func (p *PostgresDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS teams (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		stadium TEXT NOT NULL DEFAULT '',
		home_advantage INTEGER NOT NULL DEFAULT 50,
		colors JSONB NOT NULL DEFAULT '[]'::jsonb,
		logo TEXT,
		logo_data BYTEA,
		created_at BIGINT NOT NULL DEFAULT 0,
		updated_at BIGINT NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		image TEXT,
		image_data BYTEA,
		position TEXT NOT NULL DEFAULT '',
		is_pitcher BOOLEAN NOT NULL DEFAULT false,
		is_star BOOLEAN NOT NULL DEFAULT false,
		hit INTEGER NOT NULL DEFAULT 0,
		pwr INTEGER NOT NULL DEFAULT 0,
		spd INTEGER NOT NULL DEFAULT 0,
		def INTEGER NOT NULL DEFAULT 0,
		arm INTEGER NOT NULL DEFAULT 0,
		pit INTEGER NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS seasons (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		data JSONB NOT NULL,
		updated_at BIGINT NOT NULL
	);

	-- Indexes for common query patterns
	CREATE INDEX IF NOT EXISTS idx_players_team_id ON players(team_id);
	CREATE INDEX IF NOT EXISTS idx_players_sort_order ON players(team_id, sort_order);
	CREATE INDEX IF NOT EXISTS idx_teams_created_at ON teams(created_at);
	CREATE INDEX IF NOT EXISTS idx_seasons_updated_at ON seasons(updated_at DESC);
	`

	if _, err := p.db.Exec(schema); err != nil {
		return err
	}

	// Add is_star column to existing databases (migration)
	_, err := p.db.Exec(`
		ALTER TABLE players
		ADD COLUMN IF NOT EXISTS is_star BOOLEAN NOT NULL DEFAULT false
	`)
	if err != nil {
		return fmt.Errorf("failed to add is_star column: %w", err)
	}

	// Add logo_data column to teams for existing databases
	_, err = p.db.Exec(`
		ALTER TABLE teams
		ADD COLUMN IF NOT EXISTS logo_data BYTEA
	`)
	if err != nil {
		return fmt.Errorf("failed to add logo_data column: %w", err)
	}

	// Check if we need to seed data
	var count int
	if err := p.db.QueryRow("SELECT COUNT(*) FROM teams").Scan(&count); err != nil {
		return err
	}

	if count == 0 {
		if err := p.seedData(); err != nil {
			return err
		}
	}

	return nil
}

func (p *PostgresDAL) seedData() error {
	for _, t := range getDefaultTeams() {
		if err := p.insertTeam(&t); err != nil {
			return err
		}
		for i, pl := range t.Players {
			if err := p.insertPlayer(t.ID, &pl, i); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *PostgresDAL) insertTeam(t *models.Team) error {
	colorsJSON, _ := json.Marshal(t.Colors)
	_, err := p.db.Exec(`
		INSERT INTO teams (id, name, city, stadium, home_advantage, colors, logo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, t.ID, t.Name, t.City, t.Stadium, t.HomeAdvantage, string(colorsJSON), t.Logo, t.CreatedAt, t.UpdatedAt)
	return err
}

func (p *PostgresDAL) insertPlayer(teamID string, pl *models.Player, sortOrder int) error {
	_, err := p.db.Exec(`
		INSERT INTO players (id, team_id, name, image, position, is_pitcher, is_star, hit, pwr, spd, def, arm, pit, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, pl.ID, teamID, pl.Name, pl.Image, pl.Position, pl.IsPitcher, pl.IsStar,
		pl.Attrs.Hit, pl.Attrs.Pwr, pl.Attrs.Spd, pl.Attrs.Def, pl.Attrs.Arm, pl.Attrs.Pit, sortOrder)
	return err
}

func (p *PostgresDAL) GetState() (*models.LeagueState, error) {
	state := &models.LeagueState{Teams: []models.Team{}}

	rows, err := p.db.Query(`
		SELECT id, name, city, stadium, home_advantage, colors, logo, created_at, updated_at
		FROM teams ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Team
		var colorsJSON string
		var logo sql.NullString
		err := rows.Scan(&t.ID, &t.Name, &t.City, &t.Stadium, &t.HomeAdvantage, &colorsJSON, &logo, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(colorsJSON), &t.Colors)
		if logo.Valid {
			t.Logo = logo.String
		}
		t.Players = []models.Player{}
		state.Teams = append(state.Teams, t)
	}

	for i := range state.Teams {
		players, err := p.teamPlayers(state.Teams[i].ID)
		if err != nil {
			return nil, err
		}
		state.Teams[i].Players = players
	}

	return state, nil
}

func (p *PostgresDAL) teamPlayers(teamID string) ([]models.Player, error) {
	rows, err := p.db.Query(`
		SELECT id, name, image, position, is_pitcher, is_star, hit, pwr, spd, def, arm, pit
		FROM players WHERE team_id = $1 ORDER BY sort_order ASC, id ASC
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []models.Player{}
	for rows.Next() {
		var pl models.Player
		var image sql.NullString
		err := rows.Scan(&pl.ID, &pl.Name, &image, &pl.Position, &pl.IsPitcher, &pl.IsStar,
			&pl.Attrs.Hit, &pl.Attrs.Pwr, &pl.Attrs.Spd, &pl.Attrs.Def, &pl.Attrs.Arm, &pl.Attrs.Pit)
		if err != nil {
			return nil, err
		}
		if image.Valid {
			pl.Image = image.String
		}
		players = append(players, pl)
	}
	return players, nil
}

func (p *PostgresDAL) Reset() error {
	_, err := p.db.Exec("DELETE FROM players")
	if err != nil {
		return err
	}
	_, err = p.db.Exec("DELETE FROM seasons")
	if err != nil {
		return err
	}
	_, err = p.db.Exec("DELETE FROM teams")
	if err != nil {
		return err
	}

	return p.seedData()
}

func (p *PostgresDAL) AddTeam(name, city, stadium string) (*models.Team, error) {
	if name == "" {
		name = "New Team"
	}

	var count int
	p.db.QueryRow("SELECT COUNT(*) FROM teams").Scan(&count)

	now := time.Now().UnixMilli()
	team := &models.Team{
		ID:            genID("team"),
		Name:          name,
		City:          city,
		Stadium:       stadium,
		HomeAdvantage: 50,
		Colors:        defaultPalettes[count%len(defaultPalettes)],
		Players:       []models.Player{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := p.insertTeam(team); err != nil {
		return nil, err
	}
	return team, nil
}

func (p *PostgresDAL) UpdateTeam(team *models.Team) (*models.Team, error) {
	colorsJSON, _ := json.Marshal(team.Colors)
	now := time.Now().UnixMilli()
	res, err := p.db.Exec(`
		UPDATE teams SET name = $1, city = $2, stadium = $3, home_advantage = $4, colors = $5, logo = $6, updated_at = $7
		WHERE id = $8
	`, team.Name, team.City, team.Stadium, team.HomeAdvantage, string(colorsJSON), team.Logo, now, team.ID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("team %s: %w", team.ID, ErrNotFound)
	}

	team.UpdatedAt = now
	players, err := p.teamPlayers(team.ID)
	if err != nil {
		return nil, err
	}
	team.Players = players
	return team, nil
}

func (p *PostgresDAL) DeleteTeam(id string) error {
	res, err := p.db.Exec(`DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("team %s: %w", id, ErrNotFound)
	}
	return nil
}

func (p *PostgresDAL) teamExists(id string) (bool, error) {
	var count int
	if err := p.db.QueryRow(`SELECT COUNT(*) FROM teams WHERE id = $1`, id).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (p *PostgresDAL) AddPlayer(teamID string, player *models.Player) (*models.Player, error) {
	ok, err := p.teamExists(teamID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}

	if player.ID == "" {
		player.ID = genID("player")
	}
	fillAttributes(player)
	player.Attrs.Clamp()

	var sortOrder int
	if err := p.db.QueryRow(`SELECT COUNT(*) FROM players WHERE team_id = $1`, teamID).Scan(&sortOrder); err != nil {
		return nil, err
	}

	if err := p.insertPlayer(teamID, player, sortOrder); err != nil {
		return nil, err
	}
	p.touchTeam(teamID)
	return player, nil
}

func (p *PostgresDAL) UpdatePlayer(teamID string, player *models.Player) (*models.Player, error) {
	player.Attrs.Clamp()
	res, err := p.db.Exec(`
		UPDATE players SET name = $1, image = $2, position = $3, is_pitcher = $4, is_star = $5,
			hit = $6, pwr = $7, spd = $8, def = $9, arm = $10, pit = $11
		WHERE id = $12 AND team_id = $13
	`, player.Name, player.Image, player.Position, player.IsPitcher, player.IsStar,
		player.Attrs.Hit, player.Attrs.Pwr, player.Attrs.Spd, player.Attrs.Def, player.Attrs.Arm, player.Attrs.Pit,
		player.ID, teamID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("player %s: %w", player.ID, ErrNotFound)
	}
	p.touchTeam(teamID)
	return player, nil
}

func (p *PostgresDAL) DeletePlayer(teamID, playerID string) error {
	res, err := p.db.Exec(`DELETE FROM players WHERE id = $1 AND team_id = $2`, playerID, teamID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	p.touchTeam(teamID)
	return nil
}

func (p *PostgresDAL) SetPlayerAttributes(teamID, playerID string, attrs models.Attributes) (*models.Player, error) {
	attrs.Clamp()
	res, err := p.db.Exec(`
		UPDATE players SET hit = $1, pwr = $2, spd = $3, def = $4, arm = $5, pit = $6
		WHERE id = $7 AND team_id = $8
	`, attrs.Hit, attrs.Pwr, attrs.Spd, attrs.Def, attrs.Arm, attrs.Pit, playerID, teamID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	p.touchTeam(teamID)

	var pl models.Player
	var image sql.NullString
	err = p.db.QueryRow(`
		SELECT id, name, image, position, is_pitcher, is_star, hit, pwr, spd, def, arm, pit
		FROM players WHERE id = $1
	`, playerID).Scan(&pl.ID, &pl.Name, &image, &pl.Position, &pl.IsPitcher, &pl.IsStar,
		&pl.Attrs.Hit, &pl.Attrs.Pwr, &pl.Attrs.Spd, &pl.Attrs.Def, &pl.Attrs.Arm, &pl.Attrs.Pit)
	if err != nil {
		return nil, err
	}
	if image.Valid {
		pl.Image = image.String
	}
	return &pl, nil
}

func (p *PostgresDAL) touchTeam(teamID string) {
	p.db.Exec(`UPDATE teams SET updated_at = $1 WHERE id = $2`, time.Now().UnixMilli(), teamID)
}

func (p *PostgresDAL) SaveSeason(id, name string, data []byte) error {
	_, err := p.db.Exec(`
		INSERT INTO seasons (id, name, data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`, id, name, string(data), time.Now().UnixMilli())
	return err
}

func (p *PostgresDAL) LoadSeason(id string) ([]byte, error) {
	var data string
	err := p.db.QueryRow(`SELECT data FROM seasons WHERE id = $1`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("season %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

func (p *PostgresDAL) DeleteSeason(id string) error {
	result, err := p.db.Exec(`DELETE FROM seasons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("season %s: %w", id, ErrNotFound)
	}
	return nil
}

func (p *PostgresDAL) ListSeasons() ([]SeasonInfo, error) {
	rows, err := p.db.Query(`SELECT id, name, updated_at FROM seasons ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	infos := []SeasonInfo{}
	for rows.Next() {
		var info SeasonInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.UpdatedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (p *PostgresDAL) Close() error {
	return p.db.Close()
}
