package dal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/matthewkirk009-hue/baseball-sim/internal/models"
)

// SQLiteDAL implements LeagueDAL using SQLite
type SQLiteDAL struct {
	db *sql.DB
}

// NewSQLiteDAL creates a new SQLite data access layer
func NewSQLiteDAL(dbPath string) (*SQLiteDAL, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	dal := &SQLiteDAL{db: db}
	if err := dal.initSchema(); err != nil {
		return nil, err
	}
	return dal, nil
}

func (s *SQLiteDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS teams (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		stadium TEXT NOT NULL DEFAULT '',
		home_advantage INTEGER NOT NULL DEFAULT 50,
		colors TEXT NOT NULL DEFAULT '[]',
		logo TEXT,
		created_at INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		team_id TEXT NOT NULL,
		name TEXT NOT NULL,
		image TEXT,
		position TEXT NOT NULL DEFAULT '',
		is_pitcher INTEGER NOT NULL DEFAULT 0,
		is_star INTEGER NOT NULL DEFAULT 0,
		hit INTEGER NOT NULL DEFAULT 0,
		pwr INTEGER NOT NULL DEFAULT 0,
		spd INTEGER NOT NULL DEFAULT 0,
		def INTEGER NOT NULL DEFAULT 0,
		arm INTEGER NOT NULL DEFAULT 0,
		pit INTEGER NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (team_id) REFERENCES teams(id)
	);

	CREATE TABLE IF NOT EXISTS seasons (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Add is_star column to existing databases (migration)
	// SQLite doesn't support IF NOT EXISTS for ALTER TABLE, so we check first
	var isStarExists int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM pragma_table_info('players')
		WHERE name='is_star'
	`).Scan(&isStarExists)
	if err != nil {
		return fmt.Errorf("failed to check is_star column existence: %w", err)
	}

	if isStarExists == 0 {
		_, err = s.db.Exec(`ALTER TABLE players ADD COLUMN is_star INTEGER NOT NULL DEFAULT 0`)
		if err != nil {
			return fmt.Errorf("failed to add is_star column: %w", err)
		}
	}

	// Seed default data if empty
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM teams").Scan(&count); err != nil {
		return err
	}

	if count == 0 {
		if err := s.seedData(); err != nil {
			return err
		}
	}

	return nil
}

func (s *SQLiteDAL) seedData() error {
	for _, t := range getDefaultTeams() {
		if err := s.insertTeam(&t); err != nil {
			return err
		}
		for i, p := range t.Players {
			if err := s.insertPlayer(t.ID, &p, i); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *SQLiteDAL) insertTeam(t *models.Team) error {
	colorsJSON, _ := json.Marshal(t.Colors)
	_, err := s.db.Exec(`
		INSERT INTO teams (id, name, city, stadium, home_advantage, colors, logo, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.City, t.Stadium, t.HomeAdvantage, string(colorsJSON), t.Logo, t.CreatedAt, t.UpdatedAt)
	return err
}

func (s *SQLiteDAL) insertPlayer(teamID string, p *models.Player, sortOrder int) error {
	_, err := s.db.Exec(`
		INSERT INTO players (id, team_id, name, image, position, is_pitcher, is_star, hit, pwr, spd, def, arm, pit, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, teamID, p.Name, p.Image, p.Position, boolToInt(p.IsPitcher), boolToInt(p.IsStar),
		p.Attrs.Hit, p.Attrs.Pwr, p.Attrs.Spd, p.Attrs.Def, p.Attrs.Arm, p.Attrs.Pit, sortOrder)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *SQLiteDAL) GetState() (*models.LeagueState, error) {
	state := &models.LeagueState{Teams: []models.Team{}}

	rows, err := s.db.Query(`
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
		players, err := s.teamPlayers(state.Teams[i].ID)
		if err != nil {
			return nil, err
		}
		state.Teams[i].Players = players
	}

	return state, nil
}

func (s *SQLiteDAL) teamPlayers(teamID string) ([]models.Player, error) {
	rows, err := s.db.Query(`
		SELECT id, name, image, position, is_pitcher, is_star, hit, pwr, spd, def, arm, pit
		FROM players WHERE team_id = ? ORDER BY sort_order ASC, id ASC
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []models.Player{}
	for rows.Next() {
		var p models.Player
		var image sql.NullString
		var isPitcher, isStar int
		err := rows.Scan(&p.ID, &p.Name, &image, &p.Position, &isPitcher, &isStar,
			&p.Attrs.Hit, &p.Attrs.Pwr, &p.Attrs.Spd, &p.Attrs.Def, &p.Attrs.Arm, &p.Attrs.Pit)
		if err != nil {
			return nil, err
		}
		if image.Valid {
			p.Image = image.String
		}
		p.IsPitcher = isPitcher == 1
		p.IsStar = isStar == 1
		players = append(players, p)
	}
	return players, nil
}

func (s *SQLiteDAL) Reset() error {
	// Clear all tables
	_, err := s.db.Exec("DELETE FROM players")
	if err != nil {
		return err
	}
	_, err = s.db.Exec("DELETE FROM seasons")
	if err != nil {
		return err
	}
	_, err = s.db.Exec("DELETE FROM teams")
	if err != nil {
		return err
	}

	// Re-seed
	return s.seedData()
}

func (s *SQLiteDAL) AddTeam(name, city, stadium string) (*models.Team, error) {
	if name == "" {
		name = "New Team"
	}

	// Count existing teams for the default palette
	var count int
	s.db.QueryRow("SELECT COUNT(*) FROM teams").Scan(&count)

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

	if err := s.insertTeam(team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *SQLiteDAL) UpdateTeam(team *models.Team) (*models.Team, error) {
	colorsJSON, _ := json.Marshal(team.Colors)
	now := time.Now().UnixMilli()
	res, err := s.db.Exec(`
		UPDATE teams SET name = ?, city = ?, stadium = ?, home_advantage = ?, colors = ?, logo = ?, updated_at = ?
		WHERE id = ?
	`, team.Name, team.City, team.Stadium, team.HomeAdvantage, string(colorsJSON), team.Logo, now, team.ID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("team %s: %w", team.ID, ErrNotFound)
	}

	team.UpdatedAt = now
	players, err := s.teamPlayers(team.ID)
	if err != nil {
		return nil, err
	}
	team.Players = players
	return team, nil
}

func (s *SQLiteDAL) DeleteTeam(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM players WHERE team_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.Exec(`DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("team %s: %w", id, ErrNotFound)
	}

	return tx.Commit()
}

func (s *SQLiteDAL) teamExists(id string) (bool, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM teams WHERE id = ?`, id).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SQLiteDAL) AddPlayer(teamID string, player *models.Player) (*models.Player, error) {
	ok, err := s.teamExists(teamID)
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
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM players WHERE team_id = ?`, teamID).Scan(&sortOrder); err != nil {
		return nil, err
	}

	if err := s.insertPlayer(teamID, player, sortOrder); err != nil {
		return nil, err
	}
	s.touchTeam(teamID)
	return player, nil
}

func (s *SQLiteDAL) UpdatePlayer(teamID string, player *models.Player) (*models.Player, error) {
	player.Attrs.Clamp()
	res, err := s.db.Exec(`
		UPDATE players SET name = ?, image = ?, position = ?, is_pitcher = ?, is_star = ?,
			hit = ?, pwr = ?, spd = ?, def = ?, arm = ?, pit = ?
		WHERE id = ? AND team_id = ?
	`, player.Name, player.Image, player.Position, boolToInt(player.IsPitcher), boolToInt(player.IsStar),
		player.Attrs.Hit, player.Attrs.Pwr, player.Attrs.Spd, player.Attrs.Def, player.Attrs.Arm, player.Attrs.Pit,
		player.ID, teamID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("player %s: %w", player.ID, ErrNotFound)
	}
	s.touchTeam(teamID)
	return player, nil
}

func (s *SQLiteDAL) DeletePlayer(teamID, playerID string) error {
	res, err := s.db.Exec(`DELETE FROM players WHERE id = ? AND team_id = ?`, playerID, teamID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	s.touchTeam(teamID)
	return nil
}

func (s *SQLiteDAL) SetPlayerAttributes(teamID, playerID string, attrs models.Attributes) (*models.Player, error) {
	attrs.Clamp()
	res, err := s.db.Exec(`
		UPDATE players SET hit = ?, pwr = ?, spd = ?, def = ?, arm = ?, pit = ?
		WHERE id = ? AND team_id = ?
	`, attrs.Hit, attrs.Pwr, attrs.Spd, attrs.Def, attrs.Arm, attrs.Pit, playerID, teamID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	s.touchTeam(teamID)

	var p models.Player
	var image sql.NullString
	var isPitcher, isStar int
	err = s.db.QueryRow(`
		SELECT id, name, image, position, is_pitcher, is_star, hit, pwr, spd, def, arm, pit
		FROM players WHERE id = ?
	`, playerID).Scan(&p.ID, &p.Name, &image, &p.Position, &isPitcher, &isStar,
		&p.Attrs.Hit, &p.Attrs.Pwr, &p.Attrs.Spd, &p.Attrs.Def, &p.Attrs.Arm, &p.Attrs.Pit)
	if err != nil {
		return nil, err
	}
	if image.Valid {
		p.Image = image.String
	}
	p.IsPitcher = isPitcher == 1
	p.IsStar = isStar == 1
	return &p, nil
}

func (s *SQLiteDAL) touchTeam(teamID string) {
	s.db.Exec(`UPDATE teams SET updated_at = ? WHERE id = ?`, time.Now().UnixMilli(), teamID)
}

func (s *SQLiteDAL) SaveSeason(id, name string, data []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO seasons (id, name, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, data = excluded.data, updated_at = excluded.updated_at
	`, id, name, string(data), time.Now().UnixMilli())
	return err
}

func (s *SQLiteDAL) LoadSeason(id string) ([]byte, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM seasons WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("season %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

func (s *SQLiteDAL) DeleteSeason(id string) error {
	result, err := s.db.Exec(`DELETE FROM seasons WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("season %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteDAL) ListSeasons() ([]SeasonInfo, error) {
	rows, err := s.db.Query(`SELECT id, name, updated_at FROM seasons ORDER BY updated_at DESC`)
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

func (s *SQLiteDAL) Close() error {
	return s.db.Close()
}
