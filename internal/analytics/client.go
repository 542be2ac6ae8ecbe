package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/matthewkirk009-hue/baseball-sim/internal/sim"
)

// Recorder sinks completed-game stat lines into an analytics store.
type Recorder interface {
	RecordGame(ctx context.Context, gameID, homeID, awayID string, box sim.BoxScore) error
	TopHomeRunHitters(ctx context.Context, limit int) ([]LeaderEntry, error)
	Close() error
}

// LeaderEntry is one row of an all-time leaderboard.
type LeaderEntry struct {
	PlayerID string `json:"playerId"`
	Value    int64  `json:"value"`
}

// Client provides ClickHouse integration for historical game stats
type Client struct {
	conn driver.Conn
}

// NewClient creates a new ClickHouse client
func NewClient(addr, database, username, password string) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	c := &Client{conn: conn}
	if err := c.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS game_stat_lines (
			game_id String,
			player_id String,
			home_id String,
			away_id String,
			at_bats Int32,
			hits Int32,
			doubles Int32,
			triples Int32,
			home_runs Int32,
			walks Int32,
			strikeouts Int32,
			runs Int32,
			rbi Int32,
			stolen_bases Int32,
			batters_faced Int32,
			outs_recorded Int32,
			strikeouts_thrown Int32,
			earned_runs Int32,
			played_at DateTime DEFAULT now()
		) ENGINE = MergeTree()
		ORDER BY (player_id, played_at)
	`
	return c.conn.Exec(context.Background(), query)
}

// RecordGame inserts one row per player who appeared in the game.
func (c *Client) RecordGame(ctx context.Context, gameID, homeID, awayID string, box sim.BoxScore) error {
	batch, err := c.conn.PrepareBatch(ctx, `
		INSERT INTO game_stat_lines (
			game_id, player_id, home_id, away_id,
			at_bats, hits, doubles, triples, home_runs, walks, strikeouts, runs, rbi, stolen_bases,
			batters_faced, outs_recorded, strikeouts_thrown, earned_runs
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for playerID, line := range box {
		err := batch.Append(
			gameID, playerID, homeID, awayID,
			int32(line.AtBats), int32(line.Hits), int32(line.Doubles), int32(line.Triples),
			int32(line.HomeRuns), int32(line.Walks), int32(line.Strikeouts), int32(line.Runs),
			int32(line.RBI), int32(line.StolenBases),
			int32(line.BattersFaced), int32(line.OutsRecorded), int32(line.StrikeoutsThrown), int32(line.EarnedRuns),
		)
		if err != nil {
			return fmt.Errorf("failed to append stat line for %s: %w", playerID, err)
		}
	}

	return batch.Send()
}

// TopHomeRunHitters returns the all-time home run leaders across every
// recorded game.
func (c *Client) TopHomeRunHitters(ctx context.Context, limit int) ([]LeaderEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT
			player_id,
			sum(home_runs) as total_home_runs
		FROM game_stat_lines
		GROUP BY player_id
		ORDER BY total_home_runs DESC
		LIMIT $1
	`

	rows, err := c.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leaders := []LeaderEntry{}
	for rows.Next() {
		var entry LeaderEntry
		var total uint64
		if err := rows.Scan(&entry.PlayerID, &total); err != nil {
			return nil, err
		}
		entry.Value = int64(total)
		leaders = append(leaders, entry)
	}

	return leaders, nil
}

// RecentGames returns the ids of games recorded within the window.
func (c *Client) RecentGames(ctx context.Context, window time.Duration) ([]string, error) {
	query := `
		SELECT DISTINCT game_id
		FROM game_stat_lines
		WHERE played_at >= now() - INTERVAL $1 SECOND
		ORDER BY game_id
	`

	rows, err := c.conn.Query(ctx, query, int64(window.Seconds()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
