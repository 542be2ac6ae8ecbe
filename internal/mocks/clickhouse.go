package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/matthewkirk009-hue/baseball-sim/internal/analytics"
	"github.com/matthewkirk009-hue/baseball-sim/internal/logger"
	"github.com/matthewkirk009-hue/baseball-sim/internal/sim"
)

// MockAnalyticsClient provides a mock ClickHouse client for local development.
// Stat lines are accumulated in memory instead of an analytics store.
type MockAnalyticsClient struct {
	mu       sync.Mutex
	homeRuns map[string]int64
	games    int
}

// NewMockAnalyticsClient creates a mock analytics client
func NewMockAnalyticsClient() *MockAnalyticsClient {
	logger.Info("Using MOCK analytics client for local development")
	return &MockAnalyticsClient{homeRuns: map[string]int64{}}
}

// RecordGame accumulates the game's stat lines in memory
func (m *MockAnalyticsClient) RecordGame(ctx context.Context, gameID, homeID, awayID string, box sim.BoxScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for playerID, line := range box {
		m.homeRuns[playerID] += int64(line.HomeRuns)
	}
	m.games++
	return nil
}

// TopHomeRunHitters returns the accumulated home run leaders
func (m *MockAnalyticsClient) TopHomeRunHitters(ctx context.Context, limit int) ([]analytics.LeaderEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}

	leaders := make([]analytics.LeaderEntry, 0, len(m.homeRuns))
	for id, hr := range m.homeRuns {
		leaders = append(leaders, analytics.LeaderEntry{PlayerID: id, Value: hr})
	}
	sort.Slice(leaders, func(i, j int) bool {
		if leaders[i].Value != leaders[j].Value {
			return leaders[i].Value > leaders[j].Value
		}
		return leaders[i].PlayerID < leaders[j].PlayerID
	})

	if len(leaders) > limit {
		leaders = leaders[:limit]
	}
	return leaders, nil
}

// GameCount returns the number of recorded games
func (m *MockAnalyticsClient) GameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.games
}

// Close is a no-op for mock client
func (m *MockAnalyticsClient) Close() error {
	return nil
}
