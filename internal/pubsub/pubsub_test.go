package pubsub

import (
	"sync"
	"testing"
	"time"

	"github.com/matthewkirk009-hue/baseball-sim/internal/logger"
)

func init() {
	logger.Init()
}

func TestNew(t *testing.T) {
	ps := New()
	if ps == nil {
		t.Fatal("New() returned nil")
	}
	if ps.subscribers == nil {
		t.Error("subscribers slice should be initialized")
	}
	if ps.upstream != nil {
		t.Error("upstream should be nil for basic PubSub")
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	ps := New()

	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()
	if ch1 == nil || ch2 == nil {
		t.Fatal("Subscribe() returned nil channel")
	}

	ps.mu.RLock()
	count := len(ps.subscribers)
	ps.mu.RUnlock()
	if count != 2 {
		t.Errorf("expected 2 subscribers, got %d", count)
	}

	ps.Unsubscribe(ch1)

	ps.mu.RLock()
	count = len(ps.subscribers)
	ps.mu.RUnlock()
	if count != 1 {
		t.Errorf("expected 1 subscriber after unsubscribe, got %d", count)
	}

	// Unsubscribed channel must be closed
	select {
	case _, ok := <-ch1:
		if ok {
			t.Error("channel should be closed after unsubscribe")
		}
	default:
		t.Error("channel should be closed and readable")
	}

	// Remaining subscriber still receives
	ps.Publish(Event{Type: EventPlay})
	select {
	case got := <-ch2:
		if got.Type != EventPlay {
			t.Errorf("expected %s, got %s", EventPlay, got.Type)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("remaining subscriber did not receive event")
	}
}

func TestPublishNoSubscribers(t *testing.T) {
	ps := New()

	// Should not panic
	ps.Publish(Event{Type: EventGameStart})
}

func TestPublishFanOut(t *testing.T) {
	ps := New()
	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()
	ch3 := ps.Subscribe()

	event := Event{
		Type:    EventPlay,
		Payload: map[string]interface{}{"gameId": "g1", "outcome": "home run"},
	}
	ps.Publish(event)

	for i, ch := range []chan Event{ch1, ch2, ch3} {
		select {
		case received := <-ch:
			if received.Type != EventPlay {
				t.Errorf("subscriber %d: expected type %s, got %s", i, EventPlay, received.Type)
			}
			if received.Payload["gameId"] != "g1" {
				t.Errorf("subscriber %d: payload mismatch", i)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("subscriber %d: timeout waiting for event", i)
		}
	}
}

func TestPublishDropsWhenChannelFull(t *testing.T) {
	ps := New()
	ch := ps.Subscribe()

	// Fill up the channel (buffer size is 10)
	for i := 0; i < 15; i++ {
		ps.Publish(Event{Type: EventPlay})
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
		default:
			goto done
		}
	}
done:
	if count != 10 {
		t.Errorf("expected 10 events (buffer size), got %d", count)
	}
}

func TestConcurrentSubscribeUnsubscribe(t *testing.T) {
	ps := New()

	var wg sync.WaitGroup
	numGoroutines := 50

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := ps.Subscribe()
			time.Sleep(time.Millisecond)
			ps.Unsubscribe(ch)
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ps.Publish(Event{Type: EventSeasonAdvanced})
		}()
	}

	wg.Wait()

	ps.mu.RLock()
	subCount := len(ps.subscribers)
	ps.mu.RUnlock()

	if subCount != 0 {
		t.Errorf("expected 0 subscribers after all unsubscribe, got %d", subCount)
	}
}

// recordingUpstream implements Upstream for testing
type recordingUpstream struct {
	mu          sync.Mutex
	published   []Event
	subscribers []chan Event
}

func newRecordingUpstream() *recordingUpstream {
	return &recordingUpstream{
		published:   []Event{},
		subscribers: []chan Event{},
	}
}

func (m *recordingUpstream) Publish(event Event) {
	m.mu.Lock()
	m.published = append(m.published, event)
	subs := make([]chan Event, len(m.subscribers))
	copy(subs, m.subscribers)
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (m *recordingUpstream) Subscribe() chan Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan Event, 100)
	m.subscribers = append(m.subscribers, ch)
	return ch
}

func (m *recordingUpstream) Unsubscribe(ch chan Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, sub := range m.subscribers {
		if sub == ch {
			close(ch)
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			break
		}
	}
}

func (m *recordingUpstream) PublishedEvents() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Event, len(m.published))
	copy(result, m.published)
	return result
}

func TestPublishWithUpstream(t *testing.T) {
	upstream := newRecordingUpstream()
	ps := NewWithUpstream(upstream)

	// Give the bridge goroutine time to start
	time.Sleep(10 * time.Millisecond)

	ch := ps.Subscribe()

	event := Event{Type: EventGameEnd, Payload: map[string]interface{}{"homeScore": 5.0}}
	ps.Publish(event)

	// Event must have gone through the upstream
	time.Sleep(10 * time.Millisecond)
	published := upstream.PublishedEvents()
	if len(published) != 1 {
		t.Errorf("expected 1 event published to upstream, got %d", len(published))
	}

	// And come back to the local subscriber via the bridge
	select {
	case received := <-ch:
		if received.Type != EventGameEnd {
			t.Errorf("expected type %s, got %s", EventGameEnd, received.Type)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for event from upstream")
	}
}

func TestUpstreamBroadcastToLocalSubscribers(t *testing.T) {
	upstream := newRecordingUpstream()
	ps := NewWithUpstream(upstream)

	time.Sleep(10 * time.Millisecond)

	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()

	// Publish directly to upstream (simulating another instance publishing)
	upstream.Publish(Event{Type: EventLeagueUpdated})

	for i, ch := range []chan Event{ch1, ch2} {
		select {
		case received := <-ch:
			if received.Type != EventLeagueUpdated {
				t.Errorf("subscriber %d: expected type %s, got %s", i, EventLeagueUpdated, received.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("subscriber %d: timeout waiting for event", i)
		}
	}
}

func TestMockNATSStoresAndReplays(t *testing.T) {
	mock, err := NewMockNATSPubSub("nats://unused", "sim.events")
	if err != nil {
		t.Fatalf("NewMockNATSPubSub: %v", err)
	}
	defer mock.Close()

	for i := 0; i < 5; i++ {
		mock.Publish(Event{Type: EventPlay})
	}
	if got := mock.GetMessageCount(); got != 5 {
		t.Errorf("stored %d messages, want 5", got)
	}

	ch := make(chan Event, 10)
	mock.ReplayMessages(ch, 3)
	if got := len(ch); got != 3 {
		t.Errorf("replayed %d messages, want 3", got)
	}
}

func TestUnsubscribeNonexistent(t *testing.T) {
	ps := New()
	ch := make(chan Event, 10)

	// Should not panic
	ps.Unsubscribe(ch)
}
