package chathub_test

import (
	"strangerchat/backend/internal/chathub"
	"strangerchat/backend/internal/config"
	"strangerchat/backend/internal/location"
	"strangerchat/backend/internal/models"
	"sync"
	"time"
)

// MockClient is an in-memory chathub.Client that records what the hub sends.
type MockClient struct {
	mu        sync.Mutex
	connID    string
	connected bool
	full      bool
	closed    bool
	events    []models.Event
}

func newMockClient(connID string) *MockClient {
	return &MockClient{connID: connID, connected: true}
}

func (c *MockClient) GetConnID() string { return c.connID }

func (c *MockClient) Send(ev models.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected || c.full {
		return false
	}
	c.events = append(c.events, ev)
	return true
}

func (c *MockClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.connected = false
}

// Kill simulates a transport that died before its disconnect was reported.
func (c *MockClient) Kill() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
}

func (c *MockClient) SetFull(full bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.full = full
}

func (c *MockClient) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Events returns the recorded events named name, or all of them when name is empty.
func (c *MockClient) Events(name string) []models.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Event
	for _, ev := range c.events {
		if name == "" || ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

// Last returns the most recent event named name.
func (c *MockClient) Last(name string) (models.Event, bool) {
	evs := c.Events(name)
	if len(evs) == 0 {
		return models.Event{}, false
	}
	return evs[len(evs)-1], true
}

func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// createTestHub builds a hub with deterministic clock, names and locations.
func createTestHub(clock *fakeClock, opts ...chathub.Option) *chathub.ManagerService {
	base := []chathub.Option{
		chathub.WithClock(clock.Now),
		chathub.WithLocationPicker(location.Fixed("Iceland")),
		chathub.WithNameGenerator(func() string { return "User42" }),
	}
	return chathub.NewManagerService(config.DefaultChatConfig(), append(base, opts...)...)
}

// connect registers a new mock client and forgets the greeting stats-update.
func connect(hub *chathub.ManagerService, connID string) *MockClient {
	c := newMockClient(connID)
	hub.Connect(c)
	c.Reset()
	return c
}

// pair connects a and b, makes them find each other and returns the room id.
func pair(hub *chathub.ManagerService, a, b *MockClient) string {
	hub.FindStranger(a.GetConnID(), models.FindStrangerRequest{Username: a.GetConnID()})
	hub.FindStranger(b.GetConnID(), models.FindStrangerRequest{Username: b.GetConnID()})
	ev, ok := b.Last(models.EventStrangerFound)
	if !ok {
		return ""
	}
	a.Reset()
	b.Reset()
	return ev.Data.(models.StrangerFound).RoomID
}
