package chathub

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strangerchat/backend/internal/config"
	"strangerchat/backend/internal/location"
	"strangerchat/backend/internal/models"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// ManagerService is the single owner of the shared chat state: connected clients,
// the registry, the waiting queue and the rooms. Every handler and the sweeper
// run under mu, so no handler ever observes a half-built or half-torn-down room.
type ManagerService struct {
	mu sync.Mutex

	Clients  map[string]Client
	Registry *Registry
	Queue    *WaitingQueue
	Rooms    *RoomStore
	Matcher  *MatcherService
	Relay    *Relay

	cfg          config.ChatConfig
	archiver     Archiver
	validate     *validator.Validate
	now          func() time.Time
	pickLocation location.Picker
	randomName   func() string
	startedAt    time.Time
	onlineUsers  int
}

// Option customises a ManagerService.
type Option func(*ManagerService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *ManagerService) { m.now = now }
}

// WithLocationPicker replaces the random fallback location.
func WithLocationPicker(p location.Picker) Option {
	return func(m *ManagerService) { m.pickLocation = p }
}

// WithNameGenerator replaces the random fallback username.
func WithNameGenerator(f func() string) Option {
	return func(m *ManagerService) { m.randomName = f }
}

// WithRoomIDGenerator replaces the UUID room id generator.
func WithRoomIDGenerator(f func() string) Option {
	return func(m *ManagerService) { m.Rooms.newID = f }
}

// WithArchiver sends room lifecycle and stats notifications to a.
func WithArchiver(a Archiver) Option {
	return func(m *ManagerService) {
		if a != nil {
			m.archiver = a
		}
	}
}

// NewManagerService creates the hub with the given chat policy.
func NewManagerService(cfg config.ChatConfig, opts ...Option) *ManagerService {
	m := &ManagerService{
		Clients:      make(map[string]Client),
		Registry:     NewRegistry(),
		Queue:        NewWaitingQueue(),
		Rooms:        NewRoomStore(),
		cfg:          cfg,
		archiver:     nopArchiver{},
		validate:     validator.New(),
		now:          time.Now,
		pickLocation: location.Random,
		randomName:   func() string { return fmt.Sprintf("User%d", rand.IntN(10000)) },
	}
	m.Matcher = NewMatcherService(m.Queue, m.Rooms, m.isLive)
	m.Relay = NewRelay(m.Rooms, cfg.MaxRoomMessages, cfg.MaxMessageLength)
	for _, opt := range opts {
		opt(m)
	}
	m.startedAt = m.now()
	return m
}

// Connect registers a freshly opened connection and sends it the current stats.
func (m *ManagerService) Connect(c Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	connID := c.GetConnID()
	if _, ok := m.Clients[connID]; ok {
		log.Printf("WARNING: connection %s registered twice, ignoring", connID)
		return
	}
	m.Clients[connID] = c
	m.onlineUsers++

	stats := m.statsLocked()
	m.sendLocked(c, models.Event{Name: models.EventStatsUpdate, Data: stats.Update()})
	m.archiver.StatsChanged(stats)
	log.Printf("User connected: %s (Total: %d)", connID, m.onlineUsers)
}

// FindStranger registers the requester and either pairs it with the oldest waiting
// user or puts it in the queue.
func (m *ManagerService) FindStranger(connID string, req models.FindStrangerRequest) {
	defer m.recoverHandler(connID, "find-stranger", "Failed to find stranger")
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Clients[connID]; !ok {
		return
	}
	if err := m.validate.Struct(req); err != nil {
		m.sendErrorLocked(connID, "Failed to find stranger")
		return
	}
	if m.Queue.Contains(connID) {
		m.sendToLocked(connID, models.Event{Name: models.EventWaitingForStranger})
		return
	}
	if _, ok := m.Rooms.RoomOf(connID); ok {
		m.sendErrorLocked(connID, "Already in a chat")
		return
	}

	profile := m.newProfile(connID, req)
	m.Registry.Register(profile)

	res := m.Matcher.FindOrQueue(profile, profile.JoinedAt)
	if res.Discarded != nil {
		log.Printf("Dropped stale waiting user %s (%s)", res.Discarded.Username, res.Discarded.ConnectionID)
	}

	if res.Paired() {
		room := res.Room
		m.sendToLocked(profile.ConnectionID, models.Event{
			Name: models.EventStrangerFound,
			Data: models.StrangerFound{RoomID: room.RoomID, Partner: res.Partner.Summary()},
		})
		m.sendToLocked(res.Partner.ConnectionID, models.Event{
			Name: models.EventStrangerFound,
			Data: models.StrangerFound{RoomID: room.RoomID, Partner: profile.Summary()},
		})
		m.archiver.RoomOpened(room.Record())
		log.Printf("Match #%d: %s (%s) <-> %s (%s) in room %s",
			m.Matcher.TotalRoomsCreated, profile.Username, profile.Location,
			res.Partner.Username, res.Partner.Location, room.RoomID)
	} else {
		m.sendToLocked(profile.ConnectionID, models.Event{Name: models.EventWaitingForStranger})
		log.Printf("%s (%s) added to waiting list", profile.Username, profile.Location)
	}

	m.broadcastStatsLocked()
}

// SendMessage relays a chat line to both members of the sender's room.
// Malformed or empty messages and unknown rooms are dropped silently.
func (m *ManagerService) SendMessage(connID string, req models.SendMessageRequest) {
	defer m.recoverHandler(connID, "send-message", "Failed to send message")
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.validate.Struct(req); err != nil {
		return
	}
	msg, err := m.Relay.PostMessage(req.RoomID, connID, req.Message, m.now())
	switch {
	case errors.Is(err, ErrNotRoomMember):
		log.Printf("WARNING: %s tried to post into room %s without being a member", connID, req.RoomID)
		m.sendErrorLocked(connID, "Not a member of this chat")
		return
	case err != nil:
		return
	}

	room, _ := m.Rooms.Get(req.RoomID)
	m.broadcastRoomLocked(room, models.Event{Name: models.EventNewMessage, Data: msg})
}

// Typing tells the partner that connID started or stopped typing.
func (m *ManagerService) Typing(connID string, req models.TypingRequest) {
	defer m.recoverHandler(connID, "typing", "")
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.validate.Struct(req); err != nil {
		return
	}
	sender, recipients, err := m.Relay.SetTyping(req.RoomID, connID)
	if err != nil {
		return
	}
	ev := models.Event{
		Name: models.EventUserTyping,
		Data: models.UserTyping{Username: sender.Username, IsTyping: req.IsTyping},
	}
	for _, r := range recipients {
		m.sendToLocked(r.ConnectionID, ev)
	}
}

// EndChat closes the room on behalf of one of its members.
// Ending a room that no longer exists does nothing.
func (m *ManagerService) EndChat(connID string, req models.EndChatRequest) {
	defer m.recoverHandler(connID, "end-chat", "Failed to end chat")
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.Rooms.Get(req.RoomID)
	if !ok {
		return
	}
	if !room.HasMember(connID) {
		m.sendErrorLocked(connID, "Not a member of this chat")
		return
	}

	m.broadcastRoomLocked(room, models.Event{Name: models.EventChatEnded})
	m.Relay.EndChat(room.RoomID)
	m.archiver.RoomClosed(room.RoomID, models.EndReasonEnded, m.now(), room.MessageCount)
	log.Printf("Chat ended in room %s", room.RoomID)

	m.broadcastStatsLocked()
}

// Disconnect tears down everything a closed connection owned. It is safe to call
// more than once for the same connection.
func (m *ManagerService) Disconnect(connID, reason string) {
	defer m.recoverHandler("", "disconnect", "")
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Clients[connID]; !ok {
		return
	}
	delete(m.Clients, connID)
	m.onlineUsers = max(0, m.onlineUsers-1)
	log.Printf("User disconnected: %s (Reason: %s) (Total: %d)", connID, reason, m.onlineUsers)

	if removed, ok := m.Queue.RemoveByConnectionID(connID); ok {
		log.Printf("Removed %s from waiting list", removed.Username)
	}

	if room, ok := m.Rooms.RoomOf(connID); ok {
		m.Rooms.Delete(room.RoomID)
		if partner := room.Partner(connID); partner != nil {
			m.sendToLocked(partner.ConnectionID, models.Event{Name: models.EventPartnerDisconnected})
		}
		m.archiver.RoomClosed(room.RoomID, models.EndReasonDisconnected, m.now(), room.MessageCount)
		log.Printf("Partner disconnected from room %s", room.RoomID)
	}

	m.Registry.Remove(connID)
	m.broadcastStatsLocked()
}

// Stats returns a snapshot of the counters.
func (m *ManagerService) Stats() models.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statsLocked()
}

// Uptime is the time since the hub was created.
func (m *ManagerService) Uptime() time.Duration {
	return m.now().Sub(m.startedAt)
}

// Shutdown closes every room and every connection.
func (m *ManagerService) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for _, room := range m.Rooms.All() {
		m.Rooms.Delete(room.RoomID)
		m.archiver.RoomClosed(room.RoomID, models.EndReasonShutdown, now, room.MessageCount)
	}
	for _, c := range m.Clients {
		c.Close()
	}
	log.Printf("Chat hub stopped, %d connections closed", len(m.Clients))
}

// isLive is the liveness oracle handed to the matcher and the sweeper.
// Callers hold mu.
func (m *ManagerService) isLive(connID string) bool {
	c, ok := m.Clients[connID]
	return ok && c.IsConnected()
}

func (m *ManagerService) newProfile(connID string, req models.FindStrangerRequest) *models.UserProfile {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = m.randomName()
	}
	loc := strings.TrimSpace(req.Location)
	if loc == "" {
		loc = m.pickLocation()
	}
	interests := lo.Compact(lo.Map(req.Interests, func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	return &models.UserProfile{
		ConnectionID: connID,
		Username:     username,
		Location:     loc,
		Interests:    interests,
		JoinedAt:     m.now(),
	}
}

func (m *ManagerService) statsLocked() models.Stats {
	return models.Stats{
		OnlineUsers:       m.onlineUsers,
		WaitingUsers:      m.Queue.Size(),
		ActiveChats:       m.Rooms.Len(),
		TotalChatsCreated: m.Matcher.TotalRoomsCreated,
		TakenAt:           m.now(),
	}
}

func (m *ManagerService) broadcastStatsLocked() {
	stats := m.statsLocked()
	ev := models.Event{Name: models.EventStatsUpdate, Data: stats.Update()}
	for _, c := range m.Clients {
		m.sendLocked(c, ev)
	}
	m.archiver.StatsChanged(stats)
}

func (m *ManagerService) broadcastRoomLocked(room *models.ChatRoom, ev models.Event) {
	for _, member := range room.Members {
		if member != nil {
			m.sendToLocked(member.ConnectionID, ev)
		}
	}
}

func (m *ManagerService) sendToLocked(connID string, ev models.Event) {
	if c, ok := m.Clients[connID]; ok {
		m.sendLocked(c, ev)
	}
}

func (m *ManagerService) sendErrorLocked(connID, message string) {
	m.sendToLocked(connID, models.Event{Name: models.EventError, Data: models.ErrorPayload{Message: message}})
}

// sendLocked never blocks. A client that cannot take the event is closed; its
// transport then reports the disconnect like any other.
func (m *ManagerService) sendLocked(c Client, ev models.Event) {
	if !c.Send(ev) {
		log.Printf("WARNING: send buffer full or closed for %s, closing connection", c.GetConnID())
		c.Close()
	}
}

// recoverHandler keeps a panicking handler from taking the process or other
// connections down. It must be deferred before mu is taken.
func (m *ManagerService) recoverHandler(connID, op, userMessage string) {
	r := recover()
	if r == nil {
		return
	}
	log.Printf("ERROR: Error in %s for %s: %v", op, connID, r)
	if connID == "" || userMessage == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErrorLocked(connID, userMessage)
}
