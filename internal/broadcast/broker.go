package broadcast

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	redisclient "github.com/menuboard/display-server-go/internal/redis"
)

const (
	HeartbeatInterval = 30 * time.Second

	clientBufferSize = 100
)

// Event is one typed message delivered to the members of a room.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// Client is one persistent connection. A client may be joined to any number
// of rooms; all its rooms feed the same Events channel.
type Client struct {
	Events chan Event
	Done   chan struct{}

	mu    sync.Mutex
	rooms map[string]bool
}

// Rooms returns the rooms the client is currently joined to.
func (c *Client) Rooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

type roomState struct {
	members map[*Client]bool
	cancel  context.CancelFunc
}

// Broker partitions connected clients into named rooms and fans out published
// events to the current members of one room. Delivery is best effort: there
// is no replay, and slow clients drop events. Publishing goes through a redis
// channel per room, so every process hosting members of that room delivers.
type Broker struct {
	redis  *redisclient.Client
	rooms  map[string]*roomState
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

func NewBroker(redisClient *redisclient.Client) *Broker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		redis:  redisClient,
		rooms:  make(map[string]*roomState),
		ctx:    ctx,
		cancel: cancel,
	}
}

// NewClient registers a connection with the broker. The client belongs to no
// rooms until Join is called.
func (b *Broker) NewClient() *Client {
	return &Client{
		Events: make(chan Event, clientBufferSize),
		Done:   make(chan struct{}),
		rooms:  make(map[string]bool),
	}
}

// Join adds the client to a room. Joining a room the client is already in is
// a no-op. The first member of a room starts the room's redis subscription.
func (b *Broker) Join(client *Client, room string) {
	client.mu.Lock()
	if client.rooms[room] {
		client.mu.Unlock()
		return
	}
	client.rooms[room] = true
	client.mu.Unlock()

	b.mu.Lock()
	state := b.rooms[room]
	if state == nil {
		subCtx, subCancel := context.WithCancel(b.ctx)
		state = &roomState{
			members: make(map[*Client]bool),
			cancel:  subCancel,
		}
		b.rooms[room] = state
		go b.subscribeToRedis(subCtx, room)
	}
	state.members[client] = true
	memberCount := len(state.members)
	b.mu.Unlock()

	log.Debug().
		Str("room", room).
		Int("memberCount", memberCount).
		Msg("client joined room")
}

// Unsubscribe removes the client from every room it joined and closes it.
// Disconnection needs no explicit per-room leave.
func (b *Broker) Unsubscribe(client *Client) {
	client.mu.Lock()
	rooms := make([]string, 0, len(client.rooms))
	for room := range client.rooms {
		rooms = append(rooms, room)
	}
	client.rooms = make(map[string]bool)
	client.mu.Unlock()

	b.mu.Lock()
	for _, room := range rooms {
		state := b.rooms[room]
		if state == nil {
			continue
		}
		delete(state.members, client)
		if len(state.members) == 0 {
			state.cancel()
			delete(b.rooms, room)
		}
	}
	b.mu.Unlock()

	select {
	case <-client.Done:
	default:
		close(client.Done)
	}

	log.Debug().
		Strs("rooms", rooms).
		Msg("client unsubscribed")
}

// Publish delivers a typed event to the current members of one room. Payload
// is marshalled once here; failures are the caller's to swallow.
func (b *Broker) Publish(ctx context.Context, room, eventName string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(Event{Name: eventName, Data: data})
	if err != nil {
		return err
	}

	channel := redisclient.RoomChannel(room)
	return b.redis.Publish(ctx, channel, raw).Err()
}

func (b *Broker) subscribeToRedis(ctx context.Context, room string) {
	channel := redisclient.RoomChannel(room)
	pubsub := b.redis.Subscribe(ctx, channel)
	defer pubsub.Close()

	log.Debug().
		Str("room", room).
		Str("channel", channel).
		Msg("redis pubsub subscribed")

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Error().Err(err).Str("room", room).Msg("failed to unmarshal event")
				continue
			}

			b.broadcast(room, event)
		}
	}
}

func (b *Broker) broadcast(room string, event Event) {
	b.mu.RLock()
	state := b.rooms[room]
	var members []*Client
	if state != nil {
		members = make([]*Client, 0, len(state.members))
		for client := range state.members {
			members = append(members, client)
		}
	}
	b.mu.RUnlock()

	for _, client := range members {
		select {
		case client.Events <- event:
		default:
			log.Warn().
				Str("room", room).
				Str("event", event.Name).
				Msg("client event buffer full, dropping event")
		}
	}
}

func (b *Broker) Close() {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[*Client]bool)
	for _, state := range b.rooms {
		for client := range state.members {
			if !seen[client] {
				seen[client] = true
				close(client.Done)
			}
		}
	}
	b.rooms = make(map[string]*roomState)
}

// ClientCount returns the number of clients currently joined to a room.
func (b *Broker) ClientCount(room string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	state := b.rooms[room]
	if state == nil {
		return 0
	}
	return len(state.members)
}

func (b *Broker) TotalClients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := make(map[*Client]bool)
	for _, state := range b.rooms {
		for client := range state.members {
			seen[client] = true
		}
	}
	return len(seen)
}
