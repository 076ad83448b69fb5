package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/logger"
	"github.com/quocanhngo/spark/internal/messenger"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/redis/go-redis/v9"
)

const redisChannel = "spark:events"

// Retry delays for a failed or dropped Redis subscription
var (
	resubscribeMin = 500 * time.Millisecond
	resubscribeMax = 30 * time.Second
)

// Hub manages all WebSocket connections and delivers events per topic.
// With a Redis client it fans events out through Pub/Sub so every instance
// delivers to its own subscribers; without one delivery stays local.
type Hub struct {
	// userID -> set of connections (one user can have several devices)
	clients map[uuid.UUID]map[*Client]bool
	// topic -> subscribed connections
	rooms map[string]map[*Client]bool
	mu    sync.RWMutex

	register   chan *Client
	unregister chan *Client

	rdb *redis.Client
	// closed once the Redis subscription is confirmed
	ready     chan struct{}
	readyOnce sync.Once
	// closed when Run returns
	done chan struct{}

	// Called when a user opens their first or closes their last connection
	onStatusChange func(userID uuid.UUID, online bool)
}

// NewHub creates a new WebSocket Hub. rdb may be nil for a single instance.
func NewHub(rdb *redis.Client, onStatusChange func(userID uuid.UUID, online bool)) *Hub {
	return &Hub{
		clients:        make(map[uuid.UUID]map[*Client]bool),
		rooms:          make(map[string]map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		rdb:            rdb,
		ready:          make(chan struct{}),
		done:           make(chan struct{}),
		onStatusChange: onStatusChange,
	}
}

// Run starts the Hub's main event loop
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	if h.rdb != nil {
		go h.subscribeRedis(ctx)
	} else {
		h.markReady()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Ready is closed once events published on any instance reach this one
func (h *Hub) Ready() <-chan struct{} {
	return h.ready
}

func (h *Hub) markReady() {
	h.readyOnce.Do(func() { close(h.ready) })
}

// Register queues a client for registration with the hub. It is a no-op
// once the hub has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister queues a client for removal from the hub. It is a no-op once
// the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	first := false
	if _, ok := h.clients[client.UserID]; !ok {
		h.clients[client.UserID] = make(map[*Client]bool)
		first = true
	}
	h.clients[client.UserID][client] = true
	h.joinLocked(messenger.UserTopic(client.UserID), client)
	total := len(h.clients[client.UserID])
	h.mu.Unlock()

	if first && h.onStatusChange != nil {
		go h.onStatusChange(client.UserID, true)
	}
	logger.Debug("ws client connected", "user_id", client.UserID, "connections", total)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	clients, ok := h.clients[client.UserID]
	if !ok || !clients[client] {
		h.mu.Unlock()
		return
	}
	delete(clients, client)
	for topic := range client.topics {
		h.leaveLocked(topic, client)
	}
	close(client.send)
	last := len(clients) == 0
	if last {
		delete(h.clients, client.UserID)
	}
	h.mu.Unlock()

	if last && h.onStatusChange != nil {
		go h.onStatusChange(client.UserID, false)
	}
	logger.Debug("ws client disconnected", "user_id", client.UserID, "offline", last)
}

// Join subscribes a client to a topic. Joining twice is a no-op.
func (h *Hub) Join(topic string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.UserID][client]; !ok {
		return
	}
	h.joinLocked(topic, client)
}

// Leave unsubscribes a client from a topic.
func (h *Hub) Leave(topic string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(topic, client)
}

func (h *Hub) joinLocked(topic string, client *Client) {
	room, ok := h.rooms[topic]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[topic] = room
	}
	room[client] = true
	client.topics[topic] = true
}

func (h *Hub) leaveLocked(topic string, client *Client) {
	delete(client.topics, topic)
	room, ok := h.rooms[topic]
	if !ok {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, topic)
	}
}

// Subscribers returns how many local connections listen on a topic
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[topic])
}

// IsUserOnline checks if a user has any active connections on this instance
func (h *Hub) IsUserOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// Publish delivers an event to every subscriber of the topic, on every
// instance when Redis is configured.
func (h *Hub) Publish(ctx context.Context, topic string, event *model.WSEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if h.rdb == nil {
		h.deliverLocal(topic, data)
		return nil
	}

	payload, err := json.Marshal(envelope{Topic: topic, Event: data})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return h.rdb.Publish(ctx, redisChannel, payload).Err()
}

// SendTo queues an event for one connection only, e.g. an error reply.
func (h *Hub) SendTo(client *Client, event *model.WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("marshal direct event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[client.UserID][client] {
		return
	}
	select {
	case client.send <- data:
	default:
		logger.Warn("ws send buffer full, dropping reply", "user_id", client.UserID)
	}
}

// deliverLocal writes to the send buffer of each subscriber. A subscriber
// whose buffer is full is disconnected instead of stalling the topic.
func (h *Hub) deliverLocal(topic string, data []byte) {
	var slow []*Client

	h.mu.RLock()
	for client := range h.rooms[topic] {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		logger.Warn("ws client too slow, disconnecting", "user_id", client.UserID, "topic", topic)
		go h.Unregister(client)
	}
}

// ========== Redis Pub/Sub for Horizontal Scaling ==========

// envelope carries a topic-addressed event between instances
type envelope struct {
	Topic string          `json:"topic"`
	Event json.RawMessage `json:"event"`
}

// subscribeRedis keeps this instance subscribed until ctx ends, retrying
// with backoff when subscribing fails or the subscription drops
func (h *Hub) subscribeRedis(ctx context.Context) {
	delay := resubscribeMin
	for {
		subscribed, err := h.consumeRedis(ctx)
		if ctx.Err() != nil {
			return
		}
		if subscribed {
			delay = resubscribeMin
		}
		logger.Error("redis pub/sub unavailable, retrying", "channel", redisChannel, "retry_in", delay, "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = min(delay*2, resubscribeMax)
	}
}

// consumeRedis subscribes once and delivers events until the subscription
// ends. It reports whether the subscription was confirmed.
func (h *Hub) consumeRedis(ctx context.Context) (bool, error) {
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return false, err
	}
	h.markReady()

	ch := pubsub.Channel()
	logger.Info("redis pub/sub subscriber started", "channel", redisChannel)

	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return true, errors.New("subscription closed")
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logger.Warn("bad pub/sub payload", "error", err)
				continue
			}
			h.deliverLocal(env.Topic, env.Event)
		}
	}
}
