// Package realtime delivers asynchronous like/comment/notification deltas
// from the server. The websocket client reconnects with capped exponential
// backoff; payloads stay raw until a typed subscriber decodes them.
package realtime

import (
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/clipstream/clipstream-go/pkg/logger"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MessageType identifies a realtime message
type MessageType string

const (
	MessageTypePostLiked       MessageType = "post_liked"
	MessageTypePostUnliked     MessageType = "post_unliked"
	MessageTypeLikeCountUpdate MessageType = "like_count_update"
	MessageTypePostCommented   MessageType = "post_commented"
	MessageTypeNotification    MessageType = "notification"
	MessageTypeHeartbeat       MessageType = "heartbeat"
	MessageTypePong            MessageType = "pong"
	MessageTypeError           MessageType = "error"
)

// Message is the wire envelope
type Message struct {
	Type    MessageType         `json:"type"`
	Payload jsoniter.RawMessage `json:"payload"`
}

// Source is anything that can deliver typed realtime messages: the live
// websocket client or the in-process simulator
type Source interface {
	On(msgType MessageType, fn func(payload []byte)) func()
}

// Config holds websocket client configuration
type Config struct {
	Host                 string
	Port                 int
	Path                 string
	UseTLS               bool
	HeartbeatIntervalMs  int
	ReconnectBaseDelayMs int
	ReconnectMaxDelayMs  int
	MaxReconnectAttempts int
}

// DefaultConfig returns a development configuration
func DefaultConfig() Config {
	return Config{
		Host:                 "localhost",
		Port:                 8787,
		Path:                 "/api/v1/ws",
		UseTLS:               false,
		HeartbeatIntervalMs:  30000,
		ReconnectBaseDelayMs: 2000,
		ReconnectMaxDelayMs:  30000,
		MaxReconnectAttempts: -1, // unlimited
	}
}

// ConnectionState represents the state of the websocket connection
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateError
)

// Client manages the websocket connection to the notification relay
type Client struct {
	config Config
	token  string
	conn   *websocket.Conn
	state  atomic.Value // ConnectionState
	mu     sync.RWMutex

	reconnectAttempts int
	reconnectDelay    int

	listenersMu  sync.RWMutex
	listeners    map[MessageType]map[int]func([]byte)
	nextListener int

	done chan struct{}
}

// NewClient creates a websocket client
func NewClient(config Config) *Client {
	c := &Client{
		config:         config,
		listeners:      make(map[MessageType]map[int]func([]byte)),
		done:           make(chan struct{}),
		reconnectDelay: config.ReconnectBaseDelayMs,
	}
	c.state.Store(StateDisconnected)
	return c
}

// Connect establishes the websocket connection
func (c *Client) Connect(token string) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	c.setState(StateConnecting)

	conn, err := c.dial()
	if err != nil {
		c.setState(StateError)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.setState(StateConnected)
	c.reconnectAttempts = 0
	c.reconnectDelay = c.config.ReconnectBaseDelayMs

	go c.readLoop()
	go c.heartbeatLoop()

	logger.Debug("Realtime connected", "host", c.config.Host, "port", c.config.Port)
	return nil
}

// Disconnect closes the connection and stops reconnecting
func (c *Client) Disconnect() error {
	select {
	case <-c.done:
	default:
		close(c.done)
	}

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.setState(StateDisconnected)
	logger.Debug("Realtime disconnected")
	return nil
}

// IsConnected returns true while the connection is established
func (c *Client) IsConnected() bool {
	return c.getState() == StateConnected
}

// On subscribes to a message type and returns an unsubscribe function
func (c *Client) On(msgType MessageType, fn func(payload []byte)) func() {
	c.listenersMu.Lock()
	if c.listeners[msgType] == nil {
		c.listeners[msgType] = make(map[int]func([]byte))
	}
	id := c.nextListener
	c.nextListener++
	c.listeners[msgType][id] = fn
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		delete(c.listeners[msgType], id)
		c.listenersMu.Unlock()
	}
}

// Send sends a message to the server
func (c *Client) Send(msgType MessageType, payload interface{}) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	var raw jsoniter.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		raw = data
	}

	data, err := json.Marshal(Message{Type: msgType, Payload: raw})
	if err != nil {
		return err
	}

	return conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) dial() (*websocket.Conn, error) {
	scheme := "ws"
	if c.config.UseTLS {
		scheme = "wss"
	}

	u := url.URL{
		Scheme: scheme,
		Host:   fmt.Sprintf("%s:%d", c.config.Host, c.config.Port),
		Path:   c.config.Path,
	}

	if c.token != "" {
		q := u.Query()
		q.Set("token", c.token)
		u.RawQuery = q.Encode()
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	return conn, err
}

func (c *Client) readLoop() {
	defer c.handleDisconnect()

	for {
		select {
		case <-c.done:
			return
		default:
		}

		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			logger.Error("Realtime read error", "error", err)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn("Undecodable realtime message dropped", "error", err)
			continue
		}

		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg Message) {
	c.listenersMu.RLock()
	fns := make([]func([]byte), 0, len(c.listeners[msg.Type]))
	for _, fn := range c.listeners[msg.Type] {
		fns = append(fns, fn)
	}
	c.listenersMu.RUnlock()

	for _, fn := range fns {
		fn(msg.Payload)
	}
}

func (c *Client) heartbeatLoop() {
	ticker := time.NewTicker(time.Duration(c.config.HeartbeatIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if c.IsConnected() {
				if err := c.Send(MessageTypeHeartbeat, nil); err != nil {
					logger.Debug("Failed to send heartbeat", "error", err)
				}
			}
		}
	}
}

func (c *Client) handleDisconnect() {
	select {
	case <-c.done:
		return
	default:
	}

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.setState(StateReconnecting)

	// Reconnect with exponential backoff and jitter
	for {
		if c.config.MaxReconnectAttempts >= 0 && c.reconnectAttempts >= c.config.MaxReconnectAttempts {
			c.setState(StateError)
			logger.Error("Max reconnection attempts reached")
			return
		}

		backoff := time.Duration(c.reconnectDelay) * time.Millisecond
		jitter := time.Duration(rand.Intn(1000)) * time.Millisecond
		waitTime := backoff + jitter

		logger.Debug("Reconnecting realtime", "attempt", c.reconnectAttempts+1, "wait_ms", waitTime.Milliseconds())

		select {
		case <-c.done:
			return
		case <-time.After(waitTime):
		}

		conn, err := c.dial()
		if err != nil {
			c.reconnectAttempts++
			c.reconnectDelay = int(math.Min(
				float64(c.reconnectDelay*2),
				float64(c.config.ReconnectMaxDelayMs),
			))
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()

		c.setState(StateConnected)
		c.reconnectAttempts = 0
		c.reconnectDelay = c.config.ReconnectBaseDelayMs

		logger.Debug("Realtime reconnected")

		go c.readLoop()
		go c.heartbeatLoop()
		return
	}
}

func (c *Client) setState(state ConnectionState) {
	c.state.Store(state)
}

func (c *Client) getState() ConnectionState {
	return c.state.Load().(ConnectionState)
}
