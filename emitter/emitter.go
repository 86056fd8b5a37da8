// Package emitter publishes session events to an MQTT broker.
//
// The emitter is a plain subscription consumer: it drains one bounded
// subscription and forwards every event as a JSON envelope under a
// per-type topic. Because the subscription already evicts oldest-first,
// a slow or flapping broker degrades to stale-event loss, never to
// backpressure on the engine callback path.
package emitter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/visiona/mediabridge"
)

// Config carries broker settings for one emitter.
type Config struct {
	// Broker is the host:port of the MQTT broker.
	Broker string

	// ClientID identifies this emitter to the broker.
	ClientID string

	// TopicPrefix roots every published topic, e.g. "media/player0".
	TopicPrefix string

	// QoS applies to every publish. Defaults to 0.
	QoS byte

	// ConnectTimeout bounds the initial connect. Defaults to 5s.
	ConnectTimeout time.Duration

	// PublishTimeout bounds each publish. Defaults to 2s.
	PublishTimeout time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.ConnectTimeout <= 0 {
		out.ConnectTimeout = 5 * time.Second
	}
	if out.PublishTimeout <= 0 {
		out.PublishTimeout = 2 * time.Second
	}
	return out
}

// envelope is the wire form of one published event.
type envelope struct {
	Type  string            `json:"type"`
	At    time.Time         `json:"at"`
	Event mediabridge.Event `json:"event"`
}

// Emitter publishes session events to an MQTT broker.
type Emitter struct {
	cfg    Config
	client mqtt.Client

	mu        sync.RWMutex
	connected bool
	published map[string]uint64
	errors    uint64
}

// New creates an emitter; call Connect before Run.
func New(cfg Config) *Emitter {
	return &Emitter{
		cfg:       cfg.withDefaults(),
		published: make(map[string]uint64),
	}
}

// Connect establishes the broker connection with automatic reconnection.
func (e *Emitter) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", e.cfg.Broker))
	opts.SetClientID(e.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(c mqtt.Client) {
		e.mu.Lock()
		e.connected = true
		e.mu.Unlock()
		slog.Info("emitter: mqtt connection established",
			"broker", e.cfg.Broker,
			"client_id", e.cfg.ClientID)
	}

	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		e.mu.Lock()
		e.connected = false
		e.mu.Unlock()
		slog.Warn("emitter: mqtt connection lost, will auto-reconnect",
			"error", err,
			"broker", e.cfg.Broker)
	}

	e.client = mqtt.NewClient(opts)

	slog.Info("emitter: connecting to mqtt broker", "broker", e.cfg.Broker)

	token := e.client.Connect()
	if !token.WaitTimeout(e.cfg.ConnectTimeout) {
		return fmt.Errorf("emitter: mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("emitter: mqtt connection failed: %w", err)
	}

	e.mu.Lock()
	e.connected = true
	e.mu.Unlock()

	return nil
}

// Run drains the subscription until it finishes or ctx is cancelled.
// Publish failures are counted and logged, never fatal: the stream
// continues with the next event.
func (e *Emitter) Run(ctx context.Context, sub *mediabridge.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-sub.Events():
			if !ok {
				slog.Info("emitter: subscription finished, stopping")
				return nil
			}
			if err := e.publish(ev); err != nil {
				slog.Warn("emitter: publish failed", "type", ev.Type(), "error", err)
			}
		}
	}
}

// publish forwards one event to its per-type topic.
func (e *Emitter) publish(ev mediabridge.Event) error {
	if !e.isConnected() {
		e.countError()
		return fmt.Errorf("mqtt not connected")
	}

	topic := topicFor(e.cfg.TopicPrefix, ev)

	payload, err := encode(ev, time.Now().UTC())
	if err != nil {
		e.countError()
		return fmt.Errorf("encode event: %w", err)
	}

	token := e.client.Publish(topic, e.cfg.QoS, false, payload)
	if !token.WaitTimeout(e.cfg.PublishTimeout) {
		e.countError()
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		e.countError()
		return fmt.Errorf("publish failed: %w", err)
	}

	e.mu.Lock()
	e.published[topic]++
	e.mu.Unlock()

	slog.Debug("emitter: event published", "topic", topic, "size", len(payload))
	return nil
}

// Close disconnects from the broker.
func (e *Emitter) Close() {
	if e.client != nil && e.client.IsConnected() {
		e.client.Disconnect(250)
		slog.Info("emitter: mqtt disconnected")
	}

	e.mu.Lock()
	e.connected = false
	e.mu.Unlock()
}

// Stats contains emitter counters.
type Stats struct {
	Connected bool
	Published map[string]uint64
	Errors    uint64
}

// Stats returns a snapshot of the emitter counters.
func (e *Emitter) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	published := make(map[string]uint64, len(e.published))
	for k, v := range e.published {
		published[k] = v
	}

	return Stats{
		Connected: e.connected,
		Published: published,
		Errors:    e.errors,
	}
}

func (e *Emitter) isConnected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected
}

func (e *Emitter) countError() {
	e.mu.Lock()
	e.errors++
	e.mu.Unlock()
}

// topicFor builds the per-type topic: <prefix>/events/<type>.
func topicFor(prefix string, ev mediabridge.Event) string {
	return fmt.Sprintf("%s/events/%s", prefix, ev.Type())
}

// encode marshals one event into its JSON envelope.
func encode(ev mediabridge.Event, at time.Time) ([]byte, error) {
	return json.Marshal(envelope{Type: ev.Type(), At: at, Event: ev})
}
