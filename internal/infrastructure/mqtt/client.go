package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ndtrung-dev/sensorgate/internal/infrastructure/config"
)

// maxPayloadSize caps outbound publishes at 1 MB, in line with common
// broker limits. Sensor readings are a few dozen bytes; anything near
// this limit is a caller bug.
const maxPayloadSize = 1 << 20

// Logger is the minimal logging surface the client needs for reporting
// handler failures. logging.Logger satisfies it.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// MessageHandler receives one decoded broker message.
//
// Paho delivers messages for a subscription sequentially on its router
// goroutine, so a handler never runs concurrently with itself and
// per-topic ordering is preserved — the relay's "latest reading wins"
// behaviour relies on this. A returned error is logged and the message
// is dropped; it does not affect acknowledgement.
type MessageHandler func(topic string, payload []byte) error

// subscription remembers what to re-subscribe after a reconnect.
type subscription struct {
	qos     byte
	handler MessageHandler
}

// Client is the gateway's connection to the MQTT broker.
//
// On top of paho it adds: a tracked subscription set that is restored
// after automatic reconnects, panic-safe handler dispatch, and an
// online/offline announcement on the system status topic backed by a
// broker-side last will for crash detection.
//
// All methods are safe for concurrent use.
type Client struct {
	cfg  config.MQTTConfig
	paho pahomqtt.Client

	mu            sync.RWMutex // guards connected and subscriptions
	connected     bool
	subscriptions map[string]subscription

	cbMu         sync.RWMutex
	onConnect    func()
	onDisconnect func(err error)

	logMu  sync.RWMutex
	logger Logger
}

// Connect dials the broker and waits for the session to come up.
//
// The returned client already has its last will registered, so a later
// crash publishes an offline status without any cooperation from us.
// Reconnection is handled by paho; tracked subscriptions are replayed
// each time the session is re-established.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{
		cfg:           cfg,
		subscriptions: make(map[string]subscription),
	}

	opts := buildOptions(cfg)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) { c.handleConnect() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.handleDisconnect(err) })

	c.paho = pahomqtt.NewClient(opts)
	token := c.paho.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect callback runs asynchronously and may not have fired
	// yet; mark connected here so IsConnected is true on return.
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()

	return c, nil
}

// Subscribe registers a handler for a topic and tracks it for replay
// after reconnects. The sensor reading topics carry no wildcard
// separators, so each sensor type needs its own subscription.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > 2 {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.mu.Lock()
	c.subscriptions[topic] = subscription{qos: qos, handler: handler}
	c.mu.Unlock()

	token := c.paho.Subscribe(topic, qos, c.dispatch(handler))
	if ok := token.WaitTimeout(ackTimeout); !ok || token.Error() != nil {
		// Broker refused it; forget the subscription so a reconnect
		// does not replay something that never existed.
		c.mu.Lock()
		delete(c.subscriptions, topic)
		c.mu.Unlock()

		if !ok {
			return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, ackTimeout)
		}
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, token.Error())
	}

	return nil
}

// Publish sends a payload to a topic at the given QoS. Retained messages
// are used only for the status topic; readings are never retained — the
// latest-value cache serves late joiners instead.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > 2 {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes",
			ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.paho.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(ackTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, ackTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// Close announces a graceful offline status (distinguishable from the
// last-will crash status by its reason field), then disconnects.
func (c *Client) Close() error {
	if c.paho == nil {
		return nil
	}

	if c.IsConnected() {
		payload := statusPayload(c.cfg.Broker.ClientID, "offline", "graceful_shutdown")
		token := c.paho.Publish(Topics{}.SystemStatus(), byte(c.cfg.QoS), true, payload)
		token.WaitTimeout(ackTimeout)
	}

	c.paho.Disconnect(disconnectQuiesceMs)

	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	return nil
}

// HealthCheck reports whether the broker session is up.
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports the last known connection state.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && c.paho.IsConnected()
}

// SetOnConnect registers a callback fired on every (re)connect.
func (c *Client) SetOnConnect(callback func()) {
	c.cbMu.Lock()
	c.onConnect = callback
	c.cbMu.Unlock()
}

// SetOnDisconnect registers a callback fired when the session drops.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.cbMu.Lock()
	c.onDisconnect = callback
	c.cbMu.Unlock()
}

// SetLogger enables handler failure logging. Without one, handler
// errors and recovered panics are swallowed.
func (c *Client) SetLogger(logger Logger) {
	c.logMu.Lock()
	c.logger = logger
	c.logMu.Unlock()
}

func (c *Client) getLogger() Logger {
	c.logMu.RLock()
	defer c.logMu.RUnlock()
	return c.logger
}

// handleConnect runs on every session establishment: replay tracked
// subscriptions, announce online, then notify the registered callback.
func (c *Client) handleConnect() {
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()

	c.mu.RLock()
	for topic, sub := range c.subscriptions {
		// Errors are ignored here; paho retries the session and this
		// runs again on the next successful connect.
		c.paho.Subscribe(topic, sub.qos, c.dispatch(sub.handler))
	}
	c.mu.RUnlock()

	online := statusPayload(c.cfg.Broker.ClientID, "online", "")
	c.paho.Publish(Topics{}.SystemStatus(), byte(c.cfg.QoS), true, online)

	c.cbMu.RLock()
	callback := c.onConnect
	c.cbMu.RUnlock()
	if callback != nil {
		callback()
	}
}

func (c *Client) handleDisconnect(err error) {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	c.cbMu.RLock()
	callback := c.onDisconnect
	c.cbMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

// dispatch adapts a MessageHandler to paho's callback, containing panics
// and logging failures so one bad message cannot kill the router.
func (c *Client) dispatch(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("MQTT handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT handler returned error",
					"topic", msg.Topic(),
					"error", err,
				)
			}
		}
	}
}
