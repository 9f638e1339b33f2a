package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ndtrung-dev/sensorgate/internal/infrastructure/config"
)

const (
	// connectTimeout bounds the initial broker dial.
	connectTimeout = 10 * time.Second

	// ackTimeout bounds waiting for publish/subscribe acknowledgements.
	ackTimeout = 5 * time.Second

	// disconnectQuiesceMs lets in-flight operations drain before the
	// connection is torn down.
	disconnectQuiesceMs = 1000

	// keepAlive is how often the session is probed for liveness.
	keepAlive = 60 * time.Second
)

// buildOptions translates the gateway config into paho client options:
// broker URL, credentials, clean session, automatic reconnect with the
// configured backoff, and the last-will offline announcement.
func buildOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))
	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// No persistent broker session: subscriptions are replayed from our
	// own tracking on reconnect instead.
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)

	opts.SetConnectTimeout(connectTimeout)
	opts.SetKeepAlive(keepAlive)

	// Last will: the broker publishes this on our behalf if the session
	// dies without a graceful Close, so dashboards see the crash.
	will := statusPayload(cfg.Broker.ClientID, "offline", "unexpected_disconnect")
	opts.SetBinaryWill(Topics{}.SystemStatus(), will, 1, true)

	return opts
}

// statusMessage is the body published on the system status topic.
type statusMessage struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

// statusPayload builds a status announcement. An empty reason is
// omitted (used for "online"; offline statuses carry the cause).
func statusPayload(clientID, status, reason string) []byte {
	payload, _ := json.Marshal(statusMessage{ //nolint:errcheck // fixed shape cannot fail to marshal
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return payload
}
