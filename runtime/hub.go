package runtime

import (
	"context"
	"dm-lab/contract"
	"dm-lab/domain/event"
	"log/slog"
	"strings"
	"time"
)

const (
	identityChannelPrefix  = "user:"
	auxiliaryChannelPrefix = "aux:"
)

// IdentityChannel is the private channel of an identity. Only the hub binds connections to it.
func IdentityChannel(identityID string) string {
	return identityChannelPrefix + identityID
}

// AuxiliaryChannel namespaces client-requested channels so they can never alias an identity channel.
func AuxiliaryChannel(name string) string {
	return auxiliaryChannelPrefix + name
}

// Hub authenticates connections once, binds them to their identity channel and delivers events.
type Hub struct {
	log         *slog.Logger
	registry    contract.IRegistry
	verifier    contract.TokenVerifier
	sinkTimeout time.Duration
}

func NewHub(log *slog.Logger, registry contract.IRegistry, verifier contract.TokenVerifier, sinkTimeout time.Duration) *Hub {
	return &Hub{log: log, registry: registry, verifier: verifier, sinkTimeout: sinkTimeout}
}

// Authenticate decodes the session credential presented at handshake time.
func (h *Hub) Authenticate(token string) (string, error) {
	return h.verifier.Verify(token)
}

// Connect binds an authenticated connection to its identity channel.
func (h *Hub) Connect(connectionID, identityID string, sink contract.EventSink) {
	h.registry.Subscribe(connectionID, IdentityChannel(identityID), sink)
	h.log.Debug("Connection bound", "connection_id", connectionID, "user_id", identityID)
}

// Join adds the connection to an auxiliary channel. No authorization is performed here.
func (h *Hub) Join(connectionID, name string, sink contract.EventSink) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	h.registry.Subscribe(connectionID, AuxiliaryChannel(name), sink)
	return true
}

func (h *Hub) Leave(connectionID, name string) {
	h.registry.Unsubscribe(connectionID, AuxiliaryChannel(strings.TrimSpace(name)))
}

// Disconnect releases every membership of the connection.
func (h *Hub) Disconnect(connectionID string) {
	h.registry.Disconnect(connectionID)
	h.log.Debug("Connection released", "connection_id", connectionID)
}

// Deliver pushes the event to every connection bound to its recipients (or to its auxiliary channel).
// Failures are logged and swallowed: delivery is best-effort, the REST read path stays authoritative.
func (h *Hub) Deliver(ctx context.Context, evt event.Event) int {
	channels := make([]string, 0, len(evt.Recipients)+1)
	for _, recipient := range evt.Recipients {
		channels = append(channels, IdentityChannel(recipient))
	}
	if evt.Channel != "" {
		channels = append(channels, AuxiliaryChannel(evt.Channel))
	}

	delivered := 0
	for _, sink := range h.registry.GetSinksForChannels(channels...) {
		sinkCtx, cancel := context.WithTimeout(ctx, h.sinkTimeout)
		err := sink.Consume(sinkCtx, evt)
		cancel()
		if err != nil {
			h.log.Warn("Event not delivered", "event", evt.Name, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

func (h *Hub) Stats() contract.RegistryStats {
	return h.registry.Stats()
}
