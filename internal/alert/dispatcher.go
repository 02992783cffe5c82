// Package alert defines the boundary between the monitoring core and the
// notification system. The core builds structured payloads and hands them to
// a Dispatcher; rendering and delivery per channel live outside this module.
package alert

import (
	"context"

	"github.com/rs/zerolog"
)

// Channel identifies a delivery channel a payload may be routed to.
type Channel string

const (
	ChannelLog     Channel = "log"
	ChannelEmail   Channel = "email"
	ChannelChat    Channel = "chat"
	ChannelSMS     Channel = "sms"
	ChannelWebhook Channel = "webhook"
)

// Routes maps each severity to the channels it should reach. Routing is
// table-driven so adding a channel never touches dispatch logic.
var Routes = map[Severity][]Channel{
	SeverityInfo:     {ChannelLog},
	SeverityWarning:  {ChannelLog, ChannelChat},
	SeverityCritical: {ChannelLog, ChannelChat, ChannelEmail, ChannelSMS},
}

// ChannelsFor returns the channels a payload of the given severity routes to.
func ChannelsFor(s Severity) []Channel {
	return Routes[s]
}

// Payload is the structured alert record the core emits.
type Payload struct {
	Type     string         `json:"type"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Dispatcher delivers alert payloads. Implementations own retry and
// per-channel formatting; a dispatch failure must never fail a monitoring
// cycle, so callers log returned errors and continue.
type Dispatcher interface {
	Dispatch(ctx context.Context, p Payload) error
}

// LogDispatcher writes payloads to the daemon log. It is the in-tree
// implementation; real delivery channels plug in behind the same interface.
type LogDispatcher struct {
	Log zerolog.Logger
}

// Dispatch logs the payload at a level matching its severity.
func (d LogDispatcher) Dispatch(_ context.Context, p Payload) error {
	evt := d.Log.Info()
	switch p.Severity {
	case SeverityWarning:
		evt = d.Log.Warn()
	case SeverityCritical:
		evt = d.Log.Error()
	}
	evt.Str("alert_type", p.Type).
		Str("severity", p.Severity.String()).
		Interface("metadata", p.Metadata).
		Msg(p.Message)
	return nil
}
