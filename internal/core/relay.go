package core

import "github.com/rs/zerolog/log"

// Relay is the stateless fan-out surface shared by the socket layer and the
// HTTP handlers. It has no except-sender logic: callers that must not echo to
// the emitter filter the target set themselves.
type Relay struct {
	reg *Registry
}

func NewRelay(reg *Registry) *Relay {
	return &Relay{reg: reg}
}

// Emit delivers an event to every connection in the group. Fire and forget:
// encode failures and backpressure drops are logged, never returned.
func (r *Relay) Emit(key GroupKey, ev Event) {
	f, err := Encode(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "core.relay").Str("event", ev.EventName()).Msg("encode failed")
		return
	}
	sent := r.reg.Multicast(key, f)
	log.Debug().Str("module", "core.relay").Str("event", ev.EventName()).Str("group", string(key)).Int("sent_to", sent).Msg("emitted")
}

// Send targets a single connection, used for error events that must reach
// exactly the initiating connection.
func (r *Relay) Send(c Conn, ev Event) {
	f, err := Encode(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "core.relay").Str("event", ev.EventName()).Msg("encode failed")
		return
	}
	if err := c.TrySend(f); err != nil {
		log.Warn().Str("module", "core.relay").Str("conn", string(c.ID())).Str("event", ev.EventName()).Msg("dropped frame on backpressure")
	}
}
