package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/rsinha/huddle/internal/core"
	"github.com/rsinha/huddle/internal/domain"
)

// Gate authenticates each new transport connection exactly once. A rejected
// connection never touches the registry: it gets a single socketError and
// stays inert until the transport closes it.
type Gate struct {
	resolver IdentityResolver
	users    UserStore
	registry *core.Registry
	relay    *core.Relay
}

func NewGate(resolver IdentityResolver, users UserStore, registry *core.Registry, relay *core.Relay) *Gate {
	return &Gate{resolver: resolver, users: users, registry: registry, relay: relay}
}

// Admit verifies the handshake credential, binds the connection to the
// resolved user and subscribes it to the user's personal group.
func (g *Gate) Admit(ctx context.Context, c core.Conn, credential string) (*domain.User, error) {
	if credential == "" {
		g.deny(c, "Unauthorized handshake. Token is missing")
		return nil, fmt.Errorf("%w: token missing", core.ErrUnauthorized)
	}

	userID, err := g.resolver.Resolve(credential)
	if err != nil {
		g.deny(c, "Unauthorized handshake. Invalid token")
		return nil, err
	}

	user, err := g.users.FindUser(ctx, userID)
	if err != nil {
		// Unresolvable subject reads the same as a bad signature to the client.
		g.deny(c, "Unauthorized handshake. Invalid token")
		return nil, fmt.Errorf("%w: unknown user %s", core.ErrUnauthorized, userID)
	}

	if err := g.registry.Bind(c, user.ID); err != nil {
		g.deny(c, "Something went wrong while connecting to the socket.")
		return nil, fmt.Errorf("%w: %v", core.ErrInternal, err)
	}

	g.relay.Send(c, core.Connected{})
	log.Info().Str("module", "app.gate").Str("conn", string(c.ID())).Str("user", string(user.ID)).Msg("connection admitted")
	return user, nil
}

func (g *Gate) deny(c core.Conn, msg string) {
	g.relay.Send(c, core.SocketError{Message: msg})
	log.Warn().Str("module", "app.gate").Str("conn", string(c.ID())).Str("reason", msg).Msg("handshake rejected")
}
