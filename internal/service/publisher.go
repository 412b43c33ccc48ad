package service

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Publisher is the broadcast dependency injected into every service that
// emits events. *broadcast.Broker satisfies it.
type Publisher interface {
	Publish(ctx context.Context, room, eventName string, payload any) error
}

// publish fires an event and swallows failures: the mutation already
// succeeded, so a delivery problem is never surfaced to the HTTP caller.
func publish(ctx context.Context, p Publisher, room, eventName string, payload any) {
	if err := p.Publish(ctx, room, eventName, payload); err != nil {
		log.Warn().
			Err(err).
			Str("room", room).
			Str("event", eventName).
			Msg("broadcast publish failed")
	}
}
