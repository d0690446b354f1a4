package application

import (
	"context"

	"github.com/OliveiraNt/polyglot/internal/domain"
	"github.com/OliveiraNt/polyglot/internal/utils"
)

const relayBuffer = 16

// ReloadRelay forwards repository reload events to an EventPublisher from its
// own goroutine, so a slow broker never holds up a reload.
type ReloadRelay struct {
	publisher domain.EventPublisher
	events    chan domain.ReloadEvent
}

// NewReloadRelay creates a relay for publisher.
func NewReloadRelay(publisher domain.EventPublisher) *ReloadRelay {
	return &ReloadRelay{
		publisher: publisher,
		events:    make(chan domain.ReloadEvent, relayBuffer),
	}
}

// Handle queues ev. It is meant to be passed to CatalogRepository.Subscribe.
// Events are dropped when the queue is full.
func (r *ReloadRelay) Handle(ev domain.ReloadEvent) {
	select {
	case r.events <- ev:
	default:
		utils.Logger.Warn("reload event queue full, dropping event", "id", ev.ID)
	}
}

// Run publishes queued events until ctx is done. Publish failures are logged
// and do not stop the relay.
func (r *ReloadRelay) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-r.events:
			if err := r.publisher.Publish(ctx, ev); err != nil {
				utils.Logger.Warn("failed to publish reload event", "id", ev.ID, "err", err)
				continue
			}
			utils.Logger.Info("reload event published", "id", ev.ID, "default", ev.Default)
		}
	}
}
