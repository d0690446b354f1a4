package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
)

// Admin wraps the kadm client for the few admin calls the publisher needs.
type Admin struct {
	client *kadm.Client
}

// NewAdmin creates a new Admin
func NewAdmin(client *kadm.Client) *Admin {
	return &Admin{client: client}
}

// BrokerMetadata returns broker metadata (used for health checks)
func (a *Admin) BrokerMetadata(ctx context.Context) (kadm.Metadata, error) {
	return a.client.BrokerMetadata(ctx)
}

// EnsureTopic creates topic unless it already exists.
func (a *Admin) EnsureTopic(ctx context.Context, topic string, partitions int32, replicationFactor int16) error {
	cctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := a.client.CreateTopics(cctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return err
	}

	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return r.Err
		}
	}
	return nil
}
