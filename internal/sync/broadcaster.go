// Package sync is the push-update channel that rebroadcasts project
// mutations to every connected dashboard session. It is a read-side
// convenience: the server stays authoritative and a lost push is
// repaired by the next fetch.
package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"clientdesk/internal/model"
	"clientdesk/pkg/metrics"
)

// ProjectUpdatesChannel carries full-project payloads for every
// project mutation.
const ProjectUpdatesChannel = "clientdesk.project-updates"

type Broadcaster struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewBroadcaster(rdb *redis.Client, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		rdb:    rdb,
		logger: logger,
	}
}

// PublishProjectUpdated pushes the entire updated project to all
// subscribers.
func (b *Broadcaster) PublishProjectUpdated(ctx context.Context, p *model.Project) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	if err := b.rdb.Publish(ctx, ProjectUpdatesChannel, body).Err(); err != nil {
		return fmt.Errorf("failed to publish project update: %w", err)
	}

	metrics.SyncEventsPublished.Inc()
	b.logger.Debug("Published project update",
		zap.String("project_id", p.ID),
	)
	return nil
}
