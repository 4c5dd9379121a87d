package sync

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"clientdesk/internal/model"
)

// Handler receives each decoded project payload.
type Handler func(p *model.Project)

// Subscriber delivers project-update pushes to one dashboard session.
// Closing it tears down only the subscription; in-flight HTTP requests
// are unaffected.
type Subscriber struct {
	pubsub  *redis.PubSub
	handler Handler
	logger  *zap.Logger
}

func NewSubscriber(ctx context.Context, rdb *redis.Client, handler Handler, logger *zap.Logger) *Subscriber {
	return &Subscriber{
		pubsub:  rdb.Subscribe(ctx, ProjectUpdatesChannel),
		handler: handler,
		logger:  logger,
	}
}

// Start consumes pushes until the subscription is closed or ctx ends.
// It blocks and should be called in a goroutine.
func (s *Subscriber) Start(ctx context.Context) {
	ch := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var p model.Project
			if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
				s.logger.Error("Failed to decode project update", zap.Error(err))
				continue
			}
			s.handler(&p)
		}
	}
}

func (s *Subscriber) Close() error {
	return s.pubsub.Close()
}
