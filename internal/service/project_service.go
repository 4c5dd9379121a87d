package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontracts "clientdesk/contracts/mq"
	"clientdesk/internal/model"
)

// ProjectRepo is the persistence surface the project service needs.
// *repository.ProjectRepository satisfies it.
type ProjectRepo interface {
	Insert(ctx context.Context, p *model.Project) error
	List(ctx context.Context) ([]model.Project, error)
	GetByID(ctx context.Context, id string) (*model.Project, error)
	UpdateFields(ctx context.Context, id string, upd model.ProjectUpdate) (*model.Project, error)
	UpdateStage(ctx context.Context, id string, patch model.StagePatch, now time.Time) (*model.Project, error)
	Delete(ctx context.Context, id string) error
}

// SyncPublisher pushes full-project payloads to connected dashboards.
// *sync.Broadcaster satisfies it.
type SyncPublisher interface {
	PublishProjectUpdated(ctx context.Context, p *model.Project) error
}

// EventPublisher emits routing-keyed domain events. *mq.Publisher
// satisfies it.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type ProjectService struct {
	repo   ProjectRepo
	sync   SyncPublisher
	events EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

func NewProjectService(repo ProjectRepo, sync SyncPublisher, events EventPublisher, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		repo:   repo,
		sync:   sync,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// Create builds a project from the descriptive fields and attaches the
// fixed 10-stage plan server-side.
func (s *ProjectService) Create(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	if in.ClientName == "" || in.ProjectName == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: clientName, projectName and email are required", model.ErrValidation)
	}
	if in.TotalAmount < 0 {
		return nil, fmt.Errorf("%w: totalAmount must not be negative", model.ErrValidation)
	}

	now := s.now()
	p := &model.Project{
		ID:          uuid.NewString(),
		ClientName:  in.ClientName,
		Email:       in.Email,
		Phone:       in.Phone,
		CompanyName: in.CompanyName,
		ProjectName: in.ProjectName,
		TechStack:   in.TechStack,
		ProjectType: in.ProjectType,
		StartDate:   in.StartDate,
		Deadline:    in.Deadline,
		TotalAmount: in.TotalAmount,
		Stages:      model.NewStageTemplate(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}

	s.publishEvent(mqcontracts.KeyProjectCreated, mqcontracts.ProjectCreatedPayload{
		ProjectID:   p.ID,
		ClientName:  p.ClientName,
		ProjectName: p.ProjectName,
		CreatedAt:   p.CreatedAt,
	})
	return p, nil
}

// List returns every project.
func (s *ProjectService) List(ctx context.Context) ([]model.Project, error) {
	return s.repo.List(ctx)
}

// Get returns one project by id.
func (s *ProjectService) Get(ctx context.Context, id string) (*model.Project, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial descriptive-field update and rebroadcasts
// the full project on the sync channel.
func (s *ProjectService) Update(ctx context.Context, id string, upd model.ProjectUpdate) (*model.Project, error) {
	if upd.TotalAmount != nil && *upd.TotalAmount < 0 {
		return nil, fmt.Errorf("%w: totalAmount must not be negative", model.ErrValidation)
	}

	p, err := s.repo.UpdateFields(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	s.broadcast(ctx, p)
	return p, nil
}

// UpdateStage patches one stage and always returns the entire updated
// project, so server-computed fields like paidAmount travel with the
// stage change.
func (s *ProjectService) UpdateStage(ctx context.Context, id string, patch model.StagePatch) (*model.Project, error) {
	if patch.StageID < 1 || patch.StageID > model.StageCount {
		return nil, fmt.Errorf("%w: stage id must be 1..%d", model.ErrValidation, model.StageCount)
	}
	if patch.Status != nil && !model.ValidStageStatus(*patch.Status) {
		return nil, fmt.Errorf("%w: unknown stage status %q", model.ErrValidation, *patch.Status)
	}
	if patch.PaymentStatus != nil && !model.ValidPaymentStatus(*patch.PaymentStatus) {
		return nil, fmt.Errorf("%w: unknown payment status %q", model.ErrValidation, *patch.PaymentStatus)
	}
	if patch.Payment != nil && *patch.Payment < 0 {
		return nil, fmt.Errorf("%w: payment must not be negative", model.ErrValidation)
	}

	p, err := s.repo.UpdateStage(ctx, id, patch, s.now())
	if err != nil {
		return nil, err
	}

	s.broadcast(ctx, p)
	return p, nil
}

// Delete removes a project at the service boundary.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// broadcast pushes the full project to the sync channel and emits the
// MQ event. Both are read-side conveniences; failures are logged and
// never fail the mutation.
func (s *ProjectService) broadcast(ctx context.Context, p *model.Project) {
	if s.sync != nil {
		if err := s.sync.PublishProjectUpdated(ctx, p); err != nil {
			s.logger.Warn("Failed to publish sync update",
				zap.String("project_id", p.ID),
				zap.Error(err),
			)
		}
	}
	s.publishEvent(mqcontracts.KeyProjectUpdated, mqcontracts.ProjectUpdatedPayload{
		ProjectID: p.ID,
		Progress:  p.Progress(),
		UpdatedAt: p.UpdatedAt,
	})
}

func (s *ProjectService) publishEvent(key string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(key, payload); err != nil {
		s.logger.Warn("Failed to publish event", zap.String("routing_key", key), zap.Error(err))
	}
}
