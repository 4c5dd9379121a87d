package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontracts "clientdesk/contracts/mq"
	"clientdesk/internal/model"
	"clientdesk/pkg/metrics"
)

// OfferRepo is the persistence surface the offer service needs.
// *repository.OfferRepository satisfies it.
type OfferRepo interface {
	InsertOffer(ctx context.Context, o *model.Offer) error
	ListOffers(ctx context.Context) ([]model.Offer, error)
	GetOffer(ctx context.Context, id string) (*model.Offer, error)
	UpdateOffer(ctx context.Context, id string, in model.OfferInput) (*model.Offer, error)
	DeleteOffer(ctx context.Context, id string) error
	InsertAssignment(ctx context.Context, a *model.AssignedOffer) error
	ListAssignments(ctx context.Context, clientID string) ([]model.AssignedOffer, error)
	GetAssignment(ctx context.Context, id string) (*model.AssignedOffer, error)
	UpdateAssignment(ctx context.Context, a *model.AssignedOffer) (*model.AssignedOffer, error)
}

type OfferService struct {
	repo   OfferRepo
	events EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

func NewOfferService(repo OfferRepo, events EventPublisher, logger *zap.Logger) *OfferService {
	return &OfferService{
		repo:   repo,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

func validateOfferInput(in model.OfferInput) error {
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	if !model.ValidCategory(in.Category) {
		return fmt.Errorf("%w: unknown category %q", model.ErrValidation, in.Category)
	}
	if in.ValidityDays < 1 {
		return fmt.Errorf("%w: validityDays must be positive", model.ErrValidation)
	}
	return nil
}

// CreateOffer stores a new admin-authored offer template.
func (s *OfferService) CreateOffer(ctx context.Context, in model.OfferInput) (*model.Offer, error) {
	if err := validateOfferInput(in); err != nil {
		return nil, err
	}

	o := &model.Offer{
		ID:           uuid.NewString(),
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		Terms:        in.Terms,
		ValidityDays: in.ValidityDays,
		IsActive:     in.IsActive,
		CreatedAt:    s.now(),
	}
	if err := s.repo.InsertOffer(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvent(mqcontracts.KeyOfferCreated, mqcontracts.OfferCreatedPayload{
		OfferID:   o.ID,
		Title:     o.Title,
		Category:  string(o.Category),
		CreatedAt: o.CreatedAt,
	})
	return o, nil
}

// ListOffers returns every offer template.
func (s *OfferService) ListOffers(ctx context.Context) ([]model.Offer, error) {
	return s.repo.ListOffers(ctx)
}

// UpdateOffer edits a template in place. Existing assignments keep
// their snapshot; only future assignments see the new values.
func (s *OfferService) UpdateOffer(ctx context.Context, id string, in model.OfferInput) (*model.Offer, error) {
	if err := validateOfferInput(in); err != nil {
		return nil, err
	}
	return s.repo.UpdateOffer(ctx, id, in)
}

// DeleteOffer removes a template without cascading to assignments.
func (s *OfferService) DeleteOffer(ctx context.Context, id string) error {
	return s.repo.DeleteOffer(ctx, id)
}

// Assign grants an active offer to a client. The assignment snapshots
// the offer and derives its expiry once, from a single captured now.
func (s *OfferService) Assign(ctx context.Context, offerID, clientID, clientName, notes string) (*model.AssignedOffer, error) {
	if clientID == "" || clientName == "" {
		return nil, fmt.Errorf("%w: clientId and clientName are required", model.ErrValidation)
	}

	offer, err := s.repo.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !offer.IsActive {
		return nil, fmt.Errorf("%w: offer %s is not active", model.ErrValidation, offerID)
	}

	now := s.now()
	a := &model.AssignedOffer{
		ID:           uuid.NewString(),
		OfferID:      offer.ID,
		Offer:        *offer,
		ClientID:     clientID,
		ClientName:   clientName,
		Status:       model.StatusAssigned,
		AssignedDate: now,
		ExpiryDate:   model.ExpiryFor(now, offer.ValidityDays),
		Notes:        notes,
	}
	if err := s.repo.InsertAssignment(ctx, a); err != nil {
		return nil, err
	}

	s.publishEvent(mqcontracts.KeyOfferAssigned, mqcontracts.OfferAssignedPayload{
		AssignmentID: a.ID,
		OfferID:      a.OfferID,
		ClientID:     a.ClientID,
		ClientName:   a.ClientName,
		ExpiryDate:   a.ExpiryDate,
	})
	return a, nil
}

// ListAssignments returns assignments, optionally for one client.
func (s *OfferService) ListAssignments(ctx context.Context, clientID string) ([]model.AssignedOffer, error) {
	return s.repo.ListAssignments(ctx, clientID)
}

// Claim moves an assignment from assigned to active and stamps
// claimedDate. Claiming anything but an assigned offer is rejected.
func (s *OfferService) Claim(ctx context.Context, assignmentID string) (*model.AssignedOffer, error) {
	a, err := s.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.Status != model.StatusAssigned {
		return nil, fmt.Errorf("%w: cannot claim offer in status %q", model.ErrInvalidTransition, a.Status)
	}

	now := s.now()
	a.Status = model.StatusActive
	a.ClaimedDate = &now

	updated, err := s.repo.UpdateAssignment(ctx, a)
	if err != nil {
		return nil, err
	}

	metrics.IncrementOfferTransition(string(model.StatusAssigned), string(model.StatusActive))
	s.publishEvent(mqcontracts.KeyOfferStatusChanged, mqcontracts.OfferStatusChangedPayload{
		AssignmentID: assignmentID,
		From:         string(model.StatusAssigned),
		To:           string(model.StatusActive),
		At:           now,
	})
	return updated, nil
}

// UpdateAssignmentStatus moves an assignment along the lifecycle,
// stamping the date that belongs to the target status.
func (s *OfferService) UpdateAssignmentStatus(ctx context.Context, assignmentID string, status model.AssignmentStatus, notes string) (*model.AssignedOffer, error) {
	if !model.ValidAssignmentStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, status)
	}

	a, err := s.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	from := a.Status
	if !model.CanTransition(from, status) {
		return nil, fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, from, status)
	}

	now := s.now()
	a.Status = status
	switch status {
	case model.StatusActive:
		a.ClaimedDate = &now
	case model.StatusUsed:
		a.UsedDate = &now
	case model.StatusConverted:
		a.ConvertedDate = &now
	}
	if notes != "" {
		a.Notes = notes
	}

	updated, err := s.repo.UpdateAssignment(ctx, a)
	if err != nil {
		return nil, err
	}

	metrics.IncrementOfferTransition(string(from), string(status))
	s.publishEvent(mqcontracts.KeyOfferStatusChanged, mqcontracts.OfferStatusChangedPayload{
		AssignmentID: assignmentID,
		From:         string(from),
		To:           string(status),
		At:           now,
	})
	return updated, nil
}

func (s *OfferService) publishEvent(key string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(key, payload); err != nil {
		s.logger.Warn("Failed to publish event", zap.String("routing_key", key), zap.Error(err))
	}
}
