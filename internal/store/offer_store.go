package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clientdesk/internal/model"
)

// OfferAPI is the remote surface the offer store talks to.
// *apiclient.Client satisfies it.
type OfferAPI interface {
	ListOffers(ctx context.Context) ([]model.Offer, error)
	CreateOffer(ctx context.Context, in model.OfferInput) (*model.Offer, error)
	AssignOffer(ctx context.Context, offerID, clientID, clientName, notes string) (*model.AssignedOffer, error)
	ListAssignedOffers(ctx context.Context, clientID string) ([]model.AssignedOffer, error)
	ClaimOffer(ctx context.Context, assignmentID string) (*model.AssignedOffer, error)
	UpdateAssignedStatus(ctx context.Context, assignmentID string, status model.AssignmentStatus, notes string) (*model.AssignedOffer, error)
}

// OfferStore owns the cached offer templates and assignments for one
// session. Reads are stale-but-available: a failed fetch keeps the
// prior cache. Lifecycle mutations are optimistic with compensation:
// the prior assignment is snapshotted, the change applied locally, and
// the snapshot restored if the remote call fails.
type OfferStore struct {
	mu       sync.Mutex
	api      OfferAPI
	logger   *zap.Logger
	now      func() time.Time
	offers   []model.Offer
	assigned []model.AssignedOffer
	lastErr  string
	loading  bool
}

func NewOfferStore(api OfferAPI, logger *zap.Logger) *OfferStore {
	return &OfferStore{
		api:    api,
		logger: logger,
		now:    time.Now,
	}
}

// Offers returns a snapshot of the cached templates.
func (s *OfferStore) Offers() []model.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Offer, len(s.offers))
	copy(out, s.offers)
	return out
}

// Assigned returns a snapshot of the cached assignments.
func (s *OfferStore) Assigned() []model.AssignedOffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AssignedOffer, len(s.assigned))
	copy(out, s.assigned)
	return out
}

// Err returns the last operation error, empty when the last operation
// succeeded.
func (s *OfferStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *OfferStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *OfferStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// FetchOffers replaces the template cache from the remote collection,
// keeping the stale cache on failure.
func (s *OfferStore) FetchOffers(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	offers, err := s.api.ListOffers(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err.Error()
		s.logger.Error("Failed to fetch offers", zap.Error(err))
		return err
	}
	s.offers = offers
	s.lastErr = ""
	return nil
}

// FetchAssigned replaces the assignment cache from the remote
// collection, keeping the stale cache on failure.
func (s *OfferStore) FetchAssigned(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	assigned, err := s.api.ListAssignedOffers(ctx, "")
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err.Error()
		s.logger.Error("Failed to fetch assigned offers", zap.Error(err))
		return err
	}
	s.assigned = assigned
	s.lastErr = ""
	return nil
}

// CreateOffer creates a template remotely and appends it to the cache
// under its server-assigned id.
func (s *OfferStore) CreateOffer(ctx context.Context, in model.OfferInput) (*model.Offer, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	o, err := s.api.CreateOffer(ctx, in)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err.Error()
		s.logger.Error("Failed to create offer", zap.Error(err))
		return nil, err
	}
	s.offers = append(s.offers, *o)
	s.lastErr = ""
	return o, nil
}

// AssignToClient grants an offer remotely. Nothing is inserted
// locally; the caller refreshes the assignments afterwards.
func (s *OfferStore) AssignToClient(ctx context.Context, offerID, clientID, clientName, notes string) error {
	_, err := s.api.AssignOffer(ctx, offerID, clientID, clientName, notes)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err.Error()
		s.logger.Error("Failed to assign offer",
			zap.String("offer_id", offerID),
			zap.String("client_id", clientID),
			zap.Error(err),
		)
		return err
	}
	s.lastErr = ""
	return nil
}

// AssignLocal synthesizes an assignment entirely client-side from the
// cached template. Demo mode only; nothing reaches the remote service.
func (s *OfferStore) AssignLocal(offerID, clientID, clientName, notes string) (*model.AssignedOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var offer *model.Offer
	for i := range s.offers {
		if s.offers[i].ID == offerID {
			offer = &s.offers[i]
			break
		}
	}
	if offer == nil {
		return nil, fmt.Errorf("%w: offer %s not in cache", model.ErrNotFound, offerID)
	}

	now := s.now()
	a := model.AssignedOffer{
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
	s.assigned = append(s.assigned, a)
	return &a, nil
}

// ClaimOffer moves an assigned offer to active. The change is applied
// optimistically and rolled back if the remote PUT fails. Claiming an
// offer in any other status is rejected without touching anything.
func (s *OfferStore) ClaimOffer(ctx context.Context, assignmentID string) error {
	s.mu.Lock()
	idx := s.indexOfLocked(assignmentID)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: assignment %s", model.ErrNotFound, assignmentID)
	}
	if s.assigned[idx].Status != model.StatusAssigned {
		status := s.assigned[idx].Status
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot claim offer in status %q", model.ErrInvalidTransition, status)
	}

	snapshot := s.assigned[idx]
	now := s.now()
	s.assigned[idx].Status = model.StatusActive
	s.assigned[idx].ClaimedDate = &now
	s.mu.Unlock()

	updated, err := s.api.ClaimOffer(ctx, assignmentID)

	s.mu.Lock()
	defer s.mu.Unlock()
	idx = s.indexOfLocked(assignmentID)
	if err != nil {
		if idx >= 0 {
			s.assigned[idx] = snapshot
		}
		s.lastErr = err.Error()
		s.logger.Error("Claim failed, rolled back", zap.String("id", assignmentID), zap.Error(err))
		return err
	}
	if idx >= 0 && updated != nil {
		s.assigned[idx] = *updated
	}
	s.lastErr = ""
	return nil
}

// UpdateAssignedStatus moves an assignment along the lifecycle with
// the same optimistic-with-compensation contract as ClaimOffer,
// auto-stamping the date that belongs to the target status.
func (s *OfferStore) UpdateAssignedStatus(ctx context.Context, assignmentID string, status model.AssignmentStatus, notes string) error {
	s.mu.Lock()
	idx := s.indexOfLocked(assignmentID)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: assignment %s", model.ErrNotFound, assignmentID)
	}
	from := s.assigned[idx].Status
	if !model.CanTransition(from, status) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, from, status)
	}

	snapshot := s.assigned[idx]
	now := s.now()
	s.assigned[idx].Status = status
	switch status {
	case model.StatusActive:
		s.assigned[idx].ClaimedDate = &now
	case model.StatusUsed:
		s.assigned[idx].UsedDate = &now
	case model.StatusConverted:
		s.assigned[idx].ConvertedDate = &now
	}
	if notes != "" {
		s.assigned[idx].Notes = notes
	}
	s.mu.Unlock()

	updated, err := s.api.UpdateAssignedStatus(ctx, assignmentID, status, notes)

	s.mu.Lock()
	defer s.mu.Unlock()
	idx = s.indexOfLocked(assignmentID)
	if err != nil {
		if idx >= 0 {
			s.assigned[idx] = snapshot
		}
		s.lastErr = err.Error()
		s.logger.Error("Status update failed, rolled back",
			zap.String("id", assignmentID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return err
	}
	if idx >= 0 && updated != nil {
		s.assigned[idx] = *updated
	}
	s.lastErr = ""
	return nil
}

// EffectiveStatus is the display status of a cached assignment right
// now; the expired transition is derived here, never persisted.
func (s *OfferStore) EffectiveStatus(a *model.AssignedOffer) model.AssignmentStatus {
	return model.EffectiveStatus(a, s.now())
}

func (s *OfferStore) indexOfLocked(assignmentID string) int {
	for i := range s.assigned {
		if s.assigned[i].ID == assignmentID {
			return i
		}
	}
	return -1
}
