package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"clientdesk/internal/model"
)

type fakeOfferAPI struct {
	offers       []model.Offer
	offersErr    error
	assigned     []model.AssignedOffer
	assignedErr  error
	createResult *model.Offer
	assignResult *model.AssignedOffer
	assignErr    error
	assignCalls  int
	claimResult  *model.AssignedOffer
	claimErr     error
	claimCalls   int
	statusResult *model.AssignedOffer
	statusErr    error
	statusCalls  int
}

func (f *fakeOfferAPI) ListOffers(context.Context) ([]model.Offer, error) {
	return f.offers, f.offersErr
}

func (f *fakeOfferAPI) CreateOffer(context.Context, model.OfferInput) (*model.Offer, error) {
	return f.createResult, nil
}

func (f *fakeOfferAPI) AssignOffer(context.Context, string, string, string, string) (*model.AssignedOffer, error) {
	f.assignCalls++
	return f.assignResult, f.assignErr
}

func (f *fakeOfferAPI) ListAssignedOffers(context.Context, string) ([]model.AssignedOffer, error) {
	return f.assigned, f.assignedErr
}

func (f *fakeOfferAPI) ClaimOffer(context.Context, string) (*model.AssignedOffer, error) {
	f.claimCalls++
	return f.claimResult, f.claimErr
}

func (f *fakeOfferAPI) UpdateAssignedStatus(context.Context, string, model.AssignmentStatus, string) (*model.AssignedOffer, error) {
	f.statusCalls++
	return f.statusResult, f.statusErr
}

func testOffer(id string, validityDays int) model.Offer {
	return model.Offer{
		ID:           id,
		Title:        "Free SEO Audit",
		Category:     model.CategorySEO,
		ValidityDays: validityDays,
		IsActive:     true,
	}
}

func testAssignment(id string, status model.AssignmentStatus) model.AssignedOffer {
	assigned := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return model.AssignedOffer{
		ID:           id,
		OfferID:      "o1",
		Offer:        testOffer("o1", 30),
		ClientID:     "c1",
		ClientName:   "Acme",
		Status:       status,
		AssignedDate: assigned,
		ExpiryDate:   model.ExpiryFor(assigned, 30),
	}
}

func newTestOfferStore(api OfferAPI, now time.Time) *OfferStore {
	s := NewOfferStore(api, zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

func TestFetchOffersFailureKeepsStaleCache(t *testing.T) {
	api := &fakeOfferAPI{offers: []model.Offer{testOffer("o1", 30)}}
	s := newTestOfferStore(api, time.Now())
	if err := s.FetchOffers(context.Background()); err != nil {
		t.Fatal(err)
	}

	api.offersErr = errors.New("connection refused")
	if err := s.FetchOffers(context.Background()); err == nil {
		t.Fatal("FetchOffers succeeded despite failure")
	}
	if got := s.Offers(); len(got) != 1 || got[0].ID != "o1" {
		t.Errorf("stale cache not preserved: %+v", got)
	}
	if s.Err() == "" {
		t.Error("error not recorded")
	}
}

func TestCreateOfferAppendsServerEntity(t *testing.T) {
	created := testOffer("server-id", 15)
	api := &fakeOfferAPI{createResult: &created}
	s := newTestOfferStore(api, time.Now())

	o, err := s.CreateOffer(context.Background(), model.OfferInput{})
	if err != nil {
		t.Fatal(err)
	}
	if o.ID != "server-id" {
		t.Errorf("returned id %q, want the server-assigned one", o.ID)
	}
	if got := s.Offers(); len(got) != 1 || got[0].ID != "server-id" {
		t.Errorf("cache = %+v", got)
	}
}

// The remote-backed assign path never inserts locally; the caller is
// responsible for refreshing assignments.
func TestAssignToClientNoLocalInsert(t *testing.T) {
	a := testAssignment("a1", model.StatusAssigned)
	api := &fakeOfferAPI{assignResult: &a}
	s := newTestOfferStore(api, time.Now())

	if err := s.AssignToClient(context.Background(), "o1", "c1", "Acme", ""); err != nil {
		t.Fatal(err)
	}
	if api.assignCalls != 1 {
		t.Errorf("assign calls = %d", api.assignCalls)
	}
	if got := s.Assigned(); len(got) != 0 {
		t.Errorf("remote assign synthesized a local entry: %+v", got)
	}
}

func TestAssignLocalSynthesizes(t *testing.T) {
	api := &fakeOfferAPI{offers: []model.Offer{testOffer("o1", 30)}}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newTestOfferStore(api, now)
	if err := s.FetchOffers(context.Background()); err != nil {
		t.Fatal(err)
	}

	a, err := s.AssignLocal("o1", "c1", "Acme", "demo run")
	if err != nil {
		t.Fatalf("AssignLocal: %v", err)
	}
	if a.Status != model.StatusAssigned {
		t.Errorf("status = %q", a.Status)
	}
	if want := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC); !a.ExpiryDate.Equal(want) {
		t.Errorf("expiryDate = %v, want %v", a.ExpiryDate, want)
	}
	if api.assignCalls != 0 {
		t.Error("demo mode hit the remote service")
	}
	if got := s.Assigned(); len(got) != 1 {
		t.Errorf("assignment not cached: %+v", got)
	}
}

func TestAssignLocalUnknownOffer(t *testing.T) {
	s := newTestOfferStore(&fakeOfferAPI{}, time.Now())
	if _, err := s.AssignLocal("missing", "c1", "Acme", ""); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("AssignLocal = %v, want ErrNotFound", err)
	}
}

func TestClaimOfferOptimistic(t *testing.T) {
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	server := testAssignment("a1", model.StatusActive)
	server.ClaimedDate = &now
	api := &fakeOfferAPI{
		assigned:    []model.AssignedOffer{testAssignment("a1", model.StatusAssigned)},
		claimResult: &server,
	}
	s := newTestOfferStore(api, now)
	if err := s.FetchAssigned(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := s.ClaimOffer(context.Background(), "a1"); err != nil {
		t.Fatalf("ClaimOffer: %v", err)
	}
	got := s.Assigned()[0]
	if got.Status != model.StatusActive {
		t.Errorf("status = %q, want active", got.Status)
	}
	if got.ClaimedDate == nil {
		t.Error("claimedDate not set")
	}
}

func TestClaimOfferRollsBackOnRemoteFailure(t *testing.T) {
	prior := testAssignment("a1", model.StatusAssigned)
	api := &fakeOfferAPI{
		assigned: []model.AssignedOffer{prior},
		claimErr: errors.New("500 from remote"),
	}
	s := newTestOfferStore(api, time.Now())
	if err := s.FetchAssigned(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := s.ClaimOffer(context.Background(), "a1"); err == nil {
		t.Fatal("ClaimOffer succeeded despite remote failure")
	}
	got := s.Assigned()[0]
	if got.Status != model.StatusAssigned {
		t.Errorf("status = %q, want rollback to assigned", got.Status)
	}
	if got.ClaimedDate != nil {
		t.Error("claimedDate survived rollback")
	}
	if s.Err() == "" {
		t.Error("error not recorded")
	}
}

// Claiming anything but an assigned offer is a no-op error; the remote
// service is never called.
func TestClaimOfferRejectsNonAssigned(t *testing.T) {
	for _, status := range []model.AssignmentStatus{
		model.StatusActive, model.StatusUsed, model.StatusConverted, model.StatusExpired,
	} {
		t.Run(string(status), func(t *testing.T) {
			api := &fakeOfferAPI{assigned: []model.AssignedOffer{testAssignment("a1", status)}}
			s := newTestOfferStore(api, time.Now())
			if err := s.FetchAssigned(context.Background()); err != nil {
				t.Fatal(err)
			}

			if err := s.ClaimOffer(context.Background(), "a1"); !errors.Is(err, model.ErrInvalidTransition) {
				t.Errorf("ClaimOffer = %v, want ErrInvalidTransition", err)
			}
			if api.claimCalls != 0 {
				t.Error("remote called for an invalid claim")
			}
		})
	}
}

func TestUpdateAssignedStatusStampsDates(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	server := testAssignment("a1", model.StatusUsed)
	server.UsedDate = &now
	api := &fakeOfferAPI{
		assigned:     []model.AssignedOffer{testAssignment("a1", model.StatusActive)},
		statusResult: &server,
	}
	s := newTestOfferStore(api, now)
	if err := s.FetchAssigned(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateAssignedStatus(context.Background(), "a1", model.StatusUsed, ""); err != nil {
		t.Fatalf("UpdateAssignedStatus: %v", err)
	}
	got := s.Assigned()[0]
	if got.Status != model.StatusUsed || got.UsedDate == nil {
		t.Errorf("used transition not applied: %+v", got)
	}
}

func TestUpdateAssignedStatusRollsBack(t *testing.T) {
	api := &fakeOfferAPI{
		assigned:  []model.AssignedOffer{testAssignment("a1", model.StatusActive)},
		statusErr: errors.New("timeout"),
	}
	s := newTestOfferStore(api, time.Now())
	if err := s.FetchAssigned(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateAssignedStatus(context.Background(), "a1", model.StatusConverted, "big deal"); err == nil {
		t.Fatal("UpdateAssignedStatus succeeded despite remote failure")
	}
	got := s.Assigned()[0]
	if got.Status != model.StatusActive {
		t.Errorf("status = %q, want rollback to active", got.Status)
	}
	if got.ConvertedDate != nil || got.Notes != "" {
		t.Error("optimistic fields survived rollback")
	}
}

func TestUpdateAssignedStatusRejectsInvalid(t *testing.T) {
	api := &fakeOfferAPI{assigned: []model.AssignedOffer{testAssignment("a1", model.StatusAssigned)}}
	s := newTestOfferStore(api, time.Now())
	if err := s.FetchAssigned(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateAssignedStatus(context.Background(), "a1", model.StatusConverted, ""); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("assigned -> converted = %v, want ErrInvalidTransition", err)
	}
	if api.statusCalls != 0 {
		t.Error("remote called for an invalid transition")
	}
}

func TestEffectiveStatusUsesStoreClock(t *testing.T) {
	a := testAssignment("a1", model.StatusAssigned)

	s := newTestOfferStore(&fakeOfferAPI{}, a.ExpiryDate.Add(-time.Hour))
	if got := s.EffectiveStatus(&a); got != model.StatusAssigned {
		t.Errorf("before expiry = %q", got)
	}

	s = newTestOfferStore(&fakeOfferAPI{}, a.ExpiryDate.Add(time.Hour))
	if got := s.EffectiveStatus(&a); got != model.StatusExpired {
		t.Errorf("after expiry = %q", got)
	}
	if a.Status != model.StatusAssigned {
		t.Error("effective status mutated the persisted status")
	}
}
