package model

import "time"

type (
	OfferCategory    string // Service category of an offer template
	AssignmentStatus string // Lifecycle status of an assigned offer
)

const (
	CategorySEO         OfferCategory = "SEO"
	CategoryMaintenance OfferCategory = "Maintenance"
	CategoryDeployment  OfferCategory = "Deployment"
	CategoryDevelopment OfferCategory = "Development"
	CategoryAudit       OfferCategory = "Audit"
	CategoryHosting     OfferCategory = "Hosting"

	StatusAssigned  AssignmentStatus = "assigned"
	StatusActive    AssignmentStatus = "active"
	StatusUsed      AssignmentStatus = "used"
	StatusConverted AssignmentStatus = "converted"
	StatusExpired   AssignmentStatus = "expired"
)

// Offer is an admin-authored promotional template, not yet tied to a
// client.
type Offer struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Category     OfferCategory `json:"category"`
	Terms        string        `json:"terms"`
	ValidityDays int           `json:"validityDays"`
	IsActive     bool          `json:"isActive"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// OfferInput carries the fields of an offer create or update request.
type OfferInput struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Category     OfferCategory `json:"category"`
	Terms        string        `json:"terms"`
	ValidityDays int           `json:"validityDays"`
	IsActive     bool          `json:"isActive"`
}

// AssignedOffer is one offer granted to one client. Offer is a
// snapshot taken at assignment time; editing or deleting the template
// afterwards never touches it, and ExpiryDate is never recomputed.
type AssignedOffer struct {
	ID            string           `json:"id"`
	OfferID       string           `json:"offerId"`
	Offer         Offer            `json:"offer"`
	ClientID      string           `json:"clientId"`
	ClientName    string           `json:"clientName"`
	Status        AssignmentStatus `json:"status"`
	AssignedDate  time.Time        `json:"assignedDate"`
	ExpiryDate    time.Time        `json:"expiryDate"`
	ClaimedDate   *time.Time       `json:"claimedDate,omitempty"`
	UsedDate      *time.Time       `json:"usedDate,omitempty"`
	ConvertedDate *time.Time       `json:"convertedDate,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// assignmentTransitions is the allowed lifecycle:
// assigned -> active -> used -> converted, with expired reachable from
// assigned or active. Expiry is normally derived lazily, but an
// explicit status call may persist it.
var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	StatusAssigned: {StatusActive, StatusExpired},
	StatusActive:   {StatusUsed, StatusConverted, StatusExpired},
	StatusUsed:     {StatusConverted},
}

// CanTransition reports whether an assignment may move from one
// persisted status to another.
func CanTransition(from, to AssignmentStatus) bool {
	for _, next := range assignmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ExpiryFor derives the expiry of an assignment created at assignedDate
// from the offer's validity window.
func ExpiryFor(assignedDate time.Time, validityDays int) time.Time {
	return assignedDate.AddDate(0, 0, validityDays)
}

// EffectiveStatus is the status an assignment should display at the
// given instant. The expired transition is never persisted here; the
// stored status and the effective one may diverge until an explicit
// status call lands.
func EffectiveStatus(a *AssignedOffer, now time.Time) AssignmentStatus {
	if (a.Status == StatusAssigned || a.Status == StatusActive) && now.After(a.ExpiryDate) {
		return StatusExpired
	}
	return a.Status
}

// ValidCategory reports whether c is a known offer category.
func ValidCategory(c OfferCategory) bool {
	switch c {
	case CategorySEO, CategoryMaintenance, CategoryDeployment,
		CategoryDevelopment, CategoryAudit, CategoryHosting:
		return true
	}
	return false
}

// ValidAssignmentStatus reports whether s is a known lifecycle status.
func ValidAssignmentStatus(s AssignmentStatus) bool {
	switch s {
	case StatusAssigned, StatusActive, StatusUsed, StatusConverted, StatusExpired:
		return true
	}
	return false
}
