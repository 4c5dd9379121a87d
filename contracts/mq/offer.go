package mq

import "time"

// Routing keys for offer events.
const (
	KeyOfferCreated       = "offer.created"
	KeyOfferAssigned      = "offer.assigned"
	KeyOfferStatusChanged = "offer.status_changed"
)

// OfferCreatedPayload announces a new offer template.
type OfferCreatedPayload struct {
	OfferID   string    `json:"offer_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// OfferAssignedPayload announces an offer granted to a client.
type OfferAssignedPayload struct {
	AssignmentID string    `json:"assignment_id"`
	OfferID      string    `json:"offer_id"`
	ClientID     string    `json:"client_id"`
	ClientName   string    `json:"client_name"`
	ExpiryDate   time.Time `json:"expiry_date"`
}

// OfferStatusChangedPayload announces an assignment lifecycle move.
type OfferStatusChangedPayload struct {
	AssignmentID string    `json:"assignment_id"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	At           time.Time `json:"at"`
}
