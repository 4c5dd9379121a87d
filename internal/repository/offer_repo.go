package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"clientdesk/internal/model"
	"clientdesk/pkg/metrics"
)

const assignmentColumns = `
	id, offer_id, offer_snapshot, client_id, client_name, status,
	assigned_date, expiry_date, claimed_date, used_date, converted_date, notes
`

type OfferRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewOfferRepository(db *pgxpool.Pool, logger *zap.Logger) *OfferRepository {
	return &OfferRepository{
		db:     db,
		logger: logger,
	}
}

// InsertOffer stores a new offer template.
func (r *OfferRepository) InsertOffer(ctx context.Context, o *model.Offer) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("insert", "offers", time.Since(start)) }()

	query := `
        INSERT INTO offers (id, title, description, category, terms, validity_days, is_active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.db.Exec(ctx, query,
		o.ID, o.Title, o.Description, o.Category, o.Terms, o.ValidityDays, o.IsActive, o.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert offer", zap.Error(err))
		return err
	}

	r.logger.Info("Offer inserted", zap.String("id", o.ID), zap.String("title", o.Title))
	return nil
}

// ListOffers returns every offer template, newest first.
func (r *OfferRepository) ListOffers(ctx context.Context) ([]model.Offer, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("list", "offers", time.Since(start)) }()

	query := `
        SELECT id, title, description, category, terms, validity_days, is_active, created_at
        FROM offers ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list offers", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var offers []model.Offer
	for rows.Next() {
		var o model.Offer
		if err := rows.Scan(
			&o.ID, &o.Title, &o.Description, &o.Category,
			&o.Terms, &o.ValidityDays, &o.IsActive, &o.CreatedAt,
		); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// GetOffer returns one offer template or model.ErrNotFound.
func (r *OfferRepository) GetOffer(ctx context.Context, id string) (*model.Offer, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("get", "offers", time.Since(start)) }()

	var o model.Offer
	err := r.db.QueryRow(ctx,
		`SELECT id, title, description, category, terms, validity_days, is_active, created_at
         FROM offers WHERE id = $1`, id,
	).Scan(&o.ID, &o.Title, &o.Description, &o.Category, &o.Terms, &o.ValidityDays, &o.IsActive, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get offer", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &o, nil
}

// UpdateOffer replaces the editable fields of an offer template.
// Existing assignments keep their snapshot; nothing cascades.
func (r *OfferRepository) UpdateOffer(ctx context.Context, id string, in model.OfferInput) (*model.Offer, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("update", "offers", time.Since(start)) }()

	var o model.Offer
	err := r.db.QueryRow(ctx,
		`UPDATE offers
         SET title = $1, description = $2, category = $3, terms = $4, validity_days = $5, is_active = $6
         WHERE id = $7
         RETURNING id, title, description, category, terms, validity_days, is_active, created_at`,
		in.Title, in.Description, in.Category, in.Terms, in.ValidityDays, in.IsActive, id,
	).Scan(&o.ID, &o.Title, &o.Description, &o.Category, &o.Terms, &o.ValidityDays, &o.IsActive, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to update offer", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	r.logger.Info("Offer updated", zap.String("id", id))
	return &o, nil
}

// DeleteOffer removes a template. Assignments are left untouched; they
// carry their own snapshot of the offer.
func (r *OfferRepository) DeleteOffer(ctx context.Context, id string) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("delete", "offers", time.Since(start)) }()

	tag, err := r.db.Exec(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete offer", zap.String("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	r.logger.Info("Offer deleted", zap.String("id", id))
	return nil
}

type assignmentRow interface {
	Scan(dest ...any) error
}

func scanAssignment(row assignmentRow) (*model.AssignedOffer, error) {
	var a model.AssignedOffer
	var snapshot []byte
	var notes *string
	err := row.Scan(
		&a.ID,
		&a.OfferID,
		&snapshot,
		&a.ClientID,
		&a.ClientName,
		&a.Status,
		&a.AssignedDate,
		&a.ExpiryDate,
		&a.ClaimedDate,
		&a.UsedDate,
		&a.ConvertedDate,
		&notes,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshot, &a.Offer); err != nil {
		return nil, fmt.Errorf("failed to decode offer snapshot: %w", err)
	}
	if notes != nil {
		a.Notes = *notes
	}
	return &a, nil
}

// InsertAssignment stores an assignment together with the offer
// snapshot taken at assignment time.
func (r *OfferRepository) InsertAssignment(ctx context.Context, a *model.AssignedOffer) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("insert", "assigned_offers", time.Since(start)) }()

	snapshot, err := json.Marshal(a.Offer)
	if err != nil {
		return fmt.Errorf("failed to encode offer snapshot: %w", err)
	}

	query := `
        INSERT INTO assigned_offers (
            id, offer_id, offer_snapshot, client_id, client_name, status,
            assigned_date, expiry_date, notes
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err = r.db.Exec(ctx, query,
		a.ID, a.OfferID, snapshot, a.ClientID, a.ClientName, a.Status,
		a.AssignedDate, a.ExpiryDate, a.Notes,
	)
	if err != nil {
		r.logger.Error("Failed to insert assignment", zap.Error(err))
		return err
	}

	r.logger.Info("Offer assigned",
		zap.String("assignment_id", a.ID),
		zap.String("offer_id", a.OfferID),
		zap.String("client_id", a.ClientID),
	)
	return nil
}

// ListAssignments returns assignments, optionally filtered by client,
// newest first.
func (r *OfferRepository) ListAssignments(ctx context.Context, clientID string) ([]model.AssignedOffer, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("list", "assigned_offers", time.Since(start)) }()

	query := `SELECT ` + assignmentColumns + ` FROM assigned_offers`
	args := []any{}
	if clientID != "" {
		query += ` WHERE client_id = $1`
		args = append(args, clientID)
	}
	query += ` ORDER BY assigned_date DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list assignments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var assignments []model.AssignedOffer
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// GetAssignment returns one assignment or model.ErrNotFound.
func (r *OfferRepository) GetAssignment(ctx context.Context, id string) (*model.AssignedOffer, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("get", "assigned_offers", time.Since(start)) }()

	query := `SELECT ` + assignmentColumns + ` FROM assigned_offers WHERE id = $1`
	a, err := scanAssignment(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get assignment", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return a, nil
}

// UpdateAssignment writes back the mutable lifecycle fields of an
// assignment: status, transition dates and notes.
func (r *OfferRepository) UpdateAssignment(ctx context.Context, a *model.AssignedOffer) (*model.AssignedOffer, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("update", "assigned_offers", time.Since(start)) }()

	updated, err := scanAssignment(r.db.QueryRow(ctx,
		`UPDATE assigned_offers
         SET status = $1, claimed_date = $2, used_date = $3, converted_date = $4, notes = $5
         WHERE id = $6
         RETURNING `+assignmentColumns,
		a.Status, a.ClaimedDate, a.UsedDate, a.ConvertedDate, a.Notes, a.ID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to update assignment", zap.String("id", a.ID), zap.Error(err))
		return nil, err
	}

	r.logger.Info("Assignment updated",
		zap.String("id", a.ID),
		zap.String("status", string(a.Status)),
	)
	return updated, nil
}
