package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"clientdesk/internal/model"
	"clientdesk/pkg/metrics"
)

const projectColumns = `
	id, client_name, email, phone, company_name, project_name,
	tech_stack, project_type, start_date, deadline,
	total_amount, paid_amount, stages, created_at, updated_at
`

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

type projectRow interface {
	Scan(dest ...any) error
}

func scanProject(row projectRow) (*model.Project, error) {
	var p model.Project
	var stages []byte
	err := row.Scan(
		&p.ID,
		&p.ClientName,
		&p.Email,
		&p.Phone,
		&p.CompanyName,
		&p.ProjectName,
		&p.TechStack,
		&p.ProjectType,
		&p.StartDate,
		&p.Deadline,
		&p.TotalAmount,
		&p.PaidAmount,
		&stages,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(stages, &p.Stages); err != nil {
		return nil, fmt.Errorf("failed to decode stages: %w", err)
	}
	return &p, nil
}

// Insert stores a new project together with its stage plan.
func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("insert", "projects", time.Since(start)) }()

	stages, err := json.Marshal(p.Stages)
	if err != nil {
		return fmt.Errorf("failed to encode stages: %w", err)
	}

	query := `
        INSERT INTO projects (
            id, client_name, email, phone, company_name, project_name,
            tech_stack, project_type, start_date, deadline,
            total_amount, paid_amount, stages, created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `
	_, err = r.db.Exec(ctx, query,
		p.ID,
		p.ClientName,
		p.Email,
		p.Phone,
		p.CompanyName,
		p.ProjectName,
		p.TechStack,
		p.ProjectType,
		p.StartDate,
		p.Deadline,
		p.TotalAmount,
		p.PaidAmount,
		stages,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return err
	}

	r.logger.Info("Project inserted",
		zap.String("id", p.ID),
		zap.String("client_name", p.ClientName),
	)
	return nil
}

// List returns every project, newest first.
func (r *ProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("list", "projects", time.Since(start)) }()

	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// GetByID returns one project or model.ErrNotFound.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("get", "projects", time.Since(start)) }()

	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	p, err := scanProject(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get project", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

// UpdateFields applies a partial descriptive-field update, bumps
// updated_at and returns the full updated project.
func (r *ProjectRepository) UpdateFields(ctx context.Context, id string, upd model.ProjectUpdate) (*model.Project, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("update", "projects", time.Since(start)) }()

	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.ClientName != nil {
		add("client_name", *upd.ClientName)
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.Phone != nil {
		add("phone", *upd.Phone)
	}
	if upd.CompanyName != nil {
		add("company_name", *upd.CompanyName)
	}
	if upd.ProjectName != nil {
		add("project_name", *upd.ProjectName)
	}
	if upd.TechStack != nil {
		add("tech_stack", *upd.TechStack)
	}
	if upd.ProjectType != nil {
		add("project_type", *upd.ProjectType)
	}
	if upd.StartDate != nil {
		add("start_date", *upd.StartDate)
	}
	if upd.Deadline != nil {
		add("deadline", *upd.Deadline)
	}
	if upd.TotalAmount != nil {
		add("total_amount", *upd.TotalAmount)
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(
		`UPDATE projects SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), projectColumns,
	)

	p, err := scanProject(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to update project", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	r.logger.Info("Project updated", zap.String("id", id))
	return p, nil
}

// UpdateStage patches one stage inside the stages document, recomputes
// paid_amount from fully paid stages and returns the whole updated
// project in one transaction.
func (r *ProjectRepository) UpdateStage(ctx context.Context, id string, patch model.StagePatch, now time.Time) (*model.Project, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("update_stage", "projects", time.Since(start)) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 FOR UPDATE`
	p, err := scanProject(tx.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	idx := patch.StageID - 1
	if idx < 0 || idx >= len(p.Stages) {
		return nil, fmt.Errorf("%w: stage id %d out of range", model.ErrValidation, patch.StageID)
	}
	p.Stages[idx].ApplyPatch(patch, now)
	p.PaidAmount = p.PaidTotal()

	stages, err := json.Marshal(p.Stages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode stages: %w", err)
	}

	updated, err := scanProject(tx.QueryRow(ctx,
		`UPDATE projects
         SET stages = $1, paid_amount = $2, updated_at = now()
         WHERE id = $3
         RETURNING `+projectColumns,
		stages, p.PaidAmount, id,
	))
	if err != nil {
		r.logger.Error("Failed to update stage",
			zap.String("project_id", id),
			zap.Int("stage_id", patch.StageID),
			zap.Error(err),
		)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	r.logger.Info("Stage updated",
		zap.String("project_id", id),
		zap.Int("stage_id", patch.StageID),
	)
	return updated, nil
}

// Delete removes a project. Exposed at the service boundary only; the
// dashboards never call it.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("delete", "projects", time.Since(start)) }()

	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete project", zap.String("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
