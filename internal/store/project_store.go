// Package store holds the session-side workflow stores backing the
// onboarding and offer dashboards. Each store keeps an in-memory cache
// of the remote collection, mutates it only after remote confirmation
// (projects) or optimistically with compensation (offers), and exposes
// the last error and loading state for rendering.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"clientdesk/internal/model"
	"clientdesk/pkg/metrics"
)

// ProjectAPI is the remote surface the project store talks to.
// *apiclient.Client satisfies it.
type ProjectAPI interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	CreateProject(ctx context.Context, in model.ProjectInput) (*model.Project, error)
	UpdateProject(ctx context.Context, id string, upd model.ProjectUpdate) (*model.Project, error)
	UpdateStage(ctx context.Context, id string, patch model.StagePatch) (*model.Project, error)
}

// ProjectStore owns the canonical in-memory project list for one
// session. Constructed once and passed by reference; there is no
// package-level instance.
type ProjectStore struct {
	mu       sync.Mutex
	api      ProjectAPI
	logger   *zap.Logger
	projects []model.Project
	lastErr  string
	loading  bool
}

func NewProjectStore(api ProjectAPI, logger *zap.Logger) *ProjectStore {
	return &ProjectStore{
		api:    api,
		logger: logger,
	}
}

// Projects returns a snapshot of the cached list.
func (s *ProjectStore) Projects() []model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// Err returns the last operation error, empty when the last operation
// succeeded.
func (s *ProjectStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *ProjectStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *ProjectStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// Fetch replaces the cached list wholesale from the remote collection.
// On failure the prior list stays untouched and the error is recorded
// for the caller to render.
func (s *ProjectStore) Fetch(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	projects, err := s.api.ListProjects(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err.Error()
		s.logger.Error("Failed to fetch projects", zap.Error(err))
		return err
	}
	s.projects = projects
	s.lastErr = ""
	return nil
}

// Create submits the descriptive fields, prepends the created project
// and returns it so the caller can navigate to it without a follow-up
// fetch. On failure nothing is cached and the caller must not assume
// the project exists.
func (s *ProjectStore) Create(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	p, err := s.api.CreateProject(ctx, in)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err.Error()
		s.logger.Error("Failed to create project", zap.Error(err))
		return nil, err
	}
	s.projects = append([]model.Project{*p}, s.projects...)
	s.lastErr = ""
	return p, nil
}

// Update applies a partial field update. The local entity is replaced
// only after remote confirmation; there is no optimistic path here.
func (s *ProjectStore) Update(ctx context.Context, id string, upd model.ProjectUpdate) (*model.Project, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	p, err := s.api.UpdateProject(ctx, id, upd)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err.Error()
		s.logger.Error("Failed to update project", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.applyLocked(p)
	s.lastErr = ""
	return p, nil
}

// UpdateStage is the only path that mutates a stage. The server
// responds with the entire updated project and the whole local object
// is replaced, so the stage and server-computed fields like paidAmount
// stay mutually consistent.
func (s *ProjectStore) UpdateStage(ctx context.Context, id string, patch model.StagePatch) (*model.Project, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	p, err := s.api.UpdateStage(ctx, id, patch)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err.Error()
		s.logger.Error("Failed to update stage",
			zap.String("project_id", id),
			zap.Int("stage_id", patch.StageID),
			zap.Error(err),
		)
		return nil, err
	}
	s.applyLocked(p)
	s.lastErr = ""
	return p, nil
}

// ApplySyncPayload feeds a push-channel project into the cache. It is
// the sync.Handler for this store.
func (s *ProjectStore) ApplySyncPayload(p *model.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(p)
}

// applyLocked replaces the cached project with the same id. Both the
// REST response path and the push path converge here, so a payload
// older than the cached copy is discarded regardless of which side it
// arrived from.
func (s *ProjectStore) applyLocked(p *model.Project) {
	for i := range s.projects {
		if s.projects[i].ID != p.ID {
			continue
		}
		if p.UpdatedAt.Before(s.projects[i].UpdatedAt) {
			metrics.IncrementSyncApplied("stale")
			s.logger.Debug("Discarding stale project payload",
				zap.String("id", p.ID),
				zap.Time("incoming", p.UpdatedAt),
				zap.Time("cached", s.projects[i].UpdatedAt),
			)
			return
		}
		s.projects[i] = *p
		metrics.IncrementSyncApplied("applied")
		return
	}
	metrics.IncrementSyncApplied("unknown")
	s.logger.Debug("Ignoring payload for unknown project", zap.String("id", p.ID))
}
