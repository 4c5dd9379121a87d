package mq

import "time"

// Routing keys for project events.
const (
	KeyProjectCreated = "project.created"
	KeyProjectUpdated = "project.updated"
)

// ProjectCreatedPayload announces a newly created onboarding project.
type ProjectCreatedPayload struct {
	ProjectID   string    `json:"project_id"`
	ClientName  string    `json:"client_name"`
	ProjectName string    `json:"project_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProjectUpdatedPayload announces a project or stage mutation.
type ProjectUpdatedPayload struct {
	ProjectID string    `json:"project_id"`
	Progress  int       `json:"progress"`
	UpdatedAt time.Time `json:"updated_at"`
}
