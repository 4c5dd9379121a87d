package model

import "time"

type (
	StageStatus   string // Delivery status of a single onboarding stage
	PaymentStatus string // Payment status of a single onboarding stage
)

const (
	StagePending    StageStatus = "pending"
	StageInProgress StageStatus = "in-progress"
	StageDone       StageStatus = "done"

	PaymentPending       PaymentStatus = "pending"
	PaymentPartiallyPaid PaymentStatus = "partially-paid"
	PaymentPaid          PaymentStatus = "paid"
)

// StageCount is the fixed number of stages every project carries.
const StageCount = 10

// Stage is one phase of a client onboarding project. Name, Output and
// ApprovalRequired come from the template and never change; everything
// else is edited stage-by-stage over the life of the project.
type Stage struct {
	ID               int           `json:"id"`
	Name             string        `json:"name"`
	Output           string        `json:"output"`
	Status           StageStatus   `json:"status"`
	PaymentStatus    PaymentStatus `json:"paymentStatus"`
	CompletionDate   *time.Time    `json:"completionDate,omitempty"`
	AssignedMember   string        `json:"assignedMember,omitempty"`
	Payment          float64       `json:"payment"`
	Notes            string        `json:"notes,omitempty"`
	ApprovalRequired bool          `json:"approvalRequired"`
	Approved         bool          `json:"approved"`
}

// Project is a client onboarding project with its fixed 10-stage plan.
// UpdatedAt doubles as the version used to discard stale sync payloads.
type Project struct {
	ID          string    `json:"id"`
	ClientName  string    `json:"clientName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	CompanyName string    `json:"companyName"`
	ProjectName string    `json:"projectName"`
	TechStack   string    `json:"techStack"`
	ProjectType string    `json:"projectType"`
	StartDate   time.Time `json:"startDate"`
	Deadline    time.Time `json:"deadline"`
	TotalAmount float64   `json:"totalAmount"`
	PaidAmount  float64   `json:"paidAmount"`
	Stages      []Stage   `json:"stages"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Progress returns the completion percentage of the project. Only
// stages with status "done" count; in-progress stages earn nothing.
func (p *Project) Progress() int {
	done := 0
	for _, s := range p.Stages {
		if s.Status == StageDone {
			done++
		}
	}
	return done * 100 / StageCount
}

// PaidTotal sums the per-stage payment of fully paid stages. The
// server keeps Project.PaidAmount equal to this after stage updates.
func (p *Project) PaidTotal() float64 {
	var total float64
	for _, s := range p.Stages {
		if s.PaymentStatus == PaymentPaid {
			total += s.Payment
		}
	}
	return total
}

// ProjectInput carries the descriptive fields a caller submits when
// creating a project. The stage plan is attached server-side.
type ProjectInput struct {
	ClientName  string    `json:"clientName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	CompanyName string    `json:"companyName"`
	ProjectName string    `json:"projectName"`
	TechStack   string    `json:"techStack"`
	ProjectType string    `json:"projectType"`
	StartDate   time.Time `json:"startDate"`
	Deadline    time.Time `json:"deadline"`
	TotalAmount float64   `json:"totalAmount"`
}

// ProjectUpdate is a partial update of a project's descriptive fields.
// Nil fields are left untouched.
type ProjectUpdate struct {
	ClientName  *string    `json:"clientName,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	CompanyName *string    `json:"companyName,omitempty"`
	ProjectName *string    `json:"projectName,omitempty"`
	TechStack   *string    `json:"techStack,omitempty"`
	ProjectType *string    `json:"projectType,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	TotalAmount *float64   `json:"totalAmount,omitempty"`
}

// StagePatch is a partial update of one stage. Every present field is
// applied; absent fields keep their current value. StageID addresses
// the stage positionally (1..10).
type StagePatch struct {
	StageID        int            `json:"stageId"`
	Status         *StageStatus   `json:"status,omitempty"`
	PaymentStatus  *PaymentStatus `json:"paymentStatus,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
	AssignedMember *string        `json:"assignedMember,omitempty"`
	Payment        *float64       `json:"payment,omitempty"`
	Approved       *bool          `json:"approved,omitempty"`
}

// ApplyPatch applies the present fields of p to the stage. Moving the
// delivery status to done stamps CompletionDate once; moving it back
// clears the stamp.
func (s *Stage) ApplyPatch(p StagePatch, now time.Time) {
	if p.Status != nil {
		prev := s.Status
		s.Status = *p.Status
		if *p.Status == StageDone && prev != StageDone && s.CompletionDate == nil {
			t := now
			s.CompletionDate = &t
		}
		if *p.Status != StageDone {
			s.CompletionDate = nil
		}
	}
	if p.PaymentStatus != nil {
		s.PaymentStatus = *p.PaymentStatus
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
	if p.AssignedMember != nil {
		s.AssignedMember = *p.AssignedMember
	}
	if p.Payment != nil {
		s.Payment = *p.Payment
	}
	if p.Approved != nil {
		s.Approved = *p.Approved
	}
}

// ValidStageStatus reports whether s is a known delivery status.
func ValidStageStatus(s StageStatus) bool {
	switch s {
	case StagePending, StageInProgress, StageDone:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPartiallyPaid, PaymentPaid:
		return true
	}
	return false
}
