package model

// stageTemplate is the fixed onboarding plan attached to every new
// project. Owned by the backend; clients never rebuild it locally.
var stageTemplate = []Stage{
	{ID: 1, Name: "Requirement Gathering + Contract", Output: "Signed contract and requirement document", ApprovalRequired: true},
	{ID: 2, Name: "UI/UX Design", Output: "Approved design mockups", ApprovalRequired: true},
	{ID: 3, Name: "Architecture & Tech Setup", Output: "Architecture document and repository setup"},
	{ID: 4, Name: "Database Design", Output: "Schema and ER diagram"},
	{ID: 5, Name: "Core Development", Output: "Working core features"},
	{ID: 6, Name: "Feature Development", Output: "Complete feature set"},
	{ID: 7, Name: "Testing & QA", Output: "Test report", ApprovalRequired: true},
	{ID: 8, Name: "Client Review", Output: "Client sign-off notes", ApprovalRequired: true},
	{ID: 9, Name: "Deployment", Output: "Live production deployment"},
	{ID: 10, Name: "Handover + Support Setup", Output: "Documentation and credentials handover", ApprovalRequired: true},
}

// NewStageTemplate returns a fresh copy of the 10-stage plan with
// every stage pending, unpaid and unapproved.
func NewStageTemplate() []Stage {
	stages := make([]Stage, len(stageTemplate))
	copy(stages, stageTemplate)
	for i := range stages {
		stages[i].Status = StagePending
		stages[i].PaymentStatus = PaymentPending
		stages[i].Approved = false
	}
	return stages
}
