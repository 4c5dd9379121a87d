package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"clientdesk/internal/model"
)

type fakeProjectRepo struct {
	projects map[string]model.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]model.Project)}
}

func (f *fakeProjectRepo) Insert(_ context.Context, p *model.Project) error {
	f.projects[p.ID] = *p
	return nil
}

func (f *fakeProjectRepo) List(_ context.Context) ([]model.Project, error) {
	var out []model.Project
	for _, p := range f.projects {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id string) (*model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProjectRepo) UpdateFields(_ context.Context, id string, upd model.ProjectUpdate) (*model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	if upd.ClientName != nil {
		p.ClientName = *upd.ClientName
	}
	if upd.ProjectName != nil {
		p.ProjectName = *upd.ProjectName
	}
	if upd.TotalAmount != nil {
		p.TotalAmount = *upd.TotalAmount
	}
	p.UpdatedAt = p.UpdatedAt.Add(time.Second)
	f.projects[id] = p
	return &p, nil
}

func (f *fakeProjectRepo) UpdateStage(_ context.Context, id string, patch model.StagePatch, now time.Time) (*model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	p.Stages[patch.StageID-1].ApplyPatch(patch, now)
	p.PaidAmount = p.PaidTotal()
	p.UpdatedAt = now
	f.projects[id] = p
	return &p, nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.projects[id]; !ok {
		return model.ErrNotFound
	}
	delete(f.projects, id)
	return nil
}

type recordingSync struct {
	published []*model.Project
	fail      bool
}

func (r *recordingSync) PublishProjectUpdated(_ context.Context, p *model.Project) error {
	if r.fail {
		return errors.New("redis down")
	}
	r.published = append(r.published, p)
	return nil
}

func newProjectService(repo ProjectRepo, sync SyncPublisher, now time.Time) *ProjectService {
	s := NewProjectService(repo, sync, nil, zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

var validInput = model.ProjectInput{
	ClientName:  "Acme Inc",
	Email:       "ops@acme.test",
	ProjectName: "Storefront rebuild",
	TotalAmount: 12000,
}

func TestCreateAttachesTemplate(t *testing.T) {
	repo := newFakeProjectRepo()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newProjectService(repo, nil, now)

	p, err := s.Create(context.Background(), validInput)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(p.Stages) != model.StageCount {
		t.Fatalf("created project has %d stages", len(p.Stages))
	}
	if p.Stages[0].Name != "Requirement Gathering + Contract" {
		t.Errorf("stage 1 name = %q", p.Stages[0].Name)
	}
	if !p.Stages[0].ApprovalRequired || p.Stages[0].Approved {
		t.Error("stage 1 approval flags wrong")
	}
	if p.Stages[0].Status != model.StagePending {
		t.Errorf("stage 1 status = %q", p.Stages[0].Status)
	}
	if p.ID == "" {
		t.Error("no id assigned")
	}
	if p.Progress() != 0 {
		t.Errorf("fresh progress = %d", p.Progress())
	}
}

func TestCreateValidation(t *testing.T) {
	s := newProjectService(newFakeProjectRepo(), nil, time.Now())
	tests := []struct {
		name string
		in   model.ProjectInput
	}{
		{"missing client", model.ProjectInput{ProjectName: "x", Email: "a@b.c"}},
		{"missing project name", model.ProjectInput{ClientName: "x", Email: "a@b.c"}},
		{"missing email", model.ProjectInput{ClientName: "x", ProjectName: "y"}},
		{"negative amount", model.ProjectInput{ClientName: "x", ProjectName: "y", Email: "a@b.c", TotalAmount: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Create(context.Background(), tt.in); !errors.Is(err, model.ErrValidation) {
				t.Errorf("Create = %v, want ErrValidation", err)
			}
		})
	}
}

func TestUpdateStageProgress(t *testing.T) {
	repo := newFakeProjectRepo()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newProjectService(repo, nil, now)
	p, _ := s.Create(context.Background(), validInput)

	done := model.StageDone
	for _, stageID := range []int{1, 2} {
		if _, err := s.UpdateStage(context.Background(), p.ID, model.StagePatch{StageID: stageID, Status: &done}); err != nil {
			t.Fatalf("UpdateStage(%d): %v", stageID, err)
		}
	}

	updated, err := s.UpdateStage(context.Background(), p.ID, model.StagePatch{StageID: 5, Status: &done})
	if err != nil {
		t.Fatalf("UpdateStage(5): %v", err)
	}
	if got := updated.Progress(); got != 30 {
		t.Errorf("progress after third done stage = %d, want 30", got)
	}
	if updated.Stages[4].CompletionDate == nil {
		t.Error("completionDate not stamped on done stage")
	}
}

func TestUpdateStageRecomputesPaidAmount(t *testing.T) {
	repo := newFakeProjectRepo()
	s := newProjectService(repo, nil, time.Now())
	p, _ := s.Create(context.Background(), validInput)

	payment := 2500.0
	paid := model.PaymentPaid
	updated, err := s.UpdateStage(context.Background(), p.ID, model.StagePatch{
		StageID:       1,
		Payment:       &payment,
		PaymentStatus: &paid,
	})
	if err != nil {
		t.Fatalf("UpdateStage: %v", err)
	}
	if updated.PaidAmount != 2500 {
		t.Errorf("paidAmount = %v, want 2500", updated.PaidAmount)
	}
}

func TestUpdateStageValidation(t *testing.T) {
	repo := newFakeProjectRepo()
	s := newProjectService(repo, nil, time.Now())
	p, _ := s.Create(context.Background(), validInput)

	bad := model.StageStatus("finished")
	if _, err := s.UpdateStage(context.Background(), p.ID, model.StagePatch{StageID: 1, Status: &bad}); !errors.Is(err, model.ErrValidation) {
		t.Errorf("unknown status = %v, want ErrValidation", err)
	}
	done := model.StageDone
	for _, stageID := range []int{0, 11, -3} {
		if _, err := s.UpdateStage(context.Background(), p.ID, model.StagePatch{StageID: stageID, Status: &done}); !errors.Is(err, model.ErrValidation) {
			t.Errorf("stage id %d = %v, want ErrValidation", stageID, err)
		}
	}
}

func TestUpdateStageBroadcasts(t *testing.T) {
	repo := newFakeProjectRepo()
	sync := &recordingSync{}
	s := newProjectService(repo, sync, time.Now())
	p, _ := s.Create(context.Background(), validInput)

	done := model.StageDone
	if _, err := s.UpdateStage(context.Background(), p.ID, model.StagePatch{StageID: 1, Status: &done}); err != nil {
		t.Fatalf("UpdateStage: %v", err)
	}
	if len(sync.published) != 1 {
		t.Fatalf("published %d sync payloads, want 1", len(sync.published))
	}
	got := sync.published[0]
	if got.ID != p.ID || len(got.Stages) != model.StageCount {
		t.Error("sync payload is not the full project")
	}
	if got.Stages[0].Status != model.StageDone {
		t.Error("sync payload missing the stage change")
	}
}

// The sync channel is a read-side convenience; a publish failure must
// not fail the mutation.
func TestUpdateStageSurvivesSyncFailure(t *testing.T) {
	repo := newFakeProjectRepo()
	s := newProjectService(repo, &recordingSync{fail: true}, time.Now())
	p, _ := s.Create(context.Background(), validInput)

	done := model.StageDone
	if _, err := s.UpdateStage(context.Background(), p.ID, model.StagePatch{StageID: 1, Status: &done}); err != nil {
		t.Fatalf("UpdateStage with failing sync: %v", err)
	}
}

func TestUpdateUnknownProject(t *testing.T) {
	s := newProjectService(newFakeProjectRepo(), nil, time.Now())
	name := "New name"
	if _, err := s.Update(context.Background(), "missing", model.ProjectUpdate{ClientName: &name}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Update = %v, want ErrNotFound", err)
	}
}
