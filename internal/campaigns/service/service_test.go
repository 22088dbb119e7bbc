package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"patrimoine_backend/internal/campaigns/domain"
	"patrimoine_backend/internal/campaigns/repository"
	communedomain "patrimoine_backend/internal/communes/domain"
	communerepo "patrimoine_backend/internal/communes/repository"
	"patrimoine_backend/internal/events"
	"patrimoine_backend/platform/apperr"
	"patrimoine_backend/platform/logger"
)

// mayDates matches the fixture used in the domain tests: launch on
// Friday 2030-05-10, relances on the 15th, 20th and 25th, fin on the
// 30th.
func mayDates() domain.Dates {
	day := func(d int) time.Time {
		return time.Date(2030, time.May, d, 0, 0, 0, 0, time.UTC)
	}
	return domain.Dates{
		Lancement: day(10),
		Relance1:  day(15),
		Relance2:  day(20),
		Relance3:  day(25),
		Fin:       day(30),
	}
}

type fakeRepo struct {
	repository.Repository

	campaign    repository.Campaign
	recipients  []repository.Recipient
	eligible    []repository.EligibleCommune
	overlapping bool

	createdWith   *repository.CreateParams
	addedIDs      []uuid.UUID
	planned       []uuid.UUID
	started       []uuid.UUID
	finished      []uuid.UUID
	advancedSteps []domain.Step
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Campaign, error) {
	if f.campaign.ID != id {
		return repository.Campaign{}, apperr.NotFound("campaign not found")
	}
	return f.campaign, nil
}

func (f *fakeRepo) Create(ctx context.Context, p repository.CreateParams) (repository.Campaign, error) {
	f.createdWith = &p
	return repository.Campaign{
		ID:              uuid.New(),
		DepartementCode: p.DepartementCode,
		Status:          domain.StatusDraft,
		Dates:           p.Dates,
	}, nil
}

func (f *fakeRepo) HasOverlapping(ctx context.Context, departementCode string, dates domain.Dates, excludeID uuid.UUID) (bool, error) {
	return f.overlapping, nil
}

func (f *fakeRepo) EligibleCommunes(ctx context.Context, departementCode string) ([]repository.EligibleCommune, error) {
	return f.eligible, nil
}

func (f *fakeRepo) AddRecipients(ctx context.Context, campaignID uuid.UUID, communeIDs []uuid.UUID) (int, error) {
	f.addedIDs = append(f.addedIDs, communeIDs...)
	return len(communeIDs), nil
}

func (f *fakeRepo) ListRecipients(ctx context.Context, campaignID uuid.UUID) ([]repository.Recipient, error) {
	return f.recipients, nil
}

func (f *fakeRepo) Plan(ctx context.Context, id uuid.UUID) (repository.Campaign, error) {
	f.planned = append(f.planned, id)
	f.campaign.Status = domain.StatusPlanned
	return f.campaign, nil
}

func (f *fakeRepo) Start(ctx context.Context, id uuid.UUID) (repository.Campaign, []repository.Recipient, error) {
	f.started = append(f.started, id)
	f.campaign.Status = domain.StatusOngoing
	return f.campaign, f.recipients, nil
}

func (f *fakeRepo) Finish(ctx context.Context, id uuid.UUID) (repository.Campaign, error) {
	f.finished = append(f.finished, id)
	f.campaign.Status = domain.StatusFinished
	return f.campaign, nil
}

func (f *fakeRepo) AdvanceRecipients(ctx context.Context, campaignID uuid.UUID, step domain.Step) ([]repository.Recipient, error) {
	f.advancedSteps = append(f.advancedSteps, step)
	return f.recipients, nil
}

type fakeCommunes struct {
	communerepo.Repository

	dossiers map[uuid.UUID]communerepo.Dossier
	resets   []uuid.UUID
}

func (f *fakeCommunes) GetCurrentDossier(ctx context.Context, communeID uuid.UUID) (communerepo.Dossier, error) {
	dossier, ok := f.dossiers[communeID]
	if !ok {
		return communerepo.Dossier{}, apperr.NotFound("no current dossier")
	}
	return dossier, nil
}

func (f *fakeCommunes) ArchiveAndReset(ctx context.Context, communeID uuid.UUID) error {
	f.resets = append(f.resets, communeID)
	return nil
}

func testService(repo *fakeRepo, communes *fakeCommunes) *Service {
	if communes == nil {
		communes = &fakeCommunes{}
	}
	svc := New(repo, communes, nopBus{}, logger.New("development"))
	svc.now = func() time.Time {
		return time.Date(2030, time.January, 15, 9, 0, 0, 0, time.UTC)
	}
	return svc
}

type nopBus struct{}

func (nopBus) Publish(ctx context.Context, event events.Event)           {}
func (nopBus) PublishSync(ctx context.Context, event events.Event) error { return nil }
func (nopBus) Subscribe(eventName string, handler events.Handler)        {}

func TestCreateValidatesDates(t *testing.T) {
	repo := &fakeRepo{}
	svc := testService(repo, nil)

	dates := mayDates()
	dates.Relance2 = dates.Relance1
	_, err := svc.Create(context.Background(), "51", dates)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want validation", apperr.GetKind(err))
	}
	if repo.createdWith != nil {
		t.Error("invalid dates reached the repository")
	}
}

func TestCreateDraft(t *testing.T) {
	repo := &fakeRepo{}
	svc := testService(repo, nil)

	result, err := svc.Create(context.Background(), "51", mayDates())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.Status != string(domain.StatusDraft) {
		t.Errorf("status = %s, want draft", result.Status)
	}
	if repo.createdWith == nil || repo.createdWith.DepartementCode != "51" {
		t.Error("create params not forwarded")
	}
}

func TestPlanRejectsOverlap(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{
		campaign: repository.Campaign{
			ID: id, DepartementCode: "51",
			Status: domain.StatusDraft, Dates: mayDates(),
		},
		overlapping: true,
	}
	svc := testService(repo, nil)

	_, err := svc.Plan(context.Background(), id)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want validation", apperr.GetKind(err))
	}
	if len(repo.planned) != 0 {
		t.Error("overlapping campaign was planned")
	}
}

func TestPlanTransitions(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{
		campaign: repository.Campaign{
			ID: id, DepartementCode: "51",
			Status: domain.StatusDraft, Dates: mayDates(),
		},
	}
	svc := testService(repo, nil)

	result, err := svc.Plan(context.Background(), id)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if result.Status != string(domain.StatusPlanned) {
		t.Errorf("status = %s, want planned", result.Status)
	}
}

func TestAddDefaultRecipientsDraftOnly(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{
		campaign: repository.Campaign{
			ID: id, DepartementCode: "51",
			Status: domain.StatusPlanned, Dates: mayDates(),
		},
	}
	svc := testService(repo, nil)

	_, err := svc.AddDefaultRecipients(context.Background(), id)
	if apperr.GetKind(err) != apperr.KindInvalidTransition {
		t.Fatalf("kind = %v, want invalid transition", apperr.GetKind(err))
	}
}

func TestAddDefaultRecipientsAttachesEligible(t *testing.T) {
	id := uuid.New()
	a, b := uuid.New(), uuid.New()
	repo := &fakeRepo{
		campaign: repository.Campaign{
			ID: id, DepartementCode: "51",
			Status: domain.StatusDraft, Dates: mayDates(),
		},
		eligible: []repository.EligibleCommune{
			{ID: a, CodeInsee: "51019", Nom: "Aubilly"},
			{ID: b, CodeInsee: "51454", Nom: "Reims"},
		},
		recipients: []repository.Recipient{
			{CommuneID: a, CodeInsee: "51019", CommuneNom: "Aubilly"},
			{CommuneID: b, CodeInsee: "51454", CommuneNom: "Reims"},
		},
	}
	svc := testService(repo, nil)

	result, err := svc.AddDefaultRecipients(context.Background(), id)
	if err != nil {
		t.Fatalf("AddDefaultRecipients: %v", err)
	}
	if result.Added != 2 {
		t.Errorf("added = %d, want 2", result.Added)
	}
	if len(repo.addedIDs) != 2 {
		t.Errorf("attached %d communes, want 2", len(repo.addedIDs))
	}
}

func TestStartResetsSubmittedAndAcceptedRecipients(t *testing.T) {
	id := uuid.New()
	submitted, accepted, construction, fresh := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	repo := &fakeRepo{
		campaign: repository.Campaign{
			ID: id, DepartementCode: "51",
			Status: domain.StatusPlanned, Dates: mayDates(),
		},
		recipients: []repository.Recipient{
			{CommuneID: submitted},
			{CommuneID: accepted},
			{CommuneID: construction},
			{CommuneID: fresh},
		},
	}
	communes := &fakeCommunes{dossiers: map[uuid.UUID]communerepo.Dossier{
		submitted:    {CommuneID: submitted, Status: communedomain.DossierSubmitted},
		accepted:     {CommuneID: accepted, Status: communedomain.DossierAccepted},
		construction: {CommuneID: construction, Status: communedomain.DossierConstruction},
	}}
	svc := testService(repo, communes)

	result, err := svc.Start(context.Background(), id)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if result.Status != string(domain.StatusOngoing) {
		t.Errorf("status = %s, want ongoing", result.Status)
	}
	if len(communes.resets) != 2 {
		t.Fatalf("reset %d communes, want 2", len(communes.resets))
	}
	for _, reset := range communes.resets {
		if reset == construction || reset == fresh {
			t.Errorf("commune %s should not have been reset", reset)
		}
	}
}

func TestAdvanceStepBeforeLaunchIsNoop(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{
		campaign: repository.Campaign{
			ID: id, DepartementCode: "51",
			Status: domain.StatusOngoing, Dates: mayDates(),
		},
		recipients: []repository.Recipient{{CommuneID: uuid.New()}},
	}
	svc := testService(repo, nil)

	moved, err := svc.AdvanceStep(context.Background(), id,
		time.Date(2030, time.May, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("AdvanceStep: %v", err)
	}
	if moved != 0 {
		t.Errorf("moved = %d, want 0", moved)
	}
	if len(repo.advancedSteps) != 0 {
		t.Error("recipients advanced before launch date")
	}
}

func TestAdvanceStepMapsDateToStep(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{
		campaign: repository.Campaign{
			ID: id, DepartementCode: "51",
			Status: domain.StatusOngoing, Dates: mayDates(),
		},
		recipients: []repository.Recipient{{CommuneID: uuid.New()}},
	}
	svc := testService(repo, nil)

	moved, err := svc.AdvanceStep(context.Background(), id,
		time.Date(2030, time.May, 17, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("AdvanceStep: %v", err)
	}
	if moved != 1 {
		t.Errorf("moved = %d, want 1", moved)
	}
	if len(repo.advancedSteps) != 1 || repo.advancedSteps[0] != domain.StepRelance1 {
		t.Errorf("advanced to %v, want relance1", repo.advancedSteps)
	}
}

func TestAdvanceStepRequiresOngoing(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{
		campaign: repository.Campaign{
			ID: id, DepartementCode: "51",
			Status: domain.StatusDraft, Dates: mayDates(),
		},
	}
	svc := testService(repo, nil)

	_, err := svc.AdvanceStep(context.Background(), id,
		time.Date(2030, time.May, 17, 0, 0, 0, 0, time.UTC))
	if apperr.GetKind(err) != apperr.KindInvalidTransition {
		t.Fatalf("kind = %v, want invalid transition", apperr.GetKind(err))
	}
}

func TestUpdateDatesDraftOnly(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{
		campaign: repository.Campaign{
			ID: id, DepartementCode: "51",
			Status: domain.StatusOngoing, Dates: mayDates(),
		},
	}
	svc := testService(repo, nil)

	_, err := svc.UpdateDates(context.Background(), id, mayDates())
	if apperr.GetKind(err) != apperr.KindInvalidTransition {
		t.Fatalf("kind = %v, want invalid transition", apperr.GetKind(err))
	}
}
