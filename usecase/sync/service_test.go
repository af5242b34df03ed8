package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsig/sigsync/domain"
	"github.com/mailsig/sigsync/internal/config"
	"github.com/mailsig/sigsync/internal/template"
	"github.com/mailsig/sigsync/repository"
)

type mockDirectory struct {
	identities []domain.Identity
	err        error
	calls      int
}

func (m *mockDirectory) FetchUsers(ctx context.Context, dom string) ([]domain.Identity, error) {
	m.calls++
	return m.identities, m.err
}

type mockTemplates struct {
	text string
	err  error
}

func (m *mockTemplates) Resolve(ctx context.Context, templateID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

type mockHistory struct {
	saved []*domain.RunReport
}

func (m *mockHistory) Save(ctx context.Context, report *domain.RunReport) error {
	m.saved = append(m.saved, report)
	return nil
}

func (m *mockHistory) List(ctx context.Context, limit int) ([]domain.RunReport, error) {
	return nil, nil
}

func (m *mockHistory) GetByID(ctx context.Context, id string) (*domain.RunReport, error) {
	return nil, domain.ErrRunNotFound
}

func serviceFixture(directory *mockDirectory, templates *mockTemplates, history *mockHistory) (*Service, *mockMailbox, *mockCredentials) {
	mailbox := newMockMailbox()
	creds := &mockCredentials{errs: make(map[string]error)}
	var historyRepo repository.RunHistoryRepository
	if history != nil {
		historyRepo = history
	}
	svc := NewService(
		directory,
		templates,
		mailbox,
		creds,
		historyRepo,
		config.SyncConfig{Domain: "x.com", BatchSize: 10, Concurrency: 1},
		config.FilterConfig{},
		template.Branding{CompanyName: "Acme"},
		nil,
	)
	return svc, mailbox, creds
}

func TestExecuteHappyPath(t *testing.T) {
	directory := &mockDirectory{identities: []domain.Identity{
		{Email: "ada@x.com", FullName: "Ada Lovelace"},
		{Email: "grace@x.com", FullName: "Grace Hopper"},
	}}
	templates := &mockTemplates{text: "<p>[FULL_NAME] - [COMPANY]</p>"}
	history := &mockHistory{}

	svc, mailbox, _ := serviceFixture(directory, templates, history)

	report, err := svc.Execute(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Len(t, report.Outcome.Processed, 2)
	assert.Equal(t, "<p>Ada Lovelace - Acme</p>", mailbox.current["ada@x.com"])
	require.Len(t, history.saved, 1)
	assert.Equal(t, report.ID, history.saved[0].ID)
}

func TestExecuteAbortsOnMissingDomain(t *testing.T) {
	directory := &mockDirectory{}
	svc, _, _ := serviceFixture(directory, &mockTemplates{text: "x"}, nil)
	svc.syncCfg.Domain = ""

	_, err := svc.Execute(context.Background(), RunOptions{})
	require.ErrorIs(t, err, domain.ErrMissingDomain)
	assert.Zero(t, directory.calls)
}

func TestExecuteAbortsOnDirectoryFailure(t *testing.T) {
	directory := &mockDirectory{err: domain.ErrDirectoryUnavailable}
	svc, mailbox, _ := serviceFixture(directory, &mockTemplates{text: "x"}, nil)

	_, err := svc.Execute(context.Background(), RunOptions{})
	require.ErrorIs(t, err, domain.ErrDirectoryUnavailable)
	assert.Empty(t, mailbox.writes)
}

func TestExecuteAbortsOnTemplateMiss(t *testing.T) {
	directory := &mockDirectory{identities: []domain.Identity{{Email: "ada@x.com"}}}
	svc, mailbox, _ := serviceFixture(directory, &mockTemplates{err: domain.ErrTemplateNotFound}, nil)

	_, err := svc.Execute(context.Background(), RunOptions{})
	require.ErrorIs(t, err, domain.ErrTemplateNotFound)
	assert.Empty(t, mailbox.reads)
}

func TestExecuteIncludedUsersOverride(t *testing.T) {
	directory := &mockDirectory{identities: []domain.Identity{
		{Email: "ada@x.com"},
		{Email: "grace@x.com"},
	}}
	svc, mailbox, _ := serviceFixture(directory, &mockTemplates{text: "<p>[EMAIL]</p>"}, nil)

	report, err := svc.Execute(context.Background(), RunOptions{IncludedUsers: []string{"grace@x.com"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"grace@x.com"}, report.Outcome.Processed)
	assert.Empty(t, mailbox.current["ada@x.com"])
}

func TestPlanNeverWrites(t *testing.T) {
	directory := &mockDirectory{identities: []domain.Identity{{Email: "ada@x.com"}}}
	svc, mailbox, creds := serviceFixture(directory, &mockTemplates{text: "<p>[EMAIL]</p>"}, nil)

	report, err := svc.Plan(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Len(t, report.Outcome.Processed, 1)
	assert.Empty(t, mailbox.writes)
	assert.Empty(t, creds.calls)
}
