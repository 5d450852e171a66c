package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/dmitrijs2005/tradejournal/internal/server/docstore"
	"github.com/dmitrijs2005/tradejournal/internal/server/models"
	"github.com/dmitrijs2005/tradejournal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tradejournal/internal/server/repositories/transactions"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newManager(t *testing.T) *repomanager.DocumentRepositoryManager {
	t.Helper()
	m := repomanager.NewDocumentRepositoryManager(docstore.NewMemoryStore())
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var ve *common.ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
	require.Equal(t, code, ve.Code)
}

func mustPlan(t *testing.T, m repomanager.RepositoryManager, userID, title string, steps ...string) (*models.Plan, []*models.Step) {
	t.Helper()
	ctx := context.Background()
	plan, err := m.Plans().Create(ctx, &models.Plan{UserID: userID, Title: title, CreatedAt: 1})
	require.NoError(t, err)
	var out []*models.Step
	for i, title := range steps {
		st, err := m.Steps().Create(ctx, &models.Step{PlanID: plan.ID, Title: title, Order: i + 1})
		require.NoError(t, err)
		out = append(out, st)
	}
	return plan, out
}

// failingManager returns a transactions repository that always errors.
type failingManager struct {
	repomanager.RepositoryManager
	err error
}

func (m *failingManager) Transactions() transactions.Repository {
	return &failingTransactions{err: m.err}
}

type failingTransactions struct{ err error }

func (f *failingTransactions) Create(context.Context, *models.Transaction) (*models.Transaction, error) {
	return nil, f.err
}
func (f *failingTransactions) GetByID(context.Context, string) (*models.Transaction, error) {
	return nil, f.err
}
func (f *failingTransactions) ListByUser(context.Context, string) ([]*models.Transaction, error) {
	return nil, f.err
}
func (f *failingTransactions) Update(context.Context, *models.Transaction) (*models.Transaction, error) {
	return nil, f.err
}
func (f *failingTransactions) Delete(context.Context, string) (bool, error) {
	return false, f.err
}

type fakePresigner struct {
	putKey string
	getKey string
	err    error
}

func (p *fakePresigner) PresignPut(_ context.Context, key string) (string, error) {
	p.putKey = key
	if p.err != nil {
		return "", p.err
	}
	return "https://s3.local/put/" + key, nil
}

func (p *fakePresigner) PresignGet(_ context.Context, key string) (string, error) {
	p.getKey = key
	if p.err != nil {
		return "", p.err
	}
	return "https://s3.local/get/" + key, nil
}
