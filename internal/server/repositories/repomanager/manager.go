// Package repomanager vends the domain repositories bound to one document
// store.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/tradejournal/internal/server/docstore"
	"github.com/dmitrijs2005/tradejournal/internal/server/repositories/assets"
	"github.com/dmitrijs2005/tradejournal/internal/server/repositories/plans"
	"github.com/dmitrijs2005/tradejournal/internal/server/repositories/steps"
	"github.com/dmitrijs2005/tradejournal/internal/server/repositories/transactions"
	"github.com/dmitrijs2005/tradejournal/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	Assets() assets.Repository
	Plans() plans.Repository
	Steps() steps.Repository
	Transactions() transactions.Repository

	// Ping reports whether the underlying store is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// DocumentRepositoryManager builds every repository over a shared
// docstore.Store.
type DocumentRepositoryManager struct {
	store docstore.Store
}

var _ RepositoryManager = (*DocumentRepositoryManager)(nil)

func NewDocumentRepositoryManager(store docstore.Store) *DocumentRepositoryManager {
	return &DocumentRepositoryManager{store: store}
}

// Open connects to the store described by dsn and wraps it.
func Open(ctx context.Context, dsn string) (*DocumentRepositoryManager, error) {
	store, err := docstore.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return NewDocumentRepositoryManager(store), nil
}

func (m *DocumentRepositoryManager) Users() users.Repository {
	return users.NewDocumentRepository(m.store)
}

func (m *DocumentRepositoryManager) Assets() assets.Repository {
	return assets.NewDocumentRepository(m.store)
}

func (m *DocumentRepositoryManager) Plans() plans.Repository {
	return plans.NewDocumentRepository(m.store)
}

func (m *DocumentRepositoryManager) Steps() steps.Repository {
	return steps.NewDocumentRepository(m.store)
}

func (m *DocumentRepositoryManager) Transactions() transactions.Repository {
	return transactions.NewDocumentRepository(m.store)
}

func (m *DocumentRepositoryManager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

func (m *DocumentRepositoryManager) Close() error {
	return m.store.Close()
}
