package mock

import (
	"context"

	"github.com/fwojciec/granola"
)

var _ granola.IndexStore = (*IndexStore)(nil)

// IndexStore is a mock implementation of granola.IndexStore.
type IndexStore struct {
	LoadIndexFn func(ctx context.Context) (*granola.Index, error)
	SaveIndexFn func(ctx context.Context, idx *granola.Index) error
}

func (s *IndexStore) LoadIndex(ctx context.Context) (*granola.Index, error) {
	return s.LoadIndexFn(ctx)
}

func (s *IndexStore) SaveIndex(ctx context.Context, idx *granola.Index) error {
	return s.SaveIndexFn(ctx, idx)
}
