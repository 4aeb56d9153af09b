package catalog

import (
	"context"
	"fmt"

	"github.com/shoppingmate-ai/server/internal/agent/model"
	errx "github.com/shoppingmate-ai/server/internal/core/error"
)

// Unavailable stands in for a backend that failed to initialise. Every call
// fails with errx.ErrCatalogUnavailable so requests degrade instead of crash.
type Unavailable struct {
	backend string
	cause   error
}

func NewUnavailable(backend string, cause error) *Unavailable {
	return &Unavailable{backend: backend, cause: cause}
}

func (u *Unavailable) Name() string { return u.backend }
func (u *Unavailable) Ready() bool  { return false }

func (u *Unavailable) err() error {
	if u.cause == nil {
		return errx.WrapCatalog(errx.ErrCatalogUnavailable)
	}
	return errx.WrapCatalog(fmt.Errorf("%w: %v", errx.ErrCatalogUnavailable, u.cause))
}

func (u *Unavailable) Search(context.Context, SearchParams) ([]string, error) {
	return nil, u.err()
}

func (u *Unavailable) Lookup(context.Context, string) (*model.Product, error) {
	return nil, u.err()
}
