package modelstore

import (
	"context"

	"github.com/gluco-ml/gluco/feature"
	"github.com/juju/errors"
)

/*
ErrModelNotFound is the cause of the error returned when loading or deleting
a model that is not in the store. Check it with errors.Is.
*/
var ErrModelNotFound = errors.NotFound

/*
Store is an interface to manage a store where models are saved, loaded,
listed and deleted by name.

All its methods take a context that may allow cancelling the operation if
the implementation allows it.
*/
type Store interface {
	// Save stores the model under its name, replacing any model
	// previously saved with that name.
	Save(ctx context.Context, m *Model) error
	// Load returns the model saved under the name or an error
	// satisfying errors.Is(err, ErrModelNotFound). Decision nodes of
	// trees refer to the given features by name, as in Decode.
	Load(ctx context.Context, name string, features []feature.Feature) (*Model, error)
	// Delete removes the model saved under the name or returns an
	// error satisfying errors.Is(err, ErrModelNotFound).
	Delete(ctx context.Context, name string) error
	// List returns the names of the saved models in lexical order.
	List(ctx context.Context) ([]string, error)
	// Close frees the resources in use by the store.
	Close(ctx context.Context) error
}
