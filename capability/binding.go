package capability

import (
	"context"
	"errors"
)

// ErrInvalidArguments is returned (or wrapped) by bindings that reject their
// decoded arguments. Calls failing this way are never retried.
var ErrInvalidArguments = errors.New("invalid arguments")

// Binding is the callable a delegate registers under a Spec. Implementations
// must honor ctx cancellation and return either a JSON-serializable payload
// or an error.
type Binding interface {
	Invoke(ctx context.Context, args map[string]any) (any, error)
}

// BindingFunc adapts an ordinary function to the Binding interface.
type BindingFunc func(ctx context.Context, args map[string]any) (any, error)

// Invoke calls f.
func (f BindingFunc) Invoke(ctx context.Context, args map[string]any) (any, error) {
	return f(ctx, args)
}
