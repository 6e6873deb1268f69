package decomp

import (
	"sync"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"

	"eigen/internal/grid"
)

// Result holds the named factors of a decomposition, e.g. "L" and "U".
type Result struct {
	Kind    Kind
	Factors map[string]*mat.Dense
}

// Func factorizes a. a has already passed Check for the kind it is
// registered under.
type Func func(a *mat.Dense) (Result, error)

// Registry maps decomposition kinds to implementations.
type Registry struct {
	mu    sync.RWMutex
	funcs map[Kind]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[Kind]Func)}
}

// Register installs fn for k, replacing any previous implementation.
func (r *Registry) Register(k Kind, fn Func) error {
	if !k.Valid() {
		return eris.Wrapf(ErrUnknownKind, "register %s", k)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[k] = fn
	return nil
}

// Available reports whether an implementation is registered for k.
func (r *Registry) Available(k Kind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.funcs[k]
	return ok
}

// Decompose validates the snapshot for k and runs the registered
// implementation.
func (r *Registry) Decompose(k Kind, cells [][]grid.Cell) (Result, error) {
	a, err := Dense(cells)
	if err != nil {
		return Result{}, err
	}
	if err := Check(k, a); err != nil {
		return Result{}, err
	}

	r.mu.RLock()
	fn, ok := r.funcs[k]
	r.mu.RUnlock()
	if !ok {
		return Result{}, eris.Wrapf(ErrUnavailable, "decompose %s", k)
	}

	res, err := fn(a)
	if err != nil {
		return Result{}, eris.Wrapf(err, "decompose %s", k)
	}
	res.Kind = k
	return res, nil
}
