package operation

import (
	"sort"

	"github.com/rs/zerolog"
	"go.dedis.ch/opcore"
	"go.dedis.ch/opcore/core/txn"
	"golang.org/x/xerrors"
)

// Constructor returns the executor of a kind for the frame. It returns an
// error when the body of the operation is not the one of the kind.
type Constructor func(frame *Frame) (Executor, error)

// Registry maps the kinds of operation to the constructors of their
// executors.
type Registry struct {
	constructors map[Kind]Constructor
	logger       zerolog.Logger
}

// RegistryOption is the type of option to create a registry.
type RegistryOption func(*Registry)

// WithLogger is an option to set the logger of the handlers.
func WithLogger(logger zerolog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithoutKinds is an option to create an empty registry.
func WithoutKinds() RegistryOption {
	return func(r *Registry) {
		r.constructors = make(map[Kind]Constructor)
	}
}

// NewRegistry returns a registry with the constructors of every known kind.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		constructors: map[Kind]Constructor{
			KindCreateAccount: newCreateAccount,
			KindPayment:       newPayment,
			KindChangeTrust:   newChangeTrust,
			KindAllowTrust:    newAllowTrust,
			KindSetOptions:    newSetOptions,
			KindAccountMerge:  newAccountMerge,
			KindManageData:    newManageData,
		},
		logger: opcore.Logger,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds the constructor of the kind. It panics if the kind is already
// registered.
func (r *Registry) Register(kind Kind, c Constructor) {
	_, found := r.constructors[kind]
	if found {
		panic(xerrors.Errorf("kind %v already registered", kind))
	}

	r.constructors[kind] = c
}

// Kinds returns the registered kinds in ascending order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.constructors))
	for kind := range r.constructors {
		kinds = append(kinds, kind)
	}

	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i] < kinds[j]
	})

	return kinds
}

// Instantiate returns the handler of the operation for one validate or
// execute cycle. The outcome is written to the result, which is created when
// nil.
//
// It panics with an UnknownKindError when the kind of the operation is not
// registered, as the operation should never have been decoded.
func (r *Registry) Instantiate(op Operation, res *Result, fee Fee, tx txn.Transaction) *Frame {
	kind := op.Kind()

	c, found := r.constructors[kind]
	if !found {
		panic(&UnknownKindError{Kind: kind})
	}

	if res == nil {
		res = &Result{}
	}

	frame := &Frame{
		op:     op,
		result: res,
		fee:    fee,
		tx:     tx,
		logger: r.logger.With().Str("kind", kind.String()).Logger(),
	}

	impl, err := c(frame)
	if err != nil {
		panic(xerrors.Errorf("failed to instantiate %v: %v", kind, err))
	}

	frame.impl = impl

	return frame
}
