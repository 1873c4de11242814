package operation

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/opcore/core/access"
	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/store"
	"go.dedis.ch/opcore/testing/fake"
)

func TestRegistry_Kinds(t *testing.T) {
	reg := NewRegistry()

	require.Equal(t, []Kind{
		KindCreateAccount,
		KindPayment,
		KindChangeTrust,
		KindAllowTrust,
		KindSetOptions,
		KindAccountMerge,
		KindManageData,
	}, reg.Kinds())

	reg = NewRegistry(WithoutKinds())
	require.Empty(t, reg.Kinds())
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry(WithoutKinds())

	reg.Register(fakeKind, newFakeExecutor)
	require.Equal(t, []Kind{fakeKind}, reg.Kinds())

	require.PanicsWithError(t, "kind Kind(99) already registered", func() {
		reg.Register(fakeKind, newFakeExecutor)
	})

	require.PanicsWithError(t, "kind payment already registered", func() {
		NewRegistry().Register(KindPayment, newFakeExecutor)
	})
}

func TestRegistry_Instantiate(t *testing.T) {
	reg := NewRegistry()
	snap := makeLedger(t, ledger.NewAccount(alice, funds))

	bodies := map[Kind]Body{
		KindCreateAccount: CreateAccount{},
		KindPayment:       Payment{},
		KindChangeTrust:   ChangeTrust{},
		KindAllowTrust:    AllowTrust{},
		KindSetOptions:    SetOptions{},
		KindAccountMerge:  AccountMerge{},
		KindManageData:    ManageData{},
	}

	thresholds := map[Kind]access.Level{
		KindCreateAccount: access.LevelMedium,
		KindPayment:       access.LevelMedium,
		KindChangeTrust:   access.LevelMedium,
		KindAllowTrust:    access.LevelLow,
		KindSetOptions:    access.LevelMedium,
		KindAccountMerge:  access.LevelHigh,
		KindManageData:    access.LevelMedium,
	}

	for _, kind := range reg.Kinds() {
		res := &Result{}

		h := reg.Instantiate(NewOperation(bodies[kind]), res, FlatFee(10), newTx(alice))
		require.Equal(t, thresholds[kind], h.RequiredThreshold(), kind)
		require.Equal(t, CodePending, h.ResultCode())
		require.Same(t, res, h.GetResult())
		require.Equal(t, FlatFee(10), h.GetFee())

		h.ValidateOnly(makeContext(snap))
		require.Equal(t, CodeInner, h.ResultCode(), kind)
		require.Equal(t, kind, res.GetKind())
	}
}

func TestRegistry_InstantiateCreatesResult(t *testing.T) {
	h := NewRegistry().Instantiate(NewOperation(Payment{}), nil, NoFee(), newTx(alice))
	require.NotNil(t, h.GetResult())
	require.Equal(t, CodePending, h.ResultCode())
}

func TestRegistry_InstantiateUnknownKind(t *testing.T) {
	reg := NewRegistry()

	require.PanicsWithError(t, "unknown operation kind Kind(99)", func() {
		reg.Instantiate(NewOperation(fakeBody{}), nil, NoFee(), newTx(alice))
	})

	require.PanicsWithError(t, "unknown operation kind Kind(-1)", func() {
		reg.Instantiate(Operation{}, nil, NoFee(), newTx(alice))
	})

	defer func() {
		err, ok := recover().(*UnknownKindError)
		require.True(t, ok)
		require.Equal(t, fakeKind, err.Kind)
	}()

	reg.Instantiate(NewOperation(fakeBody{}), nil, NoFee(), newTx(alice))
}

func TestRegistry_InstantiateBadBody(t *testing.T) {
	reg := NewRegistry(WithoutKinds())
	reg.Register(fakeKind, newPayment)

	require.PanicsWithError(t, "failed to instantiate Kind(99): "+
		"invalid body type 'operation.fakeBody' for kind payment", func() {
		reg.Instantiate(NewOperation(fakeBody{}), nil, NoFee(), newTx(alice))
	})
}

func TestRegistry_CustomKind(t *testing.T) {
	logger, check := fake.CheckLog("operation executed")

	reg := NewRegistry(WithLogger(logger.Level(-1)), WithoutKinds())
	reg.Register(fakeKind, newFakeExecutor)

	snap := makeLedger(t, ledger.NewAccount(alice, funds))

	h := reg.Instantiate(NewOperation(fakeBody{}), nil, NoFee(), newTx(alice))
	require.Equal(t, access.LevelHigh, h.RequiredThreshold())

	ok := h.Execute(fake.NewSnapshot(), makeContext(snap))
	require.False(t, ok)
	require.Equal(t, CodeNoAccount, h.ResultCode())

	ok = h.Execute(snap, makeContext(snap))
	require.True(t, ok)
	require.Equal(t, fakeKind, h.GetResult().GetKind())
	check(t)
}

// -----------------------------------------------------------------------------
// Utility functions

const fakeKind = Kind(99)

type fakeBody struct{}

func (fakeBody) Kind() Kind {
	return fakeKind
}

type fakeExecutor struct {
	frame *Frame
}

func newFakeExecutor(f *Frame) (Executor, error) {
	return fakeExecutor{frame: f}, nil
}

func (fakeExecutor) Threshold() access.Level {
	return access.LevelHigh
}

func (fakeExecutor) CheckValid(Context) bool {
	return true
}

func (e fakeExecutor) Apply(store.Snapshot, Context) bool {
	return e.frame.GetSource() != nil
}
