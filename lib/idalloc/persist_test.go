package idalloc

import (
	"errors"
	"testing"

	"github.com/jasonrodrigues28/product-landing-page/lib/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

//go:generate mockgen -destination mock_statestore_test.go -package idalloc -write_package_comment=false github.com/jasonrodrigues28/product-landing-page/lib/idalloc IStateStore

func TestSaveOncePerMutation(t *testing.T) {
	ctrl := gomock.NewController(t)
	states := NewMockIStateStore(ctrl)

	states.EXPECT().Load(ns).Return(common.CounterState{}, false, nil).Times(1)
	gomock.InOrder(
		states.EXPECT().Save(ns, common.CounterState{Prefix: "P", NextSequential: 1, Reclaimed: []uint64{}}),
		states.EXPECT().Save(ns, common.CounterState{Prefix: "P", NextSequential: 2, HighWaterMark: 1, Reclaimed: []uint64{}}),
		states.EXPECT().Save(ns, common.CounterState{Prefix: "P", NextSequential: 3, HighWaterMark: 2, Reclaimed: []uint64{}}),
		states.EXPECT().Save(ns, common.CounterState{Prefix: "P", NextSequential: 4, HighWaterMark: 3, Reclaimed: []uint64{}}),
		// one write for the whole batch
		states.EXPECT().Save(ns, common.CounterState{Prefix: "P", NextSequential: 4, HighWaterMark: 3, Reclaimed: []uint64{1, 3}}),
	)

	a := New(states)
	require.NoError(t, a.Ensure(ns, "P"))
	for i := 0; i < 3; i++ {
		_, err := a.Allocate(ns)
		require.NoError(t, err)
	}
	require.NoError(t, a.FreeMany(ns, []string{"P-3", "P-1", "P-3", "junk"}))

	// no-ops must not write
	require.NoError(t, a.Free(ns, "P-1"))
	require.NoError(t, a.Free(ns, "P-99"))
	require.NoError(t, a.Ensure(ns, "P"))
	_, err := a.State(ns)
	require.NoError(t, err)
	_, err = a.Peek(ns)
	require.NoError(t, err)
}

func TestPersistErrorKeepsMutation(t *testing.T) {
	ctrl := gomock.NewController(t)
	states := NewMockIStateStore(ctrl)
	diskFull := errors.New("disk full")

	states.EXPECT().Load(ns).Return(common.DefaultCounterState("P"), true, nil)
	states.EXPECT().Save(ns, gomock.Any()).Return(diskFull).Times(2)
	states.EXPECT().Save(ns, gomock.Any()).Return(nil)

	a := New(states)

	id, err := a.Allocate(ns)
	assert.Equal(t, "P-1", id, "identifier is returned despite the failed write")
	assert.ErrorIs(t, err, diskFull)

	id, err = a.Allocate(ns)
	assert.Equal(t, "P-2", id, "failed write must not roll back the counter")
	assert.ErrorIs(t, err, diskFull)

	id, err = a.Allocate(ns)
	assert.NoError(t, err)
	assert.Equal(t, "P-3", id)
}

func TestLoadErrorIsReturned(t *testing.T) {
	ctrl := gomock.NewController(t)
	states := NewMockIStateStore(ctrl)
	broken := errors.New("connection refused")

	states.EXPECT().Load(ns).Return(common.CounterState{}, false, broken).Times(2)
	states.EXPECT().Load(ns).Return(common.DefaultCounterState("P"), true, nil)

	a := New(states)

	_, err := a.Allocate(ns)
	assert.ErrorIs(t, err, broken)
	assert.ErrorIs(t, a.Free(ns, "P-1"), broken)
	assert.Empty(t, a.Namespaces(), "failed loads must not cache a namespace")

	state, err := a.State(ns)
	require.NoError(t, err)
	assert.Equal(t, "P", state.Prefix)
	assert.Equal(t, []string{ns}, a.Namespaces())
}
