package remote

import (
	"testing"

	"scrumbringer-admin/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroValueIsNotAsked(t *testing.T) {
	var v Value[[]int]
	require.True(t, v.IsNotAsked())
	_, ok := v.Get()
	require.False(t, ok)
	require.Nil(t, v.Err())
}

func TestFetchCycle_LoadedCanReenterLoading(t *testing.T) {
	v := NewLoaded([]int{1, 2})
	got, ok := v.Get()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, got)

	v = NewLoading[[]int]()
	assert.True(t, v.IsLoading())
	assert.Nil(t, v.OrElse(nil))
}

func TestFromResult(t *testing.T) {
	ok := FromResult(3, nil)
	assert.Equal(t, Loaded, ok.Kind())

	failed := FromResult(0, model.NewApiError(500, "boom"))
	require.True(t, failed.IsFailed())
	assert.Equal(t, 500, failed.Err().Status)
}

func TestNewFailed_NilErrorStillCarriesMessage(t *testing.T) {
	v := NewFailed[int](nil)
	require.NotNil(t, v.Err())
	assert.Equal(t, "unknown error", v.Err().Message)
}

func TestMap_PassesNonLoadedStatesThrough(t *testing.T) {
	double := func(n int) int { return n * 2 }

	assert.Equal(t, NewLoaded(4), Map(NewLoaded(2), double))
	assert.True(t, Map(NewLoading[int](), double).IsLoading())
	assert.True(t, Map(NewNotAsked[int](), double).IsNotAsked())
	assert.Equal(t, 403, Map(NewFailed[int](model.NewApiError(403, "no")), double).Err().Status)
}
