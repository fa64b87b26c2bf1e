package effect

import (
	"context"
	"testing"
	"time"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listedMsg struct{ r api.Result[[]model.Project] }

type projectsOnly struct {
	api.Backend
	projects []model.Project
	err      error
}

func (p projectsOnly) ListProjects(context.Context) ([]model.Project, error) {
	return p.projects, p.err
}

func TestBatch_FlattensAndDropsNone(t *testing.T) {
	a := After{Delay: time.Second, Msg: "a"}
	b := Toast{Text: "b"}

	assert.Equal(t, None{}, Batch())
	assert.Equal(t, None{}, Batch(None{}, nil))
	assert.Equal(t, a, Batch(None{}, a))

	got := Batch(a, Batch(b, None{}), Batched{Effects: []Effect{a}})
	require.IsType(t, Batched{}, got)
	assert.Equal(t, []Effect{a, b, a}, Flatten(got))
	assert.True(t, IsNone(Batched{Effects: []Effect{None{}}}))
}

func TestCall_RunWrapsResult(t *testing.T) {
	c := Call[[]model.Project]{
		Request: api.ListProjects{},
		Wrap:    func(r api.Result[[]model.Project]) Msg { return listedMsg{r} },
	}

	msg, failed := c.Run(context.Background(), projectsOnly{projects: []model.Project{{ID: 1, Name: "P"}}})
	assert.Nil(t, failed)
	got, ok := msg.(listedMsg)
	require.True(t, ok)
	require.True(t, got.r.OK())
	assert.Equal(t, "P", got.r.Value[0].Name)

	msg, failed = c.Run(context.Background(), projectsOnly{err: model.NewApiError(403, "no")})
	got = msg.(listedMsg)
	require.NotNil(t, got.r.Err)
	assert.Equal(t, 403, got.r.Err.Status)
	assert.Same(t, got.r.Err, failed)
}

func TestCollect_FindsCallsInsideBatches(t *testing.T) {
	c := Call[[]model.Project]{Request: api.ListProjects{}}
	e := Batch(Toast{Text: "x"}, Batch(c, After{}))

	calls := Calls(e)
	require.Len(t, calls, 1)
	assert.Equal(t, "projects.list", calls[0].Op())
	assert.Len(t, Collect[Toast](e), 1)
}
