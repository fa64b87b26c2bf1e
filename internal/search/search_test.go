package search

import (
	"testing"

	"scrumbringer-admin/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func users(emails ...string) []model.OrgUser {
	out := make([]model.OrgUser, 0, len(emails))
	for i, e := range emails {
		out = append(out, model.OrgUser{ID: int64(i + 1), Email: e})
	}
	return out
}

func TestInput_EchoesDraftAndSchedules(t *testing.T) {
	var s State[model.OrgUser]
	s, seq, schedule := s.Input("al")
	assert.Equal(t, "al", s.Query)
	assert.Equal(t, 1, seq)
	assert.True(t, schedule)
	assert.Equal(t, Typing, s.Status())
}

func TestEmptyQuery_ResetsToIdleWithoutRequest(t *testing.T) {
	var s State[model.OrgUser]
	s, _, _ = s.Input("al")
	s, _, _ = s.Fire(1)
	s, seq, schedule := s.Input("   ")
	assert.False(t, schedule)
	assert.Equal(t, Idle, s.Status())
	assert.True(t, s.Results.IsNotAsked())

	_, _, issue := s.Fire(seq)
	assert.False(t, issue)
}

func TestFire_OnlyLatestTimerIssuesRequest(t *testing.T) {
	var s State[model.OrgUser]
	s, first, _ := s.Input("a")
	s, second, _ := s.Input("ab")

	_, _, issue := s.Fire(first)
	assert.False(t, issue)

	s, q, issue := s.Fire(second)
	require.True(t, issue)
	assert.Equal(t, "ab", q)
	assert.Equal(t, Searching, s.Status())
}

func TestApply_StaleResponsesAreDiscarded(t *testing.T) {
	var s State[model.OrgUser]
	// Slow typist: three requests go out, tagged 1, 2 and 3.
	for _, q := range []string{"a", "ab", "abc"} {
		var seq int
		s, seq, _ = s.Input(q)
		s, _, _ = s.Fire(seq)
	}

	s, applied := s.Apply(3, users("abc@x.io"), nil)
	require.True(t, applied)
	s, applied = s.Apply(1, users("a@x.io", "ab@x.io", "abc@x.io"), nil)
	assert.False(t, applied)
	s, applied = s.Apply(2, users("ab@x.io"), nil)
	assert.False(t, applied)

	got, ok := s.Results.Get()
	require.True(t, ok)
	assert.Equal(t, users("abc@x.io"), got)
	assert.Equal(t, Done, s.Status())
}

func TestEqualLengthQueriesDoNotCollide(t *testing.T) {
	var s State[model.OrgUser]
	s, first, _ := s.Input("ab")
	s, _, _ = s.Fire(first)
	s, second, _ := s.Input("cd")
	s, _, _ = s.Fire(second)

	s, applied := s.Apply(first, users("ab@x.io"), nil)
	assert.False(t, applied)
	_, applied = s.Apply(second, users("cd@x.io"), nil)
	assert.True(t, applied)
}

func TestReset_KeepsCounterMonotonic(t *testing.T) {
	var s State[model.OrgUser]
	s, seq, _ := s.Input("x")
	s = s.Reset()
	assert.Greater(t, s.Seq, seq)
	_, applied := s.Apply(seq, users("x@x.io"), nil)
	assert.False(t, applied)
}
