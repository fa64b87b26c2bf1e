package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPage_Bounds(t *testing.T) {
	p := Page{Limit: 10, Offset: 0, Total: 47}
	assert.Equal(t, 5, p.TotalPages())
	assert.Equal(t, 1, p.Current())
	assert.Equal(t, 40, p.LastOffset())
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())

	last := Page{Limit: 10, Offset: p.LastOffset(), Total: 47}
	assert.Equal(t, 5, last.Current())
	assert.False(t, last.HasNext())
	assert.Equal(t, 40, last.NextOffset())
	assert.Equal(t, 30, last.PrevOffset())
}

func TestPage_EdgeCases(t *testing.T) {
	cases := []struct {
		name       string
		p          Page
		totalPages int
		last       int
		hasNext    bool
	}{
		{"empty", Page{Limit: 10, Total: 0}, 0, 0, false},
		{"exact multiple", Page{Limit: 10, Total: 30}, 3, 20, true},
		{"single row", Page{Limit: 10, Total: 1}, 1, 0, false},
		{"zero limit", Page{Limit: 0, Total: 3}, 3, 2, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.totalPages, tc.p.TotalPages())
			assert.Equal(t, tc.last, tc.p.LastOffset())
			assert.Equal(t, tc.hasNext, tc.p.HasNext())
		})
	}
}

func TestPage_PrevClampsAtZero(t *testing.T) {
	assert.Equal(t, 0, Page{Limit: 10, Offset: 5, Total: 47}.PrevOffset())
}
