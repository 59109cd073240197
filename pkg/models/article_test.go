package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"go", "notes"}, NormalizeTags([]string{" go", "", "notes", "go ", "  "}))
	assert.Equal(t, []string{}, NormalizeTags(nil))
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "d"}, SplitTags("a, b c,,d, a"))
	assert.Empty(t, SplitTags(""))
}

func TestClone(t *testing.T) {
	a := Article{Tags: []string{"x"}, Extra: map[string]any{"k": "v"}}
	b := a.Clone()
	b.Tags[0] = "y"
	b.Extra["k"] = "w"

	assert.Equal(t, "x", a.Tags[0])
	assert.Equal(t, "v", a.Extra["k"])
}

func TestNewArticle(t *testing.T) {
	a := NewArticle(time.Date(2026, 10, 16, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-10-16", a.Date)
	assert.NotNil(t, a.Tags)
	assert.False(t, a.IsExternal())

	a.ExternalURL = " https://example.com "
	assert.True(t, a.IsExternal())
}

func TestParseGrowthStage(t *testing.T) {
	tests := []struct {
		in   string
		want GrowthStage
		ok   bool
	}{
		{"early", StageEarly, true},
		{"Seed", StageEarly, true},
		{"sapling", StageDeveloping, true},
		{"old-growth", StageMature, true},
		{"mature", StageMature, true},
		{"compost", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseGrowthStage(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.False(t, GrowthStage("seed").Valid())
}
