package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilters(t *testing.T) {
	filters, err := ParseFilters("web*", "boot=yes", "release=13.*,14.*")
	require.NoError(t, err)
	require.Len(t, filters, 3)

	assert.Equal(t, Term{Key: "name", Patterns: []string{"web*"}}, filters[0])
	assert.Equal(t, Term{Key: "boot", Patterns: []string{"yes"}}, filters[1])
	assert.Equal(t,
		Term{Key: "release", Patterns: []string{"13.*", "14.*"}}, filters[2])
}

func TestParseFilters_malformed(t *testing.T) {
	_, err := ParseFilters("boot=")
	require.Error(t, err)
}

func TestFilters_MatchName(t *testing.T) {
	filters, err := ParseFilters("web*", "boot=yes")
	require.NoError(t, err)

	assert.True(t, filters.MatchName("web01"),
		"only name terms are evaluated")
	assert.False(t, filters.MatchName("db01"))
	assert.True(t, Filters(nil).MatchName("anything"))
}

func TestFilters_Match(t *testing.T) {
	filters, err := ParseFilters("web*", "boot=yes")
	require.NoError(t, err)

	jail := map[string]string{"name": "web01", "boot": "yes"}
	get := func(key string) (string, bool) {
		v, ok := jail[key]
		return v, ok
	}

	assert.True(t, filters.Match(get))

	jail["boot"] = "no"
	assert.False(t, filters.Match(get))

	delete(jail, "boot")
	assert.False(t, filters.Match(get), "unknown keys never match")
}
