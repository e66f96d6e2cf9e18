// ABOUTME: Tests for member role parsing
// ABOUTME: Covers valid roles and rejection of unknown ones

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, r := range ValidRoles {
		got, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
}

func TestParseRole_Invalid(t *testing.T) {
	_, err := ParseRole("superuser")
	assert.Error(t, err)

	_, err = ParseRole("")
	assert.Error(t, err)

	// Roles are case sensitive
	_, err = ParseRole("Owner")
	assert.Error(t, err)
}
