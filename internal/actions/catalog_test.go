package actions

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franz/playtest-history/internal/util"
)

func TestDefaultCatalogPartitions(t *testing.T) {
	c := Default()

	assert.Equal(t, []string{"Advance", "Embark", "Disembark", "Salvo", "Capture", "OverWatch", "OverWatch Shot"}, c.BySize(Big))
	assert.Equal(t, []string{"Skip", "Deploy", "Move", "Consolidate", "Control", "Shot", "Check Shot"}, c.BySize(Small))
	assert.Len(t, c.Names(), 14)

	for _, name := range []string{"Deploy", "OverWatch Shot", "Check Shot"} {
		assert.True(t, c.IsSpecial(name), name)
		cat, ok := c.Category(name)
		require.True(t, ok)
		assert.Equal(t, Special, cat)
	}
	for _, name := range []string{"Advance", "Shot", "Move", "Skip"} {
		assert.False(t, c.IsSpecial(name), name)
	}
}

func TestCatalogValidIsExact(t *testing.T) {
	c := Default()
	assert.True(t, c.Valid("Check Shot"))
	assert.False(t, c.Valid("check shot"))
	assert.False(t, c.Valid("Teleport"))

	_, ok := c.Category("Teleport")
	assert.False(t, ok)
}

func TestCatalogMatch(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{"OverWatch", "OverWatch Shot"}, c.Match("over"))
	assert.Equal(t, []string{"Check Shot"}, c.Match("CH"))
	assert.Nil(t, c.Match("zz"))
	assert.Len(t, c.Match(""), 14)
}

func TestCatalogResolve(t *testing.T) {
	c := Default()

	got, err := c.Resolve("dis")
	require.NoError(t, err)
	assert.Equal(t, "Disembark", got)

	got, err = c.Resolve("overwatch")
	require.NoError(t, err)
	assert.Equal(t, "OverWatch", got, "exact case-insensitive match beats longer prefix matches")

	_, err = c.Resolve("s")
	assert.True(t, errors.Is(err, util.ErrInvalidActionType))

	_, err = c.Resolve("Teleport")
	assert.True(t, errors.Is(err, util.ErrValidation))
}

func TestNewRejectsBadKinds(t *testing.T) {
	tests := []struct {
		name  string
		kinds []Kind
	}{
		{"empty", nil},
		{"blank name", []Kind{{Name: " ", Size: Big}}},
		{"bad size", []Kind{{Name: "Fly", Size: "huge"}}},
		{"duplicate", []Kind{{Name: "Fly", Size: Big}, {Name: "Fly", Size: Small}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.kinds)
			assert.ErrorIs(t, err, util.ErrInvalidConfig)
		})
	}
}

func TestNormalizeSecondary(t *testing.T) {
	c := Default()
	in := []string{"obj a", "Zone2"}

	assert.Equal(t, []string{"OBJ A", "ZONE2"}, c.NormalizeSecondary("Capture", in))
	assert.Equal(t, []string{"obj a", "Zone2"}, c.NormalizeSecondary("Shot", in))
	assert.Equal(t, "obj a", in[0], "input must not be modified")
	assert.Empty(t, c.NormalizeSecondary("Capture", nil))
}
