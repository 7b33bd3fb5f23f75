package states

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/opioid-eda/internal/errors"
)

func TestNewResolver_Has51UniqueEntries(t *testing.T) {
	r := NewResolver()
	assert.Equal(t, 51, r.Len())

	seen := map[string]bool{}
	for _, ref := range r.All() {
		assert.Len(t, ref.Code, 2)
		assert.False(t, seen[ref.Code], "duplicate code %s", ref.Code)
		seen[ref.Code] = true
	}
	assert.True(t, seen["DC"])
}

func TestResolveByName(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name string
		want string
	}{
		{"California", "CA"},
		{"new  york", "NY"},
		{" District of Columbia ", "DC"},
		{"WEST VIRGINIA", "WV"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := r.ResolveByName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestResolve_NotFound(t *testing.T) {
	r := NewResolver()

	_, err := r.ResolveByName("Puerto Rico")
	assert.True(t, errors.IsType(err, errors.TypeUnresolvedJoinKey))

	_, err = r.ResolveByCode("YC")
	assert.True(t, errors.IsType(err, errors.TypeUnresolvedJoinKey))

	_, ok := r.Canonical("US")
	assert.False(t, ok)
}

func TestResolveByCode(t *testing.T) {
	r := NewResolver()

	name, err := r.ResolveByCode("wy")
	require.NoError(t, err)
	assert.Equal(t, "Wyoming", name)

	code, ok := r.Canonical(" dc")
	assert.True(t, ok)
	assert.Equal(t, "DC", code)
}

func TestAll_ReturnsCopy(t *testing.T) {
	r := NewResolver()
	refs := r.All()
	refs[0].Name = "Changed"

	name, err := r.ResolveByCode(refs[0].Code)
	require.NoError(t, err)
	assert.NotEqual(t, "Changed", name)
}
