package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseType(t *testing.T) {
	for _, tc := range []struct {
		name string
		want Type
		ok   bool
	}{
		{"entero", Int, true},
		{"flotante", Float, true},
		{"string", String, true},
		{"bool", Bool, true},
		{"nula", Void, true},
		{"unknown", 0, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseType(tc.name)
			require.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func Test_Type_Storable(t *testing.T) {
	assert.True(t, Int.Storable())
	assert.True(t, Float.Storable())
	assert.True(t, String.Storable())
	assert.True(t, Bool.Storable())
	assert.False(t, Void.Storable())
}

func Test_Type_String(t *testing.T) {
	assert.Equal(t, "entero", Int.String())
	assert.Equal(t, "nula", Void.String())
}
