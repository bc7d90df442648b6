package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseArgs(t *testing.T) {
	opt, err := ParseArgs([]string{"-run", "-vb", "-o", "out.txt", "prog.json"})
	require.NoError(t, err)
	assert.True(t, opt.Run)
	assert.True(t, opt.Verbose)
	assert.Equal(t, "out.txt", opt.Out)
	assert.Equal(t, "prog.json", opt.Src)
}

func Test_ParseArgs_missingOutArgument(t *testing.T) {
	_, err := ParseArgs([]string{"-o"})
	assert.Error(t, err)
}

func Test_ParseArgs_unknownFlag(t *testing.T) {
	_, err := ParseArgs([]string{"-bogus"})
	assert.Error(t, err)
}

func Test_ParseArgs_defaults(t *testing.T) {
	opt, err := ParseArgs(nil)
	require.NoError(t, err)
	assert.False(t, opt.Run)
	assert.False(t, opt.Verbose)
	assert.False(t, opt.Trace)
	assert.Equal(t, "", opt.Src)
}
