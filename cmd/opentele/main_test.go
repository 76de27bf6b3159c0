package main

import (
	"bytes"
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.Equal(t, 0, execute(context.Background()))
	assert.Contains(t, out.String(), "opentele build dev")
	assert.Contains(t, out.String(), runtime.Version())
}

func TestUnknownArgument(t *testing.T) {
	rootCmd.SetArgs([]string{"serve-everything"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	assert.Equal(t, 1, execute(context.Background()))
}

func TestExitError(t *testing.T) {
	assert.Equal(t, "exit status 1", exitError(1).Error())
}
