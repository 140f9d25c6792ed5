package main

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headlessFlagSet(t *testing.T) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("apply", pflag.ContinueOnError)
	flags.Bool("headless", false, "")
	return flags
}

func TestResolveHeadlessFlagNotPassed(t *testing.T) {
	flags := headlessFlagSet(t)
	// The config file's setting survives when the flag is absent.
	assert.True(t, resolveHeadless(flags, false, true))
	assert.False(t, resolveHeadless(flags, false, false))
}

func TestResolveHeadlessFlagWins(t *testing.T) {
	flags := headlessFlagSet(t)
	require.NoError(t, flags.Set("headless", "false"))
	// An explicit flag overrides the config either way.
	assert.False(t, resolveHeadless(flags, false, true))

	flags = headlessFlagSet(t)
	require.NoError(t, flags.Set("headless", "true"))
	assert.True(t, resolveHeadless(flags, true, false))
}
