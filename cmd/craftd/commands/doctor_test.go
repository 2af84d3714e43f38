package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctor(t *testing.T) {
	cmd := Doctor()

	require.NotNil(t, cmd)
	assert.Equal(t, "doctor", cmd.Use)
	assert.Equal(t, "Diagnose configuration and connectivity", cmd.Short)
}

func TestDoctor_Flags(t *testing.T) {
	cmd := Doctor()

	configFlag := cmd.Flags().Lookup("config")
	require.NotNil(t, configFlag, "config flag should exist")
	assert.Equal(t, "c", configFlag.Shorthand)

	jsonFlag := cmd.Flags().Lookup("json")
	require.NotNil(t, jsonFlag, "json flag should exist")
	assert.Equal(t, "false", jsonFlag.DefValue)
}

func TestDoctor_RunE(t *testing.T) {
	cmd := Doctor()
	assert.NotNil(t, cmd.RunE, "Doctor command should have RunE function")
}
