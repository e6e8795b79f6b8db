// File: internal/vault/vault_test.go
package vault

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/aviator-cli/internal/safety"
)

func TestLoadWritesDefaultsOnFirstUse(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	v := New(dir)

	policy, err := v.Load()
	require.NoError(t, err)
	assert.Equal(t, safety.DefaultPolicy(), policy)

	// The merged defaults were persisted.
	raw, err := os.ReadFile(v.Path())
	require.NoError(t, err)
	var onDisk safety.Policy
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Equal(t, safety.DefaultPolicy(), onDisk)
}

func TestLoadMergesOverridesUnderDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	// A partial file: only the mode is overridden.
	partial := []byte(`{"safety_mode": "full-auto"}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, policyFileName), partial, 0o600))

	policy, err := New(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, safety.ModeFullAuto, policy.SafetyMode)
	// Absent fields keep their defaults.
	def := safety.DefaultPolicy()
	assert.Equal(t, def.BlockedTargets, policy.BlockedTargets)
	assert.Equal(t, def.BlockedContentPatterns, policy.BlockedContentPatterns)
	assert.Equal(t, def.BlockedKeywords, policy.BlockedKeywords)
	assert.Equal(t, def.MaxSteps, policy.MaxSteps)
}

func TestLoadPresentEmptyListReplacesDefault(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	partial := []byte(`{"blocked_targets": []}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, policyFileName), partial, 0o600))

	policy, err := New(dir).Load()
	require.NoError(t, err)
	assert.Empty(t, policy.BlockedTargets)
	assert.Equal(t, safety.DefaultPolicy().BlockedKeywords, policy.BlockedKeywords)
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, policyFileName), []byte("{not json"), 0o600))

	_, err := New(dir).Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidStoredPolicy(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, policyFileName),
		[]byte(`{"safety_mode": "yolo"}`), 0o600))

	_, err := New(dir).Load()
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	v := New(dir)

	custom := safety.DefaultPolicy()
	custom.SafetyMode = safety.ModeWatchOnly
	custom.BlockedTargets = append(custom.BlockedTargets, "Keychain Access")
	require.NoError(t, v.Save(custom))

	// A fresh vault sees the saved policy.
	reloaded, err := New(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, custom, reloaded)

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, policyFileName, entries[0].Name())
}

func TestSaveRejectsInvalidPolicy(t *testing.T) {
	t.Parallel()
	v := New(t.TempDir())

	bad := safety.DefaultPolicy()
	bad.MaxSteps = 0
	assert.Error(t, v.Save(bad))

	// Nothing was written.
	_, err := os.Stat(v.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestLoadCachesResult(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	v := New(dir)

	first, err := v.Load()
	require.NoError(t, err)

	// Mutating the file after the first load does not change what the
	// vault hands out for the rest of the run.
	require.NoError(t, os.WriteFile(v.Path(), []byte(`{"safety_mode": "full-auto"}`), 0o600))
	second, err := v.Load()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
