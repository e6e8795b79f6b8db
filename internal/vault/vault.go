// File: internal/vault/vault.go

// Package vault persists the safety policy as a JSON document on disk.
// The on-disk file is an override set: absent fields fall back to the
// built-in defaults, so a hand-edited file that only sets "safety_mode"
// still carries the full default block lists.
package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/aviator-cli/internal/observability"
	"github.com/xkilldash9x/aviator-cli/internal/safety"
)

const policyFileName = "policy.json"

// Vault is a policy repository rooted at a data directory. It caches the
// merged policy after the first Load; concurrent readers share the cache.
type Vault struct {
	dir    string
	logger *zap.Logger

	mu     sync.RWMutex
	cached *safety.Policy
}

// New returns a vault rooted at dir. The directory is created on first
// Save or Load if it does not exist.
func New(dir string) *Vault {
	return &Vault{
		dir:    dir,
		logger: observability.GetLogger().Named("vault"),
	}
}

// Path returns the location of the policy file.
func (v *Vault) Path() string {
	return filepath.Join(v.dir, policyFileName)
}

// Load returns the effective policy: defaults merged under any stored
// overrides. The first successful load writes the merged result back so
// the file on disk always reflects what the gate will enforce. The result
// is cached for the lifetime of the vault.
func (v *Vault) Load() (safety.Policy, error) {
	v.mu.RLock()
	if v.cached != nil {
		p := *v.cached
		v.mu.RUnlock()
		return p, nil
	}
	v.mu.RUnlock()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cached != nil {
		return *v.cached, nil
	}

	policy := safety.DefaultPolicy()
	raw, err := os.ReadFile(v.Path())
	switch {
	case os.IsNotExist(err):
		v.logger.Info("No stored policy, writing defaults", zap.String("path", v.Path()))
		if werr := v.write(policy); werr != nil {
			return safety.Policy{}, werr
		}
	case err != nil:
		return safety.Policy{}, fmt.Errorf("reading policy file: %w", err)
	default:
		// Unmarshal over the defaults: fields present in the file win,
		// absent fields keep their default values.
		if uerr := json.Unmarshal(raw, &policy); uerr != nil {
			return safety.Policy{}, fmt.Errorf("parsing policy file %s: %w", v.Path(), uerr)
		}
		if verr := policy.Validate(); verr != nil {
			return safety.Policy{}, fmt.Errorf("stored policy is invalid: %w", verr)
		}
	}

	v.cached = &policy
	return policy, nil
}

// Save validates and persists the policy, replacing both the file and the
// cache. The write is atomic: a temp file in the same directory is
// renamed over the target.
func (v *Vault) Save(policy safety.Policy) error {
	if err := policy.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid policy: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.write(policy); err != nil {
		return err
	}
	v.cached = &policy
	v.logger.Info("Policy saved", zap.String("path", v.Path()), zap.String("mode", string(policy.SafetyMode)))
	return nil
}

func (v *Vault) write(policy safety.Policy) error {
	if err := os.MkdirAll(v.dir, 0o700); err != nil {
		return fmt.Errorf("creating policy directory: %w", err)
	}
	data, err := json.MarshalIndent(policy, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding policy: %w", err)
	}

	tmp, err := os.CreateTemp(v.dir, policyFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp policy file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp policy file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp policy file: %w", err)
	}
	if err := os.Rename(tmpName, v.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing policy file: %w", err)
	}
	return nil
}
