// Package hooks provides extension points around a processing run.
// Hooks allow injecting custom logic without touching the run itself.
package hooks

import (
	"context"
	"sync"
)

// HookManager manages all registered hooks.
type HookManager struct {
	mu sync.RWMutex

	preRunHooks  []PreRunHook
	postRunHooks []PostRunHook
	errorHooks   []ErrorHook
}

// NewHookManager creates a new hook manager.
func NewHookManager() *HookManager {
	return &HookManager{}
}

// PreRunHook is called after sizing but before the ledger is opened.
// Use cases: validation, logging, access checks.
type PreRunHook func(ctx context.Context, info *SourceInfo) (context.Context, error)

// SourceInfo contains information about the input ledger.
type SourceInfo struct {
	Path      string
	Format    string
	SizeBytes int64
	Metadata  map[string]string
}

// PostRunHook is called after a run completes, successfully or not.
// Use cases: logging, notification, result export.
type PostRunHook func(ctx context.Context, info *RunInfo) error

// RunInfo contains the outcome of a processing run.
type RunInfo struct {
	Path       string
	BytesRead  int64
	Accepted   int64
	Duplicates int64
	Unkeyed    int64
	Categories int
	Duration   int64 // nanoseconds
	Failed     bool
}

// ErrorHook is called when a run fails mid-stream.
// Use cases: alerting, logging, recovery.
type ErrorHook func(ctx context.Context, err error, phase string) error

// RegisterPreRun adds a pre-run hook.
func (m *HookManager) RegisterPreRun(hook PreRunHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preRunHooks = append(m.preRunHooks, hook)
}

// RegisterPostRun adds a post-run hook.
func (m *HookManager) RegisterPostRun(hook PostRunHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postRunHooks = append(m.postRunHooks, hook)
}

// RegisterError adds an error hook.
func (m *HookManager) RegisterError(hook ErrorHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorHooks = append(m.errorHooks, hook)
}

// RunPreRun executes all pre-run hooks.
func (m *HookManager) RunPreRun(ctx context.Context, info *SourceInfo) (context.Context, error) {
	m.mu.RLock()
	hooks := m.preRunHooks
	m.mu.RUnlock()

	for _, hook := range hooks {
		var err error
		ctx, err = hook(ctx, info)
		if err != nil {
			return ctx, err
		}
	}
	return ctx, nil
}

// RunPostRun executes all post-run hooks.
func (m *HookManager) RunPostRun(ctx context.Context, info *RunInfo) error {
	m.mu.RLock()
	hooks := m.postRunHooks
	m.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, info); err != nil {
			return err
		}
	}
	return nil
}

// RunError executes all error hooks.
func (m *HookManager) RunError(ctx context.Context, err error, phase string) error {
	m.mu.RLock()
	hooks := m.errorHooks
	m.mu.RUnlock()

	for _, hook := range hooks {
		if hookErr := hook(ctx, err, phase); hookErr != nil {
			return hookErr
		}
	}
	return err
}

// Clear removes all registered hooks.
func (m *HookManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.preRunHooks = nil
	m.postRunHooks = nil
	m.errorHooks = nil
}

// --- Built-in hooks ---

// MetadataHook creates a hook that attaches metadata to the source.
func MetadataHook(metadata map[string]string) PreRunHook {
	return func(ctx context.Context, info *SourceInfo) (context.Context, error) {
		if info.Metadata == nil {
			info.Metadata = make(map[string]string)
		}
		for k, v := range metadata {
			info.Metadata[k] = v
		}
		return ctx, nil
	}
}

// LoggingHook creates a hook that logs run outcomes.
func LoggingHook(logger func(format string, args ...interface{})) PostRunHook {
	return func(ctx context.Context, info *RunInfo) error {
		logger("Processed %s: %d accepted, %d duplicates, %d unkeyed (%d bytes)",
			info.Path, info.Accepted, info.Duplicates, info.Unkeyed, info.BytesRead)
		return nil
	}
}
