// Package config manages webcanvas configuration as named, self-validating
// sections persisted through a JSON file store.
package config

import (
	"sync"
)

var (
	globalManager *Manager
	globalMu      sync.Mutex
)

// Initialize creates and loads the global configuration manager. Should be
// called once at daemon startup; an empty configPath uses the default
// location under the user's home directory.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	store, err := NewFileStore(configPath)
	if err != nil {
		return err
	}

	manager := NewManager(store)
	for _, s := range []Section{
		NewSyncSection(),
		NewAutomationSection(),
		NewInterceptSection(),
		NewBrowserSection(),
	} {
		if err := manager.RegisterSection(s); err != nil {
			return err
		}
	}

	if err := manager.LoadAll(); err != nil {
		return err
	}

	globalManager = manager
	return nil
}

// Global returns the global configuration manager. Panics if Initialize
// has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}
	return globalManager
}

// GetSync returns the synchronization section from global config.
func GetSync() *SyncSection {
	if s, ok := Global().GetSection(SectionIDSync); ok {
		if sync, ok := s.(*SyncSection); ok {
			return sync
		}
	}
	return nil
}

// GetAutomation returns the automation section from global config.
func GetAutomation() *AutomationSection {
	if s, ok := Global().GetSection(SectionIDAutomation); ok {
		if automation, ok := s.(*AutomationSection); ok {
			return automation
		}
	}
	return nil
}

// GetIntercept returns the deletion-intercept section from global config.
func GetIntercept() *InterceptSection {
	if s, ok := Global().GetSection(SectionIDIntercept); ok {
		if intercept, ok := s.(*InterceptSection); ok {
			return intercept
		}
	}
	return nil
}

// GetBrowser returns the browser section from global config.
func GetBrowser() *BrowserSection {
	if s, ok := Global().GetSection(SectionIDBrowser); ok {
		if browser, ok := s.(*BrowserSection); ok {
			return browser
		}
	}
	return nil
}
