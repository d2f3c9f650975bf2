// Package store persists PR quality facts in SQLite, MySQL or PostgreSQL.
package store

import (
	"sync"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
)

// FactStoreManager manages the FactStore instance shared by commands.
type FactStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	facts        contract.FactStore
}

var _ contract.StoreManager = &FactStoreManager{} // Compile-time check

// GetFactStore returns the FactStore.
func (mgr *FactStoreManager) GetFactStore() contract.FactStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.facts
}

// SetFactStore replaces the managed store.
func (mgr *FactStoreManager) SetFactStore(facts contract.FactStore) {
	mgr.Lock()
	defer mgr.Unlock()
	mgr.facts = facts
}
