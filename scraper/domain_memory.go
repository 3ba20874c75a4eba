package scraper

import (
	"sync"
	"time"
)

// domainEntry stores the preferred fetch method for a domain with a TTL.
type domainEntry struct {
	method    string
	expiresAt time.Time
}

// DomainMemory remembers which fetch method last worked for each domain,
// so auto mode can skip a simple attempt that is known to come back thin.
// Entries expire after the configured TTL.
type DomainMemory struct {
	store sync.Map // domain (string) -> *domainEntry
	ttl   time.Duration
}

// NewDomainMemory creates a DomainMemory with the given entry TTL.
func NewDomainMemory(ttl time.Duration) *DomainMemory {
	return &DomainMemory{ttl: ttl}
}

// Get returns the remembered method for a domain, or "" when unknown or
// expired.
func (dm *DomainMemory) Get(domain string) string {
	if dm == nil {
		return ""
	}
	val, ok := dm.store.Load(domain)
	if !ok {
		return ""
	}
	entry := val.(*domainEntry)
	if time.Now().After(entry.expiresAt) {
		dm.store.Delete(domain)
		return ""
	}
	return entry.method
}

// Record stores the method that produced a good result for the domain.
func (dm *DomainMemory) Record(domain, method string) {
	if dm == nil || domain == "" || method == "" {
		return
	}
	dm.store.Store(domain, &domainEntry{
		method:    method,
		expiresAt: time.Now().Add(dm.ttl),
	})
}
