package service

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	usernameIndexMinCapacity = 10000
	usernameIndexFPRate      = 0.001
)

// UsernameIndex is a bloom filter over taken usernames. A negative answer is
// definitive, so most availability checks skip the database; positives still
// need a store lookup. Deleted accounts leave stale positives behind, which
// only costs an extra query.
type UsernameIndex struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewUsernameIndex builds an index seeded with the given usernames.
func NewUsernameIndex(usernames []string) *UsernameIndex {
	capacity := uint(len(usernames) * 2)
	if capacity < usernameIndexMinCapacity {
		capacity = usernameIndexMinCapacity
	}

	filter := bloom.NewWithEstimates(capacity, usernameIndexFPRate)
	for _, name := range usernames {
		filter.AddString(name)
	}
	return &UsernameIndex{filter: filter}
}

// Add records a newly taken username.
func (i *UsernameIndex) Add(username string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.filter.AddString(username)
}

// MightExist reports whether username may be taken. False is definitive.
func (i *UsernameIndex) MightExist(username string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.filter.TestString(username)
}
