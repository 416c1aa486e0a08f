// Package mock holds hand-written fakes for the store's durable
// substrate, so the degradation ladder can be exercised without sqlite.
package mock

import (
	"fmt"
	"sync"

	"github.com/MDharunPrasad/photo-kiosk/internal/kvstore"
	"github.com/MDharunPrasad/photo-kiosk/internal/quota"
)

// FakeKV - in-memory realization of store.KV. Writes can be made to
// fail on demand, either a scripted number of times or by capacity.
type FakeKV struct {
	mu sync.Mutex

	Data     map[string]string
	Capacity int64 // 0 = unlimited

	// FailSets makes the next N Set calls fail with ErrQuotaExceeded
	// regardless of capacity.
	FailSets int

	// SetKeys records every attempted Set in order.
	SetKeys []string

	fixedUsage *quota.Usage
}

func NewFakeKV() *FakeKV {
	return &FakeKV{Data: make(map[string]string)}
}

func (f *FakeKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.Data[key]
	return v, ok, nil
}

func (f *FakeKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.SetKeys = append(f.SetKeys, key)

	if f.FailSets > 0 {
		f.FailSets--
		return fmt.Errorf("fake set %s: %w", key, kvstore.ErrQuotaExceeded)
	}

	if f.Capacity > 0 {
		projected := f.usedLocked() - int64(len(f.Data[key])+keyBytes(f.Data, key)) +
			int64(len(key)+len(value))
		if projected > f.Capacity {
			return fmt.Errorf("fake set %s: %w", key, kvstore.ErrQuotaExceeded)
		}
	}

	f.Data[key] = value
	return nil
}

func (f *FakeKV) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Data, key)
	return nil
}

func (f *FakeKV) Usage() (quota.Usage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fixedUsage != nil {
		return *f.fixedUsage, nil
	}

	used := f.usedLocked()
	limit := f.Capacity
	if limit == 0 {
		limit = kvstore.DefaultCapacity
	}
	return quota.Usage{
		UsedBytes:  used,
		LimitBytes: limit,
		Percentage: float64(used) / float64(limit) * 100,
	}, nil
}

// SetUsage pins Usage() to a fixed value, for pressure-level scenarios.
func (f *FakeKV) SetUsage(u quota.Usage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fixedUsage = &u
}

func (f *FakeKV) usedLocked() int64 {
	var used int64
	for k, v := range f.Data {
		used += int64(len(k) + len(v))
	}
	return used
}

func keyBytes(data map[string]string, key string) int {
	if _, ok := data[key]; ok {
		return len(key)
	}
	return 0
}
