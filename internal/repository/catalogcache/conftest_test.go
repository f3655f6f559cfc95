package catalogcache

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain/catalog"
)

type mockSource struct {
	listings     []catalog.Listing
	err          error
	fingerprints []string // consumed in order; the last one repeats
	fpErr        error
	loads        int
}

func (m *mockSource) Load(_ context.Context) ([]catalog.Listing, error) {
	m.loads++
	return m.listings, m.err
}

func (m *mockSource) Fingerprint(_ context.Context) (string, error) {
	if m.fpErr != nil {
		return "", m.fpErr
	}
	fp := m.fingerprints[0]
	if len(m.fingerprints) > 1 {
		m.fingerprints = m.fingerprints[1:]
	}
	return fp, nil
}

type mockKVStore struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	ttls    map[string]time.Duration
	deleted []string
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockKVStore) Del(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.data, key)
	return nil
}

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
}

var mug = []catalog.Listing{{Title: "Mug", Popularity: 10, Quantity: 5, Tag: "kitchen", ShopName: "ShopA"}}
