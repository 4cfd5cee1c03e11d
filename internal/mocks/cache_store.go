package mocks

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/avatarctic/blog-platform/internal/core/ports"
)

// ErrStoreDown is returned inside Outcome/Lookup while CacheStore.Down is set.
var ErrStoreDown = errors.New("cache store down")

// CacheOp records one call against CacheStore.
type CacheOp struct {
	Name string
	Keys []string
}

// CacheStore is an in-memory ports.CacheStore that records every call.
type CacheStore struct {
	mu     sync.Mutex
	values map[string][]byte
	ttls   map[string]time.Duration
	zsets  map[string]map[string]float64
	hashes map[string]map[string]string
	ops    []CacheOp
	down   bool
}

func NewCacheStore() *CacheStore {
	return &CacheStore{
		values: map[string][]byte{},
		ttls:   map[string]time.Duration{},
		zsets:  map[string]map[string]float64{},
		hashes: map[string]map[string]string{},
	}
}

// SetDown makes every subsequent operation fail.
func (m *CacheStore) SetDown(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down = down
}

// Ops returns a copy of the recorded calls.
func (m *CacheStore) Ops() []CacheOp {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CacheOp(nil), m.ops...)
}

// OpCount counts recorded calls named name.
func (m *CacheStore) OpCount(name string) int {
	n := 0
	for _, op := range m.Ops() {
		if op.Name == name {
			n++
		}
	}
	return n
}

// ResetOps clears the call log.
func (m *CacheStore) ResetOps() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = nil
}

// Has reports whether key exists in any keyspace.
func (m *CacheStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, v := m.values[key]
	_, z := m.zsets[key]
	_, h := m.hashes[key]
	return v || z || h
}

// TTL returns the ttl passed to the last Set of key.
func (m *CacheStore) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key]
}

// Score returns the sorted-set score of member.
func (m *CacheStore) Score(setKey, member string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.zsets[setKey][member]
	return s, ok
}

// SeedHash writes integer hash fields without recording an op.
func (m *CacheStore) SeedHash(key string, fields map[string]int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.hashes[key]
	if h == nil {
		h = map[string]string{}
		m.hashes[key] = h
	}
	for f, v := range fields {
		h[f] = strconv.FormatInt(v, 10)
	}
}

// SeedValue writes a raw value without recording an op.
func (m *CacheStore) SeedValue(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// SeedScore writes a sorted-set member without recording an op.
func (m *CacheStore) SeedScore(setKey, member string, score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z := m.zsets[setKey]
	if z == nil {
		z = map[string]float64{}
		m.zsets[setKey] = z
	}
	z[member] = score
}

func (m *CacheStore) record(name string, keys ...string) error {
	m.ops = append(m.ops, CacheOp{Name: name, Keys: keys})
	if m.down {
		return ErrStoreDown
	}
	return nil
}

func (m *CacheStore) Get(ctx context.Context, key string) ports.Lookup[[]byte] {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("get", key); err != nil {
		return ports.Lookup[[]byte]{Err: err}
	}
	v, ok := m.values[key]
	return ports.Lookup[[]byte]{Value: v, Found: ok}
}

func (m *CacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) ports.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("set", key); err != nil {
		return ports.Outcome{Err: err}
	}
	m.values[key] = value
	m.ttls[key] = ttl
	return ports.Outcome{}
}

func (m *CacheStore) Delete(ctx context.Context, keys ...string) ports.Outcome {
	if len(keys) == 0 {
		return ports.Outcome{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("del", keys...); err != nil {
		return ports.Outcome{Err: err}
	}
	for _, k := range keys {
		delete(m.values, k)
		delete(m.ttls, k)
		delete(m.zsets, k)
		delete(m.hashes, k)
	}
	return ports.Outcome{}
}

func (m *CacheStore) SortedSetAdd(ctx context.Context, setKey string, score float64, member string) ports.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("zadd", setKey); err != nil {
		return ports.Outcome{Err: err}
	}
	z := m.zsets[setKey]
	if z == nil {
		z = map[string]float64{}
		m.zsets[setKey] = z
	}
	z[member] = score
	return ports.Outcome{}
}

func (m *CacheStore) SortedSetRaise(ctx context.Context, setKey string, score float64, member string) ports.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("zadd", setKey); err != nil {
		return ports.Outcome{Err: err}
	}
	z := m.zsets[setKey]
	if z == nil {
		z = map[string]float64{}
		m.zsets[setKey] = z
	}
	if cur, ok := z[member]; !ok || score > cur {
		z[member] = score
	}
	return ports.Outcome{}
}

func (m *CacheStore) SortedSetRange(ctx context.Context, setKey string, start, stop int64, opts ports.RangeOptions) ports.Lookup[[]ports.ScoredMember] {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("zrange", setKey); err != nil {
		return ports.Lookup[[]ports.ScoredMember]{Err: err}
	}
	z, ok := m.zsets[setKey]
	if !ok {
		return ports.Lookup[[]ports.ScoredMember]{Value: []ports.ScoredMember{}}
	}
	members := make([]ports.ScoredMember, 0, len(z))
	for member, score := range z {
		members = append(members, ports.ScoredMember{Member: member, Score: score})
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Score != members[j].Score {
			return members[i].Score < members[j].Score
		}
		return members[i].Member < members[j].Member
	})
	if opts.Reverse {
		for i, j := 0, len(members)-1; i < j; i, j = i+1, j-1 {
			members[i], members[j] = members[j], members[i]
		}
	}
	n := int64(len(members))
	if stop < 0 {
		stop = n + stop
	}
	if stop >= n {
		stop = n - 1
	}
	if start < 0 {
		start = 0
	}
	if start > stop {
		return ports.Lookup[[]ports.ScoredMember]{Value: []ports.ScoredMember{}, Found: true}
	}
	out := members[start : stop+1]
	if !opts.WithScores {
		for i := range out {
			out[i].Score = 0
		}
	}
	return ports.Lookup[[]ports.ScoredMember]{Value: out, Found: true}
}

func (m *CacheStore) SortedSetRemove(ctx context.Context, setKey, member string) ports.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("zrem", setKey); err != nil {
		return ports.Outcome{Err: err}
	}
	delete(m.zsets[setKey], member)
	return ports.Outcome{}
}

func (m *CacheStore) HashGetAll(ctx context.Context, key string) ports.Lookup[map[string]string] {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("hgetall", key); err != nil {
		return ports.Lookup[map[string]string]{Err: err}
	}
	h, ok := m.hashes[key]
	out := make(map[string]string, len(h))
	for f, v := range h {
		out[f] = v
	}
	return ports.Lookup[map[string]string]{Value: out, Found: ok}
}

func (m *CacheStore) HashIncrBy(ctx context.Context, key, field string, delta int64) ports.Lookup[int64] {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("hincrby", key); err != nil {
		return ports.Lookup[int64]{Err: err}
	}
	h := m.hashes[key]
	if h == nil {
		h = map[string]string{}
		m.hashes[key] = h
	}
	cur, _ := strconv.ParseInt(h[field], 10, 64)
	cur += delta
	h[field] = strconv.FormatInt(cur, 10)
	return ports.Lookup[int64]{Value: cur, Found: true}
}

func (m *CacheStore) IsHealthy(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.down
}
