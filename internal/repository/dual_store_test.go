package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
	failPut bool
	posts   int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{data: make(map[string][]byte)}
}

func (f *fakeRemote) GetJSON(_ context.Context, path string, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return errors.New("remote unavailable")
	}
	data, ok := f.data[path]
	if !ok {
		data = []byte("[]")
	}
	return json.Unmarshal(data, out)
}

func (f *fakeRemote) PostJSON(_ context.Context, path string, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts++
	if f.failPut {
		return errors.New("remote unavailable")
	}
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	f.data[path] = data
	return nil
}

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failSet bool
	failGet bool
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, false, errors.New("disk error")
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errors.New("disk full")
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memCache) Close() error { return nil }

func sampleGoals() []model.Goal {
	return []model.Goal{
		{ID: "g1", Type: model.GoalDaily, Category: model.CategoryVocabulary, Target: 10, Progress: 3, Status: model.GoalActive},
	}
}

func TestDualStore_SaveWritesBothLegs(t *testing.T) {
	remote, cache := newFakeRemote(), newMemCache()
	store := NewDualStore[[]model.Goal](remote, cache, util.PathGoals, util.CacheKeyGoals, nil)

	require.NoError(t, store.Save(context.Background(), sampleGoals()))

	assert.Contains(t, remote.data, util.PathGoals)
	assert.Contains(t, cache.data, util.CacheKeyGoals)
}

func TestDualStore_RemoteFailureStillWritesLocal(t *testing.T) {
	remote, cache := newFakeRemote(), newMemCache()
	remote.failPut = true
	store := NewDualStore[[]model.Goal](remote, cache, util.PathGoals, util.CacheKeyGoals, nil)

	err := store.Save(context.Background(), sampleGoals())
	require.NoError(t, err, "remote failure must not surface")

	var cached []model.Goal
	require.NoError(t, json.Unmarshal(cache.data[util.CacheKeyGoals], &cached))
	require.Len(t, cached, 1)
	assert.Equal(t, 3, cached[0].Progress)
}

func TestDualStore_BothLegsFail(t *testing.T) {
	remote, cache := newFakeRemote(), newMemCache()
	remote.failPut = true
	cache.failSet = true
	store := NewDualStore[[]model.Goal](remote, cache, util.PathGoals, util.CacheKeyGoals, nil)

	err := store.Save(context.Background(), sampleGoals())
	var perr *util.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, util.CacheKeyGoals, perr.Key)
}

func TestDualStore_LoadPrefersRemote(t *testing.T) {
	remote, cache := newFakeRemote(), newMemCache()
	remote.data[util.PathGoals] = []byte(`[{"id":"remote","type":"daily","category":"games","target":5,"progress":1,"status":"active"}]`)
	cache.data[util.CacheKeyGoals] = []byte(`[{"id":"local","type":"daily","category":"games","target":5,"progress":2,"status":"active"}]`)
	store := NewDualStore[[]model.Goal](remote, cache, util.PathGoals, util.CacheKeyGoals, nil)

	goals, found, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, goals, 1)
	assert.Equal(t, "remote", goals[0].ID)

	// 远端结果刷新本地缓存
	assert.Contains(t, string(cache.data[util.CacheKeyGoals]), `"remote"`)
}

func TestDualStore_LoadFallsBackToLocal(t *testing.T) {
	remote, cache := newFakeRemote(), newMemCache()
	remote.failGet = true
	cache.data[util.CacheKeyGoals] = []byte(`[{"id":"local","type":"weekly","category":"lessons","target":5,"progress":2,"status":"active"}]`)
	store := NewDualStore[[]model.Goal](remote, cache, util.PathGoals, util.CacheKeyGoals, nil)

	goals, found, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "local", goals[0].ID)
}

func TestDualStore_LoadBothEmpty(t *testing.T) {
	remote, cache := newFakeRemote(), newMemCache()
	remote.failGet = true
	store := NewDualStore[[]model.Goal](remote, cache, util.PathGoals, util.CacheKeyGoals, nil)

	goals, found, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, goals)
}

func TestDualStore_LoadBothFail(t *testing.T) {
	remote, cache := newFakeRemote(), newMemCache()
	remote.failGet = true
	cache.failGet = true
	store := NewDualStore[[]model.Goal](remote, cache, util.PathGoals, util.CacheKeyGoals, nil)

	_, found, err := store.Load(context.Background())
	assert.False(t, found)
	var perr *util.PersistenceError
	assert.ErrorAs(t, err, &perr)
}
