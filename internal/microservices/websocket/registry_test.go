package websocket

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectIDs(r *Registry) []string {
	var ids []string
	for s := range r.AllSessions() {
		ids = append(ids, s.ID())
	}
	slices.Sort(ids)
	return ids
}

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	r := NewRegistry(discardLogger())
	a := newFakeSession("a")

	r.Register(a)
	r.Register(a)

	assert.Equal(t, 1, r.Count())
	assert.True(t, r.Contains("a"))
}

func TestRegistry_UnregisterRemovesSessionAndRole(t *testing.T) {
	r := NewRegistry(discardLogger())
	a := newFakeSession("a")
	r.Register(a)
	require.True(t, r.SetRole("a", "browser"))

	r.Unregister(a)

	assert.False(t, r.Contains("a"))
	role, ok := r.RoleOf("a")
	assert.False(t, ok)
	assert.Empty(t, role)
	assert.Empty(t, collectIDs(r))

	// unknown session is a no-op
	r.Unregister(newFakeSession("ghost"))
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_SetRoleLastWriteWins(t *testing.T) {
	r := NewRegistry(discardLogger())
	r.Register(newFakeSession("a"))

	r.SetRole("a", "browser")
	r.SetRole("a", "pi")

	role, ok := r.RoleOf("a")
	require.True(t, ok)
	assert.Equal(t, "pi", role)
}

func TestRegistry_SetRoleOnUnregisteredSession(t *testing.T) {
	r := NewRegistry(discardLogger())

	assert.False(t, r.SetRole("late", "pi"))

	_, ok := r.RoleOf("late")
	assert.False(t, ok)

	// registering afterwards still starts without a role
	r.Register(newFakeSession("late"))
	_, ok = r.RoleOf("late")
	assert.False(t, ok)
}

func TestRegistry_AllSessionsIsSnapshotAtCallTime(t *testing.T) {
	r := NewRegistry(discardLogger())
	a, b := newFakeSession("a"), newFakeSession("b")
	r.Register(a)
	r.Register(b)

	seq := r.AllSessions()
	r.Unregister(a)
	r.Register(newFakeSession("c"))

	var ids []string
	for s := range seq {
		ids = append(ids, s.ID())
	}
	slices.Sort(ids)
	assert.Equal(t, []string{"a", "b"}, ids)

	// a fresh call reflects the changes
	assert.Equal(t, []string{"b", "c"}, collectIDs(r))
}

func TestRegistry_AllSessionsStopsEarly(t *testing.T) {
	r := NewRegistry(discardLogger())
	for i := range 5 {
		r.Register(newFakeSession(fmt.Sprintf("s%d", i)))
	}

	seen := 0
	for range r.AllSessions() {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestRegistry_NoResurrectionUnderConcurrency(t *testing.T) {
	r := NewRegistry(discardLogger())
	const n = 200

	sessions := make([]*fakeSession, n)
	for i := range sessions {
		sessions[i] = newFakeSession(fmt.Sprintf("s%d", i))
		r.Register(sessions[i])
	}

	var removed sync.Map
	var wg sync.WaitGroup
	for i := range sessions {
		wg.Add(1)
		go func(s *fakeSession) {
			defer wg.Done()
			r.SetRole(s.ID(), "pi")
			r.Unregister(s)
			removed.Store(s.ID(), true)
		}(sessions[i])
	}

	// every id that was fully removed before a snapshot began must be absent
	for range 50 {
		var done []string
		removed.Range(func(k, _ any) bool {
			done = append(done, k.(string))
			return true
		})
		snapshot := collectIDs(r)
		for _, id := range done {
			assert.NotContains(t, snapshot, id)
		}
	}

	wg.Wait()
	assert.Equal(t, 0, r.Count())
	for _, s := range sessions {
		_, ok := r.RoleOf(s.ID())
		assert.False(t, ok)
	}
}

func TestRegistry_CloseAll(t *testing.T) {
	r := NewRegistry(discardLogger())
	a, b := newFakeSession("a"), newFakeSession("b")
	r.Register(a)
	r.Register(b)

	r.CloseAll()

	assert.Equal(t, 1, a.Closes())
	assert.Equal(t, 1, b.Closes())
	assert.False(t, a.IsOpen())
}
