package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Base
	Name string `json:"name"`
}

func newItem(name string) *item {
	return &item{Name: name}
}

func TestRegister(t *testing.T) {
	x := New[*item]("I")

	a := newItem("a")
	b := newItem("b")
	assert.Equal(t, "I1", x.Register(a))
	assert.Equal(t, "I2", x.Register(b))

	t.Run("idempotent", func(t *testing.T) {
		assert.Equal(t, "I1", x.Register(a))
		assert.Equal(t, 2, x.LastIDValue())
		assert.Equal(t, 2, x.Len())
	})

	t.Run("get", func(t *testing.T) {
		got, ok := x.Get("I2")
		require.True(t, ok)
		assert.Same(t, b, got)

		_, ok = x.Get("I9")
		assert.False(t, ok)
		_, ok = x.Get("nope")
		assert.False(t, ok)
	})
}

func TestRegisterConcurrent(t *testing.T) {
	x := New[*item]("I")

	const workers = 8
	const perWorker = 250

	var wg sync.WaitGroup
	ids := make(chan string, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids <- x.Register(newItem(fmt.Sprintf("%d", i)))
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{})
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, workers*perWorker, x.LastIDValue())
	assert.Equal(t, workers*perWorker, x.Len())
}

func TestInsert(t *testing.T) {
	x := New[*item]("I")

	err := x.Insert(newItem("anonymous"))
	assert.ErrorIs(t, err, ErrNoID)

	known := newItem("known")
	known.SetID("I7")
	require.NoError(t, x.Insert(known))

	got, ok := x.Get("I7")
	require.True(t, ok)
	assert.Same(t, known, got)
	// inserting does not advance the counter
	assert.Equal(t, 0, x.LastIDValue())
}

func TestRemoveKeepsCounter(t *testing.T) {
	x := New[*item]("I")
	items := []*item{newItem("a"), newItem("b"), newItem("c")}
	for _, it := range items {
		x.Register(it)
	}

	x.Remove(items[1])
	_, ok := x.Get("I2")
	assert.False(t, ok)
	assert.Equal(t, 3, x.LastIDValue())

	next := newItem("d")
	assert.Equal(t, "I4", x.Register(next))
}

func TestNavigation(t *testing.T) {
	x := New[*item]("I", WithValidator(func(it *item) bool {
		return it.Name != "invalid"
	}))
	for _, name := range []string{"a", "gone", "invalid", "d", "e"} {
		x.Register(newItem(name))
	}
	gone, _ := x.Get("I2")
	x.Remove(gone)

	tests := []struct {
		name   string
		nav    func() (string, bool)
		wantID string
		wantOK bool
	}{
		{"after empty starts at beginning", func() (string, bool) { return x.IDAfter("") }, "I1", true},
		{"after skips hole and invalid", func() (string, bool) { return x.IDAfter("I1") }, "I4", true},
		{"after last", func() (string, bool) { return x.IDAfter("I5") }, "", false},
		{"before empty", func() (string, bool) { return x.IDBefore("") }, "", false},
		{"before skips invalid and hole", func() (string, bool) { return x.IDBefore("I4") }, "I1", true},
		{"before first", func() (string, bool) { return x.IDBefore("I1") }, "", false},
		{"after garbage", func() (string, bool) { return x.IDAfter("zz") }, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := tt.nav()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}

	t.Run("values", func(t *testing.T) {
		v, ok := x.IDValueAfter(0)
		assert.True(t, ok)
		assert.Equal(t, 1, v)

		v, ok = x.IDValueAfter(4)
		assert.True(t, ok)
		assert.Equal(t, 5, v)

		_, ok = x.IDValueBefore(0)
		assert.False(t, ok)

		v, ok = x.IDValueBefore(5)
		assert.True(t, ok)
		assert.Equal(t, 4, v)
	})
}

func TestNavigationEmpty(t *testing.T) {
	x := New[*item]("I")
	_, ok := x.IDAfter("")
	assert.False(t, ok)
	_, ok = x.IDBefore("I3")
	assert.False(t, ok)
}

func TestLastIDAndReset(t *testing.T) {
	x := New[*item]("G")
	x.Register(newItem("a"))
	assert.Equal(t, "G1", x.LastID())

	require.NoError(t, x.SetLastID("G40"))
	assert.Equal(t, "G41", x.Register(newItem("b")))

	err := x.SetLastID("G")
	assert.True(t, errors.Is(err, ErrBadID))
	assert.Equal(t, 41, x.LastIDValue())

	x.Reset()
	assert.Equal(t, 0, x.LastIDValue())
	assert.Equal(t, 0, x.Len())
	assert.Equal(t, "G1", x.Register(newItem("c")))
}

func TestVip(t *testing.T) {
	x := New[*item]("I", WithVipIDs[*item](2, 5))
	a, b := newItem("a"), newItem("b")
	x.Register(a)
	x.Register(b)
	assert.False(t, a.IsVip())
	assert.True(t, b.IsVip())

	c := newItem("c")
	c.SetID("I5")
	require.NoError(t, x.Insert(c))
	assert.True(t, c.IsVip())
}

func TestSnapshotRoundTrip(t *testing.T) {
	x := New[*item]("I")
	for _, name := range []string{"a", "b", "c", "d"} {
		x.Register(newItem(name))
	}
	c, _ := x.Get("I3")
	x.Remove(c)

	data, err := json.Marshal(x.Snapshot())
	require.NoError(t, err)

	var snap Snapshot[*item]
	require.NoError(t, json.Unmarshal(data, &snap))

	// restore must not depend on list order
	snap.Entities[0], snap.Entities[2] = snap.Entities[2], snap.Entities[0]

	restored, err := Restore(snap)
	require.NoError(t, err)

	assert.Equal(t, "I", restored.Prefix())
	assert.Equal(t, 4, restored.LastIDValue())

	var names []string
	for _, e := range restored.Entities() {
		names = append(names, e.ID()+":"+e.Name)
	}
	assert.Equal(t, []string{"I1:a", "I2:b", "I4:d"}, names)

	next, ok := restored.IDAfter("I2")
	assert.True(t, ok)
	assert.Equal(t, "I4", next)
	assert.Equal(t, "I5", restored.Register(newItem("e")))
}

func TestRestoreRejectsAnonymous(t *testing.T) {
	snap := Snapshot[*item]{Prefix: "I", LastIDValue: 1, Entities: []*item{newItem("x")}}
	_, err := Restore(snap)
	assert.ErrorIs(t, err, ErrNoID)
}

func TestCompareIDs(t *testing.T) {
	assert.Equal(t, -1, CompareIDs("I2", "I10"))
	assert.Equal(t, 1, CompareIDs("I10", "I9"))
	assert.Equal(t, 0, CompareIDs("I3", "I3"))
}

func TestIDsMustCarryPrefix(t *testing.T) {
	x := New[*item]("I")
	for range 5 {
		x.Register(newItem("n"))
	}

	tests := []struct {
		name string
		id   string
		ok   bool
	}{
		{"own prefix", "I5", true},
		{"other prefix", "X5", false},
		{"longer prefix", "II5", false},
		{"no prefix", "5", false},
		{"signed", "I+5", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := x.Get(tt.id)
			assert.Equal(t, tt.ok, ok)
		})
	}

	_, ok := x.IDAfter("X2")
	assert.False(t, ok)
	_, ok = x.IDBefore("X4")
	assert.False(t, ok)

	foreign := newItem("f")
	foreign.SetID("G9")
	assert.ErrorIs(t, x.Insert(foreign), ErrBadID)
	assert.ErrorIs(t, x.SetLastID("G9"), ErrBadID)
	assert.Equal(t, 5, x.Len())
}
