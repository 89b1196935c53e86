// Package index provides identity management for the interpretations of a sheet.
//
// Every entity registered in an Index receives an identifier built from the
// index prefix and a monotonically increasing counter ("I1", "I2", ...).
// Identifiers are never reused: removing an entity leaves a hole that the
// navigation helpers skip.
package index

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/OFFIS-RIT/scorelink/pkg/logger"
	"github.com/emirpasic/gods/maps/treemap"
)

var (
	// ErrNoID is returned when inserting an entity that has no identifier.
	ErrNoID = errors.New("entity has no id")
	// ErrBadID is returned when an identifier carries no numeric suffix.
	ErrBadID = errors.New("id has no numeric value")
)

// Entity is anything that can be managed by an Index.
type Entity interface {
	ID() string
	SetID(id string)
	IsVip() bool
	SetVip(vip bool)
}

// Base carries the identity state shared by all indexed entities.
// Embed it to satisfy Entity.
type Base struct {
	EntityID string `json:"id,omitempty" yaml:"id,omitempty"`
	vip      bool
}

func (b *Base) ID() string      { return b.EntityID }
func (b *Base) SetID(id string) { b.EntityID = id }
func (b *Base) IsVip() bool     { return b.vip }
func (b *Base) SetVip(vip bool) { b.vip = vip }

// Index is a concurrency safe registry of entities ordered by the numeric
// value of their id.
type Index[E Entity] struct {
	prefix string
	lastID atomic.Int64

	mu       sync.RWMutex
	entities *treemap.Map

	vipIDs map[int]struct{}
	valid  func(E) bool
}

// Option configures an Index.
type Option[E Entity] func(*Index[E])

// WithVipIDs declares the numeric ids whose entities get flagged as VIP.
func WithVipIDs[E Entity](ids ...int) Option[E] {
	return func(x *Index[E]) {
		for _, id := range ids {
			x.vipIDs[id] = struct{}{}
		}
	}
}

// WithValidator replaces the predicate used by navigation to skip entities.
// By default every present entity is valid.
func WithValidator[E Entity](valid func(E) bool) Option[E] {
	return func(x *Index[E]) {
		if valid != nil {
			x.valid = valid
		}
	}
}

// New creates an empty index whose ids start with prefix.
func New[E Entity](prefix string, opts ...Option[E]) *Index[E] {
	x := &Index[E]{
		prefix:   prefix,
		entities: treemap.NewWithIntComparator(),
		vipIDs:   make(map[int]struct{}),
		valid:    func(E) bool { return true },
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(x)
	}
	return x
}

// Prefix returns the prefix used for every id of this index.
func (x *Index[E]) Prefix() string {
	return x.prefix
}

// Register assigns a fresh id to e and stores it. Entities that already carry
// an id are left untouched and their id is returned.
func (x *Index[E]) Register(e E) string {
	if id := e.ID(); id != "" {
		return id
	}

	value := int(x.lastID.Add(1))
	id := x.prefix + strconv.Itoa(value)
	e.SetID(id)

	x.mu.Lock()
	x.entities.Put(value, e)
	x.mu.Unlock()

	x.checkVip(value, e)
	return id
}

// Insert stores an entity under the id it already carries.
// The id counter is not advanced, callers restoring entities must call
// SetLastID afterwards.
func (x *Index[E]) Insert(e E) error {
	id := e.ID()
	if id == "" {
		return ErrNoID
	}
	value, err := x.valueOf(id)
	if err != nil {
		return fmt.Errorf("insert %q: %w", id, err)
	}

	x.mu.Lock()
	x.entities.Put(value, e)
	x.mu.Unlock()

	x.checkVip(value, e)
	return nil
}

// Remove erases the binding for e. The id counter is left untouched.
func (x *Index[E]) Remove(e E) {
	value, err := x.valueOf(e.ID())
	if err != nil {
		return
	}
	x.mu.Lock()
	x.entities.Remove(value)
	x.mu.Unlock()
}

// Get returns the entity registered under id.
func (x *Index[E]) Get(id string) (E, bool) {
	value, err := x.valueOf(id)
	if err != nil {
		var zero E
		return zero, false
	}
	return x.getValue(value)
}

func (x *Index[E]) getValue(value int) (E, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	found, ok := x.entities.Get(value)
	if !ok {
		var zero E
		return zero, false
	}
	return found.(E), true
}

// Entities returns all entities ordered by id value.
func (x *Index[E]) Entities() []E {
	x.mu.RLock()
	defer x.mu.RUnlock()

	values := x.entities.Values()
	out := make([]E, 0, len(values))
	for _, v := range values {
		out = append(out, v.(E))
	}
	return out
}

// Len returns the number of entities currently registered.
func (x *Index[E]) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.entities.Size()
}

// LastID returns the id built from the current counter value.
func (x *Index[E]) LastID() string {
	return x.prefix + strconv.Itoa(x.LastIDValue())
}

// LastIDValue returns the current counter value.
func (x *Index[E]) LastIDValue() int {
	return int(x.lastID.Load())
}

// SetLastID sets the counter from the numeric suffix of id.
func (x *Index[E]) SetLastID(id string) error {
	value, err := x.valueOf(id)
	if err != nil {
		return fmt.Errorf("set last id %q: %w", id, err)
	}
	x.lastID.Store(int64(value))
	return nil
}

// Reset empties the index and sets the counter back to zero.
func (x *Index[E]) Reset() {
	x.mu.Lock()
	x.entities.Clear()
	x.mu.Unlock()
	x.lastID.Store(0)
}

func (x *Index[E]) checkVip(value int, e E) {
	if _, ok := x.vipIDs[value]; !ok {
		return
	}
	e.SetVip(true)
	logger.Info("[Index] VIP entity", "id", e.ID())
}

// valueOf returns the numeric part of an id carrying this index prefix.
func (x *Index[E]) valueOf(id string) (int, error) {
	digits, ok := strings.CutPrefix(id, x.prefix)
	if !ok || digits == "" {
		return 0, ErrBadID
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, ErrBadID
		}
	}
	value, err := strconv.Atoi(digits)
	if err != nil {
		return 0, ErrBadID
	}
	return value, nil
}

// IDValue extracts the numeric suffix of an id whatever its prefix, "I42"
// gives 42. Use it to order ids, lookups go through the index prefix.
func IDValue(id string) (int, error) {
	digits := strings.TrimLeftFunc(id, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if digits == "" {
		return 0, ErrBadID
	}
	value, err := strconv.Atoi(digits)
	if err != nil {
		return 0, ErrBadID
	}
	return value, nil
}

// CompareIDs orders two ids by numeric value.
func CompareIDs(a, b string) int {
	va, errA := IDValue(a)
	vb, errB := IDValue(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	switch {
	case va < vb:
		return -1
	case va > vb:
		return 1
	default:
		return 0
	}
}
