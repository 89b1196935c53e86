// Package pipeline resolves a score document: it builds the sheet, runs the
// links step over every system and persists the inter index.
package pipeline

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/OFFIS-RIT/scorelink/internal/config"
	"github.com/OFFIS-RIT/scorelink/internal/util"
	"github.com/OFFIS-RIT/scorelink/pkg/index"
	"github.com/OFFIS-RIT/scorelink/pkg/logger"
	"github.com/OFFIS-RIT/scorelink/pkg/sheet"
	"github.com/OFFIS-RIT/scorelink/pkg/sig"
	"github.com/OFFIS-RIT/scorelink/pkg/step"
	"github.com/OFFIS-RIT/scorelink/pkg/store"
	"github.com/OFFIS-RIT/scorelink/pkg/symbol"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	StepLinks = "links"

	storeRetries = 3
)

type Params struct {
	Strategy    step.Strategy
	Parallelism int
	VipIDs      []int
	Constants   symbol.Constants
	// Store receives the index snapshot. Nothing is persisted when nil.
	Store store.SnapshotStore
	// Key names the snapshot, a key is generated when empty.
	Key string
}

// ParamsFromConfig maps the loaded configuration onto resolve parameters.
func ParamsFromConfig(cfg *config.Config, s store.SnapshotStore) (Params, error) {
	strategy, err := step.ParseStrategy(cfg.Strategy)
	if err != nil {
		return Params{}, err
	}
	return Params{
		Strategy:    strategy,
		Parallelism: cfg.Parallelism,
		VipIDs:      cfg.VipIDs,
		Constants:   cfg.Constants,
		Store:       s,
	}, nil
}

type Result struct {
	Sheet *sheet.Sheet
	// Key of the stored snapshot, empty when nothing was stored.
	Key     string
	Reports []*symbol.Report
	// Pending lists the systems whose links step failed.
	Pending []int
	Census  map[sig.Kind]int
}

// linksWorker runs the linker on each system and stores the index once all
// systems are processed.
type linksWorker struct {
	sheet     *sheet.Sheet
	constants symbol.Constants
	store     store.SnapshotStore
	key       string

	mu      sync.Mutex
	reports []*symbol.Report
	census  map[sig.Kind]int
}

func (w *linksWorker) DoSystem(ctx context.Context, sys *sheet.System) error {
	report, err := symbol.NewLinker(sys, w.constants).Process(ctx)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.reports = append(w.reports, report)
	w.mu.Unlock()
	return nil
}

func (w *linksWorker) DoFinal(ctx context.Context) error {
	w.census = Census(w.sheet)
	keyvals := []any{"sheet", w.sheet.Name}
	for _, kind := range sig.Kinds() {
		if n := w.census[kind]; n > 0 {
			keyvals = append(keyvals, string(kind), n)
		}
	}
	logger.Info("[Step] Census", keyvals...)

	if w.store == nil {
		return nil
	}
	return SaveIndex(ctx, w.store, w.key, w.sheet.Inters)
}

// Census counts the live inters of every system per kind.
func Census(sh *sheet.Sheet) map[sig.Kind]int {
	counts := make(map[sig.Kind]int)
	visitor := make(sig.Visitor)
	for _, kind := range sig.Kinds() {
		k := kind
		visitor[k] = func(*sig.Inter) { counts[k]++ }
	}
	for _, sys := range sh.Systems() {
		sys.Graph().Walk(visitor)
	}
	return counts
}

// Resolve builds the sheet of doc and runs the links step on all systems.
func Resolve(ctx context.Context, doc *sheet.Document, params Params) (*Result, error) {
	sh, err := symbol.BuildSheet(doc, symbol.BuildParams{
		VipIDs:    params.VipIDs,
		Constants: params.Constants,
	})
	if err != nil {
		return nil, fmt.Errorf("build sheet %q: %w", doc.Name, err)
	}

	key := params.Key
	if key == "" && params.Store != nil {
		id, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("generate snapshot key: %w", err)
		}
		key = doc.Name + "-" + id
	}

	worker := &linksWorker{
		sheet:     sh,
		constants: params.Constants,
		store:     params.Store,
		key:       key,
	}
	task := step.NewSystemTask(step.NewSystemTaskParams{
		Step:        StepLinks,
		Worker:      worker,
		Strategy:    params.Strategy,
		Parallelism: params.Parallelism,
	})

	systems := sh.Systems()
	logger.Info("[Step] Resolving sheet", "sheet", sh.Name, "systems", len(systems), "strategy", task.Strategy())
	if err := task.RunAll(ctx, systems); err != nil {
		return nil, err
	}

	slices.SortFunc(worker.reports, func(a, b *symbol.Report) int {
		return cmp.Compare(a.System, b.System)
	})
	res := &Result{
		Sheet:   sh,
		Reports: worker.reports,
		Census:  worker.census,
	}
	if params.Store != nil {
		res.Key = key
	}
	for _, sys := range task.Pending(systems) {
		res.Pending = append(res.Pending, sys.ID)
	}
	return res, nil
}

// SaveIndex stores a snapshot of x under key.
func SaveIndex(ctx context.Context, s store.SnapshotStore, key string, x *index.Index[*sig.Inter]) error {
	blob, err := store.EncodePack(x.Snapshot())
	if err != nil {
		return fmt.Errorf("encode index %q: %w", key, err)
	}
	err = util.RetryErrWithContext(ctx, storeRetries, func(ctx context.Context) error {
		return s.Put(ctx, key, blob)
	})
	if err != nil {
		return fmt.Errorf("store index %q: %w", key, err)
	}
	logger.Info("[Store] Index stored", "key", key, "inters", x.Len(), "last", x.LastID(), "bytes", len(blob))
	return nil
}

// LoadIndex restores the inter index stored under key.
func LoadIndex(ctx context.Context, s store.SnapshotStore, key string) (*index.Index[*sig.Inter], error) {
	blob, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load index %q: %w", key, err)
	}
	var snap index.Snapshot[*sig.Inter]
	if _, err := store.DecodePack(blob, &snap); err != nil {
		return nil, fmt.Errorf("decode index %q: %w", key, err)
	}
	return index.Restore(snap)
}
