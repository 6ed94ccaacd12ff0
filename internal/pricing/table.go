package pricing

import (
    "context"
    "errors"
    "fmt"
    "sort"
    "sync"
    "sync/atomic"

    "golang.org/x/sync/errgroup"

    "tarifdz/internal/directory"
)

type key struct {
    carrier string
    wilaya  int
    commune string
}

func keyOf(carrier string, wilayaCode int, commune string) key {
    return key{
        carrier: directory.Fold(carrier),
        wilaya:  wilayaCode,
        commune: directory.Fold(commune),
    }
}

// snapshot is an immutable index. Readers grab the current pointer and never
// see writers' intermediate state.
type snapshot struct {
    byKey    map[key]Entry
    carriers []string
}

var emptySnapshot = &snapshot{byKey: map[key]Entry{}}

// Table holds the authoritative pricing snapshot with O(1) lookup. Reads are
// lock-free against an atomically swapped snapshot; ReplaceAll is the only
// writer and builds the next snapshot off to the side, so concurrent lookups
// observe either the fully-old or fully-new tariffs for a carrier, never a mix.
type Table struct {
    mu   sync.Mutex // serializes writers
    snap atomic.Pointer[snapshot]
}

func NewTable() *Table {
    t := &Table{}
    t.snap.Store(emptySnapshot)
    return t
}

// Lookup returns the active tariff for (carrier, wilaya, commune).
func (t *Table) Lookup(carrier string, wilayaCode int, commune string) (Entry, error) {
    s := t.snap.Load()
    e, ok := s.byKey[keyOf(carrier, wilayaCode, commune)]
    if !ok {
        return Entry{}, fmt.Errorf("%s/%d/%s: %w", carrier, wilayaCode, commune, ErrPriceNotFound)
    }
    return e, nil
}

// Carriers lists the carriers present in the current snapshot, sorted.
func (t *Table) Carriers() []string {
    s := t.snap.Load()
    out := make([]string, len(s.carriers))
    copy(out, s.carriers)
    return out
}

// Len returns the number of active entries.
func (t *Table) Len() int {
    return len(t.snap.Load().byKey)
}

// Load replaces the whole table from the given sources, loading them
// concurrently. On any source error the previous snapshot stays live.
func (t *Table) Load(ctx context.Context, dir *directory.Directory, sources ...Source) (LoadReport, error) {
    var (
        mu   sync.Mutex
        rows []RawRow
    )
    eg, egCtx := errgroup.WithContext(ctx)
    for _, src := range sources {
        src := src
        eg.Go(func() error {
            got, err := src.Rows(egCtx)
            if err != nil {
                if errors.Is(err, context.DeadlineExceeded) {
                    return fmt.Errorf("%w: %v", ErrLoadTimeout, err)
                }
                return err
            }
            mu.Lock()
            defer mu.Unlock()
            rows = append(rows, got...)
            return nil
        })
    }
    if err := eg.Wait(); err != nil {
        return LoadReport{}, err
    }

    entries, report := NormalizeRows(rows, dir)

    t.mu.Lock()
    defer t.mu.Unlock()
    next := &snapshot{byKey: make(map[key]Entry, len(entries))}
    dupes := indexInto(next.byKey, entries)
    for i := 0; i < dupes; i++ {
        report.skip("duplicate")
        report.Imported--
    }
    next.carriers = carrierList(next.byKey)
    t.snap.Store(next)
    return report, nil
}

// Swap replaces the whole table with pre-validated entries, such as a store
// snapshot. Duplicate keys keep the first entry.
func (t *Table) Swap(entries []Entry) {
    t.mu.Lock()
    defer t.mu.Unlock()
    next := &snapshot{byKey: make(map[key]Entry, len(entries))}
    indexInto(next.byKey, entries)
    next.carriers = carrierList(next.byKey)
    t.snap.Store(next)
}

// ReplaceAll atomically swaps every entry of one carrier. Other carriers'
// tariffs are untouched. Inactive entries are dropped from the index.
func (t *Table) ReplaceAll(carrier string, entries []Entry) error {
    ck := directory.Fold(carrier)
    if ck == "" {
        return fmt.Errorf("missing carrier")
    }
    for _, e := range entries {
        if directory.Fold(e.Carrier) != ck {
            return fmt.Errorf("entry %s does not belong to carrier %q", e, carrier)
        }
    }

    t.mu.Lock()
    defer t.mu.Unlock()
    cur := t.snap.Load()
    next := &snapshot{byKey: make(map[key]Entry, len(cur.byKey)+len(entries))}
    for k, e := range cur.byKey {
        if k.carrier != ck {
            next.byKey[k] = e
        }
    }
    indexInto(next.byKey, entries)
    next.carriers = carrierList(next.byKey)
    t.snap.Store(next)
    return nil
}

// NormalizeRows validates raw rows into active entries, collecting per-reason
// skip counts instead of failing the batch.
func NormalizeRows(rows []RawRow, dir *directory.Directory) ([]Entry, LoadReport) {
    report := LoadReport{Total: len(rows)}
    entries := make([]Entry, 0, len(rows))
    for _, row := range rows {
        e, err := Normalize(row, dir)
        if err != nil {
            report.skip(skipReason(err))
            continue
        }
        entries = append(entries, e)
        report.Imported++
    }
    return entries, report
}

func skipReason(err error) string {
    var amb *directory.AmbiguousMatchError
    switch {
    case errors.Is(err, directory.ErrWilayaNotFound):
        return "unknown_wilaya"
    case errors.Is(err, directory.ErrCommuneNotFound):
        return "unknown_commune"
    case errors.As(err, &amb):
        return "ambiguous_commune"
    default:
        return "malformed"
    }
}

// indexInto adds active entries to the index, first row winning on duplicate
// keys. Returns the number of duplicates dropped. The source data has
// historically violated the (carrier, wilaya, commune) uniqueness invariant,
// so the loader enforces it here.
func indexInto(byKey map[key]Entry, entries []Entry) int {
    dupes := 0
    for _, e := range entries {
        if e.Status != StatusActive {
            continue
        }
        k := keyOf(e.Carrier, e.WilayaCode, e.Commune)
        if _, exists := byKey[k]; exists {
            dupes++
            continue
        }
        byKey[k] = e
    }
    return dupes
}

func carrierList(byKey map[key]Entry) []string {
    seen := make(map[string]bool)
    var out []string
    for k := range byKey {
        if !seen[k.carrier] {
            seen[k.carrier] = true
            out = append(out, k.carrier)
        }
    }
    sort.Strings(out)
    return out
}
