package pricing

import (
    "context"
    "errors"
    "strconv"
    "sync"
    "testing"

    "tarifdz/internal/directory"
)

func testEntry(t *testing.T, dir *directory.Directory, carrier string, wilayaCode int, commune string, home, office int64) Entry {
    t.Helper()
    e, err := Normalize(RawRow{
        Carrier:     carrier,
        WilayaCode:  strconv.Itoa(wilayaCode),
        Commune:     commune,
        HomePrice:   strconv.FormatInt(home, 10),
        OfficePrice: strconv.FormatInt(office, 10),
    }, dir)
    if err != nil {
        t.Fatalf("Normalize: %v", err)
    }
    return e
}

func TestLookupRoundTrip(t *testing.T) {
    dir := directory.New()
    tbl := NewTable()
    report, err := tbl.Load(context.Background(), dir, DefaultSource(dir))
    if err != nil {
        t.Fatalf("Load: %v", err)
    }
    if report.Skipped != 0 {
        t.Fatalf("default tariffs should all import, skipped %d: %v", report.Skipped, report.Reasons)
    }

    // Spot-check the round-trip for every active entry of one carrier.
    for _, w := range dir.ListWilayas() {
        communes, _ := dir.ListCommunes(w.Code)
        for _, c := range communes {
            e, err := tbl.Lookup("yalidine", w.Code, c.Name)
            if err != nil {
                t.Fatalf("lookup %d/%s: %v", w.Code, c.Name, err)
            }
            if e.WilayaCode != w.Code || e.Commune != c.Name {
                t.Fatalf("round-trip mismatch: asked %d/%s, got %+v", w.Code, c.Name, e)
            }
        }
    }
}

func TestLookup_PriceNotFound(t *testing.T) {
    dir := directory.New()
    tbl := NewTable()
    if _, err := tbl.Load(context.Background(), dir, DefaultSource(dir)); err != nil {
        t.Fatalf("Load: %v", err)
    }
    if _, err := tbl.Lookup("nocarrier", 31, "Oran"); !errors.Is(err, ErrPriceNotFound) {
        t.Fatalf("expected ErrPriceNotFound, got %v", err)
    }
}

func TestLoad_SkipsMalformedRows(t *testing.T) {
    dir := directory.New()
    tbl := NewTable()
    src := StaticSource{
        {Carrier: "yalidine", WilayaCode: "31", Commune: "Oran", HomePrice: "500", OfficePrice: "450"},
        {Carrier: "yalidine", WilayaCode: "99", Commune: "Nowhere", HomePrice: "500", OfficePrice: "450"},
        {Carrier: "yalidine", WilayaCode: "31", Commune: "Arzew", HomePrice: "abc", OfficePrice: "450"},
        {Carrier: "yalidine", WilayaCode: "31", Commune: "Atlantis", HomePrice: "500", OfficePrice: "450"},
        {Carrier: "yalidine", WilayaCode: "31", Commune: "Oran", HomePrice: "999", OfficePrice: "450"},
    }
    report, err := tbl.Load(context.Background(), dir, src)
    if err != nil {
        t.Fatalf("Load: %v", err)
    }
    if report.Total != 5 || report.Imported != 1 || report.Skipped != 4 {
        t.Fatalf("unexpected report: %+v", report)
    }
    if report.Reasons["unknown_wilaya"] != 1 || report.Reasons["malformed"] != 1 ||
        report.Reasons["unknown_commune"] != 1 || report.Reasons["duplicate"] != 1 {
        t.Fatalf("unexpected reasons: %v", report.Reasons)
    }

    // First row wins over its duplicate.
    e, err := tbl.Lookup("yalidine", 31, "Oran")
    if err != nil {
        t.Fatalf("lookup: %v", err)
    }
    if e.Price.Home != 500 {
        t.Fatalf("expected first duplicate to win (home 500), got %d", e.Price.Home)
    }
}

func TestLoad_NormalizesCommuneSpelling(t *testing.T) {
    dir := directory.New()
    tbl := NewTable()
    src := StaticSource{
        {Carrier: "yalidine", WilayaCode: "26", Commune: "medea", HomePrice: "500", OfficePrice: "450"},
    }
    if _, err := tbl.Load(context.Background(), dir, src); err != nil {
        t.Fatalf("Load: %v", err)
    }
    // Lookup with the accented canonical spelling hits the same entry.
    e, err := tbl.Lookup("yalidine", 26, "Médéa")
    if err != nil {
        t.Fatalf("lookup: %v", err)
    }
    if e.Commune != "Médéa" {
        t.Fatalf("expected canonical commune name, got %q", e.Commune)
    }
}

func TestLoad_ResolvesWilayaByName(t *testing.T) {
    dir := directory.New()
    tbl := NewTable()
    src := StaticSource{
        {Carrier: "zaki", WilayaName: "oran", Commune: "Oran", HomePrice: "600", OfficePrice: "500"},
    }
    if _, err := tbl.Load(context.Background(), dir, src); err != nil {
        t.Fatalf("Load: %v", err)
    }
    e, err := tbl.Lookup("zaki", 31, "Oran")
    if err != nil {
        t.Fatalf("lookup: %v", err)
    }
    if e.WilayaName != "Oran" || e.Zone != 2 {
        t.Fatalf("unexpected entry: %+v", e)
    }
}

func TestReplaceAll_OnlyTouchesOneCarrier(t *testing.T) {
    dir := directory.New()
    tbl := NewTable()
    if _, err := tbl.Load(context.Background(), dir, DefaultSource(dir)); err != nil {
        t.Fatalf("Load: %v", err)
    }
    before, err := tbl.Lookup("zaki", 31, "Oran")
    if err != nil {
        t.Fatalf("lookup zaki: %v", err)
    }

    repl := []Entry{testEntry(t, dir, "yalidine", 16, "Alger Centre", 350, 300)}
    if err := tbl.ReplaceAll("yalidine", repl); err != nil {
        t.Fatalf("ReplaceAll: %v", err)
    }

    // The carrier now has exactly the new entries.
    if _, err := tbl.Lookup("yalidine", 31, "Oran"); !errors.Is(err, ErrPriceNotFound) {
        t.Fatalf("old yalidine entry still visible: %v", err)
    }
    e, err := tbl.Lookup("yalidine", 16, "Alger Centre")
    if err != nil || e.Price.Home != 350 {
        t.Fatalf("new yalidine entry missing: %v %+v", err, e)
    }

    // Other carriers untouched.
    after, err := tbl.Lookup("zaki", 31, "Oran")
    if err != nil || after != before {
        t.Fatalf("zaki entry changed: %v %+v", err, after)
    }
}

func TestReplaceAll_RejectsForeignEntries(t *testing.T) {
    dir := directory.New()
    tbl := NewTable()
    err := tbl.ReplaceAll("yalidine", []Entry{testEntry(t, dir, "zaki", 31, "Oran", 500, 450)})
    if err == nil {
        t.Fatalf("expected error for entry of another carrier")
    }
}

func TestReplaceAll_AtomicUnderConcurrentLookups(t *testing.T) {
    dir := directory.New()
    tbl := NewTable()

    old := []Entry{
        testEntry(t, dir, "yalidine", 31, "Oran", 500, 450),
        testEntry(t, dir, "yalidine", 31, "Arzew", 500, 450),
    }
    niu := []Entry{
        testEntry(t, dir, "yalidine", 31, "Oran", 700, 650),
        testEntry(t, dir, "yalidine", 31, "Arzew", 700, 650),
    }
    if err := tbl.ReplaceAll("yalidine", old); err != nil {
        t.Fatalf("seed: %v", err)
    }

    // Two separate Lookup calls may legitimately straddle a swap, so each
    // consistency check reads both entries from a single snapshot load.
    oran := keyOf("yalidine", 31, "Oran")
    arzew := keyOf("yalidine", 31, "Arzew")

    stop := make(chan struct{})
    var wg sync.WaitGroup
    for i := 0; i < 8; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            for {
                select {
                case <-stop:
                    return
                default:
                }
                s := tbl.snap.Load()
                a, ok1 := s.byKey[oran]
                b, ok2 := s.byKey[arzew]
                if !ok1 || !ok2 {
                    t.Errorf("entry missing from snapshot: %v %v", ok1, ok2)
                    return
                }
                // Both entries must come from the same generation.
                if a.Price.Home != b.Price.Home {
                    t.Errorf("observed mixed snapshot: %d vs %d", a.Price.Home, b.Price.Home)
                    return
                }
            }
        }()
    }

    for i := 0; i < 500; i++ {
        gen := old
        if i%2 == 1 {
            gen = niu
        }
        if err := tbl.ReplaceAll("yalidine", gen); err != nil {
            t.Fatalf("ReplaceAll: %v", err)
        }
    }
    close(stop)
    wg.Wait()
}

type failingSource struct{ err error }

func (s failingSource) Rows(ctx context.Context) ([]RawRow, error) { return nil, s.err }

func TestLoad_TimeoutKeepsPreviousSnapshot(t *testing.T) {
    dir := directory.New()
    tbl := NewTable()
    if _, err := tbl.Load(context.Background(), dir, DefaultSource(dir)); err != nil {
        t.Fatalf("seed: %v", err)
    }
    before := tbl.Len()

    _, err := tbl.Load(context.Background(), dir, failingSource{err: context.DeadlineExceeded})
    if !errors.Is(err, ErrLoadTimeout) {
        t.Fatalf("expected ErrLoadTimeout, got %v", err)
    }

    // The failed load must not touch the live snapshot.
    if got := tbl.Len(); got != before {
        t.Fatalf("snapshot changed after failed load: %d != %d", got, before)
    }
    entry, err := tbl.Lookup("yalidine", 31, "Oran")
    if err != nil {
        t.Fatalf("previous snapshot no longer serves: %v", err)
    }
    if entry.Price.Home != 500 {
        t.Fatalf("unexpected price from previous snapshot: %d", entry.Price.Home)
    }
}

func TestLoad_SourceErrorKeepsPreviousSnapshot(t *testing.T) {
    dir := directory.New()
    tbl := NewTable()
    if _, err := tbl.Load(context.Background(), dir, DefaultSource(dir)); err != nil {
        t.Fatalf("seed: %v", err)
    }

    srcErr := errors.New("store unreachable")
    _, err := tbl.Load(context.Background(), dir, failingSource{err: srcErr})
    if !errors.Is(err, srcErr) {
        t.Fatalf("expected source error, got %v", err)
    }
    if errors.Is(err, ErrLoadTimeout) {
        t.Fatalf("plain source error must not read as a timeout: %v", err)
    }
    if _, err := tbl.Lookup("yalidine", 31, "Oran"); err != nil {
        t.Fatalf("previous snapshot no longer serves: %v", err)
    }
}

func TestCarriers(t *testing.T) {
    dir := directory.New()
    tbl := NewTable()
    if _, err := tbl.Load(context.Background(), dir, DefaultSource(dir)); err != nil {
        t.Fatalf("Load: %v", err)
    }
    got := tbl.Carriers()
    if len(got) != 2 || got[0] != "yalidine" || got[1] != "zaki" {
        t.Fatalf("unexpected carriers: %v", got)
    }
}
