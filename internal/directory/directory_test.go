package directory

import (
    "errors"
    "sync"
    "testing"
)

func TestListWilayas_All58Ordered(t *testing.T) {
    d := New()
    ws := d.ListWilayas()
    if len(ws) != 58 {
        t.Fatalf("expected 58 wilayas, got %d", len(ws))
    }
    for i, w := range ws {
        if w.Code != i+1 {
            t.Fatalf("expected code %d at position %d, got %d", i+1, i, w.Code)
        }
        if w.Name == "" || w.NameAr == "" {
            t.Fatalf("wilaya %d missing name data: %+v", w.Code, w)
        }
    }
}

func TestEveryWilayaHasZoneAndCommunes(t *testing.T) {
    d := New()
    for _, w := range d.ListWilayas() {
        z, err := ZoneOf(w.Code)
        if err != nil {
            t.Fatalf("no zone for wilaya %d", w.Code)
        }
        if z < 1 || z > 4 {
            t.Fatalf("zone out of range for wilaya %d: %d", w.Code, z)
        }
        cs, err := d.ListCommunes(w.Code)
        if err != nil {
            t.Fatalf("ListCommunes(%d): %v", w.Code, err)
        }
        if len(cs) == 0 {
            t.Fatalf("wilaya %d has no communes", w.Code)
        }
        for i := 1; i < len(cs); i++ {
            if cs[i-1].Name > cs[i].Name {
                t.Fatalf("communes of wilaya %d not sorted: %q > %q", w.Code, cs[i-1].Name, cs[i].Name)
            }
        }
    }
}

func TestListCommunes_UnknownWilaya(t *testing.T) {
    d := New()
    for _, code := range []int{0, 59, -3, 100} {
        if _, err := d.ListCommunes(code); !errors.Is(err, ErrWilayaNotFound) {
            t.Fatalf("ListCommunes(%d): expected ErrWilayaNotFound, got %v", code, err)
        }
    }
}

func TestResolveCommune_ExactMatch(t *testing.T) {
    d := New()
    c, err := d.ResolveCommune(31, "Oran")
    if err != nil {
        t.Fatalf("resolve failed: %v", err)
    }
    if c.Name != "Oran" || c.WilayaCode != 31 {
        t.Fatalf("unexpected commune: %+v", c)
    }
}

func TestResolveCommune_DiacriticInsensitive(t *testing.T) {
    d := New()
    cases := []struct {
        wilaya int
        input  string
        want   string
    }{
        {26, "medea", "Médéa"},
        {20, "SAIDA", "Saïda"},
        {6, "bejaia", "Béjaïa"},
        {28, "msila", "M'Sila"},
        {16, "dar el beida", "Dar El Beïda"},
    }
    for _, tc := range cases {
        c, err := d.ResolveCommune(tc.wilaya, tc.input)
        if err != nil {
            t.Fatalf("resolve %q in %d: %v", tc.input, tc.wilaya, err)
        }
        if c.Name != tc.want {
            t.Fatalf("resolve %q: expected %q, got %q", tc.input, tc.want, c.Name)
        }
    }
}

func TestResolveCommune_NotFound(t *testing.T) {
    d := New()
    _, err := d.ResolveCommune(31, "Unknown Place")
    if !errors.Is(err, ErrCommuneNotFound) {
        t.Fatalf("expected ErrCommuneNotFound, got %v", err)
    }
}

func TestResolveCommune_DuplicateNameIsAmbiguous(t *testing.T) {
    // The raw source data is known to list the same commune twice in one
    // wilaya (e.g. "Tianet"). The resolver must refuse to pick one.
    ws := []Wilaya{{Code: 13, Name: "Tlemcen", NameAr: "تلمسان", Region: RegionOuest}}
    cs := []Commune{
        {Name: "Tianet", WilayaCode: 13},
        {Name: "Tianet", WilayaCode: 13},
        {Name: "Tlemcen", WilayaCode: 13},
    }
    d, err := NewFromData(ws, cs)
    if err != nil {
        t.Fatalf("NewFromData: %v", err)
    }
    _, err = d.ResolveCommune(13, "Tianet")
    var amb *AmbiguousMatchError
    if !errors.As(err, &amb) {
        t.Fatalf("expected AmbiguousMatchError, got %v", err)
    }
    if amb.WilayaCode != 13 || len(amb.Matches) != 2 {
        t.Fatalf("unexpected ambiguity detail: %+v", amb)
    }

    // The unambiguous sibling still resolves.
    if _, err := d.ResolveCommune(13, "tlemcen"); err != nil {
        t.Fatalf("sibling resolve failed: %v", err)
    }
}

func TestResolveCommune_SameNameAcrossWilayas(t *testing.T) {
    // "Souk El Tenine" exists in both Béjaïa (6) and Tizi Ouzou (15).
    // Uniqueness is only per wilaya, so each resolves cleanly.
    d := New()
    for _, code := range []int{6, 15} {
        c, err := d.ResolveCommune(code, "souk el tenine")
        if err != nil {
            t.Fatalf("resolve in wilaya %d: %v", code, err)
        }
        if c.WilayaCode != code {
            t.Fatalf("expected wilaya %d, got %d", code, c.WilayaCode)
        }
    }
}

func TestFold(t *testing.T) {
    cases := map[string]string{
        "Médéa":          "medea",
        "Saïda":          "saida",
        "M'Sila":         "msila",
        "Draâ Ben Khedda": "draa ben khedda",
        "  Aïn  Defla ":  "ain defla",
        "Bordj-Menaïel":  "bordj menaiel",
    }
    for in, want := range cases {
        if got := Fold(in); got != want {
            t.Fatalf("Fold(%q): expected %q, got %q", in, want, got)
        }
    }
}

func TestFold_Concurrent(t *testing.T) {
    // Fold runs on every concurrent quote request; the transform chain must
    // not share state across goroutines.
    var wg sync.WaitGroup
    for i := 0; i < 8; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            for j := 0; j < 1000; j++ {
                if got := Fold("Médéa"); got != "medea" {
                    t.Errorf("Fold(Médéa): expected medea, got %q", got)
                    return
                }
                if got := Fold("Dar El Beïda"); got != "dar el beida" {
                    t.Errorf("Fold(Dar El Beïda): expected dar el beida, got %q", got)
                    return
                }
            }
        }()
    }
    wg.Wait()
}

func TestOverweightRatePerKg(t *testing.T) {
    if r := OverweightRatePerKg(1); r != 50 {
        t.Fatalf("zone 1: expected 50, got %d", r)
    }
    if r := OverweightRatePerKg(4); r != 100 {
        t.Fatalf("zone 4: expected 100, got %d", r)
    }
    if r := OverweightRatePerKg(5); r != 100 {
        t.Fatalf("zone 5: expected 100, got %d", r)
    }
}
