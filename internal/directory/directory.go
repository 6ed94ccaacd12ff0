package directory

import (
    "encoding/csv"
    "errors"
    "fmt"
    "io"
    "sort"
    "strconv"
    "strings"
    "unicode"

    _ "embed"

    "golang.org/x/text/runes"
    "golang.org/x/text/transform"
    "golang.org/x/text/unicode/norm"
)

//go:embed communes.csv
var communesCSV string

// ErrWilayaNotFound is returned for wilaya codes outside the known 1-58 set.
var ErrWilayaNotFound = errors.New("wilaya not found")

// ErrCommuneNotFound is returned when no commune of the wilaya matches the input.
var ErrCommuneNotFound = errors.New("commune not found")

// AmbiguousMatchError is returned when several communes of the same wilaya
// normalize to the same key. That is a reference-data defect; callers should
// prompt for disambiguation rather than pick one silently.
type AmbiguousMatchError struct {
    WilayaCode int
    Name       string
    Matches    []string
}

func (e *AmbiguousMatchError) Error() string {
    return fmt.Sprintf("ambiguous commune %q in wilaya %d: matches %s",
        e.Name, e.WilayaCode, strings.Join(e.Matches, ", "))
}

// Directory exposes the wilaya/commune reference data and resolves free-text
// commune names to canonical entries.
type Directory struct {
    wilayas  []Wilaya
    byCode   map[int]Wilaya
    communes map[int][]Commune
    folded   map[int]map[string][]Commune
}

// New builds the directory from the compiled-in reference data.
func New() *Directory {
    communes, err := parseCommunesCSV(strings.NewReader(communesCSV))
    if err != nil {
        // Embedded data is validated by tests; a parse failure here is a build defect.
        panic(fmt.Sprintf("directory: bad embedded commune data: %v", err))
    }
    d, err := NewFromData(wilayas, communes)
    if err != nil {
        panic(fmt.Sprintf("directory: bad embedded reference data: %v", err))
    }
    return d
}

// NewFromData builds a directory from explicit reference data. Communes whose
// wilaya code is unknown are rejected; duplicate commune names are kept as-is
// and surface later as AmbiguousMatchError.
func NewFromData(ws []Wilaya, cs []Commune) (*Directory, error) {
    d := &Directory{
        wilayas:  make([]Wilaya, len(ws)),
        byCode:   make(map[int]Wilaya, len(ws)),
        communes: make(map[int][]Commune),
        folded:   make(map[int]map[string][]Commune),
    }
    copy(d.wilayas, ws)
    sort.Slice(d.wilayas, func(i, j int) bool { return d.wilayas[i].Code < d.wilayas[j].Code })
    for _, w := range d.wilayas {
        d.byCode[w.Code] = w
    }

    for _, c := range cs {
        if _, ok := d.byCode[c.WilayaCode]; !ok {
            return nil, fmt.Errorf("commune %q: %w (code %d)", c.Name, ErrWilayaNotFound, c.WilayaCode)
        }
        d.communes[c.WilayaCode] = append(d.communes[c.WilayaCode], c)
        fm := d.folded[c.WilayaCode]
        if fm == nil {
            fm = make(map[string][]Commune)
            d.folded[c.WilayaCode] = fm
        }
        k := Fold(c.Name)
        fm[k] = append(fm[k], c)
    }
    for code := range d.communes {
        list := d.communes[code]
        sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
    }
    return d, nil
}

// ListWilayas returns all wilayas ordered by code.
func (d *Directory) ListWilayas() []Wilaya {
    out := make([]Wilaya, len(d.wilayas))
    copy(out, d.wilayas)
    return out
}

// Wilaya returns the wilaya for a code.
func (d *Directory) Wilaya(code int) (Wilaya, error) {
    w, ok := d.byCode[code]
    if !ok {
        return Wilaya{}, ErrWilayaNotFound
    }
    return w, nil
}

// ListCommunes returns the communes of a wilaya ordered by name.
func (d *Directory) ListCommunes(wilayaCode int) ([]Commune, error) {
    if _, ok := d.byCode[wilayaCode]; !ok {
        return nil, ErrWilayaNotFound
    }
    list := d.communes[wilayaCode]
    out := make([]Commune, len(list))
    copy(out, list)
    return out, nil
}

// ResolveCommune maps free-text input to a canonical commune of the wilaya.
// Exact name matches win; otherwise matching is case- and diacritic-insensitive
// ("Medea" resolves to "Médéa"). Multiple candidates fail with
// AmbiguousMatchError, none with ErrCommuneNotFound.
func (d *Directory) ResolveCommune(wilayaCode int, rawName string) (Commune, error) {
    if _, ok := d.byCode[wilayaCode]; !ok {
        return Commune{}, ErrWilayaNotFound
    }
    name := strings.TrimSpace(rawName)
    if name == "" {
        return Commune{}, ErrCommuneNotFound
    }

    var exact []Commune
    for _, c := range d.communes[wilayaCode] {
        if c.Name == name {
            exact = append(exact, c)
        }
    }
    if len(exact) == 1 {
        return exact[0], nil
    }
    if len(exact) > 1 {
        return Commune{}, ambiguous(wilayaCode, name, exact)
    }

    matches := d.folded[wilayaCode][Fold(name)]
    switch len(matches) {
    case 0:
        return Commune{}, fmt.Errorf("%q in wilaya %d: %w", name, wilayaCode, ErrCommuneNotFound)
    case 1:
        return matches[0], nil
    default:
        return Commune{}, ambiguous(wilayaCode, name, matches)
    }
}

func ambiguous(wilayaCode int, name string, matches []Commune) error {
    names := make([]string, len(matches))
    for i, m := range matches {
        names[i] = m.Name
    }
    return &AmbiguousMatchError{WilayaCode: wilayaCode, Name: name, Matches: names}
}

// Fold normalizes a location name for matching: lowercase, diacritics stripped,
// apostrophes dropped, runs of spaces and hyphens collapsed. The source data
// mixes accented and unaccented French spellings, so lookups go through here.
// The transform chain is stateful and built per call; Fold runs on every
// concurrent lookup and must not share mutable state.
func Fold(s string) string {
    fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
    out, _, err := transform.String(fold, s)
    if err != nil {
        out = s
    }
    out = strings.ToLower(out)
    var b strings.Builder
    b.Grow(len(out))
    lastSpace := false
    for _, r := range out {
        switch {
        case r == '\'' || r == '’':
            // "M'Sila" and "Msila" are the same commune
        case r == ' ' || r == '-' || r == '_':
            if !lastSpace && b.Len() > 0 {
                b.WriteRune(' ')
                lastSpace = true
            }
        default:
            b.WriteRune(r)
            lastSpace = false
        }
    }
    return strings.TrimSpace(b.String())
}

// parseCommunesCSV reads "wilaya_code,commune" rows, header included.
func parseCommunesCSV(r io.Reader) ([]Commune, error) {
    cr := csv.NewReader(r)
    cr.FieldsPerRecord = 2
    var out []Commune
    first := true
    for {
        rec, err := cr.Read()
        if errors.Is(err, io.EOF) {
            break
        }
        if err != nil {
            return nil, err
        }
        if first {
            first = false
            if rec[0] == "wilaya_code" {
                continue
            }
        }
        code, err := strconv.Atoi(strings.TrimSpace(rec[0]))
        if err != nil {
            return nil, fmt.Errorf("bad wilaya code %q: %w", rec[0], err)
        }
        out = append(out, Commune{Name: strings.TrimSpace(rec[1]), WilayaCode: code})
    }
    return out, nil
}
