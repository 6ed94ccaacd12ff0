package pricing

import (
    "context"
    "encoding/csv"
    "fmt"
    "io"
    "os"
    "strconv"
    "strings"

    "tarifdz/internal/directory"
)

// RawRow is the import contract: a flat record as produced by CSV exports,
// spreadsheet syncs or document-store dumps. Either WilayaCode or WilayaName
// must identify the wilaya. Parsing and validation happen in Normalize.
type RawRow struct {
    Carrier     string `json:"carrier"`
    WilayaCode  string `json:"wilaya_code"`
    WilayaName  string `json:"wilaya_name"`
    Commune     string `json:"commune"`
    HomePrice   string `json:"home_price"`
    OfficePrice string `json:"office_price"`
}

// Source yields raw tariff rows. The table loader is agnostic to the origin.
type Source interface {
    Rows(ctx context.Context) ([]RawRow, error)
}

// StaticSource serves rows from memory.
type StaticSource []RawRow

func (s StaticSource) Rows(ctx context.Context) ([]RawRow, error) { return s, nil }

// CSVSource reads rows from a CSV file with the header
// carrier,wilaya_code,wilaya_name,commune,home_price,office_price.
type CSVSource struct {
    Path string
}

func (s CSVSource) Rows(ctx context.Context) ([]RawRow, error) {
    f, err := os.Open(s.Path)
    if err != nil {
        return nil, fmt.Errorf("open pricing csv: %w", err)
    }
    defer f.Close()
    return parseCSV(f)
}

func parseCSV(r io.Reader) ([]RawRow, error) {
    cr := csv.NewReader(r)
    cr.FieldsPerRecord = 6
    cr.TrimLeadingSpace = true
    var rows []RawRow
    first := true
    for {
        rec, err := cr.Read()
        if err == io.EOF {
            break
        }
        if err != nil {
            return nil, fmt.Errorf("read pricing csv: %w", err)
        }
        if first {
            first = false
            if strings.EqualFold(rec[0], "carrier") {
                continue
            }
        }
        rows = append(rows, RawRow{
            Carrier:     rec[0],
            WilayaCode:  rec[1],
            WilayaName:  rec[2],
            Commune:     rec[3],
            HomePrice:   rec[4],
            OfficePrice: rec[5],
        })
    }
    return rows, nil
}

// carrierSupplements are the compiled-in COD terms per known carrier.
// Unknown carriers get the yalidine terms.
var carrierSupplements = map[string]struct {
    codPercent float64
    codFixed   int64
}{
    "yalidine": {codPercent: 1.0, codFixed: 0},
    "zaki":     {codPercent: 2.0, codFixed: 50},
}

// Normalize turns one raw row into a validated active Entry. The wilaya is
// resolved by code when present, by name otherwise; the commune is resolved
// through the directory; zone, overweight rate and COD terms are derived.
func Normalize(row RawRow, dir *directory.Directory) (Entry, error) {
    carrier := strings.ToLower(strings.TrimSpace(row.Carrier))
    if carrier == "" {
        return Entry{}, fmt.Errorf("missing carrier")
    }

    wilaya, err := resolveWilaya(row, dir)
    if err != nil {
        return Entry{}, err
    }

    commune, err := dir.ResolveCommune(wilaya.Code, row.Commune)
    if err != nil {
        return Entry{}, fmt.Errorf("commune: %w", err)
    }

    home, err := parsePrice(row.HomePrice)
    if err != nil {
        return Entry{}, fmt.Errorf("home price: %w", err)
    }
    office, err := parsePrice(row.OfficePrice)
    if err != nil {
        return Entry{}, fmt.Errorf("office price: %w", err)
    }

    zone, err := directory.ZoneOf(wilaya.Code)
    if err != nil {
        return Entry{}, err
    }

    sup, ok := carrierSupplements[carrier]
    if !ok {
        sup = carrierSupplements["yalidine"]
    }

    return Entry{
        Carrier:    carrier,
        WilayaCode: wilaya.Code,
        WilayaName: wilaya.Name,
        Commune:    commune.Name,
        Zone:       zone,
        Price: Price{
            Home:   home,
            Office: office,
            Supplements: Supplements{
                CODFeePercent:         sup.codPercent,
                CODFeeFixed:           sup.codFixed,
                OverweightFee:         directory.OverweightRatePerKg(zone),
                OverweightThresholdKg: directory.OverweightThresholdKg,
            },
        },
        Status: StatusActive,
    }, nil
}

func resolveWilaya(row RawRow, dir *directory.Directory) (directory.Wilaya, error) {
    if code := strings.TrimSpace(row.WilayaCode); code != "" {
        n, err := strconv.Atoi(code)
        if err != nil {
            return directory.Wilaya{}, fmt.Errorf("bad wilaya code %q", code)
        }
        w, err := dir.Wilaya(n)
        if err != nil {
            return directory.Wilaya{}, fmt.Errorf("wilaya code %d: %w", n, err)
        }
        return w, nil
    }
    name := directory.Fold(row.WilayaName)
    if name == "" {
        return directory.Wilaya{}, fmt.Errorf("missing wilaya")
    }
    for _, w := range dir.ListWilayas() {
        if directory.Fold(w.Name) == name {
            return w, nil
        }
    }
    return directory.Wilaya{}, fmt.Errorf("wilaya %q: %w", row.WilayaName, directory.ErrWilayaNotFound)
}

func parsePrice(s string) (int64, error) {
    s = strings.TrimSpace(s)
    if s == "" {
        return 0, fmt.Errorf("missing price")
    }
    // Spreadsheet exports occasionally carry "1 200" or "1200 DA".
    s = strings.ReplaceAll(s, " ", "")
    s = strings.TrimSuffix(strings.ToUpper(s), "DA")
    n, err := strconv.ParseInt(s, 10, 64)
    if err != nil {
        return 0, fmt.Errorf("non-numeric price %q", s)
    }
    if n < 0 {
        return 0, fmt.Errorf("negative price %d", n)
    }
    return n, nil
}
