package pricing

import (
    "context"
    "strconv"

    "tarifdz/internal/directory"
)

// zonePrices is the zone-level default grid per carrier, in DA. It mirrors the
// published rate cards; commune-level overrides come from imports.
var zonePrices = map[string]map[int]struct{ home, office int64 }{
    "yalidine": {
        1: {home: 450, office: 400},
        2: {home: 500, office: 450},
        3: {home: 700, office: 550},
        4: {home: 1000, office: 800},
    },
    "zaki": {
        1: {home: 400, office: 350},
        2: {home: 550, office: 450},
        3: {home: 750, office: 600},
        4: {home: 1100, office: 850},
    },
}

// DefaultSource expands the zone grid into one raw row per carrier and
// commune, so a process with no external store still answers quotes.
func DefaultSource(dir *directory.Directory) Source {
    var rows []RawRow
    for carrier, grid := range zonePrices {
        for _, w := range dir.ListWilayas() {
            zone, err := directory.ZoneOf(w.Code)
            if err != nil {
                continue
            }
            p, ok := grid[zone]
            if !ok {
                continue
            }
            communes, err := dir.ListCommunes(w.Code)
            if err != nil {
                continue
            }
            for _, c := range communes {
                rows = append(rows, RawRow{
                    Carrier:     carrier,
                    WilayaCode:  strconv.Itoa(w.Code),
                    Commune:     c.Name,
                    HomePrice:   strconv.FormatInt(p.home, 10),
                    OfficePrice: strconv.FormatInt(p.office, 10),
                })
            }
        }
    }
    return StaticSource(rows)
}

// DefaultEntries returns the expanded default tariffs as validated entries,
// used to seed an empty store.
func DefaultEntries(dir *directory.Directory) []Entry {
    rows, _ := DefaultSource(dir).Rows(context.Background())
    entries, _ := NormalizeRows(rows, dir)
    return entries
}
