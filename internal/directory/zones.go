package directory

// Zone tiers drive the per-kg overweight surcharge. This table is the single
// authoritative wilaya-to-zone mapping; no other package defines its own copy.
const (
    // OverweightThresholdKg is the weight above which carriers bill per extra kg.
    OverweightThresholdKg = 5.0

    overweightRateNorth = 50  // DA per kg, zones 1-3
    overweightRateSouth = 100 // DA per kg, zone 4 and above
)

var zoneByWilaya = map[int]int{
    // Zone 1: Algiers metropolitan area
    9: 1, 16: 1, 35: 1, 42: 1,
    // Zone 2: northern coastal belt
    2: 2, 6: 2, 10: 2, 13: 2, 15: 2, 18: 2, 19: 2, 21: 2, 22: 2, 23: 2,
    24: 2, 25: 2, 26: 2, 27: 2, 29: 2, 31: 2, 34: 2, 36: 2, 43: 2, 44: 2,
    46: 2, 48: 2,
    // Zone 3: high plateaus
    3: 3, 4: 3, 5: 3, 7: 3, 12: 3, 14: 3, 17: 3, 20: 3, 28: 3, 32: 3,
    38: 3, 40: 3, 41: 3, 45: 3,
    // Zone 4: Sahara
    1: 4, 8: 4, 11: 4, 30: 4, 33: 4, 37: 4, 39: 4, 47: 4, 49: 4, 50: 4,
    51: 4, 52: 4, 53: 4, 54: 4, 55: 4, 56: 4, 57: 4, 58: 4,
}

// ZoneOf returns the pricing zone for a wilaya code.
func ZoneOf(wilayaCode int) (int, error) {
    z, ok := zoneByWilaya[wilayaCode]
    if !ok {
        return 0, ErrWilayaNotFound
    }
    return z, nil
}

// OverweightRatePerKg returns the per-kg surcharge (DA) for a zone.
// Southern zones are billed at double the northern rate.
func OverweightRatePerKg(zone int) int64 {
    if zone >= 4 {
        return overweightRateSouth
    }
    return overweightRateNorth
}
