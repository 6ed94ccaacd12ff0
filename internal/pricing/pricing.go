package pricing

import (
    "errors"
    "fmt"
)

// ErrPriceNotFound means no active tariff covers the destination. Callers must
// treat this as "the carrier does not deliver there", not as a system error.
var ErrPriceNotFound = errors.New("no tariff for destination")

// ErrLoadTimeout is returned when a snapshot load against a remote store does
// not complete in time. The previous snapshot, if any, keeps serving lookups.
var ErrLoadTimeout = errors.New("pricing load timed out")

// Status marks whether an entry participates in lookups. Imports flip old rows
// inactive instead of deleting them, so stores keep an audit trail.
type Status string

const (
    StatusActive   Status = "active"
    StatusInactive Status = "inactive"
)

// Supplements are the surcharge parameters attached to a tariff.
type Supplements struct {
    CODFeePercent         float64 `json:"cod_fee_percent"`
    CODFeeFixed           int64   `json:"cod_fee_fixed"`
    OverweightFee         int64   `json:"overweight_fee"`
    OverweightThresholdKg float64 `json:"overweight_threshold_kg"`
}

// Price holds the base tariff per delivery type, in DA.
type Price struct {
    Home        int64       `json:"home"`
    Office      int64       `json:"office"`
    Supplements Supplements `json:"supplements"`
}

// Entry is one carrier tariff for one commune.
type Entry struct {
    Carrier    string `json:"carrier"`
    WilayaCode int    `json:"wilaya_code"`
    WilayaName string `json:"wilaya_name"`
    Commune    string `json:"commune"`
    Zone       int    `json:"zone"`
    Price      Price  `json:"pricing"`
    Status     Status `json:"status"`
}

func (e Entry) String() string {
    return fmt.Sprintf("%s/%d/%s", e.Carrier, e.WilayaCode, e.Commune)
}

// LoadReport summarizes a bulk import. Malformed rows are counted per reason
// and skipped; a handful of bad rows never aborts an otherwise-good import.
type LoadReport struct {
    Total    int            `json:"total"`
    Imported int            `json:"imported"`
    Skipped  int            `json:"skipped"`
    Reasons  map[string]int `json:"reasons,omitempty"`
}

func (r *LoadReport) skip(reason string) {
    r.Skipped++
    if r.Reasons == nil {
        r.Reasons = make(map[string]int)
    }
    r.Reasons[reason]++
}
