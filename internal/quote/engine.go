package quote

import (
    "fmt"
    "math"

    "github.com/shopspring/decimal"

    "tarifdz/internal/directory"
    "tarifdz/internal/pricing"
)

// DeliveryType selects which base tariff applies.
type DeliveryType string

const (
    DeliveryHome   DeliveryType = "home"
    DeliveryOffice DeliveryType = "office"
)

// InvalidInputError reports a request field that fails validation. It is a
// user-facing condition, never process-fatal.
type InvalidInputError struct {
    Field  string
    Reason string
}

func (e *InvalidInputError) Error() string {
    return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Request is one quote computation input.
type Request struct {
    Carrier         string       `json:"carrier" validate:"required"`
    WilayaCode      int          `json:"wilaya_code" validate:"required,min=1,max=58"`
    Commune         string       `json:"commune" validate:"required"`
    DeliveryType    DeliveryType `json:"delivery_type" validate:"required,oneof=home office"`
    WeightKg        float64      `json:"weight_kg" validate:"gte=0"`
    DeclaredValueDA int64        `json:"declared_value_da" validate:"gte=0"`
    CODEnabled      bool         `json:"cod_enabled"`
}

// Breakdown itemizes a quote. Every component is broken out so callers can
// display the full bill, never just the total.
type Breakdown struct {
    Carrier       string       `json:"carrier"`
    WilayaCode    int          `json:"wilaya_code"`
    WilayaName    string       `json:"wilaya_name"`
    Commune       string       `json:"commune"`
    Zone          int          `json:"zone"`
    DeliveryType  DeliveryType `json:"delivery_type"`
    Base          int64        `json:"base"`
    OverweightFee int64        `json:"overweight_fee"`
    CODFee        int64        `json:"cod_fee"`
    Total         int64        `json:"total"`
}

// Engine computes delivery price breakdowns. It is a pure function of the
// injected read-only directory and pricing snapshots; it holds no other state
// and performs no I/O.
type Engine struct {
    dir *directory.Directory
    tbl *pricing.Table
}

func New(dir *directory.Directory, tbl *pricing.Table) *Engine {
    return &Engine{dir: dir, tbl: tbl}
}

// Quote resolves the tariff for the request and applies the surcharge rules.
// Failures propagate with their original type: directory errors for bad
// locations, pricing.ErrPriceNotFound when the carrier does not serve the
// destination, InvalidInputError for out-of-range fields.
func (e *Engine) Quote(req Request) (Breakdown, error) {
    if err := validate(req); err != nil {
        return Breakdown{}, err
    }

    commune, err := e.dir.ResolveCommune(req.WilayaCode, req.Commune)
    if err != nil {
        return Breakdown{}, err
    }

    entry, err := e.tbl.Lookup(req.Carrier, req.WilayaCode, commune.Name)
    if err != nil {
        return Breakdown{}, err
    }

    base := entry.Price.Home
    if req.DeliveryType == DeliveryOffice {
        base = entry.Price.Office
    }

    overweight := overweightFee(req.WeightKg, entry.Price.Supplements)

    var codFee int64
    if req.CODEnabled {
        codFee = CODFee(req.DeclaredValueDA, entry.Price.Supplements)
    }

    return Breakdown{
        Carrier:       entry.Carrier,
        WilayaCode:    entry.WilayaCode,
        WilayaName:    entry.WilayaName,
        Commune:       commune.Name,
        Zone:          entry.Zone,
        DeliveryType:  req.DeliveryType,
        Base:          base,
        OverweightFee: overweight,
        CODFee:        codFee,
        Total:         base + overweight + codFee,
    }, nil
}

func validate(req Request) error {
    if req.Carrier == "" {
        return &InvalidInputError{Field: "carrier", Reason: "required"}
    }
    if req.DeliveryType != DeliveryHome && req.DeliveryType != DeliveryOffice {
        return &InvalidInputError{Field: "delivery_type", Reason: "must be home or office"}
    }
    if req.WeightKg < 0 || math.IsNaN(req.WeightKg) || math.IsInf(req.WeightKg, 0) {
        return &InvalidInputError{Field: "weight_kg", Reason: "must be a non-negative number"}
    }
    if req.DeclaredValueDA < 0 {
        return &InvalidInputError{Field: "declared_value_da", Reason: "must be non-negative"}
    }
    return nil
}

// overweightFee bills whole kilograms over the threshold, rounded up, per the
// carriers' billing convention. At or under the threshold there is no fee.
func overweightFee(weightKg float64, sup pricing.Supplements) int64 {
    if weightKg <= sup.OverweightThresholdKg {
        return 0
    }
    extraKg := int64(math.Ceil(weightKg - sup.OverweightThresholdKg))
    return extraKg * sup.OverweightFee
}

// CODFee is declaredValue × percentage + fixed, rounded to the nearest whole
// dinar; the currency has no fractional unit in this domain.
func CODFee(declaredValueDA int64, sup pricing.Supplements) int64 {
    pct := decimal.NewFromInt(declaredValueDA).
        Mul(decimal.NewFromFloat(sup.CODFeePercent)).
        Div(decimal.NewFromInt(100)).
        Round(0)
    return pct.IntPart() + sup.CODFeeFixed
}
