package server

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "reflect"
    "strconv"
    "strings"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/go-playground/validator/v10"
    "github.com/google/uuid"

    "tarifdz/internal/directory"
    "tarifdz/internal/logger"
    "tarifdz/internal/pricing"
    "tarifdz/internal/quote"
)

// Importer persists a carrier's bulk tariff replacement. Optional; without it
// imports only update the in-memory table.
type Importer interface {
    ReplaceAll(ctx context.Context, carrier string, entries []pricing.Entry) error
}

type Server struct {
    dir      *directory.Directory
    tbl      *pricing.Table
    engine   *quote.Engine
    store    Importer
    validate *validator.Validate
}

func New(dir *directory.Directory, tbl *pricing.Table) http.Handler {
    return NewWithStore(dir, tbl, nil)
}

// NewWithStore wires the full router. store may be nil for storeless setups.
func NewWithStore(dir *directory.Directory, tbl *pricing.Table, store Importer) http.Handler {
    s := &Server{
        dir:      dir,
        tbl:      tbl,
        engine:   quote.New(dir, tbl),
        store:    store,
        validate: newValidator(),
    }
    r := chi.NewRouter()
    // Observability: Request ID and basic logger
    r.Use(requestIDMiddleware)
    r.Use(middleware.Logger)
    r.Get("/healthz", s.handleHealth)
    r.Post("/quote", s.handleQuote)
    r.Get("/wilayas", s.handleListWilayas)
    r.Get("/wilayas/{code}/communes", s.handleListCommunes)
    r.Get("/carriers", s.handleListCarriers)
    r.Put("/carriers/{carrier}/pricing", s.handleImportPricing)
    return r
}

// newValidator reports offending fields by their json tag so error responses
// match the request document.
func newValidator() *validator.Validate {
    v := validator.New()
    v.RegisterTagNameFunc(func(fld reflect.StructField) string {
        name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return v
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
    w.WriteHeader(http.StatusOK)
    w.Write([]byte("ok"))
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
    var req quote.Request
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json", "")
        return
    }
    if err := s.validate.Struct(req); err != nil {
        var verrs validator.ValidationErrors
        if errors.As(err, &verrs) && len(verrs) > 0 {
            writeErrorJSON(w, http.StatusBadRequest, "invalid_input", verrs[0].Error(), verrs[0].Field())
            return
        }
        writeErrorJSON(w, http.StatusBadRequest, "invalid_input", err.Error(), "")
        return
    }

    breakdown, err := s.engine.Quote(req)
    if err != nil {
        s.writeQuoteError(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, breakdown)
}

// writeQuoteError maps engine failures onto the HTTP taxonomy: bad input and
// unknown locations are the caller's problem (400), a missing tariff means
// the carrier does not serve the destination (404).
func (s *Server) writeQuoteError(w http.ResponseWriter, r *http.Request, err error) {
    var inv *quote.InvalidInputError
    var amb *directory.AmbiguousMatchError
    switch {
    case errors.As(err, &inv):
        writeErrorJSON(w, http.StatusBadRequest, "invalid_input", inv.Reason, inv.Field)
    case errors.As(err, &amb):
        logger.Warnf(r.Context(), "ambiguous reference data: %s", amb.Error())
        writeErrorJSON(w, http.StatusBadRequest, "ambiguous_commune", amb.Error(), "commune")
    case errors.Is(err, directory.ErrWilayaNotFound):
        writeErrorJSON(w, http.StatusBadRequest, "unknown_wilaya", "unknown wilaya code", "wilaya_code")
    case errors.Is(err, directory.ErrCommuneNotFound):
        writeErrorJSON(w, http.StatusBadRequest, "unknown_commune", "commune not found in wilaya", "commune")
    case errors.Is(err, pricing.ErrPriceNotFound):
        writeErrorJSON(w, http.StatusNotFound, "not_serviceable", "carrier does not deliver to this destination", "")
    default:
        logger.Errorf(r.Context(), "quote failed: %v", err)
        writeErrorJSON(w, http.StatusInternalServerError, "internal_error", "internal error", "")
    }
}

type wilayasResponse struct {
    Wilayas []directory.Wilaya `json:"wilayas"`
    Total   int                `json:"total"`
}

func (s *Server) handleListWilayas(w http.ResponseWriter, r *http.Request) {
    ws := s.dir.ListWilayas()
    writeJSON(w, http.StatusOK, wilayasResponse{Wilayas: ws, Total: len(ws)})
}

type communesResponse struct {
    WilayaCode int                 `json:"wilaya_code"`
    Communes   []directory.Commune `json:"communes"`
    Total      int                 `json:"total"`
}

func (s *Server) handleListCommunes(w http.ResponseWriter, r *http.Request) {
    code, err := strconv.Atoi(chi.URLParam(r, "code"))
    if err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "wilaya code must be numeric", "code")
        return
    }
    cs, err := s.dir.ListCommunes(code)
    if err != nil {
        writeErrorJSON(w, http.StatusNotFound, "unknown_wilaya", "unknown wilaya code", "code")
        return
    }
    writeJSON(w, http.StatusOK, communesResponse{WilayaCode: code, Communes: cs, Total: len(cs)})
}

type carriersResponse struct {
    Carriers []string `json:"carriers"`
    Total    int      `json:"total"`
}

func (s *Server) handleListCarriers(w http.ResponseWriter, r *http.Request) {
    cs := s.tbl.Carriers()
    writeJSON(w, http.StatusOK, carriersResponse{Carriers: cs, Total: len(cs)})
}

type importRequest struct {
    Entries []pricing.RawRow `json:"entries"`
}

// handleImportPricing replaces every tariff of one carrier. Bad rows are
// skipped and reported, they never abort the batch. The in-memory swap is
// atomic for concurrent quote requests.
func (s *Server) handleImportPricing(w http.ResponseWriter, r *http.Request) {
    carrier := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "carrier")))
    if carrier == "" {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "carrier required", "carrier")
        return
    }
    var req importRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json", "")
        return
    }
    if len(req.Entries) == 0 {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "entries required", "entries")
        return
    }

    // The URL owns the carrier; row-level carrier values are overridden.
    rows := make([]pricing.RawRow, len(req.Entries))
    for i, row := range req.Entries {
        row.Carrier = carrier
        rows[i] = row
    }

    entries, report := pricing.NormalizeRows(rows, s.dir)
    if report.Imported == 0 {
        writeErrorJSON(w, http.StatusBadRequest, "empty_import", "no valid rows in import", "entries")
        return
    }

    if s.store != nil {
        if err := s.store.ReplaceAll(r.Context(), carrier, entries); err != nil {
            // Previous snapshot keeps serving; nothing was swapped.
            logger.Errorf(r.Context(), "persist import for %s: %v", carrier, err)
            writeErrorJSON(w, http.StatusInternalServerError, "db_error", "failed to persist import", "")
            return
        }
    }
    if err := s.tbl.ReplaceAll(carrier, entries); err != nil {
        writeErrorJSON(w, http.StatusInternalServerError, "internal_error", "failed to swap pricing table", "")
        return
    }

    logger.Infof(r.Context(), "replaced pricing for %s: %d imported, %d skipped", carrier, report.Imported, report.Skipped)
    writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}

// writeErrorJSON writes a standardized JSON error response:
// {"error": {"code": string, "message": string, "field": string}}
// field is omitted when empty.
func writeErrorJSON(w http.ResponseWriter, status int, code, message, field string) {
    e := map[string]string{
        "code":    code,
        "message": message,
    }
    if field != "" {
        e["field"] = field
    }
    writeJSON(w, status, map[string]any{"error": e})
}

// requestIDMiddleware ensures X-Request-ID is set on the response.
// If provided in the request header, it is propagated; otherwise a UUID is generated.
func requestIDMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
        if rid == "" {
            rid = uuid.New().String()
        }
        w.Header().Set("X-Request-ID", rid)
        next.ServeHTTP(w, r)
    })
}
