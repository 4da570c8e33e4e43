package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"time"

	"github.com/FocuswithJustin/romanconv/core/batch"
	"github.com/FocuswithJustin/romanconv/core/roman"
	"github.com/FocuswithJustin/romanconv/internal/logging"
	"github.com/FocuswithJustin/romanconv/internal/validation"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Cached    bool   `json:"cached,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Conversion is the payload of /encode and /decode.
type Conversion struct {
	Numeral string `json:"numeral"`
	Number  int    `json:"number"`
}

// Validation is the payload of /validate.
type Validation struct {
	Numeral          string `json:"numeral"`
	Valid            bool   `json:"valid"`
	InvalidCharacter bool   `json:"invalid_character"`
	Reason           string `json:"reason,omitempty"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Uptime       string `json:"uptime"`
	CacheEntries int    `json:"cache_entries"`
}

// conversion is the memoised outcome of an encode or decode.
type conversion struct {
	result Conversion
	err    error
}

// Error codes returned in APIError.Code.
const (
	codeNotFound       = "NOT_FOUND"
	codeInvalidNumber  = "INVALID_NUMBER"
	codeOutOfRange     = "OUT_OF_RANGE"
	codeInvalidNumeral = "INVALID_NUMERAL"
	codeInvalidBatch   = "INVALID_BATCH"
	codeCancelled      = "CANCELLED"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, codeNotFound, "Endpoint not found")
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"name":    "Roman Numeral API",
		"version": s.cfg.Version,
		"endpoints": []string{
			"GET /health",
			"GET /table",
			"GET /encode/:number",
			"GET /decode/:numeral",
			"GET /validate/:numeral",
			"GET /roman_number/:number",
			"POST /batch",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	entries := 0
	if s.memo != nil {
		entries = s.memo.Len()
	}
	respond(w, http.StatusOK, HealthInfo{
		Status:       "healthy",
		Version:      s.cfg.Version,
		Uptime:       time.Since(s.started).String(),
		CacheEntries: entries,
	})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, roman.Units())
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("number")
	number, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidNumber, fmt.Sprintf("not an integer: %q", raw))
		return
	}

	c, cached := s.convert("encode:"+raw, func() conversion {
		numeral, err := roman.EncodeMax(number, s.maxNumber())
		return conversion{result: Conversion{Numeral: numeral, Number: number}, err: err}
	})
	logging.Conversion(r.Context(), "encode", raw, c.result.Numeral, c.err)

	if c.err != nil {
		respondConversionError(w, c.err)
		return
	}
	respondCached(w, c.result, cached)
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	numeral := r.PathValue("numeral")

	c, cached := s.convert("decode:"+numeral, func() conversion {
		number, err := roman.Decode(numeral)
		return conversion{result: Conversion{Numeral: numeral, Number: number}, err: err}
	})
	logging.Conversion(r.Context(), "decode", numeral, strconv.Itoa(c.result.Number), c.err)

	if c.err != nil {
		respondConversionError(w, c.err)
		return
	}
	respondCached(w, c.result, cached)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	numeral := r.PathValue("numeral")

	v := Validation{
		Numeral:          numeral,
		InvalidCharacter: roman.HasInvalidCharacter(numeral),
	}
	if _, err := roman.Decode(numeral); err != nil {
		var numErr *roman.NumeralError
		if errors.As(err, &numErr) {
			v.Reason = numErr.Reason
		}
	} else {
		v.Valid = true
	}
	respond(w, http.StatusOK, v)
}

// handleRomanNumber serves the plain-text route: the quoted numeral for a
// positive integer, 404 for anything without a numeral and 422 above the
// configured maximum.
func (s *Server) handleRomanNumber(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("400 - Bad request"))
		return
	}

	numeral, err := roman.EncodeMax(number, s.maxNumber())
	if err != nil && number > 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("422 - Number too large"))
		return
	}
	if err != nil || numeral == "" {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("404 - Not Found"))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "%q", html.EscapeString(numeral))
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxBatchBytes
	if limit <= 0 {
		limit = DefaultConfig().MaxBatchBytes
	}
	body := http.MaxBytesReader(w, r.Body, limit)

	input, err := batch.OpenInput(body)
	if err == nil {
		input, err = validation.RequireText(input)
	}
	var items []batch.Item
	if err == nil {
		items, err = batch.Parse(input)
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusRequestEntityTooLarge, codeInvalidBatch,
				fmt.Sprintf("batch exceeds %d bytes", maxErr.Limit))
			return
		}
		respondError(w, http.StatusBadRequest, codeInvalidBatch, err.Error())
		return
	}

	report, err := batch.Convert(r.Context(), items, batch.Options{
		Workers:   s.cfg.BatchWorkers,
		MaxNumber: s.maxNumber(),
	})
	if err != nil {
		logging.LoggerFromContext(r.Context()).Warn("batch_cancelled", "items", len(items), "error", err.Error())
		respondError(w, http.StatusServiceUnavailable, codeCancelled, err.Error())
		return
	}

	logging.LoggerFromContext(r.Context()).Info("batch_converted",
		"total", report.Total,
		"failed", report.Failed,
		"blake3", report.Digest)
	respond(w, http.StatusOK, report)
}

func (s *Server) maxNumber() int {
	if s.cfg.MaxNumber <= 0 {
		return DefaultMaxNumber
	}
	return s.cfg.MaxNumber
}

func (s *Server) convert(key string, fn func() conversion) (conversion, bool) {
	if s.memo == nil {
		return fn(), false
	}
	return s.memo.GetOrCompute(key, fn)
}

func respondConversionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roman.ErrOutOfRange):
		respondError(w, http.StatusUnprocessableEntity, codeOutOfRange, err.Error())
	case errors.Is(err, roman.ErrInvalidNumeral):
		respondError(w, http.StatusUnprocessableEntity, codeInvalidNumeral, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func respond(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta:    newMeta(false),
	})
}

func respondCached(w http.ResponseWriter, data any, cached bool) {
	writeEnvelope(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    newMeta(cached),
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeEnvelope(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: newMeta(false),
	})
}

func newMeta(cached bool) *APIMeta {
	return &APIMeta{
		Cached:    cached,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func writeEnvelope(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}
