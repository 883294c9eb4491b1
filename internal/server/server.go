// Package server exposes the calculator screens over a JSON HTTP API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/iwvelando/simple-finance/internal/form"
	"github.com/iwvelando/simple-finance/pkg/constants"
	"github.com/iwvelando/simple-finance/pkg/output"
	"github.com/iwvelando/simple-finance/pkg/tvm"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Options configures the HTTP handler.
type Options struct {
	MaxBodySize    int64
	Version        string
	AllowedOrigins []string
}

type handler struct {
	logger      *zap.Logger
	calculator  *form.Calculator
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, calculator *form.Calculator, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calculator == nil {
		calculator = form.NewCalculator(logger, nil)
	}

	maxBodySize := opts.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, calculator: calculator, maxBodySize: maxBodySize, version: trimmedVersion}

	router := mux.NewRouter()
	router.HandleFunc("/api/solve", h.handleSolve).Methods(http.MethodPost)
	router.HandleFunc("/api/solve/{unknown}", h.handleSolve).Methods(http.MethodPost)
	router.HandleFunc("/api/screens", h.handleScreens).Methods(http.MethodGet)
	router.HandleFunc("/api/version", h.handleVersion).Methods(http.MethodGet)

	// An empty origin list lets rs/cors allow every origin.
	return cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
}

// textValue accepts either a JSON string or a JSON number so clients can send
// exactly what was typed or an already-parsed value.
type textValue string

func (v *textValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*v = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = textValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", trimmed)
	}
	*v = textValue(n.String())
	return nil
}

type solveRequest struct {
	Unknown         string    `json:"unknown"`
	PresentValue    textValue `json:"presentValue"`
	FutureValue     textValue `json:"futureValue"`
	PeriodicPayment textValue `json:"periodicPayment"`
	InterestRate    textValue `json:"interestRate"`
	NumberOfPeriods textValue `json:"numberOfPeriods"`
}

func (r solveRequest) form() form.Form {
	return form.Form{
		PresentValue:    string(r.PresentValue),
		FutureValue:     string(r.FutureValue),
		PeriodicPayment: string(r.PeriodicPayment),
		InterestRate:    string(r.InterestRate),
		NumberOfPeriods: string(r.NumberOfPeriods),
	}
}

func (h *handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSolve"
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	selector := req.Unknown
	if pathUnknown, ok := mux.Vars(r)["unknown"]; ok {
		selector = pathUnknown
	}
	if strings.TrimSpace(selector) == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing unknown field selector", op)
		return
	}
	unknown, err := tvm.ParseField(selector)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	result := h.calculator.Evaluate(req.form(), unknown)
	if result.Err != nil {
		h.respondErrorWithOp(w, statusForError(result.Err), result.Err.Error(), op)
		return
	}

	h.logger.Info("calculation served",
		zap.String("op", op),
		zap.String("unknown", unknown.String()),
		zap.String("display", result.Display),
		zap.Duration("duration", time.Since(start)),
	)
	h.writeJSON(w, http.StatusOK, output.NewRecord(result))
}

func (h *handler) handleScreens(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, form.Screens())
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, tvm.ErrInvalidInput), errors.Is(err, tvm.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, tvm.ErrUndefined), errors.Is(err, tvm.ErrNoSolution):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("calculation request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
