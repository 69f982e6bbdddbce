/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/TraceApi/brasil-utils/internal/core/domain"
	"github.com/go-chi/chi/v5"
)

const maxGenerated = 100

// ValidationHandler exposes the pure document checks. Nothing here does I/O.
type ValidationHandler struct {
	log *slog.Logger
}

func NewValidationHandler(log *slog.Logger) *ValidationHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ValidationHandler{log: log}
}

// RegisterRoutes wires up the endpoints to the router
func (h *ValidationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cpf/generate", h.GenerateCPF)
	r.Get("/cpf/{cpf}/validate", h.ValidateCPF)
	r.Get("/cep/{cep}/validate", h.ValidateCEP)
	r.Get("/phone/validate", h.ValidatePhone)
}

type ValidationResponse struct {
	Input  string `json:"input"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

type GenerateResponse struct {
	CPFs []string `json:"cpfs"`
}

// ValidateCPF handles GET /cpf/{cpf}/validate
func (h *ValidationHandler) ValidateCPF(w http.ResponseWriter, r *http.Request) {
	input := chi.URLParam(r, "cpf")
	h.writeValidation(w, input)(domain.ValidateCPF(input, true))
}

// ValidateCEP handles GET /cep/{cep}/validate
func (h *ValidationHandler) ValidateCEP(w http.ResponseWriter, r *http.Request) {
	input := chi.URLParam(r, "cep")
	h.writeValidation(w, input)(domain.ValidateCEPFormat(input, true))
}

// ValidatePhone handles GET /phone/validate?number=(11)%201234-5678&ddd=true
func (h *ValidationHandler) ValidatePhone(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("number")
	if input == "" {
		http.Error(w, "missing 'number' query parameter", http.StatusBadRequest)
		return
	}
	ddd, _ := strconv.ParseBool(r.URL.Query().Get("ddd"))
	h.writeValidation(w, input)(domain.ValidatePhoneFormat(input, ddd, true))
}

// GenerateCPF handles GET /cpf/generate?count=3&masked=true
func (h *ValidationHandler) GenerateCPF(w http.ResponseWriter, r *http.Request) {
	count := 1
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxGenerated {
			http.Error(w, "'count' must be between 1 and 100", http.StatusBadRequest)
			return
		}
		count = n
	}
	masked, _ := strconv.ParseBool(r.URL.Query().Get("masked"))

	resp := GenerateResponse{CPFs: make([]string, 0, count)}
	for i := 0; i < count; i++ {
		resp.CPFs = append(resp.CPFs, domain.GenerateCPF(masked))
	}

	writeJSON(w, h.log, resp)
}

// writeValidation returns a sink for a strict validation result. Invalid
// input is still a 200: the answer is the "valid" flag and the reason.
func (h *ValidationHandler) writeValidation(w http.ResponseWriter, input string) func(bool, error) {
	return func(ok bool, err error) {
		resp := ValidationResponse{Input: input, Valid: ok}
		if err != nil {
			resp.Reason = err.Error()
		}
		writeJSON(w, h.log, resp)
	}
}

// writeJSON encodes v as the response body. The status line is already
// gone by the time encoding fails, so the failure is only logged.
func writeJSON(w http.ResponseWriter, log *slog.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", "error", err)
	}
}
