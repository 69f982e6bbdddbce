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
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/TraceApi/brasil-utils/internal/core/domain"
	"github.com/TraceApi/brasil-utils/internal/core/ports"
	"github.com/TraceApi/brasil-utils/internal/transport/rest/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
)

type AddressHandler struct {
	service ports.AddressService
	log     *slog.Logger
}

func NewAddressHandler(s ports.AddressService, log *slog.Logger) *AddressHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AddressHandler{service: s, log: log}
}

func (h *AddressHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cep/{cep}", h.ResolveAddress)
	r.Get("/cep/{cep}/qr", h.GetQRCode)
}

// ResolveAddress handles GET /cep/{cep}?cache=false
func (h *AddressHandler) ResolveAddress(w http.ResponseWriter, r *http.Request) {
	addr, ok := h.resolve(w, r)
	if !ok {
		return
	}

	writeJSON(w, h.logger(r), addr)
}

// GetQRCode handles GET /cep/{cep}/qr?size=256 and returns a PNG holding the
// one-line address label.
func (h *AddressHandler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	size := 256
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 64 || n > 1024 {
			http.Error(w, "'size' must be between 64 and 1024", http.StatusBadRequest)
			return
		}
		size = n
	}

	addr, ok := h.resolve(w, r)
	if !ok {
		return
	}

	png, err := qrcode.Encode(addr.Label(), qrcode.Medium, size)
	if err != nil {
		h.logger(r).Error("failed to generate qr", "error", err)
		http.Error(w, "Failed to generate QR", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// resolve runs a strict resolution and writes the error response itself
// when there is no address.
func (h *AddressHandler) resolve(w http.ResponseWriter, r *http.Request) (domain.Address, bool) {
	cep := chi.URLParam(r, "cep")
	log := h.logger(r)

	opts := h.service.DefaultOptions()
	opts.Strict = true
	if v := r.URL.Query().Get("cache"); v != "" {
		useCache, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "'cache' must be true or false", http.StatusBadRequest)
			return nil, false
		}
		opts.UseCache = useCache
	}

	addr, err := h.service.Resolve(r.Context(), cep, opts)
	switch {
	case errors.Is(err, domain.ErrFormat):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	case errors.Is(err, domain.ErrLookup):
		log.Warn("address not found", "cep", cep, "error", err)
		http.Error(w, "Address Not Found", http.StatusNotFound)
		return nil, false
	case err != nil:
		log.Error("failed to resolve address", "cep", cep, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return nil, false
	case addr == nil:
		http.Error(w, "Address Not Found", http.StatusNotFound)
		return nil, false
	}
	return addr, true
}

// logger tags log lines with the authenticated client, when there is one.
func (h *AddressHandler) logger(r *http.Request) *slog.Logger {
	if sub, ok := middleware.GetSubject(r.Context()); ok {
		return h.log.With("client", sub)
	}
	return h.log
}
