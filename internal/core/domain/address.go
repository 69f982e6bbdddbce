/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Address is the document returned by the address service for a CEP.
// It is kept as a loose mapping: the service owns the field set and we only
// look at the "erro" marker.
//
// Typical fields: cep, logradouro, complemento, bairro, localidade, uf, ibge.
type Address map[string]any

// DecodeAddress parses a raw response body. An empty body, an empty object or
// a document carrying the service's "erro" marker all yield ErrLookup.
func DecodeAddress(raw []byte) (Address, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrLookup)
	}

	var addr Address
	if err := json.Unmarshal(raw, &addr); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrLookup, err)
	}
	if len(addr) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrLookup)
	}
	if addr.HasErrorMarker() {
		return nil, fmt.Errorf("%w: no address for this CEP", ErrLookup)
	}
	return addr, nil
}

// HasErrorMarker reports whether the document is the service's "not found"
// answer. Older responses use a boolean, newer ones the string "true".
func (a Address) HasErrorMarker() bool {
	switch v := a["erro"].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}

func (a Address) CEP() string          { return a.field("cep") }
func (a Address) Street() string       { return a.field("logradouro") }
func (a Address) Complement() string   { return a.field("complemento") }
func (a Address) Neighborhood() string { return a.field("bairro") }
func (a Address) City() string         { return a.field("localidade") }
func (a Address) State() string        { return a.field("uf") }
func (a Address) IBGE() string         { return a.field("ibge") }

// Label renders the address on one line, skipping empty parts.
// e.g. "Praça da Sé, lado ímpar, Sé, São Paulo - SP, 01001-000"
func (a Address) Label() string {
	var parts []string
	for _, p := range []string{a.Street(), a.Complement(), a.Neighborhood()} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	city := a.City()
	if st := a.State(); st != "" {
		city = strings.TrimSpace(city + " - " + st)
	}
	if city != "" {
		parts = append(parts, city)
	}
	if c := a.CEP(); c != "" {
		parts = append(parts, c)
	}
	return strings.Join(parts, ", ")
}

func (a Address) field(key string) string {
	switch v := a[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// LookupEvent is published after a successful remote lookup.
type LookupEvent struct {
	ID         uuid.UUID `json:"eventId"`
	CEP        string    `json:"cep"`
	City       string    `json:"city,omitempty"`
	State      string    `json:"state,omitempty"`
	IBGE       string    `json:"ibge,omitempty"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

// NewLookupEvent builds the event for a freshly fetched address.
func NewLookupEvent(cep string, addr Address) LookupEvent {
	return LookupEvent{
		ID:         uuid.New(),
		CEP:        cep,
		City:       addr.City(),
		State:      addr.State(),
		IBGE:       addr.IBGE(),
		ResolvedAt: time.Now().UTC(),
	}
}
