/*
 * Copyright (c) 2025 TraceApi
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2029-11-20
 * Change License: AGPL-3.0
 */

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "embed"

	"github.com/TraceApi/brasil-utils/internal/core/domain"
	"github.com/TraceApi/brasil-utils/internal/core/ports"
	"github.com/TraceApi/brasil-utils/internal/platform/metrics"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// LookupChannel is where LookupEvents are published.
const LookupChannel = "cep.resolved"

// Embed the response schema directly into the Go binary
//
//go:embed schemas/viacep.json
var addressSchemaRaw string

var tracer = otel.Tracer("github.com/TraceApi/brasil-utils/internal/core/service")

type addressService struct {
	lookup   ports.AddressLookup
	cache    ports.DocumentCache
	bus      ports.EventBus
	metrics  *metrics.Metrics
	log      *slog.Logger
	schema   *jsonschema.Schema
	defaults ports.ResolveDefaults
	now      func() time.Time

	// Concurrent requests for the same CEP share one remote call.
	flight singleflight.Group
}

// Ensure interface implementation
var _ ports.AddressService = (*addressService)(nil)

// NewAddressService wires the resolver. cache and bus may be nil, which
// disables caching and event publishing respectively.
func NewAddressService(
	lookup ports.AddressLookup,
	cache ports.DocumentCache,
	bus ports.EventBus,
	m *metrics.Metrics,
	log *slog.Logger,
	defaults ports.ResolveDefaults,
) (ports.AddressService, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource("viacep.json", strings.NewReader(addressSchemaRaw)); err != nil {
		return nil, fmt.Errorf("failed to add address schema: %w", err)
	}
	schema, err := compiler.Compile("viacep.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile address schema: %w", err)
	}

	if log == nil {
		log = slog.Default()
	}

	return &addressService{
		lookup:   lookup,
		cache:    cache,
		bus:      bus,
		metrics:  m,
		log:      log,
		schema:   schema,
		defaults: defaults,
		now:      time.Now,
	}, nil
}

func (s *addressService) DefaultOptions() ports.ResolveOptions {
	opts := ports.ResolveOptions{Strict: s.defaults.Strict, UseCache: s.defaults.UseCache}
	if s.defaults.Validity > 0 {
		opts.ValidUntil = s.now().Add(s.defaults.Validity)
	}
	return opts
}

func (s *addressService) Resolve(ctx context.Context, input string, opts ports.ResolveOptions) (domain.Address, error) {
	ctx, span := tracer.Start(ctx, "AddressService.Resolve")
	defer span.End()

	// 1. Format
	if ok, err := domain.ValidateCEPFormat(input, opts.Strict); !ok {
		s.metrics.IncrementLookupFailure("format")
		return nil, err
	}

	cep := domain.NormalizeCEP(input)
	useCache := opts.UseCache && s.cache != nil
	span.SetAttributes(attribute.String("cep", cep), attribute.Bool("cache.enabled", useCache))

	// 2. Cache. A hit never reaches the remote service.
	if useCache {
		if addr, ok := s.fromCache(ctx, cep, opts); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return addr, nil
		}
	}

	// 3. Remote
	raw, err := s.fetch(ctx, cep)
	if err != nil {
		s.metrics.IncrementLookupFailure("transport")
		return s.noResult(span, fmt.Errorf("%w: %s: %w", domain.ErrLookup, cep, err), opts.Strict)
	}

	// 4. Decode. Only an empty document or the erro marker is a miss.
	addr, err := domain.DecodeAddress(raw)
	if err != nil {
		s.metrics.IncrementLookupFailure("not_found")
		return s.noResult(span, fmt.Errorf("%s: %w", cep, err), opts.Strict)
	}
	s.checkShape(cep, addr)

	// 5. Write-through. Best effort: a failed write costs a future remote call, nothing more.
	if useCache {
		if err := s.cache.Put(ctx, domain.NamespaceCEP, cep, raw); err != nil {
			s.log.Warn("failed to cache address", "cep", cep, "error", err)
		}
	}

	s.publish(ctx, cep, addr)
	return addr, nil
}

func (s *addressService) fromCache(ctx context.Context, cep string, opts ports.ResolveOptions) (domain.Address, bool) {
	raw, found := s.cache.Get(ctx, domain.NamespaceCEP, cep, opts.ValidUntil)
	if !found {
		s.metrics.IncrementCacheMiss(domain.NamespaceCEP)
		return nil, false
	}

	addr, err := domain.DecodeAddress(raw)
	if err != nil {
		s.log.Debug("ignoring unusable cache entry", "cep", cep, "error", err)
		s.metrics.IncrementCacheMiss(domain.NamespaceCEP)
		return nil, false
	}

	s.metrics.IncrementCacheHit(domain.NamespaceCEP)
	s.log.Debug("address served from cache", "cep", cep)
	return addr, true
}

func (s *addressService) fetch(ctx context.Context, cep string) ([]byte, error) {
	v, err, shared := s.flight.Do(cep, func() (interface{}, error) {
		ctx, span := tracer.Start(ctx, "AddressLookup.FetchAddress", trace.WithSpanKind(trace.SpanKindClient))
		defer span.End()

		s.metrics.IncrementRemoteLookup()
		raw, err := s.lookup.FetchAddress(ctx, cep)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "remote lookup failed")
		}
		return raw, err
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug("remote lookup shared with a concurrent caller", "cep", cep)
	}

	raw, _ := v.([]byte)
	return raw, nil
}

// checkShape compares a remote document with the embedded schema. A mismatch
// is logged and counted; the document is still served as received.
func (s *addressService) checkShape(cep string, addr domain.Address) {
	if err := s.schema.Validate(map[string]interface{}(addr)); err != nil {
		s.metrics.IncrementSchemaMismatch()
		s.log.Warn("address document does not match the expected shape", "cep", cep, "error", err)
	}
}

func (s *addressService) noResult(span trace.Span, err error, strict bool) (domain.Address, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "no address")
	s.log.Info("address not resolved", "error", err)
	if strict {
		return nil, err
	}
	return nil, nil
}

func (s *addressService) publish(ctx context.Context, cep string, addr domain.Address) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, LookupChannel, domain.NewLookupEvent(cep, addr)); err != nil {
		s.log.Warn("failed to publish lookup event", "cep", cep, "error", err)
	}
}
