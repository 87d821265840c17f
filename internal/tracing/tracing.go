// Package tracing installs the global OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Config struct {
	Endpoint    string // OTLP gRPC host:port or URL; empty installs a noop provider
	Insecure    bool
	Headers     string // k=v pairs separated by commas
	ServiceName string
}

// Shutdown flushes and stops the provider returned by Setup.
type Shutdown func(context.Context) error

// Setup builds a tracer provider from cfg and registers it globally.
func Setup(ctx context.Context, cfg Config) (trace.TracerProvider, Shutdown, error) {
	if cfg.Endpoint == "" {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, func(context.Context) error { return nil }, nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "reelbot"
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String(cfg.ServiceName)))
	if err != nil {
		return nil, nil, fmt.Errorf("creating otel resource: %w", err)
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(hostPort(cfg.Endpoint))}
	if cfg.Insecure || isLocal(cfg.Endpoint) {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	if headers := parseHeaders(cfg.Headers); len(headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(headers))
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating otlp trace grpc exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}
	return tp, shutdown, nil
}

func parseHeaders(raw string) map[string]string {
	headers := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || key == "" {
			continue
		}
		headers[key] = val
	}
	return headers
}

// hostPort strips a URL scheme; the gRPC exporter wants host:port.
func hostPort(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if strings.Contains(endpoint, "://") {
		if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return endpoint
}

// isLocal reports whether every address of the endpoint's host is
// loopback or private. Lookup failures count as remote.
func isLocal(endpoint string) bool {
	host := hostPort(endpoint)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate()
	}
	ips, err := net.LookupIP(host)
	if err != nil || len(ips) == 0 {
		return false
	}
	for _, ip := range ips {
		if !ip.IsLoopback() && !ip.IsPrivate() {
			return false
		}
	}
	return true
}
