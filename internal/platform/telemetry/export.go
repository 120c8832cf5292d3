package telemetry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Config selects the export transport. When both transports are enabled
// gRPC wins.
type Config struct {
	GRPCEnabled  bool
	GRPCEndpoint string
	HTTPEnabled  bool
	HTTPEndpoint string
}

// Enabled reports whether any transport is switched on.
func (c Config) Enabled() bool {
	return c.GRPCEnabled || c.HTTPEnabled
}

// ExporterFactory constructs the OTLP log exporter for a transport. It is
// an explicit dependency so tests can observe construction without network
// access.
type ExporterFactory interface {
	NewGRPC(ctx context.Context, endpoint string) (sdklog.Exporter, error)
	NewHTTP(ctx context.Context, endpoint string) (sdklog.Exporter, error)
}

// OTLPFactory is the production ExporterFactory backed by the OTLP gRPC and
// HTTP log exporters.
type OTLPFactory struct{}

func (OTLPFactory) NewGRPC(ctx context.Context, endpoint string) (sdklog.Exporter, error) {
	return otlploggrpc.New(ctx, otlploggrpc.WithEndpointURL(endpoint), otlploggrpc.WithInsecure())
}

func (OTLPFactory) NewHTTP(ctx context.Context, endpoint string) (sdklog.Exporter, error) {
	return otlploghttp.New(ctx, otlploghttp.WithEndpointURL(endpoint), otlploghttp.WithInsecure())
}

// ExportService exports the self-disclosure record. The exporter handle is
// constructed lazily on the first export attempt and cached for the process
// lifetime; concurrent first exports are serialized by a mutex.
type ExportService struct {
	cfg        Config
	factory    ExporterFactory
	disclosure *SelfDisclosure
	log        zerolog.Logger

	mu       sync.Mutex
	exporter sdklog.Exporter
}

func NewExportService(cfg Config, factory ExporterFactory, disclosure *SelfDisclosure, log zerolog.Logger) *ExportService {
	return &ExportService{cfg: cfg, factory: factory, disclosure: disclosure, log: log}
}

// Export ships one disclosure record. With both transports disabled it is
// a no-op. A configuration error aborts this cycle only.
func (s *ExportService) Export(ctx context.Context) error {
	if !s.cfg.Enabled() {
		s.log.Debug().Msg("self disclosure export disabled")
		return nil
	}

	exporter, err := s.getExporter(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("self disclosure exporter construction failed")
		return err
	}

	rec := s.disclosure.Record()
	if err := exporter.Export(ctx, []sdklog.Record{rec}); err != nil {
		return fmt.Errorf("export self disclosure: %w", err)
	}
	s.log.Debug().Msg("self disclosure exported")
	return nil
}

// Shutdown flushes and releases the cached exporter, if one was built.
func (s *ExportService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exporter == nil {
		return nil
	}
	err := s.exporter.Shutdown(ctx)
	s.exporter = nil
	return err
}

func (s *ExportService) getExporter(ctx context.Context) (sdklog.Exporter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exporter != nil {
		return s.exporter, nil
	}

	var (
		exporter sdklog.Exporter
		err      error
	)
	switch {
	case s.cfg.GRPCEnabled:
		if s.cfg.HTTPEnabled {
			s.log.Info().Msg("both OTLP transports enabled, preferring gRPC")
		}
		endpoint, nerr := normalizeEndpoint(s.cfg.GRPCEndpoint)
		if nerr != nil {
			return nil, nerr
		}
		exporter, err = s.factory.NewGRPC(ctx, endpoint)
	default:
		endpoint, nerr := normalizeEndpoint(s.cfg.HTTPEndpoint)
		if nerr != nil {
			return nil, nerr
		}
		exporter, err = s.factory.NewHTTP(ctx, endpoint)
	}
	if err != nil {
		return nil, err
	}

	s.exporter = exporter
	return exporter, nil
}

// normalizeEndpoint rejects blank endpoints and prefixes http:// when no
// scheme is present.
func normalizeEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", fmt.Errorf("OTLP endpoint must not be blank when export is enabled")
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	return endpoint, nil
}
