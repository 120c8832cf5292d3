package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// -- Spies --

type spyExporter struct {
	mu       sync.Mutex
	exported [][]sdklog.Record
	shutdown bool
}

func (s *spyExporter) Export(_ context.Context, records []sdklog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exported = append(s.exported, records)
	return nil
}

func (s *spyExporter) Shutdown(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdown = true
	return nil
}

func (s *spyExporter) ForceFlush(_ context.Context) error { return nil }

type spyFactory struct {
	grpcCalls    int
	httpCalls    int
	lastEndpoint string
	exporter     *spyExporter
	constructErr error
}

func newSpyFactory() *spyFactory {
	return &spyFactory{exporter: &spyExporter{}}
}

func (f *spyFactory) NewGRPC(_ context.Context, endpoint string) (sdklog.Exporter, error) {
	f.grpcCalls++
	f.lastEndpoint = endpoint
	if f.constructErr != nil {
		return nil, f.constructErr
	}
	return f.exporter, nil
}

func (f *spyFactory) NewHTTP(_ context.Context, endpoint string) (sdklog.Exporter, error) {
	f.httpCalls++
	f.lastEndpoint = endpoint
	if f.constructErr != nil {
		return nil, f.constructErr
	}
	return f.exporter, nil
}

func newTestExportService(cfg Config, factory ExporterFactory) *ExportService {
	disclosure := NewSelfDisclosure(map[string]string{"service": "testfachdienst"})
	return NewExportService(cfg, factory, disclosure, zerolog.Nop())
}

// -- Tests --

func TestExport_DisabledIsNoOp(t *testing.T) {
	factory := newSpyFactory()
	svc := newTestExportService(Config{}, factory)

	if err := svc.Export(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if factory.grpcCalls != 0 || factory.httpCalls != 0 {
		t.Errorf("expected zero factory interactions, got grpc=%d http=%d",
			factory.grpcCalls, factory.httpCalls)
	}
	if len(factory.exporter.exported) != 0 {
		t.Error("expected no export calls")
	}
}

func TestExport_NormalizesSchemelessEndpoint(t *testing.T) {
	factory := newSpyFactory()
	svc := newTestExportService(Config{GRPCEnabled: true, GRPCEndpoint: "telemetry:4317"}, factory)

	if err := svc.Export(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if factory.lastEndpoint != "http://telemetry:4317" {
		t.Errorf("expected normalized endpoint, got %q", factory.lastEndpoint)
	}
}

func TestExport_KeepsExplicitScheme(t *testing.T) {
	factory := newSpyFactory()
	svc := newTestExportService(Config{HTTPEnabled: true, HTTPEndpoint: "https://collector:4318"}, factory)

	if err := svc.Export(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if factory.lastEndpoint != "https://collector:4318" {
		t.Errorf("expected scheme preserved, got %q", factory.lastEndpoint)
	}
}

func TestExport_GRPCPreferredWhenBothEnabled(t *testing.T) {
	factory := newSpyFactory()
	svc := newTestExportService(Config{
		GRPCEnabled: true, GRPCEndpoint: "grpc-collector:4317",
		HTTPEnabled: true, HTTPEndpoint: "http-collector:4318",
	}, factory)

	if err := svc.Export(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if factory.grpcCalls != 1 || factory.httpCalls != 0 {
		t.Errorf("expected gRPC exporter only, got grpc=%d http=%d",
			factory.grpcCalls, factory.httpCalls)
	}
}

func TestExport_BlankEndpointFailsCycle(t *testing.T) {
	factory := newSpyFactory()
	svc := newTestExportService(Config{GRPCEnabled: true, GRPCEndpoint: "  "}, factory)

	if err := svc.Export(context.Background()); err == nil {
		t.Fatal("expected configuration error for blank endpoint")
	}
	if factory.grpcCalls != 0 {
		t.Error("expected no exporter construction")
	}
}

func TestExport_ExporterConstructedOnce(t *testing.T) {
	factory := newSpyFactory()
	svc := newTestExportService(Config{HTTPEnabled: true, HTTPEndpoint: "collector:4318"}, factory)

	for i := 0; i < 3; i++ {
		if err := svc.Export(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if factory.httpCalls != 1 {
		t.Errorf("expected single exporter construction, got %d", factory.httpCalls)
	}
	if len(factory.exporter.exported) != 3 {
		t.Errorf("expected 3 export calls, got %d", len(factory.exporter.exported))
	}
}

func TestExport_ShipsSingleDisclosureRecord(t *testing.T) {
	factory := newSpyFactory()
	svc := newTestExportService(Config{HTTPEnabled: true, HTTPEndpoint: "collector:4318"}, factory)

	if err := svc.Export(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	batches := factory.exporter.exported
	if len(batches) != 1 || len(batches[0]) != 1 {
		t.Fatalf("expected one batch with one record, got %v", batches)
	}
	rec := batches[0][0]
	if rec.Body().AsString() != "Selbstauskunft" {
		t.Errorf("expected fixed body, got %q", rec.Body().AsString())
	}
	if rec.Timestamp().IsZero() {
		t.Error("expected timestamp set")
	}
}

func TestExport_ConstructionFailureRetriesNextCycle(t *testing.T) {
	factory := newSpyFactory()
	factory.constructErr = errors.New("dial failed")
	svc := newTestExportService(Config{GRPCEnabled: true, GRPCEndpoint: "collector:4317"}, factory)

	if err := svc.Export(context.Background()); err == nil {
		t.Fatal("expected construction error")
	}

	factory.constructErr = nil
	if err := svc.Export(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if factory.grpcCalls != 2 {
		t.Errorf("expected construction retried, got %d calls", factory.grpcCalls)
	}
}

func TestSelfDisclosure_IncludesPodName(t *testing.T) {
	t.Setenv("HOSTNAME", "pod-abc123")

	rec := NewSelfDisclosure(map[string]string{"env": "test"}).Record()

	found := map[string]string{}
	rec.WalkAttributes(func(kv log.KeyValue) bool {
		found[kv.Key] = kv.Value.AsString()
		return true
	})
	if found["pod_name"] != "pod-abc123" {
		t.Errorf("expected pod_name attribute, got %v", found)
	}
	if found["env"] != "test" {
		t.Errorf("expected configured attribute, got %v", found)
	}
}
