package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.OTLPLogsIntervalSec != 60 {
		t.Errorf("expected default interval 60, got %d", cfg.OTLPLogsIntervalSec)
	}
	if cfg.OTLPLogsGRPCEnabled || cfg.OTLPLogsHTTPEnabled {
		t.Error("expected telemetry transports disabled by default")
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestLoad_RejectsNonPositiveInterval(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("OTLP_LOGS_INTERVAL_SECONDS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero interval")
	}
}

func TestNormalizedContextPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"dienst", "/dienst"},
		{"/dienst", "/dienst"},
		{"/dienst/", "/dienst"},
		{"  /dienst  ", "/dienst"},
	}
	for _, tt := range tests {
		cfg := &Config{ContextPath: tt.in}
		if got := cfg.NormalizedContextPath(); got != tt.want {
			t.Errorf("NormalizedContextPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSelfDisclosureAttributes(t *testing.T) {
	cfg := &Config{SelfDisclosureAttrs: "service=testfachdienst, env = dev,broken,=novalue"}

	attrs := cfg.SelfDisclosureAttributes()
	if attrs["service"] != "testfachdienst" {
		t.Errorf("expected service attribute, got %v", attrs)
	}
	if attrs["env"] != "dev" {
		t.Errorf("expected trimmed env attribute, got %v", attrs)
	}
	if _, ok := attrs["broken"]; ok {
		t.Error("expected entries without '=' skipped")
	}
}
