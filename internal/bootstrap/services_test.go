package bootstrap

import (
	"log/slog"
	"sort"
	"testing"

	"github.com/caarlos0/env/v11"

	"github.com/ekefan/afitlms/config"
)

func TestValidateServiceConfig(t *testing.T) {
	tests := []struct {
		name     string
		services string
		wantErr  bool
	}{
		{
			name:     "defaults",
			services: "http,janitor,roster-sync",
		},
		{
			name:     "single service",
			services: "http",
		},
		{
			name:     "unknown service",
			services: "http,mailer",
			wantErr:  true,
		},
		{
			name:     "empty list",
			services: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.AppConfig{Services: tt.services}
			err := ValidateServiceConfig(&cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateServiceConfig(%q) error = %v, wantErr %v", tt.services, err, tt.wantErr)
			}
		})
	}

	if err := ValidateServiceConfig(nil); err == nil {
		t.Fatal("ValidateServiceConfig(nil) should fail")
	}
}

func TestGetEnabledServices(t *testing.T) {
	cfg := config.AppConfig{Services: "janitor, http"}
	got := GetEnabledServices(&cfg)
	sort.Strings(got)

	want := []string{"http", "janitor"}
	if len(got) != len(want) {
		t.Fatalf("GetEnabledServices = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("GetEnabledServices = %v, want %v", got, want)
		}
	}

	if names := GetEnabledServices(nil); len(names) != 0 {
		t.Fatalf("GetEnabledServices(nil) = %v, want empty", names)
	}
}

func TestNewServices(t *testing.T) {
	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config defaults: %v", err)
	}
	cfg.Services = "http,janitor,roster-sync"
	cfg.Sanitize()

	services, err := NewServices(&ServiceDeps{
		Config: &cfg,
		Logger: slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("NewServices failed: %v", err)
	}
	defer services.Enrollment.Close()

	if services.Enrollment == nil || services.Janitor == nil || services.Roster == nil {
		t.Fatal("NewServices returned a partial container")
	}
	if services.Metrics == nil {
		t.Fatal("NewServices should always build a metrics sink, even when disabled")
	}
}

func TestNewServicesRequiresConfig(t *testing.T) {
	if _, err := NewServices(nil); err == nil {
		t.Fatal("NewServices(nil) should fail")
	}
	if _, err := NewServices(&ServiceDeps{}); err == nil {
		t.Fatal("NewServices without config should fail")
	}
}
