package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"roleserve/internal/common"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.ModelPath != common.DefaultModelPath {
		t.Errorf("ModelPath = %q, expected %q", s.ModelPath, common.DefaultModelPath)
	}
	if s.FallbackThreshold != common.DefaultFallbackThreshold {
		t.Errorf("FallbackThreshold = %f", s.FallbackThreshold)
	}
	if s.DriftThreshold != common.DefaultDriftThreshold {
		t.Errorf("DriftThreshold = %f", s.DriftThreshold)
	}
	if s.WindowSize != common.DefaultWindowSize {
		t.Errorf("WindowSize = %d", s.WindowSize)
	}
	if s.ListenPort != common.DefaultListenPort {
		t.Errorf("ListenPort = %d", s.ListenPort)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(common.EnvModelPath, "models/custom.json")
	t.Setenv(common.EnvFallbackThreshold, "0.75")
	t.Setenv(common.EnvDriftThreshold, "0.4")
	t.Setenv(common.EnvWindowSize, "25")
	t.Setenv(common.EnvListenPort, "9100")
	t.Setenv(common.EnvDataPath, "/tmp/roleserve")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.ModelPath != "models/custom.json" {
		t.Errorf("ModelPath = %q", s.ModelPath)
	}
	if s.FallbackThreshold != 0.75 {
		t.Errorf("FallbackThreshold = %f", s.FallbackThreshold)
	}
	if s.DriftThreshold != 0.4 {
		t.Errorf("DriftThreshold = %f", s.DriftThreshold)
	}
	if s.WindowSize != 25 {
		t.Errorf("WindowSize = %d", s.WindowSize)
	}
	if s.ListenPort != 9100 {
		t.Errorf("ListenPort = %d", s.ListenPort)
	}
	if s.DataPath != "/tmp/roleserve" {
		t.Errorf("DataPath = %q", s.DataPath)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	yaml := `
model:
  path: models/from_yaml.json
  fallbackThreshold: 0.7
monitoring:
  driftThreshold: 0.45
  windowSize: 30
  snapshotInterval: 1s
system:
  listenPort: 9200
  requestTimeout: 15s
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(common.EnvConfigFile, path)

	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.ModelPath != "models/from_yaml.json" {
		t.Errorf("ModelPath = %q", s.ModelPath)
	}
	if s.FallbackThreshold != 0.7 {
		t.Errorf("FallbackThreshold = %f", s.FallbackThreshold)
	}
	if s.WindowSize != 30 {
		t.Errorf("WindowSize = %d", s.WindowSize)
	}
	if s.ListenPort != 9200 {
		t.Errorf("ListenPort = %d", s.ListenPort)
	}
	if s.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v", s.RequestTimeout)
	}
	if s.SnapshotInterval != time.Second {
		t.Errorf("SnapshotInterval = %v", s.SnapshotInterval)
	}
}

func TestLoad_EnvBeatsYAML(t *testing.T) {
	yaml := "model:\n  path: models/from_yaml.json\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(common.EnvConfigFile, path)
	t.Setenv(common.EnvModelPath, "models/from_env.json")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.ModelPath != "models/from_env.json" {
		t.Errorf("ModelPath = %q, expected env override", s.ModelPath)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv(common.EnvConfigFile, "/nonexistent/config.yaml")
	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidateSettings(t *testing.T) {
	valid := func() Settings {
		return Settings{
			ModelPath:         "models/role_model.json",
			FallbackThreshold: 0.6,
			DriftThreshold:    0.5,
			WindowSize:        50,
			ListenPort:        8000,
			RequestTimeout:    10 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			SnapshotInterval:  2 * time.Second,
		}
	}

	testCases := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"valid", func(s *Settings) {}, false},
		{"empty model path", func(s *Settings) { s.ModelPath = "" }, true},
		{"fallback threshold too high", func(s *Settings) { s.FallbackThreshold = 1.5 }, true},
		{"fallback threshold negative", func(s *Settings) { s.FallbackThreshold = -0.1 }, true},
		{"drift threshold too high", func(s *Settings) { s.DriftThreshold = 2.0 }, true},
		{"zero window", func(s *Settings) { s.WindowSize = 0 }, true},
		{"negative window", func(s *Settings) { s.WindowSize = -5 }, true},
		{"oversized window", func(s *Settings) { s.WindowSize = common.MaxWindowSize + 1 }, true},
		{"privileged port", func(s *Settings) { s.ListenPort = 80 }, true},
		{"request timeout too short", func(s *Settings) { s.RequestTimeout = time.Millisecond }, true},
		{"boundary thresholds", func(s *Settings) { s.FallbackThreshold = 0; s.DriftThreshold = 1 }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := valid()
			tc.mutate(&s)
			err := validateSettings(&s)
			if tc.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
