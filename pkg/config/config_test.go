package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type sample struct {
	Name  string   `yaml:"name" toml:"name" json:"name"`
	Port  int      `yaml:"port" toml:"port" json:"port"`
	Tags  []string `yaml:"tags" toml:"tags" json:"tags"`
	Inner struct {
		Path string `yaml:"path" toml:"path" json:"path"`
	} `yaml:"inner" toml:"inner" json:"inner"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFormats(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "blog")

	want := sample{Name: "blog", Port: 8080, Tags: []string{"a", "b"}}
	want.Inner.Path = "./content"

	tests := []struct {
		file string
		body string
	}{
		{"c.yaml", "name: ${SAMPLE_NAME}\nport: 8080\ntags: [a, b]\ninner:\n  path: ./content\n"},
		{"c.toml", "name = \"${SAMPLE_NAME}\"\nport = 8080\ntags = [\"a\", \"b\"]\n[inner]\npath = \"./content\"\n"},
		{"c.jsonc", "{\n  // site name\n  \"name\": \"${SAMPLE_NAME}\",\n  \"port\": 8080,\n  \"tags\": [\"a\", \"b\",],\n  \"inner\": {\"path\": \"./content\"},\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			var got sample
			if err := Load(writeFile(t, tt.file, tt.body), &got); err != nil {
				t.Fatalf("Load: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	got := sample{Name: "default", Port: 1}
	if err := Load(writeFile(t, "c.yml", "port: 9000\n"), &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "default" || got.Port != 9000 {
		t.Fatalf("got %+v", got)
	}
}

func TestLoadValidates(t *testing.T) {
	var got sample
	err := Load(writeFile(t, "c.yaml", "port: 0\n"), &got)
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadErrors(t *testing.T) {
	var got sample
	if err := Load(filepath.Join(t.TempDir(), "missing.yaml"), &got); err == nil {
		t.Error("expected error for missing file")
	}
	if err := Load(writeFile(t, "c.ini", "port=1"), &got); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
	if err := Load(writeFile(t, "c.json", "{port: "), &got); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	fallback := writeFile(t, "default.yaml", "port: 7000\n")
	var got sample
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"), fallback, &got); err != nil {
		t.Fatal(err)
	}
	if got.Port != 7000 {
		t.Fatalf("port = %d, want 7000", got.Port)
	}
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"), "", &got); err == nil {
		t.Fatal("expected error without fallback")
	}
}
