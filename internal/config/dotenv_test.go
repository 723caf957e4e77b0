package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
		want    string
	}{
		{"missing file", filepath.Join(dir, "absent.env"), false, ""},
		{"valid file", write("ok.env", "ADAPTIVE_GUESS_DOTENV_TEST=from-file\n"), false, "from-file"},
		{"malformed file", write("bad.env", "BAD-KEY=1\n"), true, ""},
		{"directory", dir, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ADAPTIVE_GUESS_DOTENV_TEST", "")
			os.Unsetenv("ADAPTIVE_GUESS_DOTENV_TEST")
			err := LoadDotenv(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadDotenv(%s) err = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got := os.Getenv("ADAPTIVE_GUESS_DOTENV_TEST"); got != tt.want {
				t.Errorf("env = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadDotenv_KeepsExistingEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.env")
	if err := os.WriteFile(path, []byte("ADAPTIVE_GUESS_DOTENV_TEST=from-file\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("ADAPTIVE_GUESS_DOTENV_TEST", "from-env")
	if err := LoadDotenv(path); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}
	if got := os.Getenv("ADAPTIVE_GUESS_DOTENV_TEST"); got != "from-env" {
		t.Errorf("got %q, want from-env", got)
	}
}
