package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI runs the CLI with a config file holding host: file.host and a
// temp journal, and returns the app state and stdout.
func runCLI(t *testing.T, env map[string]string, args ...string) (*app, string, error) {
	t.Helper()
	for _, k := range []string{
		"INDICO_HOST", "INDICO_PROTOCOL", "INDICO_API_TOKEN", "INDICO_API_TOKEN_PATH",
		"INDICO_TIMEOUT", "INDICO_UPLOAD_BATCH", "INDICO_UPLOAD_CONCURRENCY", "JOURNAL_URL",
	} {
		t.Setenv(k, env[k])
	}
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "indico.yaml")
	if err := os.WriteFile(cfgFile, []byte("host: file.host\nprotocol: http\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	a := &app{out: &out}
	root := newRootCmdFor(a)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", cfgFile, "--journal", "sqlite://" + filepath.Join(dir, "j.db")}, args...))
	err := root.Execute()
	return a, out.String(), err
}

func TestSettingPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		args     []string
		wantHost string
	}{
		{"config file", nil, nil, "file.host"},
		{"env beats file", map[string]string{"INDICO_HOST": "env.host"}, nil, "env.host"},
		{"flag beats env", map[string]string{"INDICO_HOST": "env.host"}, []string{"--host", "flag.host"}, "flag.host"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _, err := runCLI(t, tt.env, append(tt.args, "journal", "list")...)
			if err != nil {
				t.Fatalf("journal list: %v", err)
			}
			if a.cfg.Indico.Host != tt.wantHost {
				t.Errorf("host = %q, want %q", a.cfg.Indico.Host, tt.wantHost)
			}
			if a.cfg.Indico.Protocol != "http" {
				t.Errorf("protocol = %q, want the config file value", a.cfg.Indico.Protocol)
			}
		})
	}
}

func TestJournalCommandsNeedNoToken(t *testing.T) {
	_, out, err := runCLI(t, nil, "journal", "list")
	if err != nil {
		t.Fatalf("journal list without a token: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("output = %q, want an empty list", out)
	}
}

func TestPlatformCommandsNeedToken(t *testing.T) {
	_, _, err := runCLI(t, nil, "job", "j-1")
	if err == nil || !strings.Contains(err.Error(), "INDICO_API_TOKEN") {
		t.Fatalf("err = %v, want missing token", err)
	}
}
