package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitWritesFile(t *testing.T) {
	restore := Replace(zap.NewNop())
	defer restore()

	path := filepath.Join(t.TempDir(), "nested", "console.log")
	if err := Init(Options{Level: "info", ToFile: true, File: path, Format: "json"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	L().Info("session_open", zap.String("session", "abc"))
	_ = L().Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), `"msg":"session_open"`) || !strings.Contains(string(raw), `"session":"abc"`) {
		t.Fatalf("log line = %s", raw)
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_TO_FILE", "TRUE")
	t.Setenv("LOG_FILE", "")
	t.Setenv("LOG_FORMAT", "console")
	o := OptionsFromEnv()
	if o.Level != "debug" || !o.ToFile || o.Format != "console" {
		t.Fatalf("options = %+v", o)
	}
	if o.File != filepath.Join("logs", "console.log") {
		t.Fatalf("default file = %q", o.File)
	}
}
