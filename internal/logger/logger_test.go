package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/univalle-bu/bu-client/internal/config"
)

func TestInitWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := initWithWriter(&config.Config{AppName: "bu-client", LogLevel: "info"}, &buf)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	log.DebugObj("hidden", "k", 1)
	log.InfoObj("client ready", "client_meta", map[string]any{"base_url": "http://localhost:8080"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line at info level, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "client ready" {
		t.Fatalf("unexpected msg %v", entry["msg"])
	}
	if entry["app"] != "bu-client" {
		t.Fatalf("expected app field, got %v", entry["app"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts field in %v", entry)
	}
	meta, ok := entry["client_meta"].(map[string]any)
	if !ok || meta["base_url"] != "http://localhost:8080" {
		t.Fatalf("unexpected client_meta %v", entry["client_meta"])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"debug":   "debug",
		"WARNING": "warn",
		"error":   "error",
		"bogus":   "info",
		"":        "info",
	}
	for in, want := range cases {
		if got := parseLevel(in).String(); got != want {
			t.Fatalf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestPackageHelpersAreSafeBeforeInit(t *testing.T) {
	S = nil
	InfoObj("ignored", "k", 1)
	ErrorObj("ignored", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close before init: %v", err)
	}
}
