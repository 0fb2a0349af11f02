package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"portfolio/internal/config"
)

func TestNewWithWriter_ProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(config.AppConfig{Env: config.EnvProduction}, &buf).Info("hello", "k", "v")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("not json: %q", buf.String())
	}
	if line["msg"] != "hello" || line["k"] != "v" {
		t.Fatalf("line = %v", line)
	}
}

func TestNewWithWriter_DevelopmentIsText(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(config.AppConfig{Env: config.EnvDevelopment}, &buf).Debug("hello")

	if !strings.Contains(buf.String(), "msg=hello") {
		t.Fatalf("output = %q", buf.String())
	}
}
