package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestCatalogCommandRendersEmbeddedSample(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"catalog"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("catalog: %v", err)
	}

	for _, want := range []string{"goes-east", "goes-west", "himawari-9", "candidates", "listing"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("catalog output missing %q:\n%s", want, out.String())
		}
	}
}

func TestLoggerRejectsUnknownLevel(t *testing.T) {
	opts := &rootOptions{logLevel: "loud"}
	if _, err := opts.logger(); err == nil {
		t.Error("expected error for unknown log level")
	}

	opts.logLevel = "DEBUG"
	if _, err := opts.logger(); err != nil {
		t.Errorf("level matching should be case-insensitive: %v", err)
	}
}
