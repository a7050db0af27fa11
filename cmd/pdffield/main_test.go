package main

import (
	"bytes"
	"io"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/aditus-hr/pdffield/internal/config"
)

func capturePrintVersion(t *testing.T) string {
	t.Helper()

	originalStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = originalStdout }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		printVersion()
		w.Close()
	}()

	var buf bytes.Buffer
	io.Copy(&buf, r)
	<-done

	return buf.String()
}

func TestPrintVersion(t *testing.T) {
	oldVersion := version
	oldBuildTime := buildTime
	oldGitCommit := gitCommit
	version = "1.2.3"
	buildTime = "2026-08-01_10:30:00"
	gitCommit = "abc123"
	defer func() {
		version = oldVersion
		buildTime = oldBuildTime
		gitCommit = oldGitCommit
	}()

	output := capturePrintVersion(t)

	expectedStrings := []string{
		"pdffield",
		"Version: 1.2.3",
		"Build Time: 2026-08-01_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("printVersion() output missing expected string: %s\nActual output:\n%s", expected, output)
		}
	}
}

func TestPrintVersionWithDefaults(t *testing.T) {
	output := capturePrintVersion(t)

	if !strings.Contains(output, "Version: "+version) {
		t.Errorf("printVersion() output missing default version\nActual output:\n%s", output)
	}
}

func TestSetupLogging_BatchMode(t *testing.T) {
	originalFlags := log.Flags()
	originalOutput := log.Writer()
	defer func() {
		log.SetFlags(originalFlags)
		log.SetOutput(originalOutput)
	}()

	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeBatch
	setupLogging(cfg)

	if log.Flags()&log.Lshortfile == 0 {
		t.Error("Expected file/line log flags outside stdio mode")
	}
}

func TestSetupLogging_StdioMode(t *testing.T) {
	originalFlags := log.Flags()
	originalOutput := log.Writer()
	defer func() {
		log.SetFlags(originalFlags)
		log.SetOutput(originalOutput)
	}()

	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeStdio
	cfg.LogLevel = "debug"
	setupLogging(cfg)

	if log.Writer() != os.Stderr {
		t.Error("Expected stdio debug logging to go to stderr")
	}

	// Without debug, stdio mode discards log output entirely
	cfg.LogLevel = "info"
	setupLogging(cfg)
	if log.Writer() == os.Stderr {
		t.Error("Expected stdio non-debug logging to be discarded")
	}
}
