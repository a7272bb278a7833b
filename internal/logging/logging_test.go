package logging

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gosniff/internal/config"
)

func restoreLogger(t *testing.T) {
	t.Helper()
	out := log.Writer()
	t.Cleanup(func() {
		log.SetOutput(out)
		debugEnabled = false
	})
}

func TestSetupFileSink(t *testing.T) {
	restoreLogger(t)

	path := filepath.Join(t.TempDir(), "gosniff.log")
	closeFn, err := Setup(config.LoggingConfig{Level: "info", File: path})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	log.Printf("capture started on %s", "eth0")
	closeFn()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "capture started on eth0") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestSetupAppends(t *testing.T) {
	restoreLogger(t)

	path := filepath.Join(t.TempDir(), "gosniff.log")
	for i := 0; i < 2; i++ {
		closeFn, err := Setup(config.LoggingConfig{File: path})
		if err != nil {
			t.Fatalf("Setup: %v", err)
		}
		log.Println("session line")
		closeFn()
	}

	data, _ := os.ReadFile(path)
	if got := strings.Count(string(data), "session line"); got != 2 {
		t.Errorf("log file has %d entries, want 2 (reopen must append)", got)
	}
}

func TestDebugfGated(t *testing.T) {
	restoreLogger(t)

	path := filepath.Join(t.TempDir(), "gosniff.log")
	closeFn, err := Setup(config.LoggingConfig{Level: "info", File: path})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	Debugf("hidden %d", 1)
	closeFn()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") {
		t.Error("Debugf wrote at info level")
	}

	closeFn, err = Setup(config.LoggingConfig{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	Debugf("visible %d", 2)
	closeFn()

	data, _ = os.ReadFile(path)
	if !strings.Contains(string(data), "DEBUG visible 2") {
		t.Errorf("Debugf missing at debug level: %q", data)
	}
}

func TestSetupBadPath(t *testing.T) {
	restoreLogger(t)

	_, err := Setup(config.LoggingConfig{File: filepath.Join(t.TempDir(), "missing", "gosniff.log")})
	if err == nil {
		t.Fatal("expected error for unwritable log path")
	}
	if !strings.Contains(err.Error(), "failed to open log file") {
		t.Errorf("err = %v", err)
	}
}
