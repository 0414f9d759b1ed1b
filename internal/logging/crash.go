package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"sync"
	"time"
)

// CrashReport describes why the process stopped.
type CrashReport struct {
	Timestamp  time.Time         `json:"timestamp"`
	Version    string            `json:"version"`
	GOOS       string            `json:"goos"`
	GOARCH     string            `json:"goarch"`
	Component  string            `json:"component,omitempty"`
	Kind       string            `json:"kind"`
	Message    string            `json:"message"`
	StackTrace string            `json:"stack_trace,omitempty"`
	Context    map[string]string `json:"context,omitempty"`
}

// Crash kinds.
const (
	KindPanic = "panic"
	KindFatal = "fatal"
)

// CrashHandlerConfig configures the crash handler.
type CrashHandlerConfig struct {
	// CrashDir is the directory to write crash reports to.
	CrashDir string

	// Version is the application version.
	Version string

	// Component is the component name.
	Component string

	// OnCrash is called after a report is written.
	OnCrash func(CrashReport)
}

// CrashHandler writes crash reports for panics and fatal errors.
type CrashHandler struct {
	mu        sync.Mutex
	crashDir  string
	version   string
	component string
	onCrash   func(CrashReport)
}

// DefaultCrashDir returns the platform-specific default crash directory.
func DefaultCrashDir() string {
	switch runtime.GOOS {
	case "darwin":
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "Library", "Logs", "DiagnosticReports", AppName)
	case "windows":
		return filepath.Join(localAppData(), AppName, "crashes")
	default:
		return filepath.Join(xdgStateHome(), AppName, "crashes")
	}
}

// NewCrashHandler creates a new CrashHandler.
func NewCrashHandler(cfg *CrashHandlerConfig) *CrashHandler {
	if cfg == nil {
		cfg = &CrashHandlerConfig{}
	}
	if cfg.CrashDir == "" {
		cfg.CrashDir = DefaultCrashDir()
	}
	if cfg.Component == "" {
		cfg.Component = AppName
	}
	return &CrashHandler{
		crashDir:  cfg.CrashDir,
		version:   cfg.Version,
		component: cfg.Component,
		onCrash:   cfg.OnCrash,
	}
}

// Recover is meant to be deferred at the top of main and of goroutines.
// It records the panic and re-panics so the process still dies.
func (h *CrashHandler) Recover() {
	if r := recover(); r != nil {
		h.report(KindPanic, fmt.Sprint(r), string(debug.Stack()), nil)
		panic(r)
	}
}

// HandleFatal records err as the reason the process is about to exit and
// returns the path of the report, or "" if it could not be written.
func (h *CrashHandler) HandleFatal(err error, context map[string]string) string {
	return h.report(KindFatal, err.Error(), "", context)
}

func (h *CrashHandler) report(kind, msg, stack string, context map[string]string) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	report := CrashReport{
		Timestamp:  time.Now().UTC(),
		Version:    h.version,
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
		Component:  h.component,
		Kind:       kind,
		Message:    msg,
		StackTrace: stack,
		Context:    context,
	}

	path, err := h.write(report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "write crash report: %v\n", err)
	}

	if h.onCrash != nil {
		h.onCrash(report)
	}
	return path
}

func (h *CrashHandler) write(report CrashReport) (string, error) {
	if err := os.MkdirAll(h.crashDir, 0750); err != nil {
		return "", fmt.Errorf("create crash directory: %w", err)
	}

	name := fmt.Sprintf("crash-%s-%s.json", report.Component, report.Timestamp.Format("20060102-150405.000"))
	path := filepath.Join(h.crashDir, name)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal crash report: %w", err)
	}
	if err := os.WriteFile(path, data, 0640); err != nil {
		return "", fmt.Errorf("write crash report: %w", err)
	}
	return path, nil
}

// Reports returns stored crash reports, oldest first.
func (h *CrashHandler) Reports() ([]CrashReport, error) {
	files, err := filepath.Glob(filepath.Join(h.crashDir, "crash-*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	reports := make([]CrashReport, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		var report CrashReport
		if err := json.Unmarshal(data, &report); err != nil {
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// CleanupOld removes crash reports older than maxAge.
func (h *CrashHandler) CleanupOld(maxAge time.Duration) error {
	files, err := filepath.Glob(filepath.Join(h.crashDir, "crash-*.json"))
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-maxAge)
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(file)
		}
	}
	return nil
}
