package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// singleLine keeps every entry on one line.
var singleLine = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Auditor records a description of a completed mutating action.
type Auditor interface {
	Record(description string) error
}

// AuditFunc adapts a function to the Auditor interface.
type AuditFunc func(description string) error

func (f AuditFunc) Record(description string) error { return f(description) }

// AuditLog appends timestamped entries to a text file, one per line:
//
//	2006-01-02 15:04:05 | Added book B1 "Dune"
type AuditLog struct {
	mu  sync.Mutex
	f   *os.File
	now func() time.Time
}

// OpenAuditLog opens path for appending, creating it if needed.
func OpenAuditLog(path string) (*AuditLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &AuditLog{f: f, now: time.Now}, nil
}

func (a *AuditLog) Record(description string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	line := fmt.Sprintf("%s | %s\n", a.now().Format(time.DateTime), singleLine.Replace(description))
	if _, err := a.f.WriteString(line); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (a *AuditLog) Close() error { return a.f.Close() }
