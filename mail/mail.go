// Package mail provides the default Mailer and TemplateSource wiring.
//
// The engine only decides WHO gets notified and in what order; delivery is
// a collaborator behind the Mailer interface. LogMailer is the development
// delivery channel: it logs each digest and burns a configurable quota, so
// the quota-exhaustion path behaves exactly as a real provider's would.
package mail

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// LogMailer logs outgoing digests instead of delivering them, enforcing a
// fixed per-process quota.
type LogMailer struct {
	mu    sync.Mutex
	quota int
}

func NewLogMailer(quota int) *LogMailer {
	return &LogMailer{quota: quota}
}

func (m *LogMailer) RemainingQuota(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quota, nil
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quota < 1 {
		return false, nil
	}
	m.quota--
	log.Printf("[Mail] to=%s subject=%q bytes=%d remaining=%d", to, subject, len(body), m.quota)
	return true, nil
}

// FileTemplates resolves template identifiers to files under Dir.
type FileTemplates struct {
	Dir string
}

func (t *FileTemplates) Template(_ context.Context, id string) (string, error) {
	data, err := os.ReadFile(filepath.Join(t.Dir, id))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
