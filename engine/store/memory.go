// Package store provides in-memory implementations of the engine's
// storage and mail collaborators, for tests and development.
package store

import (
	"context"
	"sync"

	"github.com/linguedo/strike-engine/engine"
)

// =============================================================================
// MEMORY TABULAR STORE
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	tables map[string][]engine.Row
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[string][]engine.Row)}
}

func (m *Memory) ReadRows(_ context.Context, table string) ([]engine.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := make([]engine.Row, len(m.tables[table]))
	copy(rows, m.tables[table])
	return rows, nil
}

func (m *Memory) AppendRows(_ context.Context, table string, rows []engine.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = append(m.tables[table], rows...)
	return nil
}

func (m *Memory) WriteRows(_ context.Context, table string, rows []engine.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = append([]engine.Row{}, rows...)
	return nil
}

// =============================================================================
// MEMORY PARAMETER STORE
// =============================================================================

type MemoryParams struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryParams() *MemoryParams {
	return &MemoryParams{values: make(map[string]string)}
}

func (p *MemoryParams) Get(_ context.Context, name string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.values[name], nil
}

func (p *MemoryParams) Set(_ context.Context, name, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[name] = value
	return nil
}

// =============================================================================
// MEMORY MAILER - Records sends, enforces a fixed quota
// =============================================================================

type SentMail struct {
	To      string
	Subject string
	Body    string
}

type MemoryMailer struct {
	mu    sync.Mutex
	Quota int
	Sent  []SentMail
}

func NewMemoryMailer(quota int) *MemoryMailer {
	return &MemoryMailer{Quota: quota}
}

func (m *MemoryMailer) RemainingQuota(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Quota, nil
}

func (m *MemoryMailer) Send(_ context.Context, to, subject, body string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Quota < 1 {
		return false, nil
	}
	m.Quota--
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: body})
	return true, nil
}

// =============================================================================
// MEMORY TEMPLATE SOURCE
// =============================================================================

type MemoryTemplates struct {
	Templates map[string]string
}

func (t *MemoryTemplates) Template(_ context.Context, id string) (string, error) {
	return t.Templates[id], nil
}
