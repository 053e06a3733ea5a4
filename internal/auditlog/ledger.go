// Package auditlog keeps append-only activity ledgers for the attendance
// and content modules. Entries live in process memory for the lifetime of
// the server and are additionally emitted as structured log records.
package auditlog

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Role      string    `json:"role"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
}

// Ledger is an append-only, newest-first activity log. It is safe for
// concurrent use. Entries are never rotated or bounded; the ledger lives
// and dies with the process.
type Ledger struct {
	mu      sync.RWMutex
	scope   string
	entries []Entry
	logger  *zap.Logger
}

func NewLedger(scope string, logger ...*zap.Logger) *Ledger {
	l := zap.L().Named("audit." + scope)
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit." + scope)
	}
	return &Ledger{scope: scope, logger: l}
}

// Append records an entry at the head of the ledger and mirrors it to the
// structured log.
func (l *Ledger) Append(actor, role, action, detail string) Entry {
	e := Entry{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Actor:     actor,
		Role:      role,
		Action:    action,
		Detail:    detail,
	}

	l.mu.Lock()
	l.entries = append([]Entry{e}, l.entries...)
	l.mu.Unlock()

	l.logger.Info("audit event",
		zap.String("scope", l.scope),
		zap.String("actor", actor),
		zap.String("role", role),
		zap.String("action", action),
		zap.String("detail", detail),
	)
	return e
}

// Entries returns a snapshot, newest first.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
