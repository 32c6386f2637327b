package repository

import (
	"sync"
	"time"

	"github.com/dskvich/chatgpt-websocket-bot/pkg/domain"
)

type attachmentEntry struct {
	attachment domain.Attachment
	storedAt   time.Time
}

// attachmentRepository holds at most one pending attachment per session,
// awaiting consumption by that session's next chat turn. A new upload
// silently overwrites an unconsumed previous one. Entries older than ttl
// are treated as absent and swept periodically.
type attachmentRepository struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]attachmentEntry
}

func NewAttachmentRepository(ttl time.Duration) *attachmentRepository {
	return &attachmentRepository{
		ttl:     ttl,
		entries: make(map[string]attachmentEntry),
	}
}

func (a *attachmentRepository) Put(sessionID string, attachment domain.Attachment) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.entries[sessionID] = attachmentEntry{
		attachment: attachment,
		storedAt:   time.Now(),
	}
}

// Take atomically reads and removes the pending attachment for the session.
func (a *attachmentRepository) Take(sessionID string) (domain.Attachment, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry, ok := a.entries[sessionID]
	if !ok {
		return domain.Attachment{}, false
	}
	delete(a.entries, sessionID)

	if a.isExpired(entry) {
		return domain.Attachment{}, false
	}
	return entry.attachment, true
}

// Sweep removes expired entries and reports how many were dropped.
func (a *attachmentRepository) Sweep() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	var dropped int
	for sessionID, entry := range a.entries {
		if a.isExpired(entry) {
			delete(a.entries, sessionID)
			dropped++
		}
	}
	return dropped
}

func (a *attachmentRepository) isExpired(entry attachmentEntry) bool {
	if a.ttl <= 0 {
		return false
	}
	return time.Since(entry.storedAt) > a.ttl
}
