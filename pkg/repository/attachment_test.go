package repository

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/chatgpt-websocket-bot/pkg/domain"
)

func TestAttachmentRepository_PutTake(t *testing.T) {
	repo := NewAttachmentRepository(0)
	attachment := domain.Attachment{Kind: domain.AttachmentKindImage, Content: "data:image/png;base64,AAAA"}

	repo.Put("session-1", attachment)

	got, ok := repo.Take("session-1")
	require.True(t, ok)
	assert.Equal(t, attachment, got)

	_, ok = repo.Take("session-1")
	assert.False(t, ok, "second take must report absent")
}

func TestAttachmentRepository_TakeAbsent(t *testing.T) {
	repo := NewAttachmentRepository(0)

	_, ok := repo.Take("unknown")

	assert.False(t, ok)
}

func TestAttachmentRepository_PutOverwrites(t *testing.T) {
	repo := NewAttachmentRepository(0)

	repo.Put("session-1", domain.Attachment{Kind: domain.AttachmentKindImage, Content: "first"})
	repo.Put("session-1", domain.Attachment{Kind: domain.AttachmentKindDocument, Content: "second"})

	got, ok := repo.Take("session-1")
	require.True(t, ok)
	assert.Equal(t, "second", got.Content)
}

func TestAttachmentRepository_ExpiredEntryIsAbsent(t *testing.T) {
	repo := NewAttachmentRepository(time.Millisecond)

	repo.Put("session-1", domain.Attachment{Content: "stale"})
	time.Sleep(5 * time.Millisecond)

	_, ok := repo.Take("session-1")
	assert.False(t, ok)
}

func TestAttachmentRepository_Sweep(t *testing.T) {
	repo := NewAttachmentRepository(time.Millisecond)

	repo.Put("session-1", domain.Attachment{Content: "stale"})
	repo.Put("session-2", domain.Attachment{Content: "stale"})
	time.Sleep(5 * time.Millisecond)
	repo.Put("session-3", domain.Attachment{Content: "fresh"})

	dropped := repo.Sweep()

	assert.Equal(t, 2, dropped)
	_, ok := repo.Take("session-3")
	assert.True(t, ok)
}

func TestAttachmentRepository_ConcurrentSessions(t *testing.T) {
	repo := NewAttachmentRepository(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessionID := fmt.Sprintf("session-%d", i)
			content := fmt.Sprintf("payload-%d", i)

			repo.Put(sessionID, domain.Attachment{Content: content})
			got, ok := repo.Take(sessionID)
			assert.True(t, ok)
			assert.Equal(t, content, got.Content)
		}(i)
	}
	wg.Wait()
}
