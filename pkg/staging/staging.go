// Package staging implements the ephemeral upload-staging map (§4 "File
// upload pipeline"): a file submitted to POST /upload is held here,
// keyed by an opaque token, until a deliberation request names that
// token in attachment_ids and promotes it onto a node.
package staging

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/made-ai/made/pkg/apierrors"
	"github.com/made-ai/made/pkg/models"
)

// Entry is one staged upload.
type Entry struct {
	Token     string
	UserID    string
	Filename  string
	MimeType  string
	FileType  models.FileType
	Data      []byte
	Size      int64
	StagedAt  time.Time
	expiresAt time.Time
}

// Map is a concurrency-safe, TTL-bounded store of staged uploads (§9
// open question "Staging map lifetime", resolved with a TTL and size
// cap rather than an unbounded map). It holds no database connection:
// entries are purely in-process and lost on restart, which is
// acceptable since they are meant to be consumed within minutes of
// upload.
type Map struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int64
	entries map[string]Entry
}

// New builds a Map that rejects uploads over maxSize bytes and expires
// entries ttl after they are staged.
func New(ttl time.Duration, maxSize int64) *Map {
	return &Map{
		ttl:     ttl,
		maxSize: maxSize,
		entries: make(map[string]Entry),
	}
}

// Put stages data under a freshly generated token, owned by userID.
// Returns apierrors.ErrAttachmentTooLarge if data exceeds the
// configured size cap.
func (m *Map) Put(userID, filename, mimeType string, fileType models.FileType, data []byte) (Entry, error) {
	if int64(len(data)) > m.maxSize {
		return Entry{}, apierrors.ErrAttachmentTooLarge
	}

	now := time.Now()
	e := Entry{
		Token:     uuid.New().String(),
		UserID:    userID,
		Filename:  filename,
		MimeType:  mimeType,
		FileType:  fileType,
		Data:      data,
		Size:      int64(len(data)),
		StagedAt:  now,
		expiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	m.entries[e.Token] = e
	m.mu.Unlock()
	return e, nil
}

// Take consumes and removes the staged entry for token, regardless of
// who asks — ownership is the caller's responsibility (§4 "attachment
// promotion... silent skip on owner mismatch" means the API layer
// checks UserID itself and simply ignores entries it doesn't own,
// rather than Take enforcing it). Returns apierrors.ErrAttachmentExpired
// if the token is unknown or has expired; expired entries are purged
// lazily on access.
func (m *Map) Take(token string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[token]
	if !ok {
		return Entry{}, apierrors.ErrAttachmentExpired
	}
	delete(m.entries, token)
	if time.Now().After(e.expiresAt) {
		return Entry{}, apierrors.ErrAttachmentExpired
	}
	return e, nil
}

// PurgeExpired drops every entry whose TTL has elapsed, returning the
// count removed. Called periodically by the cleanup service alongside
// conversation retention (§4 "Retention & cleanup").
func (m *Map) PurgeExpired() int {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for token, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, token)
			removed++
		}
	}
	return removed
}

// Len reports the number of currently staged entries, for metrics/tests.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
