package timeline

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
)

// tempIDPrefix keeps client-generated identifiers out of the server ID
// space, so a pending echo can never collide with a confirmed message.
const tempIDPrefix = "tmp-"

// NewTempID generates a fresh identifier for one send attempt.
func NewTempID() string {
	return tempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id belongs to the client-generated namespace.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// PendingParams describes a message the user just sent.
type PendingParams struct {
	TempID         string
	ConversationID string
	Sender         models.Sender
	Content        string
	ContentType    models.ContentType
	ReplyToID      *string
	CreatedAt      time.Time // zero means now
}

type pendingEcho struct {
	raw models.RawMessage
}

// Outbox tracks every in-flight optimistic echo by its temporary
// identifier, so concurrent sends reconcile independently. It is the
// only stateful piece of the package and is safe for concurrent use.
type Outbox struct {
	mu      sync.Mutex
	pending map[string]*pendingEcho
}

func NewOutbox() *Outbox {
	return &Outbox{pending: make(map[string]*pendingEcho)}
}

// CreatePending synthesizes the local echo shown immediately on send:
// status SENDING, own message, starting (and ending) its own group as a
// just-appended tail. The returned RawMessage is what the caller
// inserts into its collection; the DisplayMessage is what it renders.
func (o *Outbox) CreatePending(p PendingParams) (models.RawMessage, DisplayMessage) {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if p.ContentType == "" {
		p.ContentType = models.ContentTypeText
	}

	raw := models.RawMessage{
		ID:             p.TempID,
		ConversationID: p.ConversationID,
		Sender:         p.Sender,
		ContentType:    p.ContentType,
		Content:        p.Content,
		CreatedAt:      createdAt,
		Status:         models.StatusSending,
		ReplyToID:      p.ReplyToID,
		ClientGenID:    p.TempID,
	}

	o.mu.Lock()
	o.pending[p.TempID] = &pendingEcho{raw: raw}
	o.mu.Unlock()

	return raw, o.display(raw)
}

// Reconcile replaces a pending echo with its server-confirmed record.
// Only identifier, timestamp and status change on the display record;
// the caller splices the returned RawMessage into the echo's existing
// slot so the list never reorders. Unknown temp IDs are a no-op: the
// round trip outlived the conversation view.
func (o *Outbox) Reconcile(tempID string, server models.RawMessage) (models.RawMessage, DisplayMessage, bool) {
	o.mu.Lock()
	echo, ok := o.pending[tempID]
	if ok {
		delete(o.pending, tempID)
	}
	o.mu.Unlock()
	if !ok {
		return models.RawMessage{}, DisplayMessage{}, false
	}

	raw := server
	if raw.ClientGenID == "" {
		raw.ClientGenID = tempID
	}
	if !raw.Status.Valid() || raw.Status == models.StatusSending {
		raw.Status = models.StatusSent
	}

	display := o.display(echo.raw)
	display.ID = raw.ID
	display.CreatedAt = raw.CreatedAt
	display.Time = FormatTime(raw.CreatedAt)
	display.Status = raw.Status
	display.IsFailed = false

	return raw, display, true
}

// MarkFailed flags a pending echo after a transport error. The echo
// stays tracked so the caller can offer retry or deletion.
func (o *Outbox) MarkFailed(tempID string) (models.RawMessage, DisplayMessage, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	echo, ok := o.pending[tempID]
	if !ok {
		return models.RawMessage{}, DisplayMessage{}, false
	}
	echo.raw.Status = models.StatusFailed
	return echo.raw, o.display(echo.raw), true
}

// Retry flips a failed echo back to SENDING for another attempt under
// the same temporary identifier. Triggering the attempt is the
// caller's job.
func (o *Outbox) Retry(tempID string) (models.RawMessage, DisplayMessage, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	echo, ok := o.pending[tempID]
	if !ok {
		return models.RawMessage{}, DisplayMessage{}, false
	}
	echo.raw.Status = models.StatusSending
	return echo.raw, o.display(echo.raw), true
}

// Remove forgets a pending echo, e.g. when the user deletes a failed
// message instead of retrying.
func (o *Outbox) Remove(tempID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	_, ok := o.pending[tempID]
	delete(o.pending, tempID)
	return ok
}

// Len reports the number of in-flight echoes.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// display renders an echo with tail defaults: its own sender is the
// current user, so it starts and ends its own group with no chrome.
func (o *Outbox) display(raw models.RawMessage) DisplayMessage {
	return MapMessage(raw, nil, nil, ConversationContext{
		CurrentUserID: raw.Sender.ID,
	})
}
