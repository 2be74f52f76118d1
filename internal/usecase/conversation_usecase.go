package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/carousell/ct-go/pkg/logger/log_context"

	"github.com/nguyentranbao-ct/chat-timeline/internal/config"
	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
	"github.com/nguyentranbao-ct/chat-timeline/internal/repo/chatapi"
	"github.com/nguyentranbao-ct/chat-timeline/internal/repo/mongodb"
	"github.com/nguyentranbao-ct/chat-timeline/internal/timeline"
	"github.com/nguyentranbao-ct/chat-timeline/pkg/util"
)

const sendTimeout = 30 * time.Second

// session is the live state of one open conversation: the newest-first
// message snapshot plus the in-flight optimistic echoes. All structural
// mutations go through its mutex, one at a time.
type session struct {
	mu     sync.Mutex
	conv   models.Conversation
	msgs   []models.RawMessage
	outbox *timeline.Outbox
	closed bool
}

// ConversationUsecase owns the per-conversation message collections and
// drives the optimistic send lifecycle against the chat backend.
type ConversationUsecase struct {
	conf        *config.Config
	chatAPI     chatapi.Client
	messageRepo mongodb.MessageRepository
	convRepo    mongodb.ConversationRepository
	broadcaster Broadcaster

	mu       sync.Mutex
	sessions map[string]*session
}

func NewConversationUsecase(
	conf *config.Config,
	chatAPI chatapi.Client,
	messageRepo mongodb.MessageRepository,
	convRepo mongodb.ConversationRepository,
	broadcaster Broadcaster,
) *ConversationUsecase {
	return &ConversationUsecase{
		conf:        conf,
		chatAPI:     chatAPI,
		messageRepo: messageRepo,
		convRepo:    convRepo,
		broadcaster: broadcaster,
		sessions:    make(map[string]*session),
	}
}

// Timeline assembles the display sequence for a conversation as seen by
// one user.
func (uc *ConversationUsecase) Timeline(ctx context.Context, conversationID, userID string) ([]timeline.Item, error) {
	sess, err := uc.getSession(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	snapshot := make([]models.RawMessage, len(sess.msgs))
	copy(snapshot, sess.msgs)
	isGroup := sess.conv.IsGroup
	sess.mu.Unlock()

	tctx := timeline.ConversationContext{
		IsGroup:       isGroup,
		CurrentUserID: userID,
	}
	return timeline.BuildTimeline(snapshot, tctx, time.Now()), nil
}

// SendParams describes one user send action.
type SendParams struct {
	ConversationID string
	UserID         string
	Content        string
	ContentType    models.ContentType
	ReplyToID      *string
}

// Send creates the optimistic echo synchronously and fires the upstream
// round trip in the background. The returned DisplayMessage is what the
// client renders immediately; confirmation or failure arrives over the
// broadcaster.
func (uc *ConversationUsecase) Send(ctx context.Context, params SendParams) (timeline.DisplayMessage, error) {
	sess, err := uc.getSession(ctx, params.ConversationID)
	if err != nil {
		return timeline.DisplayMessage{}, err
	}

	sender := sess.senderFor(params.UserID)

	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return timeline.DisplayMessage{}, models.ErrConversationClosed
	}
	raw, display := sess.outbox.CreatePending(timeline.PendingParams{
		TempID:         timeline.NewTempID(),
		ConversationID: params.ConversationID,
		Sender:         sender,
		Content:        params.Content,
		ContentType:    params.ContentType,
		ReplyToID:      params.ReplyToID,
	})
	sess.msgs = append([]models.RawMessage{raw}, sess.msgs...)
	sess.mu.Unlock()

	go uc.deliver(ctx, sess, raw)

	return display, nil
}

// Retry re-enters a failed echo at SENDING under its existing temporary
// identifier and fires a fresh round trip.
func (uc *ConversationUsecase) Retry(ctx context.Context, conversationID, tempID string) (timeline.DisplayMessage, error) {
	if !timeline.IsTempID(tempID) {
		return timeline.DisplayMessage{}, models.ErrPendingNotFound
	}

	sess, err := uc.getSession(ctx, conversationID)
	if err != nil {
		return timeline.DisplayMessage{}, err
	}

	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return timeline.DisplayMessage{}, models.ErrConversationClosed
	}
	raw, display, ok := sess.outbox.Retry(tempID)
	if ok {
		sess.replaceInPlace(tempID, raw)
	}
	sess.mu.Unlock()
	if !ok {
		return timeline.DisplayMessage{}, models.ErrPendingNotFound
	}

	go uc.deliver(ctx, sess, raw)

	return display, nil
}

// DeletePending removes a failed echo the user chose to discard.
func (uc *ConversationUsecase) DeletePending(ctx context.Context, conversationID, tempID string) error {
	if !timeline.IsTempID(tempID) {
		return models.ErrPendingNotFound
	}

	sess, err := uc.getSession(ctx, conversationID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.outbox.Remove(tempID) {
		return models.ErrPendingNotFound
	}
	sess.removeByID(tempID)
	return nil
}

// MarkRead records that a user has read the conversation, upstream and
// locally.
func (uc *ConversationUsecase) MarkRead(ctx context.Context, conversationID, userID string) error {
	sess, err := uc.getSession(ctx, conversationID)
	if err != nil {
		return err
	}

	if err := uc.chatAPI.MarkRead(ctx, conversationID, userID); err != nil {
		return fmt.Errorf("mark read upstream: %w", err)
	}
	if err := uc.messageRepo.MarkReadBy(ctx, conversationID, userID); err != nil {
		log.Warnw(ctx, "failed to persist read state", "error", err)
	}

	sess.mu.Lock()
	for i := range sess.msgs {
		if !util.SliceIncludes(sess.msgs[i].ReadBy, userID) {
			sess.msgs[i].ReadBy = append(sess.msgs[i].ReadBy, userID)
		}
	}
	sess.mu.Unlock()
	return nil
}

// ApplyServerMessage folds a message delivered over the event stream
// into local state. A message carrying a known client_gen_id is the
// confirmation of one of our own echoes and reconciles it instead of
// inserting a duplicate.
func (uc *ConversationUsecase) ApplyServerMessage(ctx context.Context, msg models.RawMessage) error {
	if !msg.Status.Valid() {
		msg.Status = models.StatusSent
	}

	if err := uc.messageRepo.Upsert(ctx, msg); err != nil {
		return fmt.Errorf("persist message: %w", err)
	}
	if err := uc.convRepo.TouchLastMessage(ctx, msg.ConversationID, msg.CreatedAt); err != nil && !errors.Is(err, models.ErrNotFound) {
		log.Warnw(ctx, "failed to touch conversation", "error", err)
	}

	sess := uc.peekSession(msg.ConversationID)
	if sess == nil {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil
	}

	if msg.ClientGenID != "" {
		if raw, display, ok := sess.outbox.Reconcile(msg.ClientGenID, msg); ok {
			sess.replaceInPlace(msg.ClientGenID, raw)
			uc.broadcaster.MessageUpdated(sess.conv.ParticipantIDs(), msg.ConversationID, display)
			return nil
		}
	}

	if sess.containsID(msg.ID) {
		sess.replaceInPlace(msg.ID, msg)
	} else {
		sess.msgs = append([]models.RawMessage{msg}, sess.msgs...)
	}

	display := timeline.MapMessage(msg, nil, nil, timeline.ConversationContext{IsGroup: sess.conv.IsGroup})
	uc.broadcaster.MessageReceived(sess.conv.ParticipantIDs(), msg.ConversationID, display)
	return nil
}

// ApplyStatusUpdate folds a server-driven status change (DELIVERED or
// READ) into local state without reinterpreting it.
func (uc *ConversationUsecase) ApplyStatusUpdate(ctx context.Context, conversationID, messageID string, status models.MessageStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid message status %q", status)
	}

	if err := uc.messageRepo.UpdateStatus(ctx, messageID, status); err != nil && !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("persist status: %w", err)
	}

	sess := uc.peekSession(conversationID)
	if sess == nil {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil
	}

	for i := range sess.msgs {
		if sess.msgs[i].ID == messageID {
			sess.msgs[i].Status = status
			break
		}
	}
	uc.broadcaster.StatusChanged(sess.conv.ParticipantIDs(), conversationID, messageID, status)
	return nil
}

// Participants returns the user IDs of everyone in the conversation.
func (uc *ConversationUsecase) Participants(ctx context.Context, conversationID string) ([]string, error) {
	sess, err := uc.getSession(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.conv.ParticipantIDs(), nil
}

// Close drops a conversation's live session. In-flight round trips that
// resolve afterwards become no-ops.
func (uc *ConversationUsecase) Close(conversationID string) {
	uc.mu.Lock()
	sess, ok := uc.sessions[conversationID]
	delete(uc.sessions, conversationID)
	uc.mu.Unlock()
	if !ok {
		return
	}

	sess.mu.Lock()
	sess.closed = true
	sess.mu.Unlock()
}

// deliver runs the upstream round trip for one echo and applies the
// resulting transition. It detaches from the request context so a
// dismissed view does not abort the send.
func (uc *ConversationUsecase) deliver(ctx context.Context, sess *session, pending models.RawMessage) {
	sendCtx, cancel := util.NewTimeoutContext(ctx, sendTimeout)
	defer cancel()

	server, err := uc.chatAPI.SendMessage(sendCtx, models.OutgoingMessage{
		ConversationID: pending.ConversationID,
		SenderID:       pending.Sender.ID,
		Content:        pending.Content,
		ContentType:    pending.ContentType,
		ClientGenID:    pending.ClientGenID,
		ReplyToID:      pending.ReplyToID,
	})
	if err != nil {
		log.Errorw(sendCtx, "send failed",
			"conversation_id", pending.ConversationID,
			"temp_id", pending.ID,
			"error", err)
		uc.failPending(sess, pending)
		return
	}

	uc.confirmPending(sendCtx, sess, pending.ID, *server)
}

// confirmPending swaps the echo for the server record in the exact slot
// it already occupies, so the rendered list never reorders.
func (uc *ConversationUsecase) confirmPending(ctx context.Context, sess *session, tempID string, server models.RawMessage) {
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return
	}

	raw, display, ok := sess.outbox.Reconcile(tempID, server)
	if !ok {
		sess.mu.Unlock()
		return
	}
	sess.replaceInPlace(tempID, raw)
	participants := sess.conv.ParticipantIDs()
	conversationID := sess.conv.ID
	sess.mu.Unlock()

	if err := uc.messageRepo.Upsert(ctx, raw); err != nil {
		log.Warnw(ctx, "failed to persist confirmed message", "error", err)
	}
	if err := uc.convRepo.TouchLastMessage(ctx, conversationID, raw.CreatedAt); err != nil && !errors.Is(err, models.ErrNotFound) {
		log.Warnw(ctx, "failed to touch conversation", "error", err)
	}

	uc.broadcaster.MessageUpdated(participants, conversationID, display)
}

func (uc *ConversationUsecase) failPending(sess *session, pending models.RawMessage) {
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return
	}

	raw, display, ok := sess.outbox.MarkFailed(pending.ID)
	if !ok {
		sess.mu.Unlock()
		return
	}
	sess.replaceInPlace(pending.ID, raw)
	conversationID := sess.conv.ID
	sess.mu.Unlock()

	// Failure is only the sender's business.
	uc.broadcaster.MessageUpdated([]string{pending.Sender.ID}, conversationID, display)
}

func (uc *ConversationUsecase) getSession(ctx context.Context, conversationID string) (*session, error) {
	uc.mu.Lock()
	if sess, ok := uc.sessions[conversationID]; ok {
		uc.mu.Unlock()
		return sess, nil
	}
	uc.mu.Unlock()

	// Load outside the map lock; concurrent loaders race benignly and
	// the first to finish wins.
	conv, err := uc.loadConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	msgs, err := uc.loadMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	if sess, ok := uc.sessions[conversationID]; ok {
		return sess, nil
	}
	sess := &session{
		conv:   *conv,
		msgs:   msgs,
		outbox: timeline.NewOutbox(),
	}
	uc.sessions[conversationID] = sess
	return sess, nil
}

func (uc *ConversationUsecase) peekSession(conversationID string) *session {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.sessions[conversationID]
}

func (uc *ConversationUsecase) loadConversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	conv, err := uc.convRepo.GetByID(ctx, conversationID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	conv, err = uc.chatAPI.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// The conversation is gone upstream; drop whatever we cached.
			if _, derr := uc.messageRepo.DeleteByConversation(ctx, conversationID); derr != nil {
				log.Warnw(ctx, "failed to purge cached messages", "error", derr)
			}
		}
		return nil, fmt.Errorf("fetch conversation: %w", err)
	}
	if err := uc.convRepo.Upsert(ctx, *conv); err != nil {
		log.Warnw(ctx, "failed to cache conversation", "error", err)
	}
	return conv, nil
}

func (uc *ConversationUsecase) loadMessages(ctx context.Context, conversationID string) ([]models.RawMessage, error) {
	pageSize := uc.conf.Timeline.PageSize

	msgs, err := uc.messageRepo.ListByConversation(ctx, conversationID, pageSize, nil)
	if err != nil {
		return nil, fmt.Errorf("load cached messages: %w", err)
	}
	if len(msgs) > 0 {
		return msgs, nil
	}

	msgs, _, err = uc.chatAPI.FetchMessages(ctx, conversationID, pageSize, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	if err := uc.messageRepo.UpsertMany(ctx, msgs); err != nil {
		log.Warnw(ctx, "failed to cache messages", "error", err)
	}
	return msgs, nil
}

// senderFor resolves the sending user's identity from the conversation
// participants; an unknown user still sends, just without name/avatar.
func (s *session) senderFor(userID string) models.Sender {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.conv.Participants {
		if p.UserID == userID {
			return models.Sender{ID: p.UserID, Name: p.Name, Avatar: p.Avatar, Role: p.Role}
		}
	}
	return models.Sender{ID: userID}
}

// replaceInPlace swaps the record matching id (by ID or client_gen_id)
// without moving it; reconciliation never changes a message's index.
func (s *session) replaceInPlace(id string, msg models.RawMessage) {
	for i := range s.msgs {
		if s.msgs[i].ID == id || (s.msgs[i].ClientGenID != "" && s.msgs[i].ClientGenID == id) {
			s.msgs[i] = msg
			return
		}
	}
}

func (s *session) removeByID(id string) {
	for i := range s.msgs {
		if s.msgs[i].ID == id {
			s.msgs = append(s.msgs[:i], s.msgs[i+1:]...)
			return
		}
	}
}

func (s *session) containsID(id string) bool {
	for i := range s.msgs {
		if s.msgs[i].ID == id {
			return true
		}
	}
	return false
}
