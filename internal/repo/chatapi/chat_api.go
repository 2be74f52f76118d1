// Package chatapi is the client for the chat backend's REST API. It is
// the only place the service talks to the upstream over HTTP; message
// ordering, pagination and caching are someone else's concern.
package chatapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nguyentranbao-ct/chat-timeline/internal/config"
	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
	"github.com/nguyentranbao-ct/chat-timeline/pkg/util"
)

const requestTimeout = 30 * time.Second

type Client interface {
	// FetchMessages returns a newest-first page of a conversation's
	// messages, optionally older than beforeTS (unix millis).
	FetchMessages(ctx context.Context, conversationID string, limit int, beforeTS *int64) ([]models.RawMessage, bool, error)
	GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error)
	SendMessage(ctx context.Context, msg models.OutgoingMessage) (*models.RawMessage, error)
	MarkRead(ctx context.Context, conversationID, userID string) error
}

type chatAPIClient struct {
	rc      *resty.Client
	service string
}

func NewClient(conf *config.Config) Client {
	cfg := conf.ChatAPI
	rc := util.NewRestyClient().
		SetBaseURL(cfg.BaseURL).
		SetHeader("X-Service", cfg.Service)
	if cfg.APIKey != "" {
		rc.SetAuthToken(cfg.APIKey)
	}

	return &chatAPIClient{
		rc:      rc,
		service: cfg.Service,
	}
}

type messagesResponse struct {
	Messages []models.RawMessage `json:"messages"`
	HasMore  bool                `json:"has_more"`
}

func (c *chatAPIClient) FetchMessages(ctx context.Context, conversationID string, limit int, beforeTS *int64) ([]models.RawMessage, bool, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req := c.rc.R().
		SetContext(timeoutCtx).
		SetPathParam("id", conversationID).
		SetQueryParam("limit", fmt.Sprint(limit)).
		SetResult(&messagesResponse{})
	if beforeTS != nil {
		req.SetQueryParam("before", fmt.Sprint(*beforeTS))
	}

	resp, err := req.Get("/api/v1/conversations/{id}/messages")
	if err != nil {
		return nil, false, fmt.Errorf("fetch messages: %w", err)
	}
	if resp.IsError() {
		return nil, false, fmt.Errorf("fetch messages: unexpected status %d", resp.StatusCode())
	}

	result := resp.Result().(*messagesResponse)
	return result.Messages, result.HasMore, nil
}

func (c *chatAPIClient) GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.rc.R().
		SetContext(timeoutCtx).
		SetPathParam("id", conversationID).
		SetResult(&models.Conversation{}).
		Get("/api/v1/conversations/{id}")
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, models.ErrNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get conversation: unexpected status %d", resp.StatusCode())
	}

	return resp.Result().(*models.Conversation), nil
}

func (c *chatAPIClient) SendMessage(ctx context.Context, msg models.OutgoingMessage) (*models.RawMessage, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.rc.R().
		SetContext(timeoutCtx).
		SetPathParam("id", msg.ConversationID).
		SetBody(msg).
		SetResult(&models.RawMessage{}).
		Post("/api/v1/conversations/{id}/messages")
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("send message: unexpected status %d", resp.StatusCode())
	}

	return resp.Result().(*models.RawMessage), nil
}

func (c *chatAPIClient) MarkRead(ctx context.Context, conversationID, userID string) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.rc.R().
		SetContext(timeoutCtx).
		SetPathParam("id", conversationID).
		SetBody(map[string]string{"user_id": userID}).
		Post("/api/v1/conversations/{id}/read")
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mark read: unexpected status %d", resp.StatusCode())
	}

	return nil
}
