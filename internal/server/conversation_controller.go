package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
	pkgmdw "github.com/nguyentranbao-ct/chat-timeline/internal/server/middleware"
	"github.com/nguyentranbao-ct/chat-timeline/internal/usecase"
)

type ConversationController interface {
	GetTimeline(c echo.Context) error
	SendMessage(c echo.Context) error
	RetryMessage(c echo.Context) error
	DeletePendingMessage(c echo.Context) error
	MarkRead(c echo.Context) error
	CloseConversation(c echo.Context) error
}

type conversationController struct {
	conversations *usecase.ConversationUsecase
}

func NewConversationController(conversations *usecase.ConversationUsecase) ConversationController {
	return &conversationController{
		conversations: conversations,
	}
}

type timelineRequest struct {
	ConversationID string `param:"id" validate:"required"`
	UserID         string `jwt:"sub" validate:"required"`
}

func (cc *conversationController) GetTimeline(c echo.Context) error {
	var req timelineRequest
	if err := pkgmdw.BindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	items, err := cc.conversations.Timeline(ctx, req.ConversationID, req.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

type sendMessageRequest struct {
	ConversationID string             `param:"id" validate:"required"`
	UserID         string             `jwt:"sub" validate:"required"`
	Content        string             `json:"content" validate:"required"`
	ContentType    models.ContentType `json:"content_type"`
	ReplyToID      *string            `json:"reply_to_id"`
}

func (cc *conversationController) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := pkgmdw.BindAndValidate(c, &req); err != nil {
		return err
	}
	if req.ContentType == "" {
		req.ContentType = models.ContentTypeText
	}

	ctx := c.Request().Context()
	msg, err := cc.conversations.Send(ctx, usecase.SendParams{
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
		Content:        req.Content,
		ContentType:    req.ContentType,
		ReplyToID:      req.ReplyToID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, msg)
}

type pendingMessageRequest struct {
	ConversationID string `param:"id" validate:"required"`
	TempID         string `param:"tempId" validate:"required"`
}

func (cc *conversationController) RetryMessage(c echo.Context) error {
	var req pendingMessageRequest
	if err := pkgmdw.BindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	msg, err := cc.conversations.Retry(ctx, req.ConversationID, req.TempID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, msg)
}

func (cc *conversationController) DeletePendingMessage(c echo.Context) error {
	var req pendingMessageRequest
	if err := pkgmdw.BindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := cc.conversations.DeletePending(ctx, req.ConversationID, req.TempID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

type markReadRequest struct {
	ConversationID string `param:"id" validate:"required"`
	UserID         string `jwt:"sub" validate:"required"`
}

func (cc *conversationController) MarkRead(c echo.Context) error {
	var req markReadRequest
	if err := pkgmdw.BindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := cc.conversations.MarkRead(ctx, req.ConversationID, req.UserID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type closeRequest struct {
	ConversationID string `param:"id" validate:"required"`
}

func (cc *conversationController) CloseConversation(c echo.Context) error {
	var req closeRequest
	if err := pkgmdw.BindAndValidate(c, &req); err != nil {
		return err
	}

	cc.conversations.Close(req.ConversationID)
	return c.NoContent(http.StatusNoContent)
}
