package models

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrNotFound           = status.Errorf(codes.NotFound, "not found")
	ErrPendingNotFound    = status.Errorf(codes.NotFound, "pending message not found")
	ErrConversationClosed = status.Errorf(codes.FailedPrecondition, "conversation closed")
)
