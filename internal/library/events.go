package library

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/library/pkg/event"
	"github.com/nao1215/library/pkg/httpclient"
	"github.com/nao1215/library/pkg/middleware"
)

// emitEvent はドメインイベントを発行する。発行に失敗してもリクエストは失敗させず、
// 警告ログを出力するのみとする。
func (s *Server) emitEvent(c *gin.Context, aggregateID string, aggregateType event.AggregateType, eventType event.Type, data any) {
	requestID := middleware.GetRequestID(c)
	logger := s.logger.With(
		"event_type", eventType,
		"aggregate_id", aggregateID,
		"request_id", requestID,
	)
	if actor := middleware.GetEmail(c); actor != "" {
		logger = logger.With("actor", actor)
	}

	e, err := event.New(aggregateID, aggregateType, eventType, data)
	if err != nil {
		logger.WarnContext(c.Request.Context(), "イベントの生成に失敗", "error", err)
		return
	}

	// クライアントの切断でイベントが失われないよう、キャンセルは引き継がない。
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), s.dbTimeout)
	defer cancel()
	if requestID != "" {
		ctx = httpclient.WithRequestID(ctx, requestID)
	}

	if err := s.publisher.Publish(ctx, e); err != nil {
		logger.WarnContext(ctx, "イベントの発行に失敗", "error", err)
		return
	}
	logger.DebugContext(ctx, "イベントを発行しました", "event_id", e.ID)
}
