package library

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/library/internal/model"
	"github.com/nao1215/library/pkg/event"
)

// handleUpsertUser はemailをキーにユーザーを保存するハンドラを返す。
// 既に存在する場合は更新せず、保存済みのユーザーを200で返す。新規作成時は201を返す。
func (s *Server) handleUpsertUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		var user model.User
		if err := c.ShouldBindJSON(&user); err != nil {
			abortInvalidInput(c, err)
			return
		}

		ctx, cancel := s.dbContext(c)
		defer cancel()

		saved, created, err := s.store.UpsertUser(ctx, &user)
		if err != nil {
			s.abortStoreError(c, err, "ユーザーの保存に失敗しました")
			return
		}

		if !created {
			c.JSON(http.StatusOK, saved)
			return
		}
		s.emitEvent(c, saved.ID.Hex(), event.AggregateTypeUser, event.TypeUserRegistered, event.UserRegisteredData{
			Email:     saved.Email,
			Timestamp: saved.Timestamp,
		})
		c.JSON(http.StatusCreated, saved)
	}
}
