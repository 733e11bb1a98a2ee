package library

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/library/pkg/apierror"
	"github.com/nao1215/library/pkg/middleware"
)

// handleIssueToken はリクエストボディのJSONオブジェクトをクレームとして
// セッショントークンを発行し、Cookieに設定するハンドラを返す。
func (s *Server) handleIssueToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload map[string]any
		if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
			abortInvalidInput(c, err)
			return
		}

		token, err := middleware.GenerateJWT(s.secret, payload, s.now())
		if errors.Is(err, middleware.ErrReservedClaim) {
			abortInvalidInput(c, err)
			return
		}
		if err != nil {
			s.logger.ErrorContext(c.Request.Context(), "トークン生成に失敗", "error", err)
			apierror.Abort(c, http.StatusInternalServerError, apierror.CodeInternal, "トークン生成に失敗しました")
			return
		}

		middleware.SetSessionCookie(c, token, s.secureCookies)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// handleRevokeToken はセッションCookieを削除するハンドラを返す。
func (s *Server) handleRevokeToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.ClearSessionCookie(c, s.secureCookies)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
