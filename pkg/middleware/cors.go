package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS は指定されたオリジンからのクロスオリジンリクエストを許可するGinミドルウェアを返す。
// セッションCookieを送受信するため、資格情報付きのリクエストを許可する。
// 許可リストにないオリジンからのリクエストは403で拒否される。
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", headerKeyRequestID},
		ExposeHeaders:    []string{headerKeyRequestID},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	// 許可リストが空の場合、gin-contrib/corsは設定不備としてpanicするため、すべて拒否する関数を設定する。
	if len(allowedOrigins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(cfg)
}
