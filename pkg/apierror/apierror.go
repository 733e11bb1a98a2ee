// Package apierror はHTTP APIのエラーレスポンス形式を統一する。
//
// すべてのエラーは {"error": "<メッセージ>", "code": "<コード>"} の形で返す。
package apierror

import (
	"github.com/gin-gonic/gin"
)

// Code はクライアントが機械的に判別するためのエラーコード。
type Code string

const (
	// CodeInvalidInput はリクエストボディやパラメータが不正であることを表す。
	CodeInvalidInput Code = "INVALID_INPUT"
	// CodeInvalidID は識別子の形式が不正であることを表す。
	CodeInvalidID Code = "INVALID_ID"
	// CodeUnauthorized はセッショントークンがない、または無効であることを表す。
	CodeUnauthorized Code = "UNAUTHORIZED"
	// CodeInternal はサーバー内部のエラーを表す。
	CodeInternal Code = "INTERNAL_ERROR"
	// CodeUnavailable はデータベース等の依存先が利用できないことを表す。
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
)

// Response はエラーレスポンスのJSON構造。
type Response struct {
	// Error は人が読むためのメッセージ。
	Error string `json:"error"`
	// Code はエラーコード。
	Code Code `json:"code"`
}

// Abort はエラーレスポンスを書き込み、後続のハンドラを中断する。
func Abort(c *gin.Context, status int, code Code, message string) {
	c.AbortWithStatusJSON(status, Response{Error: message, Code: code})
}
