// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// Cookieに格納したセッショントークン（JWT）の発行・検証・削除、リクエストログ、
// パニックリカバリ、CORS設定を含む。
package middleware
