// Package httpclient は外部のHTTPエンドポイントにJSONを送信するクライアントを提供する。
//
// ドメインイベントをHTTPのイベント受信先（Event Sink）に送る際に使用する。
// リクエストIDをヘッダーで引き継ぎ、タイムアウトを必ず設定する。
package httpclient
