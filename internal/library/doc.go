// Package library は図書館管理APIサーバーの内部実装を提供する。
//
// Cookieに格納した署名付きトークンによるセッション認証と、書籍・ユーザーの
// 作成・取得・削除を担当する。永続化は store.Store に委譲し、状態を変更した操作は
// event.Publisher でドメインイベントとして通知する。
//
// 認証ゲートはルート名ごとに付与する。既定ではどのルートも認証を要求しない。
package library
