// Package event は図書館管理APIのドメインイベントと、その発行手段を提供する。
//
// 書籍の登録・削除、ユーザーの初回登録をイベントとして外部に通知する。
// 発行先はNATS、HTTPのイベント受信先、または何もしないNopPublisherから選ぶ。
// 発行は付随的な処理であり、失敗しても呼び出し元のリクエストは失敗させない。
package event
