// Package store は図書館管理APIの永続化層のインターフェースを定義する。
//
// 実体はドキュメントデータベースに委譲する。本番ではMongoDB（mongostore）、
// ローカル開発とテストでは組み込みSQLite（sqlitestore）を使用する。
// いずれの実装も1つのハンドルを全リクエストで共有するため、並行利用に安全でなければならない。
package store
