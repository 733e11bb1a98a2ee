// Package model は図書館管理APIが扱うドキュメントの形を定義する。
//
// リクエストボディは任意のJSONとしてそのまま保存せず、ここで定義した
// エンティティ（User、Book、Booking）にバインドしてから永続化する。
// 識別子はMongoDBのObjectID（24桁の16進文字列）で統一し、SQLiteバックエンドでも
// 同じ形式を使用する。
package model
