package event

import (
	"encoding/json"
	"time"
)

// AggregateType はイベントの対象となるエンティティの種類を表す。
type AggregateType string

const (
	// AggregateTypeBook は書籍エンティティを表す。
	AggregateTypeBook AggregateType = "Book"
	// AggregateTypeUser はユーザーエンティティを表す。
	AggregateTypeUser AggregateType = "User"
)

// Type はイベントの種類を表す。
type Type string

const (
	// TypeBookCreated は書籍が登録されたことを表す。
	TypeBookCreated Type = "BookCreated"
	// TypeBookDeleted は書籍が削除されたことを表す。
	TypeBookDeleted Type = "BookDeleted"
	// TypeUserRegistered はユーザーが初めて保存されたことを表す。
	TypeUserRegistered Type = "UserRegistered"
)

// Event はAPIで発生した状態変更を外部に通知するための不変のレコード。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// AggregateID は対象エンティティの識別子。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象エンティティの種類。
	AggregateType AggregateType `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// CreatedAt はイベントが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}

// BookCreatedData はBookCreatedイベントのデータ。
type BookCreatedData struct {
	// Title は書名。
	Title string `json:"title"`
	// Category はジャンル。
	Category string `json:"category"`
	// HostEmail は登録者のメールアドレス。
	HostEmail string `json:"host_email"`
}

// BookDeletedData はBookDeletedイベントのデータ。
type BookDeletedData struct {
	// DeletedCount は削除件数。
	DeletedCount int64 `json:"deleted_count"`
}

// UserRegisteredData はUserRegisteredイベントのデータ。
type UserRegisteredData struct {
	// Email はユーザーのメールアドレス。
	Email string `json:"email"`
	// Timestamp は初回書き込み時刻（UNIXミリ秒）。
	Timestamp int64 `json:"timestamp"`
}
