package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// コレクション名。MongoDBのコレクション名とSQLiteのテーブル名の両方に使用する。
const (
	// CollectionBooks は書籍コレクション。
	CollectionBooks = "books"
	// CollectionUsers はユーザーコレクション。
	CollectionUsers = "users"
	// CollectionBookings は貸出予約コレクション。現時点で操作は定義されていない。
	CollectionBookings = "booking"
)

// User は図書館を利用するユーザー。emailで一意に識別される。
type User struct {
	// ID はドキュメントの識別子。
	ID bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	// Email はユーザーのメールアドレス。upsertのキーとなる。
	Email string `bson:"email" json:"email" binding:"required,email"`
	// Name は表示名。
	Name string `bson:"name,omitempty" json:"name,omitempty"`
	// Photo はプロフィール画像のURL。
	Photo string `bson:"photo,omitempty" json:"photo,omitempty"`
	// Role はユーザーの役割（guest、host、admin など）。
	Role string `bson:"role,omitempty" json:"role,omitempty"`
	// Status はアカウントの状態。
	Status string `bson:"status,omitempty" json:"status,omitempty"`
	// Timestamp は初回書き込み時刻（UNIXミリ秒）。サーバーが設定する。
	Timestamp int64 `bson:"timestamp" json:"timestamp"`
}

// Host は書籍を登録したユーザーの情報。
type Host struct {
	// Name は登録者の表示名。
	Name string `bson:"name,omitempty" json:"name,omitempty"`
	// Email は登録者のメールアドレス。所有者の判定に使用する。
	Email string `bson:"email" json:"email" binding:"required,email"`
	// Image は登録者のプロフィール画像URL。
	Image string `bson:"image,omitempty" json:"image,omitempty"`
}

// Book は蔵書1冊分のドキュメント。
type Book struct {
	// ID はドキュメントの識別子。
	ID bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	// Title は書名。
	Title string `bson:"title" json:"title" binding:"required"`
	// Author は著者名。
	Author string `bson:"author,omitempty" json:"author,omitempty"`
	// Category はジャンル。一覧取得時の絞り込みに使用する。
	Category string `bson:"category" json:"category" binding:"required"`
	// Description は書籍の説明。
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	// Image は表紙画像のURL。
	Image string `bson:"image,omitempty" json:"image,omitempty"`
	// Quantity は在庫数。
	Quantity int `bson:"quantity" json:"quantity" binding:"gte=0"`
	// Rating は評価（0〜5）。
	Rating float64 `bson:"rating" json:"rating" binding:"gte=0,lte=5"`
	// Host は書籍の登録者。
	Host Host `bson:"host" json:"host"`
	// CreatedAt は登録日時。サーバーが設定する。
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Guest は貸出予約を行ったユーザーの情報。
type Guest struct {
	Name  string `bson:"name,omitempty" json:"name,omitempty"`
	Email string `bson:"email" json:"email" binding:"required,email"`
}

// Booking は書籍の貸出予約。コレクションのみ定義されており、APIからの操作はまだない。
type Booking struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	BookID     bson.ObjectID `bson:"bookId" json:"bookId"`
	Guest      Guest         `bson:"guest" json:"guest"`
	BorrowedAt time.Time     `bson:"borrowedAt" json:"borrowedAt"`
	ReturnDate time.Time     `bson:"returnDate" json:"returnDate"`
}
