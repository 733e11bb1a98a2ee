package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nao1215/library/internal/model"
)

// ErrNotFound は対象のドキュメントが存在しないことを表す。
var ErrNotFound = errors.New("ドキュメントが見つかりません")

// BookFilter は書籍一覧の絞り込み条件。空文字列のフィールドは条件に含めない。
type BookFilter struct {
	// Category はジャンルの完全一致条件。
	Category string
	// HostEmail は登録者メールアドレス（host.email）の完全一致条件。
	HostEmail string
}

// UserStore はユーザーコレクションへの操作。
type UserStore interface {
	// UpsertUser はemailをキーにユーザーを挿入する。既に存在する場合は更新せず既存の
	// ドキュメントをそのまま返す。createdは新規作成した場合にtrueとなる。
	UpsertUser(ctx context.Context, user *model.User) (saved *model.User, created bool, err error)
}

// BookStore は書籍コレクションへの操作。
type BookStore interface {
	// ListBooks は条件に一致する書籍を保存順で返す。一致しない場合は空スライスを返す。
	ListBooks(ctx context.Context, filter BookFilter) ([]model.Book, error)
	// FindBook は識別子で書籍を1件取得する。存在しない場合は ErrNotFound を返す。
	FindBook(ctx context.Context, id bson.ObjectID) (*model.Book, error)
	// InsertBook は書籍を新規に保存し、生成した識別子を返す。
	InsertBook(ctx context.Context, book *model.Book) (bson.ObjectID, error)
	// DeleteBook は識別子に一致する書籍を削除し、削除件数（0または1）を返す。
	DeleteBook(ctx context.Context, id bson.ObjectID) (int64, error)
}

// Store はAPIサーバーが使用する永続化層の全操作。
type Store interface {
	UserStore
	BookStore
	// Ping はデータベースへの疎通を確認する。
	Ping(ctx context.Context) error
	// Close は接続を解放する。
	Close(ctx context.Context) error
}
