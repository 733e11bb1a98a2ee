// Package sqlitestore はstore.StoreのSQLite実装を提供する。
//
// ローカル開発とテスト用のバックエンドで、MongoDBと同じ識別子形式・同じ検索条件を
// テーブルとインデックスで再現する。スキーマは組み込みのマイグレーションで適用する。
package sqlitestore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	_ "modernc.org/sqlite"

	"github.com/nao1215/library/internal/model"
	"github.com/nao1215/library/internal/store"
	"github.com/nao1215/library/pkg/migration"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store はSQLiteをバックエンドとするstore.Storeの実装。
type Store struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
	// now は現在時刻を返す関数。テストで差し替える。
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open はpathのSQLiteデータベースを開き、マイグレーションを適用する。
// pathに ":memory:" を指定するとインメモリデータベースになる。
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	// SQLiteは書き込みが直列化されるため接続を1本に絞る。:memory: でも同じDBを共有できる。
	db.SetMaxOpenConns(1)

	if _, err := migration.Run(ctx, db, migrationsFS, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Ping はデータベースへの疎通を確認する。
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close はデータベース接続を閉じる。
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

// UpsertUser はemailが未登録の場合のみユーザーを挿入し、保存されているユーザーを返す。
func (s *Store) UpsertUser(ctx context.Context, user *model.User) (*model.User, bool, error) {
	id := model.NewID()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, photo, role, status, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO NOTHING`,
		id.Hex(), user.Email, user.Name, user.Photo, user.Role, user.Status, s.now().UnixMilli(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("ユーザーの保存に失敗: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("ユーザーの保存結果の取得に失敗: %w", err)
	}

	saved, err := s.findUserByEmail(ctx, user.Email)
	if err != nil {
		return nil, false, err
	}
	return saved, affected == 1, nil
}

func (s *Store) findUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var (
		u     model.User
		rawID string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, photo, role, status, timestamp
		FROM users WHERE email = ?`, email,
	).Scan(&rawID, &u.Email, &u.Name, &u.Photo, &u.Role, &u.Status, &u.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	if u.ID, err = model.ParseID(rawID); err != nil {
		return nil, err
	}
	return &u, nil
}

const bookColumns = `id, title, author, category, description, image, quantity, rating,
	host_name, host_email, host_image, created_at`

// ListBooks は条件に一致する書籍を保存順で返す。
func (s *Store) ListBooks(ctx context.Context, filter store.BookFilter) ([]model.Book, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.HostEmail != "" {
		conds = append(conds, "host_email = ?")
		args = append(args, filter.HostEmail)
	}

	query := "SELECT " + bookColumns + " FROM books"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("書籍一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	books := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("書籍一覧の読み取りに失敗: %w", err)
	}
	return books, nil
}

// FindBook は識別子で書籍を1件取得する。
func (s *Store) FindBook(ctx context.Context, id bson.ObjectID) (*model.Book, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+bookColumns+" FROM books WHERE id = ?", id.Hex())
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// InsertBook は書籍を保存し、生成した識別子を返す。
func (s *Store) InsertBook(ctx context.Context, book *model.Book) (bson.ObjectID, error) {
	id := model.NewID()
	createdAt := book.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.Hex(), book.Title, book.Author, book.Category, book.Description, book.Image,
		book.Quantity, book.Rating, book.Host.Name, book.Host.Email, book.Host.Image,
		createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("書籍の保存に失敗: %w", err)
	}
	return id, nil
}

// DeleteBook は書籍を削除し、削除件数を返す。
func (s *Store) DeleteBook(ctx context.Context, id bson.ObjectID) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id.Hex())
	if err != nil {
		return 0, fmt.Errorf("書籍の削除に失敗: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗: %w", err)
	}
	return n, nil
}

// rowScanner は *sql.Row と *sql.Rows の共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(r rowScanner) (*model.Book, error) {
	var (
		b                model.Book
		rawID, createdAt string
	)
	err := r.Scan(&rawID, &b.Title, &b.Author, &b.Category, &b.Description, &b.Image,
		&b.Quantity, &b.Rating, &b.Host.Name, &b.Host.Email, &b.Host.Image, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("書籍の読み取りに失敗: %w", err)
	}

	if b.ID, err = model.ParseID(rawID); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("登録日時の解析に失敗: %w", err)
	}
	return &b, nil
}
