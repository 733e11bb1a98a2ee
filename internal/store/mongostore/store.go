// Package mongostore はstore.StoreのMongoDB実装を提供する。
//
// データベース名は既定で LibraryManagement、コレクションは books・users・booking を使用する。
// *mongo.Client は並行利用に安全なため、1つのStoreを全リクエストで共有する。
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/nao1215/library/internal/model"
	"github.com/nao1215/library/internal/store"
)

// Store はMongoDBをバックエンドとするstore.Storeの実装。
type Store struct {
	// client はMongoDBクライアント。
	client *mongo.Client
	// books は書籍コレクション。
	books *mongo.Collection
	// users はユーザーコレクション。
	users *mongo.Collection
	// now は現在時刻を返す関数。
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open はMongoDBに接続し、疎通確認とインデックス作成を行う。
func Open(ctx context.Context, uri, database string) (*Store, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, fmt.Errorf("MongoDBクライアントの作成に失敗: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("MongoDBへの疎通確認に失敗: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client: client,
		books:  db.Collection(model.CollectionBooks),
		users:  db.Collection(model.CollectionUsers),
		now:    time.Now,
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// ensureIndexes はupsertと一覧取得で使用するインデックスを作成する。
func (s *Store) ensureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("usersインデックスの作成に失敗: %w", err)
	}

	if _, err := s.books.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "host.email", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("booksインデックスの作成に失敗: %w", err)
	}
	return nil
}

// Ping はプライマリへの疎通を確認する。
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close はMongoDBとの接続を切断する。
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// UpsertUser はemailが未登録の場合のみユーザーを挿入する。
// 既存ユーザーは更新せず、そのまま返す。
func (s *Store) UpsertUser(ctx context.Context, user *model.User) (*model.User, bool, error) {
	filter := bson.D{{Key: "email", Value: user.Email}}

	existing, err := s.findUser(ctx, filter)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	doc := *user
	doc.ID = model.NewID()
	doc.Timestamp = s.now().UnixMilli()

	res, err := s.users.UpdateOne(ctx, filter,
		bson.D{{Key: "$setOnInsert", Value: doc}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return nil, false, fmt.Errorf("ユーザーの保存に失敗: %w", err)
	}

	// 並行リクエストが先に挿入した場合は、そちらのドキュメントを返す。
	if res.UpsertedCount == 0 {
		existing, err := s.findUser(ctx, filter)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return &doc, true, nil
}

func (s *Store) findUser(ctx context.Context, filter bson.D) (*model.User, error) {
	var u model.User
	err := s.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return &u, nil
}

// ListBooks は条件に一致する書籍を自然順（保存順）で返す。
func (s *Store) ListBooks(ctx context.Context, filter store.BookFilter) ([]model.Book, error) {
	cur, err := s.books.Find(ctx, bookQuery(filter))
	if err != nil {
		return nil, fmt.Errorf("書籍一覧の取得に失敗: %w", err)
	}

	books := make([]model.Book, 0)
	if err := cur.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("書籍一覧の読み取りに失敗: %w", err)
	}
	if books == nil {
		books = []model.Book{}
	}
	return books, nil
}

// bookQuery はBookFilterをMongoDBのクエリに変換する。
func bookQuery(filter store.BookFilter) bson.D {
	q := bson.D{}
	if filter.Category != "" {
		q = append(q, bson.E{Key: "category", Value: filter.Category})
	}
	if filter.HostEmail != "" {
		q = append(q, bson.E{Key: "host.email", Value: filter.HostEmail})
	}
	return q
}

// FindBook は識別子で書籍を1件取得する。
func (s *Store) FindBook(ctx context.Context, id bson.ObjectID) (*model.Book, error) {
	var b model.Book
	err := s.books.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("書籍の取得に失敗: %w", err)
	}
	return &b, nil
}

// InsertBook は書籍を保存し、生成した識別子を返す。
func (s *Store) InsertBook(ctx context.Context, book *model.Book) (bson.ObjectID, error) {
	doc := *book
	doc.ID = model.NewID()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = s.now().UTC()
	}

	if _, err := s.books.InsertOne(ctx, doc); err != nil {
		return bson.NilObjectID, fmt.Errorf("書籍の保存に失敗: %w", err)
	}
	return doc.ID, nil
}

// DeleteBook は書籍を削除し、削除件数を返す。
func (s *Store) DeleteBook(ctx context.Context, id bson.ObjectID) (int64, error) {
	res, err := s.books.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return 0, fmt.Errorf("書籍の削除に失敗: %w", err)
	}
	return res.DeletedCount, nil
}
