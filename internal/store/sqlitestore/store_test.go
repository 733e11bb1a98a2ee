package sqlitestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/library/internal/model"
	"github.com/nao1215/library/internal/store"
)

// fixedNow はテストで使用する固定時刻。
var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

// setupTestStore はテスト用のインメモリSQLiteストアを構築する。
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("インメモリストアの作成に失敗: %v", err)
	}
	s.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

// insertTestBook はテスト用に書籍を保存するヘルパー関数。
func insertTestBook(t *testing.T, s *Store, title, category, hostEmail string) model.Book {
	t.Helper()

	b := model.Book{
		Title:    title,
		Category: category,
		Host:     model.Host{Email: hostEmail},
	}
	id, err := s.InsertBook(context.Background(), &b)
	if err != nil {
		t.Fatalf("テスト用書籍の保存に失敗: %v", err)
	}
	b.ID = id
	b.CreatedAt = fixedNow
	return b
}

// TestUpsertUser はUpsertUserを検証する。
func TestUpsertUser(t *testing.T) {
	t.Parallel()

	t.Run("同じemailで2回保存しても同じレコードが返り更新されないこと", func(t *testing.T) {
		t.Parallel()
		s := setupTestStore(t)

		first, created, err := s.UpsertUser(context.Background(), &model.User{Email: "a@example.com", Name: "最初の名前"})
		if err != nil {
			t.Fatalf("1回目のUpsertUser()でエラーが発生: %v", err)
		}
		if !created {
			t.Error("1回目はcreated=trueであるべき")
		}
		if first.Timestamp != fixedNow.UnixMilli() {
			t.Errorf("Timestamp = %d, want %d", first.Timestamp, fixedNow.UnixMilli())
		}

		s.now = func() time.Time { return fixedNow.Add(time.Hour) }
		second, created, err := s.UpsertUser(context.Background(), &model.User{Email: "a@example.com", Name: "別の名前"})
		if err != nil {
			t.Fatalf("2回目のUpsertUser()でエラーが発生: %v", err)
		}
		if created {
			t.Error("2回目はcreated=falseであるべき")
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("2回目の結果が1回目と異なる (-first +second):\n%s", diff)
		}
	})

	t.Run("異なるemailでは別々のレコードが作成されること", func(t *testing.T) {
		t.Parallel()
		s := setupTestStore(t)

		a, _, err := s.UpsertUser(context.Background(), &model.User{Email: "a@example.com"})
		if err != nil {
			t.Fatalf("UpsertUser()でエラーが発生: %v", err)
		}
		b, created, err := s.UpsertUser(context.Background(), &model.User{Email: "b@example.com"})
		if err != nil {
			t.Fatalf("UpsertUser()でエラーが発生: %v", err)
		}
		if !created {
			t.Error("別のemailはcreated=trueであるべき")
		}
		if a.ID == b.ID {
			t.Errorf("IDが重複している: %s", a.ID.Hex())
		}
	})
}

// TestListBooks はListBooksを検証する。
func TestListBooks(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	dune := insertTestBook(t, s, "Dune", "fiction", "a@x.com")
	cosmos := insertTestBook(t, s, "Cosmos", "science", "b@x.com")
	hyperion := insertTestBook(t, s, "Hyperion", "fiction", "b@x.com")

	tests := []struct {
		name   string
		filter store.BookFilter
		want   []model.Book
	}{
		{name: "条件なしの場合は保存順で全件返すこと", filter: store.BookFilter{}, want: []model.Book{dune, cosmos, hyperion}},
		{name: "カテゴリで絞り込めること", filter: store.BookFilter{Category: "fiction"}, want: []model.Book{dune, hyperion}},
		{name: "登録者のemailで絞り込めること", filter: store.BookFilter{HostEmail: "b@x.com"}, want: []model.Book{cosmos, hyperion}},
		{name: "両方の条件を組み合わせられること", filter: store.BookFilter{Category: "fiction", HostEmail: "b@x.com"}, want: []model.Book{hyperion}},
		{name: "一致しない場合は空スライスを返すこと", filter: store.BookFilter{Category: "poetry"}, want: []model.Book{}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := s.ListBooks(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("ListBooks()でエラーが発生: %v", err)
			}
			if got == nil {
				t.Fatal("ListBooks()がnilを返した")
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ListBooks() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestFindAndDeleteBook はFindBookとDeleteBookを検証する。
func TestFindAndDeleteBook(t *testing.T) {
	t.Parallel()

	t.Run("保存した書籍を識別子で取得できること", func(t *testing.T) {
		t.Parallel()
		s := setupTestStore(t)
		want := insertTestBook(t, s, "Dune", "fiction", "a@x.com")

		got, err := s.FindBook(context.Background(), want.ID)
		if err != nil {
			t.Fatalf("FindBook()でエラーが発生: %v", err)
		}
		if diff := cmp.Diff(&want, got); diff != "" {
			t.Errorf("FindBook() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("削除後はErrNotFoundになること", func(t *testing.T) {
		t.Parallel()
		s := setupTestStore(t)
		b := insertTestBook(t, s, "Dune", "fiction", "a@x.com")

		n, err := s.DeleteBook(context.Background(), b.ID)
		if err != nil {
			t.Fatalf("DeleteBook()でエラーが発生: %v", err)
		}
		if n != 1 {
			t.Errorf("削除件数 = %d, want 1", n)
		}

		if _, err := s.FindBook(context.Background(), b.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("FindBook() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("存在しない識別子の削除は0件でエラーにならないこと", func(t *testing.T) {
		t.Parallel()
		s := setupTestStore(t)

		n, err := s.DeleteBook(context.Background(), model.NewID())
		if err != nil {
			t.Fatalf("DeleteBook()でエラーが発生: %v", err)
		}
		if n != 0 {
			t.Errorf("削除件数 = %d, want 0", n)
		}
	})
}

// TestPing はPingを検証する。
func TestPing(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping()でエラーが発生: %v", err)
	}
}
