package event

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestNew はイベント生成を検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("イベントのフィールドが設定されること", func(t *testing.T) {
		t.Parallel()

		data := BookCreatedData{Title: "Dune", Category: "SciFi", HostEmail: "a@x.io"}
		e, err := New("652f1c0a9b1e8a3d4c5b6a79", AggregateTypeBook, TypeBookCreated, data)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if e.ID == "" {
			t.Error("IDが空です")
		}
		if e.AggregateID != "652f1c0a9b1e8a3d4c5b6a79" {
			t.Errorf("AggregateID = %q", e.AggregateID)
		}
		if e.AggregateType != AggregateTypeBook {
			t.Errorf("AggregateType = %q, want %q", e.AggregateType, AggregateTypeBook)
		}
		if e.EventType != TypeBookCreated {
			t.Errorf("EventType = %q, want %q", e.EventType, TypeBookCreated)
		}
		if e.CreatedAt.IsZero() {
			t.Error("CreatedAtがゼロ値です")
		}

		got, err := DecodeData[BookCreatedData](e)
		if err != nil {
			t.Fatalf("DecodeData() error = %v", err)
		}
		if diff := cmp.Diff(data, *got); diff != "" {
			t.Errorf("DecodeData() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("シリアライズできないデータの場合はエラーを返すこと", func(t *testing.T) {
		t.Parallel()

		if _, err := New("id", AggregateTypeBook, TypeBookCreated, make(chan int)); err == nil {
			t.Error("エラーが返されるべきです")
		}
	})

	t.Run("IDは呼び出しごとに異なること", func(t *testing.T) {
		t.Parallel()

		a, _ := New("id", AggregateTypeUser, TypeUserRegistered, UserRegisteredData{Email: "a@x.io"})
		b, _ := New("id", AggregateTypeUser, TypeUserRegistered, UserRegisteredData{Email: "a@x.io"})
		if a.ID == b.ID {
			t.Errorf("IDが重複しています: %s", a.ID)
		}
	})
}

// TestDecodeData_不正なJSON はデシリアライズ失敗を検証する。
func TestDecodeData_不正なJSON(t *testing.T) {
	t.Parallel()

	e := &Event{Data: json.RawMessage(`{"deleted_count": "x"}`)}
	if _, err := DecodeData[BookDeletedData](e); err == nil {
		t.Error("エラーが返されるべきです")
	}
}

// TestSubject はサブジェクト名の組み立てを検証する。
func TestSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Type
		want string
	}{
		{name: "BookCreated", in: TypeBookCreated, want: "library.BookCreated"},
		{name: "BookDeleted", in: TypeBookDeleted, want: "library.BookDeleted"},
		{name: "UserRegistered", in: TypeUserRegistered, want: "library.UserRegistered"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Subject(tt.in); got != tt.want {
				t.Errorf("Subject() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestHTTPPublisher はHTTPの受信先への送信を検証する。
func TestHTTPPublisher(t *testing.T) {
	t.Parallel()

	t.Run("イベントが /api/v1/events にPOSTされること", func(t *testing.T) {
		t.Parallel()

		received := make(chan Event, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/v1/events" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			var e Event
			if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			received <- e
			w.WriteHeader(http.StatusAccepted)
		}))
		t.Cleanup(server.Close)

		p := NewHTTPPublisher(server.URL, 0)
		t.Cleanup(func() { _ = p.Close() })

		e, err := New("id-1", AggregateTypeBook, TypeBookDeleted, BookDeletedData{DeletedCount: 1})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if err := p.Publish(context.Background(), e); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}

		got := <-received
		if got.ID != e.ID || got.EventType != TypeBookDeleted {
			t.Errorf("受信イベント = %+v", got)
		}
	})

	t.Run("受信先がエラーを返した場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)

		p := NewHTTPPublisher(server.URL, 0)
		e, _ := New("id-1", AggregateTypeBook, TypeBookDeleted, BookDeletedData{})
		if err := p.Publish(context.Background(), e); err == nil {
			t.Error("エラーが返されるべきです")
		}
	})
}

// TestNopPublisher は何もしないPublisherを検証する。
func TestNopPublisher(t *testing.T) {
	t.Parallel()

	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), &Event{}); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

// TestNewNATSPublisher_接続失敗 は到達できないNATSサーバーへの接続を検証する。
func TestNewNATSPublisher_接続失敗(t *testing.T) {
	t.Parallel()

	if _, err := NewNATSPublisher("nats://127.0.0.1:1"); err == nil {
		t.Error("エラーが返されるべきです")
	}
}
