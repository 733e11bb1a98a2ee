package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/nao1215/library/pkg/httpclient"
)

// SubjectPrefix はNATSに発行するサブジェクトの接頭辞。
const SubjectPrefix = "library."

// Publisher はイベントを外部に発行する。
type Publisher interface {
	// Publish はイベントを1件発行する。
	Publish(ctx context.Context, e *Event) error
	// Close は接続を解放する。
	Close() error
}

// Subject はイベント種別に対応するNATSサブジェクトを返す。
func Subject(t Type) string {
	return SubjectPrefix + string(t)
}

// NopPublisher は何もしないPublisher。発行先が設定されていない場合に使用する。
type NopPublisher struct{}

// Publish は何もせずnilを返す。
func (NopPublisher) Publish(context.Context, *Event) error { return nil }

// Close は何もせずnilを返す。
func (NopPublisher) Close() error { return nil }

// NATSPublisher はNATSにイベントを発行するPublisher。
type NATSPublisher struct {
	// conn はNATSへの接続。
	conn *nats.Conn
}

// NewNATSPublisher はNATSサーバーに接続する。
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("library-api"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("NATSへの接続に失敗: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// Publish はイベントをJSONにしてサブジェクト library.<イベント種別> に発行する。
func (p *NATSPublisher) Publish(_ context.Context, e *Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("イベントのシリアライズに失敗: %w", err)
	}
	if err := p.conn.Publish(Subject(e.EventType), payload); err != nil {
		return fmt.Errorf("NATSへの発行に失敗: %w", err)
	}
	return nil
}

// Close は未送信のメッセージを送り切ってから接続を閉じる。
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// HTTPPublisher はHTTPのイベント受信先にイベントをPOSTするPublisher。
type HTTPPublisher struct {
	// client は受信先へのHTTPクライアント。
	client *httpclient.Client
}

// eventsPath はイベント受信先のパス。
const eventsPath = "/api/v1/events"

// NewHTTPPublisher はbaseURLの /api/v1/events にイベントを送信するPublisherを生成する。
func NewHTTPPublisher(baseURL string, timeout time.Duration) *HTTPPublisher {
	return &HTTPPublisher{client: httpclient.New(baseURL, timeout)}
}

// Publish はイベントをPOSTする。
func (p *HTTPPublisher) Publish(ctx context.Context, e *Event) error {
	return p.client.PostJSON(ctx, eventsPath, e, nil)
}

// Close は何もしない。
func (p *HTTPPublisher) Close() error { return nil }
