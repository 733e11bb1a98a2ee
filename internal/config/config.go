// Package config は環境変数からアプリケーション設定を読み込む。
//
// 起動時に .env と .env.local が存在すれば環境変数として読み込み、
// その後に構造体タグに従って値を解析する。既に設定されている環境変数は上書きしない。
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	// DriverSQLite は組み込みSQLiteバックエンド。
	DriverSQLite = "sqlite"
	// DriverMongo はMongoDBバックエンド。
	DriverMongo = "mongo"
)

// Config はAPIサーバーの全設定。
type Config struct {
	// アプリケーション
	Port   int    `env:"PORT" envDefault:"8000"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	// セッショントークンの署名鍵
	AccessTokenSecret string `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`

	// データベース
	DBDriver   string        `env:"DB_DRIVER" envDefault:"sqlite"`
	MongoURI   string        `env:"MONGO_URI"`
	DBUser     string        `env:"DB_USER"`
	DBPass     string        `env:"DB_PASS"`
	MongoHost  string        `env:"MONGO_HOST" envDefault:"cluster0.qenm5ah.mongodb.net"`
	DBName     string        `env:"DB_NAME" envDefault:"LibraryManagement"`
	SQLitePath string        `env:"SQLITE_PATH" envDefault:"library.db"`
	DBTimeout  time.Duration `env:"DB_TIMEOUT" envDefault:"10s"`

	// カンマ区切りの許可オリジン
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173"`
	// カンマ区切りの認証必須ルート名
	AuthProtectedRoutes string `env:"AUTH_PROTECTED_ROUTES"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// ロギング
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// ドメインイベントの発行先。両方空の場合は発行しない。
	NATSURL      string `env:"NATS_URL"`
	EventSinkURL string `env:"EVENT_SINK_URL"`
}

// Load は .env ファイルと環境変数から設定を読み込み、検証する。
func Load() (*Config, error) {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s の読み込みに失敗: %w", name, err)
		}
	}
	return Parse()
}

// Parse は環境変数のみから設定を読み込み、検証する。
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("設定の解析に失敗: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は設定値の組み合わせを検証する。
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORTが範囲外です: %d", c.Port)
	}
	switch c.DBDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATHが設定されていません")
		}
	case DriverMongo:
		if c.MongoURI == "" && (c.DBUser == "" || c.DBPass == "") {
			return errors.New("MONGO_URI、またはDB_USERとDB_PASSの両方を設定してください")
		}
		if c.DBName == "" {
			return errors.New("DB_NAMEが設定されていません")
		}
	default:
		return fmt.Errorf("DB_DRIVERは %q または %q を指定してください: %q", DriverSQLite, DriverMongo, c.DBDriver)
	}
	if c.DBTimeout <= 0 {
		return fmt.Errorf("DB_TIMEOUTは正の値を指定してください: %s", c.DBTimeout)
	}
	return nil
}

// IsProduction は本番環境で動作しているかを返す。
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// SecureCookies はセッションCookieに Secure と SameSite=None を付与するかを返す。
// 本番環境ではフロントエンドが別オリジンで配信されるため有効にする。
func (c *Config) SecureCookies() bool {
	return c.IsProduction()
}

// AllowedOrigins はCORSの許可オリジンを返す。
func (c *Config) AllowedOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// ProtectedRoutes は認証必須のルート名を返す。
func (c *Config) ProtectedRoutes() []string {
	return splitList(c.AuthProtectedRoutes)
}

// ResolvedMongoURI は接続に使用するMongoDBのURIを返す。
// MONGO_URIが空の場合は DB_USER、DB_PASS、MONGO_HOST からAtlasのURIを組み立てる。
func (c *Config) ResolvedMongoURI() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(c.DBUser, c.DBPass),
		Host:     c.MongoHost,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority&appName=Cluster0",
	}
	return u.String()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
