// 図書館管理APIサーバーのエントリポイント。
// 設定の読み込み、データベースとイベント発行先への接続を行い、
// SIGINT/SIGTERMを受け取るまでHTTPサーバーを実行する。
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/library/internal/config"
	"github.com/nao1215/library/internal/library"
	"github.com/nao1215/library/internal/store"
	"github.com/nao1215/library/internal/store/mongostore"
	"github.com/nao1215/library/internal/store/sqlitestore"
	"github.com/nao1215/library/pkg/event"
)

func main() {
	if err := run(); err != nil {
		slog.Error("サーバーが異常終了しました", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	logger := initLogger(cfg)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Error("データベース接続の切断に失敗", "error", err)
		}
	}()
	logger.Info("データベースに接続しました", "driver", cfg.DBDriver)

	publisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("イベント発行先の切断に失敗", "error", err)
		}
	}()

	server, err := library.NewServer(library.Config{
		Secret:          cfg.AccessTokenSecret,
		SecureCookies:   cfg.SecureCookies(),
		AllowedOrigins:  cfg.AllowedOrigins(),
		ProtectedRoutes: cfg.ProtectedRoutes(),
		DBTimeout:       cfg.DBTimeout,
	}, st, publisher, logger)
	if err != nil {
		return fmt.Errorf("サーバーの初期化に失敗: %w", err)
	}

	logger.Info("図書館管理APIを起動します",
		"port", cfg.Port,
		"env", cfg.AppEnv,
		"protected_routes", cfg.ProtectedRoutes(),
	)
	return server.Run(ctx, fmt.Sprintf(":%d", cfg.Port), cfg.ShutdownTimeout)
}

// openStore は設定されたドライバーでデータベースに接続する。
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	openCtx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
	defer cancel()

	switch cfg.DBDriver {
	case config.DriverMongo:
		st, err := mongostore.Open(openCtx, cfg.ResolvedMongoURI(), cfg.DBName)
		if err != nil {
			return nil, fmt.Errorf("MongoDBへの接続に失敗: %w", err)
		}
		return st, nil
	default:
		st, err := sqlitestore.Open(openCtx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("SQLiteデータベースのオープンに失敗: %w", err)
		}
		return st, nil
	}
}

// newPublisher は設定に応じたイベント発行先を生成する。NATSが優先される。
func newPublisher(cfg *config.Config) (event.Publisher, error) {
	switch {
	case cfg.NATSURL != "":
		p, err := event.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	case cfg.EventSinkURL != "":
		return event.NewHTTPPublisher(cfg.EventSinkURL, cfg.DBTimeout), nil
	default:
		return event.NopPublisher{}, nil
	}
}

// initLogger は設定に従って構造化ロガーを初期化し、デフォルトロガーに設定する。
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.LogFormat == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel は文字列のログレベルをslog.Levelに変換する。未知の値はinfoとする。
func parseLogLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
