package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/library/internal/store"
	"github.com/nao1215/library/pkg/apierror"
	"github.com/nao1215/library/pkg/event"
	"github.com/nao1215/library/pkg/middleware"
)

// LivenessMessage は GET / が返す死活監視用のテキスト。
const LivenessMessage = "Library management  Server.."

// DefaultDBTimeout はリクエストごとのデータベース操作のタイムアウトの既定値。
const DefaultDBTimeout = 10 * time.Second

// RouteName は認証ゲートの付与対象を指定するためのルート名。
type RouteName string

const (
	RouteUpsertUser    RouteName = "upsert_user"
	RouteListBooks     RouteName = "list_books"
	RouteGetBook       RouteName = "get_book"
	RouteListHostBooks RouteName = "list_host_books"
	RouteDeleteBook    RouteName = "delete_book"
	RouteCreateBook    RouteName = "create_book"
	RouteAuthIssue     RouteName = "auth_issue"
	RouteAuthRevoke    RouteName = "auth_revoke"
)

// Config はサーバーの動作設定。
type Config struct {
	// Secret はセッショントークンの署名鍵。
	Secret string
	// SecureCookies がtrueの場合、セッションCookieに Secure と SameSite=None を付与する。
	SecureCookies bool
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string
	// ProtectedRoutes は認証ゲートを付与するルート名。
	ProtectedRoutes []string
	// DBTimeout はリクエストごとのデータベース操作のタイムアウト。0以下の場合は DefaultDBTimeout。
	DBTimeout time.Duration
}

// Server は図書館管理APIのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// store は永続化層。
	store store.Store
	// publisher はドメインイベントの発行先。
	publisher event.Publisher
	// logger は構造化ロガー。
	logger *slog.Logger
	// secret はセッショントークンの署名鍵。
	secret string
	// secureCookies はCookieのSecure属性の有無。
	secureCookies bool
	// dbTimeout はデータベース操作のタイムアウト。
	dbTimeout time.Duration
	// protected は認証ゲートを付与するルートの集合。
	protected map[RouteName]bool
	// now は現在時刻を返す関数。テストで差し替える。
	now func() time.Time
}

// route はルーティングテーブルの1エントリ。
type route struct {
	name    RouteName
	method  string
	path    string
	handler gin.HandlerFunc
}

// NewServer は新しいサーバーを生成する。publisherがnilの場合はイベントを発行しない。
// ProtectedRoutesに未知のルート名が含まれる場合はエラーを返す。
func NewServer(cfg Config, st store.Store, publisher event.Publisher, logger *slog.Logger) (*Server, error) {
	if cfg.Secret == "" {
		return nil, errors.New("署名鍵が設定されていません")
	}
	if st == nil {
		return nil, errors.New("ストアが設定されていません")
	}
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DBTimeout <= 0 {
		cfg.DBTimeout = DefaultDBTimeout
	}

	s := &Server{
		store:         st,
		publisher:     publisher,
		logger:        logger,
		secret:        cfg.Secret,
		secureCookies: cfg.SecureCookies,
		dbTimeout:     cfg.DBTimeout,
		protected:     make(map[RouteName]bool, len(cfg.ProtectedRoutes)),
		now:           time.Now,
	}

	known := make(map[RouteName]bool)
	for _, r := range s.routes() {
		known[r.name] = true
	}
	for _, name := range cfg.ProtectedRoutes {
		if !known[RouteName(name)] {
			return nil, fmt.Errorf("未知のルート名です: %q", name)
		}
		s.protected[RouteName(name)] = true
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	s.router = router
	s.setupRoutes()

	return s, nil
}

// Handler はサーバーのHTTPハンドラーを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はaddrでHTTPサーバーを起動する。ctxがキャンセルされると新規の接続を止め、
// 処理中のリクエストをshutdownTimeoutまで待ってから終了する。
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("サーバーを起動します", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("サーバーの起動に失敗: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("シャットダウンを開始します")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("シャットダウンに失敗: %w", err)
	}
	s.logger.Info("サーバーを停止しました")
	return nil
}

// routes はルーティングテーブルを返す。
func (s *Server) routes() []route {
	return []route{
		{name: RouteUpsertUser, method: http.MethodPut, path: "/user", handler: s.handleUpsertUser()},
		{name: RouteListBooks, method: http.MethodGet, path: "/books", handler: s.handleListBooks()},
		{name: RouteGetBook, method: http.MethodGet, path: "/book/:id", handler: s.handleGetBook()},
		{name: RouteListHostBooks, method: http.MethodGet, path: "/listing-books/:email", handler: s.handleListHostBooks()},
		{name: RouteDeleteBook, method: http.MethodDelete, path: "/book/:id", handler: s.handleDeleteBook()},
		{name: RouteCreateBook, method: http.MethodPost, path: "/book", handler: s.handleCreateBook()},
		{name: RouteAuthIssue, method: http.MethodPost, path: "/jwt", handler: s.handleIssueToken()},
		{name: RouteAuthRevoke, method: http.MethodGet, path: "/logout", handler: s.handleRevokeToken()},
	}
}

// setupRoutes はルーティングを設定する。認証ゲートは設定されたルートにのみ付与する。
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleLiveness())
	s.router.GET("/health", s.handleHealth())

	for _, r := range s.routes() {
		handlers := make([]gin.HandlerFunc, 0, 2)
		if s.protected[r.name] {
			handlers = append(handlers, middleware.JWTAuth(s.secret))
		}
		handlers = append(handlers, r.handler)
		s.router.Handle(r.method, r.path, handlers...)
	}
}

// handleLiveness は死活監視用のテキストを返すハンドラを返す。
func (s *Server) handleLiveness() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, LivenessMessage)
	}
}

// handleHealth はデータベースへの疎通を確認するハンドラを返す。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := s.dbContext(c)
		defer cancel()

		if err := s.store.Ping(ctx); err != nil {
			s.logger.WarnContext(ctx, "データベースへの疎通確認に失敗", "error", err)
			apierror.Abort(c, http.StatusServiceUnavailable, apierror.CodeUnavailable, "データベースに接続できません")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "library"})
	}
}

// dbContext はリクエストのコンテキストにデータベース操作のタイムアウトを設定する。
func (s *Server) dbContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.dbTimeout)
}

// abortStoreError はデータベース操作の失敗をログに出力し、500を返す。
func (s *Server) abortStoreError(c *gin.Context, err error, message string) {
	s.logger.ErrorContext(c.Request.Context(), message,
		"error", err,
		"request_id", middleware.GetRequestID(c),
	)
	_ = c.Error(err)
	apierror.Abort(c, http.StatusInternalServerError, apierror.CodeInternal, message)
}

// abortInvalidInput はリクエストの解析・検証の失敗に対して400を返す。
func abortInvalidInput(c *gin.Context, err error) {
	_ = c.Error(err)
	apierror.Abort(c, http.StatusBadRequest, apierror.CodeInvalidInput, "リクエストが不正です: "+err.Error())
}
