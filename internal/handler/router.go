package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nalindotexe/deco-my-tree/internal/middleware"
)

// HealthChecker はヘルスチェックで依存先の疎通を確認する関数。
type HealthChecker func(ctx context.Context) error

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ツリー
	TreeService TreeServiceInterface
	BaseURL     string

	// メッセージ
	MessageService MessageServiceInterface
	Clock          func() time.Time // 開示判定用の時刻源

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → CORS → Session(Optional/Required) → RateLimit
//
// ツリー閲覧とメッセージ投稿・開封はゲストにも開かれているため
// 任意セッションで通し、所有者操作のみ必須セッションを課す。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	treeHandler := NewTreeHandler(deps.TreeService, deps.BaseURL)
	messageHandler := NewMessageHandler(deps.MessageService, deps.Clock)

	// --- 運用エンドポイント（レート制限の外） ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 認証ルート ---

	r.Route("/auth", func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- ゲストにも開かれたルート ---
	// ミドルウェアスタック: OptionalSession → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewOptionalSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ツリー閲覧（共有リンクから誰でも開ける。PINは所有者にのみ開示）
		r.Get("/api/trees/{id}", treeHandler.GetTree)

		// メッセージ開封（開示判定はサービス層で閲覧者ごとに適用）
		r.Get("/api/trees/{id}/messages", messageHandler.ListMessages)
		r.Get("/api/messages/{id}", messageHandler.GetMessage)

		// メッセージ投稿（投稿専用レート制限を追加。接続元IP単位）
		r.With(deps.RateLimiter.MessagePostMiddleware()).
			Post("/api/trees/{id}/messages", messageHandler.CreateMessage)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: RequiredSession → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRequiredSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ツリー管理
		r.Post("/api/trees", treeHandler.CreateTree)
		r.Get("/api/users/me/trees", treeHandler.ListMine)

		// メッセージ削除（所有者判定はサービス層）
		r.Delete("/api/messages/{id}", messageHandler.DeleteMessage)
	})

	return r
}

// newHealthHandler はヘルスチェックのHTTPハンドラーを生成する。
// checkerがnilの場合はプロセス生存のみを報告する。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			if err := checker(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
