package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nalindotexe/deco-my-tree/internal/middleware"
	"github.com/nalindotexe/deco-my-tree/internal/model"
)

// TreeServiceInterface はツリーハンドラーが必要とするサービスインターフェース。
type TreeServiceInterface interface {
	// CreateTree は新しいツリーを作成する。
	CreateTree(ctx context.Context, ownerID, name, pin string) (*model.Tree, error)
	// GetTree は指定IDのツリーを取得する。
	GetTree(ctx context.Context, treeID string) (*model.Tree, error)
	// ListByOwner は所有者のツリー一覧を新しい順に返す。
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Tree, error)
}

// TreeHandler はツリー管理のHTTPハンドラー。
type TreeHandler struct {
	service TreeServiceInterface
	baseURL string // 共有リンクの生成に使う
}

// NewTreeHandler はTreeHandlerを生成する。
func NewTreeHandler(service TreeServiceInterface, baseURL string) *TreeHandler {
	return &TreeHandler{
		service: service,
		baseURL: baseURL,
	}
}

// createTreeRequest はツリー作成リクエストのボディ。
type createTreeRequest struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

// treeResponse はツリー情報のAPIレスポンス。
// PINはツリー所有者のレスポンスにのみ含める。共有リンクから開く
// ゲストにバックアップアクセスPINを見せてはならない。
type treeResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Theme     string    `json:"theme"`
	PIN       string    `json:"pin,omitempty"`
	ShareURL  string    `json:"share_url"`
	CreatedAt time.Time `json:"created_at"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// CreateTree はツリー作成を処理する。
// POST /api/trees
func (h *TreeHandler) CreateTree(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createTreeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	tree, err := h.service.CreateTree(r.Context(), ownerID, req.Name, req.PIN)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(h.toTreeResponse(tree, true))
}

// GetTree はツリー詳細を取得する。共有リンクから誰でも開ける。
// GET /api/trees/:id
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	treeID := chi.URLParam(r, "id")

	tree, err := h.service.GetTree(r.Context(), treeID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// PINは所有者にのみ開示する
	isOwner := middleware.ViewerIDFromContext(r.Context()) == tree.OwnerID

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.toTreeResponse(tree, isOwner))
}

// ListMine は認証済みアカウントのツリー一覧を返す。
// GET /api/users/me/trees
func (h *TreeHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	trees, err := h.service.ListByOwner(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]treeResponse, 0, len(trees))
	for _, tree := range trees {
		responses = append(responses, h.toTreeResponse(tree, true))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]treeResponse{"trees": responses})
}

// --- ヘルパー関数 ---

// toTreeResponse はmodel.TreeからAPIレスポンスに変換する。
// includePINがfalseの場合、PINフィールドは省略される。
func (h *TreeHandler) toTreeResponse(tree *model.Tree, includePIN bool) treeResponse {
	resp := treeResponse{
		ID:        tree.ID,
		OwnerID:   tree.OwnerID,
		Name:      tree.Name,
		Theme:     tree.Theme,
		ShareURL:  h.baseURL + "/?treeId=" + url.QueryEscape(tree.ID),
		CreatedAt: tree.CreatedAt,
	}
	if includePIN {
		resp.PIN = tree.PIN
	}
	return resp
}

// newInvalidRequestError はリクエストボディ解析失敗のエラーを生成する。
func newInvalidRequestError() *model.APIError {
	return &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "Failed to parse the request body.",
		Category: "validation",
		Action:   "Send a valid JSON request body.",
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "An internal error occurred.",
		Category: "system",
		Action:   "Please wait a moment and try again.",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeAuthFailed, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeUsernameTaken:
		return http.StatusConflict
	case model.ErrCodeTreeNotFound, model.ErrCodeMessageNotFound:
		return http.StatusNotFound
	case model.ErrCodeDeleteForbidden:
		return http.StatusForbidden
	case model.ErrCodeInvalidTreeName, model.ErrCodeInvalidPIN,
		model.ErrCodeEmptyMessage, model.ErrCodeMessageTooLong:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
