package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nalindotexe/deco-my-tree/internal/message"
	"github.com/nalindotexe/deco-my-tree/internal/middleware"
	"github.com/nalindotexe/deco-my-tree/internal/model"
)

// MessageServiceInterface はメッセージハンドラーが必要とするサービスインターフェース。
type MessageServiceInterface interface {
	// CreateMessage は訪問者の飾り付けを受け付ける。
	CreateMessage(ctx context.Context, treeID, sender, content, color string) (*model.Message, error)
	// OpenAll はツリーの全メッセージを閲覧者向けに開示判定付きで返す。
	OpenAll(ctx context.Context, treeID, viewerID string, now time.Time) ([]message.OpenedMessage, error)
	// Open は1通のメッセージを閲覧者向けに開示判定付きで返す。
	Open(ctx context.Context, messageID, viewerID string, now time.Time) (*message.OpenedMessage, error)
	// DeleteMessage はメッセージを削除する。所有者のみ許可。
	DeleteMessage(ctx context.Context, messageID, requesterID string) error
}

// MessageHandler はオーナメントメッセージのHTTPハンドラー。
// 開示判定が壁時計に依存するため、時刻源を注入して受け取る。
type MessageHandler struct {
	service MessageServiceInterface
	clock   func() time.Time
}

// NewMessageHandler はMessageHandlerを生成する。
func NewMessageHandler(service MessageServiceInterface, clock func() time.Time) *MessageHandler {
	if clock == nil {
		clock = time.Now
	}
	return &MessageHandler{
		service: service,
		clock:   clock,
	}
}

// createMessageRequest はメッセージ投稿リクエストのボディ。
type createMessageRequest struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
	Color   string `json:"color"`
}

// createdMessageResponse は投稿直後のAPIレスポンス。
// 本文は含めない。投稿後の閲覧は開示判定を通す。
type createdMessageResponse struct {
	ID        string    `json:"id"`
	TreeID    string    `json:"tree_id"`
	Sender    string    `json:"sender"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// openedMessageResponse は開示判定済みメッセージのAPIレスポンス。
// 本文と送り主名はDisclosureが許可した形でのみ含まれる。
type openedMessageResponse struct {
	ID        string    `json:"id"`
	TreeID    string    `json:"tree_id"`
	Color     string    `json:"color"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Locked    bool      `json:"locked"`
	Reason    string    `json:"reason"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateMessage はメッセージ投稿を処理する。ゲストにも開かれている。
// POST /api/trees/:id/messages
func (h *MessageHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	treeID := chi.URLParam(r, "id")

	var req createMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	msg, err := h.service.CreateMessage(r.Context(), treeID, req.Sender, req.Content, req.Color)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createdMessageResponse{
		ID:        msg.ID,
		TreeID:    msg.TreeID,
		Sender:    msg.Sender,
		Color:     string(msg.Color),
		CreatedAt: msg.CreatedAt,
	})
}

// ListMessages はツリーの全メッセージを開示判定付きで返す。
// GET /api/trees/:id/messages
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	treeID := chi.URLParam(r, "id")
	viewerID := middleware.ViewerIDFromContext(r.Context())

	opened, err := h.service.OpenAll(r.Context(), treeID, viewerID, h.clock())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]openedMessageResponse, 0, len(opened))
	for _, om := range opened {
		responses = append(responses, toOpenedMessageResponse(om))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]openedMessageResponse{"messages": responses})
}

// GetMessage は1通のメッセージを開示判定付きで返す。
// GET /api/messages/:id
func (h *MessageHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	messageID := chi.URLParam(r, "id")
	viewerID := middleware.ViewerIDFromContext(r.Context())

	opened, err := h.service.Open(r.Context(), messageID, viewerID, h.clock())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toOpenedMessageResponse(*opened))
}

// DeleteMessage はメッセージ削除を処理する。ツリー所有者のみ許可。
// DELETE /api/messages/:id
func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	requesterID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	messageID := chi.URLParam(r, "id")

	if err := h.service.DeleteMessage(r.Context(), messageID, requesterID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toOpenedMessageResponse は開示判定済みメッセージからAPIレスポンスに変換する。
func toOpenedMessageResponse(om message.OpenedMessage) openedMessageResponse {
	return openedMessageResponse{
		ID:        om.Message.ID,
		TreeID:    om.Message.TreeID,
		Color:     string(om.Message.Color),
		Title:     om.Disclosure.Title,
		Body:      om.Disclosure.Body,
		Locked:    om.Disclosure.Locked,
		Reason:    string(om.Disclosure.Reason),
		Icon:      string(om.Disclosure.Icon),
		CreatedAt: om.Message.CreatedAt,
	}
}
