// Package message はオーナメントメッセージのドメインロジックを提供する。
package message

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nalindotexe/deco-my-tree/internal/disclosure"
	"github.com/nalindotexe/deco-my-tree/internal/metrics"
	"github.com/nalindotexe/deco-my-tree/internal/model"
	"github.com/nalindotexe/deco-my-tree/internal/repository"
	"github.com/nalindotexe/deco-my-tree/internal/security"
)

// Service はメッセージ管理のサービス層。
// 作成・一覧・削除に加え、閲覧者ごとの開示判定を提供する。
type Service struct {
	messageRepo repository.MessageRepository
	treeRepo    repository.TreeRepository
	sanitizer   security.TextSanitizerService
	collector   metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	messageRepo repository.MessageRepository,
	treeRepo repository.TreeRepository,
	sanitizer security.TextSanitizerService,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		messageRepo: messageRepo,
		treeRepo:    treeRepo,
		sanitizer:   sanitizer,
		collector:   collector,
	}
}

// OpenedMessage はメッセージと閲覧者向けの開示判定の組。
// Messageのフィールドをそのままクライアントに返してはならない。
// 返してよい内容はDisclosureが決める。
type OpenedMessage struct {
	Message    *model.Message
	Disclosure disclosure.Disclosure
}

// CreateMessage は訪問者の飾り付けを受け付ける。
// 対象ツリーが存在しない場合はTREE_NOT_FOUNDを返す。
// 送り主名は20文字に切り詰め、空ならAnonymousにする。
// 本文は必須で300文字以内。色はパレット外なら赤にフォールバックする。
// 送り主名・本文はサニタイズしてから保存する。
func (s *Service) CreateMessage(ctx context.Context, treeID, sender, content, color string) (*model.Message, error) {
	tree, err := s.treeRepo.FindByID(ctx, treeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find tree: %w", err)
	}
	if tree == nil {
		return nil, model.NewTreeNotFoundError(treeID)
	}

	content = s.sanitizer.Sanitize(content)
	if content == "" {
		return nil, model.NewEmptyMessageError()
	}
	if utf8.RuneCountInString(content) > model.MaxContentLength {
		return nil, model.NewMessageTooLongError(model.MaxContentLength)
	}

	sender = truncateRunes(s.sanitizer.Sanitize(sender), model.MaxSenderLength)
	if sender == "" {
		sender = model.DefaultSender
	}

	message := &model.Message{
		ID:        uuid.New().String(),
		TreeID:    treeID,
		Sender:    sender,
		Content:   content,
		Color:     model.ParseColor(color),
		CreatedAt: time.Now(),
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	s.collector.RecordMessageCreated(string(message.Color))
	slog.Info("message created",
		slog.String("message_id", message.ID),
		slog.String("tree_id", treeID),
		slog.String("color", string(message.Color)),
	)

	return message, nil
}

// OpenAll はツリーの全メッセージを閲覧者向けに開示判定付きで返す。
// viewerIDが空文字列の場合はゲストとして扱う。
// 判定は呼び出しごとに新たに行う。ロック状態が壁時計に依存するためである。
func (s *Service) OpenAll(ctx context.Context, treeID, viewerID string, now time.Time) ([]OpenedMessage, error) {
	tree, err := s.treeRepo.FindByID(ctx, treeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find tree: %w", err)
	}
	if tree == nil {
		return nil, model.NewTreeNotFoundError(treeID)
	}

	messages, err := s.messageRepo.ListByTreeID(ctx, treeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	isOwner := viewerID != "" && viewerID == tree.OwnerID

	opened := make([]OpenedMessage, 0, len(messages))
	for _, msg := range messages {
		d := disclosure.Evaluate(msg, isOwner, now)
		s.collector.RecordDisclosure(string(d.Reason))
		opened = append(opened, OpenedMessage{Message: msg, Disclosure: d})
	}

	return opened, nil
}

// Open は1通のメッセージを閲覧者向けに開示判定付きで返す。
// viewerIDが空文字列の場合はゲストとして扱う。
func (s *Service) Open(ctx context.Context, messageID, viewerID string, now time.Time) (*OpenedMessage, error) {
	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to find message: %w", err)
	}
	if message == nil {
		return nil, model.NewMessageNotFoundError(messageID)
	}

	tree, err := s.treeRepo.FindByID(ctx, message.TreeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find tree: %w", err)
	}
	if tree == nil {
		return nil, model.NewTreeNotFoundError(message.TreeID)
	}

	isOwner := viewerID != "" && viewerID == tree.OwnerID
	d := disclosure.Evaluate(message, isOwner, now)
	s.collector.RecordDisclosure(string(d.Reason))

	return &OpenedMessage{Message: message, Disclosure: d}, nil
}

// DeleteMessage はメッセージを削除する。
// 削除を要求できるのはメッセージが属するツリーの所有者のみ。
// Senderは認証されない表示テキストのため、認可判定には使わない。
func (s *Service) DeleteMessage(ctx context.Context, messageID, requesterID string) error {
	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to find message: %w", err)
	}
	if message == nil {
		return model.NewMessageNotFoundError(messageID)
	}

	tree, err := s.treeRepo.FindByID(ctx, message.TreeID)
	if err != nil {
		return fmt.Errorf("failed to find tree: %w", err)
	}
	if tree == nil {
		return model.NewTreeNotFoundError(message.TreeID)
	}

	if requesterID == "" || requesterID != tree.OwnerID {
		s.collector.RecordDeleteDenied()
		slog.Warn("delete denied",
			slog.String("message_id", messageID),
			slog.String("requester_id", requesterID),
		)
		return model.NewDeleteForbiddenError()
	}

	deleted, err := s.messageRepo.DeleteByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if !deleted {
		return model.NewMessageNotFoundError(messageID)
	}

	s.collector.RecordMessageDeleted()
	slog.Info("message deleted",
		slog.String("message_id", messageID),
		slog.String("tree_id", message.TreeID),
	)

	return nil
}

// truncateRunes はsを最大n文字（rune単位）に切り詰める。
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
