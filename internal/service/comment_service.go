package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/avolkov/eventory/internal/domain"
)

const maxCommentLen = 2000

type CommentService struct {
	store domain.CommentStore
}

func NewCommentService(store domain.CommentStore) *CommentService {
	return &CommentService{store: store}
}

func validateCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: comment text is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return "", fmt.Errorf("%w: comment text exceeds %d characters", domain.ErrValidation, maxCommentLen)
	}
	return text, nil
}

func (s *CommentService) Create(ctx context.Context, authorID, eventID int64, text string) (domain.Comment, error) {
	text, err := validateCommentText(text)
	if err != nil {
		return domain.Comment{}, err
	}
	return s.store.CreateComment(ctx, domain.Comment{EventID: eventID, AuthorID: authorID, Text: text})
}

func (s *CommentService) Update(ctx context.Context, authorID, commentID int64, text string) (domain.Comment, error) {
	text, err := validateCommentText(text)
	if err != nil {
		return domain.Comment{}, err
	}
	return s.store.UpdateComment(ctx, authorID, commentID, text)
}

func (s *CommentService) Delete(ctx context.Context, authorID, commentID int64) error {
	return s.store.DeleteComment(ctx, authorID, commentID)
}

func (s *CommentService) DeleteAdmin(ctx context.Context, commentID int64) error {
	return s.store.DeleteCommentAdmin(ctx, commentID)
}

func (s *CommentService) ListByEvent(ctx context.Context, eventID int64, from, size int) ([]domain.Comment, error) {
	return s.store.ListCommentsByEvent(ctx, eventID, from, size)
}
