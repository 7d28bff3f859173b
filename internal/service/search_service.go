package service

import (
	"context"

	"chat-search-be/internal/dto"
	"chat-search-be/internal/repository/contract"
	"chat-search-be/internal/repository/specification"
	"chat-search-be/pkg/search"
)

type ISearchService interface {
	HybridSearch(ctx context.Context, query string) ([]dto.SearchResultItem, error)
	SessionMessages(ctx context.Context, sessionId string) ([]dto.SessionMessageItem, error)
}

type searchService struct {
	resolver *search.Resolver
	repo     contract.ChatMessageRepository
}

func NewSearchService(resolver *search.Resolver, repo contract.ChatMessageRepository) ISearchService {
	return &searchService{
		resolver: resolver,
		repo:     repo,
	}
}

func (s *searchService) HybridSearch(ctx context.Context, query string) ([]dto.SearchResultItem, error) {
	results, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	// Non-nil even when empty so the response encodes as [] instead of null.
	items := make([]dto.SearchResultItem, len(results))
	for i, res := range results {
		items[i] = dto.SearchResultItem{
			Id:         res.Id,
			SessionId:  res.SessionId,
			Sender:     res.Sender,
			Message:    res.Message,
			Similarity: res.Similarity,
		}
	}
	return items, nil
}

func (s *searchService) SessionMessages(ctx context.Context, sessionId string) ([]dto.SessionMessageItem, error) {
	messages, err := s.repo.FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderByMessageIndex{},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SessionMessageItem, len(messages))
	for i, m := range messages {
		items[i] = dto.SessionMessageItem{
			Id:           m.Id,
			Sender:       m.Sender,
			Message:      m.Message,
			MessageIndex: m.MessageIndex,
		}
	}
	return items, nil
}
