package service

import (
	"context"
	"errors"
	"time"

	"carecompanion-be/internal/dto"
	"carecompanion-be/internal/pkg/logger"
	"carecompanion-be/pkg/answer"
	"carecompanion-be/pkg/category"
	"carecompanion-be/pkg/events"
	"carecompanion-be/pkg/llm"
	pktNats "carecompanion-be/pkg/nats"
	"carecompanion-be/pkg/retrieval"
	"carecompanion-be/pkg/session"
	"carecompanion-be/pkg/utils"
)

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	History(ctx context.Context, sessionID string) (*dto.SessionHistoryResponse, error)
	ClearSession(ctx context.Context, sessionID string) (*dto.ClearSessionResponse, error)
}

type chatService struct {
	sessions       *session.Store
	retriever      *retrieval.Retriever
	composer       *answer.Composer
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewChatService(
	sessions *session.Store,
	retriever *retrieval.Retriever,
	composer *answer.Composer,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		sessions:       sessions,
		retriever:      retriever,
		composer:       composer,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	start := time.Now()

	sessionID := s.sessions.GetOrCreate(req.SessionId)
	cat := category.Classify(req.Message)

	history := s.toMessages(s.sessions.History(sessionID, 0))

	// Retrieval failures degrade to an unsourced answer. A health support
	// tool should never hard-fail a question because search is down.
	sources, err := s.retriever.Retrieve(ctx, retrieval.Query{
		Text:     req.Message,
		Category: cat,
	})
	if err != nil {
		if errors.Is(err, retrieval.ErrEmbeddingUnavailable) || errors.Is(err, retrieval.ErrRetrievalUnavailable) {
			s.logger.Warn("chat", "answering without knowledge sources", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
			sources = nil
		} else {
			return nil, err
		}
	}

	ans, err := s.composer.Compose(ctx, req.Message, cat, sources, history)
	if err != nil {
		// Generation failure: hand back the safe fallback and do NOT
		// record the turn pair, so a retry starts clean.
		s.logger.Error("chat", "generation failed, returning fallback", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		ans = answer.Fallback(cat)
	} else {
		s.sessions.AppendTurns(sessionID, req.Message, ans.Text)
	}

	elapsedMs := float64(time.Since(start).Microseconds()) / 1000.0

	res := &dto.ChatResponse{
		Answer:          ans.Text,
		SessionId:       sessionID,
		QueryCategory:   string(ans.Category),
		Sources:         s.toSourceDTOs(req, ans.Sources),
		ConfidenceScore: ans.Confidence,
		ResponseTimeMs:  elapsedMs,
		Disclaimer:      ans.Disclaimer,
	}

	s.publishEvent(ctx, events.NewChatCompleted(sessionID, string(ans.Category), ans.Confidence, len(ans.Sources), elapsedMs))

	return res, nil
}

func (s *chatService) History(ctx context.Context, sessionID string) (*dto.SessionHistoryResponse, error) {
	turns := s.sessions.History(sessionID, 0)
	out := make([]dto.SessionHistoryTurnDTO, len(turns))
	for i, t := range turns {
		out[i] = dto.SessionHistoryTurnDTO{
			Role:      t.Role,
			Content:   t.Content,
			Timestamp: t.Timestamp.Format(time.RFC3339),
		}
	}
	return &dto.SessionHistoryResponse{
		SessionId: sessionID,
		Turns:     out,
	}, nil
}

func (s *chatService) ClearSession(ctx context.Context, sessionID string) (*dto.ClearSessionResponse, error) {
	s.sessions.Clear(sessionID)
	s.publishEvent(ctx, events.NewSessionCleared(sessionID))
	return &dto.ClearSessionResponse{
		SessionId: sessionID,
		Cleared:   true,
	}, nil
}

func (s *chatService) toMessages(turns []session.Turn) []llm.Message {
	messages := make([]llm.Message, len(turns))
	for i, t := range turns {
		messages[i] = llm.Message{Role: t.Role, Content: t.Content}
	}
	return messages
}

func (s *chatService) toSourceDTOs(req *dto.ChatRequest, sources []retrieval.Snippet) []dto.SourceCitationDTO {
	includeSources := req.IncludeSources == nil || *req.IncludeSources
	if !includeSources {
		return []dto.SourceCitationDTO{}
	}

	out := make([]dto.SourceCitationDTO, len(sources))
	for i, src := range sources {
		excerpt := utils.TruncateRunes(src.Text, 200)
		out[i] = dto.SourceCitationDTO{
			Title:          src.Metadata["title"],
			ContentType:    src.Metadata["content_type"],
			RelevanceScore: src.CombinedScore,
			SourceURL:      src.Metadata["source_url"],
			Excerpt:        excerpt,
		}
	}
	return out
}

func (s *chatService) publishEvent(ctx context.Context, evt events.Event) {
	// Events are auxiliary: log and move on when the bus is down.
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("chat", "failed to publish event", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
	}
}
