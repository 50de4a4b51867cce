//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"intent-chat/ai"
	"intent-chat/errors"
	"intent-chat/moderation"
	"intent-chat/repositories"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
)

type IChatService interface {
	SendMessage(ctx context.Context, userID, message string) (Exchange, error)
	History(userID string, cursor *string) ([]repositories.ChatRecord, *string, error)
	Search(ctx context.Context, userID, terms string, limit int) ([]repositories.SearchHit, error)
}

// Exchange is the outcome of one successful chat request.
type Exchange struct {
	Message         string
	Response        string
	Intent          string
	Lang            string
	RemainingTokens int64
	Censored        bool
}

// ChatService is the request-handling façade over the trained model and the
// ledger. The predictor and responder are immutable after startup; the only
// mutation per request goes through the ledger's transactional debit.
type ChatService struct {
	predictor        ai.IntentPredictor
	responder        ai.Responder
	moderator        moderation.Moderator
	ledger           repositories.ILedgerRepository
	chats            repositories.IChatRepository
	search           repositories.ISearchRepository
	log              *slog.Logger
	messageCost      int64
	maxContentLength int
}

func NewChatService(
	predictor ai.IntentPredictor,
	responder ai.Responder,
	moderator moderation.Moderator,
	ledger repositories.ILedgerRepository,
	chats repositories.IChatRepository,
	search repositories.ISearchRepository,
	log *slog.Logger,
	messageCost int64,
	maxContentLength int,
) *ChatService {
	return &ChatService{
		predictor:        predictor,
		responder:        responder,
		moderator:        moderator,
		ledger:           ledger,
		chats:            chats,
		search:           search,
		log:              log,
		messageCost:      messageCost,
		maxContentLength: maxContentLength,
	}
}

// SendMessage runs the whole exchange: validate, moderate, predict, compose,
// then debit and record atomically. Any failed precondition returns before
// the debit, so a rejected request has no side effects.
func (s *ChatService) SendMessage(ctx context.Context, userID, message string) (Exchange, error) {
	if strings.TrimSpace(message) == "" {
		return Exchange{}, errors.ErrMessageRequired
	}
	if s.maxContentLength > 0 && len([]rune(message)) > s.maxContentLength {
		return Exchange{}, errors.ErrMessageTooLong
	}

	censored, foundWords := s.moderator.Censor(message)
	if len(foundWords) > 0 {
		s.log.Warn("Censored message", "user_id", userID, "words", len(foundWords))
	}

	info := whatlanggo.Detect(message)
	lang := info.Lang.Iso6391()

	// Prediction runs on the raw message: censor characters would only
	// destroy signal the classifier was trained on.
	intent, err := s.predictor.Predict(message)
	if err != nil {
		return Exchange{}, err
	}
	response := s.responder.Reply(intent)

	record := repositories.ChatRecord{
		ID:       uuid.New(),
		UserID:   userID,
		Message:  censored,
		Response: response,
		Intent:   intent,
		Lang:     lang,
		At:       time.Now().UTC(),
	}

	balance, err := s.ledger.DebitAndRecord(userID, s.messageCost, record)
	if err != nil {
		return Exchange{}, err
	}

	// The record is committed; indexing it is best-effort.
	if s.search != nil {
		if err := s.search.Index(record); err != nil {
			s.log.Error("Indexing chat record failed", "record_id", record.ID, "err", err)
		}
	}

	return Exchange{
		Message:         censored,
		Response:        response,
		Intent:          intent,
		Lang:            lang,
		RemainingTokens: balance,
		Censored:        len(foundWords) > 0,
	}, nil
}

func (s *ChatService) History(userID string, cursor *string) ([]repositories.ChatRecord, *string, error) {
	return s.chats.History(userID, cursor)
}

func (s *ChatService) Search(ctx context.Context, userID, terms string, limit int) ([]repositories.SearchHit, error) {
	if s.search == nil {
		return nil, nil
	}
	return s.search.Search(ctx, userID, terms, limit)
}
