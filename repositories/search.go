//go:generate go run go.uber.org/mock/mockgen -source=search.go -destination=../mocks/mock_search_repository.go -package=mocks
package repositories

import (
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"
)

type ISearchRepository interface {
	Index(record ChatRecord) error
	Search(ctx context.Context, userID, terms string, limit int) ([]SearchHit, error)
	Close() error
}

// SearchRepository maintains a full-text index over chat records so users can
// search their own history. Indexing is best-effort and happens after the
// debit transaction committed; the Badger store remains the source of truth.
type SearchRepository struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewSearchRepository(path string, log *slog.Logger) (*SearchRepository, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	return &SearchRepository{writer: writer, log: log}, nil
}

type SearchHit struct {
	RecordID string
	Content  string
	Intent   string
	Score    float64
}

func (s *SearchRepository) Index(record ChatRecord) error {
	doc := bluge.NewDocument(record.ID.String()).
		AddField(bluge.NewKeywordField("user", record.UserID)).
		AddField(bluge.NewTextField("content", record.Message+"\n"+record.Response).StoreValue()).
		AddField(bluge.NewKeywordField("intent", record.Intent).StoreValue()).
		AddField(bluge.NewDateTimeField("at", record.At))
	return s.writer.Update(doc.ID(), doc)
}

// Search matches terms against a single user's records, best score first.
func (s *SearchRepository) Search(ctx context.Context, userID, terms string, limit int) ([]SearchHit, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			s.log.Error("Closing index reader failed", "err", err)
		}
	}()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(userID).SetField("user")).
		AddMust(bluge.NewMatchQuery(terms).SetField("content"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	match, err := iterator.Next()
	for err == nil && match != nil {
		hit := SearchHit{Score: match.Score}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.RecordID = string(value)
			case "content":
				hit.Content = string(value)
			case "intent":
				hit.Intent = string(value)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}
	return hits, nil
}

func (s *SearchRepository) Close() error {
	return s.writer.Close()
}
