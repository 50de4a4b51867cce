//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IChatRepository interface {
	Append(record ChatRecord) error
	History(userID string, cursor *string) ([]ChatRecord, *string, error)
}

type ChatRepository struct {
	db           *badger.DB
	log          *slog.Logger
	limitRecords *int
}

func NewChatRepository(db *badger.DB, log *slog.Logger, limitRecords *int) ChatRepository {
	return ChatRepository{db: db, log: log, limitRecords: limitRecords}
}

// ChatRecord is one completed exchange: the user's message, the composed
// response and the predicted intent. Records are append-only; nothing in the
// system ever mutates or deletes them.
type ChatRecord struct {
	ID       uuid.UUID `json:"id"`
	UserID   string    `json:"user_id"`
	Message  string    `json:"message"`
	Response string    `json:"response"`
	Intent   string    `json:"intent"`
	Lang     string    `json:"lang,omitempty"`
	At       time.Time `json:"at"`
}

// chatKey formats "chat:{user_id}:{timestamp_padded}:{uuid}" so that:
//  1. a prefix scan per user returns records in chronological order
//     (19-digit zero padding keeps lexicographic order correct), and
//  2. the UUID disambiguates two records landing on the same nanosecond.
func chatKey(record ChatRecord) []byte {
	return []byte(fmt.Sprintf("chat:%s:%019d:%s",
		record.UserID,
		record.At.UnixNano(),
		record.ID,
	))
}

// Append persists a record outside of any debit. The gateway normally goes
// through LedgerRepository.DebitAndRecord instead; this exists for imports
// and tests.
func (c ChatRepository) Append(record ChatRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chatKey(record), data)
	})
}

// History retrieves a user's records newest first using a reverse prefix
// scan. The returned cursor is the key suffix of the last record and can be
// passed back to continue the scan; pagination size comes from limitRecords.
func (c ChatRepository) History(userID string, cursor *string) ([]ChatRecord, *string, error) {
	var rawRecords [][]byte
	var lastKey string
	err := c.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("chat:%s:", userID)
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past any possible timestamp, then walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if c.limitRecords != nil && len(rawRecords) == *c.limitRecords {
				c.log.Debug(fmt.Sprintf("Maximum of %d records reached", *c.limitRecords))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefixStr):])
			err := item.Value(func(value []byte) error {
				rawRecords = append(rawRecords, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	records := make([]ChatRecord, 0, len(rawRecords))
	for _, raw := range rawRecords {
		var record ChatRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, nil, err
		}
		records = append(records, record)
	}
	return records, &lastKey, nil
}
