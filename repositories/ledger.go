//go:generate go run go.uber.org/mock/mockgen -source=ledger.go -destination=../mocks/mock_ledger_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	goerrors "errors"
	"log/slog"

	"intent-chat/errors"

	"github.com/dgraph-io/badger/v4"
)

// debitRetries bounds how often a conflicting debit transaction is replayed.
// Each retry re-reads the balance, so a genuinely insufficient account fails
// deterministically instead of spinning.
const debitRetries = 8

type ILedgerRepository interface {
	Balance(userID string) (int64, error)
	Debit(userID string, amount int64) (int64, error)
	DebitAndRecord(userID string, amount int64, record ChatRecord) (int64, error)
}

// LedgerRepository guards the only mutable shared state of the system: the
// per-user token balance. Badger transactions give serializable
// read-check-write semantics; concurrent debits for the same user conflict at
// commit and are retried against the fresh balance, so the balance can never
// go negative and can never be double-spent.
type LedgerRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewLedgerRepository(db *badger.DB, log *slog.Logger) ILedgerRepository {
	return &LedgerRepository{db: db, log: log}
}

func (l LedgerRepository) Balance(userID string) (int64, error) {
	var balance int64
	err := l.db.View(func(txn *badger.Txn) error {
		user, err := loadUserByID(txn, userID)
		if err != nil {
			return err
		}
		balance = user.Tokens
		return nil
	})
	return balance, err
}

// Debit subtracts amount from the user's balance, failing with
// ErrInsufficientCredit when the balance does not cover it.
func (l LedgerRepository) Debit(userID string, amount int64) (int64, error) {
	return l.debit(userID, amount, nil)
}

// DebitAndRecord performs the debit and appends the chat record in ONE
// transaction. A stored record therefore always corresponds to exactly one
// successful debit: no orphaned debits, no orphaned records.
func (l LedgerRepository) DebitAndRecord(userID string, amount int64, record ChatRecord) (int64, error) {
	return l.debit(userID, amount, &record)
}

func (l LedgerRepository) debit(userID string, amount int64, record *ChatRecord) (int64, error) {
	var newBalance int64
	for attempt := 0; ; attempt++ {
		err := l.db.Update(func(txn *badger.Txn) error {
			user, err := loadUserByID(txn, userID)
			if err != nil {
				return err
			}
			if user.Tokens < amount {
				return errors.ErrInsufficientCredit
			}
			user.Tokens -= amount
			newBalance = user.Tokens

			data, err := json.Marshal(user)
			if err != nil {
				return err
			}
			if err := txn.Set(userKey(user.Username), data); err != nil {
				return err
			}
			if record != nil {
				encoded, err := json.Marshal(record)
				if err != nil {
					return err
				}
				return txn.Set(chatKey(*record), encoded)
			}
			return nil
		})
		if goerrors.Is(err, badger.ErrConflict) && attempt < debitRetries {
			l.log.Debug("Debit conflicted, retrying", "user_id", userID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return 0, err
		}
		return newBalance, nil
	}
}

func loadUserByID(txn *badger.Txn, userID string) (User, error) {
	username, err := resolveUsername(txn, userID)
	if err != nil {
		return User{}, err
	}
	var user User
	if err := loadUser(txn, username, &user); err != nil {
		return User{}, err
	}
	return user, nil
}
