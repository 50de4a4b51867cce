//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"time"

	"intent-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(username, hashedPassword string, initialTokens int64) (string, error)
	GetUserByUsername(username string) (User, error)
	GetUserByID(id string) (User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the stored account record. Tokens is the usage-credit balance,
// debited by the ledger on every chat exchange and never allowed below zero.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Roles        []string  `json:"roles"`
	Tokens       int64     `json:"tokens"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateUser persists a new account with its initial credit in a single
// transaction, so registration either fully happens or not at all.
// It returns the newly generated user ID.
func (u UserRepository) CreateUser(username, hashedPassword string, initialTokens int64) (string, error) {
	newID := uuid.New().String()
	user := User{
		ID:           newID,
		Username:     username,
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
		Tokens:       initialTokens,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := userKey(username)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		// Secondary index: the JWT only carries the user ID.
		return txn.Set(userIDKey(newID), []byte(username))
	})
	if err != nil {
		return "", err
	}
	return newID, nil
}

func (u UserRepository) GetUserByUsername(username string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		return loadUser(txn, username, &user)
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (u UserRepository) GetUserByID(id string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		username, err := resolveUsername(txn, id)
		if err != nil {
			return err
		}
		return loadUser(txn, username, &user)
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func userKey(username string) []byte {
	return []byte("user:" + username)
}

func userIDKey(id string) []byte {
	return []byte("uid:" + id)
}

func resolveUsername(txn *badger.Txn, id string) (string, error) {
	item, err := txn.Get(userIDKey(id))
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return "", errors.ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	var username string
	err = item.Value(func(val []byte) error {
		username = string(val)
		return nil
	})
	return username, err
}

func loadUser(txn *badger.Txn, username string, user *User) error {
	item, err := txn.Get(userKey(username))
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrUserNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, user)
	})
}
