package repositories

import (
	goerrors "errors"

	"intent-chat/errors"

	"github.com/dgraph-io/badger/v4"
)

type IModelRepository interface {
	Save(corpusHash string, weights []byte) error
	Load(corpusHash string) ([]byte, error)
}

// ModelRepository stores trained network weights keyed by the corpus hash.
// A restart with an unchanged corpus loads the weights instead of retraining.
type ModelRepository struct {
	db *badger.DB
}

func NewModelRepository(db *badger.DB) IModelRepository {
	return &ModelRepository{db: db}
}

func modelKey(corpusHash string) []byte {
	return []byte("model:" + corpusHash)
}

func (m ModelRepository) Save(corpusHash string, weights []byte) error {
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(modelKey(corpusHash), weights)
	})
}

func (m ModelRepository) Load(corpusHash string) ([]byte, error) {
	var weights []byte
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(modelKey(corpusHash))
		if goerrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrModelNotFound
		}
		if err != nil {
			return err
		}
		weights, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return weights, nil
}
