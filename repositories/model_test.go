package repositories

import (
	"testing"

	"intent-chat/errors"

	"github.com/stretchr/testify/require"
)

func TestModelRepository(t *testing.T) {
	req := require.New(t)
	repo := NewModelRepository(openTestDB(t))

	_, err := repo.Load("deadbeef")
	req.ErrorIs(err, errors.ErrModelNotFound)

	weights := []byte(`{"input_size":4}`)
	req.NoError(repo.Save("deadbeef", weights))

	loaded, err := repo.Load("deadbeef")
	req.NoError(err)
	req.Equal(weights, loaded)

	// A different corpus hash stays a miss.
	_, err = repo.Load("cafebabe")
	req.ErrorIs(err, errors.ErrModelNotFound)
}
