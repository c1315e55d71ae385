package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVector(t *testing.T) {
	assert.Equal(t, "[]", formatVector(nil))
	assert.Equal(t, "[0.500000,-1.250000]", formatVector([]float32{0.5, -1.25}))
}

func TestLegalChunkRepositoryRejectsWrongDimensions(t *testing.T) {
	repo := NewLegalChunkRepository(nil)

	_, err := repo.SearchSimilar(context.Background(), make([]float32, 3), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "768")

	err = repo.Upsert(context.Background(), nil, make([]float32, 10))
	require.Error(t, err)
}
