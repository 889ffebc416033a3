package rating

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myhometech/internal/database"
)

func TestRepository_UniquePerRequestAndSummary(t *testing.T) {
	db, err := database.OpenTest(t.Name(), Model())
	require.NoError(t, err)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Rating{RaterID: 10, RatedID: 20, ServiceRequestID: 1, Score: 5, Comment: "fast"}))
	require.NoError(t, repo.Create(ctx, &Rating{RaterID: 11, RatedID: 20, ServiceRequestID: 2, Score: 2}))

	err = repo.Create(ctx, &Rating{RaterID: 10, RatedID: 20, ServiceRequestID: 1, Score: 1})
	assert.ErrorIs(t, err, ErrAlreadyRated)

	sum, err := repo.Summary(ctx, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, sum.Count)
	assert.InDelta(t, 3.5, sum.Average, 0.001)

	empty, err := repo.Summary(ctx, 21)
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.Average)

	list, err := repo.ListForRated(ctx, 20, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	comments := []string{list[0].Comment, list[1].Comment}
	assert.ElementsMatch(t, []string{"fast", ""}, comments)

	exists, err := repo.ExistsForRequest(ctx, 2)
	require.NoError(t, err)
	assert.True(t, exists)
}
