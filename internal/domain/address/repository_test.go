package address

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"myhometech/internal/database"
)

type requestRef struct {
	ID        int64 `gorm:"primaryKey"`
	AddressID int64
	Status    string
}

func (requestRef) TableName() string { return "service_requests" }

func newRepo(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	db, err := database.OpenTest(t.Name(), &Address{}, &requestRef{})
	require.NoError(t, err)
	return NewRepository(db), db
}

func primaryIDs(t *testing.T, repo *Repository, clientID int64) []int64 {
	t.Helper()
	items, err := repo.ListByClient(context.Background(), clientID)
	require.NoError(t, err)
	var ids []int64
	for _, a := range items {
		if a.IsPrimary {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func TestRepository_FirstAddressIsPrimary(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	first := &Address{ClientID: 1, Street: "Main 1", City: "Berlin"}
	require.NoError(t, repo.Create(ctx, first))
	assert.True(t, first.IsPrimary)

	second := &Address{ClientID: 1, Street: "Side 2", City: "Berlin"}
	require.NoError(t, repo.Create(ctx, second))
	assert.False(t, second.IsPrimary)
	assert.Equal(t, []int64{first.ID}, primaryIDs(t, repo, 1))

	third := &Address{ClientID: 1, Street: "New 3", City: "Berlin", IsPrimary: true}
	require.NoError(t, repo.Create(ctx, third))
	assert.Equal(t, []int64{third.ID}, primaryIDs(t, repo, 1))
}

func TestRepository_SetPrimaryIsExclusiveAndOwned(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	a := &Address{ClientID: 1, Street: "A", City: "X"}
	b := &Address{ClientID: 1, Street: "B", City: "X"}
	other := &Address{ClientID: 2, Street: "C", City: "Y"}
	for _, addr := range []*Address{a, b, other} {
		require.NoError(t, repo.Create(ctx, addr))
	}

	got, err := repo.SetPrimary(ctx, b.ID, 1)
	require.NoError(t, err)
	assert.True(t, got.IsPrimary)
	assert.Equal(t, []int64{b.ID}, primaryIDs(t, repo, 1))
	assert.Equal(t, []int64{other.ID}, primaryIDs(t, repo, 2))

	_, err = repo.SetPrimary(ctx, other.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	owned, err := repo.OwnedBy(ctx, other.ID, 1)
	require.NoError(t, err)
	assert.False(t, owned)
}

func TestRepository_DeletePromotesAndGuardsOpenRequests(t *testing.T) {
	repo, db := newRepo(t)
	ctx := context.Background()

	a := &Address{ClientID: 1, Street: "A", City: "X"}
	b := &Address{ClientID: 1, Street: "B", City: "X"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	require.NoError(t, db.Create(&requestRef{AddressID: b.ID, Status: "scheduled"}).Error)
	assert.ErrorIs(t, repo.Delete(ctx, b.ID, 1), ErrInUse)

	require.NoError(t, repo.Delete(ctx, a.ID, 1))
	assert.Equal(t, []int64{b.ID}, primaryIDs(t, repo, 1))

	assert.ErrorIs(t, repo.Delete(ctx, a.ID, 1), ErrNotFound)
}

func TestService_UpdateOwnedOnly(t *testing.T) {
	repo, _ := newRepo(t)
	svc := NewService(repo)
	ctx := context.Background()

	a, err := svc.Create(ctx, 1, CreateRequest{Street: " Main 1 ", City: "Berlin"})
	require.NoError(t, err)
	assert.Equal(t, "Main 1", a.Street)

	city := "Hamburg"
	_, err = svc.Update(ctx, 2, a.ID, UpdateRequest{City: &city})
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := svc.Update(ctx, 1, a.ID, UpdateRequest{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Hamburg", updated.City)

	stored, err := repo.GetOwned(ctx, a.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "Hamburg", stored.City)
	assert.True(t, stored.IsPrimary)
}
