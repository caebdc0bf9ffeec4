package memory_test

import (
	"context"
	"crm-rep/internal/domain/customer"
	"crm-rep/internal/domain/user"
	"crm-rep/internal/infrastructure/database/memory"
	"crm-rep/internal/pkg/apperrors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Users()

	u := user.NewUser("ayse", "Ayşe", "Yılmaz", "")
	require.NoError(t, repo.Save(ctx, u))
	assert.Equal(t, int64(1), u.ID)

	found, err := repo.FindByUsername(ctx, "AYSE")
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.ID)

	_, err = repo.FindByID(ctx, 99)
	assert.ErrorIs(t, err, user.ErrNotFound)

	err = repo.Save(ctx, user.NewUser("ayse", "", "", ""))
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestStore_Customers(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Customers()

	first := &customer.Customer{Username: "acme"}
	second := &customer.Customer{Username: "globex"}
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	assert.ErrorIs(t, repo.Save(ctx, &customer.Customer{Username: "acme"}), customer.ErrDuplicateUsername)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "globex", all[0].Username, "newest first")

	all[0].Username = "mutated"
	again, err := repo.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "globex", again.Username, "callers get copies")

	_, err = repo.FindByID(ctx, 99)
	assert.ErrorIs(t, err, customer.ErrNotFound)
}

func TestStore_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Customers()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Save(ctx, &customer.Customer{Username: string(rune('a' + i))})
		}(i)
	}
	wg.Wait()

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestStore_Seed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	users := user.NewService(store.Users(), bcrypt.MinCost, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, store.Seed(ctx, users, memory.DefaultDemoUsers()))
	require.NoError(t, store.Seed(ctx, users, memory.DefaultDemoUsers()), "seeding twice is harmless")

	u, err := users.Authenticate(ctx, "demo", "demo1234")
	require.NoError(t, err)
	assert.Equal(t, "Ayşe Yılmaz", u.DisplayName())

	refs := store.References()
	items, err := refs.List(ctx, customer.PaymentTypes)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	ok, err := refs.Exists(ctx, customer.SubscriptionDurations, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = refs.Exists(ctx, customer.SubscriptionDurations, 9)
	require.NoError(t, err)
	assert.False(t, ok)
}
