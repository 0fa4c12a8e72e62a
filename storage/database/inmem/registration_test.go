package inmemdb

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawadhq/rawad/core/registration"
)

func newRegistrationRepo(t *testing.T) *registrationRepository {
	t.Helper()
	db, err := Open()
	require.NoError(t, err)
	return NewRegistrationRepository(db)
}

func TestRegistrationRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create assigns id and timestamp", func(t *testing.T) {
		repo := newRegistrationRepo(t)
		reg, err := repo.CreateRegistration(ctx, registration.Registration{
			FullName: "سارة الأحمد",
			Email:    "sara@example.com",
			Role:     registration.RoleMentor,
			Status:   registration.StatusPending,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, reg.ID)
		assert.False(t, reg.CreatedAt.IsZero())

		got, err := repo.GetRegistration(ctx, reg.ID)
		require.NoError(t, err)
		assert.Equal(t, reg, got)
	})

	t.Run("get unknown id", func(t *testing.T) {
		repo := newRegistrationRepo(t)
		_, err := repo.GetRegistration(ctx, "missing")
		assert.ErrorIs(t, err, registration.ErrNotFound)
	})

	t.Run("query newest first", func(t *testing.T) {
		repo := newRegistrationRepo(t)
		first, err := repo.CreateRegistration(ctx, registration.Registration{Email: "a@example.com"})
		require.NoError(t, err)
		// force distinct creation times
		repo.db.table[first.ID].CreatedAt = time.Now().UTC().Add(-time.Minute)

		second, err := repo.CreateRegistration(ctx, registration.Registration{Email: "b@example.com"})
		require.NoError(t, err)

		regs, err := repo.QueryRegistrations(ctx, registration.QueryFilter{})
		require.NoError(t, err)
		require.Len(t, regs, 2)
		assert.Equal(t, second.ID, regs[0].ID)
		assert.Equal(t, first.ID, regs[1].ID)
	})

	t.Run("query with filter", func(t *testing.T) {
		repo := newRegistrationRepo(t)
		_, err := repo.CreateRegistration(ctx, registration.Registration{Email: "mentor@example.com", Role: registration.RoleMentor})
		require.NoError(t, err)
		_, err = repo.CreateRegistration(ctx, registration.Registration{Email: "ben@example.com", Role: registration.RoleBeneficiary})
		require.NoError(t, err)

		regs, err := repo.QueryRegistrations(ctx, registration.QueryFilter{Role: registration.RoleBeneficiary})
		require.NoError(t, err)
		require.Len(t, regs, 1)
		assert.Equal(t, "ben@example.com", regs[0].Email)
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRegistrationRepo(t)
		reg, err := repo.CreateRegistration(ctx, registration.Registration{Email: "a@example.com"})
		require.NoError(t, err)

		require.NoError(t, repo.DeleteRegistrations(ctx, reg.ID))
		_, err = repo.GetRegistration(ctx, reg.ID)
		assert.ErrorIs(t, err, registration.ErrNotFound)
	})

	t.Run("subscription delivers on create and delete", func(t *testing.T) {
		repo := newRegistrationRepo(t)

		var mu sync.Mutex
		var calls [][]registration.Registration
		unsubscribe := repo.SubscribeRegistrations(func(regs []registration.Registration) {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, regs)
		})

		reg, err := repo.CreateRegistration(ctx, registration.Registration{Email: "a@example.com"})
		require.NoError(t, err)
		require.NoError(t, repo.DeleteRegistrations(ctx, reg.ID))

		mu.Lock()
		require.Len(t, calls, 2)
		assert.Len(t, calls[0], 1)
		assert.Empty(t, calls[1])
		mu.Unlock()

		unsubscribe()
		_, err = repo.CreateRegistration(ctx, registration.Registration{Email: "b@example.com"})
		require.NoError(t, err)

		mu.Lock()
		assert.Len(t, calls, 2, "no delivery after unsubscribe")
		mu.Unlock()
	})
}
