package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := OpenSQLStore(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLStoreLeads(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	lead := models.Lead{
		ID: uuid.New(), ChatID: 10, Username: "ana", Language: "es",
		Name: "Ana", Phone: "+34600111222", City: "Madrid", Note: "rooftop, 5kW",
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.SaveLead(ctx, lead))
	assert.Error(t, store.SaveLead(ctx, lead), "duplicate id")

	n, err := store.CountLeads(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLStoreCalculations(t *testing.T) {
	store := openTestStore(t)
	err := store.SaveCalculation(context.Background(), models.Calculation{
		ChatID: 1, Language: "en", Type: models.CalcLoan, Input: "8000 5 8", Result: "162.21", CreatedAt: time.Now(),
	})
	assert.NoError(t, err)
}

func TestSQLStoreRecentDialogOrder(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.SaveDialogMessage(ctx, 3, "en", models.Message{Role: models.RoleUser, Content: fmt.Sprint(i)}))
	}
	require.NoError(t, store.SaveDialogMessage(ctx, 4, "en", models.Message{Role: models.RoleUser, Content: "other chat"}))

	got, err := store.RecentDialog(ctx, 3, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2", got[0].Content)
	assert.Equal(t, "4", got[2].Content)
}

func TestSQLStoreUpsertUser(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.UpsertUser(ctx, models.User{ChatID: 1, Username: "a", Language: "ru", LastSeen: time.Now()}))
	require.NoError(t, store.UpsertUser(ctx, models.User{ChatID: 1, Username: "a", Language: "en", LastSeen: time.Now()}))
	require.NoError(t, store.UpsertUser(ctx, models.User{ChatID: 2, LastSeen: time.Now()}))

	n, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestOpenSQLStoreRejectsUnknownDriver(t *testing.T) {
	_, err := OpenSQLStore("postgres", "")
	assert.Error(t, err)
}
