package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprint-tracker/internal/model"
)

func TestFromEmployee_DropsPassword(t *testing.T) {
	s := FromEmployee("sid", model.Employee{EmpID: "E1", Name: "Asha", Role: "manager", Password: "pw"})
	assert.Equal(t, "E1", s.EmpID)
	assert.True(t, s.IsManager())
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Session{ID: "a", EmpID: "E1"}, time.Minute))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "E1", got.EmpID)

	now = now.Add(time.Minute)
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, Session{ID: "b"}, time.Minute))
	require.NoError(t, store.Delete(ctx, "b"))
	_, err = store.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
}
