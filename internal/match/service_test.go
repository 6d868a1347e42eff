package match_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"pawpair/backend/internal/match"
	"pawpair/backend/internal/models"
	"pawpair/backend/internal/storage/storagetest"
	"pawpair/backend/pkg/apperrors"
)

func newRegistry(t *testing.T) *match.Registry {
	return match.NewRegistry(storagetest.NewService(t))
}

func TestCreateOrGetMatch_Idempotent(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	a, b := uuid.NewString(), uuid.NewString()

	m1, created, err := r.CreateOrGetMatch(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.MatchActive, m1.Status)
	assert.True(t, m1.IsParticipant(a))
	assert.True(t, m1.IsParticipant(b))

	m2, created, err := r.CreateOrGetMatch(ctx, b, a)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, m1.ID, m2.ID)
}

func TestCreateOrGetMatch_ConcurrentBothDirections(t *testing.T) {
	s := storagetest.NewService(t)
	r := match.NewRegistry(s)
	ctx := context.Background()
	a, b := uuid.NewString(), uuid.NewString()

	const n = 24
	ids := make([]string, n)
	createdFlags := make([]bool, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			from, to := a, b
			if i%2 == 1 {
				from, to = b, a
			}
			m, created, err := r.CreateOrGetMatch(ctx, from, to)
			if err != nil {
				return err
			}
			ids[i] = m.ID
			createdFlags[i] = created
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, id := range ids {
		assert.Equal(t, ids[0], id, "every caller sees the same match")
	}
	winners := 0
	for _, c := range createdFlags {
		if c {
			winners++
		}
	}
	assert.Equal(t, 1, winners)

	var rows int64
	require.NoError(t, s.DB.Model(&models.Match{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestCreateOrGetMatch_RejectsBadInput(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	a := uuid.NewString()

	_, _, err := r.CreateOrGetMatch(ctx, a, a)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTarget)

	_, _, err = r.CreateOrGetMatch(ctx, a, "not-a-uuid")
	assert.ErrorIs(t, err, apperrors.ErrInvalidID)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	m, _, err := r.CreateOrGetMatch(ctx, uuid.NewString(), uuid.NewString())
	require.NoError(t, err)

	got, err := r.UpdateStatus(ctx, m.ID, models.MatchActive)
	require.NoError(t, err, "same status is a no-op")
	assert.Equal(t, models.MatchActive, got.Status)

	got, err = r.UpdateStatus(ctx, m.ID, models.MatchEnded)
	require.NoError(t, err)
	assert.Equal(t, models.MatchEnded, got.Status)

	got, err = r.UpdateStatus(ctx, m.ID, models.MatchEnded)
	require.NoError(t, err)
	assert.Equal(t, models.MatchEnded, got.Status)

	_, err = r.UpdateStatus(ctx, m.ID, models.MatchActive)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition, "ENDED is terminal")

	_, err = r.UpdateStatus(ctx, m.ID, models.MatchStatus("PAUSED"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)

	_, err = r.UpdateStatus(ctx, uuid.NewString(), models.MatchEnded)
	assert.ErrorIs(t, err, apperrors.ErrMatchNotFound)
}

func TestUpdateStatusFor_OnlyParticipants(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	a, b, stranger := uuid.NewString(), uuid.NewString(), uuid.NewString()
	m, _, err := r.CreateOrGetMatch(ctx, a, b)
	require.NoError(t, err)

	_, err = r.UpdateStatusFor(ctx, m.ID, stranger, models.MatchEnded)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	got, err := r.UpdateStatusFor(ctx, m.ID, b, models.MatchEnded)
	require.NoError(t, err)
	assert.Equal(t, models.MatchEnded, got.Status)
}

func TestListForUser(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	a, b, c := uuid.NewString(), uuid.NewString(), uuid.NewString()

	ab, _, err := r.CreateOrGetMatch(ctx, a, b)
	require.NoError(t, err)
	ac, _, err := r.CreateOrGetMatch(ctx, c, a)
	require.NoError(t, err)
	_, err = r.UpdateStatus(ctx, ac.ID, models.MatchEnded)
	require.NoError(t, err)

	all, err := r.ListForUser(ctx, a, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active := models.MatchActive
	onlyActive, err := r.ListForUser(ctx, a, &active)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, ab.ID, onlyActive[0].ID)

	bogus := models.MatchStatus("x")
	_, err = r.ListForUser(ctx, a, &bogus)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}
