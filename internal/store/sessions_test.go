package store_test

import (
	"context"
	"time"

	"github.com/safar/go-shop/internal/database"
	"github.com/safar/go-shop/internal/session"
	"github.com/safar/go-shop/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *storeSuite) TestSessionRoundTripKeepsCartOrder() {
	t := s.T()
	ctx := context.Background()
	sessions := store.NewSessionStore(s.db, time.Hour)

	const blob = `{"9":{"quantity":1,"price":"1.00"},"2":{"quantity":3,"price":"4.50"}}`
	sess, err := session.Decode("round-trip", []byte(`{"cart":`+blob+`,"coupon_id":4}`))
	require.NoError(t, err)
	require.NoError(t, sessions.Save(ctx, sess))

	loaded, err := sessions.Load(ctx, "round-trip")
	require.NoError(t, err)
	raw, ok := loaded.Raw("cart")
	require.True(t, ok)
	assert.Equal(t, blob, string(raw))

	var couponID int64
	ok, err = loaded.Get("coupon_id", &couponID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(4), couponID)

	require.NoError(t, sessions.Delete(ctx, "round-trip"))
	_, err = sessions.Load(ctx, "round-trip")
	assert.ErrorIs(t, err, database.ErrSessionNotFound)
}

func (s *storeSuite) TestExpiredSessions() {
	t := s.T()
	ctx := context.Background()

	expired := store.NewSessionStore(s.db, -time.Minute)
	require.NoError(t, expired.Save(ctx, session.New("stale")))

	live := store.NewSessionStore(s.db, time.Hour)
	require.NoError(t, live.Save(ctx, session.New("fresh")))

	_, err := live.Load(ctx, "stale")
	assert.ErrorIs(t, err, database.ErrSessionNotFound)

	purged, err := live.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = live.Load(ctx, "fresh")
	assert.NoError(t, err)
}
