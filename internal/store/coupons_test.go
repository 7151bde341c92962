package store_test

import (
	"context"
	"time"

	"github.com/safar/go-shop/internal/database"
	"github.com/safar/go-shop/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *storeSuite) TestCouponLookupIgnoresCase() {
	t := s.T()
	ctx := context.Background()
	now := time.Now().UTC()

	created := s.coupon("SAVE10", 10, now.Add(-time.Hour), now.Add(time.Hour))

	for _, code := range []string{"SAVE10", "save10", "Save10"} {
		got, err := s.store.GetCouponByCode(ctx, code)
		require.NoError(t, err, code)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, 10, got.Discount)
	}

	_, err := s.store.GetCouponByCode(ctx, "SAVE11")
	assert.ErrorIs(t, err, database.ErrCouponNotFound)
}

func (s *storeSuite) TestCreateCouponRules() {
	t := s.T()
	ctx := context.Background()
	now := time.Now().UTC()

	s.coupon("SPRING", 15, now, now.Add(time.Hour))

	_, err := store.CreateCoupon(ctx, s.db, store.CreateCouponRequest{
		Code: "spring", ValidFrom: now, ValidTo: now.Add(time.Hour), Discount: 5, Active: true,
	})
	assert.ErrorIs(t, err, database.ErrCouponCodeTaken)

	_, err = store.CreateCoupon(ctx, s.db, store.CreateCouponRequest{
		Code: "TOO-MUCH", ValidFrom: now, ValidTo: now.Add(time.Hour), Discount: 101, Active: true,
	})
	assert.Error(t, err)
}

func (s *storeSuite) TestDeleteCoupon() {
	t := s.T()
	ctx := context.Background()
	now := time.Now().UTC()

	c := s.coupon("GONE", 5, now, now.Add(time.Hour))
	require.NoError(t, store.DeleteCoupon(ctx, s.db, c.ID))

	_, err := s.store.GetCoupon(ctx, c.ID)
	assert.ErrorIs(t, err, database.ErrCouponNotFound)
	assert.ErrorIs(t, store.DeleteCoupon(ctx, s.db, c.ID), database.ErrCouponNotFound)
}
