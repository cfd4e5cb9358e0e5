package store

import (
	"context"
	"testing"
	"time"

	"staking-core/internal/model"
	"staking-core/pkg/cache"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(now time.Time) (*PendingStakeStore, cache.Cache) {
	c := cache.NewMemoryCache(time.Hour, time.Hour)
	s := NewPendingStakeStore(c)
	s.now = func() time.Time { return now }
	return s, c
}

func testIntent(userID uint64, createdAt time.Time) *model.PendingStakeIntent {
	return &model.PendingStakeIntent{
		TxHash:      "0xabc123",
		PackageID:   3,
		UserID:      userID,
		PackageName: "Gold",
		Amount:      decimal.NewFromInt(1000),
		Timestamp:   createdAt.UnixMilli(),
	}
}

func TestPendingStakeStore_PutGetClear(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := newTestStore(base)
	ctx := context.Background()

	intent := testIntent(7, base)
	require.NoError(t, s.Put(ctx, intent))

	got, err := s.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "0xabc123", got.TxHash)
	assert.Equal(t, uint64(3), got.PackageID)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(1000)), "金额应无损往返")

	require.NoError(t, s.Clear(ctx, 7))
	got, err = s.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPendingStakeStore_GetMissing(t *testing.T) {
	s, _ := newTestStore(time.Now())

	got, err := s.Get(context.Background(), 42)
	// 不存在不是错误
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPendingStakeStore_TTLBoundary(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("23h59m 仍可读", func(t *testing.T) {
		s, _ := newTestStore(base)
		require.NoError(t, s.Put(ctx, testIntent(1, base)))

		s.now = func() time.Time { return base.Add(23*time.Hour + 59*time.Minute) }
		got, err := s.Get(ctx, 1)
		require.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("恰好 24h 视为过期", func(t *testing.T) {
		s, _ := newTestStore(base)
		require.NoError(t, s.Put(ctx, testIntent(1, base)))

		s.now = func() time.Time { return base.Add(TTL) }
		got, err := s.Get(ctx, 1)
		assert.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestPendingStakeStore_ExpiredIsLazilyPurged(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s, _ := newTestStore(base)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, testIntent(9, base)))

	s.now = func() time.Time { return base.Add(25 * time.Hour) }
	_, err := s.Get(ctx, 9)
	require.Error(t, err)

	// 过期记录在第一次读取时就地清除，第二次读取应是普通 miss
	got, err := s.Get(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPendingStakeStore_LastWriterWins(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s, _ := newTestStore(base)
	ctx := context.Background()

	first := testIntent(5, base)
	first.TxHash = "0xfirst"
	require.NoError(t, s.Put(ctx, first))

	second := testIntent(5, base.Add(time.Minute))
	second.TxHash = "0xsecond"
	require.NoError(t, s.Put(ctx, second))

	got, err := s.Get(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "0xsecond", got.TxHash, "同一用户覆盖写，读到最后一次")
}

func TestPendingStakeStore_Sweep(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s, _ := newTestStore(base)
	ctx := context.Background()

	// 一条已过期，一条还在有效期内
	require.NoError(t, s.Put(ctx, testIntent(1, base.Add(-25*time.Hour))))
	require.NoError(t, s.Put(ctx, testIntent(2, base.Add(-time.Hour))))

	expired, err := s.Sweep(ctx)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, uint64(1), expired[0].UserID)

	// 有效的那条不受影响
	got, err := s.Get(ctx, 2)
	require.NoError(t, err)
	assert.NotNil(t, got)

	// 过期的那条已被清除
	got, err = s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}
