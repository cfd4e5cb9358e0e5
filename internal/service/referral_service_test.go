package service

import (
	"context"
	"testing"

	"staking-core/pkg/errno"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferralService_CheckGraph(t *testing.T) {
	ctx := context.Background()

	t.Run("HealthyForest", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := NewReferralService(db, &fakeBackend{})

		mock.ExpectQuery(`SELECT \* FROM "referral_relationships"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "referrer_id", "referred_id"}).
				AddRow(1, 1, 2).
				AddRow(2, 1, 3))
		mock.ExpectQuery(`SELECT \* FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).
				AddRow(1, "A").
				AddRow(2, "B").
				AddRow(3, "C"))

		issues, err := svc.CheckGraph(ctx)
		require.NoError(t, err)
		assert.Empty(t, issues)
	})

	t.Run("CycleReported", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := NewReferralService(db, &fakeBackend{})

		// 2 <-> 3 互为推荐人
		mock.ExpectQuery(`SELECT \* FROM "referral_relationships"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "referrer_id", "referred_id"}).
				AddRow(1, 2, 3).
				AddRow(2, 3, 2))
		mock.ExpectQuery(`SELECT \* FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).
				AddRow(2, "B").
				AddRow(3, "C"))

		issues, err := svc.CheckGraph(ctx)
		assert.ErrorIs(t, err, errno.ErrMalformedReferralGraph)
		assert.NotEmpty(t, issues)
	})
}

func TestReferralService_CommissionBreakdown(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReferralService(db, &fakeBackend{})

	// 树: 1 -> {2, 3}, 2 -> 4
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id" = \$1`).
		WithArgs(uint64(1), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(1, "A"))
	mock.ExpectQuery(`SELECT \* FROM "referral_relationships"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "referrer_id", "referred_id"}).
			AddRow(1, 1, 2).
			AddRow(2, 1, 3).
			AddRow(3, 2, 4))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).
			AddRow(1, "A").
			AddRow(2, "B").
			AddRow(3, "C").
			AddRow(4, "D"))
	mock.ExpectQuery(`SELECT \* FROM "referral_rewards" WHERE user_id = \$1`).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "from_user_id", "level", "amount"}).
			AddRow(1, 1, 2, 1, "50").
			AddRow(2, 1, 3, 1, "30").
			AddRow(3, 1, 4, 2, "20"))
	mock.ExpectQuery(`SELECT \* FROM "stakings" WHERE user_id IN`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "stake_amount"}).
			AddRow(1, 2, "1000").
			AddRow(2, 3, "1000").
			AddRow(3, 4, "500"))

	breakdown, err := svc.CommissionBreakdown(context.Background(), 1, DefaultCommissionSchedule())
	require.NoError(t, err)
	require.Len(t, breakdown, 5)

	l1 := breakdown[0]
	assert.Equal(t, 1, l1.Level)
	assert.Equal(t, 2, l1.Count)
	assert.True(t, l1.TotalEarnings.Equal(decimal.NewFromInt(80)))
	assert.True(t, l1.Invested.Equal(decimal.NewFromInt(2000)))
	// 2000 × 5% = 100
	assert.True(t, l1.Commission.Equal(decimal.NewFromInt(100)), "got %s", l1.Commission)

	l2 := breakdown[1]
	assert.Equal(t, 2, l2.Level)
	assert.Equal(t, 1, l2.Count)
	assert.True(t, l2.Invested.Equal(decimal.NewFromInt(500)))
	// 500 × 3% = 15
	assert.True(t, l2.Commission.Equal(decimal.NewFromInt(15)), "got %s", l2.Commission)

	// 没有下级的层照常展示，佣金为 0
	for _, entry := range breakdown[2:] {
		assert.Equal(t, 0, entry.Count)
		assert.True(t, entry.Commission.IsZero())
	}

	require.NoError(t, mock.ExpectationsWereMet())
}
