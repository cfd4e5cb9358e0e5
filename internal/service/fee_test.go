package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNetWithdrawal(t *testing.T) {
	tests := []struct {
		name       string
		gross      string
		feePercent string
		want       string
	}{
		{"10% fee", "100", "10", "90"},
		{"Zero amount", "0", "10", "0"},
		{"Zero fee", "100", "0", "100"},
		{"Fractional fee", "250", "2.5", "243.75"},
		{"Small amount keeps precision", "0.03", "10", "0.027"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NetWithdrawal(dec(tt.gross), dec(tt.feePercent))
			assert.True(t, got.Equal(dec(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestDailyAndTotalReward(t *testing.T) {
	// 1000 质押，日息 0.5%，锁仓 30 天
	daily := DailyReward(dec("1000"), dec("0.5"))
	assert.True(t, daily.Equal(dec("5")), "got %s", daily)

	total := TotalReward(dec("1000"), dec("0.5"), 30)
	assert.True(t, total.Equal(dec("150")), "got %s", total)
}

func TestCommissionSchedule_Rates(t *testing.T) {
	schedule := DefaultCommissionSchedule()

	tests := []struct {
		level int
		want  string
	}{
		{1, "5"},
		{2, "3"},
		{3, "2"},
		{4, "1"},
		{5, "0.5"},
		{0, "0"},  // 表外
		{6, "0"},  // 表外
		{-1, "0"}, // 表外
	}
	for _, tt := range tests {
		got := schedule.RateForLevel(tt.level)
		assert.True(t, got.Equal(dec(tt.want)), "level %d: got %s, want %s", tt.level, got, tt.want)
	}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, schedule.Levels())
}

func TestCommissionSchedule_CommissionFor(t *testing.T) {
	schedule := DefaultCommissionSchedule()

	// 200 × 0.5% = 1
	got := schedule.CommissionFor(5, dec("200"))
	assert.True(t, got.Equal(dec("1")), "got %s", got)

	// 表外层级佣金为 0
	got = schedule.CommissionFor(9, dec("200"))
	assert.True(t, got.IsZero())
}
