package service

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CommissionSchedule 固定的 层级 -> 佣金率(%) 表
// 表外层级一律按 0 计，不报错。
type CommissionSchedule struct {
	rates map[int]decimal.Decimal
}

// DefaultCommissionSchedule 平台默认五级佣金表
func DefaultCommissionSchedule() *CommissionSchedule {
	return NewCommissionSchedule(map[int]decimal.Decimal{
		1: decimal.NewFromInt(5),
		2: decimal.NewFromInt(3),
		3: decimal.NewFromInt(2),
		4: decimal.NewFromInt(1),
		5: decimal.NewFromFloat(0.5),
	})
}

func NewCommissionSchedule(rates map[int]decimal.Decimal) *CommissionSchedule {
	copied := make(map[int]decimal.Decimal, len(rates))
	for level, rate := range rates {
		copied[level] = rate
	}
	return &CommissionSchedule{rates: copied}
}

// RateForLevel 返回该层级的佣金率(%)，表外层级返回 0
func (s *CommissionSchedule) RateForLevel(level int) decimal.Decimal {
	if rate, ok := s.rates[level]; ok {
		return rate
	}
	return decimal.Zero
}

// CommissionFor 按层级佣金率计算金额: amount * rate / 100
func (s *CommissionSchedule) CommissionFor(level int, amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(s.RateForLevel(level)).Div(decimal.NewFromInt(100))
}

// Levels 返回升序排列的已配置层级
func (s *CommissionSchedule) Levels() []int {
	levels := make([]int, 0, len(s.rates))
	for level := range s.rates {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	return levels
}
