package service

import "github.com/shopspring/decimal"

// 金额一律走 decimal，精度损失在这里属于正确性 bug 而不是显示问题。

var hundred = decimal.NewFromInt(100)

// DailyReward 每日收益: stakeAmount * dailyYieldPercent / 100
func DailyReward(stakeAmount, dailyYieldPercent decimal.Decimal) decimal.Decimal {
	return stakeAmount.Mul(dailyYieldPercent).Div(hundred)
}

// TotalReward 锁仓期总收益: DailyReward * days
func TotalReward(stakeAmount, dailyYieldPercent decimal.Decimal, days int) decimal.Decimal {
	return DailyReward(stakeAmount, dailyYieldPercent).Mul(decimal.NewFromInt(int64(days)))
}

// NetWithdrawal 提现净额: gross * (1 - feePercent/100)
// 净额从不落库，始终按当前费率在展示时推导。
func NetWithdrawal(gross, feePercent decimal.Decimal) decimal.Decimal {
	return gross.Mul(decimal.NewFromInt(1).Sub(feePercent.Div(hundred)))
}
