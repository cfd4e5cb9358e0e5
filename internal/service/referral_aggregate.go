package service

import "github.com/shopspring/decimal"

// LevelStats 单层聚合结果
type LevelStats struct {
	Count         int             `json:"count"`
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
}

// ReferralStats 推荐网络聚合结果，每次查询重算，从不增量维护
type ReferralStats struct {
	TotalReferrals int                 `json:"totalReferrals"`
	ByLevel        map[int]*LevelStats `json:"byLevel"`
}

// AggregateLevels 深度优先展开森林，按层聚合人数与收益
// earnings: 节点用户 -> 已知收益；聚合满足交换律，遍历顺序不影响结果。
// 根 (level 0) 不计入统计，只统计被推荐的下级。
func AggregateLevels(forest []*ReferralNode, earnings map[uint64]decimal.Decimal) *ReferralStats {
	stats := &ReferralStats{
		ByLevel: make(map[int]*LevelStats),
	}
	for _, node := range forest {
		visit(node, earnings, stats)
	}
	return stats
}

// InvestedByLevel 按层累加下级的质押本金，作为佣金基数
// invested: 节点用户 -> 本金合计；根 (level 0) 不计入。
func InvestedByLevel(forest []*ReferralNode, invested map[uint64]decimal.Decimal) map[int]decimal.Decimal {
	perLevel := make(map[int]decimal.Decimal)
	var walk func(node *ReferralNode)
	walk = func(node *ReferralNode) {
		if node.Level > 0 {
			if amount, ok := invested[node.User.ID]; ok {
				perLevel[node.Level] = perLevel[node.Level].Add(amount)
			}
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	for _, node := range forest {
		walk(node)
	}
	return perLevel
}

func visit(node *ReferralNode, earnings map[uint64]decimal.Decimal, stats *ReferralStats) {
	if node.Level > 0 {
		stats.TotalReferrals++

		level, ok := stats.ByLevel[node.Level]
		if !ok {
			level = &LevelStats{TotalEarnings: decimal.Zero}
			stats.ByLevel[node.Level] = level
		}
		level.Count++
		if amount, ok := earnings[node.User.ID]; ok {
			level.TotalEarnings = level.TotalEarnings.Add(amount)
		}
	}

	for _, child := range node.Children {
		visit(child, earnings, stats)
	}
}
