package service

import (
	"testing"

	"staking-core/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func user(id uint64, name string) model.User {
	return model.User{ID: id, Username: name}
}

func edge(referrer, referred uint64) model.ReferralRelationship {
	return model.ReferralRelationship{ReferrerID: referrer, ReferredID: referred}
}

func usersByID(us ...model.User) map[uint64]model.User {
	m := make(map[uint64]model.User, len(us))
	for _, u := range us {
		m[u.ID] = u
	}
	return m
}

// A 推荐 B 和 C，B 推荐 D:
//
//	A(L0) ── B(L1) ── D(L2)
//	      └─ C(L1)
func exampleGraph() ([]model.ReferralRelationship, map[uint64]model.User) {
	rels := []model.ReferralRelationship{edge(1, 2), edge(1, 3), edge(2, 4)}
	users := usersByID(user(1, "A"), user(2, "B"), user(3, "C"), user(4, "D"))
	return rels, users
}

func TestBuildUserTree_Levels(t *testing.T) {
	rels, users := exampleGraph()

	tree := BuildUserTree(users[1], rels, users)

	assert.Equal(t, 0, tree.Level)
	assert.Equal(t, uint64(1), tree.User.ID)

	require.Len(t, tree.Children, 2)
	assert.Equal(t, uint64(2), tree.Children[0].User.ID, "子节点按 ID 升序")
	assert.Equal(t, uint64(3), tree.Children[1].User.ID)
	assert.Equal(t, 1, tree.Children[0].Level)
	assert.Equal(t, 1, tree.Children[1].Level)

	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, uint64(4), tree.Children[0].Children[0].User.ID)
	assert.Equal(t, 2, tree.Children[0].Children[0].Level)
	assert.Empty(t, tree.Children[1].Children)
}

func TestAggregateLevels(t *testing.T) {
	rels, users := exampleGraph()
	tree := BuildUserTree(users[1], rels, users)

	earnings := map[uint64]decimal.Decimal{
		2: decimal.NewFromInt(50),
		3: decimal.NewFromInt(30),
		4: decimal.NewFromInt(20),
	}
	stats := AggregateLevels([]*ReferralNode{tree}, earnings)

	// 根自身不计入
	assert.Equal(t, 3, stats.TotalReferrals)
	require.Contains(t, stats.ByLevel, 1)
	require.Contains(t, stats.ByLevel, 2)
	assert.Equal(t, 2, stats.ByLevel[1].Count)
	assert.True(t, stats.ByLevel[1].TotalEarnings.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, 1, stats.ByLevel[2].Count)
	assert.True(t, stats.ByLevel[2].TotalEarnings.Equal(decimal.NewFromInt(20)))

	// 各层人数回加等于总数
	sum := 0
	for _, ls := range stats.ByLevel {
		sum += ls.Count
	}
	assert.Equal(t, stats.TotalReferrals, sum)
}

func TestAggregateLevels_OrderIndependent(t *testing.T) {
	rels, users := exampleGraph()
	earnings := map[uint64]decimal.Decimal{
		2: decimal.NewFromFloat(1.5),
		3: decimal.NewFromFloat(2.5),
		4: decimal.NewFromFloat(3.5),
	}

	tree := BuildUserTree(users[1], rels, users)
	base := AggregateLevels([]*ReferralNode{tree}, earnings)

	// 手动调换子节点顺序，聚合结果不受遍历顺序影响
	swapped := BuildUserTree(users[1], rels, users)
	swapped.Children[0], swapped.Children[1] = swapped.Children[1], swapped.Children[0]
	other := AggregateLevels([]*ReferralNode{swapped}, earnings)

	assert.Equal(t, base.TotalReferrals, other.TotalReferrals)
	for level, ls := range base.ByLevel {
		require.Contains(t, other.ByLevel, level)
		assert.Equal(t, ls.Count, other.ByLevel[level].Count)
		assert.True(t, ls.TotalEarnings.Equal(other.ByLevel[level].TotalEarnings))
	}
}

func TestBuildUserTree_CycleEdgeDropped(t *testing.T) {
	// 1 -> 2 -> 3 -> 1 成环
	rels := []model.ReferralRelationship{edge(1, 2), edge(2, 3), edge(3, 1)}
	users := usersByID(user(1, "A"), user(2, "B"), user(3, "C"))

	tree := BuildUserTree(users[1], rels, users)

	require.Len(t, tree.Children, 1)
	b := tree.Children[0]
	require.Len(t, b.Children, 1)
	c := b.Children[0]
	// 回到根的边被丢弃，不再无限展开
	assert.Empty(t, c.Children)
}

func TestBuildUserTree_DepthCap(t *testing.T) {
	// 一条 60 级的链，超出上限的子树被截断
	users := make(map[uint64]model.User, 61)
	var rels []model.ReferralRelationship
	for i := uint64(1); i <= 61; i++ {
		users[i] = user(i, "")
		if i > 1 {
			rels = append(rels, edge(i-1, i))
		}
	}

	tree := BuildUserTree(users[1], rels, users)

	depth := 0
	for node := tree; len(node.Children) > 0; node = node.Children[0] {
		depth = node.Children[0].Level
	}
	assert.Equal(t, maxReferralDepth, depth)
}

func TestBuildForest_RootsAndDanglingReferrer(t *testing.T) {
	// 5 的推荐人 99 不在范围内 -> 5 降级为根
	rels := []model.ReferralRelationship{edge(1, 2), edge(99, 5)}
	users := usersByID(user(1, "A"), user(2, "B"), user(5, "E"))

	forest := BuildForest(rels, users)

	require.Len(t, forest, 2)
	assert.Equal(t, uint64(1), forest[0].User.ID)
	assert.Equal(t, uint64(5), forest[1].User.ID)
	// 管理端森林根从 level 1 记起
	assert.Equal(t, 1, forest[0].Level)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, 2, forest[0].Children[0].Level)
}

func TestGraphIssues(t *testing.T) {
	t.Run("HealthyForest", func(t *testing.T) {
		rels, users := exampleGraph()
		assert.Empty(t, GraphIssues(rels, users))
	})

	t.Run("Cycle", func(t *testing.T) {
		rels := []model.ReferralRelationship{edge(2, 3), edge(3, 2)}
		users := usersByID(user(2, "B"), user(3, "C"))

		issues := GraphIssues(rels, users)
		require.Len(t, issues, 1, "同一个环只报一次: %v", issues)
		assert.Contains(t, issues[0], "cycle")
	})

	t.Run("MultipleReferrers", func(t *testing.T) {
		// 4 同时被 1 和 2 推荐
		rels := []model.ReferralRelationship{edge(1, 4), edge(2, 4)}
		users := usersByID(user(1, "A"), user(2, "B"), user(4, "D"))

		issues := GraphIssues(rels, users)
		require.NotEmpty(t, issues)
		assert.Contains(t, issues[0], "multiple referrers")
	})

	t.Run("DanglingReferrer", func(t *testing.T) {
		rels := []model.ReferralRelationship{edge(99, 5)}
		users := usersByID(user(5, "E"))

		issues := GraphIssues(rels, users)
		require.NotEmpty(t, issues)
		assert.Contains(t, issues[0], "no user record")
	})

	t.Run("ChainTooDeep", func(t *testing.T) {
		users := make(map[uint64]model.User, 61)
		var rels []model.ReferralRelationship
		for i := uint64(1); i <= 61; i++ {
			users[i] = user(i, "")
			if i > 1 {
				rels = append(rels, edge(i-1, i))
			}
		}

		issues := GraphIssues(rels, users)
		require.NotEmpty(t, issues)
		assert.Contains(t, issues[0], "exceeds depth")
	})
}

func TestInvestedByLevel(t *testing.T) {
	rels, users := exampleGraph()
	tree := BuildUserTree(users[1], rels, users)

	invested := map[uint64]decimal.Decimal{
		1: decimal.NewFromInt(9999), // 根不计入
		2: decimal.NewFromInt(1000),
		3: decimal.NewFromInt(1000),
		4: decimal.NewFromInt(500),
	}
	perLevel := InvestedByLevel([]*ReferralNode{tree}, invested)

	require.Contains(t, perLevel, 1)
	require.Contains(t, perLevel, 2)
	assert.True(t, perLevel[1].Equal(decimal.NewFromInt(2000)))
	assert.True(t, perLevel[2].Equal(decimal.NewFromInt(500)))
	assert.NotContains(t, perLevel, 0, "根自身的本金不是佣金基数")
}

func TestBuildForest_PureCyclePromoted(t *testing.T) {
	// 2 <-> 3 互为推荐人，主扫描不可达，降级为根后节点不丢
	rels := []model.ReferralRelationship{edge(2, 3), edge(3, 2)}
	users := usersByID(user(1, "A"), user(2, "B"), user(3, "C"))

	forest := BuildForest(rels, users)

	seen := make(map[uint64]bool)
	var walk func(n *ReferralNode)
	walk = func(n *ReferralNode) {
		seen[n.User.ID] = true
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, root := range forest {
		walk(root)
	}
	assert.Len(t, seen, 3, "环上的节点不得丢失")
}
