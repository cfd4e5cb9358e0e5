package service

import (
	"fmt"
	"sort"

	"staking-core/internal/model"
	"staking-core/pkg/logger"

	"go.uber.org/zap"
)

// maxReferralDepth 防御性递归深度上限
// 关系图按约定是森林 (每个用户最多一个推荐人)，但脏数据里出现环
// 不应该挂死整个看板，超深/成环一律按数据错误降级处理。
const maxReferralDepth = 50

// ReferralNode 推荐树节点，派生结构，从不落库
type ReferralNode struct {
	User     model.User      `json:"user"`
	Level    int             `json:"level"`
	Children []*ReferralNode `json:"children"`
}

// BuildUserTree 以一个用户为根构建推荐树
// 根节点 level 0，其直推为 level 1。
func BuildUserTree(root model.User, relationships []model.ReferralRelationship, users map[uint64]model.User) *ReferralNode {
	childMap := childrenByReferrer(relationships, users)
	visited := map[uint64]bool{root.ID: true}

	return &ReferralNode{
		User:     root,
		Level:    0,
		Children: attachChildren(root.ID, 1, childMap, visited),
	}
}

// BuildForest 管理端全量视图: 以范围内没有推荐人的用户为根构建森林
// 根从 level 1 记起。推荐人不在范围内 (悬空引用) 的用户同样成为根；
// 纯环上的用户主流程扫不到，最后按数据错误提升为根，保证不丢节点。
func BuildForest(relationships []model.ReferralRelationship, users map[uint64]model.User) []*ReferralNode {
	childMap := childrenByReferrer(relationships, users)

	referrerOf := make(map[uint64]uint64, len(relationships))
	for _, rel := range relationships {
		referrerOf[rel.ReferredID] = rel.ReferrerID
	}

	visited := make(map[uint64]bool, len(users))
	var forest []*ReferralNode

	// 确定性输出: 根按用户 ID 升序
	ids := make([]uint64, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		referrer, hasReferrer := referrerOf[id]
		if hasReferrer {
			if _, inScope := users[referrer]; inScope {
				continue // 非根，由推荐人挂载
			}
		}
		user := users[id]
		visited[id] = true
		forest = append(forest, &ReferralNode{
			User:     user,
			Level:    1,
			Children: attachChildren(id, 2, childMap, visited),
		})
	}

	// 收尾: 未被访问到的节点只可能在环上，降级为森林根而不是整体失败
	for _, id := range ids {
		if visited[id] {
			continue
		}
		logger.Error("推荐关系图存在环，节点降级为根",
			zap.Uint64("user_id", id))
		user := users[id]
		visited[id] = true
		forest = append(forest, &ReferralNode{
			User:     user,
			Level:    1,
			Children: attachChildren(id, 2, childMap, visited),
		})
	}

	return forest
}

// GraphIssues 检查推荐关系是否仍满足森林约定
// (每人最多一个推荐人、无环、链深受限、无悬空引用)。
// 建树本身对脏数据降级容错，这里只负责体检: 返回问题清单，空即健康。
// 输出确定性: 按用户 ID 升序扫描。
func GraphIssues(relationships []model.ReferralRelationship, users map[uint64]model.User) []string {
	var issues []string

	referrerOf := make(map[uint64]uint64, len(relationships))
	for _, rel := range relationships {
		if prev, dup := referrerOf[rel.ReferredID]; dup {
			issues = append(issues, fmt.Sprintf("user %d has multiple referrers (%d, %d)", rel.ReferredID, prev, rel.ReferrerID))
			continue
		}
		referrerOf[rel.ReferredID] = rel.ReferrerID

		if _, ok := users[rel.ReferrerID]; !ok {
			issues = append(issues, fmt.Sprintf("referrer %d of user %d has no user record", rel.ReferrerID, rel.ReferredID))
		}
		if _, ok := users[rel.ReferredID]; !ok {
			issues = append(issues, fmt.Sprintf("referred user %d has no user record", rel.ReferredID))
		}
	}

	ids := make([]uint64, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// 沿推荐人链上溯，发现环或超深链；同一个环只报一次
	inReportedCycle := make(map[uint64]bool)
	for _, id := range ids {
		seen := map[uint64]bool{id: true}
		cur := id
		depth := 0
		for {
			next, ok := referrerOf[cur]
			if !ok {
				break
			}
			depth++
			if depth > maxReferralDepth {
				issues = append(issues, fmt.Sprintf("referrer chain above user %d exceeds depth %d", id, maxReferralDepth))
				break
			}
			if seen[next] {
				if !inReportedCycle[next] {
					issues = append(issues, fmt.Sprintf("cycle detected through user %d", next))
					for member := range seen {
						inReportedCycle[member] = true
					}
				}
				break
			}
			seen[next] = true
			cur = next
		}
	}

	return issues
}

// childrenByReferrer 一趟扫描建立 referrerId -> [被推荐用户] 索引 (O(n))
func childrenByReferrer(relationships []model.ReferralRelationship, users map[uint64]model.User) map[uint64][]model.User {
	childMap := make(map[uint64][]model.User, len(relationships))
	for _, rel := range relationships {
		child, ok := users[rel.ReferredID]
		if !ok {
			// 被推荐用户无记录，跳过这条边即可
			logger.Warn("推荐关系指向未知用户", zap.Uint64("referred_id", rel.ReferredID))
			continue
		}
		childMap[rel.ReferrerID] = append(childMap[rel.ReferrerID], child)
	}
	// 子节点按 ID 升序，保证遍历顺序稳定
	for id := range childMap {
		children := childMap[id]
		sort.Slice(children, func(i, j int) bool { return children[i].ID < children[j].ID })
	}
	return childMap
}

func attachChildren(parentID uint64, level int, childMap map[uint64][]model.User, visited map[uint64]bool) []*ReferralNode {
	if level > maxReferralDepth {
		logger.Error("推荐树超过深度上限，子树被截断",
			zap.Uint64("parent_id", parentID),
			zap.Int("depth", level))
		return nil
	}

	var nodes []*ReferralNode
	for _, child := range childMap[parentID] {
		if visited[child.ID] {
			// 环: 丢弃这条边，已访问的子树保持原位置
			logger.Error("推荐关系图存在环，边被忽略",
				zap.Uint64("referrer_id", parentID),
				zap.Uint64("referred_id", child.ID))
			continue
		}
		visited[child.ID] = true
		nodes = append(nodes, &ReferralNode{
			User:     child,
			Level:    level,
			Children: attachChildren(child.ID, level+1, childMap, visited),
		})
	}
	return nodes
}
