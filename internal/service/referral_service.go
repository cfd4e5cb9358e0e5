package service

import (
	"context"
	"errors"
	"fmt"

	"staking-core/internal/backend"
	"staking-core/internal/model"
	"staking-core/pkg/errno"
	"staking-core/pkg/logger"
	"staking-core/pkg/monitor"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReferralService 推荐网络查询
// 树与统计都是纯派生数据，每次查询重建，只读无副作用，可任意并发。
type ReferralService struct {
	db      *gorm.DB
	backend backend.Client
}

func NewReferralService(db *gorm.DB, backendClient backend.Client) *ReferralService {
	return &ReferralService{db: db, backend: backendClient}
}

// Tree 构建以 userID 为根的推荐树 (根 level 0，直推 level 1)
func (s *ReferralService) Tree(ctx context.Context, userID uint64) (*ReferralNode, error) {
	var root model.User
	if err := s.db.WithContext(ctx).First(&root, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrUserNotFound
		}
		return nil, err
	}

	relationships, users, err := s.loadGraph(ctx)
	if err != nil {
		return nil, err
	}

	tree := BuildUserTree(root, relationships, users)
	if monitor.Business != nil {
		monitor.Business.ReferralTreeSize.WithLabelValues("user").Observe(float64(countNodes(tree)))
	}
	return tree, nil
}

// Forest 管理端全量视图
func (s *ReferralService) Forest(ctx context.Context) ([]*ReferralNode, error) {
	relationships, users, err := s.loadGraph(ctx)
	if err != nil {
		return nil, err
	}

	forest := BuildForest(relationships, users)
	if monitor.Business != nil {
		total := 0
		for _, root := range forest {
			total += countNodes(root)
		}
		monitor.Business.ReferralTreeSize.WithLabelValues("admin").Observe(float64(total))
	}
	return forest, nil
}

// Stats 按层聚合 userID 的推荐网络
func (s *ReferralService) Stats(ctx context.Context, userID uint64) (*ReferralStats, error) {
	tree, err := s.Tree(ctx, userID)
	if err != nil {
		return nil, err
	}

	earnings, err := s.earningsByDownline(ctx, userID)
	if err != nil {
		return nil, err
	}

	return AggregateLevels([]*ReferralNode{tree}, earnings), nil
}

// LevelBreakdown 单层佣金明细
// TotalEarnings 是已入账佣金流水，Commission 是按当前费率对该层
// 质押本金应得的佣金 (费率 × 本金基数)，两者口径一致时应当相等。
type LevelBreakdown struct {
	Level         int             `json:"level"`
	Count         int             `json:"count"`
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
	RatePercent   decimal.Decimal `json:"ratePercent"`
	Invested      decimal.Decimal `json:"invested"`
	Commission    decimal.Decimal `json:"commission"`
}

// CommissionBreakdown 按佣金表展开每层统计
// 表内没有下级的层也会出现 (count 0)，表外层级不展示。
func (s *ReferralService) CommissionBreakdown(ctx context.Context, userID uint64, schedule *CommissionSchedule) ([]LevelBreakdown, error) {
	tree, err := s.Tree(ctx, userID)
	if err != nil {
		return nil, err
	}
	earnings, err := s.earningsByDownline(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := AggregateLevels([]*ReferralNode{tree}, earnings)

	invested, err := s.investedByUser(ctx, downlineIDs(tree))
	if err != nil {
		return nil, err
	}
	investedPerLevel := InvestedByLevel([]*ReferralNode{tree}, invested)

	var breakdown []LevelBreakdown
	for _, level := range schedule.Levels() {
		entry := LevelBreakdown{
			Level:         level,
			RatePercent:   schedule.RateForLevel(level),
			TotalEarnings: decimal.Zero,
			Invested:      decimal.Zero,
		}
		if levelStats, ok := stats.ByLevel[level]; ok {
			entry.Count = levelStats.Count
			entry.TotalEarnings = levelStats.TotalEarnings
		}
		if base, ok := investedPerLevel[level]; ok {
			entry.Invested = base
		}
		entry.Commission = schedule.CommissionFor(level, entry.Invested)
		breakdown = append(breakdown, entry)
	}
	return breakdown, nil
}

// ConsistencyReport 本地重算 vs 后端聚合 的比对结果
type ConsistencyReport struct {
	Consistent  bool     `json:"consistent"`
	Differences []string `json:"differences,omitempty"`
}

// VerifyAgainstBackend 本地重算推荐统计并与后端聚合结果比对
// 后端是权威口径，这里只是一致性体检；发现漂移打点并详细上报，不报错。
func (s *ReferralService) VerifyAgainstBackend(ctx context.Context, userID uint64) (*ConsistencyReport, error) {
	local, err := s.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	remote, err := s.backend.ReferralSummary(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{Consistent: true}
	addDiff := func(format string, args ...interface{}) {
		report.Consistent = false
		report.Differences = append(report.Differences, fmt.Sprintf(format, args...))
	}

	if local.TotalReferrals != remote.Overall.TotalReferrals {
		addDiff("totalReferrals: local=%d backend=%d", local.TotalReferrals, remote.Overall.TotalReferrals)
	}
	for level, localStats := range local.ByLevel {
		remoteStats, ok := remote.ByLevel[level]
		if !ok {
			addDiff("level %d: missing on backend (local count=%d)", level, localStats.Count)
			continue
		}
		if localStats.Count != remoteStats.Count {
			addDiff("level %d count: local=%d backend=%d", level, localStats.Count, remoteStats.Count)
		}
		if !localStats.TotalEarnings.Equal(remoteStats.TotalEarnings) {
			addDiff("level %d earnings: local=%s backend=%s", level, localStats.TotalEarnings, remoteStats.TotalEarnings)
		}
	}
	for level := range remote.ByLevel {
		if _, ok := local.ByLevel[level]; !ok {
			addDiff("level %d: present on backend only", level)
		}
	}

	if !report.Consistent {
		if monitor.Business != nil {
			monitor.Business.ReferralStatsDrift.Inc()
		}
		logger.Warn("推荐统计与后端口径不一致",
			zap.Uint64("user_id", userID),
			zap.Strings("differences", report.Differences))
	}
	return report, nil
}

// CheckGraph 推荐关系图体检
// 返回问题清单；存在脏数据时 error 为 ErrMalformedReferralGraph。
// 主流程构树对这些问题降级容错，这个入口专供管理端/CLI 主动暴露它们。
func (s *ReferralService) CheckGraph(ctx context.Context) ([]string, error) {
	relationships, users, err := s.loadGraph(ctx)
	if err != nil {
		return nil, err
	}

	issues := GraphIssues(relationships, users)
	if len(issues) > 0 {
		logger.Error("推荐关系图不满足森林约定",
			zap.Int("issues", len(issues)),
			zap.Strings("details", issues))
		return issues, errno.ErrMalformedReferralGraph
	}
	return nil, nil
}

// loadGraph 一次性加载关系边与用户记录
// 看板规模的数据量直接全量载入，换取 O(n) 单趟建树。
func (s *ReferralService) loadGraph(ctx context.Context) ([]model.ReferralRelationship, map[uint64]model.User, error) {
	var relationships []model.ReferralRelationship
	if err := s.db.WithContext(ctx).Find(&relationships).Error; err != nil {
		return nil, nil, err
	}

	var userRows []model.User
	if err := s.db.WithContext(ctx).Find(&userRows).Error; err != nil {
		return nil, nil, err
	}
	users := make(map[uint64]model.User, len(userRows))
	for _, u := range userRows {
		users[u.ID] = u
	}

	return relationships, users, nil
}

// earningsByDownline 推荐人从每个下级累计获得的佣金
func (s *ReferralService) earningsByDownline(ctx context.Context, userID uint64) (map[uint64]decimal.Decimal, error) {
	var rewards []model.ReferralReward
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rewards).Error; err != nil {
		return nil, err
	}

	earnings := make(map[uint64]decimal.Decimal, len(rewards))
	for _, r := range rewards {
		earnings[r.FromUserID] = earnings[r.FromUserID].Add(r.Amount)
	}
	return earnings, nil
}

// investedByUser 下级用户的质押本金合计 (佣金基数)
func (s *ReferralService) investedByUser(ctx context.Context, ids []uint64) (map[uint64]decimal.Decimal, error) {
	invested := make(map[uint64]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return invested, nil
	}

	var stakings []model.Staking
	if err := s.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&stakings).Error; err != nil {
		return nil, err
	}
	for _, st := range stakings {
		invested[st.UserID] = invested[st.UserID].Add(st.StakeAmount)
	}
	return invested, nil
}

// downlineIDs 收集树中除根之外所有用户 ID
func downlineIDs(root *ReferralNode) []uint64 {
	var ids []uint64
	var walk func(node *ReferralNode)
	walk = func(node *ReferralNode) {
		if node.Level > 0 {
			ids = append(ids, node.User.ID)
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(root)
	return ids
}

func countNodes(node *ReferralNode) int {
	total := 1
	for _, child := range node.Children {
		total += countNodes(child)
	}
	return total
}
