package event

// TopicStake 质押生命周期事件流
const TopicStake = "staking:events:stake"

// 质押生命周期事件类型
const (
	StakeSubmitted = "stake_submitted" // 转账已上链，意向已持久化
	StakeConfirmed = "stake_confirmed" // 后端确认成功，意向已清除
	StakeCancelled = "stake_cancelled" // 用户主动丢弃本地意向
	StakeExpired   = "stake_expired"   // 意向 TTL 过期，需人工对账
)

// StakeEvent 质押生命周期事件
// Topic: staking:events:stake
type StakeEvent struct {
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id"`
	PackageID  uint64 `json:"package_id"`
	TxHash     string `json:"tx_hash"`
	Amount     string `json:"amount"`      // Decimal string
	OccurredAt int64  `json:"occurred_at"` // epoch ms
}
