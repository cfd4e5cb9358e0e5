package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingStakeIntent 在途质押意向
// 在转账上链成功的瞬间写入本地持久缓存；它是 "钱已转" 与 "账已记"
// 两个独立系统之间唯一的桥梁，必须在页面刷新/进程重启后仍然可读。
// 不落数据库，按 userId 单键 JSON 存储。
type PendingStakeIntent struct {
	TxHash      string          `json:"txHash"`
	PackageID   uint64          `json:"packageId"`
	UserID      uint64          `json:"userId"`
	PackageName string          `json:"packageName"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   int64           `json:"timestamp"` // epoch ms，24h TTL 判定依据
}

// CreatedAt 返回意向创建时间
func (i *PendingStakeIntent) CreatedAt() time.Time {
	return time.UnixMilli(i.Timestamp)
}
