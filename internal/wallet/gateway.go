package wallet

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"
)

// Gateway 钱包网关抽象
// 协调器只依赖该接口，不直接触碰任何链上客户端；
// 生产实现见 eth.go，测试用假实现见 service 层测试。
type Gateway interface {
	// Connect 返回当前签名地址。
	// expectedAddress 非空且与当前地址不一致 (大小写不敏感) 时，
	// 仍返回实际连接的地址，同时返回 errno.ErrWrongWallet，由调用方决定是否继续。
	Connect(ctx context.Context, expectedAddress string) (string, error)

	// CurrentChain 返回当前链 ID
	CurrentChain(ctx context.Context) (*big.Int, error)

	// EnsureChain 校验当前链与期望链一致
	// 热钱包实现返回 errno.ErrWrongChain (RPC 节点无法被切换)；
	// 交互式钱包实现可在用户拒绝切链时返回 errno.ErrChainSwitchRejected。
	EnsureChain(ctx context.Context, expected *big.Int) error

	// SubmitTransfer 签名并提交一笔 ERC-20 转账，阻塞直到交易被打包。
	// 返回已上链的交易哈希。内部从不重试，重试策略属于调用方。
	// 失败按 errno 钱包错误上报: 交互式实现在用户拒签时返回
	// errno.ErrUserRejected，余额不足 errno.ErrInsufficientFunds，
	// 其余链上失败 errno.ErrTransferFailed。
	SubmitTransfer(ctx context.Context, tokenAddress, to string, amount decimal.Decimal, decimals int32) (string, error)
}
