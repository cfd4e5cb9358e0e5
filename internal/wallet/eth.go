package wallet

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"staking-core/pkg/errno"
	"staking-core/pkg/logger"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 最小 ERC-20 ABI，只需要 transfer
const erc20ABI = `[{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}]`

const transferGasLimit = uint64(100000)

// EthGateway 基于 go-ethereum 的 Gateway 实现
// 签名密钥来自配置的热钱包私钥；链切换在服务端语境下退化为
// 校验 RPC 节点的链 ID 是否符合预期 (节点无法被 "切换")。
type EthGateway struct {
	client  *ethclient.Client
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

func NewEthGateway(rpcURL, hexKey string, chainID int64) (*EthGateway, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, errno.ErrWalletUnavailable
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, err
	}

	return &EthGateway{
		client:  client,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: big.NewInt(chainID),
	}, nil
}

func (g *EthGateway) Connect(ctx context.Context, expectedAddress string) (string, error) {
	if g.client == nil {
		return "", errno.ErrWalletUnavailable
	}

	addr := g.address.Hex()
	if expectedAddress != "" && !strings.EqualFold(addr, expectedAddress) {
		// 仍然上报实际地址，是否继续由调用方决定
		return addr, errno.ErrWrongWallet
	}
	return addr, nil
}

func (g *EthGateway) CurrentChain(ctx context.Context) (*big.Int, error) {
	return g.client.ChainID(ctx)
}

func (g *EthGateway) EnsureChain(ctx context.Context, expected *big.Int) error {
	current, err := g.client.ChainID(ctx)
	if err != nil {
		return errno.ErrWalletUnavailable
	}
	if current.Cmp(expected) != 0 {
		logger.Warn("链 ID 不匹配",
			zap.String("current", current.String()),
			zap.String("expected", expected.String()))
		return errno.ErrWrongChain
	}
	return nil
}

func (g *EthGateway) SubmitTransfer(ctx context.Context, tokenAddress, to string, amount decimal.Decimal, decimals int32) (string, error) {
	// 1. 金额换算到最小单位
	units := amount.Shift(decimals).BigInt()

	// 2. 打包 transfer(to, amount) 调用数据
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return "", err
	}
	data, err := parsed.Pack("transfer", common.HexToAddress(to), units)
	if err != nil {
		return "", err
	}

	// 3. 组装交易
	nonce, err := g.client.PendingNonceAt(ctx, g.address)
	if err != nil {
		return "", errno.ErrTransferFailed
	}
	gasPrice, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", errno.ErrTransferFailed
	}

	token := common.HexToAddress(tokenAddress)
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &token,
		Value:    big.NewInt(0),
		Gas:      transferGasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	// 4. 签名并广播
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(g.chainID), g.key)
	if err != nil {
		return "", err
	}
	if err := g.client.SendTransaction(ctx, signed); err != nil {
		if strings.Contains(err.Error(), "insufficient funds") {
			return "", errno.ErrInsufficientFunds
		}
		return "", errno.ErrTransferFailed
	}

	logger.Info("转账已广播，等待打包",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.String("amount", amount.String()))

	// 5. 阻塞等待打包 (无界时延，由 ctx 控制取消)
	receipt, err := bind.WaitMined(ctx, g.client, signed)
	if err != nil {
		return "", errno.ErrTransferFailed
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", errno.ErrTransferFailed
	}

	return signed.Hash().Hex(), nil
}
