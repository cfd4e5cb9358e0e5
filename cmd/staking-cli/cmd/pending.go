package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"staking-core/internal/store"
	"staking-core/pkg/cache"
	"staking-core/pkg/config"
	"staking-core/pkg/database"

	"github.com/spf13/cobra"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "查看用户的在途质押意向",
	Long:  `从 Redis 读取指定用户的在途质押意向 (pendingStaking_{userId})，过期记录会被就地清除。`,
	Run: func(cmd *cobra.Command, args []string) {
		userID, _ := cmd.Flags().GetUint64("user")
		doClear, _ := cmd.Flags().GetBool("clear")

		pendingStore := mustPendingStore()
		ctx := context.Background()

		intent, err := pendingStore.Get(ctx, userID)
		if err != nil {
			fmt.Printf("读取失败: %v\n", err)
			os.Exit(1)
		}
		if intent == nil {
			fmt.Printf("用户 %d 没有在途意向\n", userID)
			return
		}

		out, _ := json.MarshalIndent(intent, "", "  ")
		fmt.Println(string(out))

		if doClear {
			if err := pendingStore.Clear(ctx, userID); err != nil {
				fmt.Printf("❌ 清除失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ 已清除用户 %d 的在途意向 (链上转账 %s 不受影响)\n", userID, intent.TxHash)
		}
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "手动清理所有过期的在途意向",
	Run: func(cmd *cobra.Command, args []string) {
		pendingStore := mustPendingStore()

		expired, err := pendingStore.Sweep(context.Background())
		if err != nil {
			fmt.Printf("扫描失败: %v\n", err)
			os.Exit(1)
		}

		for _, intent := range expired {
			fmt.Printf("已清除: user=%d tx=%s amount=%s\n", intent.UserID, intent.TxHash, intent.Amount)
		}
		fmt.Printf("共清除 %d 条过期意向\n", len(expired))
	},
}

func mustPendingStore() *store.PendingStakeStore {
	config.Init()

	rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	if err != nil {
		fmt.Printf("Redis 连接失败: %v\n", err)
		os.Exit(1)
	}
	return store.NewPendingStakeStore(cache.NewRedisCache(rdb))
}

func init() {
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(sweepCmd)
	pendingCmd.Flags().Uint64P("user", "u", 0, "用户 ID")
	pendingCmd.Flags().Bool("clear", false, "查看后清除该意向")
	_ = pendingCmd.MarkFlagRequired("user")
}
