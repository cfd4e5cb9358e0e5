package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"staking-core/internal/backend"
	"staking-core/internal/service"
	"staking-core/pkg/config"
	"staking-core/pkg/database"
	"staking-core/pkg/errno"

	"github.com/spf13/cobra"
)

var referralCmd = &cobra.Command{
	Use:   "referral",
	Short: "重建推荐树并打印按层统计",
	Long:  `直接从数据库重建指定用户的推荐树，打印树结构与按层聚合结果；加 --verify 与后端口径比对。`,
	Run: func(cmd *cobra.Command, args []string) {
		userID, _ := cmd.Flags().GetUint64("user")
		verify, _ := cmd.Flags().GetBool("verify")

		config.Init()
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			config.Global.DB.Host,
			config.Global.DB.User,
			config.Global.DB.Password,
			config.Global.DB.Name,
			config.Global.DB.Port,
		)
		db, err := database.ConnectPostgres(dsn)
		if err != nil {
			fmt.Printf("数据库连接失败: %v\n", err)
			os.Exit(1)
		}

		backendClient := backend.NewRestClient(
			config.Global.Backend.BaseUrl,
			time.Duration(config.Global.Backend.TimeoutSeconds)*time.Second,
		)
		svc := service.NewReferralService(db, backendClient)
		ctx := context.Background()

		tree, err := svc.Tree(ctx, userID)
		if err != nil {
			fmt.Printf("构建推荐树失败: %v\n", err)
			os.Exit(1)
		}
		printNode(tree, 0)

		stats, err := svc.Stats(ctx, userID)
		if err != nil {
			fmt.Printf("聚合失败: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\n总推荐人数: %d\n", stats.TotalReferrals)
		levels := make([]int, 0, len(stats.ByLevel))
		for level := range stats.ByLevel {
			levels = append(levels, level)
		}
		sort.Ints(levels)
		for _, level := range levels {
			ls := stats.ByLevel[level]
			fmt.Printf("  L%d: %d 人, 收益 %s\n", level, ls.Count, ls.TotalEarnings)
		}

		// 关系图体检: 脏数据 (环/多推荐人/超深链) 在这里主动暴露
		issues, err := svc.CheckGraph(ctx)
		if err != nil && !errors.Is(err, errno.ErrMalformedReferralGraph) {
			fmt.Printf("关系图体检失败: %v\n", err)
			os.Exit(1)
		}
		if len(issues) > 0 {
			fmt.Println("\n⚠️  关系图不满足森林约定:")
			for _, issue := range issues {
				fmt.Printf("  - %s\n", issue)
			}
		}

		if verify {
			report, err := svc.VerifyAgainstBackend(ctx, userID)
			if err != nil {
				fmt.Printf("比对失败: %v\n", err)
				os.Exit(1)
			}
			if report.Consistent {
				fmt.Println("\n✅ 与后端口径一致")
			} else {
				fmt.Println("\n❌ 与后端口径不一致:")
				for _, diff := range report.Differences {
					fmt.Printf("  - %s\n", diff)
				}
			}
		}
	},
}

func printNode(node *service.ReferralNode, indent int) {
	fmt.Printf("%sL%d %s (id=%d)\n", strings.Repeat("  ", indent), node.Level, node.User.Username, node.User.ID)
	for _, child := range node.Children {
		printNode(child, indent+1)
	}
}

func init() {
	rootCmd.AddCommand(referralCmd)
	referralCmd.Flags().Uint64P("user", "u", 0, "根用户 ID")
	referralCmd.Flags().Bool("verify", false, "与后端聚合结果比对")
	_ = referralCmd.MarkFlagRequired("user")
}
