package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "staking-cli",
	Short: "质押运维命令行工具",
	Long: `质押服务的运维工具。
支持查看/清除用户的在途质押意向，以及重建推荐树并核对按层统计。`,
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// 在这里可以定义全局标志 (Global Flags)
}
