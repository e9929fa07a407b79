package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var configFile string

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "panda",
	Short: "Panda AI 对话后端",
	Long:  `Panda 是一个 AI 对话后端服务，负责用户认证、调用大模型完成对话并按用户保存会话历史。`,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
}
