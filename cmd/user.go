package cmd

import (
	"fmt"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/abhi01978/Panda/internal/config"
	"github.com/abhi01978/Panda/internal/database"
	"github.com/abhi01978/Panda/internal/model"
)

// userCmd 用户管理命令组
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "管理用户",
	Long:  `查看用户列表、重置用户密码等管理操作。`,
}

// userListCmd 列出用户
var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出用户",
	Long:  `列出全部用户及其状态。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := database.Open(cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}

		var users []model.User
		if err := db.Find(&users).Error; err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		// 使用 lipgloss/table 表格输出
		rows := [][]string{}
		for _, u := range users {
			enabled := "yes"
			if !u.Enabled {
				enabled = "no"
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", u.ID), u.Username, u.Nickname, u.Email, u.Roles, enabled,
			})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
			Headers("ID", "Username", "Nickname", "Email", "Roles", "Enabled").
			Rows(rows...)

		fmt.Println(t)
		fmt.Println()
		logx.Info("Query completed, count %d", len(users))

		return nil
	},
}

// userResetPasswordCmd 重置用户密码
var userResetPasswordCmd = &cobra.Command{
	Use:   "reset-password <username> <new-password>",
	Short: "重置用户密码",
	Long:  `重置指定用户的登录密码。`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, newPassword := args[0], args[1]

		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := database.Open(cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}

		var user model.User
		if err := db.Where("username = ?", username).First(&user).Error; err != nil {
			return fmt.Errorf("user %s not found", username)
		}

		if err := user.SetPassword(newPassword); err != nil {
			return fmt.Errorf("failed to set password: %w", err)
		}

		if err := db.Save(&user).Error; err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}

		logx.Info("Password reset successfully, username %s", username)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userResetPasswordCmd)
}
