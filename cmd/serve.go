package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/spf13/cobra"

	"github.com/abhi01978/Panda/internal/config"
	"github.com/abhi01978/Panda/internal/database"
	"github.com/abhi01978/Panda/internal/middleware"
	"github.com/abhi01978/Panda/internal/server"
)

// serveCmd 启动 HTTP 服务
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	Long:  `加载配置、初始化数据库后启动 HTTP 服务，直到收到退出信号。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 加载配置
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// 初始化 JWT
		middleware.InitJWT(cfg.JWT.Secret, cfg.JWT.ExpireHours)

		// 初始化数据库
		db, err := database.Open(cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()

		// 启动 HTTP 服务
		srv := server.NewHTTPGinServer(cfg, db)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		// 等待退出信号
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-quit:
			logx.Info("Received signal %s, shutting down...", sig)
		}

		// 优雅关闭
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}

		logx.Info("Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
