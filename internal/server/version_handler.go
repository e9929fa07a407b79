package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 构建信息，由编译时 -ldflags 注入
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// VersionInfo 版本信息响应
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// handleVersion 获取版本信息
func (s *HTTPGinServer) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Code:    200,
		Message: "Success",
		Data: VersionInfo{
			Version:   Version,
			GitCommit: GitCommit,
			BuildTime: BuildTime,
		},
	})
}
