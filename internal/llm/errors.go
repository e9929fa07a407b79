package llm

import (
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// FriendlyError 将提供方错误转换为可展示给用户的提示语
// 限流和认证失败给出有区分度的提示，其余归为通用失败
func FriendlyError(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return "请求过于频繁，请稍后再试"
		case http.StatusUnauthorized, http.StatusForbidden:
			return "模型服务认证失败，请检查 API Key 配置"
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return "请求过于频繁，请稍后再试"
		case http.StatusUnauthorized, http.StatusForbidden:
			return "模型服务认证失败，请检查 API Key 配置"
		}
	}

	return "模型服务调用失败，请稍后再试"
}
