package infra

import "strings"

// MediaResolver 将存储的相对媒体路径拼接为外部可访问的 URL
// 已是完整 URL 的路径原样返回
type MediaResolver struct {
	baseURL string
}

// NewMediaResolver 创建媒体 URL 解析器
func NewMediaResolver(baseURL string) *MediaResolver {
	return &MediaResolver{baseURL: strings.TrimRight(baseURL, "/")}
}

// Resolve 解析媒体路径
func (r *MediaResolver) Resolve(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return r.baseURL + "/" + strings.TrimLeft(path, "/")
}
