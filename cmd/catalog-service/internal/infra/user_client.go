package infra

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// UserClientConfig 身份服务客户端配置
type UserClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// UserClient 外部身份服务客户端
type UserClient struct {
	baseURL string
	client  *http.Client
	logger  *log.Helper
}

// NewUserClient 创建身份服务客户端
func NewUserClient(config *UserClientConfig, logger log.Logger) *UserClient {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &UserClient{
		baseURL: config.BaseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  log.NewHelper(log.With(logger, "module", "user-client")),
	}
}

// UserExists 用户是否存在
func (c *UserClient) UserExists(ctx context.Context, userID string) (bool, error) {
	url := fmt.Sprintf("%s/internal/v1/users/%s", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, fmt.Errorf("create user request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("request user: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("identity service returned status %d", resp.StatusCode)
	}
}
