package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"fieldcatalog/cmd/catalog-service/internal/domain"
)

// EntryClientConfig 条目服务客户端配置
type EntryClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// EntryClient 外部条目服务客户端
// 条目归外部服务所有，这里只查询所有权与摘要投影
type EntryClient struct {
	baseURL string
	client  *http.Client
	logger  *log.Helper
}

// NewEntryClient 创建条目服务客户端
func NewEntryClient(config *EntryClientConfig, logger log.Logger) *EntryClient {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &EntryClient{
		baseURL: config.BaseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  log.NewHelper(log.With(logger, "module", "entry-client")),
	}
}

// GetEntryOwner 查询条目所有者
func (c *EntryClient) GetEntryOwner(ctx context.Context, entryID string) (string, error) {
	url := fmt.Sprintf("%s/internal/v1/entries/%s", c.baseURL, entryID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create entry request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request entry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", domain.ErrEntryNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("entry service returned status %d", resp.StatusCode)
	}

	var body struct {
		ID      string `json:"id"`
		OwnerID string `json:"owner_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode entry response: %w", err)
	}

	return body.OwnerID, nil
}

// ListEntrySummaries 批量查询条目摘要
// 已删除的条目不在结果中，调用方按缺失处理
func (c *EntryClient) ListEntrySummaries(ctx context.Context, entryIDs []string) ([]*domain.EntrySummary, error) {
	if len(entryIDs) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(map[string]interface{}{"ids": entryIDs})
	if err != nil {
		return nil, fmt.Errorf("marshal batch request: %w", err)
	}

	url := fmt.Sprintf("%s/internal/v1/entries/batch", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create batch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request entry batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("entry service returned status %d", resp.StatusCode)
	}

	var body struct {
		Entries []*domain.EntrySummary `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode batch response: %w", err)
	}

	return body.Entries, nil
}
