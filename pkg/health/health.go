package health

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Status 健康状态
type Status string

const (
	// StatusHealthy 健康
	StatusHealthy Status = "healthy"
	// StatusDegraded 降级，可服务但存在慢依赖
	StatusDegraded Status = "degraded"
	// StatusUnhealthy 不健康
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult 单项检查结果
type CheckResult struct {
	Status    Status        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// Checker 健康检查项
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// HealthChecker 并发执行注册的检查项
type HealthChecker struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewHealthChecker 创建检查管理器
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checkers: make(map[string]Checker),
	}
}

// Register 注册检查项，同名覆盖
func (h *HealthChecker) Register(checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[checker.Name()] = checker
}

// Check 并发执行所有检查项
func (h *HealthChecker) Check(ctx context.Context) map[string]CheckResult {
	h.mu.RLock()
	checkers := make([]Checker, 0, len(h.checkers))
	for _, c := range h.checkers {
		checkers = append(checkers, c)
	}
	h.mu.RUnlock()

	var mu sync.Mutex
	results := make(map[string]CheckResult, len(checkers))
	var wg sync.WaitGroup

	for _, checker := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			result := c.Check(ctx)
			mu.Lock()
			results[c.Name()] = result
			mu.Unlock()
		}(checker)
	}

	wg.Wait()
	return results
}

// Aggregate 汇总整体状态，任一不健康即不健康
func Aggregate(results map[string]CheckResult) Status {
	status := StatusHealthy
	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

// PingChecker 基于 ping 回调的依赖检查，适用于数据库与缓存
type PingChecker struct {
	name   string
	pingFn func(context.Context) error
}

// NewPingChecker 创建 ping 检查项
func NewPingChecker(name string, pingFn func(context.Context) error) *PingChecker {
	return &PingChecker{name: name, pingFn: pingFn}
}

// Name 检查项名称
func (p *PingChecker) Name() string {
	return p.name
}

// Check 执行 ping
func (p *PingChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	err := p.pingFn(ctx)
	duration := time.Since(start)

	result := CheckResult{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Duration:  duration,
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	return result
}

// ServiceChecker 下游服务检查，响应超过阈值时报告降级
type ServiceChecker struct {
	name      string
	checkFn   func(context.Context) error
	threshold time.Duration
}

// NewServiceChecker 创建下游服务检查项，threshold 为 0 时不检查响应时间
func NewServiceChecker(name string, checkFn func(context.Context) error, threshold time.Duration) *ServiceChecker {
	return &ServiceChecker{
		name:      name,
		checkFn:   checkFn,
		threshold: threshold,
	}
}

// Name 检查项名称
func (s *ServiceChecker) Name() string {
	return s.name
}

// Check 执行下游检查
func (s *ServiceChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	err := s.checkFn(ctx)
	duration := time.Since(start)

	result := CheckResult{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Duration:  duration,
	}
	switch {
	case err != nil:
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	case s.threshold > 0 && duration > s.threshold:
		result.Status = StatusDegraded
		result.Error = fmt.Sprintf("response time %v exceeds threshold %v", duration, s.threshold)
	}
	return result
}

// ReadinessChecker 就绪检查，要求指定依赖全部健康
type ReadinessChecker struct {
	*HealthChecker
	dependencies []string
}

// NewReadinessChecker 创建就绪检查器
func NewReadinessChecker(healthChecker *HealthChecker, dependencies []string) *ReadinessChecker {
	return &ReadinessChecker{
		HealthChecker: healthChecker,
		dependencies:  dependencies,
	}
}

// IsReady 检查必需依赖是否全部健康
func (r *ReadinessChecker) IsReady(ctx context.Context) bool {
	results := r.Check(ctx)
	for _, dep := range r.dependencies {
		result, ok := results[dep]
		if !ok || result.Status != StatusHealthy {
			return false
		}
	}
	return true
}
