package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	copydomain "github.com/xiebiao/library/internal/domain/copy"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	"github.com/xiebiao/library/pkg/metrics"
)

// availabilityTTL 可用性统计缓存时长
// 借还会主动失效缓存，TTL只是兜底，取短一些降低脏读窗口
const availabilityTTL = 30 * time.Second

// AvailabilityCache 副本可用性统计缓存
// 设计说明：
// 1. 目录页高频展示"可借/总数"，直接打数据库会放大COUNT查询压力
// 2. 借出/归还成功后主动失效对应书目的缓存
// 3. 熔断器包住所有Redis操作：Redis故障时快速失败回源数据库，
//    而不是每个请求都等待超时
// 4. 缓存永远只是加速层，任何错误都降级为未命中，不向上抛
type AvailabilityCache struct {
	client *redis.Client
	cb     *circuitbreaker.CircuitBreaker
}

// NewAvailabilityCache 创建可用性统计缓存
func NewAvailabilityCache(client *redis.Client) *AvailabilityCache {
	cb := circuitbreaker.NewCircuitBreaker("availability-cache", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("熔断器状态变化: %s %s -> %s", name, from, to)
		if metrics.CircuitBreakerState != nil {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		}
	})

	return &AvailabilityCache{client: client, cb: cb}
}

func availabilityKey(bookID string) string {
	return fmt.Sprintf("availability:%s", bookID)
}

// GetStats 读取书目的可用性统计
// 返回 (统计, 是否命中)：未命中、Redis故障、熔断中都返回false
// 注意：未命中是正常结果，不计入熔断器的失败统计
func (c *AvailabilityCache) GetStats(ctx context.Context, bookID string) (*copydomain.Stats, bool) {
	var stats copydomain.Stats
	var found bool

	err := c.cb.Execute(func() error {
		data, err := c.client.Get(ctx, availabilityKey(bookID)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &stats); err != nil {
			return err
		}
		found = true
		return nil
	})

	if err != nil {
		c.recordResult(err)
		return nil, false
	}

	if metrics.CacheRequestsTotal != nil {
		if found {
			metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
		} else {
			metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
		}
	}
	return &stats, found
}

// SetStats 写入书目的可用性统计
// 写失败只打日志，不影响主流程
func (c *AvailabilityCache) SetStats(ctx context.Context, bookID string, stats *copydomain.Stats) {
	err := c.cb.Execute(func() error {
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return c.client.Set(ctx, availabilityKey(bookID), data, availabilityTTL).Err()
	})
	if err != nil && !errors.Is(err, circuitbreaker.ErrOpenState) {
		log.Printf("写入可用性缓存失败: book=%s, err=%v", bookID, err)
	}
}

// Invalidate 失效书目的可用性统计（借出/归还/副本变更后调用）
func (c *AvailabilityCache) Invalidate(ctx context.Context, bookID string) {
	err := c.cb.Execute(func() error {
		return c.client.Del(ctx, availabilityKey(bookID)).Err()
	})
	if err != nil && !errors.Is(err, circuitbreaker.ErrOpenState) {
		log.Printf("失效可用性缓存失败: book=%s, err=%v", bookID, err)
	}
}

// recordResult 按错误类型打缓存指标
func (c *AvailabilityCache) recordResult(err error) {
	if metrics.CacheRequestsTotal == nil {
		return
	}
	if errors.Is(err, circuitbreaker.ErrOpenState) {
		metrics.CacheRequestsTotal.WithLabelValues("rejected").Inc()
	} else {
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
	}
}
