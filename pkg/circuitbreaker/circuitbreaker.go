// Package circuitbreaker 实现熔断器模式（Circuit Breaker Pattern）
//
// 状态机：
//   - CLOSED（关闭）：请求正常通过，统计失败情况，达到阈值转OPEN
//   - OPEN（打开）：请求快速失败（不触达下游），超时后转HALF_OPEN
//   - HALF_OPEN（半开）：放行少量探测请求，成功转CLOSED，失败转回OPEN
//
// 本项目中的用途：包住Redis可用性缓存的读写。Redis故障时熔断器打开，
// 目录查询直接回源数据库，而不是每个请求都等待Redis超时。
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State 熔断器状态
type State int

const (
	// StateClosed 关闭状态（正常放行）
	StateClosed State = iota

	// StateOpen 打开状态（熔断，快速失败）
	StateOpen

	// StateHalfOpen 半开状态（放行探测请求）
	StateHalfOpen
)

// String 状态转字符串（便于日志）
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config 熔断器配置
type Config struct {
	// MaxRequests 半开状态下允许的最大探测请求数（建议1-5）
	MaxRequests uint32

	// Interval CLOSED状态的统计时间窗口（建议10s-60s）
	Interval time.Duration

	// Timeout OPEN状态持续时间，超过后转HALF_OPEN
	Timeout time.Duration

	// ReadyToTrip 判断是否应该打开熔断器
	// 常见策略：counts.ConsecutiveFailures >= 5 或 counts.FailureRate() > 0.5
	ReadyToTrip func(counts Counts) bool
}

// Counts 统计数据
type Counts struct {
	Requests             uint32 // 总请求数
	TotalSuccesses       uint32 // 总成功数
	TotalFailures        uint32 // 总失败数
	ConsecutiveSuccesses uint32 // 连续成功数
	ConsecutiveFailures  uint32 // 连续失败数
}

// FailureRate 计算失败率
func (c *Counts) FailureRate() float64 {
	if c.Requests == 0 {
		return 0
	}
	return float64(c.TotalFailures) / float64(c.Requests)
}

// Reset 重置统计
func (c *Counts) Reset() {
	*c = Counts{}
}

func (c *Counts) onSuccess() {
	// Requests已在beforeRequest中递增
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) onFailure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// ErrOpenState 熔断器打开时返回的错误
var ErrOpenState = errors.New("circuit breaker is open")

// CircuitBreaker 熔断器
// generation是状态切换计数：请求跨越状态切换时，其结果不再计入新状态的统计
type CircuitBreaker struct {
	name          string
	maxRequests   uint32
	interval      time.Duration
	timeout       time.Duration
	readyToTrip   func(counts Counts) bool
	state         State
	generation    uint64
	counts        Counts
	expiry        time.Time
	mu            sync.Mutex
	onStateChange func(name string, from State, to State)
}

// NewCircuitBreaker 创建熔断器
//
// 示例：
//
//	cb := NewCircuitBreaker("availability-cache", Config{
//	    MaxRequests: 3,
//	    Interval:    10 * time.Second,
//	    Timeout:     30 * time.Second,
//	    ReadyToTrip: func(counts Counts) bool {
//	        return counts.ConsecutiveFailures >= 5
//	    },
//	})
func NewCircuitBreaker(name string, config Config) *CircuitBreaker {
	return &CircuitBreaker{
		name:          name,
		maxRequests:   config.MaxRequests,
		interval:      config.Interval,
		timeout:       config.Timeout,
		readyToTrip:   config.ReadyToTrip,
		state:         StateClosed,
		expiry:        time.Now().Add(config.Interval),
		onStateChange: func(name string, from State, to State) {},
	}
}

// SetStateChangeCallback 设置状态变化回调（记录日志、更新监控指标）
func (cb *CircuitBreaker) SetStateChangeCallback(fn func(name string, from State, to State)) {
	cb.onStateChange = fn
}

// Execute 执行请求
// 返回业务错误或ErrOpenState（熔断器打开，请求未执行）
func (cb *CircuitBreaker) Execute(req func() error) error {
	generation, err := cb.beforeRequest()
	if err != nil {
		return err
	}

	err = req()

	cb.afterRequest(generation, err == nil)
	return err
}

func (cb *CircuitBreaker) beforeRequest() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, generation := cb.currentState(now)

	if state == StateOpen {
		return generation, ErrOpenState
	} else if state == StateHalfOpen && cb.counts.Requests >= cb.maxRequests {
		// 半开状态下探测名额已满
		return generation, ErrOpenState
	}

	cb.counts.Requests++
	return generation, nil
}

func (cb *CircuitBreaker) afterRequest(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, generation := cb.currentState(now)

	// 状态已切换，本次结果作废
	if generation != before {
		return
	}

	if success {
		cb.handleSuccess(state, now)
	} else {
		cb.handleFailure(state, now)
	}
}

func (cb *CircuitBreaker) handleSuccess(state State, now time.Time) {
	cb.counts.onSuccess()

	if state == StateHalfOpen {
		cb.setState(StateClosed, now)
	}
}

func (cb *CircuitBreaker) handleFailure(state State, now time.Time) {
	cb.counts.onFailure()

	switch state {
	case StateClosed:
		if cb.readyToTrip(cb.counts) {
			cb.setState(StateOpen, now)
		}
	case StateHalfOpen:
		// 探测失败，立即转回打开状态
		cb.setState(StateOpen, now)
	}
}

// currentState 获取当前状态，处理窗口/超时过期：
// - CLOSED：统计窗口过期时重置计数
// - OPEN：超时后转HALF_OPEN
func (cb *CircuitBreaker) currentState(now time.Time) (State, uint64) {
	switch cb.state {
	case StateClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.counts.Reset()
			cb.expiry = now.Add(cb.interval)
		}
	case StateOpen:
		if cb.expiry.Before(now) {
			cb.setState(StateHalfOpen, now)
		}
	}

	return cb.state, cb.generation
}

func (cb *CircuitBreaker) setState(state State, now time.Time) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	cb.generation++
	cb.counts.Reset()

	switch state {
	case StateClosed:
		cb.expiry = now.Add(cb.interval)
	case StateOpen:
		cb.expiry = now.Add(cb.timeout)
	case StateHalfOpen:
		cb.expiry = time.Time{} // 半开状态没有过期时间
	}

	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, prev, state)
	}
}

// State 获取当前状态（只读）
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, _ := cb.currentState(time.Now())
	return state
}

// Counts 获取当前统计数据（只读）
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.counts
}
