package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

func newTestBreaker(timeout time.Duration, trip uint32) *CircuitBreaker {
	return NewCircuitBreaker("test", Config{
		MaxRequests: 2,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= trip
		},
	})
}

// TestCircuitBreaker_ClosedState 测试关闭状态（正常放行）
func TestCircuitBreaker_ClosedState(t *testing.T) {
	cb := newTestBreaker(30*time.Second, 5)

	for i := 0; i < 10; i++ {
		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("期望成功，实际失败: %v", err)
		}
	}

	if cb.State() != StateClosed {
		t.Errorf("期望状态为CLOSED，实际%s", cb.State())
	}
	if counts := cb.Counts(); counts.TotalSuccesses != 10 {
		t.Errorf("期望成功10次，实际%d次", counts.TotalSuccesses)
	}
}

// TestCircuitBreaker_OpenState 测试打开状态（快速失败）
func TestCircuitBreaker_OpenState(t *testing.T) {
	cb := newTestBreaker(30*time.Second, 5)

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error { return errors.New("redis down") })
	}

	if cb.State() != StateOpen {
		t.Errorf("期望状态为OPEN，实际%s", cb.State())
	}

	// 打开状态下请求不触达下游
	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	if err != ErrOpenState {
		t.Errorf("期望返回ErrOpenState，实际%v", err)
	}
	if called {
		t.Error("熔断器打开时不应该调用实际函数")
	}
}

// TestCircuitBreaker_HalfOpenRecovery 测试半开探测成功后恢复
func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := newTestBreaker(50*time.Millisecond, 3)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errors.New("fail") })
	}
	if cb.State() != StateOpen {
		t.Fatalf("期望状态为OPEN，实际%s", cb.State())
	}

	// 超时后转半开，探测成功转回关闭
	time.Sleep(80 * time.Millisecond)
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("半开状态探测请求应放行: %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("探测成功后期望状态为CLOSED，实际%s", cb.State())
	}
}

// TestCircuitBreaker_HalfOpenFailure 测试半开探测失败后回到打开
func TestCircuitBreaker_HalfOpenFailure(t *testing.T) {
	cb := newTestBreaker(50*time.Millisecond, 3)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errors.New("fail") })
	}

	time.Sleep(80 * time.Millisecond)
	_ = cb.Execute(func() error { return errors.New("still failing") })

	if cb.State() != StateOpen {
		t.Errorf("探测失败后期望状态为OPEN，实际%s", cb.State())
	}
}

// TestCircuitBreaker_StateChangeCallback 测试状态变化回调
func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	cb := newTestBreaker(30*time.Second, 2)

	var transitions []string
	cb.SetStateChangeCallback(func(name string, from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	_ = cb.Execute(func() error { return errors.New("fail") })
	_ = cb.Execute(func() error { return errors.New("fail") })

	if len(transitions) != 1 || transitions[0] != "CLOSED->OPEN" {
		t.Errorf("期望一次CLOSED->OPEN转移，实际%v", transitions)
	}
}

// TestCounts_FailureRate 测试失败率计算
func TestCounts_FailureRate(t *testing.T) {
	c := Counts{Requests: 10, TotalFailures: 3}
	if rate := c.FailureRate(); rate != 0.3 {
		t.Errorf("期望失败率0.3，实际%v", rate)
	}

	empty := Counts{}
	if rate := empty.FailureRate(); rate != 0 {
		t.Errorf("无请求时期望失败率0，实际%v", rate)
	}
}
