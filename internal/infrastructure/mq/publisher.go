// Package mq 借阅事件发布适配器
// 把application层的EventPublisher端口接到RabbitMQ（pkg/mq）上。
package mq

import (
	"context"

	"github.com/xiebiao/library/internal/application/lending"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/mq"
)

// 借阅事件路由键
const (
	RoutingKeyLoanCreated  = "loan.created"
	RoutingKeyLoanReturned = "loan.returned"
)

// LoanEventPublisher 借阅事件发布器(RabbitMQ)
type LoanEventPublisher struct {
	publisher *mq.Publisher
}

// NewLoanEventPublisher 创建借阅事件发布器
func NewLoanEventPublisher(publisher *mq.Publisher) *LoanEventPublisher {
	return &LoanEventPublisher{publisher: publisher}
}

// PublishLoanCreated 发布借出事件
func (p *LoanEventPublisher) PublishLoanCreated(ctx context.Context, event lending.LoanCreatedEvent) error {
	return p.publish(ctx, RoutingKeyLoanCreated, event)
}

// PublishLoanReturned 发布归还事件
func (p *LoanEventPublisher) PublishLoanReturned(ctx context.Context, event lending.LoanReturnedEvent) error {
	return p.publish(ctx, RoutingKeyLoanReturned, event)
}

func (p *LoanEventPublisher) publish(ctx context.Context, routingKey string, event interface{}) error {
	err := p.publisher.Publish(ctx, routingKey, event)

	if metrics.EventsPublishedTotal != nil {
		result := "success"
		if err != nil {
			result = "failure"
		}
		metrics.EventsPublishedTotal.WithLabelValues(routingKey, result).Inc()
	}

	return err
}

// NoopPublisher 空实现
// mq.enabled=false时注入，借还主流程不依赖RabbitMQ
type NoopPublisher struct{}

// NewNoopPublisher 创建空发布器
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// PublishLoanCreated 空操作
func (p *NoopPublisher) PublishLoanCreated(ctx context.Context, event lending.LoanCreatedEvent) error {
	return nil
}

// PublishLoanReturned 空操作
func (p *NoopPublisher) PublishLoanReturned(ctx context.Context, event lending.LoanReturnedEvent) error {
	return nil
}
