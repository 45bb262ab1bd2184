//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

	"github.com/xiebiao/library/internal/application/catalog"
	"github.com/xiebiao/library/internal/application/lending"
	appmember "github.com/xiebiao/library/internal/application/member"
	"github.com/xiebiao/library/internal/domain/book"
	copydomain "github.com/xiebiao/library/internal/domain/copy"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/member"
	"github.com/xiebiao/library/internal/infrastructure/config"
	mqinfra "github.com/xiebiao/library/internal/infrastructure/mq"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/mq"
)

// ========================================
// Wire Provider Sets (依赖分组)
// ========================================

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,     // 加载配置文件
	mysql.NewDB,     // 创建MySQL连接
	redis.NewClient, // 创建Redis连接
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewBookRepository,   // 图书仓储
	mysql.NewCopyRepository,   // 副本仓储
	mysql.NewLoanRepository,   // 借阅记录仓储
	mysql.NewMemberRepository, // 读者仓储
	mysql.NewTxManager,        // 事务管理器
	// 事务边界接口绑定：用例依赖接口，mysql.TxManager是实现
	wire.Bind(new(lending.Transactor), new(*mysql.TxManager)),
	wire.Bind(new(catalog.Transactor), new(*mysql.TxManager)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	book.NewService,   // 图书领域服务
	member.NewService, // 读者领域服务
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	catalog.NewCreateBookUseCase,
	catalog.NewUpdateBookUseCase,
	catalog.NewDeleteBookUseCase,
	catalog.NewListBooksUseCase,
	catalog.NewSearchBooksUseCase,
	catalog.NewManageCopiesUseCase,
	provideBorrowBookUseCase, // 借书用例（需要从config提取借阅规则）
	lending.NewReturnBookUseCase,
	lending.NewQueryUseCase,
	appmember.NewRegisterUseCase,
	appmember.NewLoginUseCase,
	appmember.NewLogoutUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,            // JWT管理器（需要从config提取参数）
	provideSessionStore,          // Session存储
	provideAvailabilityCache,     // 可用性缓存（含熔断器）
	provideEventPublisher,        // 借阅事件发布器（按配置选择实现）
	middleware.NewAuthMiddleware, // 认证中间件
	// 缓存接口绑定
	wire.Bind(new(lending.AvailabilityCache), new(*redis.AvailabilityCache)),
	wire.Bind(new(lending.StatsCache), new(*redis.AvailabilityCache)),
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewBookHandler,
	handler.NewCopyHandler,
	handler.NewLendingHandler,
	handler.NewMemberHandler,
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideAvailabilityCache 从Redis客户端创建可用性缓存
func provideAvailabilityCache(client *goredis.Client) *redis.AvailabilityCache {
	return redis.NewAvailabilityCache(client)
}

// provideEventPublisher 按配置选择事件发布器实现
// mq.enabled=false时使用空实现，借还主流程不依赖RabbitMQ
func provideEventPublisher(cfg *config.Config) (lending.EventPublisher, error) {
	if !cfg.MQ.Enabled {
		return mqinfra.NewNoopPublisher(), nil
	}
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		return nil, err
	}
	return mqinfra.NewLoanEventPublisher(publisher), nil
}

// provideBorrowBookUseCase 从配置提取借阅规则创建借书用例
func provideBorrowBookUseCase(
	cfg *config.Config,
	bookRepo book.Repository,
	copyRepo copydomain.Repository,
	loanRepo loan.Repository,
	memberRepo member.Repository,
	txManager lending.Transactor,
	cache lending.AvailabilityCache,
	events lending.EventPublisher,
) *lending.BorrowBookUseCase {
	return lending.NewBorrowBookUseCase(
		bookRepo, copyRepo, loanRepo, memberRepo, txManager, cache, events,
		cfg.Lending.MaxActiveLoans, cfg.Lending.LoanPeriod,
	)
}

// provideGinEngine 创建并配置Gin引擎（路由注册见main.go的registerRoutes）
func provideGinEngine(
	cfg *config.Config,
	bookHandler *handler.BookHandler,
	copyHandler *handler.CopyHandler,
	lendingHandler *handler.LendingHandler,
	memberHandler *handler.MemberHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.Metrics())
	registerRoutes(r, bookHandler, copyHandler, lendingHandler, memberHandler, authMiddleware)
	return r
}

// ========================================
// Wire Injector (依赖注入器)
// ========================================

// InitializeApp 初始化整个应用
// wire.Build在编译期分析依赖关系，生成初始化代码到wire_gen.go
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)

	// 占位返回值，实际代码由Wire生成
	return nil, nil
}
