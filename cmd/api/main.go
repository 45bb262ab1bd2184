package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/library/internal/application/catalog"
	"github.com/xiebiao/library/internal/application/lending"
	appmember "github.com/xiebiao/library/internal/application/member"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/member"
	"github.com/xiebiao/library/internal/infrastructure/config"
	mqinfra "github.com/xiebiao/library/internal/infrastructure/mq"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/mq"
	"github.com/xiebiao/library/pkg/response"
)

// main 主程序入口
// 说明：手动依赖注入（wire.go提供Wire版本，运行wire gen生成）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化指标
	metrics.InitMetrics()

	// 3. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 4. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 5. 初始化消息队列（可选）
	var eventPublisher lending.EventPublisher = mqinfra.NewNoopPublisher()
	if cfg.MQ.Enabled {
		publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Fatalf("初始化消息队列失败: %v", err)
		}
		defer publisher.Close()
		eventPublisher = mqinfra.NewLoanEventPublisher(publisher)
	}

	// 6. 依赖注入（手动组装）
	// 依赖注入链: Repository ← Service ← UseCase ← Handler

	// 基础设施层
	bookRepo := mysql.NewBookRepository(db)
	copyRepo := mysql.NewCopyRepository(db)
	loanRepo := mysql.NewLoanRepository(db)
	memberRepo := mysql.NewMemberRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	availabilityCache := redis.NewAvailabilityCache(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	bookService := book.NewService()
	memberService := member.NewService()

	// 应用层
	createBookUseCase := catalog.NewCreateBookUseCase(bookRepo, bookService)
	updateBookUseCase := catalog.NewUpdateBookUseCase(bookRepo, bookService)
	deleteBookUseCase := catalog.NewDeleteBookUseCase(bookRepo, copyRepo, loanRepo, txManager, availabilityCache)
	listBooksUseCase := catalog.NewListBooksUseCase(bookRepo)
	searchBooksUseCase := catalog.NewSearchBooksUseCase(bookRepo)
	manageCopiesUseCase := catalog.NewManageCopiesUseCase(bookRepo, copyRepo, availabilityCache)
	borrowBookUseCase := lending.NewBorrowBookUseCase(
		bookRepo, copyRepo, loanRepo, memberRepo, txManager,
		availabilityCache, eventPublisher,
		cfg.Lending.MaxActiveLoans, cfg.Lending.LoanPeriod,
	)
	returnBookUseCase := lending.NewReturnBookUseCase(loanRepo, copyRepo, txManager, availabilityCache, eventPublisher)
	queryUseCase := lending.NewQueryUseCase(bookRepo, copyRepo, loanRepo, availabilityCache)
	registerUseCase := appmember.NewRegisterUseCase(memberRepo, memberService)
	loginUseCase := appmember.NewLoginUseCase(memberRepo, memberService, jwtManager, sessionStore)
	logoutUseCase := appmember.NewLogoutUseCase(sessionStore, jwtManager)

	// 接口层
	bookHandler := handler.NewBookHandler(createBookUseCase, updateBookUseCase, deleteBookUseCase, listBooksUseCase, searchBooksUseCase)
	copyHandler := handler.NewCopyHandler(manageCopiesUseCase, queryUseCase)
	lendingHandler := handler.NewLendingHandler(borrowBookUseCase, returnBookUseCase, queryUseCase)
	memberHandler := handler.NewMemberHandler(registerUseCase, loginUseCase, logoutUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 7. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	// 8. 注册路由
	registerRoutes(r, bookHandler, copyHandler, lendingHandler, memberHandler, authMiddleware)

	// 9. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   读者注册: POST http://localhost%s/api/v1/members/register\n", addr)
	fmt.Printf("   图书检索: GET  http://localhost%s/api/v1/books/search\n", addr)
	fmt.Printf("   借书:     POST http://localhost%s/api/v1/loans (需要登录)\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	bookHandler *handler.BookHandler,
	copyHandler *handler.CopyHandler,
	lendingHandler *handler.LendingHandler,
	memberHandler *handler.MemberHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus抓取端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档（访问 /swagger/index.html）
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API路由组
	v1 := r.Group("/api/v1")
	{
		// 读者模块
		members := v1.Group("/members")
		{
			members.POST("/register", memberHandler.Register)
			members.POST("/login", memberHandler.Login)
			members.POST("/logout", authMiddleware.RequireAuth(), memberHandler.Logout)
		}

		// 图书模块（浏览/检索公开，维护需要馆员）
		books := v1.Group("/books")
		{
			books.GET("", bookHandler.ListBooks)
			books.GET("/search", bookHandler.SearchBooks)
			books.GET("/:id", bookHandler.GetBook)
			books.GET("/:id/availability", lendingHandler.GetAvailability)
			books.GET("/:id/stats", copyHandler.GetCopyStats)

			// 馆员操作
			admin := books.Group("")
			admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
			{
				admin.POST("", bookHandler.CreateBook)
				admin.PATCH("/:id", bookHandler.UpdateBook)
				admin.DELETE("/:id", bookHandler.DeleteBook)
				admin.GET("/:id/copies", copyHandler.ListCopies)
				admin.GET("/:id/loans", lendingHandler.ListOpenLoansForBook)
			}
		}

		// 类别列表（公开）
		v1.GET("/genres", bookHandler.ListGenres)

		// 副本模块（馆员）
		copies := v1.Group("/copies")
		copies.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
		{
			copies.POST("", copyHandler.AddCopy)
			copies.PUT("/:id/status", copyHandler.SetCopyStatus)
		}

		// 借阅模块（需要登录）
		loans := v1.Group("/loans")
		loans.Use(authMiddleware.RequireAuth())
		{
			loans.POST("", lendingHandler.BorrowBook)
			loans.POST("/return", lendingHandler.ReturnBook)
			loans.GET("/active", lendingHandler.ListActiveLoans)
			loans.GET("/active/count", lendingHandler.GetActiveLoanCount)
			loans.GET("/history", lendingHandler.ListLoanHistory)
		}
	}
}
