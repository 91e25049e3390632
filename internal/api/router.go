package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/codeclash/codeclash-backend/internal/api/handlers"
	"github.com/codeclash/codeclash-backend/internal/api/middleware"
	"github.com/codeclash/codeclash-backend/internal/config"
	"github.com/codeclash/codeclash-backend/internal/identity"
	"github.com/codeclash/codeclash-backend/internal/service"
	"github.com/codeclash/codeclash-backend/internal/websocket"
	jwtutil "github.com/codeclash/codeclash-backend/pkg/jwt"
	"github.com/codeclash/codeclash-backend/pkg/timers"
)

// SetupRouter API 라우터 및 코디네이터 구성
//
// 반환된 stop 함수는 종료 시 백그라운드 작업을 정리한다.
func SetupRouter(cfg *config.Config) (*gin.Engine, func()) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var zapLogger *zap.Logger
	if cfg.Env == "production" {
		zapLogger, _ = zap.NewProduction()
	} else {
		zapLogger, _ = zap.NewDevelopment()
	}

	router := gin.New()

	// 전역 미들웨어
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// 외부 사용자 스토어 해석기 (Redis 설정 시 read-through 캐시)
	var resolver identity.Resolver = identity.NewStoreResolver(cfg.UserStoreURL, zapLogger)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zapLogger.Warn("Invalid Redis URL, identity cache disabled", zap.Error(err))
		} else {
			redisClient = redis.NewClient(opts)
			resolver = identity.NewCachedResolver(resolver, redisClient, 5*time.Minute, zapLogger)
		}
	}

	// WebSocket Hub 초기화
	hub := websocket.NewHub(zapLogger)

	// 코디네이터 구성 (프레즌스 → 방 → 큐 → 매치)
	timerRegistry := timers.NewRegistry()
	presence := service.NewPresenceRegistry(zapLogger)
	roomService := service.NewRoomService(presence, hub, timerRegistry, cfg.RoomStartDelay, zapLogger)
	matchService := service.NewMatchService(presence, hub, timerRegistry, cfg.AcceptanceTimeout, cfg.CompletionDelay, zapLogger)
	matchmakingService := service.NewMatchmakingService(
		presence,
		matchService,
		hub,
		timerRegistry,
		cfg.SearchTimeout,
		cfg.SweepInterval,
		cfg.MaxRatingDifference,
		zapLogger,
	)
	socialService := service.NewSocialService(presence, hub, zapLogger)

	coordinator := service.NewCoordinator(
		presence,
		roomService,
		matchmakingService,
		matchService,
		socialService,
		hub,
		zapLogger,
	)
	hub.SetHandler(coordinator)

	go hub.Run()
	matchmakingService.Start()

	// 인증 미들웨어
	jwtManager := jwtutil.NewManager(cfg.JWTSecret, cfg.JWTExpiration)
	auth := middleware.Auth(jwtManager, resolver)

	// Handler 초기화
	wsHandler := handlers.NewWebSocketHandler(hub)
	directoryHandler := handlers.NewDirectoryHandler(presence, roomService)

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// WebSocket endpoint
		v1.GET("/ws", middleware.ConnectRateLimit(), auth, wsHandler.HandleWebSocket)

		// 로비 조회
		directory := v1.Group("")
		directory.Use(middleware.DirectoryRateLimit())
		{
			directory.GET("/rooms", directoryHandler.ListRooms)
			directory.GET("/online", directoryHandler.ListOnline)
		}
	}

	stop := func() {
		matchmakingService.Stop()
		timerRegistry.StopAll()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		_ = zapLogger.Sync()
	}

	return router, stop
}
