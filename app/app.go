package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	adapterhttp "media-service/ddd/adapter/http"
	appsvc "media-service/ddd/application/app"
	"media-service/ddd/domain/service"
	"media-service/ddd/infrastructure/engine"
	"media-service/ddd/infrastructure/notify"
	"media-service/ddd/infrastructure/persistence"
	"media-service/ddd/infrastructure/progress"
	"media-service/ddd/infrastructure/queue"
	"media-service/ddd/infrastructure/storage"
	"media-service/ddd/infrastructure/worker"
	"media-service/internal/resource"
	"media-service/pkg/config"
	"media-service/pkg/logger"
	"media-service/pkg/manager"
	"media-service/pkg/observability"
	"media-service/pkg/registry"
	"media-service/pkg/task"
)

func Run() {
	fmt.Println("[STARTUP] Starting media service...")

	// 加载配置
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	// 全局配置必须先于资源初始化
	config.SetGlobalConfig(cfg)
	fmt.Printf("[STARTUP] Config file loaded: %s\n", cfgPath)

	// 初始化日志
	logService := logger.NewLogger(logger.Config{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		Output:   cfg.Log.Output,
		Filename: cfg.Log.Filename,
	})
	logger.SetGlobalLogger(logService)
	defer logService.Close()

	logger.Infof("Media service starting version=%s", "1.0.0")

	// 持续性能剖析
	if cfg.Observability.ProfilingEnabled {
		observability.StartProfiling("media-service", cfg.Observability.ServerAddress)
	}

	// 外部资源初始化
	logger.Infof("Initializing resources...")
	manager.MustInitResources()
	defer manager.CloseResources()

	// 组装应用服务与领域服务
	mediaApp := appsvc.DefaultMediaApp()
	transcriptionApp := appsvc.DefaultTranscriptionApp()
	notifier := notify.NewKafkaNotifier(resource.DefaultKafkaResource())
	processingSvc := service.NewProcessingService(
		persistence.DefaultMediaJobRepository(),
		engine.NewSimulatedTranscodeEngine(&cfg.Engine),
		storage.DefaultStorageGateway(),
		notifier,
		progress.DefaultBroadcaster(),
		&cfg.Engine,
	)
	mediaWorker := worker.NewMediaWorker(
		cfg.Worker.WorkerID,
		queue.DefaultTaskQueue(),
		processingSvc,
		appsvc.DefaultTranscriptionService(),
		cfg.Worker.WorkerCount,
	)

	// 后台任务统一交给task管理器
	task.Register(&backgroundTaskAdapter{
		name:      "mediaWorker",
		startFunc: mediaWorker.Start,
		stopFunc:  mediaWorker.Stop,
	})
	if err := task.StartAll(context.Background()); err != nil {
		logger.Fatal("failed to start background tasks: " + err.Error())
	}

	// 服务注册
	serviceAddr := fmt.Sprintf("%s:%d", cfg.ServiceRegistry.RegisterHost, cfg.Server.Port)
	var serviceRegistry *registry.ServiceRegistry
	if cfg.ServiceRegistry.Enabled {
		serviceRegistry, err = registry.NewServiceRegistry(cfg.ServiceRegistry, serviceAddr)
		if err != nil {
			logger.Fatal("failed to create service registry: " + err.Error())
		}
		if err := serviceRegistry.Register(); err != nil {
			logger.Fatal("failed to register service: " + err.Error())
		}
	}

	// HTTP路由
	gin.SetMode(cfg.Server.Mode)
	ginEngine := gin.New()
	router := adapterhttp.NewRouter(
		mediaApp,
		transcriptionApp,
		progress.DefaultBroadcaster(),
		queue.DefaultTaskQueue(),
		mediaWorker,
	)
	router.SetupMiddleware(ginEngine)
	router.SetupRoutes(ginEngine)

	srv := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     ginEngine,
		ReadTimeout: cfg.Server.ReadTimeout,
		// SSE长连接不设写超时
	}

	go func() {
		logger.Infof("HTTP server listening address=%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error: " + err.Error())
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Infof("Received signal %s, shutting down...", sig)

	if serviceRegistry != nil {
		_ = serviceRegistry.Deregister()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("HTTP server shutdown error: %v", err)
	}

	queue.CloseDefaultTaskQueue()
	task.StopAll()

	logger.Infof("Media service stopped")
}

func resolveConfigPath() string {
	if path := os.Getenv("MEDIA_SERVICE_CONFIG_PATH"); path != "" {
		return path
	}
	return "configs/config.dev.yaml"
}

// backgroundTaskAdapter adapts Start/Stop functions to the BackgroundTask interface.
type backgroundTaskAdapter struct {
	name      string
	startFunc func(ctx context.Context) error
	stopFunc  func() error
}

func (b *backgroundTaskAdapter) Name() string                    { return b.name }
func (b *backgroundTaskAdapter) Start(ctx context.Context) error { return b.startFunc(ctx) }
func (b *backgroundTaskAdapter) Stop() error                     { return b.stopFunc() }
