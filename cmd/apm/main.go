package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/han-fei/appmon/internal/api"
	"github.com/han-fei/appmon/internal/auth"
	"github.com/han-fei/appmon/internal/collector"
	"github.com/han-fei/appmon/internal/config"
	"github.com/han-fei/appmon/internal/registry"
	"github.com/han-fei/appmon/internal/service"
	"github.com/han-fei/appmon/internal/storage"
	"github.com/han-fei/appmon/internal/websocket"
)

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "configs/apm.yaml", "配置文件路径")
	platform := flag.String("platform", "", "启动时直接创建监控器的平台（android/ios）")
	deviceID := flag.String("device", "", "设备序列号或UDID")
	packageName := flag.String("package", "", "目标应用包名")
	duration := flag.Duration("duration", 0, "采样时长，0表示持续采样")
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Printf("加载配置失败: %v，使用默认配置", err)
		cfg = config.DefaultConfig()
	}

	// 创建注册表和WebSocket连接中心
	reg := registry.NewRegistry(cfg)
	hub := websocket.NewHub(&cfg.WebSocket)
	go hub.Run()

	// 创建可选的样本下游
	producer := service.NewKafkaProducer(&cfg.Kafka)
	defer producer.Close()
	sink := storage.NewRedisSink(&cfg.Redis)
	defer sink.Close()

	// 创建API服务
	server := api.NewServer(cfg, reg, hub)
	if producer.IsEnabled() {
		server.AddSubscriberFactory(producer.SubscriberFor)
	}
	if sink.IsEnabled() {
		server.AddSubscriberFactory(sink.SubscriberFor)
	}

	// 认证中间件
	jwtManager := auth.NewManager(cfg.API.JWTSecret, cfg.API.TokenExpiry)
	handler := jwtManager.Middleware(server.Router())

	// 命令行指定设备时直接启动监控器
	if *platform != "" && *deviceID != "" {
		monitor, err := reg.Create(collector.Options{
			Platform:    *platform,
			DeviceID:    *deviceID,
			PackageName: *packageName,
		})
		if err != nil {
			log.Fatalf("创建监控器失败: %v", err)
		}
		monitor.Subscribe(hub.SubscriberFor(monitor.ID()))
		if producer.IsEnabled() {
			monitor.Subscribe(producer.SubscriberFor(monitor.ID()))
		}
		if sink.IsEnabled() {
			monitor.Subscribe(sink.SubscriberFor(monitor.ID()))
		}
		if err := monitor.Start(cfg.Monitor.Interval, *duration); err != nil {
			log.Fatalf("启动监控器失败: %v", err)
		}
	}

	// 启动HTTP服务
	httpServer := &http.Server{
		Addr:    cfg.API.Addr,
		Handler: handler,
	}
	go func() {
		log.Printf("API服务已启动，监听 %s", cfg.API.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API服务异常退出: %v", err)
		}
	}()

	// 等待退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("收到退出信号，正在关闭...")

	// 停止全部监控器后关闭HTTP服务
	reg.StopAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("关闭API服务失败: %v", err)
	}
	log.Println("服务已退出")
}
