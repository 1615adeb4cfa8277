// Package api 提供监控器的HTTP管理接口
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/han-fei/appmon/internal/collector"
	"github.com/han-fei/appmon/internal/config"
	"github.com/han-fei/appmon/internal/registry"
	"github.com/han-fei/appmon/internal/websocket"
)

// Server HTTP API服务
type Server struct {
	cfg      *config.Config
	registry *registry.MonitorRegistry
	hub      *websocket.Hub
	router   *mux.Router

	// 可选的样本下游，监控器创建时接入
	extraSubscribers []func(monitorID string) collector.Subscriber
}

// NewServer 创建API服务
func NewServer(cfg *config.Config, reg *registry.MonitorRegistry, hub *websocket.Hub) *Server {
	s := &Server{
		cfg:      cfg,
		registry: reg,
		hub:      hub,
		router:   mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// AddSubscriberFactory 注册额外的样本下游工厂
// 每个新建监控器会通过工厂获得一个订阅回调并接入
func (s *Server) AddSubscriberFactory(f func(monitorID string) collector.Subscriber) {
	s.extraSubscribers = append(s.extraSubscribers, f)
}

// setupRoutes 注册全部路由
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/monitors", s.handleCreateMonitor).Methods("POST")
	s.router.HandleFunc("/api/monitors", s.handleListMonitors).Methods("GET")
	s.router.HandleFunc("/api/monitors/{id}", s.handleRemoveMonitor).Methods("DELETE")
	s.router.HandleFunc("/api/monitors/{id}/stop", s.handleStopMonitor).Methods("POST")
	s.router.HandleFunc("/api/monitors/{id}/samples", s.handleSamples).Methods("GET")
	s.router.HandleFunc("/api/monitors/{id}/alerts", s.handleAlerts).Methods("GET")
	s.router.HandleFunc("/api/monitors/{id}/summary", s.handleSummary).Methods("GET")
	s.router.HandleFunc("/api/monitors/{id}/export", s.handleExport).Methods("GET")
	if s.hub != nil {
		s.router.HandleFunc("/ws", s.hub.HandleWebSocket)
	}
}

// Router HTTP处理器
func (s *Server) Router() http.Handler {
	return s.router
}

// createMonitorRequest 创建监控器的请求体
type createMonitorRequest struct {
	ID          string  `json:"id"`
	Platform    string  `json:"platform"`
	DeviceID    string  `json:"device_id"`
	PackageName string  `json:"package_name"`
	Interval    float64 `json:"interval"` // 采样间隔（秒），0取配置默认
	Duration    float64 `json:"duration"` // 采样时长（秒），0表示无限
}

// handleHealth 健康检查
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"monitors": len(s.registry.List()),
		"time":     time.Now().Format(time.RFC3339),
	})
}

// handleCreateMonitor 创建并启动监控器
func (s *Server) handleCreateMonitor(w http.ResponseWriter, r *http.Request) {
	var req createMonitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Platform == "" || req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "platform and device_id are required")
		return
	}

	monitor, err := s.registry.Create(collector.Options{
		ID:          req.ID,
		Platform:    req.Platform,
		DeviceID:    req.DeviceID,
		PackageName: req.PackageName,
	})
	if err != nil {
		if errors.Is(err, registry.ErrMonitorExists) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.hub != nil {
		monitor.Subscribe(s.hub.SubscriberFor(monitor.ID()))
	}
	for _, factory := range s.extraSubscribers {
		monitor.Subscribe(factory(monitor.ID()))
	}

	interval := s.cfg.Monitor.Interval
	if req.Interval > 0 {
		interval = time.Duration(req.Interval * float64(time.Second))
	}
	duration := time.Duration(req.Duration * float64(time.Second))

	if err := monitor.Start(interval, duration); err != nil {
		s.registry.Remove(monitor.ID())
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Printf("已创建监控器 %s", monitor.ID())
	writeJSON(w, http.StatusCreated, map[string]string{"id": monitor.ID()})
}

// handleListMonitors 列出全部监控器
func (s *Server) handleListMonitors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"monitors": s.registry.List()})
}

// handleRemoveMonitor 停止并移除监控器
func (s *Server) handleRemoveMonitor(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.registry.Remove(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "removed"})
}

// handleStopMonitor 停止监控器但保留其缓冲数据
func (s *Server) handleStopMonitor(w http.ResponseWriter, r *http.Request) {
	monitor, err := s.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	monitor.Stop()
	writeJSON(w, http.StatusOK, map[string]string{"id": monitor.ID(), "status": "stopped"})
}

// handleSamples 返回最近的样本，count为0或缺省时返回全部
func (s *Server) handleSamples(w http.ResponseWriter, r *http.Request) {
	monitor, err := s.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	count := 0
	if v := r.URL.Query().Get("count"); v != "" {
		count, err = strconv.Atoi(v)
		if err != nil || count < 0 {
			writeError(w, http.StatusBadRequest, "invalid count")
			return
		}
	}

	samples := monitor.Buffer().Snapshot()
	if count > 0 {
		samples = monitor.Buffer().Recent(count)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":      monitor.ID(),
		"count":   len(samples),
		"samples": samples,
	})
}

// handleAlerts 返回本次会话的全部告警事件
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	monitor, err := s.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	events := monitor.Alerts().Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     monitor.ID(),
		"count":  len(events),
		"alerts": events,
	})
}

// handleSummary 返回会话性能摘要
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	monitor, err := s.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, monitor.Summary())
}

// handleExport 导出缓冲区全部样本
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	monitor, err := s.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	data, err := monitor.Export()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+monitor.ID()+".json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// writeJSON 写出JSON响应
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("写出响应失败: %v", err)
	}
}

// writeError 写出错误响应
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
