package models

import (
	"time"
)

// Sample 表示一个采样周期内采集到的全部性能指标快照
// 所有字段在缺失时保持零值，不区分"未采集"和"真实为零"
type Sample struct {
	Timestamp    time.Time    `json:"timestamp"`
	CPUUsage     float64      `json:"cpu_usage"`     // CPU使用率百分比
	MemoryUsage  float64      `json:"memory_usage"`  // 内存使用量（MB）
	MemoryDetail MemoryDetail `json:"memory_detail"` // 详细内存信息
	Network      NetworkUsage `json:"network_usage"` // 网络使用数据
	FPS          float64      `json:"fps"`           // 帧率
	Battery      BatteryInfo  `json:"battery_info"`  // 电池信息
	GPUUsage     float64      `json:"gpu_usage"`     // GPU使用率百分比
	Thermal      ThermalInfo  `json:"thermal_info"`  // 热量信息
}

// MemoryDetail 进程内存细分（MB）
type MemoryDetail struct {
	PSSTotal     float64 `json:"pss_total"`     // 比例集大小
	PrivateDirty float64 `json:"private_dirty"` // 私有脏页
	PrivateClean float64 `json:"private_clean"` // 私有干净页
}

// NetworkUsage 网络使用数据
type NetworkUsage struct {
	RxSpeed float64 `json:"rx_speed"` // 接收速率（KB/s）
	TxSpeed float64 `json:"tx_speed"` // 发送速率（KB/s）
	RxTotal float64 `json:"rx_total"` // 累计接收（KB）
	TxTotal float64 `json:"tx_total"` // 累计发送（KB）
}

// BatteryInfo 电池信息
type BatteryInfo struct {
	Level       int     `json:"level"`       // 电量百分比
	Temperature float64 `json:"temperature"` // 温度（摄氏度）
	Voltage     int     `json:"voltage"`     // 电压（mV）
	Current     int     `json:"current"`     // 电流（uA）
	Power       float64 `json:"power"`       // 功率（W），电压电流同时可用时计算
	Status      string  `json:"status"`      // 充电状态
}

// ThermalInfo 热量信息
type ThermalInfo struct {
	CPUTemp     float64 `json:"cpu_temp"`     // CPU温度（摄氏度）
	BatteryTemp float64 `json:"battery_temp"` // 电池温度（摄氏度）
}

// AlertEvent 一次阈值越界产生的告警事件，创建后不再修改
type AlertEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Metric    string    `json:"metric"`    // 指标名称
	Value     float64   `json:"value"`     // 观测值
	Threshold float64   `json:"threshold"` // 阈值
	Direction string    `json:"direction"` // above 或 below
	Message   string    `json:"message"`
}

// 告警方向
const (
	DirectionAbove = "above"
	DirectionBelow = "below"
)

// Stats 一组数值的统计摘要
type Stats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

// MonitorSummary 单个监控会话的性能摘要
type MonitorSummary struct {
	MonitorID   string           `json:"monitor_id"`
	Platform    string           `json:"platform"`
	DeviceID    string           `json:"device_id"`
	PackageName string           `json:"package_name"`
	Duration    float64          `json:"duration"` // 已运行时长（秒）
	DataPoints  int              `json:"data_points"`
	AlertsCount int              `json:"alerts_count"`
	Stats       map[string]Stats `json:"stats"` // cpu/memory/fps统计
}
