package extractor

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/han-fei/appmon/internal/gateway"
	"github.com/han-fei/appmon/internal/models"
)

// gfxinfoOutput 构造带帧统计段落的gfxinfo输出
func gfxinfoOutput(frameMs float64, count int) string {
	var b strings.Builder
	b.WriteString("Applications Graphics Acceleration Info:\n")
	b.WriteString(fmt.Sprintf("Total frames rendered: %d\n", count))
	for i := 0; i < count; i++ {
		b.WriteString(fmt.Sprintf("%.2f\n", frameMs))
	}
	return b.String()
}

// TestFPSFromFrameTimes 测试帧时长均值换算FPS
func TestFPSFromFrameTimes(t *testing.T) {
	gw := gateway.NewFakeGateway()
	gw.Responses["shell dumpsys gfxinfo com.demo.app"] = gfxinfoOutput(20.0, 60)

	e := newAndroidFPSExtractor(&androidTarget{gw: gw, packageName: "com.demo.app"})

	var s models.Sample
	if err := e.Extract(context.Background(), &s); err != nil {
		t.Fatalf("提取失败: %v", err)
	}
	if math.Abs(s.FPS-50.0) > 1e-9 {
		t.Errorf("FPS = %v, 期望 50", s.FPS)
	}
}

// TestFPSClamp 测试帧率钳制在60以内
func TestFPSClamp(t *testing.T) {
	gw := gateway.NewFakeGateway()
	gw.Responses["shell dumpsys gfxinfo com.demo.app"] = gfxinfoOutput(8.0, 60)

	e := newAndroidFPSExtractor(&androidTarget{gw: gw, packageName: "com.demo.app"})

	var s models.Sample
	if err := e.Extract(context.Background(), &s); err != nil {
		t.Fatalf("提取失败: %v", err)
	}
	if s.FPS != 60.0 {
		t.Errorf("FPS = %v, 期望钳制为 60", s.FPS)
	}
}

// TestFPSNoFrameStats 测试无帧统计时返回错误且不写入字段
func TestFPSNoFrameStats(t *testing.T) {
	gw := gateway.NewFakeGateway()
	gw.Responses["shell dumpsys gfxinfo com.demo.app"] = "No process found for: com.demo.app"

	e := newAndroidFPSExtractor(&androidTarget{gw: gw, packageName: "com.demo.app"})

	var s models.Sample
	if err := e.Extract(context.Background(), &s); err == nil {
		t.Fatal("无帧统计时期望返回错误")
	}
	if s.FPS != 0 {
		t.Errorf("FPS = %v, 期望保持零值", s.FPS)
	}
}

// TestFPSWindowCarriesOver 测试滑动窗口跨周期保留帧时长
func TestFPSWindowCarriesOver(t *testing.T) {
	gw := gateway.NewFakeGateway()
	gw.Push("shell dumpsys gfxinfo com.demo.app", gfxinfoOutput(20.0, 30))
	gw.Push("shell dumpsys gfxinfo com.demo.app", "Total frames rendered: 30\n")

	e := newAndroidFPSExtractor(&androidTarget{gw: gw, packageName: "com.demo.app"})
	ctx := context.Background()

	var s models.Sample
	if err := e.Extract(ctx, &s); err != nil {
		t.Fatalf("提取失败: %v", err)
	}

	// 本周期没有新帧，依旧基于窗口中已有的帧给出FPS
	s = models.Sample{}
	if err := e.Extract(ctx, &s); err != nil {
		t.Fatalf("提取失败: %v", err)
	}
	if math.Abs(s.FPS-50.0) > 1e-9 {
		t.Errorf("FPS = %v, 期望 50", s.FPS)
	}
}
