package extractor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/han-fei/appmon/internal/models"
)

// networkStat 一次网络计数器观测
type networkStat struct {
	rxBytes uint64
	txBytes uint64
	at      time.Time
}

// androidNetworkExtractor Android网络流量提取器
// 按目标应用UID累加xt_qtaguid计数器，相邻两次观测之间计算速率
type androidNetworkExtractor struct {
	target *androidTarget
	prev   *networkStat
	uid    string
}

func newAndroidNetworkExtractor(t *androidTarget) *androidNetworkExtractor {
	return &androidNetworkExtractor{target: t}
}

func (e *androidNetworkExtractor) Name() string { return "network" }

func (e *androidNetworkExtractor) Extract(ctx context.Context, s *models.Sample) error {
	pid := e.target.resolvePID(ctx)
	if pid == "" {
		return nil
	}

	uid, err := e.resolveUID(ctx, pid)
	if err != nil {
		return err
	}

	rxBytes, txBytes, err := e.readCounters(ctx, uid)
	if err != nil {
		return err
	}

	current := &networkStat{rxBytes: rxBytes, txBytes: txBytes, at: time.Now()}
	prev := e.prev
	e.prev = current

	// 首次观测只记录基线；计数器回退时重置基线，均返回中性值
	if prev == nil || rxBytes < prev.rxBytes || txBytes < prev.txBytes {
		return nil
	}

	elapsed := current.at.Sub(prev.at).Seconds()
	if elapsed <= 0 {
		return nil
	}

	s.Network = models.NetworkUsage{
		RxSpeed: float64(rxBytes-prev.rxBytes) / elapsed / 1024,
		TxSpeed: float64(txBytes-prev.txBytes) / elapsed / 1024,
		RxTotal: float64(rxBytes) / 1024,
		TxTotal: float64(txBytes) / 1024,
	}
	return nil
}

// resolveUID 从进程status中解析应用UID，成功后缓存
func (e *androidNetworkExtractor) resolveUID(ctx context.Context, pid string) (string, error) {
	if e.uid != "" {
		return e.uid, nil
	}

	output, err := e.target.gw.Exec(ctx, fmt.Sprintf("shell cat /proc/%s/status", pid))
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, "Uid:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			e.uid = fields[1]
			return e.uid, nil
		}
	}
	return "", fmt.Errorf("network: Uid line not found for pid %s", pid)
}

// readCounters 累加该UID所有链上的收发字节计数
func (e *androidNetworkExtractor) readCounters(ctx context.Context, uid string) (uint64, uint64, error) {
	output, err := e.target.gw.Exec(ctx, "shell cat /proc/net/xt_qtaguid/stats")
	if err != nil {
		return 0, 0, err
	}

	var rxBytes, txBytes uint64
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, uid) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 8 {
			continue
		}
		if rx, err := strconv.ParseUint(fields[5], 10, 64); err == nil {
			rxBytes += rx
		}
		if tx, err := strconv.ParseUint(fields[7], 10, 64); err == nil {
			txBytes += tx
		}
	}
	return rxBytes, txBytes, nil
}
