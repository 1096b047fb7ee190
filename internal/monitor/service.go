package monitor

import (
	"time"

	"chatwarden/internal/core"
	"chatwarden/internal/logger"
)

// Service 周期维护任务：定时清理滑动窗口残留并输出引擎心跳统计
type Service struct {
	engine   *core.Engine
	interval time.Duration
	stopCh   chan struct{}
	running  bool
}

func NewService(engine *core.Engine, intervalSec int) *Service {
	if intervalSec <= 0 {
		intervalSec = 60
	}
	return &Service{
		engine:   engine,
		interval: time.Duration(intervalSec) * time.Second,
		stopCh:   make(chan struct{}),
	}
}

// IsRunning 是否正在运行
func (s *Service) IsRunning() bool {
	return s.running
}

// Start 启动维护循环
func (s *Service) Start() {
	s.running = true
	logger.Monitor.Info().
		Dur("interval", s.interval).
		Msg("维护服务已启动")

	// 首次立即执行
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			s.running = false
			logger.Monitor.Info().Msg("维护服务已停止")
			return
		}
	}
}

// Stop 停止维护循环
func (s *Service) Stop() {
	if s.running {
		close(s.stopCh)
		s.stopCh = make(chan struct{})
	}
}

// sweep 执行一次清理与心跳
func (s *Service) sweep() {
	removed := s.engine.Ledger().SweepWindows(time.Now())
	stats := s.engine.Stats()

	logger.Monitor.Debug().
		Int("stale_timestamps_removed", removed).
		Int64("total_events", stats.TotalEvents).
		Int("tracked_users", stats.TrackedUsers).
		Int("buffered_events", s.engine.EventLogLen()).
		Msg("引擎心跳")
}
