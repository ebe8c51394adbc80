package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qianlnk/werewolf-engine/engine"
	"github.com/qianlnk/werewolf-engine/models"
)

// 对局状态
const (
	RunRunning  = "running"  // 进行中
	RunFinished = "finished" // 正常结束
	RunFailed   = "failed"   // 运行中止
)

var ErrRunNotFound = errors.New("对局不存在")

// Run 一次引擎运行及其事件记录
type Run struct {
	ID        string            `json:"id"`
	Config    models.GameConfig `json:"config"`
	Status    string            `json:"status"`
	Outcome   string            `json:"outcome,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt int64             `json:"created_at"`

	mutex  sync.RWMutex
	events []models.Event
}

// appendEvent 追加一条事件，由引擎观察回调触发
func (r *Run) appendEvent(ev models.Event) {
	r.mutex.Lock()
	r.events = append(r.events, ev)
	r.mutex.Unlock()
}

// RunInfo 对局的只读视图，API响应用
type RunInfo struct {
	ID        string            `json:"id"`
	Config    models.GameConfig `json:"config"`
	Status    string            `json:"status"`
	Outcome   string            `json:"outcome,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt int64             `json:"created_at"`
	Events    int               `json:"events"`
}

// Info 返回对局当前状态的副本
func (r *Run) Info() RunInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return RunInfo{
		ID:        r.ID,
		Config:    r.Config,
		Status:    r.Status,
		Outcome:   r.Outcome,
		Error:     r.Error,
		CreatedAt: r.CreatedAt,
		Events:    len(r.events),
	}
}

// Events 返回当前已产生事件的副本
func (r *Run) Events() []models.Event {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]models.Event, len(r.events))
	copy(out, r.events)
	return out
}

// RunManager 对局管理器，创建引擎运行并保存事件序列
type RunManager struct {
	runs         map[string]*Run
	webSocketMgr *WebSocketManager
	mutex        sync.RWMutex
}

// NewRunManager 创建对局管理器实例
func NewRunManager(webSocketMgr *WebSocketManager) *RunManager {
	return &RunManager{
		runs:         make(map[string]*Run),
		webSocketMgr: webSocketMgr,
	}
}

// StartRun 校验配置并异步运行一局游戏。
// 配置错误立即返回；产生的每条事件写入对局记录并广播给订阅连接。
func (rm *RunManager) StartRun(cfg models.GameConfig) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Config:    cfg,
		Status:    RunRunning,
		CreatedAt: time.Now().Unix(),
	}

	eng, err := engine.NewEngine(cfg, nil, engine.WithObserver(func(ev models.Event) {
		run.appendEvent(ev)
		if rm.webSocketMgr != nil {
			rm.webSocketMgr.Broadcast(run.ID, ev)
		}
	}))
	if err != nil {
		return nil, err
	}

	rm.mutex.Lock()
	rm.runs[run.ID] = run
	rm.mutex.Unlock()

	go func() {
		events, err := eng.Run(context.Background())

		run.mutex.Lock()
		if err != nil {
			run.Status = RunFailed
			run.Error = err.Error()
		} else {
			run.Status = RunFinished
			if n := len(events); n > 0 {
				run.Outcome = events[n-1].Payload["outcome"]
			}
		}
		run.mutex.Unlock()

		if err != nil {
			log.Printf("对局 %s 运行中止: %v", run.ID, err)
		} else {
			log.Printf("对局 %s 结束，结局: %s，事件数: %d", run.ID, run.Outcome, len(events))
		}
		if rm.webSocketMgr != nil {
			rm.webSocketMgr.CloseRun(run.ID)
		}
	}()

	return run, nil
}

// GetRun 获取对局信息
func (rm *RunManager) GetRun(id string) (*Run, error) {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	run, exists := rm.runs[id]
	if !exists {
		return nil, ErrRunNotFound
	}
	return run, nil
}

// ListRuns 获取全部对局
func (rm *RunManager) ListRuns() []*Run {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	runs := make([]*Run, 0, len(rm.runs))
	for _, run := range rm.runs {
		runs = append(runs, run)
	}
	return runs
}
