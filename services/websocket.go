package services

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/qianlnk/werewolf-engine/models"
)

// subscriber 单个订阅连接。补发历史事件期间到达的广播先进入
// 待发队列，补发完成后刷出；写入按事件序号去重，历史快照和
// 队列重叠的事件只发一次。
type subscriber struct {
	conn *websocket.Conn

	mutex     sync.Mutex
	replaying bool
	pending   []models.Event
	nextSeq   int
}

func newSubscriber(conn *websocket.Conn) *subscriber {
	return &subscriber{conn: conn, replaying: true}
}

// send 推送一条广播事件，补发尚未完成时先入队
func (s *subscriber) send(ev models.Event) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.replaying {
		s.pending = append(s.pending, ev)
		return nil
	}
	return s.write(ev)
}

// replay 补发历史事件，随后刷出补发期间入队的广播
func (s *subscriber) replay(backlog []models.Event) error {
	for _, ev := range backlog {
		s.mutex.Lock()
		err := s.write(ev)
		s.mutex.Unlock()
		if err != nil {
			return err
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.replaying = false
	for _, ev := range s.pending {
		if err := s.write(ev); err != nil {
			return err
		}
	}
	s.pending = nil
	return nil
}

// write 带超时写入一条事件，已发过的序号跳过。调用方持有锁。
func (s *subscriber) write(ev models.Event) error {
	if ev.Seq < s.nextSeq {
		return nil
	}
	s.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	defer s.conn.SetWriteDeadline(time.Time{})
	if err := s.conn.WriteJSON(ev); err != nil {
		return err
	}
	s.nextSeq = ev.Seq + 1
	return nil
}

// close 发送正常关闭帧并关闭连接
func (s *subscriber) close() {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "对局已结束")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	s.conn.Close()
}

// WebSocketManager 事件流连接管理器。
// 观察者按对局订阅，引擎每产生一条事件就推送一条，
// 对局结束后发送正常关闭帧。
type WebSocketManager struct {
	subs   map[string][]*subscriber // runID -> 订阅连接
	closed map[string]bool          // runID -> 对局已结束
	mutex  sync.RWMutex
}

// NewWebSocketManager 创建WebSocket管理器实例
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		subs:   make(map[string][]*subscriber),
		closed: make(map[string]bool),
	}
}

// Subscribe 订阅指定对局的事件流，backlog返回已产生的历史事件。
// 连接先注册再取历史快照，注册到快照之间广播的事件进入待发队列，
// 补发完成后按序号去重刷出，订阅不会漏掉任何事件。
// 对局已结束时补发全量历史后直接正常关闭。
func (wm *WebSocketManager) Subscribe(runID string, conn *websocket.Conn, backlog func() []models.Event) {
	sub := newSubscriber(conn)

	wm.mutex.Lock()
	ended := wm.closed[runID]
	if !ended {
		wm.subs[runID] = append(wm.subs[runID], sub)
	}
	wm.mutex.Unlock()

	if err := sub.replay(backlog()); err != nil {
		log.Printf("补发历史事件失败: %v", err)
		wm.remove(runID, sub)
		return
	}

	if ended {
		sub.close()
		return
	}

	// 读协程只负责侦测连接关闭
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wm.remove(runID, sub)
				return
			}
		}
	}()
}

// Broadcast 向对局的全部订阅连接推送一条事件
func (wm *WebSocketManager) Broadcast(runID string, ev models.Event) {
	wm.mutex.RLock()
	subs := append([]*subscriber(nil), wm.subs[runID]...)
	wm.mutex.RUnlock()

	for _, sub := range subs {
		if err := sub.send(ev); err != nil {
			log.Printf("推送事件失败: %v", err)
			wm.remove(runID, sub)
		}
	}
}

// CloseRun 对局结束，关闭全部订阅连接；之后的订阅只补发历史
func (wm *WebSocketManager) CloseRun(runID string) {
	wm.mutex.Lock()
	subs := wm.subs[runID]
	delete(wm.subs, runID)
	wm.closed[runID] = true
	wm.mutex.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}

// remove 移除并关闭一个订阅连接
func (wm *WebSocketManager) remove(runID string, target *subscriber) {
	wm.mutex.Lock()
	subs := wm.subs[runID]
	for i, sub := range subs {
		if sub == target {
			wm.subs[runID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	wm.mutex.Unlock()

	target.conn.Close()
}
