package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qianlnk/werewolf-engine/models"
)

// dialSubscriber 起一个测试服务端，升级连接并订阅，返回客户端连接
func dialSubscriber(t *testing.T, wm *WebSocketManager, runID string, backlog func() []models.Event) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("升级WebSocket连接失败: %v", err)
			return
		}
		wm.Subscribe(runID, conn, backlog)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	client.SetReadDeadline(time.Now().Add(3 * time.Second))
	return client
}

func readEvent(t *testing.T, conn *websocket.Conn) models.Event {
	t.Helper()
	var ev models.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestSubscribeKeepsEventDuringBacklogSnapshot(t *testing.T) {
	wm := NewWebSocketManager()
	runID := "run-1"
	ev0 := models.Event{Seq: 0, Kind: models.EventGameStarted}
	ev1 := models.Event{Seq: 1, Kind: models.EventPhaseStarted}

	// 取历史快照期间引擎又广播了一条事件：
	// 连接已注册，事件进入待发队列，补发后刷出，不会丢失
	backlog := func() []models.Event {
		wm.Broadcast(runID, ev1)
		return []models.Event{ev0}
	}
	client := dialSubscriber(t, wm, runID, backlog)

	assert.Equal(t, 0, readEvent(t, client).Seq)
	assert.Equal(t, 1, readEvent(t, client).Seq)
}

func TestSubscribeDeduplicatesBySeq(t *testing.T) {
	wm := NewWebSocketManager()
	runID := "run-2"
	ev0 := models.Event{Seq: 0, Kind: models.EventGameStarted}
	ev1 := models.Event{Seq: 1, Kind: models.EventPhaseStarted}

	// 同一条事件既在历史快照中又被广播过，只发一次
	backlog := func() []models.Event {
		wm.Broadcast(runID, ev1)
		return []models.Event{ev0, ev1}
	}
	client := dialSubscriber(t, wm, runID, backlog)

	assert.Equal(t, 0, readEvent(t, client).Seq)
	assert.Equal(t, 1, readEvent(t, client).Seq)

	wm.CloseRun(runID)
	_, _, err := client.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestSubscribeAfterRunClosed(t *testing.T) {
	wm := NewWebSocketManager()
	runID := "run-3"
	wm.CloseRun(runID)

	ev0 := models.Event{Seq: 0, Kind: models.EventGameStarted}
	client := dialSubscriber(t, wm, runID, func() []models.Event {
		return []models.Event{ev0}
	})

	// 已结束的对局补发全量历史后正常关闭，不留活跃订阅
	assert.Equal(t, 0, readEvent(t, client).Seq)
	_, _, err := client.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))

	wm.mutex.RLock()
	assert.Empty(t, wm.subs[runID])
	wm.mutex.RUnlock()
}

func TestBroadcastReachesSubscriber(t *testing.T) {
	wm := NewWebSocketManager()
	runID := "run-4"
	ev0 := models.Event{Seq: 0, Kind: models.EventGameStarted}

	client := dialSubscriber(t, wm, runID, func() []models.Event {
		return []models.Event{ev0}
	})
	assert.Equal(t, 0, readEvent(t, client).Seq)

	wm.Broadcast(runID, models.Event{Seq: 1, Kind: models.EventGameEnded})
	assert.Equal(t, 1, readEvent(t, client).Seq)
}
