package engine

import "github.com/qianlnk/werewolf-engine/models"

// EventObserver 事件观察回调，引擎每追加一条事件就同步调用一次。
// 回调在引擎的执行协程里运行，耗时操作应由嵌入方自行异步化。
type EventObserver func(models.Event)

// eventLog 追加式事件日志，序号全局递增，事件一经追加不再修改
type eventLog struct {
	events    []models.Event
	observers []EventObserver
}

// append 追加一条事件并分配序号
func (l *eventLog) append(round int, phase models.Phase, kind models.EventKind, actor string, targets []string, payload map[string]string) models.Event {
	ev := models.Event{
		Seq:     len(l.events),
		Round:   round,
		Phase:   phase,
		Kind:    kind,
		Actor:   actor,
		Targets: targets,
		Payload: payload,
	}
	l.events = append(l.events, ev)
	for _, observe := range l.observers {
		observe(ev)
	}
	return ev
}

// all 返回全部事件的副本
func (l *eventLog) all() []models.Event {
	out := make([]models.Event, len(l.events))
	copy(out, l.events)
	return out
}
