package models

// EventKind 事件类型
type EventKind string

const (
	EventGameStarted   EventKind = "game_started"   // 游戏开始
	EventRoleAssigned  EventKind = "role_assigned"  // 角色分配
	EventPhaseStarted  EventKind = "phase_started"  // 阶段开始
	EventSpeech        EventKind = "speech"         // 玩家发言
	EventVoteCast      EventKind = "vote_cast"      // 投票
	EventVoteTied      EventKind = "vote_tied"      // 投票平票
	EventEliminated    EventKind = "eliminated"     // 投票处决
	EventNoElimination EventKind = "no_elimination" // 本轮无人出局
	EventDeath         EventKind = "death"          // 夜晚死亡
	EventDeathAvoided  EventKind = "death_avoided"  // 死亡被守护抵消
	EventSaved         EventKind = "saved"          // 被解药救活
	EventInspected     EventKind = "inspected"      // 查验结果
	EventHunterShot    EventKind = "hunter_shot"    // 猎人开枪带人
	EventAgentFallback EventKind = "agent_fallback" // 代理超时或无效响应的兜底
	EventGameEnded     EventKind = "game_ended"     // 游戏结束
)

// Event 游戏事件，引擎对外输出的唯一通道。
// Seq为全局递增序号，事件一经追加不再修改。
type Event struct {
	Seq     int               `json:"seq"`
	Round   int               `json:"round"`
	Phase   Phase             `json:"phase"`
	Kind    EventKind         `json:"kind"`
	Actor   string            `json:"actor,omitempty"`
	Targets []string          `json:"targets,omitempty"`
	Payload map[string]string `json:"payload,omitempty"`
}
