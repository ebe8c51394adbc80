package models

// Phase 游戏阶段
type Phase string

const (
	PhaseSetup     Phase = "setup"     // 准备阶段
	PhaseNight     Phase = "night"     // 夜晚阶段
	PhaseDay       Phase = "day"       // 白天讨论阶段
	PhaseVoting    Phase = "voting"    // 投票阶段
	PhaseExecution Phase = "execution" // 处决阶段
	PhaseWinCheck  Phase = "win_check" // 胜负判定阶段
	PhaseEnded     Phase = "ended"     // 游戏结束
)

// Role 游戏角色名称
type Role string

const (
	Werewolf Role = "werewolf" // 狼人
	Villager Role = "villager" // 村民
	Seer     Role = "seer"     // 预言家
	Witch    Role = "witch"    // 女巫
	Guard    Role = "guard"    // 守卫
	Hunter   Role = "hunter"   // 猎人
)

// Faction 阵营
type Faction string

const (
	WerewolfFaction Faction = "werewolf" // 狼人阵营
	VillageFaction  Faction = "village"  // 好人阵营
)

// AbilityKind 技能类型
type AbilityKind string

const (
	AbilityProtect AbilityKind = "protect" // 守护
	AbilityInspect AbilityKind = "inspect" // 查验
	AbilityKill    AbilityKind = "kill"    // 击杀
	AbilitySave    AbilityKind = "save"    // 解救
	AbilityPoison  AbilityKind = "poison"  // 毒杀
	AbilityShoot   AbilityKind = "shoot"   // 猎人开枪
)

// Personality AI性格特征
type Personality string

const (
	Aggressive Personality = "aggressive" // 激进型
	Cautious   Personality = "cautious"   // 谨慎型
	Strategic  Personality = "strategic"  // 策略型
	Random     Personality = "random"     // 随机型
)

// Player 玩家信息
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Seat  int    `json:"seat"`
	Role  Role   `json:"role"`
	Alive bool   `json:"alive"`
}

// Action 一次技能决策（由代理提出，经引擎校验后入队）
type Action struct {
	Kind   AbilityKind `json:"kind"`
	Target string      `json:"target,omitempty"`
	Skip   bool        `json:"skip,omitempty"` // 放弃本回合技能
}

// Vote 一次投票（Target为空表示弃票）
type Vote struct {
	Voter  string `json:"voter"`
	Target string `json:"target,omitempty"`
}
