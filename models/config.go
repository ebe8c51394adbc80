package models

import "time"

// TiePolicy 平票处理策略
type TiePolicy string

const (
	TieNoElimination TiePolicy = "no_elimination" // 平票无人出局
	TieRevote        TiePolicy = "revote"         // 平票者之间重投一轮
	TieRandom        TiePolicy = "random"         // 按种子随机选一人出局
)

// 胜利条件名称，按配置顺序逐个判定，先命中者结束游戏
const (
	WinWerewolvesEliminated = "werewolves_eliminated" // 狼人出局，好人阵营胜利
	WinWerewolfParity       = "werewolf_parity"       // 狼人数量达到好人数量，狼人阵营胜利
)

// 游戏结局
const (
	OutcomeVillageWin  = "village_win"  // 好人阵营胜利
	OutcomeWerewolfWin = "werewolf_win" // 狼人阵营胜利
)

// GameConfig 一局游戏的完整配置，构造引擎后不再修改
type GameConfig struct {
	PlayerCount      int           `json:"player_count"`
	Roles            map[Role]int  `json:"roles"`
	PlayerNames      []string      `json:"player_names,omitempty"` // 可选，缺省自动编号
	WinConditions    []string      `json:"win_conditions"`
	TiePolicy        TiePolicy     `json:"tie_policy"`
	Seed             int64         `json:"seed"`
	DiscussionRounds int           `json:"discussion_rounds,omitempty"` // 白天每人发言轮数，缺省1轮
	AgentTimeout     time.Duration `json:"agent_timeout,omitempty"`     // 单次代理调用超时，缺省30秒
}
