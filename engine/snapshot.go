package engine

import "github.com/qianlnk/werewolf-engine/models"

// PlayerView 快照中的玩家公开信息，不含角色
type PlayerView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Seat  int    `json:"seat"`
	Alive bool   `json:"alive"`
}

// Speech 一条公开发言
type Speech struct {
	Player string `json:"player"`
	Round  int    `json:"round"`
	Text   string `json:"text"`
}

// InspectResult 预言家的一次查验结果
type InspectResult struct {
	Target  string         `json:"target"`
	Faction models.Faction `json:"faction"`
}

// Snapshot 发给代理的只读视图，只包含该玩家合法可知的信息。
// 引擎每次调用代理前按当前状态构造，代理不持有游戏状态的引用。
type Snapshot struct {
	Self  models.Player // 自己的完整信息，含角色
	Round int
	Phase models.Phase

	// Ask 本次ProposeAction请求的技能类型，Speak和Vote时为空
	Ask models.AbilityKind

	Players []PlayerView // 全部座位的公开信息

	Teammates   []string        // 狼人队友ID，仅狼人可见
	Inspections []InspectResult // 自己历史查验结果，仅预言家可见
	AttackedID  string          // 今晚被袭击的玩家，仅女巫决定用药时可见
	HasSave     bool            // 解药是否可用，仅女巫可见
	HasPoison   bool            // 毒药是否可用，仅女巫可见

	Speeches  []Speech      // 公开发言记录
	LastVotes []models.Vote // 上一轮公开投票

	// Candidates 本次决策限定的目标集合，为空表示不限定。
	// 平票重投时为平票者列表。
	Candidates []string
}

// AlivePlayers 返回存活玩家视图
func (s Snapshot) AlivePlayers() []PlayerView {
	alive := make([]PlayerView, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

// AliveOthers 返回除自己外的存活玩家ID
func (s Snapshot) AliveOthers() []string {
	ids := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Alive && p.ID != s.Self.ID {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// IsCandidate 判断目标是否在限定集合内
func (s Snapshot) IsCandidate(id string) bool {
	if len(s.Candidates) == 0 {
		return true
	}
	for _, c := range s.Candidates {
		if c == id {
			return true
		}
	}
	return false
}
