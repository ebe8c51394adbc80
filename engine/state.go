package engine

import (
	"strconv"

	"github.com/qianlnk/werewolf-engine/models"
)

// witchPotions 女巫用药状态
type witchPotions struct {
	saveUsed   bool
	poisonUsed bool
}

// gameState 一局游戏的可变状态。
// 只有阶段控制器在阶段步骤之间修改它，其他组件只读。
type gameState struct {
	players []*models.Player // 按座位排序
	byID    map[string]*models.Player

	round int
	phase models.Phase

	potions     map[string]*witchPotions   // 女巫ID -> 用药状态
	inspections map[string][]InspectResult // 预言家ID -> 查验历史
	shotUsed    map[string]bool            // 猎人ID -> 是否已开枪

	speeches  []Speech
	lastVotes []models.Vote
}

// newGameState 按座位创建玩家并初始化状态，角色在Setup阶段分配
func newGameState(names []string) *gameState {
	st := &gameState{
		byID:        make(map[string]*models.Player, len(names)),
		round:       1,
		phase:       models.PhaseSetup,
		potions:     make(map[string]*witchPotions),
		inspections: make(map[string][]InspectResult),
		shotUsed:    make(map[string]bool),
	}
	for i, name := range names {
		p := &models.Player{
			ID:    playerID(i),
			Name:  name,
			Seat:  i,
			Alive: true,
		}
		st.players = append(st.players, p)
		st.byID[p.ID] = p
	}
	return st
}

// playerID 按座位号生成玩家ID
func playerID(seat int) string {
	return "p" + strconv.Itoa(seat+1)
}

// player 按ID查找玩家
func (st *gameState) player(id string) *models.Player {
	return st.byID[id]
}

// isAlive 判断玩家是否存活
func (st *gameState) isAlive(id string) bool {
	p := st.byID[id]
	return p != nil && p.Alive
}

// alivePlayers 按座位顺序返回存活玩家
func (st *gameState) alivePlayers() []*models.Player {
	alive := make([]*models.Player, 0, len(st.players))
	for _, p := range st.players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

// countFaction 统计指定阵营的存活人数
func (st *gameState) countFaction(reg *RoleRegistry, faction models.Faction) int {
	count := 0
	for _, p := range st.players {
		if !p.Alive {
			continue
		}
		if f, ok := reg.FactionOf(p.Role); ok && f == faction {
			count++
		}
	}
	return count
}

// playerViews 构造所有座位的公开视图
func (st *gameState) playerViews() []PlayerView {
	views := make([]PlayerView, 0, len(st.players))
	for _, p := range st.players {
		views = append(views, PlayerView{
			ID:    p.ID,
			Name:  p.Name,
			Seat:  p.Seat,
			Alive: p.Alive,
		})
	}
	return views
}

// recordInspection 记录一次查验结果
func (st *gameState) recordInspection(seerID string, result InspectResult) {
	st.inspections[seerID] = append(st.inspections[seerID], result)
}
