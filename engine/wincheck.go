package engine

import (
	"fmt"

	"github.com/qianlnk/werewolf-engine/models"
)

// evaluateWin 按配置顺序逐个判定胜利条件，返回首个命中的条件及结局。
// 未命中任何条件时ended为false，游戏继续。
func (e *Engine) evaluateWin() (condition, outcome string, ended bool, err error) {
	wolves := e.st.countFaction(e.reg, models.WerewolfFaction)
	villagers := 0
	for _, p := range e.st.alivePlayers() {
		if f, ok := e.reg.FactionOf(p.Role); ok && f != models.WerewolfFaction {
			villagers++
		}
	}

	for _, cond := range e.cfg.WinConditions {
		switch cond {
		case models.WinWerewolvesEliminated:
			if wolves == 0 {
				return cond, models.OutcomeVillageWin, true, nil
			}
		case models.WinWerewolfParity:
			if wolves > 0 && wolves >= villagers {
				return cond, models.OutcomeWerewolfWin, true, nil
			}
		default:
			return "", "", false, fmt.Errorf("无法判定的胜利条件: %s", cond)
		}
	}
	return "", "", false, nil
}
