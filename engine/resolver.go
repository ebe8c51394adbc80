package engine

import (
	"fmt"
	"sort"

	"github.com/qianlnk/werewolf-engine/models"
)

// Ability 已入队的技能实例，当晚创建、当晚结算后丢弃
type Ability struct {
	Actor    string
	Kind     models.AbilityKind
	Target   string
	Priority int
}

// resolveAbilities 单次确定性结算本阶段入队的全部技能。
// 按（优先级升序，同优先级随机源抽签）排序后逐个生效：
// 守护固定先于击杀结算，与提交顺序无关；查验不改变目标状态；
// 同一目标的多次击杀合并为一次死亡；守护恰好抵消一次对
// 目标的击杀后即被消耗；毒杀不受守护影响。
// 返回本次结算造成的死亡玩家，按座位顺序。
func (e *Engine) resolveAbilities(abilities []Ability) ([]string, error) {
	for _, a := range abilities {
		if a.Priority <= 0 {
			return nil, fmt.Errorf("技能 %s 优先级未定义", a.Kind)
		}
		switch a.Kind {
		case models.AbilityProtect, models.AbilityInspect, models.AbilityKill,
			models.AbilitySave, models.AbilityPoison, models.AbilityShoot:
		default:
			return nil, fmt.Errorf("未知技能类型: %s", a.Kind)
		}
	}

	// 同优先级的相对顺序由随机源抽签决定
	ticket := make([]int, len(abilities))
	for i := range ticket {
		ticket[i] = e.rng.Intn(1 << 20)
	}
	order := make([]int, len(abilities))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		i, j := order[x], order[y]
		if abilities[i].Priority != abilities[j].Priority {
			return abilities[i].Priority < abilities[j].Priority
		}
		return ticket[i] < ticket[j]
	})

	protected := make(map[string]bool)
	pending := make(map[string]string) // 目标ID -> 死因

	for _, idx := range order {
		a := abilities[idx]
		switch a.Kind {
		case models.AbilityProtect:
			if e.st.isAlive(a.Target) {
				protected[a.Target] = true
			}

		case models.AbilityInspect:
			target := e.st.player(a.Target)
			if target == nil || !target.Alive {
				continue
			}
			faction, ok := e.reg.FactionOf(target.Role)
			if !ok {
				return nil, fmt.Errorf("角色 %s 未注册", target.Role)
			}
			e.st.recordInspection(a.Actor, InspectResult{Target: a.Target, Faction: faction})
			e.emit(models.EventInspected, a.Actor, []string{a.Target}, map[string]string{
				"faction": string(faction),
			})

		case models.AbilityKill:
			if !e.st.isAlive(a.Target) {
				continue
			}
			if protected[a.Target] {
				delete(protected, a.Target)
				e.emit(models.EventDeathAvoided, a.Actor, []string{a.Target}, nil)
				continue
			}
			if _, dying := pending[a.Target]; !dying {
				pending[a.Target] = "attack"
			}

		case models.AbilitySave:
			if _, dying := pending[a.Target]; dying {
				delete(pending, a.Target)
				e.emit(models.EventSaved, a.Actor, []string{a.Target}, nil)
			}

		case models.AbilityPoison, models.AbilityShoot:
			if !e.st.isAlive(a.Target) {
				continue
			}
			if _, dying := pending[a.Target]; !dying {
				cause := "poison"
				if a.Kind == models.AbilityShoot {
					cause = "hunter"
				}
				pending[a.Target] = cause
			}
		}
	}

	// 死亡按座位顺序生效，保证事件顺序与结算到达顺序无关
	var deaths []string
	for _, p := range e.st.players {
		cause, dying := pending[p.ID]
		if !dying {
			continue
		}
		p.Alive = false
		deaths = append(deaths, p.ID)
		e.emit(models.EventDeath, "", []string{p.ID}, map[string]string{"cause": cause})
	}
	return deaths, nil
}
