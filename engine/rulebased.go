package engine

import (
	"context"

	"github.com/qianlnk/werewolf-engine/models"
)

// RuleBasedAgent 规则AI玩家，按性格特征做决策。
// 只依赖快照和自己的派生随机源，不访问游戏状态。
type RuleBasedAgent struct {
	ID          string
	Personality models.Personality
	rng         *RandomSource
}

// NewRuleBasedAgent 创建规则AI实例，性格由派生随机源决定
func NewRuleBasedAgent(id string, rng *RandomSource) *RuleBasedAgent {
	personalities := []models.Personality{
		models.Aggressive,
		models.Cautious,
		models.Strategic,
		models.Random,
	}
	return &RuleBasedAgent{
		ID:          id,
		Personality: personalities[rng.Intn(len(personalities))],
		rng:         rng,
	}
}

// ProposeAction 决定技能使用
func (ai *RuleBasedAgent) ProposeAction(ctx context.Context, snap Snapshot) (models.Action, error) {
	switch snap.Ask {
	case models.AbilityKill:
		return ai.decideKill(snap), nil
	case models.AbilityInspect:
		return ai.decideInspect(snap), nil
	case models.AbilityProtect:
		return ai.decideProtect(snap), nil
	case models.AbilitySave:
		return ai.decideSave(snap), nil
	case models.AbilityPoison:
		return ai.decidePoison(snap), nil
	case models.AbilityShoot:
		return ai.decideShoot(snap), nil
	default:
		return models.Action{Skip: true}, nil
	}
}

// Speak 生成白天发言
func (ai *RuleBasedAgent) Speak(ctx context.Context, snap Snapshot) (string, error) {
	return dialogueFor(snap.Self.Role, ai.Personality, ai.rng), nil
}

// Vote 决定投票目标
func (ai *RuleBasedAgent) Vote(ctx context.Context, snap Snapshot) (models.Vote, error) {
	// 预言家优先投已查验出的狼人
	for _, ins := range snap.Inspections {
		if ins.Faction != models.WerewolfFaction {
			continue
		}
		if ai.isAliveOther(snap, ins.Target) && snap.IsCandidate(ins.Target) {
			return models.Vote{Voter: ai.ID, Target: ins.Target}, nil
		}
	}

	candidates := ai.voteCandidates(snap)
	if len(candidates) == 0 {
		return models.Vote{Voter: ai.ID}, nil
	}

	switch ai.Personality {
	case models.Cautious:
		// 谨慎型跟随上一轮的热门目标
		if target := ai.popularTarget(snap, candidates); target != "" {
			return models.Vote{Voter: ai.ID, Target: target}, nil
		}
	case models.Strategic:
		// 策略型偶尔弃票观望
		if snap.Round == 1 && ai.rng.Float64() < 0.3 {
			return models.Vote{Voter: ai.ID}, nil
		}
	}

	return models.Vote{Voter: ai.ID, Target: ai.rng.Pick(candidates)}, nil
}

// decideKill 选择击杀目标
func (ai *RuleBasedAgent) decideKill(snap Snapshot) models.Action {
	teammates := make(map[string]bool, len(snap.Teammates))
	for _, id := range snap.Teammates {
		teammates[id] = true
	}

	var targets []string
	for _, id := range snap.AliveOthers() {
		if teammates[id] || !snap.IsCandidate(id) {
			continue
		}
		targets = append(targets, id)
	}
	if len(targets) == 0 {
		return models.Action{Kind: models.AbilityKill, Skip: true}
	}

	switch ai.Personality {
	case models.Aggressive:
		// 激进型优先攻击低座位号，制造清晰的压力
		return models.Action{Kind: models.AbilityKill, Target: targets[0]}
	case models.Cautious:
		// 谨慎型攻击最后发言的玩家
		if target := ai.lastSpeaker(snap, targets); target != "" {
			return models.Action{Kind: models.AbilityKill, Target: target}
		}
	}
	return models.Action{Kind: models.AbilityKill, Target: ai.rng.Pick(targets)}
}

// decideInspect 选择查验目标，优先未查验过的玩家
func (ai *RuleBasedAgent) decideInspect(snap Snapshot) models.Action {
	inspected := make(map[string]bool, len(snap.Inspections))
	for _, ins := range snap.Inspections {
		inspected[ins.Target] = true
	}

	var targets []string
	for _, id := range snap.AliveOthers() {
		if !inspected[id] && snap.IsCandidate(id) {
			targets = append(targets, id)
		}
	}
	if len(targets) == 0 {
		return models.Action{Kind: models.AbilityInspect, Skip: true}
	}
	return models.Action{Kind: models.AbilityInspect, Target: ai.rng.Pick(targets)}
}

// decideProtect 选择守护目标
func (ai *RuleBasedAgent) decideProtect(snap Snapshot) models.Action {
	targets := snap.AliveOthers()
	if len(targets) == 0 {
		return models.Action{Kind: models.AbilityProtect, Skip: true}
	}
	return models.Action{Kind: models.AbilityProtect, Target: ai.rng.Pick(targets)}
}

// decideSave 决定是否使用解药
func (ai *RuleBasedAgent) decideSave(snap Snapshot) models.Action {
	if !snap.HasSave || snap.AttackedID == "" || snap.AttackedID == ai.ID {
		return models.Action{Kind: models.AbilitySave, Skip: true}
	}

	switch ai.Personality {
	case models.Cautious, models.Strategic:
		// 谨慎型和策略型前期留药
		if snap.Round > 2 {
			return models.Action{Kind: models.AbilitySave, Skip: true}
		}
		return models.Action{Kind: models.AbilitySave, Target: snap.AttackedID}
	case models.Random:
		if ai.rng.Float64() < 0.5 {
			return models.Action{Kind: models.AbilitySave, Target: snap.AttackedID}
		}
		return models.Action{Kind: models.AbilitySave, Skip: true}
	default:
		return models.Action{Kind: models.AbilitySave, Target: snap.AttackedID}
	}
}

// decidePoison 决定是否使用毒药
func (ai *RuleBasedAgent) decidePoison(snap Snapshot) models.Action {
	if !snap.HasPoison {
		return models.Action{Kind: models.AbilityPoison, Skip: true}
	}

	use := false
	switch ai.Personality {
	case models.Aggressive:
		use = snap.Round >= 2
	case models.Random:
		use = ai.rng.Float64() < 0.3
	}
	if !use {
		return models.Action{Kind: models.AbilityPoison, Skip: true}
	}

	targets := snap.AliveOthers()
	if len(targets) == 0 {
		return models.Action{Kind: models.AbilityPoison, Skip: true}
	}
	return models.Action{Kind: models.AbilityPoison, Target: ai.rng.Pick(targets)}
}

// decideShoot 猎人开枪选择带走的目标
func (ai *RuleBasedAgent) decideShoot(snap Snapshot) models.Action {
	// 带走得票最多的怀疑对象，没有参考信息时随机
	targets := snap.AliveOthers()
	if len(targets) == 0 {
		return models.Action{Kind: models.AbilityShoot, Skip: true}
	}
	if target := ai.popularTarget(snap, targets); target != "" {
		return models.Action{Kind: models.AbilityShoot, Target: target}
	}
	return models.Action{Kind: models.AbilityShoot, Target: ai.rng.Pick(targets)}
}

// voteCandidates 投票候选目标
func (ai *RuleBasedAgent) voteCandidates(snap Snapshot) []string {
	teammates := make(map[string]bool, len(snap.Teammates))
	for _, id := range snap.Teammates {
		teammates[id] = true
	}

	var candidates []string
	for _, id := range snap.AliveOthers() {
		if teammates[id] || !snap.IsCandidate(id) {
			continue
		}
		candidates = append(candidates, id)
	}
	return candidates
}

// popularTarget 上一轮得票最多的候选目标
func (ai *RuleBasedAgent) popularTarget(snap Snapshot, candidates []string) string {
	counts := make(map[string]int)
	for _, v := range snap.LastVotes {
		if v.Target != "" {
			counts[v.Target]++
		}
	}

	best := ""
	bestCount := 0
	for _, id := range candidates {
		if counts[id] > bestCount {
			best = id
			bestCount = counts[id]
		}
	}
	return best
}

// lastSpeaker 候选目标中最后发言的玩家
func (ai *RuleBasedAgent) lastSpeaker(snap Snapshot, candidates []string) string {
	allowed := make(map[string]bool, len(candidates))
	for _, id := range candidates {
		allowed[id] = true
	}
	for i := len(snap.Speeches) - 1; i >= 0; i-- {
		if allowed[snap.Speeches[i].Player] {
			return snap.Speeches[i].Player
		}
	}
	return ""
}

// isAliveOther 判断目标是否为存活的其他玩家
func (ai *RuleBasedAgent) isAliveOther(snap Snapshot, id string) bool {
	for _, p := range snap.Players {
		if p.ID == id {
			return p.Alive && id != ai.ID
		}
	}
	return false
}
