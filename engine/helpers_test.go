package engine

import (
	"context"
	"time"

	"github.com/qianlnk/werewolf-engine/models"
)

// newTestEngine 按给定座位角色直接构造引擎，跳过洗牌，方便场景测试
func newTestEngine(roles []models.Role, agents []Agent, tiePolicy models.TiePolicy, seed int64) *Engine {
	counts := make(map[models.Role]int)
	for _, role := range roles {
		counts[role]++
	}
	cfg := applyDefaults(models.GameConfig{
		PlayerCount:   len(roles),
		Roles:         counts,
		WinConditions: []string{models.WinWerewolvesEliminated, models.WinWerewolfParity},
		TiePolicy:     tiePolicy,
		Seed:          seed,
		AgentTimeout:  200 * time.Millisecond,
	})

	e := &Engine{
		cfg: cfg,
		reg: DefaultRegistry(),
		rng: NewRandomSource(cfg.Seed),
		st:  newGameState(cfg.PlayerNames),
		log: &eventLog{},
	}
	for i, p := range e.st.players {
		p.Role = roles[i]
		spec, _ := e.reg.Lookup(p.Role)
		if spec.HasAbility(models.AbilitySave) || spec.HasAbility(models.AbilityPoison) {
			e.st.potions[p.ID] = &witchPotions{}
		}
	}

	e.agents = make(map[string]Agent, len(agents))
	for i, p := range e.st.players {
		e.agents[p.ID] = agents[i]
	}
	return e
}

// eventsOfKind 按类型过滤事件
func eventsOfKind(events []models.Event, kind models.EventKind) []models.Event {
	var out []models.Event
	for _, ev := range events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// blockingAgent 永不响应的代理，用于超时场景
type blockingAgent struct{}

func (blockingAgent) ProposeAction(ctx context.Context, snap Snapshot) (models.Action, error) {
	<-ctx.Done()
	return models.Action{}, ctx.Err()
}

func (blockingAgent) Speak(ctx context.Context, snap Snapshot) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (blockingAgent) Vote(ctx context.Context, snap Snapshot) (models.Vote, error) {
	<-ctx.Done()
	return models.Vote{}, ctx.Err()
}

// funcAgent 按回调应答的代理，缺省回调时放弃行动或弃票
type funcAgent struct {
	id      string
	propose func(Snapshot) (models.Action, error)
	speak   func(Snapshot) (string, error)
	vote    func(Snapshot) (models.Vote, error)
}

func (f *funcAgent) ProposeAction(ctx context.Context, snap Snapshot) (models.Action, error) {
	if f.propose == nil {
		return models.Action{Kind: snap.Ask, Skip: true}, nil
	}
	return f.propose(snap)
}

func (f *funcAgent) Speak(ctx context.Context, snap Snapshot) (string, error) {
	if f.speak == nil {
		return "过", nil
	}
	return f.speak(snap)
}

func (f *funcAgent) Vote(ctx context.Context, snap Snapshot) (models.Vote, error) {
	if f.vote == nil {
		return models.Vote{Voter: f.id}, nil
	}
	return f.vote(snap)
}
