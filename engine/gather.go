package engine

import (
	"context"
	"sync"

	"github.com/qianlnk/werewolf-engine/models"
)

// actionResult 一次并发技能征询的结果
type actionResult struct {
	action models.Action
	err    error
}

// voteResult 一次并发投票征询的结果
type voteResult struct {
	vote models.Vote
	err  error
}

// callAction 征询单个玩家的技能决策，带超时。
// 代理不配合取消时超时仍然生效，调用协程被放弃。
func (e *Engine) callAction(ctx context.Context, agent Agent, snap Snapshot) actionResult {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.AgentTimeout)
	defer cancel()

	done := make(chan actionResult, 1)
	go func() {
		action, err := agent.ProposeAction(callCtx, snap)
		done <- actionResult{action: action, err: err}
	}()

	select {
	case r := <-done:
		return r
	case <-callCtx.Done():
		return actionResult{err: callCtx.Err()}
	}
}

// callVote 征询单个玩家的投票，带超时
func (e *Engine) callVote(ctx context.Context, agent Agent, snap Snapshot) voteResult {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.AgentTimeout)
	defer cancel()

	done := make(chan voteResult, 1)
	go func() {
		vote, err := agent.Vote(callCtx, snap)
		done <- voteResult{vote: vote, err: err}
	}()

	select {
	case r := <-done:
		return r
	case <-callCtx.Done():
		return voteResult{err: callCtx.Err()}
	}
}

// callSpeak 征询单个玩家的发言，带超时
func (e *Engine) callSpeak(ctx context.Context, agent Agent, snap Snapshot) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.AgentTimeout)
	defer cancel()

	type speakResult struct {
		text string
		err  error
	}
	done := make(chan speakResult, 1)
	go func() {
		text, err := agent.Speak(callCtx, snap)
		done <- speakResult{text: text, err: err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-callCtx.Done():
		return "", callCtx.Err()
	}
}

// gatherActions 并发征询一批玩家的技能决策。
// 结果按入参座位顺序排列，与代理响应的到达顺序无关；
// 单个代理超时只影响它自己的结果，不会中断其他调用。
func (e *Engine) gatherActions(ctx context.Context, players []*models.Player, snapFor func(*models.Player) Snapshot) []actionResult {
	results := make([]actionResult, len(players))

	var wg sync.WaitGroup
	for i, p := range players {
		wg.Add(1)
		go func(i int, p *models.Player) {
			defer wg.Done()
			results[i] = e.callAction(ctx, e.agents[p.ID], snapFor(p))
		}(i, p)
	}
	wg.Wait()
	return results
}

// gatherVotes 并发征询一批玩家的投票，结果按座位顺序排列
func (e *Engine) gatherVotes(ctx context.Context, players []*models.Player, snapFor func(*models.Player) Snapshot) []voteResult {
	results := make([]voteResult, len(players))

	var wg sync.WaitGroup
	for i, p := range players {
		wg.Add(1)
		go func(i int, p *models.Player) {
			defer wg.Done()
			results[i] = e.callVote(ctx, e.agents[p.ID], snapFor(p))
		}(i, p)
	}
	wg.Wait()
	return results
}
