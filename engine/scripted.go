package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/qianlnk/werewolf-engine/models"
)

// ErrScriptExhausted 脚本动作已用尽
var ErrScriptExhausted = errors.New("脚本动作已用尽")

// ScriptedAgent 脚本代理，按预设序列应答。
// 用于测试和外部注入的人类决策：嵌入方把已收集到的操作
// 填入队列，引擎照常通过Agent接口取用。
type ScriptedAgent struct {
	ID string

	mutex    sync.Mutex
	actions  []models.Action
	speeches []string
	votes    []string // 目标ID，空串表示弃票
}

// NewScriptedAgent 创建脚本代理实例
func NewScriptedAgent(id string) *ScriptedAgent {
	return &ScriptedAgent{ID: id}
}

// QueueAction 追加一次技能决策
func (s *ScriptedAgent) QueueAction(action models.Action) *ScriptedAgent {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.actions = append(s.actions, action)
	return s
}

// QueueSpeech 追加一条发言
func (s *ScriptedAgent) QueueSpeech(text string) *ScriptedAgent {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.speeches = append(s.speeches, text)
	return s
}

// QueueVote 追加一次投票目标，空串表示弃票
func (s *ScriptedAgent) QueueVote(target string) *ScriptedAgent {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.votes = append(s.votes, target)
	return s
}

// ProposeAction 返回队列中的下一次技能决策，队列耗尽时放弃行动
func (s *ScriptedAgent) ProposeAction(ctx context.Context, snap Snapshot) (models.Action, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.actions) == 0 {
		return models.Action{Kind: snap.Ask, Skip: true}, nil
	}
	action := s.actions[0]
	s.actions = s.actions[1:]
	return action, nil
}

// Speak 返回队列中的下一条发言
func (s *ScriptedAgent) Speak(ctx context.Context, snap Snapshot) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.speeches) == 0 {
		return "", ErrScriptExhausted
	}
	text := s.speeches[0]
	s.speeches = s.speeches[1:]
	return text, nil
}

// Vote 返回队列中的下一次投票，队列耗尽时弃票
func (s *ScriptedAgent) Vote(ctx context.Context, snap Snapshot) (models.Vote, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.votes) == 0 {
		return models.Vote{Voter: s.ID}, nil
	}
	target := s.votes[0]
	s.votes = s.votes[1:]
	return models.Vote{Voter: s.ID, Target: target}, nil
}
