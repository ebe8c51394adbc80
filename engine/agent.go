package engine

import (
	"context"

	"github.com/qianlnk/werewolf-engine/models"
)

// Agent 玩家决策的抽象接口，游戏逻辑与决策实现之间的唯一边界。
// 实现方可以是规则AI、大模型、或注入的人类操作，引擎不关心具体实现。
// 每次调用携带超时上下文，超时或返回无效结果时引擎执行兜底策略，
// 不会阻塞或中断整局游戏。
type Agent interface {
	// ProposeAction 请求一次技能决策，snap.Ask指明请求的技能类型
	ProposeAction(ctx context.Context, snap Snapshot) (models.Action, error)

	// Speak 请求一次白天发言
	Speak(ctx context.Context, snap Snapshot) (string, error)

	// Vote 请求一次投票，返回空Target表示弃票
	Vote(ctx context.Context, snap Snapshot) (models.Vote, error)
}
