package engine

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/qianlnk/werewolf-engine/models"
)

// 配置缺省值
const (
	DefaultAgentTimeout     = 30 * time.Second
	DefaultDiscussionRounds = 1
)

var (
	ErrNoPlayers         = errors.New("玩家人数必须大于0")
	ErrRoleCountMismatch = errors.New("角色数量之和与玩家人数不一致")
	ErrNoWinConditions   = errors.New("胜利条件列表不能为空")
)

// validateConfig 校验游戏配置，配置错误在任何阶段运行之前报出
func validateConfig(cfg models.GameConfig, reg *RoleRegistry) error {
	if cfg.PlayerCount <= 0 {
		return ErrNoPlayers
	}

	total := 0
	for role, count := range cfg.Roles {
		if count < 0 {
			return fmt.Errorf("角色 %s 的数量不能为负", role)
		}
		if _, ok := reg.Lookup(role); !ok {
			return fmt.Errorf("未知角色: %s", role)
		}
		total += count
	}
	if total != cfg.PlayerCount {
		return fmt.Errorf("%w: 角色合计%d，玩家%d", ErrRoleCountMismatch, total, cfg.PlayerCount)
	}

	if len(cfg.PlayerNames) != 0 && len(cfg.PlayerNames) != cfg.PlayerCount {
		return fmt.Errorf("玩家名称数量%d与玩家人数%d不一致", len(cfg.PlayerNames), cfg.PlayerCount)
	}

	if len(cfg.WinConditions) == 0 {
		return ErrNoWinConditions
	}
	for _, cond := range cfg.WinConditions {
		switch cond {
		case models.WinWerewolvesEliminated, models.WinWerewolfParity:
		default:
			return fmt.Errorf("未知胜利条件: %s", cond)
		}
	}

	switch cfg.TiePolicy {
	case models.TieNoElimination, models.TieRevote, models.TieRandom:
	case "":
		return fmt.Errorf("平票策略不能为空")
	default:
		return fmt.Errorf("未知平票策略: %s", cfg.TiePolicy)
	}

	if cfg.DiscussionRounds < 0 {
		return fmt.Errorf("发言轮数不能为负")
	}
	if cfg.AgentTimeout < 0 {
		return fmt.Errorf("代理超时不能为负")
	}

	return nil
}

// applyDefaults 填充缺省配置
func applyDefaults(cfg models.GameConfig) models.GameConfig {
	if cfg.AgentTimeout == 0 {
		cfg.AgentTimeout = DefaultAgentTimeout
	}
	if cfg.DiscussionRounds == 0 {
		cfg.DiscussionRounds = DefaultDiscussionRounds
	}
	if len(cfg.PlayerNames) == 0 {
		names := make([]string, cfg.PlayerCount)
		for i := range names {
			names[i] = "玩家" + strconv.Itoa(i+1)
		}
		cfg.PlayerNames = names
	}
	return cfg
}
