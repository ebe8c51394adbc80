package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qianlnk/werewolf-engine/models"
)

func testGameConfig() models.GameConfig {
	return models.GameConfig{
		PlayerCount:   3,
		Roles:         map[models.Role]int{models.Villager: 3},
		WinConditions: []string{models.WinWerewolvesEliminated, models.WinWerewolfParity},
		TiePolicy:     models.TieNoElimination,
		Seed:          1,
	}
}

// waitFinished 轮询直到对局离开运行中状态
func waitFinished(t *testing.T, run *Run) RunInfo {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		info := run.Info()
		if info.Status != RunRunning {
			return info
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("对局未在限定时间内结束")
	return RunInfo{}
}

func TestStartRunFinishes(t *testing.T) {
	rm := NewRunManager(nil)

	run, err := rm.StartRun(testGameConfig())
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	info := waitFinished(t, run)
	assert.Equal(t, RunFinished, info.Status)
	assert.Equal(t, models.OutcomeVillageWin, info.Outcome)
	assert.Empty(t, info.Error)

	events := run.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, models.EventGameStarted, events[0].Kind)
	assert.Equal(t, models.EventGameEnded, events[len(events)-1].Kind)
	assert.Equal(t, len(events), info.Events)
}

func TestStartRunRejectsBadConfig(t *testing.T) {
	rm := NewRunManager(nil)

	cfg := testGameConfig()
	cfg.Roles = map[models.Role]int{models.Villager: 2}

	_, err := rm.StartRun(cfg)
	require.Error(t, err)
	// 配置错误不留下对局记录
	assert.Empty(t, rm.ListRuns())
}

func TestGetRun(t *testing.T) {
	rm := NewRunManager(nil)

	run, err := rm.StartRun(testGameConfig())
	require.NoError(t, err)

	got, err := rm.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)

	_, err = rm.GetRun("不存在的对局")
	assert.ErrorIs(t, err, ErrRunNotFound)

	waitFinished(t, run)
}

func TestListRuns(t *testing.T) {
	rm := NewRunManager(nil)

	first, err := rm.StartRun(testGameConfig())
	require.NoError(t, err)
	second, err := rm.StartRun(testGameConfig())
	require.NoError(t, err)

	runs := rm.ListRuns()
	require.Len(t, runs, 2)

	ids := []string{runs[0].ID, runs[1].ID}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)

	waitFinished(t, first)
	waitFinished(t, second)
}
