package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qianlnk/werewolf-engine/models"
)

func TestNightGuardBlocksWolfAttack(t *testing.T) {
	roles := []models.Role{models.Werewolf, models.Guard, models.Villager}
	agents := []Agent{
		NewScriptedAgent("p1").QueueAction(models.Action{Kind: models.AbilityKill, Target: "p3"}),
		NewScriptedAgent("p2").QueueAction(models.Action{Kind: models.AbilityProtect, Target: "p3"}),
		NewScriptedAgent("p3"),
	}
	e := newTestEngine(roles, agents, models.TieRandom, 1)
	e.st.phase = models.PhaseNight

	deaths, err := e.runNight(context.Background())
	require.NoError(t, err)

	assert.Empty(t, deaths)
	assert.True(t, e.st.isAlive("p3"))
	events := e.log.all()
	assert.Len(t, eventsOfKind(events, models.EventDeathAvoided), 1)
	assert.Empty(t, eventsOfKind(events, models.EventDeath))
}

func TestNightWolfConsensus(t *testing.T) {
	// 两狼提名不同目标，集体目标由随机源抽取，只死一人
	run := func(seed int64) (deaths []string, events []models.Event) {
		roles := []models.Role{models.Werewolf, models.Werewolf, models.Villager, models.Villager}
		agents := []Agent{
			NewScriptedAgent("p1").QueueAction(models.Action{Kind: models.AbilityKill, Target: "p3"}),
			NewScriptedAgent("p2").QueueAction(models.Action{Kind: models.AbilityKill, Target: "p4"}),
			NewScriptedAgent("p3"),
			NewScriptedAgent("p4"),
		}
		e := newTestEngine(roles, agents, models.TieRandom, seed)
		e.st.phase = models.PhaseNight

		deaths, err := e.runNight(context.Background())
		require.NoError(t, err)
		return deaths, e.log.all()
	}

	deaths, events := run(9)
	require.Len(t, deaths, 1)
	assert.Contains(t, []string{"p3", "p4"}, deaths[0])
	assert.Len(t, eventsOfKind(events, models.EventDeath), 1)

	// 同种子再跑一次，受害者一致
	again, _ := run(9)
	assert.Equal(t, deaths, again)
}

func TestNightWolfMajorityWins(t *testing.T) {
	roles := []models.Role{models.Werewolf, models.Werewolf, models.Werewolf, models.Villager, models.Villager}
	agents := []Agent{
		NewScriptedAgent("p1").QueueAction(models.Action{Kind: models.AbilityKill, Target: "p4"}),
		NewScriptedAgent("p2").QueueAction(models.Action{Kind: models.AbilityKill, Target: "p4"}),
		NewScriptedAgent("p3").QueueAction(models.Action{Kind: models.AbilityKill, Target: "p5"}),
		NewScriptedAgent("p4"),
		NewScriptedAgent("p5"),
	}
	e := newTestEngine(roles, agents, models.TieRandom, 1)
	e.st.phase = models.PhaseNight

	deaths, err := e.runNight(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p4"}, deaths)
}

func TestNightWitchSavesVictim(t *testing.T) {
	roles := []models.Role{models.Werewolf, models.Witch, models.Villager}
	agents := []Agent{
		NewScriptedAgent("p1").QueueAction(models.Action{Kind: models.AbilityKill, Target: "p3"}),
		NewScriptedAgent("p2").QueueAction(models.Action{Kind: models.AbilitySave, Target: "p3"}),
		NewScriptedAgent("p3"),
	}
	e := newTestEngine(roles, agents, models.TieRandom, 1)
	e.st.phase = models.PhaseNight

	deaths, err := e.runNight(context.Background())
	require.NoError(t, err)

	assert.Empty(t, deaths)
	assert.True(t, e.st.isAlive("p3"))
	assert.Len(t, eventsOfKind(e.log.all(), models.EventSaved), 1)

	// 解药一次性消耗
	assert.True(t, e.st.potions["p2"].saveUsed)
}

func TestNightWitchPoison(t *testing.T) {
	roles := []models.Role{models.Werewolf, models.Witch, models.Villager, models.Villager}
	agents := []Agent{
		NewScriptedAgent("p1").QueueAction(models.Action{Kind: models.AbilityKill, Target: "p3"}),
		NewScriptedAgent("p2").
			QueueAction(models.Action{Kind: models.AbilitySave, Skip: true}).
			QueueAction(models.Action{Kind: models.AbilityPoison, Target: "p4"}),
		NewScriptedAgent("p3"),
		NewScriptedAgent("p4"),
	}
	e := newTestEngine(roles, agents, models.TieRandom, 1)
	e.st.phase = models.PhaseNight

	deaths, err := e.runNight(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"p3", "p4"}, deaths)
	assert.True(t, e.st.potions["p2"].poisonUsed)
	assert.False(t, e.st.potions["p2"].saveUsed)
}

func TestNightSeerInspection(t *testing.T) {
	roles := []models.Role{models.Werewolf, models.Seer, models.Villager}
	agents := []Agent{
		NewScriptedAgent("p1").QueueAction(models.Action{Kind: models.AbilityKill, Target: "p3"}),
		NewScriptedAgent("p2").QueueAction(models.Action{Kind: models.AbilityInspect, Target: "p1"}),
		NewScriptedAgent("p3"),
	}
	e := newTestEngine(roles, agents, models.TieRandom, 1)
	e.st.phase = models.PhaseNight

	_, err := e.runNight(context.Background())
	require.NoError(t, err)

	events := eventsOfKind(e.log.all(), models.EventInspected)
	require.Len(t, events, 1)
	assert.Equal(t, "p2", events[0].Actor)
	assert.Equal(t, []string{"p1"}, events[0].Targets)
	assert.Equal(t, string(models.WerewolfFaction), events[0].Payload["faction"])

	// 下一次快照携带查验历史
	snap := e.snapshotFor(e.st.player("p2"), models.AbilityInspect)
	require.Len(t, snap.Inspections, 1)
	assert.Equal(t, models.WerewolfFaction, snap.Inspections[0].Faction)
}

func TestNightInvalidTargetFallsBack(t *testing.T) {
	// 狼人击杀同阵营无效，走兜底
	roles := []models.Role{models.Werewolf, models.Werewolf, models.Villager}
	agents := []Agent{
		NewScriptedAgent("p1").QueueAction(models.Action{Kind: models.AbilityKill, Target: "p2"}),
		NewScriptedAgent("p2").QueueAction(models.Action{Kind: models.AbilityKill, Skip: true}),
		NewScriptedAgent("p3"),
	}
	e := newTestEngine(roles, agents, models.TieRandom, 1)
	e.st.phase = models.PhaseNight

	deaths, err := e.runNight(context.Background())
	require.NoError(t, err)

	assert.Empty(t, deaths)
	fallbacks := eventsOfKind(e.log.all(), models.EventAgentFallback)
	require.Len(t, fallbacks, 1)
	assert.Equal(t, "p1", fallbacks[0].Actor)
	assert.Equal(t, "invalid_target", fallbacks[0].Payload["reason"])
}

func TestHunterRevengeShot(t *testing.T) {
	roles := []models.Role{models.Hunter, models.Werewolf, models.Villager}
	agents := []Agent{
		NewScriptedAgent("p1").QueueAction(models.Action{Kind: models.AbilityShoot, Target: "p2"}),
		NewScriptedAgent("p2"),
		NewScriptedAgent("p3"),
	}
	e := newTestEngine(roles, agents, models.TieRandom, 1)
	e.st.phase = models.PhaseExecution

	deaths := e.runExecution("p1")
	require.Equal(t, []string{"p1"}, deaths)

	all, err := e.hunterRevenge(context.Background(), deaths)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, all)
	assert.False(t, e.st.isAlive("p2"))

	events := e.log.all()
	assert.Len(t, eventsOfKind(events, models.EventHunterShot), 1)
	shotDeaths := eventsOfKind(events, models.EventDeath)
	require.Len(t, shotDeaths, 1)
	assert.Equal(t, "hunter", shotDeaths[0].Payload["cause"])

	// 开枪只有一次
	again, err := e.hunterRevenge(context.Background(), []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, again)
	assert.Len(t, eventsOfKind(e.log.all(), models.EventHunterShot), 1)
}
