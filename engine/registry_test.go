package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qianlnk/werewolf-engine/models"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()

	wolf, ok := reg.Lookup(models.Werewolf)
	require.True(t, ok)
	assert.Equal(t, models.WerewolfFaction, wolf.Faction)
	assert.True(t, wolf.HasAbility(models.AbilityKill))

	villager, ok := reg.Lookup(models.Villager)
	require.True(t, ok)
	assert.Equal(t, models.VillageFaction, villager.Faction)
	assert.Empty(t, villager.Abilities)

	witch, ok := reg.Lookup(models.Witch)
	require.True(t, ok)
	assert.True(t, witch.HasAbility(models.AbilitySave))
	assert.True(t, witch.HasAbility(models.AbilityPoison))

	_, ok = reg.Lookup("unknown")
	assert.False(t, ok)
}

func TestRegistryRegister(t *testing.T) {
	reg := DefaultRegistry()

	// 新角色注册成功，不影响已有角色
	err := reg.Register(RoleSpec{
		Name:    "alpha_wolf",
		Faction: models.WerewolfFaction,
		Abilities: []AbilitySpec{
			{Kind: models.AbilityKill, Priority: PriorityKill},
		},
	})
	require.NoError(t, err)

	spec, ok := reg.Lookup("alpha_wolf")
	require.True(t, ok)
	assert.Equal(t, models.WerewolfFaction, spec.Faction)

	// 重名注册报错
	assert.Error(t, reg.Register(RoleSpec{Name: models.Werewolf, Faction: models.WerewolfFaction}))

	// 非法优先级报错
	assert.Error(t, reg.Register(RoleSpec{
		Name:    "bad_role",
		Faction: models.VillageFaction,
		Abilities: []AbilitySpec{
			{Kind: models.AbilityKill, Priority: 0},
		},
	}))

	// 空角色名报错
	assert.Error(t, reg.Register(RoleSpec{Faction: models.VillageFaction}))
}

func TestProtectPriorityBeforeKill(t *testing.T) {
	// 守护的固定优先级先于击杀
	assert.Less(t, PriorityProtect, PriorityKill)
	assert.Less(t, PriorityKill, PrioritySave)
}
