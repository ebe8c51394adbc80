package engine

import (
	"fmt"

	"github.com/qianlnk/werewolf-engine/models"
)

// 技能固定优先级，数值小的先结算。
// 守护先于击杀是固定规则，与提交顺序无关。
const (
	PriorityProtect = 10
	PriorityInspect = 20
	PriorityKill    = 30
	PrioritySave    = 40
	PriorityPoison  = 50
	PriorityShoot   = 60
)

// AbilitySpec 技能描述
type AbilitySpec struct {
	Kind     models.AbilityKind `json:"kind"`
	Priority int                `json:"priority"`
	OneShot  bool               `json:"one_shot,omitempty"` // 一局只能使用一次
}

// RoleSpec 角色定义，同名角色的所有玩家共享同一份只读定义
type RoleSpec struct {
	Name      models.Role        `json:"name"`
	Faction   models.Faction     `json:"faction"`
	Abilities []AbilitySpec      `json:"abilities,omitempty"`
}

// HasAbility 判断角色是否拥有指定技能
func (rs RoleSpec) HasAbility(kind models.AbilityKind) bool {
	for _, a := range rs.Abilities {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

// RoleRegistry 角色注册表，角色名到角色定义的映射。
// 新角色通过Register加入，不修改已有角色。
type RoleRegistry struct {
	roles map[models.Role]RoleSpec
}

// NewRoleRegistry 创建空注册表
func NewRoleRegistry() *RoleRegistry {
	return &RoleRegistry{roles: make(map[models.Role]RoleSpec)}
}

// DefaultRegistry 创建包含内置角色的注册表
func DefaultRegistry() *RoleRegistry {
	reg := NewRoleRegistry()
	builtins := []RoleSpec{
		{Name: models.Villager, Faction: models.VillageFaction},
		{Name: models.Werewolf, Faction: models.WerewolfFaction, Abilities: []AbilitySpec{
			{Kind: models.AbilityKill, Priority: PriorityKill},
		}},
		{Name: models.Seer, Faction: models.VillageFaction, Abilities: []AbilitySpec{
			{Kind: models.AbilityInspect, Priority: PriorityInspect},
		}},
		{Name: models.Witch, Faction: models.VillageFaction, Abilities: []AbilitySpec{
			{Kind: models.AbilitySave, Priority: PrioritySave, OneShot: true},
			{Kind: models.AbilityPoison, Priority: PriorityPoison, OneShot: true},
		}},
		{Name: models.Guard, Faction: models.VillageFaction, Abilities: []AbilitySpec{
			{Kind: models.AbilityProtect, Priority: PriorityProtect},
		}},
		{Name: models.Hunter, Faction: models.VillageFaction, Abilities: []AbilitySpec{
			{Kind: models.AbilityShoot, Priority: PriorityShoot, OneShot: true},
		}},
	}
	for _, spec := range builtins {
		reg.roles[spec.Name] = spec
	}
	return reg
}

// Register 注册新角色，重名报错
func (r *RoleRegistry) Register(spec RoleSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("角色名不能为空")
	}
	if _, exists := r.roles[spec.Name]; exists {
		return fmt.Errorf("角色 %s 已注册", spec.Name)
	}
	for _, a := range spec.Abilities {
		if a.Priority <= 0 {
			return fmt.Errorf("角色 %s 的技能 %s 优先级无效", spec.Name, a.Kind)
		}
	}
	r.roles[spec.Name] = spec
	return nil
}

// Lookup 按名称查找角色定义
func (r *RoleRegistry) Lookup(name models.Role) (RoleSpec, bool) {
	spec, ok := r.roles[name]
	return spec, ok
}

// FactionOf 返回角色所属阵营
func (r *RoleRegistry) FactionOf(name models.Role) (models.Faction, bool) {
	spec, ok := r.roles[name]
	if !ok {
		return "", false
	}
	return spec.Faction, true
}
