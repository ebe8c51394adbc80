package engine

import "github.com/qianlnk/werewolf-engine/models"

// 各角色按性格分组的发言模板
var dayDialogues = map[models.Role]map[models.Personality][]string{
	models.Werewolf: {
		models.Aggressive: {
			"我觉得有人在伪装预言家，我们应该投他",
			"有些人从头到尾不表态，这才是最可疑的",
		},
		models.Cautious: {
			"大家要冷静分析，不要轻易相信任何人的发言",
			"昨晚我好像听到了一些动静，但不确定是什么",
		},
		models.Strategic: {
			"我们应该先听听预言家的发言，再做判断",
			"大家要相信预言家，但也要防止有人冒充",
		},
		models.Random: {
			"昨晚的情况大家怎么看？",
			"大家要冷静分析，不要被表象迷惑",
		},
	},
	models.Seer: {
		models.Aggressive: {
			"我是预言家，昨晚我查验了一个人，发现是狼人",
			"我有确凿的信息，大家要相信我的判断",
		},
		models.Cautious: {
			"作为预言家，我建议大家要谨慎行动",
			"我有一些重要的信息要分享",
		},
		models.Strategic: {
			"我有重要信息要分享，但现在说可能为时过早",
			"让我们一起分析一下目前的局势",
		},
		models.Random: {
			"让我们一起分析一下目前的局势",
			"我觉得有些人的行为很值得怀疑",
		},
	},
	models.Witch: {
		models.Aggressive: {
			"我知道一些重要的信息，但需要大家配合",
		},
		models.Cautious: {
			"我们要小心行事，不要轻易相信任何人",
		},
		models.Strategic: {
			"让我们先听听大家的想法，再做决定",
		},
		models.Random: {
			"昨晚发生了什么有趣的事情吗？",
		},
	},
	models.Guard: {
		models.Aggressive: {
			"我们必须保护好重要的角色",
		},
		models.Cautious: {
			"大家要注意安全，狼人可能会有突然袭击",
		},
		models.Strategic: {
			"我觉得我们应该制定一个保护策略",
		},
		models.Random: {
			"大家有什么需要帮助的吗？",
		},
	},
	models.Hunter: {
		models.Aggressive: {
			"谁要是敢动我，我不会让他好过",
		},
		models.Cautious: {
			"我先听听大家的分析",
		},
		models.Strategic: {
			"关键时刻我自有安排",
		},
		models.Random: {
			"昨晚的情况大家怎么看？",
		},
	},
	models.Villager: {
		models.Aggressive: {
			"我觉得有人行为很可疑，应该仔细观察",
			"我们要抓紧时间找出狼人",
		},
		models.Cautious: {
			"我们要相信预言家，但也要防止有人冒充",
			"大家有没有发现什么可疑的人？",
		},
		models.Strategic: {
			"让我们分析一下每个人的发言，找出线索",
		},
		models.Random: {
			"大家对昨晚的情况有什么看法？",
			"我们要团结一致找出狼人",
		},
	},
}

var defaultDialogues = []string{
	"让我们好好分析一下局势",
	"大家有什么想法吗？",
}

// dialogueFor 按角色和性格挑选一条发言
func dialogueFor(role models.Role, personality models.Personality, rng *RandomSource) string {
	byPersonality, ok := dayDialogues[role]
	if !ok {
		return defaultDialogues[rng.Intn(len(defaultDialogues))]
	}
	lines, ok := byPersonality[personality]
	if !ok || len(lines) == 0 {
		return defaultDialogues[rng.Intn(len(defaultDialogues))]
	}
	return lines[rng.Intn(len(lines))]
}
