package engine

import "github.com/qianlnk/werewolf-engine/models"

// tallyVotes 统计票数。order给出全部合法目标的确定顺序（座位序），
// 返回得票数和得票最高者列表；列表顺序跟随order，与投票到达顺序无关。
func tallyVotes(votes []models.Vote, order []string) (map[string]int, []string) {
	counts := make(map[string]int)
	for _, v := range votes {
		if v.Target != "" {
			counts[v.Target]++
		}
	}

	max := 0
	for _, id := range order {
		if counts[id] > max {
			max = counts[id]
		}
	}
	if max == 0 {
		return counts, nil
	}

	var top []string
	for _, id := range order {
		if counts[id] == max {
			top = append(top, id)
		}
	}
	return counts, top
}
