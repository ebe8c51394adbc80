package engine

import (
	"hash/fnv"
	"math/rand"
)

// RandomSource 引擎内唯一的随机源，由配置种子构造。
// 引擎内的随机行为（洗牌、平票抽取、同优先级排序）全部经过它，
// 同一种子下调用序列相同则输出相同，这是回放一致性的基础。
type RandomSource struct {
	seed int64
	r    *rand.Rand
}

// NewRandomSource 创建随机源实例
func NewRandomSource(seed int64) *RandomSource {
	return &RandomSource{
		seed: seed,
		r:    rand.New(rand.NewSource(seed)),
	}
}

// Seed 返回构造时的种子
func (rs *RandomSource) Seed() int64 {
	return rs.seed
}

// Intn 返回[0,n)内的随机数
func (rs *RandomSource) Intn(n int) int {
	return rs.r.Intn(n)
}

// Float64 返回[0,1)内的随机数
func (rs *RandomSource) Float64() float64 {
	return rs.r.Float64()
}

// Shuffle 随机打乱n个元素
func (rs *RandomSource) Shuffle(n int, swap func(i, j int)) {
	rs.r.Shuffle(n, swap)
}

// Pick 从候选列表中随机选取一个，用于平票抽取
func (rs *RandomSource) Pick(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	return candidates[rs.r.Intn(len(candidates))]
}

// Derive 按名称派生子随机源。
// 每个代理持有自己的子源，互相独立，代理并发执行时
// 各自的随机序列不受到达顺序影响。
func (rs *RandomSource) Derive(name string) *RandomSource {
	h := fnv.New64a()
	h.Write([]byte(name))
	return NewRandomSource(rs.seed ^ int64(h.Sum64()))
}
