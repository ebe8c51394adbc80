package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/qianlnk/werewolf-engine/models"
)

// ErrAlreadyRun 引擎实例只能运行一局
var ErrAlreadyRun = errors.New("引擎已经运行过")

// Engine 游戏引擎，驱动固定的阶段循环：
// Setup -> Night -> WinCheck -> Day -> Voting -> Execution -> WinCheck -> (Night | Ended)。
// 游戏状态只由引擎在阶段步骤之间修改；代理调用是仅有的阻塞点，
// 可并发的决策（夜晚行动、投票）并发征询后按确定顺序结算。
type Engine struct {
	cfg    models.GameConfig
	reg    *RoleRegistry
	agents map[string]Agent
	rng    *RandomSource
	st     *gameState
	log    *eventLog
}

// Option 引擎可选配置
type Option func(*Engine)

// WithRegistry 使用自定义角色注册表
func WithRegistry(reg *RoleRegistry) Option {
	return func(e *Engine) { e.reg = reg }
}

// WithObserver 注册事件观察回调，事件追加时同步触发
func WithObserver(fn EventObserver) Option {
	return func(e *Engine) { e.log.observers = append(e.log.observers, fn) }
}

// NewEngine 创建引擎实例。配置错误立即报出，不会产生任何事件。
// agents按座位顺序给出，传nil时引擎为每个座位创建规则AI。
func NewEngine(cfg models.GameConfig, agents []Agent, opts ...Option) (*Engine, error) {
	e := &Engine{
		reg: DefaultRegistry(),
		log: &eventLog{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := validateConfig(cfg, e.reg); err != nil {
		return nil, err
	}
	cfg = applyDefaults(cfg)

	e.cfg = cfg
	e.rng = NewRandomSource(cfg.Seed)
	e.st = newGameState(cfg.PlayerNames)

	if agents == nil {
		agents = make([]Agent, cfg.PlayerCount)
		for i, p := range e.st.players {
			agents[i] = NewRuleBasedAgent(p.ID, e.rng.Derive(p.ID))
		}
	}
	if len(agents) != cfg.PlayerCount {
		return nil, fmt.Errorf("代理数量%d与玩家人数%d不一致", len(agents), cfg.PlayerCount)
	}
	e.agents = make(map[string]Agent, len(agents))
	for i, p := range e.st.players {
		e.agents[p.ID] = agents[i]
	}

	return e, nil
}

// Run 运行一局游戏直到Ended，返回完整事件序列。
// 代理失败走兜底策略并记录事件；不变量被破坏时中止运行，
// 返回错误以及中止前已产生的事件。
func (e *Engine) Run(ctx context.Context) ([]models.Event, error) {
	if e.st.phase != models.PhaseSetup {
		return e.log.all(), ErrAlreadyRun
	}

	e.setup()

	for {
		if err := ctx.Err(); err != nil {
			return e.log.all(), err
		}

		// 夜晚
		e.enterPhase(models.PhaseNight)
		deaths, err := e.runNight(ctx)
		if err != nil {
			return e.log.all(), err
		}
		if _, err := e.hunterRevenge(ctx, deaths); err != nil {
			return e.log.all(), err
		}

		if ended, err := e.winCheck(); err != nil || ended {
			return e.log.all(), err
		}

		// 白天讨论
		e.enterPhase(models.PhaseDay)
		e.runDay(ctx)

		// 投票
		e.enterPhase(models.PhaseVoting)
		eliminated := e.runVoting(ctx)

		// 处决
		e.enterPhase(models.PhaseExecution)
		execDeaths := e.runExecution(eliminated)
		if _, err := e.hunterRevenge(ctx, execDeaths); err != nil {
			return e.log.all(), err
		}

		if ended, err := e.winCheck(); err != nil || ended {
			return e.log.all(), err
		}

		e.st.round++
	}
}

// emit 以当前回合和阶段追加事件
func (e *Engine) emit(kind models.EventKind, actor string, targets []string, payload map[string]string) {
	e.log.append(e.st.round, e.st.phase, kind, actor, targets, payload)
}

// fallback 记录一次代理兜底
func (e *Engine) fallback(playerID, op, reason string) {
	e.emit(models.EventAgentFallback, playerID, nil, map[string]string{
		"op":     op,
		"reason": reason,
	})
}

// enterPhase 进入新阶段并记录事件
func (e *Engine) enterPhase(phase models.Phase) {
	e.st.phase = phase
	e.emit(models.EventPhaseStarted, "", nil, nil)
}

// setup 分配角色并初始化技能状态
func (e *Engine) setup() {
	e.emit(models.EventGameStarted, "", nil, map[string]string{
		"player_count": strconv.Itoa(e.cfg.PlayerCount),
		"seed":         strconv.FormatInt(e.cfg.Seed, 10),
	})

	// 配置是映射，先按角色名排序再展开，保证洗牌输入确定
	names := make([]string, 0, len(e.cfg.Roles))
	for role := range e.cfg.Roles {
		names = append(names, string(role))
	}
	sort.Strings(names)

	roles := make([]models.Role, 0, e.cfg.PlayerCount)
	for _, name := range names {
		for i := 0; i < e.cfg.Roles[models.Role(name)]; i++ {
			roles = append(roles, models.Role(name))
		}
	}
	e.rng.Shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})

	for i, p := range e.st.players {
		p.Role = roles[i]
		spec, _ := e.reg.Lookup(p.Role)
		if spec.HasAbility(models.AbilitySave) || spec.HasAbility(models.AbilityPoison) {
			e.st.potions[p.ID] = &witchPotions{}
		}
		e.emit(models.EventRoleAssigned, p.ID, nil, map[string]string{
			"role": string(p.Role),
		})
	}
}

// snapshotFor 构造发给指定玩家的只读快照，只含其合法可知的信息
func (e *Engine) snapshotFor(p *models.Player, ask models.AbilityKind) Snapshot {
	snap := Snapshot{
		Self:    *p,
		Round:   e.st.round,
		Phase:   e.st.phase,
		Ask:     ask,
		Players: e.st.playerViews(),
	}

	snap.Speeches = make([]Speech, len(e.st.speeches))
	copy(snap.Speeches, e.st.speeches)
	snap.LastVotes = make([]models.Vote, len(e.st.lastVotes))
	copy(snap.LastVotes, e.st.lastVotes)

	if f, ok := e.reg.FactionOf(p.Role); ok && f == models.WerewolfFaction {
		for _, other := range e.st.players {
			if other.ID == p.ID || !other.Alive {
				continue
			}
			if of, ok := e.reg.FactionOf(other.Role); ok && of == models.WerewolfFaction {
				snap.Teammates = append(snap.Teammates, other.ID)
			}
		}
	}

	if history, ok := e.st.inspections[p.ID]; ok {
		snap.Inspections = make([]InspectResult, len(history))
		copy(snap.Inspections, history)
	}

	if potions, ok := e.st.potions[p.ID]; ok {
		snap.HasSave = !potions.saveUsed
		snap.HasPoison = !potions.poisonUsed
	}

	return snap
}

// nightAsk 座位对应的夜晚技能请求
type nightAsk struct {
	player *models.Player
	spec   AbilitySpec
}

// runNight 征询并结算夜晚技能，返回本夜死亡的玩家
func (e *Engine) runNight(ctx context.Context) ([]string, error) {
	// 第一波：狼人击杀、预言家查验、守卫守护，相互独立，并发征询
	var wave []nightAsk
	for _, p := range e.st.alivePlayers() {
		spec, _ := e.reg.Lookup(p.Role)
		for _, a := range spec.Abilities {
			switch a.Kind {
			case models.AbilityKill, models.AbilityInspect, models.AbilityProtect:
				wave = append(wave, nightAsk{player: p, spec: a})
			}
		}
	}

	askOf := make(map[string]AbilitySpec, len(wave))
	players := make([]*models.Player, len(wave))
	for i, call := range wave {
		players[i] = call.player
		askOf[call.player.ID] = call.spec
	}

	results := e.gatherActions(ctx, players, func(p *models.Player) Snapshot {
		return e.snapshotFor(p, askOf[p.ID].Kind)
	})

	var abilities []Ability
	var wolfProposals []models.Vote
	var firstWolf string

	for i, call := range wave {
		p := call.player
		r := results[i]
		if r.err != nil {
			e.fallback(p.ID, "night_action", reasonOf(r.err))
			continue
		}
		if r.action.Skip {
			continue
		}
		if r.action.Kind != call.spec.Kind {
			e.fallback(p.ID, "night_action", "invalid_kind")
			continue
		}
		if !e.validNightTarget(p, r.action) {
			e.fallback(p.ID, "night_action", "invalid_target")
			continue
		}

		if r.action.Kind == models.AbilityKill {
			// 狼人击杀走集体决定，先收集提名
			if firstWolf == "" {
				firstWolf = p.ID
			}
			wolfProposals = append(wolfProposals, models.Vote{Voter: p.ID, Target: r.action.Target})
			continue
		}

		abilities = append(abilities, Ability{
			Actor:    p.ID,
			Kind:     r.action.Kind,
			Target:   r.action.Target,
			Priority: call.spec.Priority,
		})
	}

	// 狼人集体目标：提名最多者，平票由随机源抽取
	victim := ""
	if len(wolfProposals) > 0 {
		order := make([]string, 0, len(e.st.players))
		for _, p := range e.st.players {
			order = append(order, p.ID)
		}
		_, top := tallyVotes(wolfProposals, order)
		switch len(top) {
		case 0:
		case 1:
			victim = top[0]
		default:
			victim = e.rng.Pick(top)
		}
	}
	if victim != "" {
		abilities = append(abilities, Ability{
			Actor:    firstWolf,
			Kind:     models.AbilityKill,
			Target:   victim,
			Priority: PriorityKill,
		})
	}

	// 第二波：女巫用药，依赖狼人的击杀目标，顺序征询
	witchAbilities, err := e.askWitches(ctx, victim)
	if err != nil {
		return nil, err
	}
	abilities = append(abilities, witchAbilities...)

	return e.resolveAbilities(abilities)
}

// askWitches 征询持有药剂的玩家用药决定
func (e *Engine) askWitches(ctx context.Context, victim string) ([]Ability, error) {
	var abilities []Ability

	for _, p := range e.st.alivePlayers() {
		potions, ok := e.st.potions[p.ID]
		if !ok {
			continue
		}
		spec, _ := e.reg.Lookup(p.Role)

		// 解药：只能救今晚被袭击的玩家
		if spec.HasAbility(models.AbilitySave) && !potions.saveUsed && victim != "" {
			snap := e.snapshotFor(p, models.AbilitySave)
			snap.AttackedID = victim
			r := e.callAction(ctx, e.agents[p.ID], snap)
			switch {
			case r.err != nil:
				e.fallback(p.ID, "night_action", reasonOf(r.err))
			case r.action.Skip:
			case r.action.Kind != models.AbilitySave || r.action.Target != victim:
				e.fallback(p.ID, "night_action", "invalid_target")
			default:
				potions.saveUsed = true
				abilities = append(abilities, Ability{
					Actor:    p.ID,
					Kind:     models.AbilitySave,
					Target:   victim,
					Priority: prioritySpec(spec, models.AbilitySave),
				})
			}
		}

		// 毒药
		if spec.HasAbility(models.AbilityPoison) && !potions.poisonUsed {
			snap := e.snapshotFor(p, models.AbilityPoison)
			snap.AttackedID = victim
			r := e.callAction(ctx, e.agents[p.ID], snap)
			switch {
			case r.err != nil:
				e.fallback(p.ID, "night_action", reasonOf(r.err))
			case r.action.Skip:
			case r.action.Kind != models.AbilityPoison || !e.st.isAlive(r.action.Target) || r.action.Target == p.ID:
				e.fallback(p.ID, "night_action", "invalid_target")
			default:
				potions.poisonUsed = true
				abilities = append(abilities, Ability{
					Actor:    p.ID,
					Kind:     models.AbilityPoison,
					Target:   r.action.Target,
					Priority: prioritySpec(spec, models.AbilityPoison),
				})
			}
		}
	}

	return abilities, nil
}

// validNightTarget 校验第一波夜晚技能的目标
func (e *Engine) validNightTarget(p *models.Player, action models.Action) bool {
	if action.Target == "" || !e.st.isAlive(action.Target) {
		return false
	}
	switch action.Kind {
	case models.AbilityKill:
		// 狼人不能击杀同阵营
		target := e.st.player(action.Target)
		f, ok := e.reg.FactionOf(target.Role)
		return ok && f != models.WerewolfFaction
	case models.AbilityInspect:
		return action.Target != p.ID
	case models.AbilityProtect:
		return true
	default:
		return false
	}
}

// hunterRevenge 处理死亡触发的猎人开枪，枪带目标也可能连锁触发
func (e *Engine) hunterRevenge(ctx context.Context, deaths []string) ([]string, error) {
	all := append([]string(nil), deaths...)

	for i := 0; i < len(all); i++ {
		p := e.st.player(all[i])
		if p == nil {
			continue
		}
		spec, _ := e.reg.Lookup(p.Role)
		if !spec.HasAbility(models.AbilityShoot) || e.st.shotUsed[p.ID] {
			continue
		}
		e.st.shotUsed[p.ID] = true

		snap := e.snapshotFor(p, models.AbilityShoot)
		r := e.callAction(ctx, e.agents[p.ID], snap)
		switch {
		case r.err != nil:
			e.fallback(p.ID, "night_action", reasonOf(r.err))
			continue
		case r.action.Skip:
			continue
		case r.action.Kind != models.AbilityShoot || !e.st.isAlive(r.action.Target):
			e.fallback(p.ID, "night_action", "invalid_target")
			continue
		}

		e.emit(models.EventHunterShot, p.ID, []string{r.action.Target}, nil)
		shotDeaths, err := e.resolveAbilities([]Ability{{
			Actor:    p.ID,
			Kind:     models.AbilityShoot,
			Target:   r.action.Target,
			Priority: prioritySpec(spec, models.AbilityShoot),
		}})
		if err != nil {
			return nil, err
		}
		all = append(all, shotDeaths...)
	}

	return all, nil
}

// runDay 按座位顺序征询发言，发言是顺序依赖的，不并发
func (e *Engine) runDay(ctx context.Context) {
	for round := 0; round < e.cfg.DiscussionRounds; round++ {
		for _, p := range e.st.alivePlayers() {
			text, err := e.callSpeak(ctx, e.agents[p.ID], e.snapshotFor(p, ""))
			if err != nil {
				e.fallback(p.ID, "speak", reasonOf(err))
				continue
			}
			if text == "" {
				e.fallback(p.ID, "speak", "empty_response")
				continue
			}
			e.st.speeches = append(e.st.speeches, Speech{Player: p.ID, Round: e.st.round, Text: text})
			e.emit(models.EventSpeech, p.ID, nil, map[string]string{"text": text})
		}
	}
}

// runVoting 并发收集投票并统计，返回被处决玩家，空串表示无人出局
func (e *Engine) runVoting(ctx context.Context) string {
	votes := e.collectVotes(ctx, nil)

	order := make([]string, 0, len(e.st.players))
	for _, p := range e.st.players {
		if p.Alive {
			order = append(order, p.ID)
		}
	}

	_, top := tallyVotes(votes, order)
	switch len(top) {
	case 0:
		return ""
	case 1:
		return top[0]
	}

	// 平票，按配置策略处理
	e.emit(models.EventVoteTied, "", top, map[string]string{
		"policy": string(e.cfg.TiePolicy),
	})
	switch e.cfg.TiePolicy {
	case models.TieRandom:
		return e.rng.Pick(top)
	case models.TieRevote:
		votes = e.collectVotes(ctx, top)
		_, retop := tallyVotes(votes, top)
		if len(retop) == 1 {
			return retop[0]
		}
		if len(retop) > 1 {
			e.emit(models.EventVoteTied, "", retop, map[string]string{
				"policy": string(models.TieNoElimination),
			})
		}
		return ""
	default: // TieNoElimination
		return ""
	}
}

// collectVotes 并发征询全部存活玩家投票，candidates限定可投目标
func (e *Engine) collectVotes(ctx context.Context, candidates []string) []models.Vote {
	voters := e.st.alivePlayers()
	results := e.gatherVotes(ctx, voters, func(p *models.Player) Snapshot {
		snap := e.snapshotFor(p, "")
		snap.Candidates = candidates
		return snap
	})

	allowed := make(map[string]bool, len(candidates))
	for _, id := range candidates {
		allowed[id] = true
	}

	votes := make([]models.Vote, 0, len(voters))
	for i, p := range voters {
		r := results[i]
		vote := models.Vote{Voter: p.ID}

		switch {
		case r.err != nil:
			e.fallback(p.ID, "vote", reasonOf(r.err))
		case r.vote.Target == "":
			// 弃票
		case !e.st.isAlive(r.vote.Target),
			len(candidates) > 0 && !allowed[r.vote.Target]:
			e.fallback(p.ID, "vote", "invalid_target")
		default:
			vote.Target = r.vote.Target
		}

		votes = append(votes, vote)
		if vote.Target == "" {
			e.emit(models.EventVoteCast, p.ID, nil, map[string]string{"abstain": "true"})
		} else {
			e.emit(models.EventVoteCast, p.ID, []string{vote.Target}, nil)
		}
	}

	e.st.lastVotes = votes
	return votes
}

// runExecution 应用处决结果
func (e *Engine) runExecution(eliminated string) []string {
	if eliminated == "" {
		e.emit(models.EventNoElimination, "", nil, nil)
		return nil
	}

	p := e.st.player(eliminated)
	p.Alive = false
	e.emit(models.EventEliminated, "", []string{p.ID}, map[string]string{
		"role": string(p.Role),
	})
	return []string{p.ID}
}

// winCheck 进入胜负判定阶段，命中胜利条件时进入Ended并记录终局事件
func (e *Engine) winCheck() (bool, error) {
	e.enterPhase(models.PhaseWinCheck)

	cond, outcome, ended, err := e.evaluateWin()
	if err != nil {
		return false, err
	}
	if !ended {
		return false, nil
	}

	e.st.phase = models.PhaseEnded
	e.emit(models.EventGameEnded, "", nil, map[string]string{
		"outcome":   outcome,
		"condition": cond,
	})
	return true, nil
}

// prioritySpec 取角色定义中指定技能的优先级
func prioritySpec(spec RoleSpec, kind models.AbilityKind) int {
	for _, a := range spec.Abilities {
		if a.Kind == kind {
			return a.Priority
		}
	}
	return 0
}

// reasonOf 把代理错误归类为兜底原因
func reasonOf(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "error"
}
