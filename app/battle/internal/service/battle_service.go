// Package service 战斗、探索和玩家操作的业务层
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/grandline/app/battle/internal/errs"
	"github.com/lk2023060901/grandline/app/battle/internal/gameconfig"
	"github.com/lk2023060901/grandline/app/battle/internal/manager"
	"github.com/lk2023060901/grandline/app/battle/internal/metrics"
	"github.com/lk2023060901/grandline/app/battle/internal/model"
	"github.com/lk2023060901/grandline/app/battle/internal/progression"
	"github.com/lk2023060901/grandline/app/battle/internal/timer"
	"github.com/lk2023060901/grandline/pkg/logger"
)

// 伤害公式常量
const (
	minDamage  = 5
	flatDamage = 120
)

const defaultUltDesc = "Standard massive damage."

// BattleConfig 战斗配置
type BattleConfig struct {
	// TurnTimeout PvP 回合超时
	TurnTimeout time.Duration `mapstructure:"turn_timeout" json:"turn_timeout" yaml:"turn_timeout"`
	// NPCUltChance NPC 大招未用时释放大招的概率
	NPCUltChance float64 `mapstructure:"npc_ult_chance" json:"npc_ult_chance" yaml:"npc_ult_chance" validate:"gte=0,lte=1"`
}

// DefaultBattleConfig 返回默认配置
func DefaultBattleConfig() *BattleConfig {
	return &BattleConfig{
		TurnTimeout:  120 * time.Second,
		NPCUltChance: 0.3,
	}
}

// TimeoutScheduler 回合超时调度
type TimeoutScheduler interface {
	ScheduleOnce(delay time.Duration, p timer.Payload)
}

// BattleService 回合制战斗
// 锁顺序：先战斗锁再玩家锁，玩家 Update 回调内不能访问战斗
type BattleService struct {
	cfg        BattleConfig
	logger     logger.Logger
	players    *manager.PlayerManager
	battles    *manager.BattleManager
	encounters *manager.EncounterTracker
	tables     *gameconfig.Store
	sched      TimeoutScheduler
	rng        Rand
	metrics    *metrics.BattleMetrics
	now        func() time.Time
}

// NewBattleService 创建战斗服务
func NewBattleService(
	cfg *BattleConfig,
	l logger.Logger,
	players *manager.PlayerManager,
	battles *manager.BattleManager,
	encounters *manager.EncounterTracker,
	tables *gameconfig.Store,
	sched TimeoutScheduler,
	rng Rand,
	m *metrics.BattleMetrics,
) *BattleService {
	c := *DefaultBattleConfig()
	if cfg != nil {
		if cfg.TurnTimeout > 0 {
			c.TurnTimeout = cfg.TurnTimeout
		}
		c.NPCUltChance = cfg.NPCUltChance
	}
	return &BattleService{
		cfg:        c,
		logger:     logger.OrDefault(l).Named("service.battle"),
		players:    players,
		battles:    battles,
		encounters: encounters,
		tables:     tables,
		sched:      sched,
		rng:        rng,
		metrics:    m,
		now:        time.Now,
	}
}

// resolution 一次调用产生的日志、提示和结果
type resolution struct {
	log     []string
	cues    []string
	outcome *model.Outcome
}

func (r *resolution) logf(format string, args ...any) {
	r.log = append(r.log, fmt.Sprintf(format, args...))
}

// Damage 伤害公式，结果不低于 minDamage
func Damage(roll, moveDamage, defense int) int {
	return max(minDamage, roll+moveDamage+flatDamage-defense)
}

// CreatePvE 玩家与 NPC 的战斗；速度高的一方先手，NPC 先手时立即自动出招
func (s *BattleService) CreatePvE(ctx context.Context, playerID, npcName string) (*model.View, error) {
	if npcName == "" {
		return nil, errs.ErrInvalidTarget
	}
	t := s.tables.Tables()

	player, err := s.snapshotSide(ctx, t, playerID)
	if err != nil {
		return nil, err
	}
	npc := &model.Side{
		PlayerID: model.NPCID,
		Name:     npcName,
		NPC:      true,
		Roster:   []*model.CharacterInstance{progression.NewInstance(t, npcName, 1, "", "")},
	}

	now := s.now()
	b := &model.BattleSession{
		ID:           model.PvEID(playerID),
		Kind:         model.KindPvE,
		Sides:        [2]*model.Side{player, npc},
		TurnOwner:    firstMover(player, npc),
		LastMoveAt:   now,
		CreatedAt:    now,
		RetreatVotes: make(map[string]struct{}),
	}
	if err := s.battles.Create(b); err != nil {
		return nil, err
	}
	s.metrics.RecordSessionStart(string(b.Kind))
	s.logger.Info("pve battle started",
		"session_id", b.ID,
		"player_id", playerID,
		"npc", npcName,
		"first", b.Owner().Name,
	)

	var view *model.View
	err = s.battles.Do(b.ID, func(b *model.BattleSession) (bool, error) {
		res := &resolution{}
		done := false
		if b.Owner().NPC {
			done = s.step(t, b, "", res)
			if done {
				s.conclude(ctx, t, b, res)
			}
		}
		view = s.render(t, b, res)
		return done, nil
	})
	return view, err
}

// CreatePvP 两名玩家的对战，速度相同时发起方先手
func (s *BattleService) CreatePvP(ctx context.Context, initiatorID, opponentID string) (*model.View, error) {
	if initiatorID == opponentID {
		return nil, errs.ErrInvalidTarget
	}
	t := s.tables.Tables()

	a, err := s.snapshotSide(ctx, t, initiatorID)
	if err != nil {
		return nil, err
	}
	b, err := s.snapshotSide(ctx, t, opponentID)
	if err != nil {
		return nil, errors.Wrap(err, "opponent")
	}

	now := s.now()
	session := &model.BattleSession{
		ID:           model.PvPID(initiatorID, opponentID),
		Kind:         model.KindPvP,
		Sides:        [2]*model.Side{a, b},
		TurnOwner:    firstMover(a, b),
		LastMoveAt:   now,
		CreatedAt:    now,
		RetreatVotes: make(map[string]struct{}),
	}
	if err := s.battles.Create(session); err != nil {
		return nil, err
	}
	s.metrics.RecordSessionStart(string(session.Kind))
	s.schedule(session)
	s.logger.Info("pvp battle started",
		"session_id", session.ID,
		"initiator", initiatorID,
		"opponent", opponentID,
		"first", session.Owner().PlayerID,
	)

	var view *model.View
	err = s.battles.Do(session.ID, func(b *model.BattleSession) (bool, error) {
		view = s.render(t, b, &resolution{})
		return false, nil
	})
	return view, err
}

// snapshotSide 校验玩家可以参战并生成队伍快照
func (s *BattleService) snapshotSide(ctx context.Context, t *gameconfig.Tables, playerID string) (*model.Side, error) {
	if s.battles.Busy(playerID) {
		return nil, errs.ErrAlreadyInBattle
	}
	side := &model.Side{PlayerID: playerID}
	err := s.players.Read(ctx, playerID, func(p *model.PlayerRecord) error {
		if p.IsLocked {
			return errs.ErrLocked
		}
		members := p.TeamMembers()
		if len(members) == 0 {
			return errs.ErrNoTeam
		}
		side.Name = p.Name
		for _, c := range members {
			side.Roster = append(side.Roster, progression.Snapshot(t, c, p.EquippedFruit))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return side, nil
}

// firstMover 首发角色速度高的一方先手，相同时 a 先手
func firstMover(a, b *model.Side) int {
	if a.Roster[0].Spe >= b.Roster[0].Spe {
		return 0
	}
	return 1
}

// ApplyMove 当前行动方出招；轮到 NPC 时任何参与者的调用都会让 NPC 自动出招
func (s *BattleService) ApplyMove(ctx context.Context, sessionID, actorID, moveName string) (view *model.View, err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordMove(errs.Class(err), time.Since(start).Seconds())
	}()

	t := s.tables.Tables()
	err = s.battles.Do(sessionID, func(b *model.BattleSession) (bool, error) {
		side, ok := b.SideOf(actorID)
		if !ok {
			return false, errs.ErrNotParticipant
		}
		if !b.Owner().NPC && b.TurnOwner != side {
			return false, errs.ErrNotYourTurn
		}
		if err := s.checkUnlocked(ctx, actorID); err != nil {
			return false, err
		}
		if !b.Owner().NPC {
			if err := validateMove(t, b, moveName); err != nil {
				return false, err
			}
		}

		res := &resolution{}
		done := s.step(t, b, moveName, res)
		if !done && b.Owner().NPC {
			done = s.step(t, b, "", res)
		}
		if done {
			s.conclude(ctx, t, b, res)
		} else if b.Kind == model.KindPvP {
			s.schedule(b)
		}
		view = s.render(t, b, res)
		return done, nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// validateMove 在任何修改之前检查出招；被眩晕时本次行动只用于解除眩晕
func validateMove(t *gameconfig.Tables, b *model.BattleSession, moveName string) error {
	attacker := b.Owner().Current()
	if attacker == nil || b.Waiting().Current() == nil {
		return errs.ErrTargetDefeated
	}
	if attacker.Stunned {
		return nil
	}
	if !attacker.HasMove(moveName) {
		return errors.Wrapf(errs.ErrUnknownMove, "%q", moveName)
	}
	if _, ok := t.Move(moveName); !ok {
		return errors.Wrapf(errs.ErrUnknownMove, "%q", moveName)
	}
	if moveName == attacker.Ult && attacker.UltUsed {
		return errs.ErrUltimateUsed
	}
	return nil
}

// step 结算一次行动，返回战斗是否结束
func (s *BattleService) step(t *gameconfig.Tables, b *model.BattleSession, moveName string, res *resolution) bool {
	b.LastMoveAt = s.now()
	att, def := b.Owner(), b.Waiting()
	attacker, defender := att.Current(), def.Current()

	if attacker.Stunned {
		attacker.Stunned = false
		res.logf("%s is stunned and skipped their turn!", attacker.Name)
		b.TurnOwner = 1 - b.TurnOwner
		return false
	}

	if att.NPC {
		moveName = s.npcMove(attacker)
	}
	move, ok := t.Move(moveName)
	if !ok {
		move, _ = t.Move("Strike")
	}

	// 闪避由出招方自身的闪避值判定，判定后总是清零
	dodged := s.rng.Float64()*100 < float64(attacker.DodgeChance)
	attacker.DodgeChance = 0
	if dodged {
		res.logf("%s dodged the attack!", defender.Name)
	} else {
		if moveName == attacker.Ult {
			attacker.UltUsed = true
			if c, ok := t.Character(attacker.Name); ok && c.UltCue != "" {
				res.cues = append(res.cues, c.UltCue)
			}
		}
		dmg := Damage(between(s.rng, attacker.AtkMin, attacker.AtkMax), move.Damage, defender.Def)
		defender.HP -= dmg
		res.logf("%s uses %s! Deals %d DMG!", attacker.Name, moveName, dmg)
		applyEffect(move.Effect, att, attacker, defender)
	}

	if defender.HP <= 0 {
		defender.HP = 0
		def.Active++
		res.logf("%s HAS FALLEN!", defender.Name)
		if def.Defeated() {
			res.outcome = &model.Outcome{
				Reason:   model.ReasonDefeat,
				WinnerID: att.PlayerID,
				Winner:   att.Name,
				LoserID:  def.PlayerID,
				Loser:    def.Name,
			}
			return true
		}
	}

	b.TurnOwner = 1 - b.TurnOwner
	return false
}

func applyEffect(effect string, att *model.Side, attacker, defender *model.CharacterInstance) {
	switch effect {
	case gameconfig.EffectDefBuff10:
		attacker.Def += 10
	case gameconfig.EffectTeamHeal50:
		for _, c := range att.Roster {
			if c.Alive() {
				c.HP = min(c.MaxHP, c.HP+50)
			}
		}
	case gameconfig.EffectDodge30:
		attacker.DodgeChance = 30
	case gameconfig.EffectStun1:
		defender.Stunned = true
	}
}

// npcMove 大招未用时按概率释放，否则使用第一个招式
func (s *BattleService) npcMove(c *model.CharacterInstance) string {
	if !c.UltUsed && c.Ult != "" && s.rng.Float64() < s.cfg.NPCUltChance {
		return c.Ult
	}
	if len(c.Moves) == 0 {
		return "Strike"
	}
	return c.Moves[0]
}

// conclude 发放奖励并清理，调用方持有战斗锁
func (s *BattleService) conclude(ctx context.Context, t *gameconfig.Tables, b *model.BattleSession, res *resolution) {
	out := res.outcome
	switch b.Kind {
	case model.KindPvE:
		player := b.Sides[0]
		s.encounters.Clear(player.PlayerID)
		if out.Reason == model.ReasonDefeat && out.WinnerID == player.PlayerID {
			loot, lvl, err := s.grantPvE(ctx, t, player)
			if err != nil {
				s.logger.Error("failed to grant battle rewards",
					"session_id", b.ID,
					"player_id", player.PlayerID,
					"error", err,
				)
			} else {
				out.Loot, out.LevelUp = loot, lvl
			}
		}
	case model.KindPvP:
		if out.Reason == model.ReasonDefeat {
			_, err := s.players.Update(ctx, out.WinnerID, func(p *model.PlayerRecord) error {
				p.Wins++
				return nil
			})
			if err != nil {
				s.logger.Error("failed to record pvp win",
					"session_id", b.ID,
					"player_id", out.WinnerID,
					"error", err,
				)
			}
		}
	}

	s.metrics.RecordSessionEnd(string(b.Kind), string(out.Reason))
	s.logger.Info("battle concluded",
		"session_id", b.ID,
		"reason", out.Reason,
		"winner", out.WinnerID,
		"loser", out.LoserID,
	)
}

// grantPvE 结算探索胜利奖励；任务节点按奖励前的胜场判断
func (s *BattleService) grantPvE(ctx context.Context, t *gameconfig.Tables, side *model.Side) (*model.Loot, *model.LevelUp, error) {
	var (
		loot *model.Loot
		lvl  *model.LevelUp
	)
	_, err := s.players.Update(ctx, side.PlayerID, func(p *model.PlayerRecord) error {
		loot = s.rollLoot(t.IsMilestone(p.ExploreWins))
		p.ExploreWins++
		p.Berries += loot.Berries
		p.Clovers += loot.Clovers
		p.Bounty += loot.Bounty

		for _, snap := range side.Roster {
			for _, c := range p.Characters {
				if c.Name == snap.Name {
					progression.ApplyCharExp(c, loot.Exp)
				}
			}
		}

		if levels := progression.ApplyPlayerExp(p, loot.Exp); levels > 0 {
			bundle := progression.LevelRewards(levels)
			lvl = &model.LevelUp{
				Levels:   levels,
				NewLevel: p.Level,
				Berries:  bundle.Berries,
				Clovers:  bundle.Clovers,
				Bounty:   bundle.Bounty,
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return loot, lvl, nil
}

func (s *BattleService) rollLoot(milestone bool) *model.Loot {
	if milestone {
		return &model.Loot{
			Milestone: true,
			Exp:       int64(between(s.rng, 200, 300)),
			Berries:   int64(between(s.rng, 200, 250)),
			Clovers:   int64(between(s.rng, 5, 10)),
			Bounty:    int64(between(s.rng, 100, 200)),
		}
	}
	return &model.Loot{
		Exp:     int64(between(s.rng, 50, 100)),
		Berries: int64(between(s.rng, 50, 100)),
		Clovers: int64(between(s.rng, 1, 3)),
		Bounty:  int64(between(s.rng, 20, 30)),
	}
}

// Forfeit 认输，对方获胜，不发放奖励
func (s *BattleService) Forfeit(ctx context.Context, sessionID, actorID string) (*model.View, error) {
	t := s.tables.Tables()
	var view *model.View
	err := s.battles.Do(sessionID, func(b *model.BattleSession) (bool, error) {
		side, ok := b.SideOf(actorID)
		if !ok {
			return false, errs.ErrNotParticipant
		}
		if err := s.checkUnlocked(ctx, actorID); err != nil {
			return false, err
		}

		loser, winner := b.Sides[side], b.Sides[1-side]
		res := &resolution{outcome: &model.Outcome{
			Reason:   model.ReasonForfeit,
			WinnerID: winner.PlayerID,
			Winner:   winner.Name,
			LoserID:  loser.PlayerID,
			Loser:    loser.Name,
		}}
		res.logf("%s forfeited the battle!", loser.Name)
		s.end(b, res)
		view = s.render(t, b, res)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// RequestRetreat 撤退：PvE 立即结束，PvP 需要双方都同意
func (s *BattleService) RequestRetreat(ctx context.Context, sessionID, actorID string) (*model.View, error) {
	t := s.tables.Tables()
	var view *model.View
	err := s.battles.Do(sessionID, func(b *model.BattleSession) (bool, error) {
		side, ok := b.SideOf(actorID)
		if !ok {
			return false, errs.ErrNotParticipant
		}
		if err := s.checkUnlocked(ctx, actorID); err != nil {
			return false, err
		}

		res := &resolution{}
		b.RetreatVotes[actorID] = struct{}{}
		done := b.Kind == model.KindPvE || len(b.RetreatVotes) >= len(b.Participants())
		if !done {
			res.logf("%s wants to retreat. Waiting for the other side.", b.Sides[side].Name)
			view = s.render(t, b, res)
			return false, nil
		}

		res.outcome = &model.Outcome{Reason: model.ReasonRetreat}
		res.logf("The battle ended in a retreat.")
		s.end(b, res)
		view = s.render(t, b, res)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// OnTimeout 回合超时；调度后战斗已有新动作或已结束时返回 ErrExpired
func (s *BattleService) OnTimeout(ctx context.Context, sessionID string, captured time.Time) (*model.View, error) {
	t := s.tables.Tables()
	var view *model.View
	err := s.battles.Do(sessionID, func(b *model.BattleSession) (bool, error) {
		if !b.LastMoveAt.Equal(captured) {
			return false, errs.ErrExpired
		}
		idle, waiting := b.Owner(), b.Waiting()
		res := &resolution{outcome: &model.Outcome{
			Reason:   model.ReasonTimeout,
			WinnerID: waiting.PlayerID,
			Winner:   waiting.Name,
			LoserID:  idle.PlayerID,
			Loser:    idle.Name,
		}}
		res.logf("%s took too long to move!", idle.Name)
		s.end(b, res)
		view = s.render(t, b, res)
		return true, nil
	})
	if errors.Is(err, errs.ErrSessionNotFound) {
		err = errs.ErrExpired
	}
	if err != nil {
		s.logger.Debug("turn timeout ignored", "session_id", sessionID, "reason", err)
		return nil, err
	}
	return view, nil
}

// HandleTimeout 绑定到定时器的回调
func (s *BattleService) HandleTimeout(ctx context.Context, p timer.Payload) {
	_, _ = s.OnTimeout(ctx, p.SessionID, p.LastMoveAt)
}

// Peek 当前战斗视图，不做任何修改
func (s *BattleService) Peek(sessionID string) (*model.View, error) {
	t := s.tables.Tables()
	var view *model.View
	err := s.battles.Do(sessionID, func(b *model.BattleSession) (bool, error) {
		view = s.render(t, b, &resolution{})
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// SessionFor 玩家所在的战斗
func (s *BattleService) SessionFor(playerID string) (string, bool) {
	return s.battles.SessionFor(playerID)
}

// Abandon 直接移除玩家所在的战斗，不产生结果
func (s *BattleService) Abandon(playerID string) bool {
	id, ok := s.battles.SessionFor(playerID)
	if !ok || !s.battles.Remove(id) {
		return false
	}
	kind := model.KindPvP
	if id == model.PvEID(playerID) {
		kind = model.KindPvE
	}
	s.metrics.RecordSessionEnd(string(kind), "abandoned")
	s.logger.Info("battle abandoned", "session_id", id, "player_id", playerID)
	return true
}

// end 无奖励的结束：认输、撤退和超时
func (s *BattleService) end(b *model.BattleSession, res *resolution) {
	if b.Kind == model.KindPvE {
		s.encounters.Clear(b.Sides[0].PlayerID)
	}
	s.metrics.RecordSessionEnd(string(b.Kind), string(res.outcome.Reason))
	s.logger.Info("battle ended",
		"session_id", b.ID,
		"reason", res.outcome.Reason,
		"winner", res.outcome.WinnerID,
	)
}

func (s *BattleService) schedule(b *model.BattleSession) {
	if s.sched == nil {
		return
	}
	s.sched.ScheduleOnce(s.cfg.TurnTimeout, timer.Payload{SessionID: b.ID, LastMoveAt: b.LastMoveAt})
}

func (s *BattleService) checkUnlocked(ctx context.Context, playerID string) error {
	return s.players.Read(ctx, playerID, func(p *model.PlayerRecord) error {
		if p.IsLocked {
			return errs.ErrLocked
		}
		return nil
	})
}

func (s *BattleService) render(t *gameconfig.Tables, b *model.BattleSession, res *resolution) *model.View {
	v := &model.View{
		SessionID: b.ID,
		Kind:      b.Kind,
		Log:       append([]string{}, res.log...),
		Cues:      res.cues,
		Outcome:   res.outcome,
	}
	for i, side := range b.Sides {
		c := side.Current()
		if c == nil {
			c = side.Roster[len(side.Roster)-1]
		}
		v.Sides[i] = model.SideView{
			PlayerID:  side.PlayerID,
			Name:      side.Name,
			Character: c.Name,
			Level:     c.Level,
			HP:        c.HP,
			MaxHP:     c.MaxHP,
			Bar:       model.HPBar(c.HP, c.MaxHP),
			Remaining: len(side.Roster) - side.Active,
		}
	}
	if res.outcome == nil {
		owner := b.Owner()
		v.TurnPlayerID = owner.PlayerID
		v.TurnName = owner.Name
		if c := owner.Current(); c != nil && !owner.NPC {
			v.Moves = moveOptions(t, c)
		}
	}
	return v
}

// moveOptions 普通招式、武器或第二招式、大招
func moveOptions(t *gameconfig.Tables, c *model.CharacterInstance) []model.MoveOption {
	opts := make([]model.MoveOption, 0, 3)
	option := func(name string, kind model.MoveKind) model.MoveOption {
		m, _ := t.Move(name)
		return model.MoveOption{Name: name, Kind: kind, Damage: m.Damage, Available: true}
	}

	if len(c.Moves) > 0 {
		opts = append(opts, option(c.Moves[0], model.MoveBasic))
	}
	switch {
	case len(c.Moves) > 2:
		opts = append(opts, option(c.Moves[2], model.MoveSpecial))
	case len(c.Moves) > 1:
		opts = append(opts, option(c.Moves[1], model.MoveSpecial))
	}
	if c.Ult != "" {
		ult := option(c.Ult, model.MoveUltimate)
		ult.Available = !c.UltUsed
		ult.Description = defaultUltDesc
		if def, ok := t.Character(c.Name); ok && def.UltDesc != "" {
			ult.Description = def.UltDesc
		}
		opts = append(opts, ult)
	}
	return opts
}
