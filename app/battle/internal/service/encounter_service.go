package service

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/grandline/app/battle/internal/errs"
	"github.com/lk2023060901/grandline/app/battle/internal/gameconfig"
	"github.com/lk2023060901/grandline/app/battle/internal/manager"
	"github.com/lk2023060901/grandline/app/battle/internal/metrics"
	"github.com/lk2023060901/grandline/app/battle/internal/model"
	"github.com/lk2023060901/grandline/pkg/logger"
)

// 宝箱概率阈值（累计）
const (
	frostChance = 0.005
	goldChance  = 0.015
	darkChance  = 0.065
)

// EncounterService 探索、遭遇和任务进度
type EncounterService struct {
	logger     logger.Logger
	players    *manager.PlayerManager
	encounters *manager.EncounterTracker
	battle     *BattleService
	tables     *gameconfig.Store
	rng        Rand
	metrics    *metrics.BattleMetrics
}

// NewEncounterService 创建探索服务
func NewEncounterService(
	l logger.Logger,
	players *manager.PlayerManager,
	encounters *manager.EncounterTracker,
	battle *BattleService,
	tables *gameconfig.Store,
	rng Rand,
	m *metrics.BattleMetrics,
) *EncounterService {
	return &EncounterService{
		logger:     logger.OrDefault(l).Named("service.encounter"),
		players:    players,
		encounters: encounters,
		battle:     battle,
		tables:     tables,
		rng:        rng,
		metrics:    m,
	}
}

// Explore 探索一次：获得三叶草，然后开出宝箱或遇到对手
// 冷却内已有未处理的遭遇时返回 ErrEncounterPending，超过冷却的旧遭遇被丢弃
func (s *EncounterService) Explore(ctx context.Context, playerID string) (*model.ExploreResult, error) {
	if enc, ok := s.encounters.Pending(playerID); ok {
		if rem := s.encounters.Remaining(enc); rem > 0 {
			s.metrics.RecordExplore("pending")
			return nil, errors.Wrapf(errs.ErrEncounterPending, "retry in %d seconds", int(math.Ceil(rem.Seconds())))
		}
		s.encounters.Clear(playerID)
	}

	t := s.tables.Tables()
	now := s.encounters.Now()
	res := &model.ExploreResult{}
	var wins int
	_, err := s.players.Update(ctx, playerID, func(p *model.PlayerRecord) error {
		if p.IsLocked {
			return errs.ErrLocked
		}
		p.LastInteraction = now.Unix()
		p.ExploreCount++
		res.Clovers = int64(between(s.rng, 1, 2))
		p.Clovers += res.Clovers

		if chest := s.rollChest(); chest != nil {
			p.Clovers += chest.Clovers
			p.Berries += chest.Berries
			p.Tokens += chest.Tokens
			res.Chest = chest
		}
		wins = p.ExploreWins
		return nil
	})
	if err != nil {
		s.metrics.RecordExplore(errs.Class(err))
		return nil, err
	}

	if res.Chest != nil {
		s.metrics.RecordExplore("chest")
		s.logger.Debug("chest found",
			"player_id", playerID,
			"kind", res.Chest.Kind,
		)
		return res, nil
	}

	enc := model.Encounter{At: now}
	if boss, ok := t.BossAt(wins); ok {
		enc.Name, enc.Boss, enc.Mission = boss.Name, true, boss.Mission
	} else {
		enc.Name = pick(s.rng, t.NPCs)
	}
	s.encounters.Put(playerID, enc)
	res.Encounter = &enc

	s.metrics.RecordExplore("encounter")
	s.logger.Debug("encounter found",
		"player_id", playerID,
		"opponent", enc.Name,
		"boss", enc.Boss,
	)
	return res, nil
}

func (s *EncounterService) rollChest() *model.Chest {
	roll := s.rng.Float64()
	switch {
	case roll < frostChance:
		return &model.Chest{
			Kind:    model.ChestFrost,
			Clovers: int64(between(s.rng, 15, 25)),
			Berries: int64(between(s.rng, 4000, 6000)),
			Tokens:  between(s.rng, 4, 5),
		}
	case roll < goldChance:
		return &model.Chest{
			Kind:    model.ChestGold,
			Clovers: int64(between(s.rng, 5, 10)),
			Berries: int64(between(s.rng, 2000, 4000)),
			Tokens:  between(s.rng, 1, 2),
		}
	case roll < darkChance:
		return &model.Chest{
			Kind:    model.ChestDark,
			Clovers: int64(between(s.rng, 1, 5)),
			Berries: 1500,
		}
	}
	return nil
}

// Fight 挑战待处理的遭遇；遭遇在战斗结束时清除
func (s *EncounterService) Fight(ctx context.Context, playerID string) (*model.View, error) {
	enc, ok := s.encounters.Pending(playerID)
	if !ok {
		return nil, errs.ErrNoEncounter
	}
	return s.battle.CreatePvE(ctx, playerID, enc.Name)
}

// Missions 任务进度
func (s *EncounterService) Missions(ctx context.Context, playerID string) (*model.MissionProgress, error) {
	var wins int
	err := s.players.Read(ctx, playerID, func(p *model.PlayerRecord) error {
		wins = p.ExploreWins
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := &model.MissionProgress{Wins: wins}
	if next, ok := s.tables.Tables().NextBoss(wins); ok {
		out.Next, out.NextBoss = next.Wins, next.Name
	} else {
		out.Completed = true
	}
	return out, nil
}
