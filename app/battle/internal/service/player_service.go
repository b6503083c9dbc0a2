package service

import (
	"context"
	"strings"

	"github.com/lk2023060901/grandline/app/battle/internal/errs"
	"github.com/lk2023060901/grandline/app/battle/internal/gameconfig"
	"github.com/lk2023060901/grandline/app/battle/internal/manager"
	"github.com/lk2023060901/grandline/app/battle/internal/model"
	"github.com/lk2023060901/grandline/app/battle/internal/progression"
	"github.com/lk2023060901/grandline/pkg/logger"
)

// currency 可转账的货币
type currency int

const (
	berries currency = iota
	clovers
)

func (c currency) String() string {
	if c == clovers {
		return "clovers"
	}
	return "berries"
}

func (c currency) field(p *model.PlayerRecord) *int64 {
	if c == clovers {
		return &p.Clovers
	}
	return &p.Berries
}

// PlayerService 角色、背包、转账和管理操作
type PlayerService struct {
	logger     logger.Logger
	players    *manager.PlayerManager
	encounters *manager.EncounterTracker
	battle     *BattleService
	tables     *gameconfig.Store
}

// NewPlayerService 创建玩家服务
func NewPlayerService(
	l logger.Logger,
	players *manager.PlayerManager,
	encounters *manager.EncounterTracker,
	battle *BattleService,
	tables *gameconfig.Store,
) *PlayerService {
	return &PlayerService{
		logger:     logger.OrDefault(l).Named("service.player"),
		players:    players,
		encounters: encounters,
		battle:     battle,
		tables:     tables,
	}
}

// Register 获取或创建玩家
func (s *PlayerService) Register(ctx context.Context, playerID, name string) (*model.PlayerRecord, error) {
	p, err := s.players.Get(ctx, playerID, name)
	if err != nil {
		return nil, err
	}
	err = s.players.Read(ctx, playerID, func(p *model.PlayerRecord) error {
		if p.IsLocked {
			return errs.ErrLocked
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ChooseStarter 选择初始角色，每个玩家只能选一次
func (s *PlayerService) ChooseStarter(ctx context.Context, playerID, name string) (*model.CharacterInstance, error) {
	t := s.tables.Tables()
	var picked *model.CharacterInstance
	_, err := s.players.Update(ctx, playerID, func(p *model.PlayerRecord) error {
		if p.IsLocked {
			return errs.ErrLocked
		}
		if p.StarterSummoned {
			return errs.ErrStarterChosen
		}
		if !isStarter(t, name) {
			return errs.ErrInvalidTarget
		}
		picked = progression.NewInstance(t, name, 1, "", "")
		p.Characters = append(p.Characters, picked)
		p.StarterSummoned = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("starter chosen", "player_id", playerID, "character", name)
	return picked.Clone(), nil
}

func isStarter(t *gameconfig.Tables, name string) bool {
	for _, s := range t.Starters {
		if s == name {
			return true
		}
	}
	return false
}

// ToggleTeam 角色在队伍中则移出，否则加入（队伍未满时）
func (s *PlayerService) ToggleTeam(ctx context.Context, playerID, charID string) ([]string, error) {
	var team []string
	_, err := s.players.Update(ctx, playerID, func(p *model.PlayerRecord) error {
		if p.IsLocked {
			return errs.ErrLocked
		}
		if p.Character(charID) == nil {
			return errs.ErrItemNotOwned
		}
		if p.InTeam(charID) {
			kept := p.Team[:0:0]
			for _, id := range p.Team {
				if id != charID {
					kept = append(kept, id)
				}
			}
			p.Team = kept
		} else {
			if len(p.Team) >= model.MaxTeamSize {
				return errs.ErrTeamFull
			}
			p.Team = append(p.Team, charID)
		}
		team = append([]string{}, p.Team...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// EquipFruit 消耗背包中的果实并装备，原装备的果实被替换
func (s *PlayerService) EquipFruit(ctx context.Context, playerID, fruit string) (string, error) {
	t := s.tables.Tables()
	var equipped string
	_, err := s.players.Update(ctx, playerID, func(p *model.PlayerRecord) error {
		if p.IsLocked {
			return errs.ErrLocked
		}
		i := indexFold(p.Fruits, fruit)
		if i < 0 {
			return errs.ErrItemNotOwned
		}
		equipped = p.Fruits[i]
		if f, ok := t.Fruit(equipped); ok {
			equipped = f.Name
		}
		p.Fruits = append(p.Fruits[:i], p.Fruits[i+1:]...)
		p.EquippedFruit = equipped
		return nil
	})
	if err != nil {
		return "", err
	}
	return equipped, nil
}

// AttachWeapon 消耗背包中的武器装备到角色
func (s *PlayerService) AttachWeapon(ctx context.Context, playerID, weapon, charID string) error {
	_, err := s.players.Update(ctx, playerID, func(p *model.PlayerRecord) error {
		if p.IsLocked {
			return errs.ErrLocked
		}
		i := indexFold(p.Weapons, weapon)
		if i < 0 {
			return errs.ErrItemNotOwned
		}
		c := p.Character(charID)
		if c == nil {
			return errs.ErrItemNotOwned
		}
		c.EquippedWeapon = p.Weapons[i]
		p.Weapons = append(p.Weapons[:i], p.Weapons[i+1:]...)
		return nil
	})
	return err
}

// UseLevelToken 消耗一个升级令牌让角色升一级
func (s *PlayerService) UseLevelToken(ctx context.Context, playerID, charID string) (int, error) {
	var level int
	_, err := s.players.Update(ctx, playerID, func(p *model.PlayerRecord) error {
		if p.IsLocked {
			return errs.ErrLocked
		}
		if p.Tokens <= 0 {
			return errs.ErrInsufficientFunds
		}
		c := p.Character(charID)
		if c == nil {
			return errs.ErrItemNotOwned
		}
		p.Tokens--
		c.Level++
		level = c.Level
		return nil
	})
	return level, err
}

// SendBerries 转账贝里，接收方不存在时创建
func (s *PlayerService) SendBerries(ctx context.Context, fromID, toID, toName string, amount int64) error {
	return s.transfer(ctx, berries, fromID, toID, toName, amount)
}

// SendClovers 转账三叶草
func (s *PlayerService) SendClovers(ctx context.Context, fromID, toID, toName string, amount int64) error {
	return s.transfer(ctx, clovers, fromID, toID, toName, amount)
}

// transfer 先扣款再入账，入账失败时退回
func (s *PlayerService) transfer(ctx context.Context, cur currency, fromID, toID, toName string, amount int64) error {
	if amount <= 0 {
		return errs.ErrInvalidAmount
	}
	if fromID == toID {
		return errs.ErrInvalidTarget
	}

	_, err := s.players.Update(ctx, fromID, func(p *model.PlayerRecord) error {
		if p.IsLocked {
			return errs.ErrLocked
		}
		bal := cur.field(p)
		if *bal < amount {
			return errs.ErrInsufficientFunds
		}
		*bal -= amount
		return nil
	})
	if err != nil {
		return err
	}

	credit := func(p *model.PlayerRecord) error {
		*cur.field(p) += amount
		return nil
	}
	if _, err = s.players.Get(ctx, toID, toName); err == nil {
		_, err = s.players.Update(ctx, toID, credit)
	}
	if err != nil {
		if _, rerr := s.players.Update(ctx, fromID, credit); rerr != nil {
			s.logger.Error("failed to refund transfer",
				"from", fromID,
				"currency", cur.String(),
				"amount", amount,
				"error", rerr,
			)
		}
		return err
	}

	s.logger.Info("currency transferred",
		"from", fromID,
		"to", toID,
		"currency", cur.String(),
		"amount", amount,
	)
	return nil
}

// Unstuck 清除待处理的遭遇、所在的战斗和验证状态
func (s *PlayerService) Unstuck(ctx context.Context, playerID string) error {
	_, err := s.players.Update(ctx, playerID, func(p *model.PlayerRecord) error {
		if p.IsLocked {
			return errs.ErrLocked
		}
		p.LastInteraction = 0
		p.VerificationActive = false
		return nil
	})
	if err != nil {
		return err
	}

	s.encounters.Clear(playerID)
	abandoned := s.battle.Abandon(playerID)
	s.logger.Info("player unstuck", "player_id", playerID, "battle_abandoned", abandoned)
	return nil
}

// Lock 管理员锁定玩家
func (s *PlayerService) Lock(ctx context.Context, adminID, targetID string) error {
	if !s.players.IsAdmin(adminID) {
		return errs.ErrForbidden
	}
	return s.players.Lock(ctx, targetID)
}

// Unlock 管理员解锁玩家
func (s *PlayerService) Unlock(ctx context.Context, adminID, targetID string) error {
	if !s.players.IsAdmin(adminID) {
		return errs.ErrForbidden
	}
	return s.players.Unlock(ctx, targetID)
}

// UnlockAll 管理员解锁所有玩家，返回持久层和内存中解锁的数量
func (s *PlayerService) UnlockAll(ctx context.Context, adminID string) (int64, int64, error) {
	if !s.players.IsAdmin(adminID) {
		return 0, 0, errs.ErrForbidden
	}
	return s.players.UnlockAll(ctx)
}

func indexFold(items []string, name string) int {
	for i, it := range items {
		if strings.EqualFold(it, name) {
			return i
		}
	}
	return -1
}
