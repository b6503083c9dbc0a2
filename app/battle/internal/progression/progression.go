// Package progression 等级经验与数值成长，纯函数无状态
package progression

import (
	"github.com/google/uuid"
	"github.com/lk2023060901/grandline/app/battle/internal/gameconfig"
	"github.com/lk2023060901/grandline/app/battle/internal/model"
)

const (
	// MaxPlayerLevel 玩家等级上限，角色等级不设上限
	MaxPlayerLevel = 100
	// unreachableExp 满级后的升级门槛
	unreachableExp int64 = 999999999
)

// 每升一级的固定奖励
const (
	levelBerries int64 = 500
	levelClovers int64 = 10
	levelBounty  int64 = 40
)

// 每级成长
const (
	growHP  = 15
	growAtk = 10
	growDef = 8
	growSpe = 12
)

// Stats 按等级和果实计算后的数值
type Stats struct {
	HP     int
	AtkMin int
	AtkMax int
	Def    int
	Spe    int
}

// Bundle 货币奖励
type Bundle struct {
	Berries int64
	Clovers int64
	Bounty  int64
}

// RequiredPlayerExp 玩家从 level 升到下一级所需经验
func RequiredPlayerExp(level int) int64 {
	switch {
	case level >= MaxPlayerLevel:
		return unreachableExp
	case level >= 1 && level <= 5:
		return 200
	case level >= 6 && level <= 10:
		return 500
	case level >= 11 && level <= 20:
		return 1500
	case level >= 21 && level <= 30:
		return 2000
	case level >= 31 && level <= 70:
		return 3000
	case level >= 71:
		return 6000
	default:
		return 10000
	}
}

// RequiredCharExp 角色从 level 升到下一级所需经验
func RequiredCharExp(level int) int64 {
	switch {
	case level >= 1 && level <= 5:
		return 500
	case level >= 6 && level <= 10:
		return 1000
	case level >= 11 && level <= 15:
		return 2000
	case level >= 16 && level <= 20:
		return 2500
	default:
		return 3000
	}
}

// ApplyPlayerExp 增加经验并结算连续升级，每升一级发放固定奖励
// 返回升级数，等级不会超过 MaxPlayerLevel
func ApplyPlayerExp(p *model.PlayerRecord, gained int64) int {
	if p.Level < 1 {
		p.Level = 1
	}
	p.Exp += gained

	levels := 0
	for p.Level < MaxPlayerLevel {
		req := RequiredPlayerExp(p.Level)
		if p.Exp < req {
			break
		}
		p.Exp -= req
		p.Level++
		levels++
	}

	reward := LevelRewards(levels)
	p.Berries += reward.Berries
	p.Clovers += reward.Clovers
	p.Bounty += reward.Bounty
	return levels
}

// ApplyCharExp 增加角色经验并结算升级，不设等级上限
func ApplyCharExp(c *model.CharacterInstance, gained int64) int {
	if c.Level < 1 {
		c.Level = 1
	}
	c.Exp += gained

	levels := 0
	for {
		req := RequiredCharExp(c.Level)
		if c.Exp < req {
			break
		}
		c.Exp -= req
		c.Level++
		levels++
	}
	return levels
}

// LevelRewards 升 levels 级获得的奖励合计
func LevelRewards(levels int) Bundle {
	n := int64(levels)
	return Bundle{
		Berries: n * levelBerries,
		Clovers: n * levelClovers,
		Bounty:  n * levelBounty,
	}
}

// ScaledStats 基础数值按等级线性成长，再叠加果实加成
func ScaledStats(base gameconfig.Character, level int, fruit *gameconfig.Fruit) Stats {
	bonus := level - 1
	if bonus < 0 {
		bonus = 0
	}
	s := Stats{
		HP:     base.HP + growHP*bonus,
		AtkMin: base.AtkMin + growAtk*bonus,
		AtkMax: base.AtkMax + growAtk*bonus,
		Def:    base.Def + growDef*bonus,
		Spe:    base.Spe + growSpe*bonus,
	}
	if fruit != nil {
		s.AtkMin += fruit.AtkBuff
		s.AtkMax += fruit.AtkBuff
		s.Def += fruit.DefBuff
		s.HP += fruit.HPBuff
	}
	return s
}

// NewInstance 生成满血的角色实例：按等级缩放，装备果实加成，武器追加特殊招式
func NewInstance(t *gameconfig.Tables, name string, level int, fruit, weapon string) *model.CharacterInstance {
	if level < 1 {
		level = 1
	}
	var fp *gameconfig.Fruit
	if f, ok := t.Fruit(fruit); ok && fruit != "" {
		fp = &f
	}
	stats := ScaledStats(t.Stats(name), level, fp)
	moves, ult := t.Kit(name)
	if w, ok := t.Weapon(weapon); ok {
		moves = append(moves, w.Spec)
	}

	return &model.CharacterInstance{
		ID:             uuid.NewString()[:8],
		Name:           name,
		Level:          level,
		HP:             stats.HP,
		MaxHP:          stats.HP,
		AtkMin:         stats.AtkMin,
		AtkMax:         stats.AtkMax,
		Def:            stats.Def,
		Spe:            stats.Spe,
		Moves:          moves,
		Ult:            ult,
		EquippedWeapon: weapon,
	}
}

// Snapshot 基于拥有的角色生成战斗快照，保留实例 ID 方便回写角色经验
func Snapshot(t *gameconfig.Tables, owned *model.CharacterInstance, fruit string) *model.CharacterInstance {
	c := NewInstance(t, owned.Name, owned.Level, fruit, owned.EquippedWeapon)
	c.ID = owned.ID
	c.Exp = owned.Exp
	return c
}
