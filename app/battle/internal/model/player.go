package model

import (
	"time"
)

const (
	// DefaultName 新玩家未提供名字时的占位名
	DefaultName = "Pirate"
	// StarterBerries 新玩家初始贝里
	StarterBerries int64 = 10000
	// MaxTeamSize 出战队伍上限
	MaxTeamSize = 3
	// DateLayout start_date 的格式
	DateLayout = "2006-01-02"
)

// CharacterInstance 角色实例：玩家拥有的角色，或战斗中的独立快照
type CharacterInstance struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Level          int      `json:"level"`
	Exp            int64    `json:"exp"`
	HP             int      `json:"hp"`
	MaxHP          int      `json:"max_hp"`
	AtkMin         int      `json:"atk_min"`
	AtkMax         int      `json:"atk_max"`
	Def            int      `json:"def"`
	Spe            int      `json:"spe"`
	Moves          []string `json:"moves"`
	Ult            string   `json:"ult"`
	Stunned        bool     `json:"stunned"`
	UltUsed        bool     `json:"ult_used"`
	DodgeChance    int      `json:"dodge_chance"`
	EquippedWeapon string   `json:"equipped_weapon,omitempty"`
}

// Clone 深拷贝
func (c *CharacterInstance) Clone() *CharacterInstance {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Moves = append([]string(nil), c.Moves...)
	return &cp
}

// Alive HP 大于 0
func (c *CharacterInstance) Alive() bool {
	return c.HP > 0
}

// HasMove 是否可以使用该招式（普通招式或大招）
func (c *CharacterInstance) HasMove(name string) bool {
	if name == "" {
		return false
	}
	if name == c.Ult {
		return true
	}
	for _, m := range c.Moves {
		if m == name {
			return true
		}
	}
	return false
}

// PlayerRecord 玩家存档
type PlayerRecord struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	SchemaVersion string `json:"schema_version"`
	StartDate     string `json:"start_date"`
	ReferredBy    string `json:"referred_by"`
	Referrals     int    `json:"referrals"`

	Berries int64 `json:"berries"`
	Clovers int64 `json:"clovers"`
	Bounty  int64 `json:"bounty"`
	Exp     int64 `json:"exp"`
	Level   int   `json:"level"`
	Tokens  int   `json:"tokens"`

	Characters    []*CharacterInstance `json:"characters"`
	Team          []string             `json:"team"`
	Fruits        []string             `json:"fruits"`
	Weapons       []string             `json:"weapons"`
	EquippedFruit string               `json:"equipped_fruit"`

	Wins         int `json:"wins"`
	Losses       int `json:"losses"`
	ExploreWins  int `json:"explore_wins"`
	KillCount    int `json:"kill_count"`
	ExploreCount int `json:"explore_count"`

	StarterSummoned    bool  `json:"starter_summoned"`
	IsLocked           bool  `json:"is_locked"`
	VerificationActive bool  `json:"verification_active"`
	LastInteraction    int64 `json:"last_interaction"`
}

// NewPlayer 创建默认存档
func NewPlayer(id, name string, now time.Time) *PlayerRecord {
	if name == "" {
		name = DefaultName
	}
	return &PlayerRecord{
		UserID:     id,
		Name:       name,
		StartDate:  now.Format(DateLayout),
		Berries:    StarterBerries,
		Level:      1,
		Characters: []*CharacterInstance{},
		Team:       []string{},
		Fruits:     []string{},
		Weapons:    []string{},
	}
}

// Clone 深拷贝，用于持久化快照和失败回滚
func (p *PlayerRecord) Clone() *PlayerRecord {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Characters = make([]*CharacterInstance, len(p.Characters))
	for i, c := range p.Characters {
		cp.Characters[i] = c.Clone()
	}
	cp.Team = append([]string{}, p.Team...)
	cp.Fruits = append([]string{}, p.Fruits...)
	cp.Weapons = append([]string{}, p.Weapons...)
	return &cp
}

// Character 按实例 ID 查找拥有的角色
func (p *PlayerRecord) Character(id string) *CharacterInstance {
	for _, c := range p.Characters {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// InTeam 角色是否在出战队伍中
func (p *PlayerRecord) InTeam(id string) bool {
	for _, tid := range p.Team {
		if tid == id {
			return true
		}
	}
	return false
}

// TeamMembers 按队伍顺序返回拥有的角色，已不存在的 ID 被忽略
func (p *PlayerRecord) TeamMembers() []*CharacterInstance {
	members := make([]*CharacterInstance, 0, len(p.Team))
	for _, id := range p.Team {
		if c := p.Character(id); c != nil {
			members = append(members, c)
		}
	}
	return members
}
