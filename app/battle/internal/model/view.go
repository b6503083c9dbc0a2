package model

import (
	"strings"
	"time"
)

// Reason 战斗结束原因
type Reason string

const (
	ReasonDefeat  Reason = "defeat"
	ReasonForfeit Reason = "forfeit"
	ReasonRetreat Reason = "retreat"
	ReasonTimeout Reason = "timeout"
)

// MoveKind 招式分类
type MoveKind string

const (
	MoveBasic    MoveKind = "basic"
	MoveSpecial  MoveKind = "special"
	MoveUltimate MoveKind = "ultimate"
)

const barCells = 10

// HPBar 10 格血条
func HPBar(hp, maxHP int) string {
	if maxHP <= 0 {
		return strings.Repeat("▒", barCells)
	}
	ratio := float64(hp) / float64(maxHP)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * barCells)
	return strings.Repeat("█", filled) + strings.Repeat("▒", barCells-filled)
}

// SideView 一方的展示数据
type SideView struct {
	PlayerID  string `json:"player_id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Level     int    `json:"level"`
	HP        int    `json:"hp"`
	MaxHP     int    `json:"max_hp"`
	Bar       string `json:"bar"`
	Remaining int    `json:"remaining"`
}

// MoveOption 当前行动角色可选的招式
type MoveOption struct {
	Name        string   `json:"name"`
	Kind        MoveKind `json:"kind"`
	Damage      int      `json:"damage"`
	Available   bool     `json:"available"`
	Description string   `json:"description,omitempty"`
}

// Loot PvE 胜利掉落
type Loot struct {
	Milestone bool  `json:"milestone"`
	Exp       int64 `json:"exp"`
	Berries   int64 `json:"berries"`
	Clovers   int64 `json:"clovers"`
	Bounty    int64 `json:"bounty"`
}

// LevelUp 玩家升级奖励
type LevelUp struct {
	Levels   int   `json:"levels"`
	NewLevel int   `json:"new_level"`
	Berries  int64 `json:"berries"`
	Clovers  int64 `json:"clovers"`
	Bounty   int64 `json:"bounty"`
}

// Outcome 战斗结果；撤退时 Winner 为空
type Outcome struct {
	Reason   Reason   `json:"reason"`
	WinnerID string   `json:"winner_id,omitempty"`
	Winner   string   `json:"winner,omitempty"`
	LoserID  string   `json:"loser_id,omitempty"`
	Loser    string   `json:"loser,omitempty"`
	Loot     *Loot    `json:"loot,omitempty"`
	LevelUp  *LevelUp `json:"level_up,omitempty"`
}

// View 每次战斗操作返回的可渲染视图
type View struct {
	SessionID    string       `json:"session_id"`
	Kind         BattleKind   `json:"kind"`
	Sides        [2]SideView  `json:"sides"`
	TurnPlayerID string       `json:"turn_player_id,omitempty"`
	TurnName     string       `json:"turn_name,omitempty"`
	Moves        []MoveOption `json:"moves,omitempty"`
	Log          []string     `json:"log"`
	Cues         []string     `json:"cues,omitempty"`
	Outcome      *Outcome     `json:"outcome,omitempty"`
}

// Concluded 战斗是否已结束
func (v *View) Concluded() bool {
	return v.Outcome != nil
}

// LastLog 最近一条战斗日志
func (v *View) LastLog() string {
	if len(v.Log) == 0 {
		return ""
	}
	return v.Log[len(v.Log)-1]
}

// Encounter 探索遭遇的待战斗对手
type Encounter struct {
	Name    string    `json:"name"`
	Boss    bool      `json:"boss"`
	Mission int       `json:"mission,omitempty"`
	At      time.Time `json:"at"`
}

// ChestKind 宝箱类型
type ChestKind string

const (
	ChestFrost ChestKind = "frost"
	ChestGold  ChestKind = "gold"
	ChestDark  ChestKind = "dark"
)

// Chest 探索开出的宝箱
type Chest struct {
	Kind    ChestKind `json:"kind"`
	Clovers int64     `json:"clovers"`
	Berries int64     `json:"berries"`
	Tokens  int       `json:"tokens"`
}

// ExploreResult 一次探索的结果，Chest 与 Encounter 二选一
type ExploreResult struct {
	Clovers   int64      `json:"clovers"`
	Chest     *Chest     `json:"chest,omitempty"`
	Encounter *Encounter `json:"encounter,omitempty"`
}

// MissionProgress 任务进度
type MissionProgress struct {
	Wins      int    `json:"wins"`
	Next      int    `json:"next,omitempty"`
	NextBoss  string `json:"next_boss,omitempty"`
	Completed bool   `json:"completed"`
}
