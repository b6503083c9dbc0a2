package model

import (
	"time"
)

// BattleKind 战斗类型
type BattleKind string

const (
	KindPvE BattleKind = "pve"
	KindPvP BattleKind = "pvp"
)

// NPCID NPC 一方的参与者 ID
const NPCID = "NPC"

// Side 战斗中的一方
type Side struct {
	PlayerID string
	Name     string
	NPC      bool
	Roster   []*CharacterInstance
	Active   int
}

// Current 当前出战角色，全部阵亡时返回 nil
func (s *Side) Current() *CharacterInstance {
	if s.Active >= len(s.Roster) {
		return nil
	}
	return s.Roster[s.Active]
}

// Defeated 活动下标已到达阵容末尾
func (s *Side) Defeated() bool {
	return s.Active >= len(s.Roster)
}

// BattleSession 一场进行中的战斗
type BattleSession struct {
	ID           string
	Kind         BattleKind
	Sides        [2]*Side
	TurnOwner    int
	LastMoveAt   time.Time
	CreatedAt    time.Time
	RetreatVotes map[string]struct{}
}

// PvEID 探索战斗的会话 ID
func PvEID(playerID string) string {
	return "explore_" + playerID
}

// PvPID 对战会话 ID
func PvPID(initiatorID, opponentID string) string {
	return initiatorID + "_" + opponentID
}

// SideOf 返回玩家所在的一方
func (b *BattleSession) SideOf(playerID string) (int, bool) {
	for i, s := range b.Sides {
		if !s.NPC && s.PlayerID == playerID {
			return i, true
		}
	}
	return 0, false
}

// Owner 当前行动方
func (b *BattleSession) Owner() *Side {
	return b.Sides[b.TurnOwner]
}

// Waiting 当前等待对方行动的一方
func (b *BattleSession) Waiting() *Side {
	return b.Sides[1-b.TurnOwner]
}

// Participants 非 NPC 参与者
func (b *BattleSession) Participants() []string {
	ids := make([]string, 0, 2)
	for _, s := range b.Sides {
		if !s.NPC {
			ids = append(ids, s.PlayerID)
		}
	}
	return ids
}
