package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHPBar(t *testing.T) {
	tests := []struct {
		hp, max int
		want    string
	}{
		{100, 100, "██████████"},
		{55, 100, "█████▒▒▒▒▒"},
		{0, 100, "▒▒▒▒▒▒▒▒▒▒"},
		{-20, 100, "▒▒▒▒▒▒▒▒▒▒"},
		{10, 0, "▒▒▒▒▒▒▒▒▒▒"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HPBar(tt.hp, tt.max), "hp=%d max=%d", tt.hp, tt.max)
	}
}

func TestNewPlayerDefaults(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	p := NewPlayer("42", "", now)

	assert.Equal(t, DefaultName, p.Name)
	assert.Equal(t, StarterBerries, p.Berries)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, "2026-03-04", p.StartDate)
	assert.NotNil(t, p.Characters)
	assert.NotNil(t, p.Team)
}

func TestPlayerCloneIsDeep(t *testing.T) {
	p := NewPlayer("1", "Luffy", time.Now())
	p.Characters = append(p.Characters, &CharacterInstance{ID: "a", Name: "Nami", Level: 1, Moves: []string{"Thunderbolt Tempo"}})
	p.Team = []string{"a"}

	cp := p.Clone()
	cp.Characters[0].Level = 9
	cp.Characters[0].Moves[0] = "changed"
	cp.Team[0] = "b"

	assert.Equal(t, 1, p.Characters[0].Level)
	assert.Equal(t, "Thunderbolt Tempo", p.Characters[0].Moves[0])
	assert.Equal(t, "a", p.Team[0])
}

func TestTeamMembersSkipsDangling(t *testing.T) {
	p := NewPlayer("1", "Luffy", time.Now())
	p.Characters = []*CharacterInstance{{ID: "a", Name: "Nami"}, {ID: "b", Name: "Usopp"}}
	p.Team = []string{"b", "gone", "a"}

	members := p.TeamMembers()
	require.Len(t, members, 2)
	assert.Equal(t, "Usopp", members[0].Name)
	assert.Equal(t, "Nami", members[1].Name)
	assert.True(t, p.InTeam("a"))
	assert.False(t, p.InTeam("c"))
}

func TestSessionSides(t *testing.T) {
	b := &BattleSession{
		ID:   PvEID("7"),
		Kind: KindPvE,
		Sides: [2]*Side{
			{PlayerID: "7", Name: "Zoro", Roster: []*CharacterInstance{{Name: "Koby", HP: 10}}},
			{PlayerID: NPCID, Name: "Kuro", NPC: true, Roster: []*CharacterInstance{{Name: "Kuro", HP: 10}}},
		},
	}

	idx, ok := b.SideOf("7")
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	_, ok = b.SideOf(NPCID)
	assert.False(t, ok)
	assert.Equal(t, []string{"7"}, b.Participants())

	b.Sides[1].Active = 1
	assert.True(t, b.Sides[1].Defeated())
	assert.Nil(t, b.Sides[1].Current())
	assert.Equal(t, "explore_7", b.ID)
	assert.Equal(t, "1_2", PvPID("1", "2"))
}
