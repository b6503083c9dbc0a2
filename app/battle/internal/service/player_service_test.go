package service

import (
	"testing"

	"github.com/lk2023060901/grandline/app/battle/internal/errs"
	"github.com/lk2023060901/grandline/app/battle/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	e := newEnv(t)

	p, err := e.player.Register(e.ctx, "p1", "Luffy")
	require.NoError(t, err)
	assert.Equal(t, "Luffy", p.Name)
	assert.Equal(t, model.StarterBerries, p.Berries)

	require.NoError(t, e.players.Lock(e.ctx, "p1"))
	locked, err := e.player.Register(e.ctx, "p1", "Luffy")
	assert.ErrorIs(t, err, errs.ErrLocked)
	assert.Nil(t, locked)

	require.NoError(t, e.players.Unlock(e.ctx, "p1"))
	p, err = e.player.Register(e.ctx, "p1", "Luffy")
	require.NoError(t, err)
	assert.False(t, p.IsLocked)
}

func TestChooseStarterOnce(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "p1", nil)

	_, err := e.player.ChooseStarter(e.ctx, "p1", "Yamato")
	require.ErrorIs(t, err, errs.ErrInvalidTarget)

	c, err := e.player.ChooseStarter(e.ctx, "p1", "Nami")
	require.NoError(t, err)
	assert.Equal(t, "Nami", c.Name)
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 600, c.HP)

	_, err = e.player.ChooseStarter(e.ctx, "p1", "Usopp")
	require.ErrorIs(t, err, errs.ErrStarterChosen)

	p := e.record(t, "p1")
	assert.True(t, p.StarterSummoned)
	require.Len(t, p.Characters, 1)
	assert.Equal(t, c.ID, p.Characters[0].ID)
	assert.Empty(t, p.Team)
}

func TestToggleTeam(t *testing.T) {
	e := newEnv(t)
	ids := e.seed(t, "p1", func(p *model.PlayerRecord) { p.Team = nil }, "Koby", "Nami", "Usopp", "Chopper")

	for i := 0; i < model.MaxTeamSize; i++ {
		team, err := e.player.ToggleTeam(e.ctx, "p1", ids[i])
		require.NoError(t, err)
		assert.Len(t, team, i+1)
	}

	_, err := e.player.ToggleTeam(e.ctx, "p1", ids[3])
	require.ErrorIs(t, err, errs.ErrTeamFull)

	team, err := e.player.ToggleTeam(e.ctx, "p1", ids[1])
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0], ids[2]}, team)

	_, err = e.player.ToggleTeam(e.ctx, "p1", "missing")
	assert.ErrorIs(t, err, errs.ErrItemNotOwned)
	assert.Equal(t, []string{ids[0], ids[2]}, e.record(t, "p1").Team)
}

func TestEquipFruitConsumesInventory(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "p1", func(p *model.PlayerRecord) {
		p.Fruits = []string{"Munch Munch Fruit", "Sand Sand Fruit"}
	}, "Koby")

	name, err := e.player.EquipFruit(e.ctx, "p1", "munch munch fruit")
	require.NoError(t, err)
	assert.Equal(t, "Munch Munch Fruit", name)

	p := e.record(t, "p1")
	assert.Equal(t, "Munch Munch Fruit", p.EquippedFruit)
	assert.Equal(t, []string{"Sand Sand Fruit"}, p.Fruits)

	_, err = e.player.EquipFruit(e.ctx, "p1", "Munch Munch Fruit")
	assert.ErrorIs(t, err, errs.ErrItemNotOwned)

	// 果实加成作用于战斗快照
	view, err := e.battle.CreatePvE(e.ctx, "p1", "Kuro")
	require.NoError(t, err)
	assert.Equal(t, 550+35, view.Sides[0].MaxHP)
}

func TestAttachWeapon(t *testing.T) {
	e := newEnv(t)
	ids := e.seed(t, "p1", func(p *model.PlayerRecord) { p.Weapons = []string{"Shark Saw"} }, "Nami")

	require.ErrorIs(t, e.player.AttachWeapon(e.ctx, "p1", "Shark Saw", "missing"), errs.ErrItemNotOwned)
	require.NoError(t, e.player.AttachWeapon(e.ctx, "p1", "shark saw", ids[0]))

	p := e.record(t, "p1")
	assert.Empty(t, p.Weapons)
	assert.Equal(t, "Shark Saw", p.Characters[0].EquippedWeapon)

	view, err := e.battle.CreatePvE(e.ctx, "p1", "Kuro")
	require.NoError(t, err)
	require.Len(t, view.Moves, 3)
	assert.Equal(t, "Shark resonance", view.Moves[1].Name)
}

func TestUseLevelToken(t *testing.T) {
	e := newEnv(t)
	ids := e.seed(t, "p1", nil, "Koby")

	_, err := e.player.UseLevelToken(e.ctx, "p1", ids[0])
	require.ErrorIs(t, err, errs.ErrInsufficientFunds)

	_, err = e.players.Update(e.ctx, "p1", func(p *model.PlayerRecord) error {
		p.Tokens = 1
		return nil
	})
	require.NoError(t, err)

	level, err := e.player.UseLevelToken(e.ctx, "p1", ids[0])
	require.NoError(t, err)
	assert.Equal(t, 2, level)
	assert.Equal(t, 0, e.record(t, "p1").Tokens)
}

func TestTransfers(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "p1", func(p *model.PlayerRecord) { p.Clovers = 20 })

	tests := []struct {
		name   string
		to     string
		amount int64
		want   error
	}{
		{"zero", "p2", 0, errs.ErrInvalidAmount},
		{"negative", "p2", -5, errs.ErrInvalidAmount},
		{"self", "p1", 10, errs.ErrInvalidTarget},
		{"too much", "p2", model.StarterBerries + 1, errs.ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.player.SendBerries(e.ctx, "p1", tt.to, "Zoro", tt.amount)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, model.StarterBerries, e.record(t, "p1").Berries)

	require.NoError(t, e.player.SendBerries(e.ctx, "p1", "p2", "Zoro", 2500))
	require.NoError(t, e.player.SendClovers(e.ctx, "p1", "p2", "Zoro", 20))

	from, to := e.record(t, "p1"), e.record(t, "p2")
	assert.Equal(t, model.StarterBerries-2500, from.Berries)
	assert.EqualValues(t, 0, from.Clovers)
	assert.Equal(t, "Zoro", to.Name, "receiver is created on demand")
	assert.Equal(t, model.StarterBerries+2500, to.Berries)
	assert.EqualValues(t, 20, to.Clovers)

	err := e.player.SendClovers(e.ctx, "p1", "p2", "Zoro", 1)
	assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
}

func TestUnstuck(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "p1", func(p *model.PlayerRecord) {
		p.VerificationActive = true
		p.LastInteraction = 1700000000
	}, "Koby")

	e.encounters.Put("p1", model.Encounter{Name: "Kuro", At: e.encounters.Now()})
	_, err := e.battle.CreatePvE(e.ctx, "p1", "Kuro")
	require.NoError(t, err)

	require.NoError(t, e.player.Unstuck(e.ctx, "p1"))

	_, inBattle := e.battle.SessionFor("p1")
	assert.False(t, inBattle)
	_, pending := e.encounters.Pending("p1")
	assert.False(t, pending)
	p := e.record(t, "p1")
	assert.False(t, p.VerificationActive)
	assert.Zero(t, p.LastInteraction)
	assert.EqualValues(t, 0, e.metrics.GetStats().ActiveSessions)

	require.NoError(t, e.players.Lock(e.ctx, "p1"))
	assert.ErrorIs(t, e.player.Unstuck(e.ctx, "p1"), errs.ErrLocked)
}

func TestAdminOperations(t *testing.T) {
	e := newEnv(t, withAdmins("admin"))
	e.seed(t, "p1", nil)
	e.seed(t, "admin", nil)

	assert.ErrorIs(t, e.player.Lock(e.ctx, "p1", "admin"), errs.ErrForbidden)
	_, _, err := e.player.UnlockAll(e.ctx, "p1")
	assert.ErrorIs(t, err, errs.ErrForbidden)

	require.NoError(t, e.player.Lock(e.ctx, "admin", "p1"))
	assert.True(t, e.record(t, "p1").IsLocked)
	_, err = e.player.ToggleTeam(e.ctx, "p1", "x")
	assert.ErrorIs(t, err, errs.ErrLocked)

	require.NoError(t, e.player.Unlock(e.ctx, "admin", "p1"))
	assert.False(t, e.record(t, "p1").IsLocked)

	require.NoError(t, e.player.Lock(e.ctx, "admin", "p1"))
	stored, cached, err := e.player.UnlockAll(e.ctx, "admin")
	require.NoError(t, err)
	assert.EqualValues(t, 1, stored)
	assert.EqualValues(t, 1, cached)
	assert.False(t, e.record(t, "p1").IsLocked)
}
