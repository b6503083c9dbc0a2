package gameconfig

// Default 编译进二进制的默认内容表
func Default() *Tables {
	t := &Tables{
		Moves:      defaultMoves(),
		Characters: defaultCharacters(),
		Fruits:     defaultFruits(),
		Weapons:    defaultWeapons(),
		Bosses:     defaultBosses(),
		NPCs: []string{
			"King", "Rob Lucci", "Black Maria", "Arlong NPC", "Douglas Bullet", "Don krieg", "Kuro",
			"Kalifa", "Ulti", "Monet", "Doflamingo", "Smoker", "Enel", "Crocodile", "Perona", "Brook",
			"Portgas D Ace", "Killer", "Nico Robin", "Sabo", "Trafalgar Law", "Katakuri", "Franky",
			"Jinbe", "Akainu", "Boa Hancock",
		},
		Starters: []string{"Usopp", "Nami", "Helmeppo"},
	}
	t.index()
	return t
}

func defaultMoves() map[string]Move {
	moves := []Move{
		{Name: "Kanabo smash", Damage: 50},
		{Name: "Slip Slip punch", Damage: 55},
		{Name: "Sube sube no mi", Damage: 60, Effect: EffectDefBuff10},
		{Name: "Heavy gong", Damage: 45},
		{Name: "Kung fu point", Damage: 45},
		{Name: "Kokutei Roseo Metal", Damage: 70, Effect: EffectTeamHeal50},
		{Name: "Shark teeth", Damage: 65},
		{Name: "Shark on dart", Damage: 70},
		{Name: "Kiribachi", Damage: 85, Effect: "atk_buff_15_2"},
		{Name: "Kamisoro", Damage: 40},
		{Name: "Tempest Kick", Damage: 50},
		{Name: "Honesty impact", Damage: 70, Effect: EffectDodge30},
		{Name: "Skull Bomb grass", Damage: 40},
		{Name: "Impact wolf", Damage: 45},
		{Name: "Usopp hammer", Damage: 75, Effect: "usopp_ult"},
		{Name: "Chop Chop canon", Damage: 60},
		{Name: "Chop Chop buzzsaw", Damage: 65},
		{Name: "Bara Bara festival", Damage: 80, Effect: "team_atk_5"},
		{Name: "Sword swing", Damage: 50},
		{Name: "Dual Kukri", Damage: 55},
		{Name: "Firey morale", Damage: 70, Effect: "helmeppo_ult"},
		{Name: "Thunderbolt Tempo", Damage: 50},
		{Name: "Swing Arm", Damage: 40},
		{Name: "Zeus breeze tempo", Damage: 70, Effect: EffectStun1},
		{Name: "Namuji Hyoga", Damage: 80},
		{Name: "Namuji glacier fang", Damage: 75},
		{Name: "Thunder Bagua", Damage: 130, Effect: "yamato_ult"},
		{Name: "Riperu", Damage: 70},
		{Name: "Punk Gibson", Damage: 80},
		{Name: "Damned Punk", Damage: 145, Effect: "kid_ult"},
		{Name: "Strike", Damage: 30},
		{Name: "Bash", Damage: 35},
		{Name: "Special Beam", Damage: 45},
		{Name: "Quick Slash", Damage: 35},
		{Name: "Heavy Blow", Damage: 40},
		{Name: "Dual slash", Damage: 45},
		{Name: "Triple Tornado", Damage: 55},
		{Name: "Shark resonance", Damage: 60},
		{Name: "Green slash", Damage: 75},
		{Name: "Magma Force", Damage: 100},
		{Name: "Azure Counter", Damage: 125},
		{Name: "Forest god slash", Damage: 160},
	}
	m := make(map[string]Move, len(moves))
	for _, mv := range moves {
		m[mv.Name] = mv
	}
	return m
}

func defaultCharacters() map[string]Character {
	chars := []Character{
		{
			Name: "Alvida", Rarity: "Common", Class: "Tank", HP: 600, AtkMin: 22, AtkMax: 22, Def: 30, Spe: 30,
			Moves: []string{"Kanabo smash"}, Ult: "Sube sube no mi",
			UltDesc: "Increases defense by 10%.",
		},
		{
			Name: "Chopper", Rarity: "Rare", Class: "Healer", HP: 700, AtkMin: 30, AtkMax: 35, Def: 40, Spe: 25,
			Moves: []string{"Heavy gong"}, Ult: "Kokutei Roseo Metal",
			UltDesc: "Deals 70 damage and heals every teammate and himself by 50 HP.",
		},
		{
			Name: "Arlong", Rarity: "Rare", Class: "Damage dealer", HP: 660, AtkMin: 40, AtkMax: 45, Def: 30, Spe: 35,
			Moves: []string{"Shark teeth"}, Ult: "Kiribachi",
			UltDesc: "Deals 85 damage. Increases his attack by 15% for 2 moves.",
		},
		{
			Name: "Koby", Rarity: "Common", Class: "Assassin", HP: 550, AtkMin: 25, AtkMax: 25, Def: 20, Spe: 35,
			Moves: []string{"Kamisoro"}, Ult: "Honesty impact",
			UltDesc: "Deals 70 damage and increases his chance to dodge next move by 30%.",
		},
		{
			Name: "Usopp", Rarity: "Rare", Class: "Healer", HP: 650, AtkMin: 35, AtkMax: 40, Def: 40, Spe: 30,
			Moves: []string{"Skull Bomb grass"}, Ult: "Usopp hammer",
			UltDesc: "Deals 75 damage and reduces enemy defense by 5%. Heals himself by 25 HP for 2 moves.",
		},
		{
			Name: "Buggy", Rarity: "Rare", Class: "Damage dealer", HP: 620, AtkMin: 40, AtkMax: 45, Def: 25, Spe: 35,
			Moves: []string{"Chop Chop canon"}, Ult: "Bara Bara festival",
			UltDesc: "Deals 80 damage and increases all teammates attack by 5%.",
		},
		{
			Name: "Helmeppo", Rarity: "Rare", Class: "Assassin", HP: 680, AtkMin: 35, AtkMax: 35, Def: 30, Spe: 45,
			Moves: []string{"Sword swing"}, Ult: "Firey morale",
			UltDesc: "Deals 70 damage and increases his chance to dodge next move by 50%. Increases teammates speed by 10%.",
		},
		{
			Name: "Nami", Rarity: "Rare", Class: "Support", HP: 600, AtkMin: 25, AtkMax: 30, Def: 35, Spe: 25,
			Moves: []string{"Thunderbolt Tempo"}, Ult: "Zeus breeze tempo",
			UltDesc: "Deals 70 damage and stuns the enemy for 1 round.",
		},
		{
			Name: "Yamato", Rarity: "Legendary", Class: "Assassin", HP: 900, AtkMin: 50, AtkMax: 60, Def: 60, Spe: 50,
			Moves: []string{"Namuji Hyoga"}, Ult: "Thunder Bagua",
			UltDesc: "Deals 130 damage. Increases her chance of dodge by 50%. For 2 rounds attack +10% and defense +15%.",
			UltCue:  "THUNDER BAGUA!",
		},
		{
			Name: "Eustass Kid", Rarity: "Legendary", Class: "Damage dealer", HP: 850, AtkMin: 60, AtkMax: 70, Def: 65, Spe: 40,
			Moves: []string{"Riperu"}, Ult: "Damned Punk",
			UltDesc: "Deals 145 damage. For 2 rounds attack +25% and speed +10%.",
			UltCue:  "DAMNED PUNK!",
		},
	}
	m := make(map[string]Character, len(chars))
	for _, c := range chars {
		m[c.Name] = c
	}
	return m
}

func defaultFruits() map[string]Fruit {
	fruits := []Fruit{
		{Name: "Sand Sand Fruit", AtkBuff: 20, DefBuff: 35, Cost: 15000, Level: 7},
		{Name: "Shadow Shadow Fruit", AtkBuff: 31, DefBuff: 17, Cost: 15000, Level: 4},
		{Name: "Barrier Barrier Fruit", AtkBuff: 7, DefBuff: 30, Cost: 10000, Level: 1},
		{Name: "Munch Munch Fruit", AtkBuff: 17, HPBuff: 35, Cost: 10000, Level: 1},
		{Name: "Gum Gum Fruit", AtkBuff: 27, DefBuff: 15, Cost: 10000, Level: 1},
	}
	m := make(map[string]Fruit, len(fruits))
	for _, f := range fruits {
		m[f.Name] = f
	}
	return m
}

func defaultWeapons() map[string]Weapon {
	weapons := []Weapon{
		{Name: "Dual Katana", Rarity: "1", AtkVal: 45, Spec: "Dual slash", Level: 1, Cost: 10000},
		{Name: "Triple Katana", Rarity: "1", AtkVal: 55, Spec: "Triple Tornado", Level: 1, Cost: 20000},
		{Name: "Shark Saw", Rarity: "1", AtkVal: 60, Spec: "Shark resonance", Level: 1, Cost: 25000},
		{Name: "Green Blade", Rarity: "1", AtkVal: 75, Spec: "Green slash", Level: 5, Cost: 45000},
		{Name: "Magma Dagger", Rarity: "1", AtkVal: 100, Spec: "Magma Force", Level: 15, Cost: 65000},
		{Name: "Azure Needle", Rarity: "2", AtkVal: 125, Spec: "Azure Counter", Level: 30, Cost: 70000},
		{Name: "Forest Blade", Rarity: "2", AtkVal: 160, Spec: "Forest god slash", Level: 30, Cost: 85000},
	}
	m := make(map[string]Weapon, len(weapons))
	for _, w := range weapons {
		m[w.Name] = w
	}
	return m
}

func defaultBosses() []Boss {
	return []Boss{
		{Wins: 15, Name: "Arlong", Mission: 1},
		{Wins: 30, Name: "Piccolo", Mission: 2},
		{Wins: 50, Name: "Rui", Mission: 3},
		{Wins: 100, Name: "Crocodile", Mission: 4},
		{Wins: 150, Name: "Itachi Uchiha", Mission: 5},
		{Wins: 175, Name: "Feitan Portan", Mission: 6},
		{Wins: 200, Name: "Cell", Mission: 7},
		{Wins: 250, Name: "Stark", Mission: 8},
		{Wins: 300, Name: "Broly", Mission: 9},
		{Wins: 350, Name: "Frieza", Mission: 10},
		{Wins: 375, Name: "Daki", Mission: 11},
		{Wins: 400, Name: "Gyutaro", Mission: 12},
		{Wins: 450, Name: "Dabi", Mission: 13},
		{Wins: 475, Name: "Blackbeard", Mission: 14},
		{Wins: 500, Name: "Kakashi Hatake", Mission: 15},
		{Wins: 550, Name: "Geto", Mission: 16},
		{Wins: 600, Name: "Frieren", Mission: 17},
		{Wins: 650, Name: "Black Goku", Mission: 18},
		{Wins: 700, Name: "Mahito", Mission: 19},
		{Wins: 750, Name: "Yuji Itadori", Mission: 20},
	}
}
