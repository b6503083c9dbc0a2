package gameconfig

import (
	"fmt"
	"sort"
	"strings"
)

// 招式附加效果
const (
	EffectDefBuff10  = "def_buff_10"
	EffectTeamHeal50 = "team_heal_50"
	EffectDodge30    = "dodge_30"
	EffectStun1      = "stun_1"
)

// FallbackCharacter 未知角色沿用的基础数值
const FallbackCharacter = "Usopp"

// Move 招式
type Move struct {
	Name   string `json:"name"`
	Damage int    `json:"dmg"`
	Effect string `json:"effect,omitempty"`
}

// Character 角色基础定义
type Character struct {
	Name    string   `json:"name"`
	Rarity  string   `json:"rarity"`
	Class   string   `json:"class"`
	HP      int      `json:"hp"`
	AtkMin  int      `json:"atk_min"`
	AtkMax  int      `json:"atk_max"`
	Def     int      `json:"def"`
	Spe     int      `json:"spe"`
	Moves   []string `json:"moves"`
	Ult     string   `json:"ult"`
	UltDesc string   `json:"ult_desc,omitempty"`
	UltCue  string   `json:"ult_cue,omitempty"`
}

// Fruit 恶魔果实，装备后对整队生效
type Fruit struct {
	Name    string `json:"name"`
	AtkBuff int    `json:"atk_buff"`
	DefBuff int    `json:"def_buff"`
	HPBuff  int    `json:"hp_buff"`
	Cost    int64  `json:"cost"`
	Level   int    `json:"lvl"`
}

// Weapon 武器，装备后追加一个特殊招式
type Weapon struct {
	Name   string `json:"name"`
	Rarity string `json:"rarity"`
	AtkVal int    `json:"atk_val"`
	Spec   string `json:"spec"`
	Level  int    `json:"lvl"`
	Cost   int64  `json:"cost"`
}

// Boss 任务首领，探索胜场达到 Wins 时出现
type Boss struct {
	Wins    int    `json:"wins"`
	Name    string `json:"name"`
	Mission int    `json:"mission_num"`
}

// Tables 只读的静态内容表
type Tables struct {
	Moves      map[string]Move
	Characters map[string]Character
	Fruits     map[string]Fruit
	Weapons    map[string]Weapon
	Bosses     []Boss
	NPCs       []string
	Starters   []string

	bossByWins map[int]Boss
}

// Move 查找招式
func (t *Tables) Move(name string) (Move, bool) {
	m, ok := t.Moves[name]
	return m, ok
}

// Character 查找角色定义
func (t *Tables) Character(name string) (Character, bool) {
	c, ok := t.Characters[name]
	return c, ok
}

// Stats 未知角色使用 FallbackCharacter 的数值
func (t *Tables) Stats(name string) Character {
	if c, ok := t.Characters[name]; ok {
		return c
	}
	return t.Characters[FallbackCharacter]
}

// Kit 角色的招式列表和大招；未知角色使用通用招式
func (t *Tables) Kit(name string) (moves []string, ult string) {
	if c, ok := t.Characters[name]; ok {
		return append([]string(nil), c.Moves...), c.Ult
	}
	return []string{"Strike", "Bash"}, "Special Beam"
}

// Fruit 查找果实，名字不区分大小写
func (t *Tables) Fruit(name string) (Fruit, bool) {
	if f, ok := t.Fruits[name]; ok {
		return f, true
	}
	for k, f := range t.Fruits {
		if strings.EqualFold(k, name) {
			return f, true
		}
	}
	return Fruit{}, false
}

// Weapon 查找武器
func (t *Tables) Weapon(name string) (Weapon, bool) {
	w, ok := t.Weapons[name]
	return w, ok
}

// BossAt 当前胜场对应的任务首领
func (t *Tables) BossAt(wins int) (Boss, bool) {
	b, ok := t.bossByWins[wins]
	return b, ok
}

// IsMilestone 胜场是否恰好是任务节点
func (t *Tables) IsMilestone(wins int) bool {
	_, ok := t.bossByWins[wins]
	return ok
}

// NextBoss 严格大于 wins 的下一个任务首领
func (t *Tables) NextBoss(wins int) (Boss, bool) {
	for _, b := range t.Bosses {
		if b.Wins > wins {
			return b, true
		}
	}
	return Boss{}, false
}

// index 排序首领并建立索引
func (t *Tables) index() {
	sort.Slice(t.Bosses, func(i, j int) bool { return t.Bosses[i].Wins < t.Bosses[j].Wins })
	t.bossByWins = make(map[int]Boss, len(t.Bosses))
	for _, b := range t.Bosses {
		t.bossByWins[b.Wins] = b
	}
}

// Validate 检查表之间的引用
func (t *Tables) Validate() error {
	if _, ok := t.Characters[FallbackCharacter]; !ok {
		return fmt.Errorf("fallback character %q missing", FallbackCharacter)
	}
	for _, name := range []string{"Strike", "Bash", "Special Beam"} {
		if _, ok := t.Moves[name]; !ok {
			return fmt.Errorf("generic move %q missing", name)
		}
	}
	for name, c := range t.Characters {
		if len(c.Moves) == 0 {
			return fmt.Errorf("character %q has no moves", name)
		}
		refs := append([]string{c.Ult}, c.Moves...)
		for _, m := range refs {
			if _, ok := t.Moves[m]; !ok {
				return fmt.Errorf("character %q references unknown move %q", name, m)
			}
		}
		if c.AtkMin > c.AtkMax {
			return fmt.Errorf("character %q has atk_min > atk_max", name)
		}
	}
	for name, w := range t.Weapons {
		if _, ok := t.Moves[w.Spec]; !ok {
			return fmt.Errorf("weapon %q references unknown move %q", name, w.Spec)
		}
	}
	for _, s := range t.Starters {
		if _, ok := t.Characters[s]; !ok {
			return fmt.Errorf("starter %q is not a character", s)
		}
	}
	if len(t.NPCs) == 0 {
		return fmt.Errorf("npc list is empty")
	}
	return nil
}

// IsStarter 是否可选初始角色
func (t *Tables) IsStarter(name string) bool {
	for _, s := range t.Starters {
		if s == name {
			return true
		}
	}
	return false
}
