package gameconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lk2023060901/grandline/pkg/logger"
)

// 覆盖文件名，每个文件是对应表的 JSON 数组
const (
	fileMoves      = "moves.json"
	fileCharacters = "characters.json"
	fileFruits     = "fruits.json"
	fileWeapons    = "weapons.json"
	fileBosses     = "bosses.json"
	fileNPCs       = "npcs.json"
	fileStarters   = "starters.json"
)

// Load 以 Default 为底，用 dataDir 中存在的 JSON 文件覆盖对应的表
// dataDir 为空时直接返回默认表
func Load(dataDir string, l logger.Logger) (*Tables, error) {
	t := Default()
	if dataDir == "" {
		return t, nil
	}
	log := logger.OrDefault(l)

	var moves []Move
	if ok, err := readTable(dataDir, fileMoves, &moves, log); err != nil {
		return nil, err
	} else if ok {
		for _, m := range moves {
			t.Moves[m.Name] = m
		}
	}

	var chars []Character
	if ok, err := readTable(dataDir, fileCharacters, &chars, log); err != nil {
		return nil, err
	} else if ok {
		for _, c := range chars {
			t.Characters[c.Name] = c
		}
	}

	var fruits []Fruit
	if ok, err := readTable(dataDir, fileFruits, &fruits, log); err != nil {
		return nil, err
	} else if ok {
		for _, f := range fruits {
			t.Fruits[f.Name] = f
		}
	}

	var weapons []Weapon
	if ok, err := readTable(dataDir, fileWeapons, &weapons, log); err != nil {
		return nil, err
	} else if ok {
		for _, w := range weapons {
			t.Weapons[w.Name] = w
		}
	}

	// 列表型的表整体替换
	var bosses []Boss
	if ok, err := readTable(dataDir, fileBosses, &bosses, log); err != nil {
		return nil, err
	} else if ok {
		t.Bosses = bosses
	}
	if _, err := readTable(dataDir, fileNPCs, &t.NPCs, log); err != nil {
		return nil, err
	}
	if _, err := readTable(dataDir, fileStarters, &t.Starters, log); err != nil {
		return nil, err
	}

	t.index()
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game tables in %s: %w", dataDir, err)
	}
	return t, nil
}

// readTable 读取单个覆盖文件；文件不存在返回 false
func readTable(dataDir, name string, out any, l logger.Logger) (bool, error) {
	path := filepath.Join(dataDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.Debug("optional table file not found, keeping defaults", "path", path)
			return false, nil
		}
		return false, fmt.Errorf("failed to read table file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal table file %s: %w", path, err)
	}
	return true, nil
}
