package manager

import (
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/lk2023060901/grandline/app/battle/internal/model"
)

const fieldSchemaVersion = "schema_version"

// MigrateFunc 在原始文档上补齐字段，只能添加缺失的键
type MigrateFunc func(doc map[string]any, now time.Time)

type migration struct {
	version *version.Version
	apply   MigrateFunc
}

// Migrator 按版本号顺序把旧文档升级到最新 schema
type Migrator struct {
	steps []migration
}

// NewMigrator 创建带有内置迁移的 Migrator
func NewMigrator() *Migrator {
	m := &Migrator{}
	m.mustRegister("1.1.0", backfillFlags)
	m.mustRegister("1.2.0", backfillDefaults)
	return m
}

// Register 注册一个迁移步骤
func (m *Migrator) Register(v string, fn MigrateFunc) error {
	ver, err := version.NewVersion(v)
	if err != nil {
		return fmt.Errorf("invalid migration version %q: %w", v, err)
	}
	for _, s := range m.steps {
		if s.version.Equal(ver) {
			return fmt.Errorf("migration %s already registered", v)
		}
	}
	m.steps = append(m.steps, migration{version: ver, apply: fn})
	sort.Slice(m.steps, func(i, j int) bool {
		return m.steps[i].version.LessThan(m.steps[j].version)
	})
	return nil
}

func (m *Migrator) mustRegister(v string, fn MigrateFunc) {
	if err := m.Register(v, fn); err != nil {
		panic(err)
	}
}

// Latest 最新的 schema 版本
func (m *Migrator) Latest() string {
	if len(m.steps) == 0 {
		return "0.0.0"
	}
	return m.steps[len(m.steps)-1].version.Original()
}

// Migrate 应用所有比文档版本新的迁移，返回文档是否被修改
// 缺少或无法解析 schema_version 的文档视为最旧版本
func (m *Migrator) Migrate(doc map[string]any, now time.Time) bool {
	current, _ := version.NewVersion("0.0.0")
	if raw, ok := doc[fieldSchemaVersion].(string); ok {
		if v, err := version.NewVersion(raw); err == nil {
			current = v
		}
	}

	changed := false
	for _, s := range m.steps {
		if s.version.GreaterThan(current) {
			s.apply(doc, now)
			changed = true
		}
	}
	if changed {
		doc[fieldSchemaVersion] = m.Latest()
	}
	return changed
}

func setDefault(doc map[string]any, key string, value any) {
	if _, ok := doc[key]; !ok {
		doc[key] = value
	}
}

// backfillFlags 1.1.0 引入锁定与验证标记
func backfillFlags(doc map[string]any, _ time.Time) {
	setDefault(doc, "is_locked", false)
	setDefault(doc, "verification_active", false)
}

// backfillDefaults 1.2.0 其余字段
func backfillDefaults(doc map[string]any, now time.Time) {
	setDefault(doc, "name", model.DefaultName)
	for _, k := range []string{"berries", "clovers", "bounty", "exp", "tokens",
		"wins", "losses", "explore_wins", "kill_count", "explore_count", "referrals", "last_interaction"} {
		setDefault(doc, k, 0)
	}
	setDefault(doc, "level", 1)
	for _, k := range []string{"characters", "team", "fruits", "weapons"} {
		setDefault(doc, k, []any{})
	}
	setDefault(doc, "equipped_fruit", nil)
	setDefault(doc, "starter_summoned", false)
	setDefault(doc, "start_date", now.Format(model.DateLayout))
	setDefault(doc, "referred_by", nil)
}
