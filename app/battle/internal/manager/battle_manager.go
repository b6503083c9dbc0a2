package manager

import (
	"sync"

	"github.com/lk2023060901/grandline/app/battle/internal/errs"
	"github.com/lk2023060901/grandline/app/battle/internal/model"
	"github.com/lk2023060901/grandline/pkg/logger"
)

type sessionEntry struct {
	mu      sync.Mutex
	session *model.BattleSession
	removed bool
}

// BattleManager 进行中的战斗注册表，每个参与者同时只能在一场战斗中
// 锁顺序：先 entry 再全局锁
type BattleManager struct {
	logger logger.Logger

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	byPlayer map[string]string
}

// NewBattleManager 创建战斗管理器
func NewBattleManager(l logger.Logger) *BattleManager {
	return &BattleManager{
		logger:   logger.OrDefault(l).Named("manager.battle"),
		sessions: make(map[string]*sessionEntry),
		byPlayer: make(map[string]string),
	}
}

// Create 注册新战斗，任一参与者已在战斗中时返回 ErrAlreadyInBattle
func (m *BattleManager) Create(s *model.BattleSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; ok {
		return errs.ErrAlreadyInBattle
	}
	participants := s.Participants()
	for _, id := range participants {
		if _, busy := m.byPlayer[id]; busy {
			return errs.ErrAlreadyInBattle
		}
	}

	m.sessions[s.ID] = &sessionEntry{session: s}
	for _, id := range participants {
		m.byPlayer[id] = s.ID
	}
	m.logger.Debug("battle session registered",
		"session_id", s.ID,
		"kind", s.Kind,
	)
	return nil
}

// Do 持有该战斗的锁执行 fn；fn 返回 done=true 时战斗被移除
// 战斗不存在（或已移除）时返回 ErrSessionNotFound
func (m *BattleManager) Do(sessionID string, fn func(*model.BattleSession) (done bool, err error)) error {
	m.mu.RLock()
	e, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return errs.ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return errs.ErrSessionNotFound
	}

	done, err := fn(e.session)
	if done {
		m.remove(e)
	}
	return err
}

// Remove 立即移除战斗
func (m *BattleManager) Remove(sessionID string) bool {
	m.mu.RLock()
	e, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return false
	}
	m.remove(e)
	return true
}

// remove 调用方持有 e.mu
func (m *BattleManager) remove(e *sessionEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.removed = true
	delete(m.sessions, e.session.ID)
	for _, id := range e.session.Participants() {
		if m.byPlayer[id] == e.session.ID {
			delete(m.byPlayer, id)
		}
	}
	m.logger.Debug("battle session removed", "session_id", e.session.ID)
}

// SessionFor 玩家所在的战斗
func (m *BattleManager) SessionFor(playerID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byPlayer[playerID]
	return id, ok
}

// Busy 玩家是否在战斗中
func (m *BattleManager) Busy(playerID string) bool {
	_, ok := m.SessionFor(playerID)
	return ok
}

// Len 进行中的战斗数
func (m *BattleManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}
