// Package errs 战斗服务的错误分类
//
// 每个哨兵错误属于以下四类之一，调用方用 IsXxx 判断分类，
// 用 errors.Is 判断具体错误，两者都能穿透 Wrap。
package errs

import (
	"github.com/cockroachdb/errors"
)

// ValidationError：请求不合法，未发生任何修改
var (
	ErrNotYourTurn       = errors.New("not your turn")
	ErrSessionNotFound   = errors.New("battle session not found")
	ErrUnknownMove       = errors.New("unknown move")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoTeam            = errors.New("team is empty")
	ErrLocked            = errors.New("account is locked")
	ErrInvalidTarget     = errors.New("invalid target")
	ErrEncounterPending  = errors.New("unfinished encounter pending")
	ErrNoEncounter       = errors.New("no pending encounter")
	ErrPlayerNotFound    = errors.New("player not registered")
	ErrNotParticipant    = errors.New("not a participant of this battle")
	ErrItemNotOwned      = errors.New("item not owned")
	ErrTeamFull          = errors.New("team is full")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrForbidden         = errors.New("admin only")
)

// StateError：当前状态不允许该操作，未发生任何修改
var (
	ErrUltimateUsed    = errors.New("ultimate already used")
	ErrTargetDefeated  = errors.New("target already defeated")
	ErrAlreadyInBattle = errors.New("already in another battle")
	ErrStarterChosen   = errors.New("starter already chosen")
)

// ErrStoreUnavailable TransientIOError：持久层暂不可用
var ErrStoreUnavailable = errors.New("player store unavailable")

// ErrExpired ExpiredStateError：定时器或投票对应的状态已变化
var ErrExpired = errors.New("state changed since scheduling")

var (
	validationErrs = []error{
		ErrNotYourTurn, ErrSessionNotFound, ErrUnknownMove, ErrInsufficientFunds, ErrNoTeam,
		ErrLocked, ErrInvalidTarget, ErrEncounterPending, ErrNoEncounter, ErrPlayerNotFound,
		ErrNotParticipant, ErrItemNotOwned, ErrTeamFull, ErrInvalidAmount, ErrForbidden,
	}
	stateErrs = []error{ErrUltimateUsed, ErrTargetDefeated, ErrAlreadyInBattle, ErrStarterChosen}
)

// Transient 把底层 IO 错误标记为 ErrStoreUnavailable，原始错误仍在链上
func Transient(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), ErrStoreUnavailable)
}

// IsValidation 是否 ValidationError
func IsValidation(err error) bool { return errors.IsAny(err, validationErrs...) }

// IsState 是否 StateError
func IsState(err error) bool { return errors.IsAny(err, stateErrs...) }

// IsTransient 是否 TransientIOError
func IsTransient(err error) bool { return errors.Is(err, ErrStoreUnavailable) }

// IsExpired 是否 ExpiredStateError
func IsExpired(err error) bool { return errors.Is(err, ErrExpired) }

// Class 错误分类名，用于指标标签和日志
func Class(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsValidation(err):
		return "validation"
	case IsState(err):
		return "state"
	case IsTransient(err):
		return "transient"
	case IsExpired(err):
		return "expired"
	default:
		return "internal"
	}
}
