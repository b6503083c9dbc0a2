package app

import (
	"github.com/google/wire"
)

// Components 由 wire 收集的组件
type Components struct {
	Servers []Server
	Closers []Closer
}

var ProviderSet = wire.NewSet(
	NewBaseApp,
	InitApp,
)

// InitApp 把组件挂到 BaseApp 上
func InitApp(app *BaseApp, comps Components) Application {
	app.AppendServer(comps.Servers...)
	app.AppendCloser(comps.Closers...)
	return app
}

// CloserFunc 函数适配 Closer
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }

// ServerFuncs 用一对函数构造 Server
type ServerFuncs struct {
	StartFn func() error
	StopFn  func() error
}

func (s ServerFuncs) Start() error {
	if s.StartFn == nil {
		return nil
	}
	return s.StartFn()
}

func (s ServerFuncs) Stop() error {
	if s.StopFn == nil {
		return nil
	}
	return s.StopFn()
}
