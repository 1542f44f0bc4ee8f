// Package app 管理服务器与资源的启动和关闭
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kochabx/hiding/log"
	"github.com/kochabx/hiding/transport"
)

var (
	ErrAlreadyStarted = errors.New("application already started")
	ErrClosePanic     = errors.New("close function panicked")
)

// Application 管理服务器和关闭函数的生命周期
type Application struct {
	ctx             context.Context
	cancel          context.CancelFunc
	shutdownTimeout time.Duration
	signals         []os.Signal
	servers         []transport.Server
	closeFuncs      []CloseFunc
	closeTimeout    time.Duration
	mu              sync.RWMutex
	started         bool
}

// CloseFunc 具有超时的关闭函数
type CloseFunc struct {
	Name    string
	Fn      func(context.Context) error
	Timeout time.Duration
}

type Option func(*Application)

// WithContext 设置应用的根上下文
func WithContext(ctx context.Context) Option {
	return func(app *Application) {
		if ctx != nil {
			app.ctx, app.cancel = context.WithCancel(ctx)
		}
	}
}

// WithShutdownTimeout 设置服务器关闭的超时时间
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(app *Application) {
		if timeout > 0 {
			app.shutdownTimeout = timeout
		}
	}
}

// WithCloseTimeout 设置关闭函数的默认超时时间
func WithCloseTimeout(timeout time.Duration) Option {
	return func(app *Application) {
		if timeout > 0 {
			app.closeTimeout = timeout
		}
	}
}

// WithSignals 设置触发关闭的信号
func WithSignals(signals ...os.Signal) Option {
	return func(app *Application) {
		if len(signals) > 0 {
			app.signals = slices.Clone(signals)
		}
	}
}

// WithServer 添加服务器
func WithServer(server transport.Server) Option {
	return WithServers(server)
}

// WithServers 添加多个服务器
func WithServers(servers ...transport.Server) Option {
	return func(app *Application) {
		for _, server := range servers {
			if server != nil {
				app.servers = append(app.servers, server)
			}
		}
	}
}

// WithClose 添加关闭函数，timeout 为 0 时使用默认超时
func WithClose(name string, fn func(context.Context) error, timeout time.Duration) Option {
	return func(app *Application) {
		if err := app.addClose(name, fn, timeout); err != nil {
			log.Warn().Str("name", name).Msg("nil close function ignored")
		}
	}
}

// New 使用给定选项创建应用
func New(options ...Option) *Application {
	app := &Application{
		shutdownTimeout: 30 * time.Second,
		closeTimeout:    30 * time.Second,
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT},
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	for _, opt := range options {
		opt(app)
	}

	return app
}

// AddServer 在启动前添加服务器
func (app *Application) AddServer(server transport.Server) error {
	if server == nil {
		return errors.New("server cannot be nil")
	}

	app.mu.Lock()
	defer app.mu.Unlock()

	if app.started {
		return ErrAlreadyStarted
	}
	app.servers = append(app.servers, server)
	return nil
}

// RegisterClose 添加关闭函数，可在运行期间调用
func (app *Application) RegisterClose(name string, fn func(context.Context) error, timeout time.Duration) error {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.addClose(name, fn, timeout)
}

func (app *Application) addClose(name string, fn func(context.Context) error, timeout time.Duration) error {
	if fn == nil {
		return errors.New("close function cannot be nil")
	}
	if timeout <= 0 {
		timeout = app.closeTimeout
	}
	app.closeFuncs = append(app.closeFuncs, CloseFunc{Name: name, Fn: fn, Timeout: timeout})
	return nil
}

// Start 启动所有服务器并阻塞，直到收到信号、调用 Stop 或某个服务器出错。
// 返回前按注册的逆序执行关闭函数
func (app *Application) Start() error {
	app.mu.Lock()
	if app.started {
		app.mu.Unlock()
		return ErrAlreadyStarted
	}
	app.started = true
	servers := slices.Clone(app.servers)
	signals := slices.Clone(app.signals)
	app.mu.Unlock()

	if len(servers) == 0 {
		log.Info().Msg("no servers configured, starting signal handler only")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, signals...)
	defer signal.Stop(sigCh)

	eg, egCtx := errgroup.WithContext(app.ctx)
	for _, server := range servers {
		eg.Go(func() error {
			return server.Run()
		})

		eg.Go(func() error {
			<-egCtx.Done()

			ctx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout)
			defer cancel()
			return server.Shutdown(ctx)
		})
	}

	eg.Go(func() error {
		select {
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
			app.cancel()
		case <-egCtx.Done():
		}
		return nil
	})

	err := eg.Wait()
	app.runCloseTasks()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Stop 触发优雅关闭
func (app *Application) Stop() {
	app.cancel()
}

// runCloseTasks 按注册的逆序依次执行，先注册的资源（如日志）最后关闭
func (app *Application) runCloseTasks() {
	app.mu.RLock()
	closeFuncs := slices.Clone(app.closeFuncs)
	app.mu.RUnlock()

	for _, close := range slices.Backward(closeFuncs) {
		_ = app.runCloseTask(close)
	}
}

// runCloseTask 执行单个带超时的关闭函数
func (app *Application) runCloseTask(close CloseFunc) error {
	ctx, cancel := context.WithTimeout(context.Background(), close.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Any("panic", r).Str("close", close.Name).Msg("close function panicked")
				done <- ErrClosePanic
			}
		}()
		done <- close.Fn(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Error().Err(err).Str("close", close.Name).Msg("close function failed")
		}
		return err
	case <-ctx.Done():
		log.Warn().Str("close", close.Name).Msg("close function timed out")
		return ctx.Err()
	}
}

// Info 返回应用状态信息
func (app *Application) Info() ApplicationInfo {
	app.mu.RLock()
	defer app.mu.RUnlock()

	return ApplicationInfo{
		Started:     app.started,
		ServerCount: len(app.servers),
		CloseCount:  len(app.closeFuncs),
	}
}

// ApplicationInfo 提供应用状态信息
type ApplicationInfo struct {
	Started     bool `json:"started"`
	ServerCount int  `json:"server_count"`
	CloseCount  int  `json:"close_count"`
}
