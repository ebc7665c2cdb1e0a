package di

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gocrud/ioc/logging"
	"github.com/stretchr/testify/require"
)

// 循环依赖的两个单例
type cycleA struct {
	Component
	C *cycleC `di:""`
}

type cycleC struct {
	Component
	A *cycleA `di:""`
}

type singleton struct {
	Component
}

type prototype struct {
	Component `scope:"prototype"`
	Single    *singleton `di:""`
}

// 原型自引用，无法打破
type selfProto struct {
	Component `scope:"prototype"`
	Next      *selfProto `di:""`
}

// 原型 -> 单例 -> 原型，单例的提前引用可以截断
type protoX struct {
	Component `scope:"prototype"`
	Y         *singleY `di:""`
}

type singleY struct {
	Component
	X *protoX `di:""`
}

type greeter interface {
	Greet() string
}

type englishGreeter struct {
	Component `di:"english"`
}

func (g *englishGreeter) Greet() string { return "hello" }

type welcome struct {
	Component
	Greeter greeter  `di:"english"`
	Missing *singleY `di:"absent,optional"`
	Maybe   *singleY `di:"?"`
}

type requiresMissing struct {
	Component
	Dep *singleton `di:"nowhere"`
}

type badScope struct {
	Component `scope:"session"`
}

// 未导出字段通过 Injectable 钩子装配
type hooked struct {
	Component
	single *singleton
}

func (h *hooked) InjectDependencies(r Resolver) error {
	v, err := r.Resolve("singleton")
	if err != nil {
		return err
	}
	h.single = v.(*singleton)
	return nil
}

type unexportedDep struct {
	Component
	single *singleton `di:""`
}

type exploding struct {
	Component
}

func (e *exploding) InjectDependencies(Resolver) error {
	panic("boom")
}

type dependsOnExploding struct {
	Component
	E *exploding `di:""`
}

// 钩子失败且处于单例循环中的 bean
var failAttempts atomic.Int32

type failA struct {
	Component
	B *failB `di:""`
}

func (a *failA) InjectDependencies(Resolver) error {
	failAttempts.Add(1)
	panic("boom")
}

type failB struct {
	Component
	A *failA `di:""`
}

type notAComponent struct {
	Name string
}

// testLogger 以 JSON 格式把日志写入内存
type testLogger struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *testLogger) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *testLogger) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func newTestLogger(t *testing.T) (logging.Logger, *testLogger) {
	t.Helper()
	out := &testLogger{}
	logger, err := logging.New("ioc", "trace", "json", out)
	require.NoError(t, err)
	return logger, out
}

// newTestContainer 用固定类型列表构建容器
func newTestContainer(t *testing.T, types ...any) (*Container, *testLogger) {
	t.Helper()
	logger, out := newTestLogger(t)
	c := New(ScanPaths{"test"}, WithLogger(logger), WithTypes(types...))
	return c, out
}

var errLoad = errors.New("load failed")
