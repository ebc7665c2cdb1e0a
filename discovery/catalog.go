// Package discovery 提供容器的组件发现实现。
//
// Go 无法在运行时按名称加载类型，组件包通过 init 把类型登记到 Catalog，
// Catalog 再按包路径回答扫描请求。
package discovery

import (
	"cmp"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/gocrud/ioc/di"
)

// recursiveSuffix 扫描路径以此结尾时包含所有子包，与 go 命令的写法一致。
const recursiveSuffix = "/..."

// Catalog 按包路径索引的组件类型表。
type Catalog struct {
	mu    sync.RWMutex
	types map[string]map[string]reflect.Type // 包路径 -> 类型名 -> 类型
}

// NewCatalog 创建一个空 Catalog。
func NewCatalog() *Catalog {
	return &Catalog{types: make(map[string]map[string]reflect.Type)}
}

// Default 进程级 Catalog，组件包在 init 中通过 Register 登记。
var Default = NewCatalog()

// Register 向 Default 登记类型。
//
//	func init() {
//		discovery.Register(TestServiceA{}, TestServiceB{}, TestServiceC{})
//	}
func Register(values ...any) {
	Default.Add(values...)
}

// Add 登记类型，参数可以是值、指针或 reflect.Type。
// 匿名类型没有包路径，无法被扫描到，直接 panic。
func (c *Catalog) Add(values ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, v := range values {
		t, ok := v.(reflect.Type)
		if !ok {
			t = reflect.TypeOf(v)
		}
		if t == nil {
			panic("discovery: Add 不接受 nil")
		}
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Name() == "" || t.PkgPath() == "" {
			panic(fmt.Sprintf("discovery: 类型 %v 没有名称或包路径", t))
		}

		pkg := c.types[t.PkgPath()]
		if pkg == nil {
			pkg = make(map[string]reflect.Type)
			c.types[t.PkgPath()] = pkg
		}
		pkg[t.Name()] = t
	}
}

// Lookup 按包路径和类型名查找。
func (c *Catalog) Lookup(pkgPath, name string) (reflect.Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.types[pkgPath][name]
	return t, ok
}

// Packages 返回已登记的包路径，已排序。
func (c *Catalog) Packages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pkgs := make([]string, 0, len(c.types))
	for p := range c.types {
		pkgs = append(pkgs, p)
	}
	slices.Sort(pkgs)
	return pkgs
}

// Discover 实现 di.Discoverer。
// 返回包路径等于 scanPath（或以 /... 结尾时位于其下）的类型，按类型名排序。
// 没有匹配时返回空列表，由容器记录警告。
func (c *Catalog) Discover(scanPath string) ([]di.Candidate, error) {
	scanPath = strings.TrimSpace(scanPath)
	if scanPath == "" {
		return nil, &di.DiscoveryError{ScanPath: scanPath, Cause: errors.New("扫描路径为空")}
	}
	match := packageMatcher(scanPath)

	c.mu.RLock()
	var found []reflect.Type
	for pkgPath, types := range c.types {
		if !match(pkgPath) {
			continue
		}
		for _, t := range types {
			found = append(found, t)
		}
	}
	c.mu.RUnlock()

	slices.SortFunc(found, func(a, b reflect.Type) int {
		return cmp.Or(cmp.Compare(a.Name(), b.Name()), cmp.Compare(a.PkgPath(), b.PkgPath()))
	})

	candidates := make([]di.Candidate, 0, len(found))
	for _, t := range found {
		candidates = append(candidates, di.TypeCandidate(t))
	}
	return candidates, nil
}

// packageMatcher 根据扫描路径生成包路径匹配函数。
func packageMatcher(scanPath string) func(string) bool {
	if scanPath == "..." {
		return func(string) bool { return true }
	}
	if prefix, ok := strings.CutSuffix(scanPath, recursiveSuffix); ok {
		return func(pkg string) bool {
			return pkg == prefix || strings.HasPrefix(pkg, prefix+"/")
		}
	}
	return func(pkg string) bool { return pkg == scanPath }
}
