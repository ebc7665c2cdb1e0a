package di

import (
	"slices"
	"strings"
)

// Cycle 静态依赖图中的一个环，Path 首尾相同，例如 [A B A]。
type Cycle struct {
	Path []string `json:"path"`
	// Breakable 环上至少有一个单例，可以用提前引用打破
	Breakable bool `json:"breakable"`
}

func (c Cycle) String() string {
	return strings.Join(c.Path, " -> ")
}

// graphBuilder 基于注册表的依赖图。
type graphBuilder struct {
	registry *Registry
}

func newGraphBuilder(registry *Registry) *graphBuilder {
	return &graphBuilder{registry: registry}
}

// cycles 用 DFS 找环，每条回边对应一个环；按注册顺序遍历保证结果稳定。
// 环只用于诊断，单例之间的环在创建时由提前引用处理。
func (g *graphBuilder) cycles() []Cycle {
	defs := g.registry.Snapshot()
	names := g.registry.Names()

	visited := make(map[string]bool, len(names))
	onStack := make(map[string]int, len(names))
	var stack []string
	seen := make(map[string]bool)
	var result []Cycle

	var visit func(string)
	visit = func(u string) {
		visited[u] = true
		onStack[u] = len(stack)
		stack = append(stack, u)

		for _, v := range defs[u].Dependencies() {
			if _, exists := defs[v]; !exists {
				continue
			}
			if idx, ok := onStack[v]; ok {
				path := slices.Clone(stack[idx:])
				key := canonicalCycle(path)
				if !seen[key] {
					seen[key] = true
					result = append(result, Cycle{
						Path:      append(path, v),
						Breakable: hasSingleton(defs, path),
					})
				}
				continue
			}
			if !visited[v] {
				visit(v)
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, u)
	}

	for _, name := range names {
		if !visited[name] {
			visit(name)
		}
	}
	return result
}

// canonicalCycle 以字典序最小的节点为起点，旋转后作为去重键。
func canonicalCycle(path []string) string {
	minIdx := 0
	for i, n := range path {
		if n < path[minIdx] {
			minIdx = i
		}
	}
	rotated := append(slices.Clone(path[minIdx:]), path[:minIdx]...)
	return strings.Join(rotated, "\x00")
}

func hasSingleton(defs map[string]BeanDefinition, path []string) bool {
	for _, n := range path {
		if defs[n].Scope == ScopeSingleton {
			return true
		}
	}
	return false
}
