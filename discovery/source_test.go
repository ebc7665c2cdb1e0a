package discovery_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocrud/ioc/di"
	"github.com/gocrud/ioc/discovery"
	"github.com/gocrud/ioc/example/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeModule 在临时目录生成一个最小模块
func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	files["go.mod"] = "module example.com/app\n\ngo 1.25\n"
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func sourceModule(t *testing.T) string {
	return writeModule(t, map[string]string{
		"svc/svc.go": `package svc

import "github.com/gocrud/ioc/di"

type Foo struct {
	di.Component
}

type Plain struct{ N int }

type (
	Bar struct {
		di.Component ` + "`scope:\"prototype\"`" + `
	}
)
`,
		"svc/svc_test.go": `package svc

import "github.com/gocrud/ioc/di"

type Ignored struct{ di.Component }
`,
		"svc/sub/alias.go": `package sub

import ioc "github.com/gocrud/ioc/di"

type Baz struct {
	ioc.Component
	Foo any ` + "`di:\"foo\"`" + `
}
`,
		"svc/sub/broken.go": `package sub

import "github.com/gocrud/ioc/di"

type Broken struct {
	di.Component
`,
		"svc/testdata/skip.go": `package testdata

import "github.com/gocrud/ioc/di"

type Skipped struct{ di.Component }
`,
		"svc/nested/go.mod": "module example.com/nested\n",
		"svc/nested/n.go": `package nested

import "github.com/gocrud/ioc/di"

type Nested struct{ di.Component }
`,
	})
}

func candidateNames(candidates []di.Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Name)
	}
	return out
}

func TestSourceScannerSinglePackage(t *testing.T) {
	root := sourceModule(t)
	s := discovery.NewSourceScanner(filepath.Join(root, "svc"), discovery.NewCatalog())

	got, err := s.Discover("example.com/app/svc")
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com/app/svc.Bar", "example.com/app/svc.Foo"}, candidateNames(got))

	// 源码中存在但未登记的类型加载失败
	_, err = got[0].Load()
	assert.ErrorIs(t, err, di.ErrTypeNotLoaded)
	var de *di.DiscoveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "example.com/app/svc.Bar", de.Candidate)
}

func TestSourceScannerRecursive(t *testing.T) {
	root := sourceModule(t)
	s := discovery.NewSourceScanner(root, discovery.NewCatalog())

	got, err := s.Discover("example.com/app/...")
	require.NoError(t, err)

	found := candidateNames(got)
	assert.Contains(t, found, "example.com/app/svc/sub.Baz")
	assert.Contains(t, found, "example.com/app/svc.Foo")
	assert.NotContains(t, found, "example.com/app/svc.Ignored")
	assert.NotContains(t, found, "example.com/app/svc.Plain")
	assert.NotContains(t, found, "example.com/app/svc/testdata.Skipped")
	assert.NotContains(t, found, "example.com/app/svc/nested.Nested")

	// 语法错误的文件成为加载失败的候选项
	var broken *di.Candidate
	for i := range got {
		if filepath.Base(got[i].Name) == "broken.go" {
			broken = &got[i]
		}
	}
	require.NotNil(t, broken)
	_, err = broken.Load()
	var de *di.DiscoveryError
	assert.ErrorAs(t, err, &de)
}

func TestSourceScannerWholeModule(t *testing.T) {
	root := sourceModule(t)
	s := discovery.NewSourceScanner(root, discovery.NewCatalog())

	all, err := s.Discover("...")
	require.NoError(t, err)
	recursive, err := s.Discover("example.com/app/...")
	require.NoError(t, err)
	assert.Equal(t, candidateNames(recursive), candidateNames(all))
	assert.Contains(t, candidateNames(all), "example.com/app/svc.Foo")
}

func TestSourceScannerInvalidPaths(t *testing.T) {
	root := sourceModule(t)
	s := discovery.NewSourceScanner(root, nil)

	var de *di.DiscoveryError
	_, err := s.Discover("example.com/app/missing")
	assert.ErrorAs(t, err, &de)

	_, err = s.Discover("github.com/other/module")
	assert.ErrorAs(t, err, &de)

	// 指向文件而不是目录
	require.NoError(t, os.WriteFile(filepath.Join(root, "file"), nil, 0o644))
	_, err = s.Discover("example.com/app/file")
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "example.com/app/file", de.ScanPath)

	// 没有 go.mod
	_, err = discovery.NewSourceScanner(t.TempDir(), nil).Discover("example.com/app")
	assert.ErrorAs(t, err, &de)
}

func TestSourceScannerWithContainer(t *testing.T) {
	// 测试在包目录下运行，向上找到本仓库的 go.mod
	s := discovery.NewSourceScanner("", discovery.Default)
	c := di.New(di.ScanPaths{"github.com/gocrud/ioc/example/service"}, di.WithDiscoverer(s))

	assert.ElementsMatch(t, []string{"TestServiceA", "TestServiceB", "TestServiceC"}, c.BeanNames())

	b1, err := c.GetBean("testServiceB")
	require.NoError(t, err)
	b2, err := c.GetBean("testServiceB")
	require.NoError(t, err)
	assert.NotSame(t, b1.(*service.TestServiceB), b2.(*service.TestServiceB))
}

func TestSourceScannerReportsUnregisteredTypes(t *testing.T) {
	root := sourceModule(t)
	s := discovery.NewSourceScanner(root, discovery.NewCatalog())
	c := di.New(di.ScanPaths{"example.com/app/svc"}, di.WithDiscoverer(s))

	assert.Empty(t, c.BeanNames())
	_, err := c.GetBean("foo")
	assert.True(t, errors.Is(err, di.ErrBeanNotFound))
}
