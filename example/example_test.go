package example_test

import (
	"testing"

	"github.com/gocrud/ioc/di"
	"github.com/gocrud/ioc/discovery"
	"github.com/gocrud/ioc/example"
	"github.com/gocrud/ioc/example/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(t *testing.T) *di.Container {
	t.Helper()
	return di.New(example.Config{}, di.WithDiscoverer(discovery.Default))
}

func TestApplication(t *testing.T) {
	c := newContext(t)

	a, err := c.GetBean("testServiceA")
	require.NoError(t, err)
	testServiceA := a.(*service.TestServiceA)

	// A -> C 不会遇到空引用
	require.NotNil(t, testServiceA.TestServiceC)
	assert.Contains(t, testServiceA.TestC(), "This is C")

	cc, err := c.GetBean("testServiceC")
	require.NoError(t, err)
	testServiceC := cc.(*service.TestServiceC)

	// C -> A -> C，回到的是同一个 C
	assert.Same(t, testServiceC, testServiceA.TestServiceC)
	assert.Same(t, testServiceA, testServiceC.TestServiceA)
	assert.Equal(t, testServiceC.TestC(), testServiceC.TestA())
}

func TestSingletonIdentity(t *testing.T) {
	c := newContext(t)

	first, err := c.GetBean("testServiceA")
	require.NoError(t, err)
	second, err := c.GetBean("TestServiceA")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestPrototypeIsFresh(t *testing.T) {
	c := newContext(t)

	b1 := di.MustResolve[*service.TestServiceB](c, "testServiceB")
	b2 := di.MustResolve[*service.TestServiceB](c, "testServiceB")
	assert.NotSame(t, b1, b2)
	assert.Same(t, b1.TestServiceA, b2.TestServiceA)
	assert.Contains(t, b1.TestB(), "This is B")
}

func TestUnknownBean(t *testing.T) {
	c := newContext(t)

	_, err := c.GetBean("testServiceX")
	assert.ErrorIs(t, err, di.ErrBeanNotFound)
}

func TestEmptyScanPackage(t *testing.T) {
	c := di.New(di.ScanPaths{"github.com/gocrud/ioc/example/empty"}, di.WithDiscoverer(discovery.Default))

	assert.Empty(t, c.BeanDefinitionMap())
	_, err := c.GetBean("testServiceA")
	assert.ErrorIs(t, err, di.ErrBeanNotFound)
}

func TestCycleReported(t *testing.T) {
	c := newContext(t)

	cycles := c.Cycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"TestServiceA", "TestServiceC", "TestServiceA"}, cycles[0].Path)
	assert.True(t, cycles[0].Breakable)
}
