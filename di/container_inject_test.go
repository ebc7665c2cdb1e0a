package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInject(t *testing.T) {
	c, _ := newTestContainer(t, cycleA{}, cycleC{}, englishGreeter{})

	var handler struct {
		A       *cycleA  `di:""`
		Greeter greeter  `di:"english"`
		Missing *singleY `di:"?"`
		Plain   string
	}
	require.NoError(t, c.Inject(&handler))

	a, err := c.GetBean("cycleA")
	require.NoError(t, err)
	assert.Same(t, a, handler.A)
	assert.Equal(t, "hello", handler.Greeter.Greet())
	assert.Nil(t, handler.Missing)

	// 外部对象不会注册到容器
	assert.Len(t, c.BeanNames(), 3)
}

func TestInjectErrors(t *testing.T) {
	c, _ := newTestContainer(t, singleton{})

	var notPointer struct{}
	assert.Error(t, c.Inject(notPointer))
	assert.Error(t, c.Inject((*struct{})(nil)))
	n := 1
	assert.Error(t, c.Inject(&n))

	var target struct {
		Dep     *singleton `di:"nowhere"`
		Wrong   *cycleA    `di:"singleton"`
		private *singleton `di:""`
	}
	err := c.Inject(&target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDefinitionNotFound)

	var fieldErr *FieldInjectionError
	require.ErrorAs(t, err, &fieldErr)
	assert.ErrorContains(t, err, "Wrong")
	assert.ErrorContains(t, err, "private")
	assert.Nil(t, target.private)

	assert.Panics(t, func() { c.MustInject(&target) })
}
