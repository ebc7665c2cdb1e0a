package service

import (
	"fmt"

	"github.com/gocrud/ioc/di"
)

type TestServiceC struct {
	di.Component

	TestServiceA *TestServiceA `di:""`
}

func (c *TestServiceC) TestC() string {
	return fmt.Sprintf("This is C, %p", c)
}

// TestA 经由 TestServiceA 回到 TestServiceC。
func (c *TestServiceC) TestA() string {
	return c.TestServiceA.TestC()
}
