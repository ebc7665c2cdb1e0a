package service

import (
	"fmt"

	"github.com/gocrud/ioc/di"
)

// TestServiceB 每次获取都是新实例。
type TestServiceB struct {
	di.Component `scope:"prototype"`

	TestServiceA *TestServiceA `di:""`
}

func (b *TestServiceB) TestB() string {
	return fmt.Sprintf("This is B, %p -> %s", b, b.TestServiceA.TestC())
}
