package service

import "github.com/gocrud/ioc/di"

type TestServiceA struct {
	di.Component

	TestServiceC *TestServiceC `di:""`
}

// TestC 调用 TestServiceC。
func (a *TestServiceA) TestC() string {
	return a.TestServiceC.TestC()
}
