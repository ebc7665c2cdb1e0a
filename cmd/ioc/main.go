// Command ioc 运行示例应用，或查看、暴露容器中的 bean。
//
//	ioc run                    # 调用 testServiceA.TestC() 与 testServiceC.TestA()
//	ioc run --every 10s        # 按间隔重复调用，直到 Ctrl+C
//	ioc beans                  # 列出 bean 定义与循环依赖
//	ioc serve --port 8080      # 通过 HTTP 暴露容器信息
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
