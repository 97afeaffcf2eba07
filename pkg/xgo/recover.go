package xgo

import (
	"runtime/debug"

	"github.com/go-kratos/kratos/v2/log"
)

// RecoverFromError 需 defer 调用；recover 到 panic 时记录堆栈并回调
func RecoverFromError(cb func(e any)) {
	if e := recover(); e != nil {
		log.Errorf("Recover => %v\n%s\n", e, debug.Stack())
		if cb != nil {
			cb(e)
		}
	}
}

// Go 启动带 recover 的 goroutine
func Go(fn func()) {
	go func() {
		defer RecoverFromError(nil)
		fn()
	}()
}
