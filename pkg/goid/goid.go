// Package goid 读取当前 goroutine ID，仅用于日志诊断（例如标记被放弃的采集 goroutine）。
package goid

import (
	"bytes"
	"runtime"
	"strconv"
)

var prefix = []byte("goroutine ")

// Get 返回当前 goroutine 的 ID，解析失败返回 0
func Get() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// 栈信息类似: "goroutine 123 [running]:\n"
	b := bytes.TrimPrefix(buf[:n], prefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
