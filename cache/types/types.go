package types

import "errors"

// ErrCacheMiss 缓存未命中错误，各提供者实现统一返回
var ErrCacheMiss = errors.New("cache miss")
