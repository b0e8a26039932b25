package errors

import "errors"

// ErrKeyNotFound 持久化后端中不存在该键（首次启动或数据被清空）
var ErrKeyNotFound = errors.New("快照不存在")
