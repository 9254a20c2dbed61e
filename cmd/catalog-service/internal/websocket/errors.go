package websocket

import "errors"

// ErrSendBufferFull 发送缓冲区已满
var ErrSendBufferFull = errors.New("send buffer is full")

// 确认消息中的错误文案，跨协议边界只下发文案，不抛出错误
const (
	ackErrInvalidCatalogID = "Invalid catalog id"
	ackErrCatalogNotFound  = "Catalog not found"
	ackErrAccessDenied     = "Access denied"
	ackErrInternal         = "Subscription failed"
)
