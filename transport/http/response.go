package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/hiding/errors"
)

const (
	defaultSuccessMsg = "success"
	defaultErrorMsg   = "operation failed"

	successCode = http.StatusOK
)

// Response 统一响应结构
type Response[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data T      `json:"data,omitempty"`
}

// GinJSON 写入成功响应，HTTP 状态码与业务码均为 200
func GinJSON(c *gin.Context, data any) {
	if c == nil {
		return
	}

	c.JSON(http.StatusOK, &Response[any]{
		Code: successCode,
		Msg:  defaultSuccessMsg,
		Data: data,
	})
}

// GinJSONE 写入错误响应
//
// HTTP 状态码由 errors.HTTPStatus 决定，业务码取错误码：
//
//	GinJSONE(c, errors.ErrInvalidCode)
//	// 422 {"code":1000, "msg":"invalid code"}
//
// 非结构化错误按 500 处理，消息统一为 "operation failed"，不向外暴露内部细节
func GinJSONE(c *gin.Context, err error) {
	if c == nil {
		return
	}

	status := errors.HTTPStatus(err)
	resp := &Response[any]{Code: status, Msg: defaultErrorMsg}
	if code := errors.Code(err); code != 0 {
		resp.Code = code
		resp.Msg = errors.FromError(err).Message
	}

	c.JSON(status, resp)
}

// GinAbort 写入错误响应并终止后续处理
func GinAbort(c *gin.Context, err error) {
	GinJSONE(c, err)
	c.Abort()
}

func Success[T any](data T) *Response[T] {
	return &Response[T]{
		Code: successCode,
		Msg:  defaultSuccessMsg,
		Data: data,
	}
}

func Failure(code int, msg string) *Response[any] {
	return &Response[any]{
		Code: code,
		Msg:  msg,
	}
}
