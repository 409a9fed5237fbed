package handler

import (
	"errors"
	"net/http"

	"navbar_social/internal/service/social"
	"navbar_social/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandleSuccess 返回成功响应
func HandleSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code": errorx.CodeSuccess,
		"msg":  "success",
		"data": data,
	})
}

// HandleError 通用错误处理方法
// 表单校验失败返回字段级提示；errorx.CodeError 返回携带的错误码；其余错误视为服务繁忙
func HandleError(c *gin.Context, err error) {
	var validationErr *social.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusOK, gin.H{
			"code": errorx.CodeInvalidParam,
			"msg":  validationErr.Fields,
			"data": nil,
		})
		return
	}

	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		c.JSON(http.StatusOK, gin.H{
			"code": codeErr.Code,
			"msg":  codeErr.Msg,
			"data": nil,
		})
		return
	}

	zap.L().Error("system error",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	c.JSON(http.StatusOK, gin.H{
		"code": errorx.ErrServerBusy.Code,
		"msg":  errorx.ErrServerBusy.Msg,
		"data": nil,
	})
}

// HandleParamError 处理请求体绑定错误（JSON 格式错误等）
func HandleParamError(c *gin.Context, err error) {
	zap.L().Error("param bind error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusOK, gin.H{
		"code": errorx.ErrInvalidParam.Code,
		"msg":  errorx.ErrInvalidParam.Msg,
		"data": nil,
	})
}
