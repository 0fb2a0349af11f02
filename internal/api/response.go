package api

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"portfolio/internal/api/middleware"
	"portfolio/internal/errcode"
)

// respondError 写出 {"error": msg}；内部错误在此记录日志，客户端只看到通用信息。
func respondError(c *gin.Context, err error) {
	status := errcode.Status(err)
	if status >= http.StatusInternalServerError {
		middleware.LoggerFromContext(c).Error("request failed", slog.Any("error", err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": errcode.Message(err)})
}

func message(c *gin.Context, status int, text string) {
	c.JSON(status, gin.H{"message": text})
}

// bindError 把绑定失败转换为可返回给客户端的校验错误。
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errcode.Validation("Invalid request body")
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return errcode.Validation("%s is required", fe.Field())
	case "email":
		return errcode.Validation("%s must be a valid email address", fe.Field())
	case "min", "gte":
		return errcode.Validation("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return errcode.Validation("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return errcode.Validation("%s is invalid", fe.Field())
	}
}

// pathID 解析路由参数 :id。
func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errcode.Validation("id must be a positive integer")
	}
	return uint(id), nil
}

var tagNameOnce sync.Once

// 校验错误使用 json/form 字段名而不是 Go 字段名。
func registerValidatorTagNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}
