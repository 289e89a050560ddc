package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"
	"inkwell/internal/utils"
)

// ListResponse wraps one page of results.
type ListResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
}

// Fail writes err as {"error": {"code", "message"}}.
func Fail(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

func session(c *gin.Context) auth.Session {
	return middleware.CurrentSession(c)
}

// bindJSON binds the request body, answering 400 on failure.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		Fail(c, apperr.Wrap(apperr.CodeValidation, "请求格式错误", err))
		return false
	}
	return true
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id := utils.StringToUint(c.Param(name))
	if id == 0 {
		Fail(c, apperr.Validation("无效的 "+name))
		return 0, false
	}
	return id, true
}

// pageParam reads ?page=&size=.
func pageParam(c *gin.Context) repository.Page {
	return repository.NewPage(utils.StringToInt(c.Query("page")), utils.StringToInt(c.Query("size")))
}

func boolQuery(c *gin.Context, name string) bool {
	b, _ := strconv.ParseBool(c.Query(name))
	return b
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
