package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/daybook/internal/recurrence"
	"github.com/daybook/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// parsePositiveQuery 读取正整数查询参数，缺省时返回 fallback
func parsePositiveQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return value, nil
}

func parseDateQuery(c *gin.Context, key string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", key)
	}
	date, err := recurrence.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s", key)
	}
	return date, nil
}

// handleServiceError 将服务层错误映射为 HTTP 状态码
func (a *API) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidKey):
		respondError(c, http.StatusUnauthorized, "主密码错误")
	case errors.Is(err, service.ErrReminderNotFound):
		respondError(c, http.StatusNotFound, "提醒不存在")
	case errors.Is(err, service.ErrTaskNotFound):
		respondError(c, http.StatusNotFound, "任务不存在")
	case errors.Is(err, service.ErrKnowledgeItemNotFound):
		respondError(c, http.StatusNotFound, "知识库条目不存在")
	case errors.Is(err, service.ErrProjectNotFound):
		respondError(c, http.StatusNotFound, "项目不存在")
	case errors.Is(err, service.ErrProjectTaskNotFound):
		respondError(c, http.StatusNotFound, "项目任务不存在")
	case errors.Is(err, service.ErrVaultItemNotFound):
		respondError(c, http.StatusNotFound, "保险库条目不存在")
	case errors.Is(err, service.ErrVaultNotInitialized):
		respondError(c, http.StatusNotFound, "保险库尚未初始化")
	case errors.Is(err, service.ErrVaultExists):
		respondError(c, http.StatusConflict, "保险库已存在")
	case errors.Is(err, service.ErrConstraintViolation):
		respondError(c, http.StatusConflict, err.Error())
	default:
		c.Error(err)
		a.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
