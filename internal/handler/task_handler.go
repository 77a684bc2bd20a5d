package handler

import (
	"net/http"
	"strconv"

	"github.com/daybook/internal/db"
	"github.com/daybook/internal/service"
	"github.com/gin-gonic/gin"
)

type taskPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type statusPayload struct {
	Status string `json:"status"`
}

// ListTasks 返回任务列表，active=true 时仅返回未完成任务
func (a *API) ListTasks(c *gin.Context) {
	var (
		tasks []db.Task
		err   error
	)
	if active, _ := strconv.ParseBool(c.Query("active")); active {
		tasks, err = a.tasks.Active()
	} else {
		tasks, err = a.tasks.List()
	}
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// CreateTask 新建任务
func (a *API) CreateTask(c *gin.Context) {
	var payload taskPayload
	if !bindJSON(c, &payload, "任务参数错误") {
		return
	}

	task, err := a.tasks.Create(service.TaskInput{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      payload.Status,
	})
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "任务创建成功", "task": task})
}

// UpdateTask 更新任务
func (a *API) UpdateTask(c *gin.Context) {
	var payload taskPayload
	if !bindJSON(c, &payload, "任务参数错误") {
		return
	}

	task, err := a.tasks.Update(c.Param("id"), service.TaskInput{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      payload.Status,
	})
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "任务更新成功", "task": task})
}

// UpdateTaskStatus 更新任务状态
func (a *API) UpdateTaskStatus(c *gin.Context) {
	var payload statusPayload
	if !bindJSON(c, &payload, "状态参数错误") {
		return
	}

	task, err := a.tasks.UpdateStatus(c.Param("id"), payload.Status)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "任务状态已更新", "task": task})
}

// DeleteTask 删除任务
func (a *API) DeleteTask(c *gin.Context) {
	if err := a.tasks.Delete(c.Param("id")); err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "任务删除成功"})
}
