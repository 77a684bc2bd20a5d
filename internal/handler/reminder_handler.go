package handler

import (
	"net/http"

	"github.com/daybook/internal/service"
	"github.com/gin-gonic/gin"
)

type reminderPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Recurrence  string `json:"recurrence"`
}

func (p reminderPayload) input() service.ReminderInput {
	return service.ReminderInput{
		Title:       p.Title,
		Description: p.Description,
		Date:        p.Date,
		Recurrence:  p.Recurrence,
	}
}

// AllData 返回全部提醒与任务
func (a *API) AllData(c *gin.Context) {
	reminders, err := a.reminders.List()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	tasks, err := a.tasks.List()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminders, "tasks": tasks})
}

// ListReminders 返回全部提醒
func (a *API) ListReminders(c *gin.Context) {
	reminders, err := a.reminders.List()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

// CreateReminder 新建提醒
func (a *API) CreateReminder(c *gin.Context) {
	var payload reminderPayload
	if !bindJSON(c, &payload, "提醒参数错误") {
		return
	}

	reminder, err := a.reminders.Create(payload.input())
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "提醒创建成功", "reminder": reminder})
}

// UpdateReminder 更新提醒
func (a *API) UpdateReminder(c *gin.Context) {
	var payload reminderPayload
	if !bindJSON(c, &payload, "提醒参数错误") {
		return
	}

	reminder, err := a.reminders.Update(c.Param("id"), payload.input())
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "提醒更新成功", "reminder": reminder})
}

// DeleteReminder 删除提醒
func (a *API) DeleteReminder(c *gin.Context) {
	if err := a.reminders.Delete(c.Param("id")); err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "提醒删除成功"})
}

// UpcomingReminders 返回未来 weeks 周内的提醒，默认 1 周
func (a *API) UpcomingReminders(c *gin.Context) {
	weeks, err := parsePositiveQuery(c, "weeks", 1)
	if err != nil {
		respondError(c, http.StatusBadRequest, "weeks 必须为正整数")
		return
	}

	reminders, err := a.reminders.Upcoming(weeks)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminders, "weeks": weeks})
}

// ProjectedReminders 展开 [start, end] 区间内的全部发生日期
func (a *API) ProjectedReminders(c *gin.Context) {
	start, err := parseDateQuery(c, "start")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDateQuery(c, "end")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	reminders, err := a.reminders.Projected(start, end)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

// CalendarReminders 返回日历视图窗口内的全部发生日期
func (a *API) CalendarReminders(c *gin.Context) {
	reminders, err := a.reminders.Calendar()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}
