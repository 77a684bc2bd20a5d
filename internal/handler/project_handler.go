package handler

import (
	"net/http"

	"github.com/daybook/internal/service"
	"github.com/gin-gonic/gin"
)

type projectPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Status      string `json:"status"`
}

func (p projectPayload) input() service.ProjectInput {
	return service.ProjectInput{
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Status:      p.Status,
	}
}

type projectTaskPayload struct {
	ParentID  string `json:"parent_id"`
	Name      string `json:"name"`
	Comments  string `json:"comments"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
}

func (p projectTaskPayload) input() service.ProjectTaskInput {
	return service.ProjectTaskInput{
		ParentID:  p.ParentID,
		Name:      p.Name,
		Comments:  p.Comments,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Status:    p.Status,
	}
}

type textPayload struct {
	Text string `json:"text"`
}

// ListProjects 返回全部项目
func (a *API) ListProjects(c *gin.Context) {
	projects, err := a.projects.List()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GetProject 返回单个项目及其任务树
func (a *API) GetProject(c *gin.Context) {
	project, err := a.projects.Get(c.Param("id"))
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// CreateProject 新建项目
func (a *API) CreateProject(c *gin.Context) {
	var payload projectPayload
	if !bindJSON(c, &payload, "项目参数错误") {
		return
	}

	project, err := a.projects.Create(payload.input())
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "项目创建成功", "project": project})
}

// UpdateProject 更新项目
func (a *API) UpdateProject(c *gin.Context) {
	var payload projectPayload
	if !bindJSON(c, &payload, "项目参数错误") {
		return
	}

	project, err := a.projects.Update(c.Param("id"), payload.input())
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "项目更新成功", "project": project})
}

// DeleteProject 删除项目
func (a *API) DeleteProject(c *gin.Context) {
	if err := a.projects.Delete(c.Param("id")); err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "项目删除成功"})
}

// AddProjectTask 在项目中新增任务，parent_id 为空时为根任务
func (a *API) AddProjectTask(c *gin.Context) {
	var payload projectTaskPayload
	if !bindJSON(c, &payload, "任务参数错误") {
		return
	}

	task, err := a.projects.AddTask(c.Param("id"), payload.input())
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "任务创建成功", "task": task})
}

// UpdateProjectTask 更新项目任务
func (a *API) UpdateProjectTask(c *gin.Context) {
	var payload projectTaskPayload
	if !bindJSON(c, &payload, "任务参数错误") {
		return
	}

	task, err := a.projects.UpdateTask(c.Param("id"), c.Param("taskId"), payload.input())
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "任务更新成功", "task": task})
}

// UpdateProjectTaskStatus 更新项目任务状态
func (a *API) UpdateProjectTaskStatus(c *gin.Context) {
	var payload statusPayload
	if !bindJSON(c, &payload, "状态参数错误") {
		return
	}

	task, err := a.projects.UpdateTaskStatus(c.Param("id"), c.Param("taskId"), payload.Status)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "任务状态已更新", "task": task})
}

// DeleteProjectTask 删除任务及其子任务
func (a *API) DeleteProjectTask(c *gin.Context) {
	if err := a.projects.DeleteTask(c.Param("id"), c.Param("taskId")); err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "任务删除成功"})
}

// AddProjectTaskComment 为项目任务追加评论
func (a *API) AddProjectTaskComment(c *gin.Context) {
	var payload textPayload
	if !bindJSON(c, &payload, "评论参数错误") {
		return
	}

	comment, err := a.projects.AddTaskComment(c.Param("id"), c.Param("taskId"), payload.Text)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "评论已添加", "comment": comment})
}
