package handler

import (
	"net/http"

	"github.com/daybook/internal/service"
	"github.com/gin-gonic/gin"
)

type knowledgePayload struct {
	Title string `json:"title"`
	Data  string `json:"data"`
	URL   string `json:"url"`
}

func (p knowledgePayload) input() service.KnowledgeInput {
	return service.KnowledgeInput{Title: p.Title, Data: p.Data, URL: p.URL}
}

// ListKnowledge 返回全部知识库条目
func (a *API) ListKnowledge(c *gin.Context) {
	items, err := a.knowledge.List()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// SearchKnowledge 按关键字检索知识库
func (a *API) SearchKnowledge(c *gin.Context) {
	query := c.Query("q")
	items, err := a.knowledge.Search(query)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "query": query})
}

// GetKnowledge 返回单个条目及渲染后的 HTML
func (a *API) GetKnowledge(c *gin.Context) {
	item, err := a.knowledge.Get(c.Param("id"))
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	html, err := a.knowledge.Render(*item)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item, "html": html})
}

// CreateKnowledge 新建知识库条目
func (a *API) CreateKnowledge(c *gin.Context) {
	var payload knowledgePayload
	if !bindJSON(c, &payload, "知识库参数错误") {
		return
	}

	item, err := a.knowledge.Create(payload.input())
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "条目创建成功", "item": item})
}

// UpdateKnowledge 更新知识库条目
func (a *API) UpdateKnowledge(c *gin.Context) {
	var payload knowledgePayload
	if !bindJSON(c, &payload, "知识库参数错误") {
		return
	}

	item, err := a.knowledge.Update(c.Param("id"), payload.input())
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "条目更新成功", "item": item})
}

// DeleteKnowledge 删除知识库条目
func (a *API) DeleteKnowledge(c *gin.Context) {
	if err := a.knowledge.Delete(c.Param("id")); err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "条目删除成功"})
}
