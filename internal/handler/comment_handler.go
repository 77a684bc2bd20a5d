package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type commentPayload struct {
	ItemType string `json:"item_type"`
	ItemID   string `json:"item_id"`
	Text     string `json:"text"`
}

// AddComment 为任务或提醒追加评论
func (a *API) AddComment(c *gin.Context) {
	var payload commentPayload
	if !bindJSON(c, &payload, "评论参数错误") {
		return
	}

	comment, err := a.comments.Add(payload.ItemType, payload.ItemID, payload.Text)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "评论已添加", "comment": comment})
}

// LatestComments 返回最新评论动态，默认 5 条
func (a *API) LatestComments(c *gin.Context) {
	limit, err := parsePositiveQuery(c, "limit", 5)
	if err != nil {
		respondError(c, http.StatusBadRequest, "limit 必须为正整数")
		return
	}

	comments, err := a.comments.Latest(limit)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
