package db

// KnowledgeItem 为知识库条目，Data 为 markdown 正文
type KnowledgeItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Data      string    `json:"data"`
	URL       string    `json:"url"`
	CreatedAt Timestamp `json:"created_at"`
}
