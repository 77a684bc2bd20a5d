package db

// Project 独占其任务森林
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	Status      string        `json:"status"`
	CreatedAt   Timestamp     `json:"created_at"`
	Tasks       []ProjectTask `json:"tasks"`
}

// ProjectTask 是任务树节点。ParentID 仅用于按 ID 查找，不持有父节点
type ProjectTask struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Comments     string        `json:"comments"`
	StartDate    string        `json:"start_date"`
	EndDate      string        `json:"end_date"`
	Status       string        `json:"status"`
	ParentID     *string       `json:"parent_id"`
	Subtasks     []ProjectTask `json:"subtasks"`
	TaskComments []Comment     `json:"task_comments"`
}
