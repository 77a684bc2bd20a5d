package db

// 任务状态。状态是开放字符串，这里只列出系统内有特殊含义的取值
const (
	StatusYetToStart = "Yet to Start"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// Comment 是附加在提醒、任务或项目任务上的一条评论
type Comment struct {
	Text      string    `json:"text"`
	Timestamp Timestamp `json:"timestamp"`
}

// Reminder 定义提醒记录。Date 为锚点日期（YYYY-MM-DD），
// 以原始字符串保存，读取时解析失败的记录会被跳过而不是拒绝整份文档。
type Reminder struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Recurrence  string    `json:"recurrence"`
	CreatedAt   Timestamp `json:"created_at"`
	Comments    []Comment `json:"comments"`
}

// Task 定义普通任务，无重复规则
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   Timestamp `json:"created_at"`
	Comments    []Comment `json:"comments"`
}

// RecordSet 是 data.json 的整体结构
type RecordSet struct {
	Reminders []Reminder `json:"reminders"`
	Tasks     []Task     `json:"tasks"`
}

// NewRecordSet 返回空的提醒/任务集合
func NewRecordSet() RecordSet {
	return RecordSet{Reminders: []Reminder{}, Tasks: []Task{}}
}
