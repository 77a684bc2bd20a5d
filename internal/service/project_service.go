package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/daybook/internal/db"
	"github.com/daybook/internal/recurrence"
	"github.com/google/uuid"
)

var (
	// ErrProjectNotFound 在项目不存在时返回
	ErrProjectNotFound = errors.New("project not found")
	// ErrProjectTaskNotFound 在项目任务不存在时返回
	ErrProjectTaskNotFound = errors.New("project task not found")
)

// ProjectService 负责项目及其任务森林。
// 约束：任务日期必须落在父任务（根任务则为项目）的日期范围内；
// 项目或任务只有在全部后代任务都为 Completed 时才能切换为 Completed。
// 约束不满足时返回 ErrConstraintViolation，且不写盘。
type ProjectService struct {
	projects *db.Document[[]db.Project]
	now      func() time.Time
}

// ProjectInput 定义创建/更新项目时可配置字段；更新时 Status 为空表示保留
type ProjectInput struct {
	Name        string
	Description string
	StartDate   string
	EndDate     string
	Status      string
}

// ProjectTaskInput 定义创建/更新项目任务时可配置字段。
// ParentID 仅在创建时使用，为空表示根任务。
type ProjectTaskInput struct {
	ParentID  string
	Name      string
	Comments  string
	StartDate string
	EndDate   string
	Status    string
}

// NewProjectService 构造 ProjectService
func NewProjectService(projects *db.Document[[]db.Project]) *ProjectService {
	return &ProjectService{projects: projects, now: time.Now}
}

// List 返回全部项目
func (s *ProjectService) List() ([]db.Project, error) {
	projects, err := s.projects.Load()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if projects == nil {
		return []db.Project{}, nil
	}
	return projects, nil
}

// Get 根据 ID 获取项目
func (s *ProjectService) Get(id string) (*db.Project, error) {
	projects, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i], nil
		}
	}
	return nil, ErrProjectNotFound
}

// Create 新建项目
func (s *ProjectService) Create(input ProjectInput) (*db.Project, error) {
	if _, err := validateProjectInput(input); err != nil {
		return nil, err
	}

	project := db.Project{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		StartDate:   strings.TrimSpace(input.StartDate),
		EndDate:     strings.TrimSpace(input.EndDate),
		Status:      defaultStatus(input.Status),
		CreatedAt:   db.NewTimestamp(s.now()),
		Tasks:       []db.ProjectTask{},
	}

	if err := s.projects.Update(func(projects *[]db.Project) error {
		*projects = append(*projects, project)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &project, nil
}

// Update 更新项目字段。缩小日期范围时已有根任务必须仍在范围内；
// 切换为 Completed 时全部任务必须已完成。
func (s *ProjectService) Update(id string, input ProjectInput) (*db.Project, error) {
	span, err := validateProjectInput(input)
	if err != nil {
		return nil, err
	}

	var updated db.Project
	err = s.mutateProject(id, func(project *db.Project) error {
		for _, task := range project.Tasks {
			if err := checkWithin(task.Name, task.StartDate, task.EndDate, span, "project"); err != nil {
				return err
			}
		}

		status := strings.TrimSpace(input.Status)
		if status == db.StatusCompleted && project.Status != db.StatusCompleted {
			if pending := firstIncomplete(project.Tasks); pending != nil {
				return fmt.Errorf("%w: task %q is not completed", ErrConstraintViolation, pending.Name)
			}
		}

		project.Name = strings.TrimSpace(input.Name)
		project.Description = strings.TrimSpace(input.Description)
		project.StartDate = strings.TrimSpace(input.StartDate)
		project.EndDate = strings.TrimSpace(input.EndDate)
		if status != "" {
			project.Status = status
		}
		updated = *project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete 删除项目及其全部任务
func (s *ProjectService) Delete(id string) error {
	err := s.projects.Update(func(projects *[]db.Project) error {
		for i := range *projects {
			if (*projects)[i].ID == id {
				*projects = slices.Delete(*projects, i, i+1)
				return nil
			}
		}
		return ErrProjectNotFound
	})
	if err != nil && !errors.Is(err, ErrProjectNotFound) {
		return fmt.Errorf("delete project: %w", err)
	}
	return err
}

// AddTask 在项目中新增任务，ParentID 为空时作为根任务
func (s *ProjectService) AddTask(projectID string, input ProjectTaskInput) (*db.ProjectTask, error) {
	if _, err := validateProjectTaskInput(input); err != nil {
		return nil, err
	}

	task := db.ProjectTask{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Comments:     strings.TrimSpace(input.Comments),
		StartDate:    strings.TrimSpace(input.StartDate),
		EndDate:      strings.TrimSpace(input.EndDate),
		Status:       defaultStatus(input.Status),
		Subtasks:     []db.ProjectTask{},
		TaskComments: []db.Comment{},
	}

	err := s.mutateProject(projectID, func(project *db.Project) error {
		parentID := strings.TrimSpace(input.ParentID)
		if parentID == "" {
			if err := checkWithin(task.Name, task.StartDate, task.EndDate, mustSpan(project.StartDate, project.EndDate), "project"); err != nil {
				return err
			}
			project.Tasks = append(project.Tasks, task)
			return nil
		}

		index := indexForest(project.Tasks)
		path, ok := index[parentID]
		if !ok {
			return ErrProjectTaskNotFound
		}
		parent := nodeAt(project.Tasks, path)
		if err := checkWithin(task.Name, task.StartDate, task.EndDate, mustSpan(parent.StartDate, parent.EndDate), "parent task"); err != nil {
			return err
		}

		owner := parent.ID
		task.ParentID = &owner
		parent.Subtasks = append(parent.Subtasks, task)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask 更新任务字段。新日期必须在父范围内且仍能容纳全部子任务；
// 切换为 Completed 时全部后代必须已完成。
func (s *ProjectService) UpdateTask(projectID, taskID string, input ProjectTaskInput) (*db.ProjectTask, error) {
	span, err := validateProjectTaskInput(input)
	if err != nil {
		return nil, err
	}

	var updated db.ProjectTask
	err = s.mutateTask(projectID, taskID, func(project *db.Project, index taskIndex, task *db.ProjectTask) error {
		bounds, label := parentSpan(project, index, task)
		if err := checkWithin(input.Name, input.StartDate, input.EndDate, bounds, label); err != nil {
			return err
		}
		for _, sub := range task.Subtasks {
			if err := checkWithin(sub.Name, sub.StartDate, sub.EndDate, span, "parent task"); err != nil {
				return err
			}
		}

		status := strings.TrimSpace(input.Status)
		if err := checkCompletable(task, status); err != nil {
			return err
		}

		task.Name = strings.TrimSpace(input.Name)
		task.Comments = strings.TrimSpace(input.Comments)
		task.StartDate = strings.TrimSpace(input.StartDate)
		task.EndDate = strings.TrimSpace(input.EndDate)
		if status != "" {
			task.Status = status
		}
		updated = *task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateTaskStatus 仅更新任务状态
func (s *ProjectService) UpdateTaskStatus(projectID, taskID, status string) (*db.ProjectTask, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, fmt.Errorf("%w: status is required", ErrInvalidInput)
	}

	var updated db.ProjectTask
	err := s.mutateTask(projectID, taskID, func(_ *db.Project, _ taskIndex, task *db.ProjectTask) error {
		if err := checkCompletable(task, status); err != nil {
			return err
		}
		task.Status = status
		updated = *task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTask 删除任务及其整棵子树
func (s *ProjectService) DeleteTask(projectID, taskID string) error {
	return s.mutateProject(projectID, func(project *db.Project) error {
		index := indexForest(project.Tasks)
		path, ok := index[taskID]
		if !ok {
			return ErrProjectTaskNotFound
		}

		last := path[len(path)-1]
		if len(path) == 1 {
			project.Tasks = slices.Delete(project.Tasks, last, last+1)
			return nil
		}
		parent := nodeAt(project.Tasks, path[:len(path)-1])
		parent.Subtasks = slices.Delete(parent.Subtasks, last, last+1)
		return nil
	})
}

// AddTaskComment 为项目任务追加一条评论
func (s *ProjectService) AddTaskComment(projectID, taskID, text string) (*db.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrInvalidInput)
	}

	comment := db.Comment{Text: text, Timestamp: db.NewTimestamp(s.now())}
	err := s.mutateTask(projectID, taskID, func(_ *db.Project, _ taskIndex, task *db.ProjectTask) error {
		task.TaskComments = append(task.TaskComments, comment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *ProjectService) mutateProject(id string, apply func(*db.Project) error) error {
	err := s.projects.Update(func(projects *[]db.Project) error {
		for i := range *projects {
			if (*projects)[i].ID == id {
				return apply(&(*projects)[i])
			}
		}
		return ErrProjectNotFound
	})
	if err == nil ||
		errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrProjectTaskNotFound) ||
		errors.Is(err, ErrConstraintViolation) ||
		errors.Is(err, ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("update project: %w", err)
}

func (s *ProjectService) mutateTask(projectID, taskID string, apply func(*db.Project, taskIndex, *db.ProjectTask) error) error {
	return s.mutateProject(projectID, func(project *db.Project) error {
		index := indexForest(project.Tasks)
		path, ok := index[taskID]
		if !ok {
			return ErrProjectTaskNotFound
		}
		return apply(project, index, nodeAt(project.Tasks, path))
	})
}

// taskIndex 以任务 ID 记录节点在森林中的下标路径，查找不依赖父指针
type taskIndex map[string][]int

func indexForest(tasks []db.ProjectTask) taskIndex {
	index := make(taskIndex)
	var walk func(nodes []db.ProjectTask, prefix []int)
	walk = func(nodes []db.ProjectTask, prefix []int) {
		for i := range nodes {
			path := append(slices.Clone(prefix), i)
			index[nodes[i].ID] = path
			walk(nodes[i].Subtasks, path)
		}
	}
	walk(tasks, nil)
	return index
}

// nodeAt 按路径定位节点；返回的指针只在森林结构未变化期间有效
func nodeAt(tasks []db.ProjectTask, path []int) *db.ProjectTask {
	node := &tasks[path[0]]
	for _, i := range path[1:] {
		node = &node.Subtasks[i]
	}
	return node
}

// parentSpan 通过 ParentID 查找父任务的日期范围，根任务使用项目范围
func parentSpan(project *db.Project, index taskIndex, task *db.ProjectTask) (dateSpan, string) {
	if task.ParentID != nil {
		if path, ok := index[*task.ParentID]; ok {
			parent := nodeAt(project.Tasks, path)
			return mustSpan(parent.StartDate, parent.EndDate), "parent task"
		}
	}
	return mustSpan(project.StartDate, project.EndDate), "project"
}

// firstIncomplete 深度优先返回第一个未完成的任务
func firstIncomplete(tasks []db.ProjectTask) *db.ProjectTask {
	for i := range tasks {
		if tasks[i].Status != db.StatusCompleted {
			return &tasks[i]
		}
		if pending := firstIncomplete(tasks[i].Subtasks); pending != nil {
			return pending
		}
	}
	return nil
}

func checkCompletable(task *db.ProjectTask, status string) error {
	if status != db.StatusCompleted || task.Status == db.StatusCompleted {
		return nil
	}
	if pending := firstIncomplete(task.Subtasks); pending != nil {
		return fmt.Errorf("%w: subtask %q is not completed", ErrConstraintViolation, pending.Name)
	}
	return nil
}

type dateSpan struct {
	start time.Time
	end   time.Time
	valid bool
}

func parseSpan(start, end string) (dateSpan, error) {
	from, err := recurrence.ParseDate(start)
	if err != nil {
		return dateSpan{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	to, err := recurrence.ParseDate(end)
	if err != nil {
		return dateSpan{}, fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if to.Before(from) {
		return dateSpan{}, fmt.Errorf("%w: end_date before start_date", ErrInvalidInput)
	}
	return dateSpan{start: from, end: to, valid: true}, nil
}

// mustSpan 解析已落盘的范围；无法解析时返回无效范围，不参与约束检查
func mustSpan(start, end string) dateSpan {
	span, err := parseSpan(start, end)
	if err != nil {
		return dateSpan{}
	}
	return span
}

func checkWithin(name, start, end string, bounds dateSpan, label string) error {
	if !bounds.valid {
		return nil
	}
	span, err := parseSpan(start, end)
	if err != nil {
		// 历史数据日期不可解析时不阻塞父级修改
		return nil
	}
	if span.start.Before(bounds.start) || span.end.After(bounds.end) {
		return fmt.Errorf("%w: task %q dates %s..%s fall outside %s range %s..%s",
			ErrConstraintViolation, strings.TrimSpace(name),
			recurrence.FormatDate(span.start), recurrence.FormatDate(span.end), label,
			recurrence.FormatDate(bounds.start), recurrence.FormatDate(bounds.end))
	}
	return nil
}

func validateProjectInput(input ProjectInput) (dateSpan, error) {
	if strings.TrimSpace(input.Name) == "" {
		return dateSpan{}, fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}
	return parseSpan(input.StartDate, input.EndDate)
}

func validateProjectTaskInput(input ProjectTaskInput) (dateSpan, error) {
	if strings.TrimSpace(input.Name) == "" {
		return dateSpan{}, fmt.Errorf("%w: task name is required", ErrInvalidInput)
	}
	return parseSpan(input.StartDate, input.EndDate)
}

func defaultStatus(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return db.StatusYetToStart
	}
	return status
}
