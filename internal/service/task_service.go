package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/daybook/internal/db"
	"github.com/google/uuid"
)

// ErrTaskNotFound 在指定任务不存在时返回
var ErrTaskNotFound = errors.New("task not found")

// TaskService 负责普通任务的增删改查
// Status 为开放字符串，新建时默认 "Yet to Start"
type TaskService struct {
	records *db.Document[db.RecordSet]
	now     func() time.Time
}

// TaskInput 定义创建/更新任务时可配置字段
type TaskInput struct {
	Title       string
	Description string
	Status      string
}

// NewTaskService 构造 TaskService
func NewTaskService(records *db.Document[db.RecordSet]) *TaskService {
	return &TaskService{records: records, now: time.Now}
}

// List 返回全部任务
func (s *TaskService) List() ([]db.Task, error) {
	set, err := s.records.Load()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if set.Tasks == nil {
		return []db.Task{}, nil
	}
	return set.Tasks, nil
}

// Active 返回状态不是 Completed 的任务
func (s *TaskService) Active() ([]db.Task, error) {
	tasks, err := s.List()
	if err != nil {
		return nil, err
	}

	active := make([]db.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Status != db.StatusCompleted {
			active = append(active, task)
		}
	}
	return active, nil
}

// Create 新建任务
func (s *TaskService) Create(input TaskInput) (*db.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: task title is required", ErrInvalidInput)
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = db.StatusYetToStart
	}

	task := db.Task{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      status,
		CreatedAt:   db.NewTimestamp(s.now()),
		Comments:    []db.Comment{},
	}

	if err := s.records.Update(func(set *db.RecordSet) error {
		set.Tasks = append(set.Tasks, task)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &task, nil
}

// Update 更新任务；Status 为空时保留原状态
func (s *TaskService) Update(id string, input TaskInput) (*db.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: task title is required", ErrInvalidInput)
	}

	return s.mutate(id, func(task *db.Task) {
		task.Title = strings.TrimSpace(input.Title)
		task.Description = strings.TrimSpace(input.Description)
		if status := strings.TrimSpace(input.Status); status != "" {
			task.Status = status
		}
	})
}

// UpdateStatus 仅更新任务状态
func (s *TaskService) UpdateStatus(id, status string) (*db.Task, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, fmt.Errorf("%w: status is required", ErrInvalidInput)
	}

	return s.mutate(id, func(task *db.Task) {
		task.Status = status
	})
}

// Delete 删除任务
func (s *TaskService) Delete(id string) error {
	err := s.records.Update(func(set *db.RecordSet) error {
		for i := range set.Tasks {
			if set.Tasks[i].ID == id {
				set.Tasks = slices.Delete(set.Tasks, i, i+1)
				return nil
			}
		}
		return ErrTaskNotFound
	})
	if err != nil && !errors.Is(err, ErrTaskNotFound) {
		return fmt.Errorf("delete task: %w", err)
	}
	return err
}

func (s *TaskService) mutate(id string, apply func(*db.Task)) (*db.Task, error) {
	var updated db.Task
	err := s.records.Update(func(set *db.RecordSet) error {
		for i := range set.Tasks {
			if set.Tasks[i].ID == id {
				apply(&set.Tasks[i])
				updated = set.Tasks[i]
				return nil
			}
		}
		return ErrTaskNotFound
	})
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &updated, nil
}
