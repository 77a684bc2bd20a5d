package service

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/daybook/internal/db"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrKnowledgeItemNotFound 在知识库条目不存在时返回
var ErrKnowledgeItemNotFound = errors.New("knowledge item not found")

var (
	knowledgeMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	knowledgeSanitizer = bluemonday.UGCPolicy()
)

// KnowledgeService 负责知识库条目的增删改查、检索与 markdown 渲染
type KnowledgeService struct {
	items *db.Document[[]db.KnowledgeItem]
	now   func() time.Time
}

// KnowledgeInput 定义创建/更新知识库条目时可配置字段
type KnowledgeInput struct {
	Title string
	Data  string
	URL   string
}

// NewKnowledgeService 构造 KnowledgeService
func NewKnowledgeService(items *db.Document[[]db.KnowledgeItem]) *KnowledgeService {
	return &KnowledgeService{items: items, now: time.Now}
}

// List 返回全部条目
func (s *KnowledgeService) List() ([]db.KnowledgeItem, error) {
	items, err := s.items.Load()
	if err != nil {
		return nil, fmt.Errorf("list knowledge items: %w", err)
	}
	if items == nil {
		return []db.KnowledgeItem{}, nil
	}
	return items, nil
}

// Get 根据 ID 获取条目
func (s *KnowledgeService) Get(id string) (*db.KnowledgeItem, error) {
	items, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, ErrKnowledgeItemNotFound
}

// Create 新建条目
func (s *KnowledgeService) Create(input KnowledgeInput) (*db.KnowledgeItem, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: knowledge title is required", ErrInvalidInput)
	}

	item := db.KnowledgeItem{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(input.Title),
		Data:      input.Data,
		URL:       strings.TrimSpace(input.URL),
		CreatedAt: db.NewTimestamp(s.now()),
	}

	if err := s.items.Update(func(items *[]db.KnowledgeItem) error {
		*items = append(*items, item)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("create knowledge item: %w", err)
	}
	return &item, nil
}

// Update 更新条目
func (s *KnowledgeService) Update(id string, input KnowledgeInput) (*db.KnowledgeItem, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: knowledge title is required", ErrInvalidInput)
	}

	var updated db.KnowledgeItem
	err := s.items.Update(func(items *[]db.KnowledgeItem) error {
		for i := range *items {
			item := &(*items)[i]
			if item.ID != id {
				continue
			}
			item.Title = strings.TrimSpace(input.Title)
			item.Data = input.Data
			item.URL = strings.TrimSpace(input.URL)
			updated = *item
			return nil
		}
		return ErrKnowledgeItemNotFound
	})
	if err != nil {
		if errors.Is(err, ErrKnowledgeItemNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update knowledge item: %w", err)
	}
	return &updated, nil
}

// Delete 删除条目
func (s *KnowledgeService) Delete(id string) error {
	err := s.items.Update(func(items *[]db.KnowledgeItem) error {
		for i := range *items {
			if (*items)[i].ID == id {
				*items = slices.Delete(*items, i, i+1)
				return nil
			}
		}
		return ErrKnowledgeItemNotFound
	})
	if err != nil && !errors.Is(err, ErrKnowledgeItemNotFound) {
		return fmt.Errorf("delete knowledge item: %w", err)
	}
	return err
}

// Search 按出现次数打分：标题每次命中记 2 分，正文每次命中记 1 分，
// 只返回得分大于 0 的条目并按得分降序；空查询返回全部条目。
func (s *KnowledgeService) Search(query string) ([]db.KnowledgeItem, error) {
	items, err := s.List()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items, nil
	}

	type scored struct {
		item  db.KnowledgeItem
		score int
	}

	hits := make([]scored, 0)
	for _, item := range items {
		score := strings.Count(strings.ToLower(item.Title), query)*2 +
			strings.Count(strings.ToLower(item.Data), query)
		if score > 0 {
			hits = append(hits, scored{item: item, score: score})
		}
	}

	slices.SortStableFunc(hits, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	results := make([]db.KnowledgeItem, 0, len(hits))
	for _, hit := range hits {
		results = append(results, hit.item)
	}
	return results, nil
}

// Render 将条目正文按 GFM 渲染为 HTML 并做 UGC 级别的清洗
func (s *KnowledgeService) Render(item db.KnowledgeItem) (string, error) {
	var buf bytes.Buffer
	if err := knowledgeMarkdown.Convert([]byte(item.Data), &buf); err != nil {
		return "", fmt.Errorf("render knowledge item: %w", err)
	}
	return string(knowledgeSanitizer.SanitizeBytes(buf.Bytes())), nil
}
