package db

import (
	"path/filepath"
	"strings"
)

// 各数据族的文件名
const (
	RecordsFile   = "data.json"
	KnowledgeFile = "knowledgebase.json"
	VaultFile     = "secure.json"
	ProjectsFile  = "projects.json"
)

// Stores 汇总每个数据族对应的 JSON 文档，进程内构造一次后按引用传递
type Stores struct {
	Records   *Document[RecordSet]
	Knowledge *Document[[]KnowledgeItem]
	Vault     *Document[Vault]
	Projects  *Document[[]Project]
}

// Open 在 dataDir 下准备全部文档。dataDir 为空时回退到 data。
func Open(dataDir string) (*Stores, error) {
	dir := strings.TrimSpace(dataDir)
	if dir == "" {
		dir = "data"
	}

	if err := ensureParentDir(filepath.Join(dir, RecordsFile)); err != nil {
		return nil, err
	}

	return &Stores{
		Records: NewDocument(filepath.Join(dir, RecordsFile), NewRecordSet),
		Knowledge: NewDocument(filepath.Join(dir, KnowledgeFile), func() []KnowledgeItem {
			return []KnowledgeItem{}
		}),
		Vault: NewDocument(filepath.Join(dir, VaultFile), func() Vault {
			return Vault{Items: []VaultRecord{}}
		}),
		Projects: NewDocument(filepath.Join(dir, ProjectsFile), func() []Project {
			return []Project{}
		}),
	}, nil
}
