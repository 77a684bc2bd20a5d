package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockTimeout       = 3 * time.Second
	lockRetryInterval = 100 * time.Millisecond
)

// ErrDocumentExists 在创建已存在的文档时返回
var ErrDocumentExists = errors.New("document already exists")

// Document 是单个 JSON 文件承载的整份数据。
// 每次读取加载整个文件，每次写入序列化整个文件（临时文件 + rename），
// 进程内用互斥锁串行化，跨进程用 <path>.lock 上的 flock 互斥。
type Document[T any] struct {
	path  string
	lock  *flock.Flock
	mu    sync.Mutex
	empty func() T
}

// NewDocument 构造文档；empty 在文件不存在时提供初始值
func NewDocument[T any](path string, empty func() T) *Document[T] {
	return &Document[T]{
		path:  path,
		lock:  flock.New(path + ".lock"),
		empty: empty,
	}
}

// Path 返回文档文件路径
func (d *Document[T]) Path() string {
	return d.path
}

// Exists 判断文档文件是否已经落盘
func (d *Document[T]) Exists() (bool, error) {
	_, err := os.Stat(d.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Load 读取整个文档；文件不存在时返回初始值
func (d *Document[T]) Load() (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	unlock, err := d.acquire(true)
	if err != nil {
		var zero T
		return zero, err
	}
	defer unlock()

	return d.read()
}

// Update 在锁内完成 读取-修改-写回。fn 返回错误时不写盘；
// 写盘失败会原样返回，磁盘上保留上一次完整写入的内容。
func (d *Document[T]) Update(fn func(*T) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	unlock, err := d.acquire(false)
	if err != nil {
		return err
	}
	defer unlock()

	value, err := d.read()
	if err != nil {
		return err
	}
	if err := fn(&value); err != nil {
		return err
	}
	return d.write(value)
}

// Create 首次写入文档，文件已存在时返回 ErrDocumentExists
func (d *Document[T]) Create(value T) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	unlock, err := d.acquire(false)
	if err != nil {
		return err
	}
	defer unlock()

	exists, err := d.Exists()
	if err != nil {
		return err
	}
	if exists {
		return ErrDocumentExists
	}
	return d.write(value)
}

func (d *Document[T]) acquire(shared bool) (func(), error) {
	if err := ensureParentDir(d.path); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	var (
		locked bool
		err    error
	)
	if shared {
		locked, err = d.lock.TryRLockContext(ctx, lockRetryInterval)
	} else {
		locked, err = d.lock.TryLockContext(ctx, lockRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire lock on %s", d.path)
	}
	return func() { _ = d.lock.Unlock() }, nil
}

func (d *Document[T]) read() (T, error) {
	data, err := os.ReadFile(d.path)
	if errors.Is(err, os.ErrNotExist) {
		return d.empty(), nil
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("read %s: %w", filepath.Base(d.path), err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return d.empty(), nil
	}

	value := d.empty()
	if err := json.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, fmt.Errorf("parse %s: %w", filepath.Base(d.path), err)
	}
	return value, nil
}

func (d *Document[T]) write(value T) error {
	data, err := json.MarshalIndent(value, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(d.path), err)
	}

	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(tmp), err)
	}
	if err := os.Rename(tmp, d.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", filepath.Base(d.path), err)
	}
	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("document path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
