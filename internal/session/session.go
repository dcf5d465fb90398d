// Package session 按区域保存"记住我"令牌
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store 区域令牌存储
type Store interface {
	Get(areaID string) (string, bool, error)
	Set(areaID, token string) error
	Clear(areaID string) error
}

// ── 内存实现 ──

// MemoryStore 进程内存储
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

func (s *MemoryStore) Get(areaID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[areaID]
	return t, ok, nil
}

func (s *MemoryStore) Set(areaID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[areaID] = token
	return nil
}

func (s *MemoryStore) Clear(areaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, areaID)
	return nil
}

// ── 文件实现 ──

// FileStore JSON 文件存储，权限 0600
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore 创建文件存储，文件不存在时在首次写入时创建
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath 用户配置目录下的默认令牌文件
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("获取用户配置目录失败: %w", err)
	}
	return filepath.Join(dir, "programacion-areas", "sessions.json"), nil
}

func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取令牌文件失败: %w", err)
	}
	tokens := make(map[string]string)
	if len(data) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("令牌文件格式错误: %w", err)
	}
	return tokens, nil
}

func (s *FileStore) save(tokens map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("创建令牌目录失败: %w", err)
	}
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("写入令牌文件失败: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Get(areaID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tokens, err := s.load()
	if err != nil {
		return "", false, err
	}
	t, ok := tokens[areaID]
	return t, ok, nil
}

func (s *FileStore) Set(areaID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tokens, err := s.load()
	if err != nil {
		return err
	}
	tokens[areaID] = token
	return s.save(tokens)
}

func (s *FileStore) Clear(areaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tokens, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := tokens[areaID]; !ok {
		return nil
	}
	delete(tokens, areaID)
	return s.save(tokens)
}
