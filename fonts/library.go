package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound 表示按名称或来源找不到字体。
var ErrNotFound = errors.New("font not found")

// Library 把文档中的字体名映射到字体数据。
//
// 来源写法与 DSL 中 fonts 段一致：
//   - "embed:<name>"：内置 Go 字体；
//   - "built-in:<name>"：通过 Add 注入的字节；
//   - 其他：文件路径，相对路径基于 baseDir。
//
// 空字体名总是解析为内置默认字体。Library 可并发使用。
type Library struct {
	baseDir string

	mu      sync.RWMutex
	sources map[string]string
	blobs   map[string][]byte
	loaded  map[string][]byte
}

// NewLibrary 创建以 baseDir 解析相对路径的字体库。baseDir 为空时不允许相对路径。
func NewLibrary(baseDir string) *Library {
	return &Library{
		baseDir: baseDir,
		sources: map[string]string{},
		blobs:   map[string][]byte{},
		loaded:  map[string][]byte{},
	}
}

// Register 为字体名登记来源，重复登记以最后一次为准。
func (l *Library) Register(name, src string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sources[name] = src
	delete(l.loaded, name)
}

// Add 注入可通过 "built-in:<name>" 引用的字体数据。
func (l *Library) Add(name string, data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.blobs[name] = data
}

// Names 返回已登记的字体名。
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.sources))
	for name := range l.sources {
		names = append(names, name)
	}
	return names
}

// Bytes 返回字体名对应的数据。未登记的名字若本身是一个来源（如 "embed:gobold"）也会被接受。
func (l *Library) Bytes(name string) ([]byte, error) {
	l.mu.RLock()
	data, ok := l.loaded[name]
	src, registered := l.sources[name]
	l.mu.RUnlock()
	if ok {
		return data, nil
	}

	switch {
	case registered:
	case name == "":
		src = "embed:" + Default
	case strings.HasPrefix(name, "embed:"), strings.HasPrefix(name, "built-in:"):
		src = name
	default:
		return nil, fmt.Errorf("%w: %q 未在 fonts 中声明", ErrNotFound, name)
	}

	data, err := l.load(src)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.loaded[name] = data
	l.mu.Unlock()
	return data, nil
}

func (l *Library) load(src string) ([]byte, error) {
	if name, ok := strings.CutPrefix(src, "built-in:"); ok {
		l.mu.RLock()
		blob, found := l.blobs[name]
		l.mu.RUnlock()
		if !found {
			return nil, fmt.Errorf("%w: 找不到内置字体资源 built-in:%s", ErrNotFound, name)
		}
		return blob, nil
	}
	if strings.HasPrefix(src, "embed:") {
		return Load(src)
	}
	path := src
	if !filepath.IsAbs(path) {
		if l.baseDir == "" {
			return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 built-in: 或 embed:）", src)
		}
		path = filepath.Join(l.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取字体 %s 失败: %w", ErrNotFound, src, err)
	}
	return data, nil
}
