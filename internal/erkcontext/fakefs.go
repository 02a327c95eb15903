package erkcontext

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FakeFS is an in-memory FS for tests. Constructor-only initial state.
type FakeFS struct {
	Files map[string][]byte
	Dirs  map[string]bool
}

// NewFakeFS constructs an empty FakeFS.
func NewFakeFS() *FakeFS {
	return &FakeFS{Files: map[string][]byte{}, Dirs: map[string]bool{}}
}

func (f *FakeFS) MkdirAll(path string, perm os.FileMode) error {
	f.Dirs[path] = true
	return nil
}

func (f *FakeFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	f.Dirs[filepath.Dir(path)] = true
	f.Files[path] = append([]byte(nil), data...)
	return nil
}

func (f *FakeFS) ReadFile(path string) ([]byte, error) {
	data, ok := f.Files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return data, nil
}

func (f *FakeFS) RemoveAll(path string) error {
	for p := range f.Files {
		if p == path || strings.HasPrefix(p, path+"/") {
			delete(f.Files, p)
		}
	}
	delete(f.Dirs, path)
	return nil
}

func (f *FakeFS) Exists(path string) bool {
	if _, ok := f.Files[path]; ok {
		return true
	}
	return f.Dirs[path]
}

// RealFS is the production FS backed by the standard library os package.
type RealFS struct{}

func (RealFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

func (RealFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (RealFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (RealFS) RemoveAll(path string) error { return os.RemoveAll(path) }

func (RealFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
