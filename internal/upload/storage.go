package upload

import (
    "fmt"
    "io"
    "os"
    "path/filepath"
    "strings"
)

// Storage is the narrow contract for avatar uploads. The returned URL is
// what gets persisted on the user record.
type Storage interface {
    Save(filename string, r io.Reader) (string, error)
}

// LocalStorage writes files under a directory served as /uploads.
type LocalStorage struct {
    dir     string
    baseURL string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return nil, fmt.Errorf("create upload dir: %w", err)
    }
    return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStorage) Save(filename string, r io.Reader) (string, error) {
    name := filepath.Base(filename)
    dst, err := os.Create(filepath.Join(s.dir, name))
    if err != nil {
        return "", err
    }
    defer dst.Close()
    if _, err := io.Copy(dst, r); err != nil {
        return "", err
    }
    return s.baseURL + "/uploads/" + name, nil
}
