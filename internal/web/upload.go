package web

import (
    "fmt"
    "io"
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/rs/zerolog/log"
)

// saveUpload stores an uploaded PDF as <dir>/<uuid>_<name> and returns its path.
func saveUpload(dir, filename string, src io.Reader) (string, error) {
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return "", fmt.Errorf("create upload dir: %w", err)
    }
    name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
    if name == "" || name == "." || name == "/" { name = "upload.pdf" }
    localPath := filepath.Join(dir, uuid.NewString()+"_"+name)

    out, err := os.Create(localPath)
    if err != nil {
        return "", fmt.Errorf("create upload: %w", err)
    }
    if _, err := io.Copy(out, src); err != nil {
        out.Close()
        _ = os.Remove(localPath)
        return "", fmt.Errorf("write upload: %w", err)
    }
    if err := out.Close(); err != nil {
        _ = os.Remove(localPath)
        return "", fmt.Errorf("close upload: %w", err)
    }
    return localPath, nil
}

// removeUpload deletes an upload once its pages are rasterized.
func removeUpload(path string) {
    if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
        log.Warn().Err(err).Str("file", path).Msg("upload cleanup failed")
    }
}

// CleanupUploads removes files in dir older than maxAge that follow the
// <uuid>_<name> upload naming. It returns how many were removed.
func CleanupUploads(dir string, maxAge time.Duration) int {
    now := time.Now()
    removed := 0
    _ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
        if err != nil || info == nil || info.IsDir() { return nil }
        if !isUploadName(info.Name()) {
            return nil
        }
        if now.Sub(info.ModTime()) >= maxAge {
            if os.Remove(path) == nil {
                removed++
            }
        }
        return nil
    })
    if removed > 0 {
        log.Info().Int("removed", removed).Str("dir", dir).Msg("stale uploads removed")
    }
    return removed
}

func isUploadName(name string) bool {
    i := strings.IndexByte(name, '_')
    if i <= 0 { return false }
    _, err := uuid.Parse(name[:i])
    return err == nil
}
