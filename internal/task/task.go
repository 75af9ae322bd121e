package task

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Status describes where a task is in its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// Task is one accepted upload and its processing state.
type Task struct {
	ID        string
	Filename  string
	Language  string
	CreatedAt time.Time
	Status    Status
	Error     string
}

// NewID returns a 32-character lowercase hex identifier.
func NewID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// ValidID reports whether id has the exact shape NewID produces. Identifiers
// land in filesystem paths, so anything else is rejected before path use.
func ValidID(id string) bool {
	if len(id) != 32 {
		return false
	}
	for _, c := range id {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}

// Paths is the on-disk layout of a task's result artifacts.
type Paths struct {
	Folder string
	Text   string
	JSON   string
}

// ResultPaths maps a task ID to its artifact locations under resultsDir.
func ResultPaths(resultsDir, id string) Paths {
	folder := filepath.Join(resultsDir, id)
	return Paths{
		Folder: folder,
		Text:   filepath.Join(folder, "result.txt"),
		JSON:   filepath.Join(folder, "result.json"),
	}
}

// Complete reports whether both result artifacts exist. Artifact presence is
// the source of truth for completion, so finished tasks survive restarts.
func (p Paths) Complete() bool {
	return fileExists(p.Text) && fileExists(p.JSON)
}

// Started reports whether the task folder has been created.
func (p Paths) Started() bool {
	info, err := os.Stat(p.Folder)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
