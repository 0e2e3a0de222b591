package run

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const statusFileName = "status.json"

// Status records the outcome of the last completed run in a data directory.
// The path points to the exported CSV file of that run.
type Status struct {
	RunID       uuid.UUID `json:"run_id"`
	Path        string    `json:"path"`
	Samples     int       `json:"samples"`
	Dropped     int       `json:"dropped"`
	Period      string    `json:"period"`
	CompletedAt time.Time `json:"completed_at"`
}

// Repository persists run status for later lookup (e.g. fitting the last
// recorded run without naming a file).
type Repository interface {
	// LoadStatus retrieves the last saved status.
	// Returns an empty status and nil error if none exists yet.
	LoadStatus(ctx context.Context) (Status, error)

	// SaveStatus persists the status atomically.
	SaveStatus(ctx context.Context, st Status) error
}

// FileRepository implements Repository using a JSON file in a data directory.
type FileRepository struct {
	dir string
}

// NewFileRepository creates a FileRepository for the given directory.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// LoadStatus retrieves the last saved status from disk.
// Returns an empty status and nil error if no status file exists.
func (r *FileRepository) LoadStatus(ctx context.Context) (Status, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return Status{}, nil
		}
		return Status{}, err
	}

	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return Status{}, err
	}
	return st, nil
}

// SaveStatus persists the status atomically.
// Uses atomic write (write to temp file, then rename) to prevent corruption.
func (r *FileRepository) SaveStatus(ctx context.Context, st Status) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}

	path := r.Path()
	tmp := path + ".tmp"

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Path returns the full path to the status file.
func (r *FileRepository) Path() string {
	return filepath.Join(r.dir, statusFileName)
}
