// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/taskx/internal/models"
)

// ErrInjected is returned by the failing doubles in this package.
var ErrInjected = errors.New("injected failure")

// Clock is a manually advanced clock for engines and trackers that take a func() time.Time.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a [Clock] at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Days returns a duration of n days.
func Days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// TaskOpt customizes a task built with [NewTask].
type TaskOpt func(*models.Task)

// Completed marks the built task completed.
func Completed() TaskOpt {
	return func(t *models.Task) { t.Completed = true }
}

// Due sets the due date of the built task.
func Due(at time.Time) TaskOpt {
	return func(t *models.Task) { t.DueDate = &at }
}

// NewTask builds a valid task created at createdAt.
func NewTask(id, text string, createdAt time.Time, opts ...TaskOpt) models.Task {
	task := models.Task{ID: id, Text: text, CreatedAt: createdAt}
	for _, opt := range opts {
		opt(&task)
	}
	return task
}

// BlobStore is an in-memory blob store whose reads and writes can be made to fail.
type BlobStore struct {
	mu       sync.Mutex
	Blobs    map[string][]byte
	FailGet  bool
	FailPut  bool
	PutCalls int
}

// NewBlobStore creates an empty [BlobStore].
func NewBlobStore() *BlobStore {
	return &BlobStore{Blobs: make(map[string][]byte)}
}

func (s *BlobStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(key)
}

func (s *BlobStore) get(key string) ([]byte, bool, error) {
	if s.FailGet {
		return nil, false, ErrInjected
	}
	data, ok := s.Blobs[key]
	return data, ok, nil
}

// Update runs fn under the store lock and applies its writes. PutCalls counts non-empty writes.
func (s *BlobStore) Update(fn func(get func(string) ([]byte, bool, error)) (map[string][]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blobs, err := fn(s.get)
	if err != nil {
		return err
	}
	if len(blobs) == 0 {
		return nil
	}

	s.PutCalls++
	if s.FailPut {
		return ErrInjected
	}
	for k, v := range blobs {
		s.Blobs[k] = v
	}
	return nil
}

// Set stores raw data under key.
func (s *BlobStore) Set(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Blobs[key] = data
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
