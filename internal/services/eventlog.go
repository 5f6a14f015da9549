package services

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Platypus4356/mailTrackerServer/internal/models"
	"github.com/Platypus4356/mailTrackerServer/internal/monitoring"
)

const (
	// ActiveLogName is the file currently being appended to. Rotation
	// renames it to a timestamped sibling and starts a fresh one.
	ActiveLogName = "opens.log"

	rotatedPrefix = "opens-"
	rotatedSuffix = ".log"
	// nanosecond precision keeps rotated names unique and lexicographically
	// ordered by rotation time
	rotationStamp = "20060102T150405.000000000Z"

	maxLineBytes = 1024 * 1024
)

// EventLogService is the single writer to the append-only open-event log.
// It owns the in-memory index; every append goes to disk first and reaches
// the index only after the write succeeded, so the index never holds events
// that are absent from the log.
type EventLogService struct {
	logger  *slog.Logger
	metrics *monitoring.Metrics
	dir     string
	maxSize int64

	mu     sync.Mutex // serializes rotation and appends
	active *os.File
	size   int64

	idx *openIndex
}

func NewEventLogService(dir string, maxSize int64, logger *slog.Logger, metrics *monitoring.Metrics) (*EventLogService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dir, ActiveLogName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}

	return &EventLogService{
		logger:  logger,
		metrics: metrics,
		dir:     dir,
		maxSize: maxSize,
		active:  f,
		size:    info.Size(),
		idx:     newOpenIndex(),
	}, nil
}

// Append durably writes one event as a JSON line, rotating first when the
// active file already exceeds the size threshold. The index is updated only
// after the write succeeded; a failed write returns the error and leaves
// the index untouched.
func (s *EventLogService) Append(ev models.OpenEvent) error {
	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.size > s.maxSize {
		if err := s.rotateLocked(); err != nil {
			return fmt.Errorf("rotate log: %w", err)
		}
	}

	n, err := s.active.Write(line)
	s.size += int64(n)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	s.idx.record(ev)
	return nil
}

func (s *EventLogService) rotateLocked() error {
	if err := s.active.Close(); err != nil {
		return err
	}

	activePath := filepath.Join(s.dir, ActiveLogName)
	rotatedPath := filepath.Join(s.dir, rotatedPrefix+time.Now().UTC().Format(rotationStamp)+rotatedSuffix)
	if err := os.Rename(activePath, rotatedPath); err != nil {
		return err
	}

	f, err := os.OpenFile(activePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	s.active = f
	s.size = 0

	s.metrics.LogRotations.Inc()
	s.logger.Info("Rotated open log", "archived", rotatedPath)
	return nil
}

// Replay rebuilds the index from every log file in the data dir: rotated
// siblings first (their names sort chronologically), then the active file.
// Malformed lines, such as a torn trailing line left by a crash, are
// skipped rather than fatal.
func (s *EventLogService) Replay() error {
	rotated, err := filepath.Glob(filepath.Join(s.dir, rotatedPrefix+"*"+rotatedSuffix))
	if err != nil {
		return fmt.Errorf("list rotated logs: %w", err)
	}
	sort.Strings(rotated)

	total := 0
	for _, path := range append(rotated, filepath.Join(s.dir, ActiveLogName)) {
		n, err := s.replayFile(path)
		if err != nil {
			return fmt.Errorf("replay %s: %w", path, err)
		}
		total += n
	}

	s.logger.Info("Replayed open log", "events", total, "files", len(rotated)+1)
	return nil
}

func (s *EventLogService) replayFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	count := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev models.OpenEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			s.logger.Warn("Skipping malformed log line", "file", path, "error", err)
			continue
		}
		s.idx.record(ev)
		count++
	}
	return count, sc.Err()
}

// Lookup returns a copy of the recorded events for one email, in append
// (chronological) order. Unknown ids yield an empty slice, not an error.
func (s *EventLogService) Lookup(emailID string) []models.OpenEvent {
	return s.idx.lookup(emailID)
}

// All returns a copy of every indexed event in append order.
func (s *EventLogService) All() []models.OpenEvent {
	return s.idx.dump()
}

func (s *EventLogService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Close()
}

// openIndex maps an email id to its ordered open events. An RWMutex keeps
// concurrent readers from ever observing a partially applied append.
type openIndex struct {
	mu   sync.RWMutex
	byID map[string][]models.OpenEvent
	all  []models.OpenEvent
}

func newOpenIndex() *openIndex {
	return &openIndex{byID: make(map[string][]models.OpenEvent)}
}

func (i *openIndex) record(ev models.OpenEvent) {
	i.mu.Lock()
	i.byID[ev.EmailID] = append(i.byID[ev.EmailID], ev)
	i.all = append(i.all, ev)
	i.mu.Unlock()
}

func (i *openIndex) lookup(emailID string) []models.OpenEvent {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]models.OpenEvent, len(i.byID[emailID]))
	copy(out, i.byID[emailID])
	return out
}

func (i *openIndex) dump() []models.OpenEvent {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]models.OpenEvent, len(i.all))
	copy(out, i.all)
	return out
}
