package journal

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/vent-alarm/internal/config"
)

// FileJournal appends entries to a file, one protojson-encoded object per line.
type FileJournal struct {
	// path is the journal file location.
	path string
	// mu serializes writes and reads of the file.
	mu   sync.Mutex
	file *os.File
}

// OpenFile opens or creates the journal file at path.
func OpenFile(path string) (*FileJournal, error) {
	path = filepath.Clean(path)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, config.DefaultFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("open journal file: %w", err)
	}

	return &FileJournal{
		path: path,
		file: f,
	}, nil
}

// Append writes entry as a single line.
func (j *FileJournal) Append(_ context.Context, entry Entry) error {
	line, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err = j.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write journal file: %w", err)
	}

	return nil
}

// List reads the journal file back.
func (j *FileJournal) List(_ context.Context, limit int) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	contents, err := os.ReadFile(j.path)
	if err != nil {
		return nil, fmt.Errorf("read journal file: %w", err)
	}

	var entries []Entry

	scanner := bufio.NewScanner(bytes.NewReader(contents))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		entry, err := decodeEntry(line)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan journal file: %w", err)
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	return entries, nil
}

// Close closes the journal file.
func (j *FileJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.file.Close()
}

// encodeEntry converts entry into protojson via structpb.
func encodeEntry(entry Entry) ([]byte, error) {
	record, err := structpb.NewStruct(map[string]any{
		"id":       entry.ID.String(),
		"at":       entry.At.Format(time.RFC3339Nano),
		"type":     entry.Type,
		"alarm_id": entry.AlarmID,
		"key":      entry.Key,
		"message":  entry.Message,
		"origin":   entry.Origin,
	})
	if err != nil {
		return nil, fmt.Errorf("build journal record: %w", err)
	}

	data, err := protojson.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode journal record: %w", err)
	}

	return data, nil
}

// decodeEntry is the inverse of encodeEntry.
func decodeEntry(line []byte) (Entry, error) {
	var record structpb.Struct
	if err := protojson.Unmarshal(line, &record); err != nil {
		return Entry{}, fmt.Errorf("decode journal record: %w", err)
	}

	fields := record.GetFields()

	id, err := uuid.Parse(fields["id"].GetStringValue())
	if err != nil {
		return Entry{}, fmt.Errorf("parse journal id: %w", err)
	}

	at, err := time.Parse(time.RFC3339Nano, fields["at"].GetStringValue())
	if err != nil {
		return Entry{}, fmt.Errorf("parse journal time: %w", err)
	}

	return Entry{
		ID:      id,
		At:      at,
		Type:    fields["type"].GetStringValue(),
		AlarmID: int(fields["alarm_id"].GetNumberValue()),
		Key:     fields["key"].GetStringValue(),
		Message: fields["message"].GetStringValue(),
		Origin:  fields["origin"].GetStringValue(),
	}, nil
}
