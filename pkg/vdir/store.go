// Package vdir stores events as individual iCalendar files in a flat
// directory, one <uid>.ics per event.
package vdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rusq/fsadapter"
	log "github.com/sirupsen/logrus"

	"github.com/klokku/kladd/pkg/event"
	"github.com/klokku/kladd/pkg/ics"
)

type Store struct {
	dir         string
	defaultZone *time.Location
}

// NewStore opens the calendar directory, creating it when missing. Floating
// times in stored files are read in defaultZone.
func NewStore(dir string, defaultZone *time.Location) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("calendar directory is not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating calendar directory: %w", err)
	}
	return &Store{dir: dir, defaultZone: defaultZone}, nil
}

func (s *Store) Put(ctx context.Context, e event.Event) error {
	if err := validUID(e.UID); err != nil {
		return err
	}
	data, err := ics.Encode(e)
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", e.UID, err)
	}
	if err := s.writeAtomic(s.path(e.UID), []byte(data)); err != nil {
		return fmt.Errorf("writing event %s: %w", e.UID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, uid string) (event.Event, error) {
	if err := validUID(uid); err != nil {
		return event.Event{}, err
	}
	data, err := os.ReadFile(s.path(uid))
	if os.IsNotExist(err) {
		return event.Event{}, event.ErrNotFound
	}
	if err != nil {
		return event.Event{}, fmt.Errorf("reading event %s: %w", uid, err)
	}
	e, err := ics.Decode(data, s.defaultZone)
	if err != nil {
		return event.Event{}, fmt.Errorf("decoding event %s: %w", uid, err)
	}
	return e, nil
}

func (s *Store) List(ctx context.Context) ([]event.Event, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading calendar directory: %w", err)
	}

	events := make([]event.Event, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".ics") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		e, err := ics.Decode(data, s.defaultZone)
		if err != nil {
			// A single broken file must not take the whole calendar down.
			log.Warnf("skipping unreadable calendar file %s: %v", entry.Name(), err)
			continue
		}
		events = append(events, e)
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].Start.Equal(events[j].Start) {
			return events[i].UID < events[j].UID
		}
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

func (s *Store) Delete(ctx context.Context, uid string) error {
	if err := validUID(uid); err != nil {
		return err
	}
	err := os.Remove(s.path(uid))
	if os.IsNotExist(err) {
		return event.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting event %s: %w", uid, err)
	}
	return nil
}

// Export copies every event file into fsa and returns how many it wrote.
// The target can be a directory or a zip archive, whatever fsadapter.New
// was given.
func (s *Store) Export(fsa fsadapter.FS) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("reading calendar directory: %w", err)
	}

	exported := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".ics") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return exported, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		if err := fsa.WriteFile(entry.Name(), data, 0o644); err != nil {
			return exported, fmt.Errorf("exporting %s: %w", entry.Name(), err)
		}
		exported++
	}
	return exported, nil
}

func (s *Store) path(uid string) string {
	return filepath.Join(s.dir, uid+".ics")
}

func validUID(uid string) error {
	if uid == "" || uid == "." || uid == ".." || strings.ContainsAny(uid, "/\\") {
		return fmt.Errorf("not a usable event UID: %q", uid)
	}
	return nil
}

// writeAtomic writes through a temp file in the same directory and renames
// it over the target, so readers never see a half-written event.
func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".kladd-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
