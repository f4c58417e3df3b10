package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store owns the entry collection and the known-tools set. It loads once in Open
// and writes both collections back to its KV after every mutation.
type Store struct {
	mu      sync.Mutex
	kv      KV
	log     *zap.Logger
	now     func() time.Time
	newID   func() string
	entries []Entry
	tools   *toolSet
	closed  bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger; nil keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source used for new entries and migrations.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides uuid generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// Open loads the store from kv. Absent keys fall back to one default entry and
// SeedTools; entries lacking an id or date are given one and written back.
// Malformed payloads are returned as errors.
func Open(ctx context.Context, kv KV, opts ...Option) (*Store, error) {
	s := &Store{
		kv:    kv,
		log:   zap.NewNop(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}

	rawEntries, haveEntries, err := kv.Get(ctx, KeyEntries)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", KeyEntries, err)
	}
	rawTools, haveTools, err := kv.Get(ctx, KeyTools)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", KeyTools, err)
	}

	needsWrite := !haveEntries || !haveTools
	if haveEntries {
		entries, mig, err := decodeEntries([]byte(rawEntries), s.now(), s.newID)
		if err != nil {
			return nil, err
		}
		if mig.changed() {
			s.log.Info("migrated stored entries",
				zap.Int("assigned_ids", mig.AssignedIDs),
				zap.Int("assigned_dates", mig.AssignedDates))
			needsWrite = true
		}
		s.entries = entries
	} else {
		s.entries = []Entry{s.blankEntry()}
	}

	if haveTools {
		tools, err := decodeTools([]byte(rawTools))
		if err != nil {
			return nil, err
		}
		s.tools = newToolSet(tools)
	} else {
		s.tools = newToolSet(SeedTools)
	}

	s.log.Debug("store loaded",
		zap.Int("entries", len(s.entries)),
		zap.Int("tools", len(s.tools.names)),
		zap.Bool("fresh", !haveEntries))

	if needsWrite {
		if err := s.persist(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) blankEntry() Entry {
	return Entry{
		ID:       s.newID(),
		Date:     s.now(),
		Category: DefaultCategory(),
	}
}

// Entries returns a copy of all entries in storage order.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Entry looks up one entry by id.
func (s *Store) Entry(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.entries[i], true
	}
	return Entry{}, false
}

// Tools returns the known tool names in insertion order.
func (s *Store) Tools() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tools.list()
}

// SortedTools returns the known tool names in collated order.
func (s *Store) SortedTools() []string {
	return SortTools(s.Tools())
}

// HasTool reports exact, case-sensitive membership.
func (s *Store) HasTool(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tools.has(name)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.entries, func(e Entry) bool { return e.ID == id })
}

// UpdateField sets one field of the entry with the given id. An unknown id is a
// no-op. Leader and runner-up values are added to the known tools.
func (s *Store) UpdateField(ctx context.Context, id string, field Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	i := s.indexOf(id)
	if i < 0 {
		s.log.Debug("update of unknown entry ignored", zap.String("id", id))
		return nil
	}

	e := s.entries[i]
	switch field {
	case FieldDate:
		t, err := ParseDate(value)
		if err != nil {
			return err
		}
		e.Date = t
	case FieldCategory:
		if !IsCategory(value) {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, value)
		}
		e.Category = value
	case FieldLeader:
		e.Leader = value
	case FieldRunnerUp:
		e.RunnerUp = value
	case FieldNotes:
		e.Notes = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s.entries[i] = e

	if field.IsToolField() && s.tools.add(value) {
		s.log.Info("tool registered", zap.String("tool", value))
	}
	return s.persist(ctx)
}

// AddEntry appends a blank entry dated now and returns it.
func (s *Store) AddEntry(ctx context.Context) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Entry{}, ErrClosed
	}
	e := s.blankEntry()
	s.entries = append(s.entries, e)
	return e, s.persist(ctx)
}

// DeleteEntry removes the entry with the given id. An unknown id is a no-op.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	return s.persist(ctx)
}

// Export writes both collections as one JSON document.
func (s *Store) Export(w io.Writer) error {
	s.mu.Lock()
	doc := snapshot{Entries: toRecords(s.entries), Tools: s.tools.list()}
	s.mu.Unlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Import replaces the entries and the tools with the members an Export
// document carries; an absent member leaves that collection as it is. A
// document with neither member is rejected.
func (s *Store) Import(ctx context.Context, r io.Reader) error {
	var doc importDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if doc.Entries == nil && doc.Tools == nil {
		return fmt.Errorf("import: %w", ErrEmptyImport)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if doc.Entries != nil {
		entries, mig, err := fromRecords(*doc.Entries, s.now(), s.newID)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		s.entries = entries
		s.log.Info("imported entries",
			zap.Int("entries", len(entries)),
			zap.Int("assigned_ids", mig.AssignedIDs),
			zap.Int("assigned_dates", mig.AssignedDates))
	}
	if doc.Tools != nil {
		s.tools = newToolSet(*doc.Tools)
		s.log.Info("imported tools", zap.Int("tools", len(*doc.Tools)))
	}
	return s.persist(ctx)
}

// Close ends the store's lifecycle. Every mutation has already been flushed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// persist writes both keys; callers hold s.mu.
func (s *Store) persist(ctx context.Context) error {
	entries, err := encodeEntries(s.entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	tools, err := encodeTools(s.tools.list())
	if err != nil {
		return fmt.Errorf("encode tools: %w", err)
	}

	if b, ok := s.kv.(batchKV); ok {
		err = b.SetMany(ctx, map[string]string{
			KeyEntries: string(entries),
			KeyTools:   string(tools),
		})
	} else {
		err = s.kv.Set(ctx, KeyEntries, string(entries))
		if err == nil {
			err = s.kv.Set(ctx, KeyTools, string(tools))
		}
	}
	if err != nil {
		s.log.Error("persist failed", zap.Error(err))
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}
