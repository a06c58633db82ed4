// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package results owns the accumulated result sets of one conversation.
package results

import (
	"sort"
	"strconv"
	"time"
)

// =============================================================================
// RESULT STORE
// =============================================================================

// Store accumulates the result sets of one conversation and derives the
// tab view the data panel renders.
//
// Entries live in a map keyed by ID plus an order slice; the map carries no
// ordering guarantee, so all iteration goes through the order slice. One
// store instance belongs to one active conversation, with no aliasing
// between conversations.
type Store struct {
	entries map[string]*Entry
	order   []string

	// Derived presentation state, rebuilt after every insertion and on
	// Reopen. tabs maps final label -> that entry's rows; labels preserves
	// entry order. flat is the single-entry convenience view.
	tabs   map[string][]Record
	labels []string
	flat   []Record

	// Panel visibility flags. Close keeps the accumulated entries.
	open      bool
	minimized bool

	// Subscribers, notified synchronously after every mutating call.
	subs    map[int]func()
	nextSub int

	// lastID guards against UnixNano collisions under rapid inserts.
	lastID int64

	// now is swappable for tests.
	now func() time.Time
}

// NewStore creates an empty result store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*Entry),
		tabs:    make(map[string][]Record),
		subs:    make(map[int]func()),
		now:     time.Now,
	}
}

// =============================================================================
// ADD OPERATIONS
// =============================================================================

// AddFlatResult appends a flat result set and returns the new entry ID.
//
// kind defaults to KindData when empty. metadata is opaque caller data,
// stored on the entry but unused by tab derivation. The panel is opened and
// unminimized so the new result is visible immediately.
func (s *Store) AddFlatResult(rows []Record, title string, kind Kind, metadata map[string]any) string {
	if kind == "" {
		kind = KindData
	}

	entry := &Entry{
		ID:        s.nextID(),
		Title:     title,
		Kind:      kind,
		Rows:      rows,
		Metadata:  metadata,
		CreatedAt: s.now(),
	}
	s.append(entry)
	return entry.ID
}

// AddTabbedResult appends a multi-sub-table result set (a technical audit)
// and returns the new entry ID.
//
// The entry's rows stay empty by construction: the audit's sub-tables are
// metadata for the renderer, not input to label derivation, so the entry
// contributes exactly one top-level tab. An empty tabs mapping is accepted
// and simply produces no sub-tabs.
func (s *Store) AddTabbedResult(tabs map[string][]Record, title string, sourceURL string) string {
	entry := &Entry{
		ID:        s.nextID(),
		Title:     title,
		Kind:      KindTechnicalAudit,
		Tabs:      tabs,
		SourceURL: sourceURL,
		CreatedAt: s.now(),
	}
	s.append(entry)
	return entry.ID
}

// append inserts the entry, re-derives the view, opens the panel, and
// notifies subscribers.
func (s *Store) append(entry *Entry) {
	s.entries[entry.ID] = entry
	s.order = append(s.order, entry.ID)
	s.derive()
	s.open = true
	s.minimized = false
	s.notify()
}

// nextID allocates a unique, monotonic, time-derived entry ID.
// Rapid successive inserts within one nanosecond tick still get distinct,
// strictly increasing IDs.
func (s *Store) nextID() string {
	id := s.now().UnixNano()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return "res_" + strconv.FormatInt(id, 36)
}

// =============================================================================
// VISIBILITY OPERATIONS
// =============================================================================

// Reopen re-derives the tab view and shows the panel again.
// No-op when the store is empty. Stored entries are never altered.
func (s *Store) Reopen() {
	if len(s.order) == 0 {
		return
	}
	s.derive()
	s.open = true
	s.minimized = false
	s.notify()
}

// Close hides the panel. Accumulated results survive for Reopen.
func (s *Store) Close() {
	s.open = false
	s.notify()
}

// Minimize collapses the panel without touching entries or derived tabs.
func (s *Store) Minimize() {
	s.minimized = true
	s.notify()
}

// Maximize restores a minimized panel.
func (s *Store) Maximize() {
	s.minimized = false
	s.notify()
}

// Reset clears entries, derived views, and visibility flags back to the
// initial state. Used when starting a new conversation. The clear is
// atomic: no stale reference to the old entries outlives it.
func (s *Store) Reset() {
	s.entries = make(map[string]*Entry)
	s.order = nil
	s.tabs = make(map[string][]Record)
	s.labels = nil
	s.flat = nil
	s.open = false
	s.minimized = false
	s.notify()
}

// =============================================================================
// DERIVED VIEW
// =============================================================================

// derive rebuilds the label -> rows tab mapping and the flat view.
//
// Tabbed entries contribute their own (empty) rows under their label; their
// sub-table content is consumed by the renderer straight from the entry.
// The flat view is populated only when exactly one entry exists, for
// callers that render a single table without tab chrome.
func (s *Store) derive() {
	ordered := s.orderedEntries()
	labels := deriveLabels(ordered)

	s.tabs = make(map[string][]Record, len(ordered))
	s.labels = labels
	for i, e := range ordered {
		s.tabs[labels[i]] = e.Rows
	}

	if len(ordered) == 1 {
		s.flat = ordered[0].Rows
	} else {
		s.flat = nil
	}
}

// orderedEntries returns the entries in insertion order.
func (s *Store) orderedEntries() []*Entry {
	ordered := make([]*Entry, 0, len(s.order))
	for _, id := range s.order {
		ordered = append(ordered, s.entries[id])
	}
	return ordered
}

// =============================================================================
// READ ACCESS
// =============================================================================

// Tabs returns the derived final-label -> rows mapping.
// Callers must not mutate the returned map or row slices.
func (s *Store) Tabs() map[string][]Record {
	return s.tabs
}

// Labels returns the final tab labels in entry insertion order.
func (s *Store) Labels() []string {
	return s.labels
}

// FlatView returns the single-entry convenience view, or nil when zero or
// multiple entries exist.
func (s *Store) FlatView() []Record {
	return s.flat
}

// Entries returns the stored entries in insertion order, for consumers that
// need raw Kind, SourceURL, or Tabs per entry.
func (s *Store) Entries() []*Entry {
	return s.orderedEntries()
}

// Entry returns the entry with the given ID, or nil.
func (s *Store) Entry(id string) *Entry {
	return s.entries[id]
}

// Len returns the number of accumulated entries.
func (s *Store) Len() int {
	return len(s.order)
}

// IsEmpty returns true when no results have been accumulated.
func (s *Store) IsEmpty() bool {
	return len(s.order) == 0
}

// IsOpen returns true when the panel is visible.
func (s *Store) IsOpen() bool {
	return s.open
}

// IsMinimized returns true when the panel is collapsed.
func (s *Store) IsMinimized() bool {
	return s.minimized
}

// =============================================================================
// CHANGE NOTIFICATION
// =============================================================================

// Subscribe registers a callback invoked synchronously after every mutating
// call. It returns an unsubscribe function. The contract is "notify after
// every mutation", independent of any UI framework's binding idiom.
func (s *Store) Subscribe(fn func()) func() {
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		delete(s.subs, id)
	}
}

// notify invokes all subscribers in registration order.
func (s *Store) notify() {
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	// Registration IDs are monotonic, so sorting them gives registration order.
	sort.Ints(ids)
	for _, id := range ids {
		s.subs[id]()
	}
}
