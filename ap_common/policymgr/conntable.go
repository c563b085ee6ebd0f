/*
 * Copyright 2020 Brightgate Inc.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at https://mozilla.org/MPL/2.0/.
 */


package policymgr

import (
	"sync"

	"go.uber.org/zap"
)

// EventKind identifies a connection table notification.
type EventKind int

// Notifications delivered to table listeners
const (
	EventModeChange EventKind = iota
	EventMCCMode
	EventMacIDUpdate
)

func (k EventKind) String() string {
	switch k {
	case EventModeChange:
		return "mode-change"
	case EventMCCMode:
		return "mcc-mode"
	case EventMacIDUpdate:
		return "mac-id-update"
	}
	return "unknown"
}

// Event describes a change to the connection table.  Conns is a snapshot of
// the table taken when the change was made.
type Event struct {
	Kind   EventKind
	VdevID uint32
	MacID  int
	MCC    bool
	Conns  []ConnInfo
}

// Listener is called with every table event, after the table lock has been
// released.  Listeners may read the table, but must not block for long.
type Listener func(Event)

// SavedConn is a connection removed by one of the StoreAndDelete operations,
// along with the position it occupied.
type SavedConn struct {
	Index int
	Info  ConnInfo
}

// ConnTable is the set of active connections.  Entries are kept compact:
// slots [0, count) are in use and deleting an entry shifts the later ones
// down.
type ConnTable struct {
	mu       sync.Mutex
	conns    [MaxConcConnections]ConnInfo
	count    int
	sessions [numModes]int

	lmu       sync.Mutex
	listeners []Listener

	slog *zap.SugaredLogger
}

// TableView provides read access to the table while its lock is held.
type TableView struct {
	t *ConnTable
}

// TableTx provides read and write access to the table while its lock is held.
// Events raised by the writes are delivered when the transaction ends.
type TableTx struct {
	TableView
	events []Event
	after  []func()
}

// NewConnTable returns an empty connection table.
func NewConnTable(slog *zap.SugaredLogger) *ConnTable {
	if slog == nil {
		slog = zap.NewNop().Sugar()
	}
	return &ConnTable{slog: slog}
}

// AddListener registers a callback for table events.
func (t *ConnTable) AddListener(l Listener) {
	t.lmu.Lock()
	t.listeners = append(t.listeners, l)
	t.lmu.Unlock()
}

func (t *ConnTable) notify(events []Event) {
	if len(events) == 0 {
		return
	}

	t.lmu.Lock()
	listeners := make([]Listener, len(t.listeners))
	copy(listeners, t.listeners)
	t.lmu.Unlock()

	for _, ev := range events {
		for _, l := range listeners {
			l(ev)
		}
	}
}

// View runs fn with the table locked for reading.
func (t *ConnTable) View(fn func(v *TableView)) {
	t.mu.Lock()
	fn(&TableView{t: t})
	t.mu.Unlock()
}

// Update runs fn with the table locked.  Any events raised by fn are delivered
// to listeners after the lock is dropped, whether or not fn succeeds.
func (t *ConnTable) Update(fn func(tx *TableTx) error) error {
	t.mu.Lock()
	tx := &TableTx{TableView: TableView{t: t}}
	mccBefore := tx.mcc()
	err := fn(tx)
	if mccAfter := tx.mcc(); mccAfter != mccBefore {
		tx.events = append(tx.events, Event{
			Kind:  EventMCCMode,
			MCC:   mccAfter,
			Conns: tx.Conns(),
		})
	}
	events, after := tx.events, tx.after
	t.mu.Unlock()

	for _, fn := range after {
		fn()
	}
	t.notify(events)
	return err
}

// Count returns the number of active connections.
func (v *TableView) Count() int {
	return v.t.count
}

// CountForMode returns the number of active connections in the given mode.
func (v *TableView) CountForMode(mode Mode) int {
	if !mode.Valid() {
		return 0
	}
	return v.t.sessions[mode]
}

// Conns returns a copy of the active connections, in table order.
func (v *TableView) Conns() []ConnInfo {
	conns := make([]ConnInfo, v.t.count)
	copy(conns, v.t.conns[:v.t.count])
	return conns
}

// Conn returns the connection in the given slot.
func (v *TableView) Conn(slot int) (ConnInfo, bool) {
	if slot < 0 || slot >= v.t.count {
		return ConnInfo{}, false
	}
	return v.t.conns[slot], true
}

func (v *TableView) find(vdev uint32) int {
	for i := 0; i < v.t.count; i++ {
		if v.t.conns[i].VdevID == vdev {
			return i
		}
	}
	return -1
}

// FindByVdev returns the connection belonging to a vdev.
func (v *TableView) FindByVdev(vdev uint32) (ConnInfo, bool) {
	if i := v.find(vdev); i >= 0 {
		return v.t.conns[i], true
	}
	return ConnInfo{}, false
}

// Two connections sharing a MAC on different channels are time-sharing it.
func (v *TableView) mcc() bool {
	conns := v.t.conns[:v.t.count]
	for i := range conns {
		for j := i + 1; j < len(conns); j++ {
			if conns[i].MacID == conns[j].MacID &&
				conns[i].Freq != conns[j].Freq {
				return true
			}
		}
	}
	return false
}

// afterUnlock defers fn, typically logging, until the lock is released.
func (tx *TableTx) afterUnlock(fn func()) {
	tx.after = append(tx.after, fn)
}

func (tx *TableTx) raise(kind EventKind, c ConnInfo) {
	tx.events = append(tx.events, Event{
		Kind:   kind,
		VdevID: c.VdevID,
		MacID:  c.MacID,
		Conns:  tx.Conns(),
	})
}

// Update stores a record in the given slot.  The slot must be in use, or be
// the first free slot.
func (tx *TableTx) Update(slot int, rec ConnInfo) error {
	t := tx.t

	if slot < 0 || slot > t.count {
		return newError(InvalidArgument, "connection slot out of range",
			"slot", slot, "count", t.count)
	}
	if slot >= MaxConcConnections {
		return newError(CapacityExceeded, "connection table full",
			"slot", slot, "max", MaxConcConnections)
	}
	if err := rec.validate(); err != nil {
		return err
	}

	rec.InUse = true
	if slot < t.count {
		t.sessions[t.conns[slot].Mode]--
	} else {
		t.count++
	}
	t.conns[slot] = rec
	t.sessions[rec.Mode]++
	return nil
}

// UpdateConcList adds a connection, or replaces the record of a vdev already
// in the table.
func (tx *TableTx) UpdateConcList(rec ConnInfo) error {
	t := tx.t

	slot := tx.find(rec.VdevID)
	if slot < 0 {
		if t.count >= MaxConcConnections {
			tx.afterUnlock(func() {
				t.slog.Errorw("connection table full",
					"vdev", rec.VdevID, "mode", rec.Mode,
					"freq", rec.Freq, "max", MaxConcConnections)
			})
			return newError(CapacityExceeded, "connection table full",
				"vdev", rec.VdevID, "max", MaxConcConnections)
		}
		slot = t.count
	}

	old := t.conns[slot]
	if err := tx.Update(slot, rec); err != nil {
		return err
	}

	tx.afterUnlock(func() {
		t.slog.Debugw("connection updated", "slot", slot,
			"conn", rec.String())
	})
	if !old.InUse || old.MacID != rec.MacID || old.VdevID != rec.VdevID {
		tx.raise(EventMacIDUpdate, rec)
	}
	if !old.InUse || old.Mode != rec.Mode || old.Freq != rec.Freq {
		tx.raise(EventModeChange, rec)
	}
	return nil
}

func (tx *TableTx) remove(slot int) ConnInfo {
	t := tx.t

	c := t.conns[slot]
	copy(t.conns[slot:t.count], t.conns[slot+1:t.count])
	t.count--
	t.conns[t.count] = ConnInfo{}
	t.sessions[c.Mode]--
	return c
}

// Deleting entries from the end keeps the saved indices valid for Restore,
// which reinserts them in ascending order.
func (tx *TableTx) storeAndDelete(match func(ConnInfo) bool, all bool) []SavedConn {
	var slots []int
	for i := 0; i < tx.t.count; i++ {
		if match(tx.t.conns[i]) {
			slots = append(slots, i)
			if !all {
				break
			}
		}
	}

	saved := make([]SavedConn, len(slots))
	for i := len(slots) - 1; i >= 0; i-- {
		saved[i] = SavedConn{
			Index: slots[i],
			Info:  tx.remove(slots[i]),
		}
	}
	return saved
}

// StoreAndDelete removes the first connection with the given mode, or all of
// them, returning what was removed so it can be restored.
func (tx *TableTx) StoreAndDelete(mode Mode, all bool) []SavedConn {
	saved := tx.storeAndDelete(func(c ConnInfo) bool {
		return c.Mode == mode
	}, all)

	for _, s := range saved {
		if got := s.Info.Mode; got != mode {
			tx.afterUnlock(func() {
				tx.t.slog.DPanicw("stored connection has wrong mode",
					"want", mode, "got", got)
			})
		}
	}
	return saved
}

// StoreAndDeleteByVdev removes the connection belonging to a vdev.
func (tx *TableTx) StoreAndDeleteByVdev(vdev uint32) []SavedConn {
	return tx.storeAndDelete(func(c ConnInfo) bool {
		return c.VdevID == vdev
	}, false)
}

// StoreAndDeleteByChannelAndMode removes every connection of the given mode
// operating on freq.
func (tx *TableTx) StoreAndDeleteByChannelAndMode(freq uint32, mode Mode) []SavedConn {
	return tx.storeAndDelete(func(c ConnInfo) bool {
		return c.Freq == freq && c.Mode == mode
	}, true)
}

// Restore reinserts connections removed by one of the StoreAndDelete
// operations at their original positions.  If they don't fit, the table is
// left untouched.
func (tx *TableTx) Restore(saved []SavedConn) error {
	t := tx.t

	if t.count+len(saved) > MaxConcConnections {
		return newError(CapacityExceeded, "no room to restore connections",
			"count", t.count, "saved", len(saved))
	}

	for _, s := range saved {
		slot := s.Index
		if slot > t.count {
			slot = t.count
		}
		copy(t.conns[slot+1:t.count+1], t.conns[slot:t.count])
		rec := s.Info
		rec.InUse = true
		t.conns[slot] = rec
		t.count++
		t.sessions[rec.Mode]++
	}
	return nil
}

// DeleteConnection removes a vdev's connection from the table.
func (tx *TableTx) DeleteConnection(vdev uint32) error {
	slot := tx.find(vdev)
	if slot < 0 {
		return newError(NotFound, "no connection for vdev", "vdev", vdev)
	}

	c := tx.remove(slot)
	tx.afterUnlock(func() {
		tx.t.slog.Debugw("connection deleted", "slot", slot,
			"conn", c.String())
	})
	tx.raise(EventModeChange, c)
	return nil
}

// Count returns the number of active connections.
func (t *ConnTable) Count() int {
	var n int
	t.View(func(v *TableView) { n = v.Count() })
	return n
}

// CountForMode returns the number of active connections in the given mode.
func (t *ConnTable) CountForMode(mode Mode) int {
	var n int
	t.View(func(v *TableView) { n = v.CountForMode(mode) })
	return n
}

// Conns returns a snapshot of the active connections.
func (t *ConnTable) Conns() []ConnInfo {
	var conns []ConnInfo
	t.View(func(v *TableView) { conns = v.Conns() })
	return conns
}

// UpdateConcList adds or updates a connection.
func (t *ConnTable) UpdateConcList(rec ConnInfo) error {
	return t.Update(func(tx *TableTx) error {
		return tx.UpdateConcList(rec)
	})
}

// DeleteConnection removes a vdev's connection.
func (t *ConnTable) DeleteConnection(vdev uint32) error {
	return t.Update(func(tx *TableTx) error {
		return tx.DeleteConnection(vdev)
	})
}

// StoreAndDelete removes connections with the given mode.
func (t *ConnTable) StoreAndDelete(mode Mode, all bool) []SavedConn {
	var saved []SavedConn
	t.Update(func(tx *TableTx) error {
		saved = tx.StoreAndDelete(mode, all)
		return nil
	})
	return saved
}

// StoreAndDeleteByVdev removes a vdev's connection.
func (t *ConnTable) StoreAndDeleteByVdev(vdev uint32) []SavedConn {
	var saved []SavedConn
	t.Update(func(tx *TableTx) error {
		saved = tx.StoreAndDeleteByVdev(vdev)
		return nil
	})
	return saved
}

// StoreAndDeleteByChannelAndMode removes connections of a mode on a channel.
func (t *ConnTable) StoreAndDeleteByChannelAndMode(freq uint32, mode Mode) []SavedConn {
	var saved []SavedConn
	t.Update(func(tx *TableTx) error {
		saved = tx.StoreAndDeleteByChannelAndMode(freq, mode)
		return nil
	})
	return saved
}

// Restore reinserts previously stored connections.
func (t *ConnTable) Restore(saved []SavedConn) error {
	return t.Update(func(tx *TableTx) error {
		return tx.Restore(saved)
	})
}
