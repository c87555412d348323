// Package dashboard holds the visual tree the smart-tent display is drawn
// from, and the renderer and poller that keep it current.
package dashboard

import (
	"slices"
	"sync"
)

// Element IDs the renderer writes to.
const (
	IDTempInterior     = "tempInterior"
	IDHumidityInterior = "humidityInterior"
	IDGasSensor        = "gasSensor"
	IDGasSensorBar     = "gasSensorBar"
	IDMotionInterior   = "motionInterior"
	IDTempExterior     = "tempExterior"
	IDHumidityExterior = "humidityExterior"
	IDWindSpeed        = "windSpeed"
	IDMotionExterior   = "motionExterior"
	IDSignal4G         = "signal4g"
	IDSignalBars       = "signal-bars"
	IDBattery          = "battery"
	IDConnectionStatus = "connectionStatus"
	IDStatusIndicator  = "status-indicator"
	IDCriticalAlerts   = "criticalAlerts"

	ClassBar          = "bar"
	ClassAlertMessage = "alert-message"
	ClassVisible      = "visible"
)

// DefaultSignalBars is the number of segments in the signal-bars container.
const DefaultSignalBars = 4

// Element is a node of the visual tree. Mutate it only inside Tree.Update;
// Tree.Get hands out copies.
type Element struct {
	ID       string
	Text     string
	Classes  []string
	Style    map[string]string
	Children []*Element
}

func (e *Element) HasClass(c string) bool {
	return slices.Contains(e.Classes, c)
}

func (e *Element) AddClass(c string) {
	if !e.HasClass(c) {
		e.Classes = append(e.Classes, c)
	}
}

func (e *Element) RemoveClass(cs ...string) {
	e.Classes = slices.DeleteFunc(e.Classes, func(x string) bool {
		return slices.Contains(cs, x)
	})
}

// SetClassName replaces the whole class list, like assigning className.
func (e *Element) SetClassName(cs ...string) {
	e.Classes = append(e.Classes[:0:0], cs...)
}

func (e *Element) SetStyle(prop, value string) {
	if e.Style == nil {
		e.Style = make(map[string]string)
	}
	e.Style[prop] = value
}

// ChildrenWithClass returns the direct children carrying class c, in order.
func (e *Element) ChildrenWithClass(c string) []*Element {
	var out []*Element
	for _, ch := range e.Children {
		if ch.HasClass(c) {
			out = append(out, ch)
		}
	}
	return out
}

func (e *Element) clone() *Element {
	cp := &Element{
		ID:      e.ID,
		Text:    e.Text,
		Classes: slices.Clone(e.Classes),
	}
	if e.Style != nil {
		cp.Style = make(map[string]string, len(e.Style))
		for k, v := range e.Style {
			cp.Style[k] = v
		}
	}
	for _, ch := range e.Children {
		cp.Children = append(cp.Children, ch.clone())
	}
	return cp
}

// Tree is a flat registry of top-level elements keyed by ID. The renderer
// writes to it from the poll goroutine while the UI reads copies.
type Tree struct {
	mu       sync.RWMutex
	elements map[string]*Element
	version  uint64
}

func NewTree() *Tree {
	return &Tree{elements: make(map[string]*Element)}
}

// NewDefaultTree builds every element of the dashboard layout, with bars
// segments inside signal-bars.
func NewDefaultTree(bars int) *Tree {
	t := NewTree()
	for _, id := range []string{
		IDTempInterior, IDHumidityInterior, IDGasSensor, IDGasSensorBar, IDMotionInterior,
		IDTempExterior, IDHumidityExterior, IDWindSpeed, IDMotionExterior,
		IDSignal4G, IDBattery, IDConnectionStatus, IDStatusIndicator,
	} {
		t.Add(&Element{ID: id, Text: "--"})
	}

	signal := &Element{ID: IDSignalBars}
	for i := 0; i < bars; i++ {
		signal.Children = append(signal.Children, &Element{Classes: []string{ClassBar}})
	}
	t.Add(signal)

	t.Add(&Element{
		ID:       IDCriticalAlerts,
		Children: []*Element{{Classes: []string{ClassAlertMessage}}},
	})
	return t
}

// Add registers or replaces an element.
func (t *Tree) Add(e *Element) {
	t.mu.Lock()
	t.elements[e.ID] = e
	t.version++
	t.mu.Unlock()
}

// Remove drops an element; updates addressed to it become no-ops.
func (t *Tree) Remove(id string) {
	t.mu.Lock()
	delete(t.elements, id)
	t.version++
	t.mu.Unlock()
}

// Update runs fn with exclusive access. get returns nil for unknown IDs.
func (t *Tree) Update(fn func(get func(id string) *Element)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(func(id string) *Element { return t.elements[id] })
	t.version++
}

// Get returns a deep copy of an element, or nil.
func (t *Tree) Get(id string) *Element {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.elements[id]
	if !ok {
		return nil
	}
	return e.clone()
}

// Version increments on every mutation; equal versions mean equal content.
func (t *Tree) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}
