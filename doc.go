// Package dnd provides a headless drag-and-drop interaction and reordering
// engine for board-style UIs.
//
// Users import this single package for the complete public API: sensors,
// collision detection, the drag coordinator, auto-scroll, sortable layout
// strategies, order-key placement and the optimistic mutation layer.
//
// The package never renders. A host supplies node measurement, scrolling,
// a Scheduler for timers, and raw input events; it receives a lifecycle
// event stream (start, move, over, end, cancel) and per-item preview
// transforms in return.
package dnd
