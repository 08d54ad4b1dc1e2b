// Package wizard sequences a multi-step form.
//
// A wizard is a linear list of steps, each backed by one schema rendered by
// an external widget. State is an explicit value advanced by the reducer
// functions in this package; Session drives a State against a Renderer and a
// Submitter, mounting one widget at a time and performing a single
// aggregated submission once the last step completes.
package wizard
