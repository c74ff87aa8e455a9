// Package server feeds launcher events to a [desktop.Engine] over HTTP.
//
// It plays the role of the host's event dispatcher: installs, uninstalls,
// drags, resizes and badge updates arrive as JSON requests and are applied
// to the engine one at a time. Errors carry the engine's codes:
//
//	400 INVALID_INPUT, INVALID_KEY
//	404 NOT_FOUND
//	409 DUPLICATE_ITEM, PAGE_NOT_EMPTY
//	422 ITEM_TOO_LARGE_FOR_GRID
//
// Display labels are a pass-through to the resource cache under
// /v1/labels/{key}; the layout never depends on them.
package server
