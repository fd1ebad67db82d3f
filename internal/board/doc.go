// Package board keeps the client's single in-memory collection of projects and
// derives the two views rendered from it: the tasks of one focused project and
// the cross-project kanban board filtered by a project selection.
//
// Mutations follow one rule. The remote store is asked first; only when it
// confirms does the collection change, by applying a pure reducer that returns
// a new Collection. A failed call leaves the collection as it was. Views are
// never cached: the focused project and the kanban tasks are looked up again
// from the current collection every time they are rendered, so a commit made
// from one view is visible in the other on the next frame.
package board
