// ABOUTME: Package reconcile applies validated stream events and REST snapshots to the store
// ABOUTME: Each call is one atomic transition under the store's write lock

// Package reconcile owns the merge policy between the push stream and REST
// snapshots. Stream events patch only the fields they carry; snapshots replace
// collections but never move a task's revision backwards or forget a child.
package reconcile
