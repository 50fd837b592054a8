// Package events carries refresh signals between the task store and its presentation layers.
//
// [Bus] is an in-process observer registry: subscribers register for one or more [Kind]s and
// receive [Event]s on a buffered channel. Publishing never blocks; a subscriber that falls behind
// misses events rather than stalling the publisher, which is acceptable because every signal only
// asks the receiver to recompute from the current state.
//
// [Watcher] bridges other processes into the bus. It watches the SQLite database file (and its WAL
// and journal) with fsnotify and publishes a debounced [TaskUpdated] when another process writes.
package events
