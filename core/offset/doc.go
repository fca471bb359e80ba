// Package offset persists the batch offset of the delta sync between invocations.
//
// The offset is the only durable state shared by runs. Advance is a compare and swap:
// it succeeds only while the stored value still equals the value the run started
// from, and returns ErrConflict otherwise, so overlapping runs cannot silently
// rewind each other. The memory, sql and badger backends implement the swap
// atomically. The kv backend talks to a plain get/set REST facade that has no
// conditional write; it re-reads before writing, which narrows the race but cannot
// close it.
package offset
