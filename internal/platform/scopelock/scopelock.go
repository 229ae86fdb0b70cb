// Package scopelock serializes check-then-act writes per scope key.
//
// The overlap validator reads sibling records and the service then persists;
// without a serialization point two concurrent writers for the same scope
// could both pass validation against a stale snapshot and commit overlapping
// windows. Services take this lock around the whole validate+persist
// sequence; reads never need it.
package scopelock

import "context"

// Locker serializes writers per scope key. Unlock is returned from Lock so a
// forgotten pairing is a compile-time visible leak at the call site.
type Locker interface {
	Lock(ctx context.Context, scopeKey string) (unlock func(), err error)
}
