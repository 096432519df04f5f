// Package dashboard decides which summary cards and widgets a user sees, in
// what order and at what size, and keeps that state consistent between the
// per-user preference service and an on-device cache.
//
// A Controller owns one session. Load walks the fallback chain remote, local
// cache, built-in default and never fails. Mutations apply to memory only;
// Save writes to the preference service and then, regardless of that
// outcome, to the local cache.
package dashboard
