package dashboard

import (
	"context"
	"errors"
)

var (
	// ErrRemoteUnavailable covers transport errors, timeouts and non-2xx
	// responses from the preference service.
	ErrRemoteUnavailable = errors.New("preference service unavailable")
	// ErrMalformedPayload means the stored dashboard section could not be
	// decoded or failed validation. It is treated like absence.
	ErrMalformedPayload = errors.New("malformed dashboard preferences")
	// ErrCacheCorrupt means a local cache slot held unparseable text. It is
	// treated like absence.
	ErrCacheCorrupt = errors.New("local cache corrupt")
)

// LocalCache is the on-device mirror of the last known configuration.
// Read never fails: anything unreadable is reported as absent.
type LocalCache interface {
	Read() (Configuration, bool)
	Write(cfg Configuration) error
	Clear() error
}

var errNoCache = errors.New("no local cache configured")

// noCache stands in for a missing LocalCache.
type noCache struct{}

func (noCache) Read() (Configuration, bool) { return Configuration{}, false }
func (noCache) Write(Configuration) error { return errNoCache }
func (noCache) Clear() error { return nil }

type FetchStatus int

const (
	FetchFailed FetchStatus = iota
	FetchAbsent
	FetchFound
)

func (s FetchStatus) String() string {
	switch s {
	case FetchFound:
		return "found"
	case FetchAbsent:
		return "absent"
	default:
		return "failed"
	}
}

// FetchResult is the outcome of reading a user's dashboard preferences.
// Config is only meaningful when Status is FetchFound. Err explains a
// FetchFailed, or a FetchAbsent caused by a malformed payload.
type FetchResult struct {
	Status FetchStatus
	Config Configuration
	Err    error
}

// RemoteClient talks to the per-user preference service. It is the only
// component that performs network I/O and must bound its own latency.
type RemoteClient interface {
	Fetch(ctx context.Context, userID string) FetchResult
	Put(ctx context.Context, userID string, cfg Configuration) error
}
