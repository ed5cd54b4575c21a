// Package ratelimit derives stable, privacy-preserving bucketing keys
// for an external rate-limit counter. Only key derivation lives here;
// the counter and its store belong to the host system.
package ratelimit

import (
	"encoding/hex"
	"hash/fnv"
	"net/http"
)

// UnknownComponent substitutes absent address or identity components
// so that requests lacking either still map to a stable bucket.
const UnknownComponent = "unknown"

// DefaultIdentityHeader is the header carrying the declared client
// identity when no custom identity header is configured.
const DefaultIdentityHeader = "User-Agent"

// KeyFunc extracts a rate limit key from an HTTP request.
type KeyFunc func(r *http.Request) string

// DeriveKey combines a client network address and declared identity
// into a fixed-length opaque key: FNV-128a over "addr:identity",
// rendered as 32 hex characters. The digest is deterministic and
// unsalted, so identical inputs yield identical keys across process
// restarts. It is a coarse bucketing key, not a security credential;
// collisions are acceptable.
func DeriveKey(clientAddress, clientIdentity string) string {
	if clientAddress == "" {
		clientAddress = UnknownComponent
	}
	if clientIdentity == "" {
		clientIdentity = UnknownComponent
	}

	h := fnv.New128a()
	// Hash.Write never returns an error.
	_, _ = h.Write([]byte(clientAddress + ":" + clientIdentity))
	return hex.EncodeToString(h.Sum(nil))
}

// KeyDeriver derives per-request keys using a client IP extractor and
// a configurable identity header. Safe for concurrent use.
type KeyDeriver struct {
	extractor      *ClientIPExtractor
	identityHeader string
}

// NewKeyDeriver creates a KeyDeriver. A nil extractor falls back to
// the secure default (RemoteAddr only); an empty identityHeader falls
// back to DefaultIdentityHeader.
func NewKeyDeriver(extractor *ClientIPExtractor, identityHeader string) *KeyDeriver {
	if extractor == nil {
		extractor = NewClientIPExtractor(nil)
	}
	if identityHeader == "" {
		identityHeader = DefaultIdentityHeader
	}
	return &KeyDeriver{
		extractor:      extractor,
		identityHeader: identityHeader,
	}
}

// FromRequest derives the rate limit key for r.
func (d *KeyDeriver) FromRequest(r *http.Request) string {
	return DeriveKey(d.extractor.Extract(r), r.Header.Get(d.identityHeader))
}

// KeyFunc adapts the deriver to a KeyFunc.
func (d *KeyDeriver) KeyFunc() KeyFunc {
	return d.FromRequest
}
