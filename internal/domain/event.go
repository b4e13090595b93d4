package domain

import (
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const contentHashScheme = "ipfs://"

// EventRecord is an event as registered on the registry contract.
// TokenID is nil or zero while the event code is unregistered.
type EventRecord struct {
	EventCode     string
	EventName     string
	Location      string
	Timestamp     int64
	HostName      string
	AttendeeCount uint64
	ContentHash   string
	IsActive      bool
	TokenID       *big.Int
}

// Registered reports whether the record has been assigned a token id.
func (e EventRecord) Registered() bool {
	return IsRegisteredTokenID(e.TokenID)
}

// StartsAt returns the event timestamp as UTC time.
func (e EventRecord) StartsAt() time.Time {
	return time.Unix(e.Timestamp, 0).UTC()
}

// MintRecord is the per-account mint flag for one event code. It only ever
// moves from false to true.
type MintRecord struct {
	EventCode string
	Account   common.Address
	HasMinted bool
}

// IsRegisteredTokenID treats nil and zero as "not found".
func IsRegisteredTokenID(id *big.Int) bool {
	return id != nil && id.Sign() > 0
}

// NormalizeEventCode trims whitespace and rejects empty codes.
func NormalizeEventCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", ErrInvalidEventCode
	}
	return code, nil
}

// NormalizeContentHash prefixes bare content identifiers with ipfs://.
func NormalizeContentHash(hash string) string {
	hash = strings.TrimSpace(hash)
	if hash == "" || strings.HasPrefix(hash, contentHashScheme) {
		return hash
	}
	return contentHashScheme + hash
}
