package user

import (
	"encoding/hex"
	"strings"
)

// NormalizeAddress validates a hex wallet address and returns it lowercased with a 0x prefix.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if len(address) != 42 || !strings.HasPrefix(strings.ToLower(address), "0x") {
		return "", ErrInvalidAddress
	}
	if _, err := hex.DecodeString(address[2:]); err != nil {
		return "", ErrInvalidAddress
	}
	return strings.ToLower(address), nil
}
