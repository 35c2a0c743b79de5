package model

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HexToBytes decodes a 0x-prefixed or bare hex string.
func HexToBytes(hexStr string) ([]byte, error) {
	if strings.HasPrefix(hexStr, "0x") {
		hexStr = hexStr[2:]
	}
	return hex.DecodeString(hexStr)
}

// HexBytes marshals to/from a 0x-prefixed hex string in JSON, matching the
// certificate and authentication-data wire shapes (spec.md §6).
type HexBytes []byte

func (b HexBytes) String() string {
	return hex.EncodeToString(b)
}

func (hb HexBytes) MarshalJSON() ([]byte, error) {
	s := "0x" + hex.EncodeToString(hb)
	jbz := make([]byte, len(s)+2)
	jbz[0] = '"'
	copy(jbz[1:], s)
	jbz[len(jbz)-1] = '"'
	return jbz, nil
}

func (hb *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid hex string: %s", data)
	}
	val := string(data[1 : len(data)-1])
	str := strings.TrimPrefix(val, "0x")
	bz, err := hex.DecodeString(str)
	if err != nil {
		return fmt.Errorf("invalid hex string %q: %w", val, err)
	}
	*hb = bz
	return nil
}
