// Package btcaddr classifies Bitcoin addresses by script kind. The service
// never constructs scripts itself; classification is used to validate
// caller-supplied ordinals/payment addresses before they are forwarded to a
// venue.
package btcaddr

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// Kind is the script family an address pays to.
type Kind string

const (
	KindP2PKH   Kind = "p2pkh"   // legacy base58check, version 0x00
	KindP2SH    Kind = "p2sh"    // script hash base58check, version 0x05
	KindSegWit  Kind = "segwit"  // bech32 witness v0 (p2wpkh/p2wsh)
	KindTaproot Kind = "taproot" // bech32m witness v1
)

var (
	// ErrInvalidAddress means the string is not a recognizable Bitcoin
	// address in any supported encoding.
	ErrInvalidAddress = errors.New("invalid bitcoin address")

	// ErrBadChecksum means a base58check payload failed its checksum.
	ErrBadChecksum = errors.New("base58check checksum mismatch")
)

// bech32 human-readable parts for mainnet, testnet and regtest.
var bech32Prefixes = []string{"bc1", "tb1", "bcrt1"}

const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// Classify determines the script kind of an address, or returns
// ErrInvalidAddress/ErrBadChecksum when it is not one.
func Classify(addr string) (Kind, error) {
	if addr == "" {
		return "", ErrInvalidAddress
	}
	lower := strings.ToLower(addr)
	for _, prefix := range bech32Prefixes {
		if strings.HasPrefix(lower, prefix) {
			return classifyBech32(lower, prefix)
		}
	}
	return classifyBase58Check(addr)
}

// IsValid reports whether addr classifies as any supported kind.
func IsValid(addr string) bool {
	_, err := Classify(addr)
	return err == nil
}

func classifyBase58Check(addr string) (Kind, error) {
	raw, err := base58.Decode(addr)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}
	// version byte + 20-byte hash + 4-byte checksum
	if len(raw) != 25 {
		return "", ErrInvalidAddress
	}
	payload, check := raw[:21], raw[21:]
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	if !bytes.Equal(second[:4], check) {
		return "", ErrBadChecksum
	}

	switch payload[0] {
	case 0x00, 0x6f: // mainnet, testnet
		return KindP2PKH, nil
	case 0x05, 0xc4:
		return KindP2SH, nil
	default:
		return "", ErrInvalidAddress
	}
}

func classifyBech32(addr, prefix string) (Kind, error) {
	data := addr[len(prefix):]
	// witness version char + program + 6-char checksum
	if len(data) < 7 {
		return "", ErrInvalidAddress
	}
	for _, c := range data {
		if !strings.ContainsRune(bech32Charset, c) {
			return "", ErrInvalidAddress
		}
	}

	switch data[0] {
	case 'q': // witness v0
		return KindSegWit, nil
	case 'p': // witness v1
		return KindTaproot, nil
	default:
		return "", ErrInvalidAddress
	}
}
