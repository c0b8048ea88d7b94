package keygen

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/blake2b"
)

const (
	// SchemeED25519 is the Sui signature scheme flag byte that prefixes
	// the public key before hashing into an address.
	SchemeED25519 = 0x00

	hardenedOffset = 0x80000000
)

// Errors
var (
	ErrInvalidWordCount = errors.New("word count must be 12, 15, 18, 21, or 24")
)

// derivationPath is the standard Sui ed25519 account path
// m/44'/784'/0'/0'/0'. Every step is hardened per SLIP-0010.
var derivationPath = [5]uint32{44, 784, 0, 0, 0}

// slip10MasterKey is the HMAC key for the ed25519 master node.
var slip10MasterKey = []byte("ed25519 seed")

// EntropyBits maps a mnemonic word count to its BIP39 entropy size.
func EntropyBits(wordCount int) (int, error) {
	switch wordCount {
	case 12, 15, 18, 21, 24:
		return wordCount / 3 * 32, nil
	}
	return 0, ErrInvalidWordCount
}

// Generate creates a fresh random keypair and returns the derived Sui
// address alongside the recovery mnemonic. An error here means the
// entropy source or the derivation itself is broken; callers treat it
// as fatal rather than retrying.
func Generate(wordCount int) (address, mnemonic string, err error) {
	bits, err := EntropyBits(wordCount)
	if err != nil {
		return "", "", err
	}
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err = bip39.NewMnemonic(entropy)
	if err != nil {
		return "", "", fmt.Errorf("build mnemonic: %w", err)
	}
	address, err = AddressFromMnemonic(mnemonic)
	if err != nil {
		return "", "", err
	}
	return address, mnemonic, nil
}

// AddressFromMnemonic re-derives the Sui address for a mnemonic using
// an empty passphrase and the default account path.
func AddressFromMnemonic(mnemonic string) (string, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return "", errors.New("invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, "")
	key, chainCode := masterKey(seed)
	for _, index := range derivationPath {
		key, chainCode = deriveChild(key, chainCode, index+hardenedOffset)
	}
	priv := ed25519.NewKeyFromSeed(key)
	pub := priv.Public().(ed25519.PublicKey)
	return addressFromPublicKey(pub), nil
}

// addressFromPublicKey hashes the scheme flag plus the public key with
// blake2b-256 and renders the 32-byte digest as a 0x hex string.
func addressFromPublicKey(pub ed25519.PublicKey) string {
	buf := make([]byte, 0, 1+ed25519.PublicKeySize)
	buf = append(buf, SchemeED25519)
	buf = append(buf, pub...)
	sum := blake2b.Sum256(buf)
	return "0x" + hex.EncodeToString(sum[:])
}

// masterKey computes the SLIP-0010 ed25519 master node from a BIP39
// seed: the left half is the key, the right half the chain code.
func masterKey(seed []byte) (key, chainCode []byte) {
	mac := hmac.New(sha512.New, slip10MasterKey)
	mac.Write(seed)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}

// deriveChild derives one hardened SLIP-0010 child. ed25519 supports
// hardened derivation only, so the data block always starts with 0x00.
func deriveChild(key, chainCode []byte, index uint32) (childKey, childChain []byte) {
	var data [1 + 32 + 4]byte
	copy(data[1:], key)
	binary.BigEndian.PutUint32(data[33:], index)
	mac := hmac.New(sha512.New, chainCode)
	mac.Write(data[:])
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}
