package wallet

import (
	"fmt"
	"regexp"
	"strings"
)

// KeyType is the declared type of a PIX destination key.
type KeyType string

const (
	KeyTypeCPF    KeyType = "cpf"
	KeyTypeCNPJ   KeyType = "cnpj"
	KeyTypeEmail  KeyType = "email"
	KeyTypePhone  KeyType = "phone"
	KeyTypeRandom KeyType = "random"
)

// MinKeyLength is the minimum accepted length for any destination key.
const MinKeyLength = 3

var (
	digitsOnly = regexp.MustCompile(`^\d+$`)
	phoneShape = regexp.MustCompile(`^\+?\d{10,14}$`)
	emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidateKey checks that a destination key is plausible for its declared
// type. Checks are deliberately coarse: the gateway is the authority on
// whether a key actually resolves; this only rejects input that cannot
// possibly be a key of that type.
func ValidateKey(key string, keyType KeyType) error {
	key = strings.TrimSpace(key)
	if len(key) < MinKeyLength {
		return fmt.Errorf("%w: key shorter than %d characters", ErrInvalidKey, MinKeyLength)
	}
	switch keyType {
	case KeyTypeCPF:
		if !digitsOnly.MatchString(key) || len(key) != 11 {
			return fmt.Errorf("%w: cpf must be 11 digits", ErrInvalidKey)
		}
	case KeyTypeCNPJ:
		if !digitsOnly.MatchString(key) || len(key) != 14 {
			return fmt.Errorf("%w: cnpj must be 14 digits", ErrInvalidKey)
		}
	case KeyTypeEmail:
		if !emailShape.MatchString(key) {
			return fmt.Errorf("%w: malformed email key", ErrInvalidKey)
		}
	case KeyTypePhone:
		if !phoneShape.MatchString(key) {
			return fmt.Errorf("%w: malformed phone key", ErrInvalidKey)
		}
	case KeyTypeRandom:
		if len(key) < 32 {
			return fmt.Errorf("%w: random key too short", ErrInvalidKey)
		}
	default:
		return fmt.Errorf("%w: unknown key type %q", ErrInvalidKey, keyType)
	}
	return nil
}
