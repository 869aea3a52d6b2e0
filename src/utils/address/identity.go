package address

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

const IdentityLength = 32

var (
	ErrInvalidIdentity = errors.New("invalid identity")
)

// Identity is a 32 byte account address or wallet public key.
// Text form is base58.
type Identity [IdentityLength]byte

// Zero is never a valid signer, campaign or receipt address
var Zero Identity

func FromBytes(b []byte) (out Identity, err error) {
	if len(b) != IdentityLength {
		err = fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidIdentity, IdentityLength, len(b))
		return
	}
	copy(out[:], b)
	return
}

func Parse(s string) (out Identity, err error) {
	b, err := base58.Decode(s)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrInvalidIdentity, err.Error())
		return
	}
	return FromBytes(b)
}

func MustParse(s string) Identity {
	out, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return out
}

func (self Identity) Bytes() []byte {
	return self[:]
}

func (self Identity) String() string {
	return base58.Encode(self[:])
}

func (self Identity) IsZero() bool {
	return self == Zero
}

func (self Identity) Equal(other Identity) bool {
	return bytes.Equal(self[:], other[:])
}

func (self Identity) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

func (self *Identity) UnmarshalText(text []byte) (err error) {
	*self, err = Parse(string(text))
	return
}

func (self Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(self.String())
}

func (self *Identity) UnmarshalJSON(data []byte) (err error) {
	var s string
	err = json.Unmarshal(data, &s)
	if err != nil {
		return
	}
	return self.UnmarshalText([]byte(s))
}

// Scan stores identities as base58 text columns
func (self *Identity) Scan(value interface{}) (err error) {
	switch v := value.(type) {
	case string:
		*self, err = Parse(v)
	case []byte:
		*self, err = Parse(string(v))
	default:
		err = fmt.Errorf("%w: cannot scan %T", ErrInvalidIdentity, value)
	}
	return
}

func (self Identity) Value() (driver.Value, error) {
	return self.String(), nil
}
