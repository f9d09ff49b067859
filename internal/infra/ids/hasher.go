package ids

import (
	"errors"

	"github.com/speps/go-hashids/v2"
)

var errUnexpectedCodeLen = errors.New("unexpected public code length")

// Hasher turns internal ids into short public codes (order tracking links).
type Hasher struct {
	data *hashids.HashIDData
}

func NewHasher(salt string) *Hasher {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 8
	return &Hasher{data: data}
}

func (h *Hasher) Encode(id int64) (string, error) {
	hd, err := hashids.NewWithData(h.data)
	if err != nil {
		return "", err
	}
	return hd.EncodeInt64([]int64{id})
}

func (h *Hasher) Decode(code string) (int64, error) {
	hd, err := hashids.NewWithData(h.data)
	if err != nil {
		return 0, err
	}
	d, err := hd.DecodeInt64WithError(code)
	if err != nil {
		return 0, err
	}
	if len(d) != 1 {
		return 0, errUnexpectedCodeLen
	}
	return d[0], nil
}

var defaultHasher = NewHasher("")

// SetDefaultHasher replaces the process-wide hasher (called from main with HASHID_SALT).
func SetDefaultHasher(h *Hasher) {
	defaultHasher = h
}

func EncodePublic(id int64) (string, error) {
	return defaultHasher.Encode(id)
}

func DecodePublic(code string) (int64, error) {
	return defaultHasher.Decode(code)
}
