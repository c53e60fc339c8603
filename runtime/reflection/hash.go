package reflection

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Hash64 is the 64-bit hash used for type handles, overload keys, structural
// versions and instance hashes.
type Hash64 uint64

// InitHash is the seed every fold starts from.
const InitHash Hash64 = 14695981039346656037

// String renders the hash as fixed-width hex.
func (h Hash64) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}

// HashName hashes a name into a handle.
func HashName(name string) Hash64 {
	return Hash64(xxhash.Sum64String(name))
}

// Combine folds data into seed.
func Combine(seed Hash64, data []byte) Hash64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))

	d := xxhash.New()
	_, _ = d.Write(buf[:])
	_, _ = d.Write(data)
	return Hash64(d.Sum64())
}

// CombineString folds a string into seed.
func CombineString(seed Hash64, s string) Hash64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))

	d := xxhash.New()
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(s)
	return Hash64(d.Sum64())
}

// CombineUint64 folds a 64-bit value into seed.
func CombineUint64(seed Hash64, v uint64) Hash64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return Combine(seed, buf[:])
}

// CombineHash folds another hash into seed.
func CombineHash(seed, h Hash64) Hash64 {
	return CombineUint64(seed, uint64(h))
}

// CombineFloat64 folds the IEEE-754 bits of f into seed.
func CombineFloat64(seed Hash64, f float64) Hash64 {
	return CombineUint64(seed, math.Float64bits(f))
}

// CombineBool folds a boolean into seed.
func CombineBool(seed Hash64, b bool) Hash64 {
	if b {
		return Combine(seed, []byte{1})
	}
	return Combine(seed, []byte{0})
}
