package gen

import (
	"github.com/minio/highwayhash"
)

var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// signatureHash hashes a plan's canonical signature. Plans hashing equal
// generate identical observer bodies, so the emitter reuses the first one.
func signatureHash(signature string) (uint64, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, err
	}

	_, err = h.Write([]byte(signature))

	return h.Sum64(), err
}
