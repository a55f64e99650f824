package definition

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/kbukum/dyne/pipe"
)

// stageHash chains the upstream hash with this stage's identifier, version
// and parameters, so changing any stage invalidates every stage after it.
func stageHash(upstream, id, version string, params pipe.Params) (string, error) {
	encoded, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	for _, part := range [][]byte{[]byte(upstream), []byte(id), []byte(version), encoded} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
