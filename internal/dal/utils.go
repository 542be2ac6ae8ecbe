package dal

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

func genID(prefix string) string {
	b := make([]byte, 4)
	rand.Read(b)
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b))
}

// rollAttribute generates a random attribute value between 30 and 79
// (inclusive) using crypto/rand for thread safety
func rollAttribute() int {
	n, err := rand.Int(rand.Reader, big.NewInt(50))
	if err != nil {
		// Fallback: try reading random bytes directly
		var b [1]byte
		_, readErr := rand.Read(b[:])
		if readErr != nil {
			// Final fallback: return the middle of the range
			return 50
		}
		return int(b[0]%50) + 30
	}
	return int(n.Int64()) + 30
}
