package handlers

import (
	"encoding/hex"
	"net/http"

	"portfolio-server/host"

	"github.com/zeebo/blake3"
)

// visitorHash is a keyed hash of client ip and user agent. It counts unique visitors and
// links abuse across submissions without storing the raw address.
func visitorHash(r *http.Request) string {
	hasher, err := blake3.NewKeyed(visitorKey)
	if err != nil {
		panic("visitor hash key must be 32 bytes: " + err.Error())
	}

	hasher.Write([]byte(host.ClientIPFromContext(r)))
	hasher.Write([]byte{0})
	hasher.Write([]byte(r.UserAgent()))

	return hex.EncodeToString(hasher.Sum(nil)[:16])
}

func clientIp(r *http.Request) string {
	return host.ClientIPFromContext(r)
}
