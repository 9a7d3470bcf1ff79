package imageproxy

import (
	"crypto/rand"
	"encoding/json"

	"github.com/zeebo/blake3"
)

// Signer computes and verifies the short BLAKE3-based signature that
// authorizes a /_image request, grounded on
// original_source/src/server/image_proxy.rs's signature().
type Signer struct {
	key []byte
}

// NewSigner builds a Signer from an explicit key (e.g. loaded from
// RSS_FUNNEL_IMAGE_PROXY_SIGN_KEY-equivalent configuration); a nil or
// empty key generates a random one, which only remains stable for the
// lifetime of this process.
func NewSigner(key []byte) *Signer {
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	return &Signer{key: key}
}

// Sign produces a 16-hex-character signature binding the proxy config
// and image URL together so a request can't be replayed with a
// different policy or target.
func (s *Signer) Sign(cfg Config, imageURL string) string {
	h := blake3.New()
	h.Write([]byte("=key="))
	h.Write(s.key)
	h.Write([]byte("=config="))
	if configBytes, err := json.Marshal(cfg); err == nil {
		h.Write(configBytes)
	}
	h.Write([]byte("=url="))
	h.Write([]byte(imageURL))

	sum := h.Sum(nil)
	hexDigits := "0123456789abcdef"
	out := make([]byte, 16)
	for i := 0; i < 8; i++ {
		out[i*2] = hexDigits[sum[i]>>4]
		out[i*2+1] = hexDigits[sum[i]&0xf]
	}
	return string(out)
}

// Verify reports whether sig is the expected signature for cfg/imageURL.
func (s *Signer) Verify(cfg Config, imageURL, sig string) bool {
	return s.Sign(cfg, imageURL) == sig
}
