package imageproxy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	s := NewSigner([]byte("test-key"))
	cfg := Config{Referer: RefererNone}
	sig := s.Sign(cfg, "https://cdn.example.com/a.jpg")
	require.True(t, s.Verify(cfg, "https://cdn.example.com/a.jpg", sig))
}

func TestSignIsDeterministicForSameInputs(t *testing.T) {
	s := NewSigner([]byte("test-key"))
	cfg := Config{}
	a := s.Sign(cfg, "https://cdn.example.com/a.jpg")
	b := s.Sign(cfg, "https://cdn.example.com/a.jpg")
	require.Equal(t, a, b)
	require.Len(t, a, 16)
}

func TestVerifyRejectsTamperedURL(t *testing.T) {
	s := NewSigner([]byte("test-key"))
	cfg := Config{}
	sig := s.Sign(cfg, "https://cdn.example.com/a.jpg")
	require.False(t, s.Verify(cfg, "https://cdn.example.com/b.jpg", sig))
}

func TestVerifyRejectsTamperedConfig(t *testing.T) {
	s := NewSigner([]byte("test-key"))
	sig := s.Sign(Config{Referer: RefererNone}, "https://cdn.example.com/a.jpg")
	require.False(t, s.Verify(Config{Referer: RefererImageURLDomain}, "https://cdn.example.com/a.jpg", sig))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	a := NewSigner([]byte("key-a"))
	b := NewSigner([]byte("key-b"))
	cfg := Config{}
	sig := a.Sign(cfg, "https://cdn.example.com/a.jpg")
	require.False(t, b.Verify(cfg, "https://cdn.example.com/a.jpg", sig))
}

func TestNewSignerGeneratesRandomKeyWhenEmpty(t *testing.T) {
	a := NewSigner(nil)
	b := NewSigner(nil)
	cfg := Config{}
	sigA := a.Sign(cfg, "https://cdn.example.com/a.jpg")
	sigB := b.Sign(cfg, "https://cdn.example.com/a.jpg")
	require.NotEqual(t, sigA, sigB, "two independently generated keys should not collide")
}
