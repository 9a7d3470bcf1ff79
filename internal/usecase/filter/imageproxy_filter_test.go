package filter

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"feedgate/internal/config"
	"feedgate/internal/domain/filterctx"
	"feedgate/internal/infra/imageproxy"
)

func TestImageProxyExternalModeRewritesMatchingImages(t *testing.T) {
	cfg := config.FilterConfig{Kind: "image_proxy", Raw: rawNode(t, "base: https://proxy.example/img?url=\n")}
	f, err := buildImageProxy(cfg, Deps{})
	require.NoError(t, err)

	in := sanitizeFeed(`<img src="https://cdn.example.com/a.jpg">`, "")
	out, err := f.Run(context.Background(), filterctx.New(), in)
	require.NoError(t, err)
	require.Contains(t, out.Posts()[0].Description(), "https://proxy.example/img?url=")
}

func TestImageProxyExternalModeRespectsDomainFilter(t *testing.T) {
	cfg := config.FilterConfig{Kind: "image_proxy", Raw: rawNode(t, "base: https://proxy.example/img?url=\ndomains: [\"*.other.com\"]\n")}
	f, err := buildImageProxy(cfg, Deps{})
	require.NoError(t, err)

	in := sanitizeFeed(`<img src="https://cdn.example.com/a.jpg">`, "")
	out, err := f.Run(context.Background(), filterctx.New(), in)
	require.NoError(t, err)
	require.NotContains(t, out.Posts()[0].Description(), "proxy.example")
}

func TestImageProxyInternalModeRequiresSigner(t *testing.T) {
	cfg := config.FilterConfig{Kind: "image_proxy", Raw: rawNode(t, "{}")}
	_, err := buildImageProxy(cfg, Deps{})
	require.Error(t, err)
}

func TestImageProxyInternalModeSignsRewrittenURL(t *testing.T) {
	cfg := config.FilterConfig{Kind: "image_proxy", Raw: rawNode(t, "{}")}
	deps := Deps{
		ImageProxySigner: imageproxy.NewSigner([]byte("test-key")),
		ImageProxyConfig: config.ImageProxyConfig{BaseURL: "https://gateway.example"},
	}
	f, err := buildImageProxy(cfg, deps)
	require.NoError(t, err)

	in := sanitizeFeed(`<img src="https://cdn.example.com/a.jpg">`, "")
	out, err := f.Run(context.Background(), filterctx.New(), in)
	require.NoError(t, err)
	require.True(t, strings.Contains(out.Posts()[0].Description(), imageproxy.Route))
}

func TestImageProxyCacheGranularityIsFeedAndPost(t *testing.T) {
	cfg := config.FilterConfig{Kind: "image_proxy", Raw: rawNode(t, "base: https://proxy.example/img?url=\n")}
	f, err := buildImageProxy(cfg, Deps{})
	require.NoError(t, err)
	require.Equal(t, FeedAndPost, f.CacheGranularity())
}
