package handlers

import (
	"fmt"
	"net"

	"github.com/labstack/echo/v4"
)

// IPExtractor decides where c.RealIP() comes from. With no trusted proxies the
// TCP peer address is used and forwarding headers are ignored. Otherwise
// X-Forwarded-For is walked from the right, skipping only the given ranges.
func IPExtractor(trustedProxies []string) (echo.IPExtractor, error) {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect(), nil
	}

	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("parsing trusted proxy %q: %w", cidr, err)
		}
		options = append(options, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(options...), nil
}
