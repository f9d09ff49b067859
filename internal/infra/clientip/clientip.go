package clientip

import (
	"net/http"

	"github.com/realclientip/realclientip-go"
)

var strategy realclientip.Strategy = realclientip.NewChainStrategy(
	realclientip.Must(realclientip.NewRightmostNonPrivateStrategy("X-Forwarded-For")),
	realclientip.RemoteAddrStrategy{},
)

// Configure switches to a single trusted header (e.g. "X-Real-IP" behind nginx).
func Configure(header string) {
	if header == "" {
		return
	}
	strategy = realclientip.Must(realclientip.NewSingleIPHeaderStrategy(header))
}

func FromRequest(r *http.Request) string {
	ip := strategy.ClientIP(r.Header, r.RemoteAddr)
	if ip == "" {
		return "unknown"
	}
	ip, _ = realclientip.SplitHostZone(ip)
	return ip
}
