package http

import (
	"strings"

	"github.com/pion/webrtc/v4"

	"github.com/interviewly/relay/internal/config"
)

// clientICEServers converts the configured STUN/TURN list into the
// shape browsers feed to RTCPeerConnection. TURN entries missing
// credentials are dropped: serving them would only produce 401s during
// negotiation.
func clientICEServers(cfg *config.Config) []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(cfg.ICEServers))
	for _, s := range cfg.ICEServers {
		if len(s.URLs) == 0 {
			continue
		}
		server := webrtc.ICEServer{URLs: s.URLs}
		if s.Username != "" {
			server.Username = s.Username
			server.Credential = s.Credential
		}
		if hasTURNURL(server) && (strings.TrimSpace(s.Username) == "" || strings.TrimSpace(s.Credential) == "") {
			continue
		}
		out = append(out, server)
	}
	return out
}

func hasTURNURL(server webrtc.ICEServer) bool {
	for _, raw := range server.URLs {
		url := strings.ToLower(strings.TrimSpace(raw))
		if strings.HasPrefix(url, "turn:") || strings.HasPrefix(url, "turns:") {
			return true
		}
	}
	return false
}
