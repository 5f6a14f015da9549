package services

import (
	"strings"

	"github.com/mssola/user_agent"
)

// Classification is the outcome of inspecting request metadata.
type Classification struct {
	Bot        bool
	ProxyFetch bool
}

type ClassifierService struct {
	botTokens   []string
	proxyTokens []string
}

func NewClassifierService(botTokens, proxyTokens []string) *ClassifierService {
	return &ClassifierService{
		botTokens:   lowerTokens(botTokens),
		proxyTokens: lowerTokens(proxyTokens),
	}
}

// Classify decides bot vs. real client and proxy vs. direct fetch from the
// request metadata. Proxy detection runs first: mail providers fetch pixel
// images through proxies on behalf of real readers, so a proxy hit counts
// as an open and must never be filtered as a bot. Unknown user-agent shapes
// default to a genuine direct open.
func (s *ClassifierService) Classify(userAgent, referrer string) Classification {
	lowered := strings.ToLower(userAgent)

	for _, tok := range s.proxyTokens {
		if strings.Contains(lowered, tok) {
			return Classification{ProxyFetch: true}
		}
	}
	for _, tok := range s.botTokens {
		if strings.Contains(lowered, tok) {
			return Classification{Bot: true}
		}
	}
	if user_agent.New(userAgent).Bot() {
		return Classification{Bot: true}
	}
	return Classification{}
}

func lowerTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
