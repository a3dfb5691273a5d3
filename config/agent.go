package config

import (
	"strings"
	"time"
)

// AgentConfig contains the agent identity advertised in job descriptors and
// the advisory deadline schedule attached at job creation.
type AgentConfig struct {
	// Identifier is the fixed agent identifier echoed in start_job descriptors.
	Identifier string `env:"AGENT_IDENTIFIER" envDefault:"cardano-insights-agent"`

	// SellerVKey is the selling wallet verification key echoed in start_job
	// descriptors. Settlement itself is out of scope for this service.
	SellerVKey string `env:"SELLER_VKEY" envDefault:""`

	// DeadlineStep is the spacing between the four advisory deadlines
	// (pay-by, submit-result, unlock, dispute-unlock) derived from the
	// creation time.
	DeadlineStep time.Duration `env:"DEADLINE_STEP" envDefault:"1h"`

	// SigningSeed is the hex-encoded 32-byte Ed25519 seed used to sign
	// provide_input attestations. When empty, an ephemeral key is generated
	// at startup (development only).
	SigningSeed string `env:"SIGNING_SEED" envDefault:""`
}

// Sanitize applies guardrails to agent configuration values.
func (a *AgentConfig) Sanitize() {
	a.Identifier = strings.TrimSpace(a.Identifier)
	if a.Identifier == "" {
		a.Identifier = "cardano-insights-agent"
	}
	a.SellerVKey = strings.TrimSpace(a.SellerVKey)
	a.SigningSeed = strings.TrimSpace(a.SigningSeed)
	if a.DeadlineStep <= 0 {
		a.DeadlineStep = time.Hour
	}
}
