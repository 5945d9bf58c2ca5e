// Package endpoint models addressable inference targets and the registry
// that tracks their live status.
package endpoint

import (
	"time"

	"github.com/unamentis/patchpanel/capability"
)

// Provider identifies where an endpoint runs.
type Provider string

const (
	ProviderCloud      Provider = "cloud"
	ProviderSelfHosted Provider = "self_hosted"
	ProviderOnDevice   Provider = "on_device"
)

// Status is the mutable runtime state of an endpoint. Endpoints are never
// deleted during a process lifetime, only marked disabled.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusDegraded    Status = "degraded"
	StatusUnavailable Status = "unavailable"
	StatusDisabled    Status = "disabled"
	StatusLoading     Status = "loading"
)

// IsUsable reports whether the walker may send traffic to an endpoint in
// this status. Degraded endpoints still take traffic; they just rank as a
// worse choice for table authors.
func (s Status) IsUsable() bool {
	return s == StatusAvailable || s == StatusDegraded
}

// Features describes what an endpoint's API surface supports.
type Features struct {
	Streaming    bool `json:"streaming" yaml:"streaming"`
	SystemPrompt bool `json:"system_prompt" yaml:"system_prompt"`
	ToolCalling  bool `json:"tool_calling" yaml:"tool_calling"`
}

// Performance is the expected performance profile of an endpoint, used as an
// authoring hint for routing rules and as a timeout hint for invoke
// implementations. Reliability is a historical success ratio in [0, 1].
type Performance struct {
	ExpectedTTFTMs       int     `json:"expected_ttft_ms" yaml:"expected_ttft_ms" validate:"gte=0"`
	ExpectedTokensPerSec float64 `json:"expected_tokens_per_sec" yaml:"expected_tokens_per_sec" validate:"gte=0"`
	Reliability          float64 `json:"reliability" yaml:"reliability" validate:"gte=0,lte=1"`
}

// Cost is the price profile of an endpoint in USD per token. Both fields are
// zero for free/local endpoints.
type Cost struct {
	PerInputToken  float64 `json:"per_input_token" yaml:"per_input_token" validate:"gte=0"`
	PerOutputToken float64 `json:"per_output_token" yaml:"per_output_token" validate:"gte=0"`
}

// Endpoint is a single addressable inference target. The struct is copied on
// read from the Registry; Status and LastHealthCheck are the only fields the
// registry mutates after construction.
type Endpoint struct {
	ID       string          `json:"id" yaml:"id" validate:"required"`
	Provider Provider        `json:"provider" yaml:"provider" validate:"required,oneof=cloud self_hosted on_device"`
	Location string          `json:"location" yaml:"location"`
	Tier     capability.Tier `json:"tier" yaml:"tier" validate:"omitempty,oneof=any tiny small medium frontier embedding"`

	MaxInputTokens  int `json:"max_input_tokens" yaml:"max_input_tokens" validate:"gte=0"`
	MaxOutputTokens int `json:"max_output_tokens" yaml:"max_output_tokens" validate:"gte=0"`

	Features    Features    `json:"features" yaml:"features"`
	Performance Performance `json:"performance" yaml:"performance"`
	Cost        Cost        `json:"cost" yaml:"cost"`

	Status          Status    `json:"status" yaml:"status"`
	LastHealthCheck time.Time `json:"last_health_check,omitempty" yaml:"last_health_check,omitempty"`
}

// EstimateCost returns the expected USD cost of a request with the given
// token counts. Pure; budget accounting happens at the caller after the
// request actually completes.
func (e *Endpoint) EstimateCost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*e.Cost.PerInputToken + float64(outputTokens)*e.Cost.PerOutputToken
}
