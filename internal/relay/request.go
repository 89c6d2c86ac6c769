// Package relay runs the submit/poll/retrieve cycle against the remote
// generation network.
package relay

import (
	"encoding/json"

	"github.com/JakeFAU/horde-relay/internal/horde"
)

// PromptSeparator splits positive and negative prompts in the remote protocol.
const PromptSeparator = "###"

// nonKarrasSampler is the one sampler that cannot run with karras sigmas.
const nonKarrasSampler = "DDIM"

// ImageRequest is the client body of POST /api/image. The numeric fields
// are kept raw and forwarded untouched.
type ImageRequest struct {
	Prompt         string          `json:"prompt"`
	PromptPrefix   string          `json:"prompt_prefix"`
	NegativePrompt string          `json:"negative_prompt"`
	Sampler        string          `json:"sampler"`
	Steps          json.RawMessage `json:"steps"`
	Scale          json.RawMessage `json:"scale"`
	Width          json.RawMessage `json:"width"`
	Height         json.RawMessage `json:"height"`
}

// BuildPrompt joins prefix, prompt and negative prompt the way the remote
// network expects.
func BuildPrompt(prefix, prompt, negative string) string {
	return prefix + prompt + PromptSeparator + negative
}

// UseKarras reports whether karras sampling applies to sampler.
func UseKarras(sampler string) bool {
	return sampler != nonKarrasSampler
}

// BuildGenerationRequest maps a client request onto the remote payload,
// generating with model.
func BuildGenerationRequest(req ImageRequest, model string) horde.GenerationRequest {
	return horde.GenerationRequest{
		Prompt: BuildPrompt(req.PromptPrefix, req.Prompt, req.NegativePrompt),
		Params: horde.GenerationParams{
			Steps:             req.Steps,
			N:                 1,
			SamplerName:       req.Sampler,
			Width:             req.Width,
			Height:            req.Height,
			CFGScale:          req.Scale,
			SeedVariation:     1,
			Seed:              "",
			Karras:            UseKarras(req.Sampler),
			DenoisingStrength: 0.5,
			Tiling:            false,
			HiresFix:          false,
			ClipSkip:          2,
			PostProcessing:    []string{},
		},
		NSFW:           true,
		CensorNSFW:     false,
		TrustedWorkers: false,
		Models:         []string{model},
		Shared:         false,
		R2:             false,
		JobID:          "",
		Index:          0,
		Gathered:       false,
		Failed:         false,
	}
}
