package horde

import "encoding/json"

// GenerationRequest is the payload for POST /v2/generate/async.
type GenerationRequest struct {
	Prompt         string           `json:"prompt"`
	Params         GenerationParams `json:"params"`
	NSFW           bool             `json:"nsfw"`
	CensorNSFW     bool             `json:"censor_nsfw"`
	TrustedWorkers bool             `json:"trusted_workers"`
	Models         []string         `json:"models"`
	Shared         bool             `json:"shared"`
	R2             bool             `json:"r2"`
	JobID          string           `json:"jobId"`
	Index          int              `json:"index"`
	Gathered       bool             `json:"gathered"`
	Failed         bool             `json:"failed"`
}

// GenerationParams carries the sampling parameters. Caller-supplied numbers
// are forwarded as the caller wrote them; absent values are omitted rather
// than sent as zero.
type GenerationParams struct {
	Steps             json.RawMessage `json:"steps,omitempty"`
	N                 int             `json:"n"`
	SamplerName       string          `json:"sampler_name,omitempty"`
	Width             json.RawMessage `json:"width,omitempty"`
	Height            json.RawMessage `json:"height,omitempty"`
	CFGScale          json.RawMessage `json:"cfg_scale,omitempty"`
	SeedVariation     int             `json:"seed_variation"`
	Seed              string          `json:"seed"`
	Karras            bool            `json:"karras"`
	DenoisingStrength float64         `json:"denoising_strength"`
	Tiling            bool            `json:"tiling"`
	HiresFix          bool            `json:"hires_fix"`
	ClipSkip          int             `json:"clip_skip"`
	PostProcessing    []string        `json:"post_processing"`
}

// AsyncResponse is returned when a generation is accepted.
type AsyncResponse struct {
	ID      string  `json:"id"`
	Kudos   float64 `json:"kudos"`
	Message string  `json:"message,omitempty"`
}

// CheckResponse is the lightweight job status from /v2/generate/check/{id}.
type CheckResponse struct {
	Finished      int     `json:"finished"`
	Processing    int     `json:"processing"`
	Restarted     int     `json:"restarted"`
	Waiting       int     `json:"waiting"`
	Done          bool    `json:"done"`
	Faulted       bool    `json:"faulted"`
	WaitTime      int     `json:"wait_time"`
	QueuePosition int     `json:"queue_position"`
	Kudos         float64 `json:"kudos"`
	IsPossible    *bool   `json:"is_possible,omitempty"`
}

// Possible reports whether the network can serve the job. A missing field
// counts as possible.
func (c CheckResponse) Possible() bool {
	return c.IsPossible == nil || *c.IsPossible
}

// StatusResponse is the full job status including generations.
type StatusResponse struct {
	CheckResponse
	Generations []Generation `json:"generations"`
}

// Generation is a single produced image.
type Generation struct {
	Img        string `json:"img"`
	Seed       string `json:"seed"`
	ID         string `json:"id"`
	Censored   bool   `json:"censored"`
	WorkerID   string `json:"worker_id"`
	WorkerName string `json:"worker_name"`
	Model      string `json:"model"`
	State      string `json:"state"`
}

// ModelStatus is one entry of /v2/status/models.
type ModelStatus struct {
	Name        string  `json:"name"`
	Count       int     `json:"count"`
	Performance float64 `json:"performance"`
	Queued      float64 `json:"queued"`
	Jobs        float64 `json:"jobs"`
	ETA         int     `json:"eta"`
	Type        string  `json:"type"`
}
