package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	require.Equal(t, "A cat###blurry", BuildPrompt("A ", "cat", "blurry"))
	require.Equal(t, "cat###", BuildPrompt("", "cat", ""))
}

func TestUseKarras(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sampler string
		want    bool
	}{
		{"DDIM", false},
		{"k_euler", true},
		{"k_euler_a", true},
		{"ddim", true},
		{"", true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, UseKarras(tt.sampler), "sampler %q", tt.sampler)
	}
}

func TestBuildGenerationRequestFixedFlags(t *testing.T) {
	t.Parallel()

	req := BuildGenerationRequest(ImageRequest{
		Prompt:  "cat",
		Sampler: "DDIM",
		Steps:   json.RawMessage(`30`),
		Scale:   json.RawMessage(`7.5`),
		Width:   json.RawMessage(`512`),
		Height:  json.RawMessage(`768`),
	}, "stable_diffusion")

	require.Equal(t, []string{"stable_diffusion"}, req.Models)
	require.True(t, req.NSFW)
	require.False(t, req.CensorNSFW)
	require.False(t, req.TrustedWorkers)
	require.False(t, req.Shared)
	require.False(t, req.R2)

	p := req.Params
	require.False(t, p.Karras)
	require.Equal(t, "DDIM", p.SamplerName)
	require.Equal(t, 1, p.N)
	require.Equal(t, 1, p.SeedVariation)
	require.Equal(t, 2, p.ClipSkip)
	require.InDelta(t, 0.5, p.DenoisingStrength, 1e-9)
	require.NotNil(t, p.PostProcessing)
	require.Empty(t, p.PostProcessing)
	require.JSONEq(t, `30`, string(p.Steps))
	require.JSONEq(t, `512`, string(p.Width))
	require.JSONEq(t, `768`, string(p.Height))
	require.JSONEq(t, `7.5`, string(p.CFGScale))
}

func TestBuildGenerationRequestForwardsNumbersAsWritten(t *testing.T) {
	t.Parallel()

	var req ImageRequest
	require.NoError(t, json.Unmarshal([]byte(`{"prompt":"cat","steps":"30","scale":null,"width":512.0}`), &req))

	payload, err := json.Marshal(BuildGenerationRequest(req, "m"))
	require.NoError(t, err)

	var decoded struct {
		Params map[string]json.RawMessage `json:"params"`
	}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Equal(t, `"30"`, string(decoded.Params["steps"]))
	require.Equal(t, `null`, string(decoded.Params["cfg_scale"]))
	require.Equal(t, `512.0`, string(decoded.Params["width"]))
	require.NotContains(t, decoded.Params, "height")
}
