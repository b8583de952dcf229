package lipsync

import (
	"MuseLink/internal/coordinator"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeParams_Defaults(t *testing.T) {
	p, err := DecodeParams()
	require.NoError(t, err)

	assert.Equal(t, "path", p.AudioMode)
	assert.Equal(t, "path", p.VideoMode)
	assert.Equal(t, "path", p.OutputMode)
	assert.Equal(t, 0, p.BBoxShift)
	assert.Equal(t, 10, p.ExtraMargin)
	assert.Equal(t, "jaw", p.ParsingMode)
	assert.Equal(t, 90, p.LeftCheekWidth)
	assert.Equal(t, 90, p.RightCheekWidth)
}

func TestDecodeParams_LayersMergeInOrder(t *testing.T) {
	nodeDefaults := map[string]interface{}{
		"extra_margin": 20,
		"audio_path":   "/node.wav",
	}
	itemParams := map[string]interface{}{
		"extra_margin": 0,
		"video_path":   "/item.mp4",
	}

	p, err := DecodeParams(nodeDefaults, itemParams)
	require.NoError(t, err)

	// The item layer wins, and an explicit zero survives the merge.
	assert.Equal(t, 0, p.ExtraMargin)
	assert.Equal(t, "/node.wav", p.AudioPath)
	assert.Equal(t, "/item.mp4", p.VideoPath)
}

func TestDecodeParams_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]interface{}
	}{
		{name: "margin above range", params: map[string]interface{}{"extra_margin": 41}},
		{name: "margin below range", params: map[string]interface{}{"extra_margin": -1}},
		{name: "left cheek too narrow", params: map[string]interface{}{"left_cheek_width": 19}},
		{name: "right cheek too wide", params: map[string]interface{}{"right_cheek_width": 161}},
		{name: "unknown parsing mode", params: map[string]interface{}{"parsing_mode": "teeth"}},
		{name: "unknown audio mode", params: map[string]interface{}{"audio_mode": "url"}},
		{name: "unknown output mode", params: map[string]interface{}{"output_mode": "stream"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeParams(tt.params)
			require.Error(t, err)
		})
	}
}

func TestDecodeParams_RangeBoundsAccepted(t *testing.T) {
	p, err := DecodeParams(map[string]interface{}{
		"extra_margin":      40,
		"left_cheek_width":  20,
		"right_cheek_width": 160,
		"bbox_shift":        -5,
	})
	require.NoError(t, err)
	assert.Equal(t, 40, p.ExtraMargin)
	assert.Equal(t, -5, p.BBoxShift)
}

func TestParams_JobSpec(t *testing.T) {
	p, err := DecodeParams(map[string]interface{}{
		"audio_mode":      "binary",
		"audio_property":  "voice",
		"video_path":      "/v.mp4",
		"output_mode":     "binary",
		"output_property": "result",
	})
	require.NoError(t, err)

	spec := p.JobSpec()
	assert.Equal(t, coordinator.FromBinary("voice"), spec.Audio)
	assert.Equal(t, coordinator.FromPath("/v.mp4"), spec.Video)
	assert.Equal(t, coordinator.FromBinary("result"), spec.Output)
	assert.Equal(t, 10, spec.ExtraMargin)
	assert.Equal(t, "jaw", spec.ParsingMode)
}
