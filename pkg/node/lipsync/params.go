package lipsync

import (
	"MuseLink/internal/coordinator"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Params holds the fully merged parameters for one item's lip-sync job.
type Params struct {
	AudioMode     string `json:"audio_mode" mapstructure:"audio_mode"` // path or binary
	AudioPath     string `json:"audio_path" mapstructure:"audio_path"`
	AudioProperty string `json:"audio_property" mapstructure:"audio_property"`

	VideoMode     string `json:"video_mode" mapstructure:"video_mode"` // path or binary
	VideoPath     string `json:"video_path" mapstructure:"video_path"`
	VideoProperty string `json:"video_property" mapstructure:"video_property"`

	OutputMode     string `json:"output_mode" mapstructure:"output_mode"` // path or binary
	OutputPath     string `json:"output_path" mapstructure:"output_path"`
	OutputProperty string `json:"output_property" mapstructure:"output_property"`

	BBoxShift       int    `json:"bbox_shift" mapstructure:"bbox_shift"`
	ExtraMargin     int    `json:"extra_margin" mapstructure:"extra_margin"`
	ParsingMode     string `json:"parsing_mode" mapstructure:"parsing_mode"` // jaw or raw
	LeftCheekWidth  int    `json:"left_cheek_width" mapstructure:"left_cheek_width"`
	RightCheekWidth int    `json:"right_cheek_width" mapstructure:"right_cheek_width"`
}

// defaultParams returns the documented defaults. Numeric defaults live at
// the map level so a caller-supplied zero survives the merge.
func defaultParams() map[string]interface{} {
	return map[string]interface{}{
		"audio_mode":        "path",
		"audio_property":    "audio",
		"video_mode":        "path",
		"video_property":    "video",
		"output_mode":       "path",
		"output_property":   "result",
		"bbox_shift":        0,
		"extra_margin":      10,
		"parsing_mode":      "jaw",
		"left_cheek_width":  90,
		"right_cheek_width": 90,
	}
}

// DecodeParams merges the given layers over the defaults (later layers win),
// decodes the result, and validates it.
func DecodeParams(layers ...map[string]interface{}) (*Params, error) {
	merged := defaultParams()
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}

	var p Params
	if err := mapstructure.Decode(merged, &p); err != nil {
		return nil, fmt.Errorf("failed to decode lipsync params: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lipsync params: %w", err)
	}
	return &p, nil
}

// Validate range-checks the inference knobs and the mode enums. Path and
// property presence is enforced later, when the coordinator resolves the
// item, since either can still be supplied per item.
func (p *Params) Validate() error {
	for slot, mode := range map[string]string{
		"audio_mode":  p.AudioMode,
		"video_mode":  p.VideoMode,
		"output_mode": p.OutputMode,
	} {
		if mode != "path" && mode != "binary" {
			return fmt.Errorf("invalid %s: %s (must be path or binary)", slot, mode)
		}
	}

	if p.ParsingMode != "jaw" && p.ParsingMode != "raw" {
		return fmt.Errorf("invalid parsing_mode: %s (must be jaw or raw)", p.ParsingMode)
	}
	if p.ExtraMargin < 0 || p.ExtraMargin > 40 {
		return fmt.Errorf("extra_margin must be between 0 and 40, got: %d", p.ExtraMargin)
	}
	if p.LeftCheekWidth < 20 || p.LeftCheekWidth > 160 {
		return fmt.Errorf("left_cheek_width must be between 20 and 160, got: %d", p.LeftCheekWidth)
	}
	if p.RightCheekWidth < 20 || p.RightCheekWidth > 160 {
		return fmt.Errorf("right_cheek_width must be between 20 and 160, got: %d", p.RightCheekWidth)
	}

	return nil
}

// JobSpec maps the params onto the coordinator's job description.
func (p *Params) JobSpec() *coordinator.JobSpec {
	spec := &coordinator.JobSpec{
		BBoxShift:       p.BBoxShift,
		ExtraMargin:     p.ExtraMargin,
		ParsingMode:     p.ParsingMode,
		LeftCheekWidth:  p.LeftCheekWidth,
		RightCheekWidth: p.RightCheekWidth,
	}

	if p.AudioMode == "binary" {
		spec.Audio = coordinator.FromBinary(p.AudioProperty)
	} else {
		spec.Audio = coordinator.FromPath(p.AudioPath)
	}
	if p.VideoMode == "binary" {
		spec.Video = coordinator.FromBinary(p.VideoProperty)
	} else {
		spec.Video = coordinator.FromPath(p.VideoPath)
	}
	if p.OutputMode == "binary" {
		spec.Output = coordinator.FromBinary(p.OutputProperty)
	} else {
		spec.Output = coordinator.FromPath(p.OutputPath)
	}

	return spec
}
