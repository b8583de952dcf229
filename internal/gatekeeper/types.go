package gatekeeper

import "errors"

// JobRequest is the body of a single submission to the gatekeeper's /execute
// endpoint. The field names follow the gatekeeper's inference API.
type JobRequest struct {
	AudioPath       string `json:"audio_path"`
	VideoPath       string `json:"video_path"`
	OutputFilePath  string `json:"output_file_path"`
	BBoxShift       int    `json:"bbox_shift"`
	ExtraMargin     int    `json:"extra_margin"`
	ParsingMode     string `json:"parsing_mode"`
	LeftCheekWidth  int    `json:"left_cheek_width"`
	RightCheekWidth int    `json:"right_cheek_width"`
}

// submitResponse is what /execute returns once a job has been accepted.
type submitResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id"`
}

// resultMessage is the one-shot envelope the gatekeeper pushes on the
// per-job websocket. Exactly one of the two formats is sent.
type resultMessage struct {
	Format   string `json:"format"` // "filePath" or "error"
	Data     string `json:"data,omitempty"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Outcome is the terminal result of a job. A non-empty Err means the
// gatekeeper ran the job and reported a failure; transport-level problems
// are returned as errors from Await instead.
type Outcome struct {
	ResultPath string
	Filename   string
	Err        string
}

// Failed reports whether the gatekeeper itself marked the job as failed.
func (o *Outcome) Failed() bool {
	return o.Err != ""
}

var (
	ErrSubmission = errors.New("gatekeeper: job submission failed")
	ErrConnection = errors.New("gatekeeper: completion channel failed")
	ErrTimeout    = errors.New("gatekeeper: timed out waiting for job result")
	ErrParse      = errors.New("gatekeeper: malformed result message")
)
