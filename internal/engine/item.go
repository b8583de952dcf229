package engine

// Item is one unit of work handed to a node by the host workflow engine:
// named parameter values plus named binary payloads.
type Item struct {
	Params map[string]interface{} `json:"params,omitempty"`
	Binary map[string]*Binary     `json:"binary,omitempty"`
}

// Binary is an attachable payload. It either carries its bytes inline or
// references an object in the engine's binary storage backend.
type Binary struct {
	Data     []byte `json:"data,omitempty"`
	Bucket   string `json:"bucket,omitempty"`
	Key      string `json:"key,omitempty"`
	FileName string `json:"file_name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// Result is the per-item output record. Exactly one of the three shapes is
// populated: a path+filename pair, a binary attachment, or an error message
// when the batch runs in failure-tolerant mode.
type Result struct {
	FilePath string             `json:"file_path,omitempty"`
	FileName string             `json:"file_name,omitempty"`
	Binary   map[string]*Binary `json:"binary,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// Failed reports whether this record captured an item-level failure.
func (r *Result) Failed() bool {
	return r.Error != ""
}
