package coordinator

import (
	"MuseLink/internal/engine"
	"MuseLink/internal/gatekeeper"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const resultMimeType = "video/mp4"

// JobSpec is the fully resolved per-item job description: where the two
// media inputs come from, where the output goes, and the inference knobs.
type JobSpec struct {
	Audio  MediaSource
	Video  MediaSource
	Output MediaSource // SourcePath: target path; SourceBinary: property name

	BBoxShift       int
	ExtraMargin     int
	ParsingMode     string
	LeftCheekWidth  int
	RightCheekWidth int
}

// RunOptions controls batch failure handling.
type RunOptions struct {
	// ContinueOnFail records each item's failure in its result slot and
	// keeps going; otherwise the first failure aborts the whole batch.
	ContinueOnFail bool
}

// Coordinator drives one item at a time through the full job lifecycle:
// resolve inputs, submit, subscribe, await the outcome, reconcile the
// result, clean up owned temp files. Items never share state.
type Coordinator struct {
	client   *gatekeeper.Client
	binaries *engine.Store
	logger   *zap.Logger
	timeout  time.Duration
	tempDir  string
}

// New creates a coordinator. A zero timeout falls back to the client's
// configured result timeout; an empty tempDir falls back to the OS default.
func New(client *gatekeeper.Client, binaries *engine.Store, logger *zap.Logger, timeout time.Duration, tempDir string) *Coordinator {
	if timeout <= 0 {
		timeout = client.ResultTimeout()
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Coordinator{
		client:   client,
		binaries: binaries,
		logger:   logger,
		timeout:  timeout,
		tempDir:  tempDir,
	}
}

// Run processes items strictly in order, one full lifecycle at a time.
// In tolerant mode every item gets a result record, failed ones carrying
// the error message; in strict mode the first failure aborts with an
// ItemError naming the item.
func (c *Coordinator) Run(ctx context.Context, items []*engine.Item, resolve func(*engine.Item) (*JobSpec, error), opts RunOptions) ([]*engine.Result, error) {
	results := make([]*engine.Result, 0, len(items))

	for i, item := range items {
		result, err := c.processItem(ctx, item, resolve)
		if err != nil {
			c.logger.Error("Item failed",
				zap.Int("item", i),
				zap.Error(err),
			)
			if !opts.ContinueOnFail {
				return nil, &ItemError{Index: i, Err: err}
			}
			results = append(results, &engine.Result{Error: err.Error()})
			continue
		}
		results = append(results, result)
	}

	return results, nil
}

func (c *Coordinator) processItem(ctx context.Context, item *engine.Item, resolve func(*engine.Item) (*JobSpec, error)) (*engine.Result, error) {
	spec, err := resolve(item)
	if err != nil {
		return nil, err
	}
	return c.ProcessItem(ctx, item, spec)
}

// ProcessItem runs a single item's job to completion. Temp files created
// for binary inputs are deleted on every exit path.
func (c *Coordinator) ProcessItem(ctx context.Context, item *engine.Item, spec *JobSpec) (*engine.Result, error) {
	temps := newTempSet(c.logger)
	defer temps.removeAll()

	audioPath, err := c.resolveInput(ctx, item, spec.Audio, "audio", temps)
	if err != nil {
		return nil, err
	}
	videoPath, err := c.resolveInput(ctx, item, spec.Video, "video", temps)
	if err != nil {
		return nil, err
	}
	outputPath, err := c.resolveOutput(spec.Output)
	if err != nil {
		return nil, err
	}

	req := &gatekeeper.JobRequest{
		AudioPath:       audioPath,
		VideoPath:       videoPath,
		OutputFilePath:  outputPath,
		BBoxShift:       spec.BBoxShift,
		ExtraMargin:     spec.ExtraMargin,
		ParsingMode:     spec.ParsingMode,
		LeftCheekWidth:  spec.LeftCheekWidth,
		RightCheekWidth: spec.RightCheekWidth,
	}

	jobID, err := c.client.Submit(ctx, req)
	if err != nil {
		return nil, err
	}

	// The subscription must be live right after submission so a fast
	// completion push is not missed.
	sub, err := c.client.Subscribe(ctx, jobID)
	if err != nil {
		return nil, err
	}
	defer sub.Close()

	outcome, err := sub.Await(ctx, c.timeout)
	if err != nil {
		return nil, err
	}
	if outcome.Failed() {
		return nil, fmt.Errorf("job %s failed: %s", jobID, outcome.Err)
	}

	return c.reconcile(spec.Output, outcome)
}

// resolveInput turns a media slot into a submittable filesystem path. Binary
// slots are materialized to a temp file registered for deferred deletion.
func (c *Coordinator) resolveInput(ctx context.Context, item *engine.Item, src MediaSource, slot string, temps *tempSet) (string, error) {
	switch src.Mode {
	case SourcePath:
		if src.Path == "" {
			return "", fmt.Errorf("%w: %s path is empty", ErrMissingInput, slot)
		}
		return src.Path, nil

	case SourceBinary:
		data, err := c.binaries.Fetch(ctx, item, src.Property)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrMissingInput, slot, err)
		}

		tmp := filepath.Join(c.tempDir, fmt.Sprintf("muselink-%s-%s%s", slot, uuid.NewString(), binaryExt(item, src.Property)))
		if err := os.WriteFile(tmp, data, 0644); err != nil {
			return "", fmt.Errorf("write %s temp file: %w", slot, err)
		}
		temps.add(tmp)

		c.logger.Debug("Binary input materialized",
			zap.String("slot", slot),
			zap.String("property", src.Property),
			zap.String("path", tmp),
			zap.Int("size", len(data)),
		)
		return tmp, nil

	default:
		return "", fmt.Errorf("%w: %s has unknown source mode %q", ErrMissingInput, slot, src.Mode)
	}
}

// resolveOutput picks the path the gatekeeper writes the result to. In
// binary mode a unique local path is generated; it becomes the coordinator's
// to delete once the result has been read back.
func (c *Coordinator) resolveOutput(out MediaSource) (string, error) {
	switch out.Mode {
	case SourcePath:
		if out.Path == "" {
			return "", fmt.Errorf("%w: output path is empty", ErrMissingInput)
		}
		return out.Path, nil
	case SourceBinary:
		return filepath.Join(c.tempDir, fmt.Sprintf("muselink-result-%s.mp4", uuid.NewString())), nil
	default:
		return "", fmt.Errorf("%w: output has unknown mode %q", ErrMissingInput, out.Mode)
	}
}

// reconcile maps a successful outcome into the item's result record. Path
// mode passes the result file through untouched; binary mode reads it fully,
// attaches the bytes, then deletes the file.
func (c *Coordinator) reconcile(out MediaSource, outcome *gatekeeper.Outcome) (*engine.Result, error) {
	if out.Mode == SourcePath {
		return &engine.Result{
			FilePath: outcome.ResultPath,
			FileName: outcome.Filename,
		}, nil
	}

	data, err := os.ReadFile(outcome.ResultPath)
	if err != nil {
		return nil, fmt.Errorf("read result file %s: %w", outcome.ResultPath, err)
	}

	fileName := outcome.Filename
	if fileName == "" {
		fileName = filepath.Base(outcome.ResultPath)
	}

	if err := os.Remove(outcome.ResultPath); err != nil {
		c.logger.Warn("Failed to remove result file",
			zap.String("path", outcome.ResultPath),
			zap.Error(err),
		)
	}

	return &engine.Result{
		Binary: map[string]*engine.Binary{
			out.Property: c.binaries.Attach(data, fileName, resultMimeType),
		},
	}, nil
}

func binaryExt(item *engine.Item, property string) string {
	if bin, ok := item.Binary[property]; ok && bin != nil && bin.FileName != "" {
		return filepath.Ext(bin.FileName)
	}
	return ""
}

// tempSet tracks temp files owned by one item's lifecycle.
type tempSet struct {
	paths  []string
	logger *zap.Logger
}

func newTempSet(logger *zap.Logger) *tempSet {
	return &tempSet{logger: logger}
}

func (t *tempSet) add(path string) {
	t.paths = append(t.paths, path)
}

// removeAll deletes every tracked file. An already-absent file is a no-op;
// anything else is logged and swallowed so cleanup never masks the item's
// real outcome.
func (t *tempSet) removeAll() {
	for _, path := range t.paths {
		err := os.Remove(path)
		if err == nil || os.IsNotExist(err) {
			continue
		}
		t.logger.Warn("Failed to remove temp file",
			zap.String("path", path),
			zap.Error(err),
		)
	}
	t.paths = nil
}
