package coordinator_test

import (
	"MuseLink/internal/coordinator"
	"MuseLink/internal/engine"
	"MuseLink/internal/gatekeeper"
	"MuseLink/internal/gatekeeper/gatekeepertest"
	types "MuseLink/pkg"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCoordinator(t *testing.T, srv *gatekeepertest.Server, timeout time.Duration) (*coordinator.Coordinator, string) {
	t.Helper()
	logger := zap.NewNop()
	client := gatekeeper.NewClient(types.GatekeeperConfig{
		BaseURL:          srv.URL(),
		ResultTimeoutSec: 300,
	}, logger)
	binaries := engine.NewStore(nil, types.RetryConfig{}, logger)
	tempDir := t.TempDir()
	return coordinator.New(client, binaries, logger, timeout, tempDir), tempDir
}

func pathSpec() *coordinator.JobSpec {
	return &coordinator.JobSpec{
		Audio:           coordinator.FromPath("/a.wav"),
		Video:           coordinator.FromPath("/v.mp4"),
		Output:          coordinator.FromPath("/out.mp4"),
		ExtraMargin:     10,
		ParsingMode:     "jaw",
		LeftCheekWidth:  90,
		RightCheekWidth: 90,
	}
}

func requireEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp dir should be empty after the job settles")
}

func TestProcessItem_PathInPathOut(t *testing.T) {
	srv := gatekeepertest.NewServer()
	defer srv.Close()
	srv.Enqueue(gatekeepertest.Success("/tmp/r1.mp4", "r1.mp4"))

	coord, tempDir := newCoordinator(t, srv, time.Second)
	result, err := coord.ProcessItem(context.Background(), &engine.Item{}, pathSpec())
	require.NoError(t, err)

	assert.Equal(t, "/tmp/r1.mp4", result.FilePath)
	assert.Equal(t, "r1.mp4", result.FileName)
	assert.Empty(t, result.Binary)

	// The output target is passed through verbatim, and no temp file is
	// created for path-typed slots.
	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/out.mp4", reqs[0].OutputFilePath)
	assert.Equal(t, "/a.wav", reqs[0].AudioPath)
	assert.Equal(t, "/v.mp4", reqs[0].VideoPath)
	requireEmptyDir(t, tempDir)
}

func TestProcessItem_BinaryInBinaryOut(t *testing.T) {
	srv := gatekeepertest.NewServer()
	defer srv.Close()

	payload := make([]byte, 100)
	for i := range payload {
		payload[i] = byte(i)
	}
	resultBytes := []byte("rendered video bytes")

	res := &gatekeepertest.Result{Format: "filePath", Filename: "result.mp4"}
	srv.Enqueue(gatekeepertest.Script{
		Result: res,
		OnExecute: func(req *gatekeeper.JobRequest) {
			// The audio temp file must exist and carry the item's bytes
			// while the job is in flight.
			got, err := os.ReadFile(req.AudioPath)
			require.NoError(t, err)
			require.Equal(t, payload, got)

			// Play the gatekeeper: write the result where asked.
			require.NoError(t, os.WriteFile(req.OutputFilePath, resultBytes, 0644))
			res.Data = req.OutputFilePath
		},
	})

	coord, tempDir := newCoordinator(t, srv, time.Second)

	item := &engine.Item{
		Binary: map[string]*engine.Binary{
			"data": {Data: payload, FileName: "voice.wav", MimeType: "audio/wav"},
		},
	}
	spec := pathSpec()
	spec.Audio = coordinator.FromBinary("data")
	spec.Output = coordinator.FromBinary("result")

	result, err := coord.ProcessItem(context.Background(), item, spec)
	require.NoError(t, err)

	require.Contains(t, result.Binary, "result")
	attachment := result.Binary["result"]
	assert.Equal(t, resultBytes, attachment.Data)
	assert.Equal(t, "result.mp4", attachment.FileName)
	assert.Equal(t, "video/mp4", attachment.MimeType)

	// The generated temp paths carry the media through; both the audio
	// temp and the result file are gone once the item settles.
	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.True(t, strings.HasPrefix(reqs[0].AudioPath, tempDir))
	assert.Equal(t, ".wav", filepath.Ext(reqs[0].AudioPath))
	_, err = os.Stat(reqs[0].OutputFilePath)
	assert.True(t, os.IsNotExist(err))
	requireEmptyDir(t, tempDir)
}

func TestProcessItem_JobFailure(t *testing.T) {
	srv := gatekeepertest.NewServer()
	defer srv.Close()
	srv.Enqueue(gatekeepertest.Failure("face not detected"))

	coord, tempDir := newCoordinator(t, srv, time.Second)
	_, err := coord.ProcessItem(context.Background(), &engine.Item{}, pathSpec())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "face not detected")
	requireEmptyDir(t, tempDir)
}

func TestProcessItem_Timeout_CleansUpTemps(t *testing.T) {
	srv := gatekeepertest.NewServer()
	defer srv.Close()
	srv.Enqueue(gatekeepertest.Script{Silent: true})

	coord, tempDir := newCoordinator(t, srv, 100*time.Millisecond)

	item := &engine.Item{
		Binary: map[string]*engine.Binary{
			"data": {Data: []byte("audio"), FileName: "voice.wav"},
		},
	}
	spec := pathSpec()
	spec.Audio = coordinator.FromBinary("data")

	_, err := coord.ProcessItem(context.Background(), item, spec)
	require.ErrorIs(t, err, gatekeeper.ErrTimeout)
	requireEmptyDir(t, tempDir)
}

func TestProcessItem_MissingInputs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*coordinator.JobSpec)
	}{
		{name: "empty audio path", mutate: func(s *coordinator.JobSpec) { s.Audio = coordinator.FromPath("") }},
		{name: "empty video path", mutate: func(s *coordinator.JobSpec) { s.Video = coordinator.FromPath("") }},
		{name: "empty output path", mutate: func(s *coordinator.JobSpec) { s.Output = coordinator.FromPath("") }},
		{name: "absent binary property", mutate: func(s *coordinator.JobSpec) { s.Audio = coordinator.FromBinary("nope") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := gatekeepertest.NewServer()
			defer srv.Close()

			coord, _ := newCoordinator(t, srv, time.Second)
			spec := pathSpec()
			tt.mutate(spec)

			_, err := coord.ProcessItem(context.Background(), &engine.Item{}, spec)
			require.ErrorIs(t, err, coordinator.ErrMissingInput)

			// The item fails before anything is submitted.
			assert.Empty(t, srv.Requests())
		})
	}
}

func TestRun_TolerantMode_RecordsFailuresAndContinues(t *testing.T) {
	srv := gatekeepertest.NewServer()
	defer srv.Close()
	srv.Enqueue(gatekeepertest.Failure("face not detected"))
	srv.Enqueue(gatekeepertest.Success("/tmp/r2.mp4", "r2.mp4"))

	coord, _ := newCoordinator(t, srv, time.Second)
	items := []*engine.Item{{}, {}}
	resolve := func(*engine.Item) (*coordinator.JobSpec, error) { return pathSpec(), nil }

	results, err := coord.Run(context.Background(), items, resolve, coordinator.RunOptions{ContinueOnFail: true})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Failed())
	assert.Contains(t, results[0].Error, "face not detected")
	assert.Equal(t, "/tmp/r2.mp4", results[1].FilePath)
	assert.Equal(t, "r2.mp4", results[1].FileName)
}

func TestRun_StrictMode_AbortsOnFirstFailure(t *testing.T) {
	srv := gatekeepertest.NewServer()
	defer srv.Close()
	srv.Enqueue(gatekeepertest.Failure("face not detected"))
	srv.Enqueue(gatekeepertest.Success("/tmp/r2.mp4", "r2.mp4"))

	coord, _ := newCoordinator(t, srv, time.Second)
	items := []*engine.Item{{}, {}}
	resolve := func(*engine.Item) (*coordinator.JobSpec, error) { return pathSpec(), nil }

	results, err := coord.Run(context.Background(), items, resolve, coordinator.RunOptions{})
	require.Error(t, err)
	assert.Nil(t, results)

	var itemErr *coordinator.ItemError
	require.True(t, errors.As(err, &itemErr))
	assert.Equal(t, 0, itemErr.Index)
	assert.Contains(t, itemErr.Error(), "face not detected")

	// The second item never ran.
	assert.Len(t, srv.Requests(), 1)
}

func TestRun_ResolveErrorIsItemScoped(t *testing.T) {
	srv := gatekeepertest.NewServer()
	defer srv.Close()
	srv.Enqueue(gatekeepertest.Success("/tmp/r1.mp4", "r1.mp4"))

	coord, _ := newCoordinator(t, srv, time.Second)
	items := []*engine.Item{{}, {}}
	calls := 0
	resolve := func(*engine.Item) (*coordinator.JobSpec, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("bad params")
		}
		return pathSpec(), nil
	}

	results, err := coord.Run(context.Background(), items, resolve, coordinator.RunOptions{ContinueOnFail: true})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Contains(t, results[0].Error, "bad params")
	assert.Equal(t, "/tmp/r1.mp4", results[1].FilePath)
}
