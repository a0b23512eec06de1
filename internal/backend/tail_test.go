package backend

import (
	"slices"
	"testing"
)

func TestTailBufferKeepsLastLines(t *testing.T) {
	tail := newTailBuffer(3)
	_, _ = tail.Write([]byte("one\ntwo\n"))
	_, _ = tail.Write([]byte("progress 10%\rprogress 50%\rprogress 100%\n"))
	_, _ = tail.Write([]byte("\n\nlast without newline"))

	got := tail.Lines()
	want := []string{"progress 50%", "progress 100%", "last without newline"}
	if !slices.Equal(got, want) {
		t.Fatalf("Lines() = %v, want %v", got, want)
	}
}

func TestMergeEnvAddsOnlyMissingKeys(t *testing.T) {
	env := mergeEnv(
		[]string{"PATH=/bin", "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=0"},
		[]string{"TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1", "PYTORCH_CUDA_ALLOC_CONF=expandable_segments:True", "malformed"},
	)
	want := []string{"PATH=/bin", "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=0", "PYTORCH_CUDA_ALLOC_CONF=expandable_segments:True"}
	if !slices.Equal(env, want) {
		t.Fatalf("mergeEnv = %v, want %v", env, want)
	}
}
