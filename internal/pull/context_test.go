package pull

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorderFrom(t *testing.T) {
	assert.Nil(t, RecorderFrom(context.Background()))

	rec := &recordingRecorder{failures: map[Kind]int{}}
	ctx := ContextWithRecorder(context.Background(), rec)
	assert.Same(t, rec, RecorderFrom(ctx))
}
