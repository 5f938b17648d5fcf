package pull

import "context"

type recorderKey struct{}

// ContextWithRecorder returns a context carrying r. Modules pick it up when
// they build their producers during creation.
func ContextWithRecorder(ctx context.Context, r Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, r)
}

// RecorderFrom returns the Recorder carried by ctx, or nil.
func RecorderFrom(ctx context.Context) Recorder {
	if ctx == nil {
		return nil
	}
	r, _ := ctx.Value(recorderKey{}).(Recorder)
	return r
}
