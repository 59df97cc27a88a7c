package recorder

import "context"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRender(context.Context, *RenderEvent) error { return nil }
func (n *NoopRecorder) RecordAlert(context.Context, *AlertEvent) error   { return nil }
func (n *NoopRecorder) RecentRenders(context.Context, string, int) ([]RenderEvent, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
