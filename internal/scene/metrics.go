package scene

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/roomkit/sceneedit/internal/scene"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	edits metric.Int64Counter
	undos metric.Int64Counter
	redos metric.Int64Counter
}

func newMetrics(m metric.Meter, s *Store) (*metrics, error) {
	var (
		out metrics
		err error
	)

	out.edits, err = m.Int64Counter(
		"scene.edits",
		metric.WithDescription("Total recorded scene edits"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating edits counter: %w", err)
	}

	out.undos, err = m.Int64Counter(
		"scene.undo",
		metric.WithDescription("Total applied undo steps"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating undo counter: %w", err)
	}

	out.redos, err = m.Int64Counter(
		"scene.redo",
		metric.WithDescription("Total applied redo steps"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating redo counter: %w", err)
	}

	objects, err := m.Int64ObservableGauge(
		"scene.objects",
		metric.WithDescription("Current number of placed objects"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating objects gauge: %w", err)
	}

	depth, err := m.Int64ObservableGauge(
		"scene.history.depth",
		metric.WithDescription("Current number of undo and redo steps"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating history depth gauge: %w", err)
	}

	undoAttr := metric.WithAttributes(attribute.String("stack", "undo"))
	redoAttr := metric.WithAttributes(attribute.String("stack", "redo"))

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			s.mu.RLock()
			defer s.mu.RUnlock()
			u, r := s.history.depth()
			o.ObserveInt64(objects, int64(len(s.objects)))
			o.ObserveInt64(depth, int64(u), undoAttr)
			o.ObserveInt64(depth, int64(r), redoAttr)
			return nil
		},
		objects, depth,
	)
	if err != nil {
		return nil, fmt.Errorf("registering scene callback: %w", err)
	}

	return &out, nil
}

func (m *metrics) edit(kind ChangeKind) {
	m.edits.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", string(kind))))
}
