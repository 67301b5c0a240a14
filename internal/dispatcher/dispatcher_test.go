package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// testLogger implements Logger for testing
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("DEBUG: %s %v", msg, keysAndValues))
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("INFO: %s %v", msg, keysAndValues))
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("ERROR: %s %v", msg, keysAndValues))
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *testLogger) {
	logger := &testLogger{}

	d, err := New(logger)
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}

	return d, logger
}

func TestDispatcher_SyncHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	called := false
	d.Register(":TEST:", func(e Event) (any, error) {
		called = true
		return "result", nil
	})

	result, err := d.Dispatch(Event{Command: ":TEST:", Args: []string{"arg1"}})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !called {
		t.Error("handler was not called")
	}
	if result != "result" {
		t.Errorf("expected 'result', got %v", result)
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(Event{Command: ":UNKNOWN:"})

	if err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestDispatcher_LoggedHandler(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register(":LOGGED:", func(e Event) (any, error) {
		return "ok", nil
	}, Logged())

	d.Dispatch(Event{Command: ":LOGGED:", Args: []string{"a", "b"}})

	logger.mu.Lock()
	defer logger.mu.Unlock()

	if len(logger.messages) < 2 {
		t.Errorf("expected at least 2 log messages, got %d", len(logger.messages))
	}
}

func TestDispatcher_LoggedHandlerError(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register(":ERROR:", func(e Event) (any, error) {
		return nil, fmt.Errorf("test error")
	}, Logged())

	d.Dispatch(Event{Command: ":ERROR:"})

	logger.mu.Lock()
	defer logger.mu.Unlock()

	hasError := false
	for _, msg := range logger.messages {
		if strings.HasPrefix(msg, "ERROR") {
			hasError = true
			break
		}
	}

	if !hasError {
		t.Error("expected error log message")
	}
}

func TestDispatcher_HasHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Register(":EXISTS:", func(e Event) (any, error) { return nil, nil })

	if !d.HasHandler(":EXISTS:") {
		t.Error("expected handler to exist")
	}

	if d.HasHandler(":NOT_EXISTS:") {
		t.Error("expected handler to not exist")
	}
}

func TestDispatcher_Commands(t *testing.T) {
	d, _ := newTestDispatcher(t)

	nop := func(e Event) (any, error) { return nil, nil }
	d.Register(":UNDO:", nop)
	d.Register(":OBJECT:ADD:", nop)
	d.Register(":REDO:", nop)

	got := d.Commands()
	want := []string{":OBJECT:ADD:", ":REDO:", ":UNDO:"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDispatcher_RunPreservesOrder(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var seen []string
	d.Register(":ECHO:", func(e Event) (any, error) {
		seen = append(seen, e.Args[0])
		return e.Args[0], nil
	})

	events := make(chan Event, 10)
	for i := range 10 {
		events <- Event{Command: ":ECHO:", Args: []string{fmt.Sprint(i)}}
	}
	close(events)

	var results []Result
	err := d.Run(context.Background(), events, func(r Result) {
		results = append(results, r)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Value != fmt.Sprint(i) {
			t.Errorf("result %d: expected %d, got %v", i, i, r.Value)
		}
		if r.Event.Timestamp.IsZero() {
			t.Errorf("result %d: timestamp not set", i)
		}
	}
	if len(seen) != 10 || seen[0] != "0" || seen[9] != "9" {
		t.Errorf("handler saw events out of order: %v", seen)
	}
}

func TestDispatcher_RunReportsErrors(t *testing.T) {
	d, _ := newTestDispatcher(t)

	boom := errors.New("boom")
	d.Register(":FAIL:", func(e Event) (any, error) { return nil, boom })

	events := make(chan Event, 2)
	events <- Event{Command: ":FAIL:"}
	events <- Event{Command: ":MISSING:"}
	close(events)

	var errs []error
	if err := d.Run(context.Background(), events, func(r Result) { errs = append(errs, r.Err) }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(errs) != 2 {
		t.Fatalf("expected 2 results, got %d", len(errs))
	}
	if !errors.Is(errs[0], boom) {
		t.Errorf("expected boom, got %v", errs[0])
	}
	if errs[1] == nil {
		t.Error("expected unknown command error")
	}
}

func TestDispatcher_RunNilReply(t *testing.T) {
	d, _ := newTestDispatcher(t)

	calls := 0
	d.Register(":COUNT:", func(e Event) (any, error) {
		calls++
		return nil, nil
	})

	events := make(chan Event, 3)
	for range 3 {
		events <- Event{Command: ":COUNT:"}
	}
	close(events)

	if err := d.Run(context.Background(), events, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDispatcher_RunStopsOnCancel(t *testing.T) {
	d, _ := newTestDispatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan Event)

	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx, events, nil)
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestDispatcher_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(noop.NewMeterProvider()) })

	d, _ := newTestDispatcher(t)
	d.Register(":OK:", func(e Event) (any, error) { return nil, nil })
	d.Register(":FAIL:", func(e Event) (any, error) { return nil, errors.New("no") })

	d.Dispatch(Event{Command: ":OK:"})
	d.Dispatch(Event{Command: ":OK:"})
	d.Dispatch(Event{Command: ":FAIL:"})

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}

	if totals["dispatcher.events.processed"] != 3 {
		t.Errorf("expected 3 processed, got %d", totals["dispatcher.events.processed"])
	}
	if totals["dispatcher.events.failed"] != 1 {
		t.Errorf("expected 1 failed, got %d", totals["dispatcher.events.failed"])
	}
}
