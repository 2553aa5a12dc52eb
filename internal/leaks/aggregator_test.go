package leaks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nao1215/scamguard/internal/metrics"
	"github.com/nao1215/scamguard/internal/model"
)

// fakeProvider is a Provider returning canned records or errors.
type fakeProvider struct {
	name    string
	records []model.LeakRecord
	err     error
	panics  bool
	wait    func()

	mu    sync.Mutex
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(_ context.Context, _ model.CheckItem) ([]model.LeakRecord, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.wait != nil {
		f.wait()
	}
	if f.panics {
		panic("boom")
	}
	return f.records, f.err
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newFakes() (*fakeProvider, *fakeProvider, *fakeProvider) {
	return &fakeProvider{name: NamePasswordRange, records: []model.LeakRecord{{Source: NamePasswordRange}}},
		&fakeProvider{name: NameEmailBreach, records: []model.LeakRecord{{Source: NameEmailBreach, Site: "Adobe"}}},
		&fakeProvider{name: NameGenericLookup, records: []model.LeakRecord{{Source: NameGenericLookup, Site: "vk.com"}}}
}

func TestAggregatorRouting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		kind            model.ItemKind
		expectedSources []string
	}{
		{"credential", model.ItemCredential, []string{NamePasswordRange, NameGenericLookup}},
		{"email", model.ItemEmail, []string{NameEmailBreach, NameGenericLookup}},
		{"phone", model.ItemPhone, []string{NameGenericLookup}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pr, eb, gl := newFakes()
			agg := NewAggregator(pr, eb, gl)
			records := agg.Search(context.Background(), model.CheckItem{Value: "x", Kind: tt.kind})

			if len(records) != len(tt.expectedSources) {
				t.Fatalf("expected %d records, got %d", len(tt.expectedSources), len(records))
			}
			for i, src := range tt.expectedSources {
				if records[i].Source != src {
					t.Errorf("record %d source = %q, expected %q", i, records[i].Source, src)
				}
			}

			if tt.kind == model.ItemPhone && (pr.callCount() != 0 || eb.callCount() != 0) {
				t.Error("phone must only reach the generic lookup")
			}
			if tt.kind == model.ItemEmail && pr.callCount() != 0 {
				t.Error("email must not reach the password range provider")
			}
			if tt.kind == model.ItemCredential && eb.callCount() != 0 {
				t.Error("credential must not reach the e-mail breach provider")
			}
		})
	}
}

func TestAggregatorDegradesSilently(t *testing.T) {
	t.Parallel()

	t.Run("one provider fails", func(t *testing.T) {
		t.Parallel()

		pr, _, gl := newFakes()
		gl.err = errors.New("connection reset")

		records := NewAggregator(pr, nil, gl).Search(context.Background(),
			model.CheckItem{Value: "hunter2", Kind: model.ItemCredential})
		if len(records) != 1 || records[0].Source != NamePasswordRange {
			t.Errorf("expected only the healthy provider's record, got %v", records)
		}
	})

	t.Run("every provider fails", func(t *testing.T) {
		t.Parallel()

		_, eb, gl := newFakes()
		eb.err = &StatusError{Provider: NameEmailBreach, StatusCode: 500}
		gl.err = context.DeadlineExceeded

		records := NewAggregator(nil, eb, gl).Search(context.Background(),
			model.CheckItem{Value: "user@example.com", Kind: model.ItemEmail})
		if records == nil || len(records) != 0 {
			t.Errorf("expected an empty, non-nil result, got %v", records)
		}
	})

	t.Run("panicking provider", func(t *testing.T) {
		t.Parallel()

		_, eb, gl := newFakes()
		eb.panics = true

		records := NewAggregator(nil, eb, gl).Search(context.Background(),
			model.CheckItem{Value: "user@example.com", Kind: model.ItemEmail})
		if len(records) != 1 || records[0].Source != NameGenericLookup {
			t.Errorf("expected generic lookup record only, got %v", records)
		}
	})

	t.Run("missing provider", func(t *testing.T) {
		t.Parallel()

		records := NewAggregator(nil, nil, nil).Search(context.Background(),
			model.CheckItem{Value: "+1234567", Kind: model.ItemPhone})
		if len(records) != 0 {
			t.Errorf("expected no records, got %v", records)
		}
	})
}

func TestAggregatorRunsProvidersConcurrently(t *testing.T) {
	t.Parallel()

	// Each provider waits until the other one has started. A sequential
	// implementation would block until the timeout.
	var started sync.WaitGroup
	started.Add(2)
	barrier := func() {
		started.Done()
		done := make(chan struct{})
		go func() {
			started.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	}

	pr, _, gl := newFakes()
	pr.wait = barrier
	gl.wait = barrier

	start := time.Now()
	records := NewAggregator(pr, nil, gl).Search(context.Background(),
		model.CheckItem{Value: "hunter2", Kind: model.ItemCredential})
	if time.Since(start) >= 2*time.Second {
		t.Error("providers did not run concurrently")
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
}

func TestAggregatorSearchRaw(t *testing.T) {
	t.Parallel()

	pr, eb, gl := newFakes()
	item, records := NewAggregator(pr, eb, gl).SearchRaw(context.Background(), " user@example.com ")
	if item.Kind != model.ItemEmail || item.Value != "user@example.com" {
		t.Errorf("unexpected item %+v", item)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
}

func TestAggregatorRecordsMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	_, eb, gl := newFakes()
	gl.err = errors.New("down")
	NewAggregator(nil, eb, gl, WithMetrics(m)).Search(context.Background(),
		model.CheckItem{Value: "user@example.com", Kind: model.ItemEmail})

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outcomes := map[string]bool{}
	for _, mf := range families {
		if mf.GetName() != "scamguard_provider_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" {
					outcomes[label.GetValue()] = true
				}
			}
		}
	}
	if !outcomes["ok"] || !outcomes["error"] {
		t.Errorf("expected ok and error outcomes, got %v", outcomes)
	}
}

func TestTransportErrorHidesURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewEmailBreach(http.DefaultClient, url).
		Search(context.Background(), model.CheckItem{Value: "victim@example.com", Kind: model.ItemEmail})
	if err == nil {
		t.Fatal("expected error from closed server")
	}
	if strings.Contains(err.Error(), "victim@example.com") {
		t.Errorf("error leaks the searched value: %v", err)
	}
}
