package process

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/salescan/salescan/pkg/hooks"
	"github.com/salescan/salescan/pkg/meter"
)

func writeLedger(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunEndToEnd(t *testing.T) {
	path := writeLedger(t, "ledger.json", `[
		{"id":"a","category":"X","price":10.0},
		{"id":"b","category":"X","price":5.5},
		{"id":"a","category":"X","price":999},
		{"id":"c","category":"Y","price":2.0},
		{"category":"Z","price":7.0}
	]`)

	res := New(Options{}).Run(context.Background(), path)

	if res.Err != nil {
		t.Fatalf("Run reported error: %v", res.Err)
	}
	if res.Counts["X"] != 2 || res.Counts["Y"] != 1 {
		t.Errorf("Counts = %v", res.Counts)
	}
	if res.Sales["X"] != 15.5 || res.Sales["Y"] != 2.0 {
		t.Errorf("Sales = %v", res.Sales)
	}
	if _, ok := res.Counts["Z"]; ok {
		t.Error("Record without ID created a category bucket")
	}
	if res.Accepted != 3 || res.Duplicates != 1 || res.Unkeyed != 1 {
		t.Errorf("Stats = accepted %d, duplicates %d, unkeyed %d", res.Accepted, res.Duplicates, res.Unkeyed)
	}
	if len(res.Counts) != len(res.Sales) {
		t.Error("Mapping key sets diverged")
	}
}

func TestRunNumericAndStringIDsDistinct(t *testing.T) {
	// A numeric 1 and the string "1" are different identifiers and
	// must both be accepted; only a repeated spelling of the same
	// number is a duplicate.
	path := writeLedger(t, "ledger.json", `[
		{"id":1,"category":"X","price":1},
		{"id":"1","category":"X","price":1},
		{"id":1.0,"category":"X","price":1}
	]`)

	res := New(Options{}).Run(context.Background(), path)

	if res.Err != nil {
		t.Fatalf("Run reported error: %v", res.Err)
	}
	if res.Accepted != 2 || res.Duplicates != 1 {
		t.Errorf("Accepted = %d, Duplicates = %d, want 2 and 1", res.Accepted, res.Duplicates)
	}
	if res.Counts["X"] != 2 {
		t.Errorf("Counts = %v, want X:2", res.Counts)
	}
}

func TestRunCustomDefaultCategory(t *testing.T) {
	path := writeLedger(t, "ledger.json", `[{"id":"a","price":4},{"id":"b","category":"X","price":1}]`)

	res := New(Options{DefaultCategory: "Misc"}).Run(context.Background(), path)

	if res.Err != nil {
		t.Fatalf("Run reported error: %v", res.Err)
	}
	if res.Counts["Misc"] != 1 || res.Sales["Misc"] != 4 {
		t.Errorf("Counts = %v, Sales = %v, want Misc bucket", res.Counts, res.Sales)
	}
	if _, ok := res.Counts["Unknown"]; ok {
		t.Error("Configured bucket name ignored")
	}
}

func TestRunMissingFile(t *testing.T) {
	res := New(Options{}).Run(context.Background(), filepath.Join(t.TempDir(), "absent.json"))

	if res.Err == nil {
		t.Fatal("Expected sizing failure to be reported")
	}
	if len(res.Counts) != 0 || len(res.Sales) != 0 {
		t.Errorf("Expected empty mappings, got counts=%v sales=%v", res.Counts, res.Sales)
	}
	if res.Counts == nil || res.Sales == nil {
		t.Error("Mappings must be non-nil even on sizing failure")
	}
}

func TestRunTruncatedLedger(t *testing.T) {
	path := writeLedger(t, "truncated.json",
		`[{"id":"a","category":"X","price":1},{"id":"b","category":"Y","price":2},{"id":"c","cat`)

	res := New(Options{}).Run(context.Background(), path)

	if res.Err == nil {
		t.Fatal("Expected stream failure to be reported")
	}
	// The two complete records survive; nothing is rolled back.
	if res.Counts["X"] != 1 || res.Counts["Y"] != 1 {
		t.Errorf("Partial counts = %v", res.Counts)
	}
	if res.Sales["X"] != 1 || res.Sales["Y"] != 2 {
		t.Errorf("Partial sales = %v", res.Sales)
	}
}

func TestRunMalformedRoot(t *testing.T) {
	path := writeLedger(t, "object.json", `{"id":"a"}`)

	res := New(Options{}).Run(context.Background(), path)

	if res.Err == nil {
		t.Fatal("Expected failure for non-array root")
	}
	if len(res.Counts) != 0 {
		t.Errorf("Counts = %v, want empty", res.Counts)
	}
}

// recordingSink captures the total and the announced size.
type recordingSink struct {
	total int64
}

func (s *recordingSink) Add64(n int64) error {
	atomic.AddInt64(&s.total, n)
	return nil
}

func TestRunProgressTotalEqualsFileSize(t *testing.T) {
	content := `[{"id":"a","category":"Дом","price":1},{"id":"б","category":"Дом","price":2}]`
	path := writeLedger(t, "ledger.json", content)

	sink := &recordingSink{}
	var announced int64
	p := New(Options{
		NewSink: func(total int64) meter.Sink {
			announced = total
			return sink
		},
	})
	res := p.Run(context.Background(), path)

	if res.Err != nil {
		t.Fatalf("Run reported error: %v", res.Err)
	}
	if announced != int64(len(content)) {
		t.Errorf("Announced size = %d, want %d", announced, len(content))
	}
	if sink.total != int64(len(content)) {
		t.Errorf("Sink total = %d, want %d", sink.total, len(content))
	}
	if res.BytesRead != int64(len(content)) {
		t.Errorf("BytesRead = %d, want %d", res.BytesRead, len(content))
	}
}

func TestRunGzipLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(f)
	gw.Write([]byte(`[{"id":"a","category":"X","price":3},{"id":"b","price":4}]`))
	gw.Close()
	f.Close()

	diskSize, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	sink := &recordingSink{}
	p := New(Options{NewSink: func(total int64) meter.Sink { return sink }})
	res := p.Run(context.Background(), path)

	if res.Err != nil {
		t.Fatalf("Run reported error: %v", res.Err)
	}
	if res.Counts["X"] != 1 || res.Counts["Unknown"] != 1 {
		t.Errorf("Counts = %v", res.Counts)
	}
	// Progress tracks compressed on-disk bytes.
	if sink.total != diskSize.Size() {
		t.Errorf("Sink total = %d, want on-disk size %d", sink.total, diskSize.Size())
	}
}

func TestRunHooks(t *testing.T) {
	path := writeLedger(t, "ledger.json", `[{"id":"a","price":1}]`)

	p := New(Options{})

	var preRun, postRun bool
	var sawSize int64
	p.Hooks().RegisterPreRun(func(ctx context.Context, info *hooks.SourceInfo) (context.Context, error) {
		preRun = true
		sawSize = info.SizeBytes
		return ctx, nil
	})
	p.Hooks().RegisterPostRun(func(ctx context.Context, info *hooks.RunInfo) error {
		postRun = true
		if info.Failed {
			t.Error("Clean run flagged as failed")
		}
		return nil
	})

	res := p.Run(context.Background(), path)
	if res.Err != nil {
		t.Fatalf("Run reported error: %v", res.Err)
	}
	if !preRun || !postRun {
		t.Error("Hooks not invoked")
	}
	if sawSize == 0 {
		t.Error("Pre-run hook did not receive the sized input")
	}
}

func TestRunErrorHookOnStreamFailure(t *testing.T) {
	path := writeLedger(t, "bad.json", `[{"id":"a","price":1},`)

	p := New(Options{})
	var phase string
	p.Hooks().RegisterError(func(ctx context.Context, err error, ph string) error {
		phase = ph
		return nil
	})

	res := p.Run(context.Background(), path)
	if res.Err == nil {
		t.Fatal("Expected stream failure")
	}
	if phase != "streaming" {
		t.Errorf("Error hook phase = %q, want streaming", phase)
	}
}

func TestRunDoesNotDistinguishByReturn(t *testing.T) {
	// Whether the run succeeded or failed mid-stream, the caller gets
	// the same shape back: a Result with both mappings populated.
	good := writeLedger(t, "good.json", `[{"id":"a","price":1}]`)
	bad := writeLedger(t, "bad.json", `[{"id":"a","price":1}`)

	gres := New(Options{}).Run(context.Background(), good)
	bres := New(Options{}).Run(context.Background(), bad)

	if gres.Counts == nil || bres.Counts == nil || gres.Sales == nil || bres.Sales == nil {
		t.Error("Mappings must always be present")
	}
	if (gres.Err == nil) == (bres.Err == nil) {
		t.Error("Err flag should be the only distinguishing signal")
	}
}
