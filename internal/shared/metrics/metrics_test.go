package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	var buf bytes.Buffer
	writeHistogram(&buf, "x", "x", h.Snapshot())
	out := buf.String()

	for _, want := range []string{
		`x_bucket{le="10"} 1`,
		`x_bucket{le="100"} 2`,
		`x_bucket{le="+Inf"} 3`,
		`x_sum 555`,
		`x_count 3`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in\n%s", want, out)
		}
	}
}

func TestRenderIncludesExportCounters(t *testing.T) {
	IncExport("pdf")
	IncExport("unknown")
	out := Render()
	if !strings.Contains(out, `export_total{format="pdf"}`) || !strings.Contains(out, "audit_duration_ms_count") {
		t.Fatalf("unexpected metrics output:\n%s", out)
	}
}
