package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/buoyantio/ringstack/latency"
)

func TestTailLines(t *testing.T) {
	lines, err := tailLines(strings.NewReader("a\nb\nc\nd\ne\n"), 3)
	if err != nil {
		t.Fatal(err)
	}
	if lines.Len() != 3 {
		t.Fatalf("expected 3 retained lines, got %d", lines.Len())
	}

	var out bytes.Buffer
	printLines(&out, lines, false)
	if out.String() != "e\nd\nc\n" {
		t.Errorf("unexpected newest-first output %q", out.String())
	}

	out.Reset()
	printLines(&out, lines, true)
	if out.String() != "c\nd\ne\n" {
		t.Errorf("unexpected oldest-first output %q", out.String())
	}
}

func TestTailLinesShortInput(t *testing.T) {
	lines, err := tailLines(strings.NewReader("only\n"), 10)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	printLines(&out, lines, true)
	if out.String() != "only\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestLatencyTail(t *testing.T) {
	recorder, err := latency.NewRecorder(2)
	if err != nil {
		t.Fatal(err)
	}
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var out bytes.Buffer
	tail := &latencyTail{
		recorder: recorder,
		window:   2,
		out:      &out,
		now:      func() time.Time { return at },
	}

	if err := tail.run(strings.NewReader("10\n10\n\nbogus\n200\n200\n7\n")); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	expected := []string{
		"#                       count fail min [p50 p95 p99  p999]  max change",
		"2024-03-01T12:00:00Z      2    0  10 [ 10  10  10   10 ]   10 ",
		"2024-03-01T12:00:00Z      2    1 200 [200 200 200  200 ]  200 +",
		"2024-03-01T12:00:00Z      1    0   7 [  7   7   7    7 ]    7 -",
	}
	if len(lines) != len(expected) {
		t.Fatalf("expected %d lines, got %d: %q", len(expected), len(lines), out.String())
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("line %d:\nexpected %q\n     got %q", i, expected[i], lines[i])
		}
	}

	// Only the last two intervals are retained.
	if n := recorder.Recent().TotalCount(); n != 3 {
		t.Errorf("expected 3 retained samples, got %d", n)
	}
}

func TestWriteReportCSV(t *testing.T) {
	recorder, err := latency.NewRecorder(1)
	if err != nil {
		t.Fatal(err)
	}
	for _, ms := range []int64{1, 2} {
		if err := recorder.Record(ms); err != nil {
			t.Fatal(err)
		}
	}
	recorder.Rotate(time.Now())

	name := filepath.Join(t.TempDir(), "latencies.csv")
	if err := writeReportCSV(name, recorder); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "2, 2, 1\n") {
		t.Errorf("unexpected CSV contents %q", data)
	}
}

func TestCheckFlags(t *testing.T) {
	cases := []struct {
		nargs, n, window int
		latency          bool
		metricAddr       string
		expected         string
	}{
		{0, 10, 100, false, "", ""},
		{1, 10, 100, true, ":9999", ""},
		{2, 10, 100, false, "", "Expecting at most one argument: the file to read, or - for stdin"},
		{0, 0, 100, false, "", "n must be at least 1"},
		{0, 10, 0, true, "", "window must be at least 1"},
		{0, 10, 100, false, ":9999", "metric-addr requires -latency"},
	}
	for _, c := range cases {
		got := checkFlags(c.nargs, c.n, c.window, c.latency, c.metricAddr)
		if got != c.expected {
			t.Errorf("checkFlags(%d, %d, %d, %v, %q) = %q, expected %q",
				c.nargs, c.n, c.window, c.latency, c.metricAddr, got, c.expected)
		}
	}
}
