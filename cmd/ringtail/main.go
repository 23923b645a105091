// ringtail keeps the newest lines of its input in a fixed-size ring and
// prints them newest first. With -latency, lines are millisecond latencies
// summarized over a bounded history of reporting intervals.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/buoyantio/ringstack/hdrreport"
	"github.com/buoyantio/ringstack/ioutils"
	"github.com/buoyantio/ringstack/latency"
	"github.com/buoyantio/ringstack/ring"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var promLines = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "ringtail_lines_total",
	Help: "Number of input lines read",
})

func exUsage(msg string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, fmt.Sprintf(msg, args...))
	fmt.Fprintln(os.Stderr, "Try --help for help.")
	os.Exit(64)
}

func openInput(name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

// tailLines pushes every line of r onto a ring holding the newest n.
func tailLines(r io.Reader, n int) (*ring.Stack[string], error) {
	lines := ring.New[string](n)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		promLines.Inc()
		lines.Push(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return lines, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}

func printLines(w io.Writer, lines *ring.Stack[string], oldestFirst bool) {
	if oldestFirst {
		for i := lines.Len() - 1; i >= 0; i-- {
			fmt.Fprintln(w, lines.At(i))
		}
		return
	}
	for line := range lines.Values() {
		fmt.Fprintln(w, line)
	}
}

type latencyTail struct {
	recorder *latency.Recorder
	window   int
	out      io.Writer
	now      func() time.Time
	failed   int
}

func (t *latencyTail) printHeader() {
	timePadding := strings.Repeat(" ", len(t.now().Format(time.RFC3339)))
	fmt.Fprintf(t.out, "# %s  count fail min [p50 p95 p99  p999]  max change\n", timePadding)
}

func (t *latencyTail) report(iv latency.Interval) {
	fmt.Fprintf(t.out, "%s %6d %4d %3d [%3d %3d %3d %4d ] %4d %s\n",
		iv.At.Format(time.RFC3339),
		iv.Count,
		t.failed,
		iv.Min,
		iv.P50,
		iv.P95,
		iv.P99,
		iv.P999,
		iv.Max,
		iv.Change)
	t.failed = 0
}

// run records one latency per line, rotating every window samples. A
// partially filled final interval is rotated at EOF.
func (t *latencyTail) run(r io.Reader) error {
	t.printHeader()

	pending := 0
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		promLines.Inc()
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		ms, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			err = t.recorder.Record(ms)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "line %d: %v\n", lineNo, err)
			t.failed++
			continue
		}
		pending++
		if pending == t.window {
			t.report(t.recorder.Rotate(t.now()))
			pending = 0
		}
	}
	if pending > 0 {
		t.report(t.recorder.Rotate(t.now()))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func writeReportCSV(name string, recorder *latency.Recorder) error {
	w, err := ioutils.OpenOutput(name)
	if err != nil {
		return err
	}
	if err := hdrreport.WriteReportCSV(w, recorder.Recent()); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// checkFlags returns a usage message for an invalid flag combination, or "".
func checkFlags(nargs, n, windowSize int, latencyMode bool, metricAddr string) string {
	switch {
	case nargs > 1:
		return "Expecting at most one argument: the file to read, or - for stdin"
	case n < 1:
		return "n must be at least 1"
	case windowSize < 1:
		return "window must be at least 1"
	case metricAddr != "" && !latencyMode:
		// Tail mode only prints at EOF, so there is nothing to scrape.
		return "metric-addr requires -latency"
	}
	return ""
}

func main() {
	n := flag.Int("n", 10, "number of lines (or latency intervals) to keep")
	reverse := flag.Bool("reverse", false, "print retained lines oldest first")
	latencyMode := flag.Bool("latency", false, "treat each line as a latency in milliseconds")
	windowSize := flag.Int("window", 100, "latency samples per reporting interval")
	noLatencySummary := flag.Bool("noLatencySummary", false, "suppress the final latency summary")
	reportLatenciesCSV := flag.String("reportLatenciesCSV", "",
		"filename to output hdrhistogram latencies of the retained intervals in CSV (- for stdout)")
	metricAddr := flag.String("metric-addr", "", "address to serve metrics on while reading latencies (requires -latency)")
	help := flag.Bool("help", false, "show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [file]\n", path.Base(os.Args[0]))
		flag.PrintDefaults()
	}

	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(64)
	}

	if msg := checkFlags(flag.NArg(), *n, *windowSize, *latencyMode, *metricAddr); msg != "" {
		exUsage(msg)
	}

	in, err := openInput(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	defer in.Close()

	var opts []latency.Option
	if *metricAddr != "" {
		prometheus.MustRegister(promLines)
		opts = append(opts, latency.WithMetrics(prometheus.DefaultRegisterer, "ringtail"))
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricAddr, nil); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	if !*latencyMode {
		lines, err := tailLines(in, *n)
		printLines(os.Stdout, lines, *reverse)
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	recorder, err := latency.NewRecorder(*n, opts...)
	if err != nil {
		log.Fatal(err)
	}
	t := &latencyTail{recorder: recorder, window: *windowSize, out: os.Stdout, now: time.Now}
	if err := t.run(in); err != nil {
		log.Fatal(err)
	}
	if !*noLatencySummary {
		hdrreport.PrintLatencySummary(os.Stdout, recorder.Recent())
	}
	if *reportLatenciesCSV != "" {
		if err := writeReportCSV(*reportLatenciesCSV, recorder); err != nil {
			log.Panicf("Unable to write Latency CSV file: %v\n", err)
		}
	}
}
