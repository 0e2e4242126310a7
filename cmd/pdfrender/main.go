// pdfrender renders a single PDF page's content stream to a PNG raster, or
// (in --analyze mode) tallies the content stream's operator frequencies.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/novvoo/pdfstream/internal/analyze"
	"github.com/novvoo/pdfstream/internal/device"
	"github.com/novvoo/pdfstream/internal/interp"
	"github.com/novvoo/pdfstream/internal/renderctx"
	"github.com/novvoo/pdfstream/pkg/pdfdoc"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: pdfrender [options] input.pdf\n\nOptions:\n")
	flag.PrintDefaults()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("pdfrender", flag.ContinueOnError)
	fs.Usage = usage

	output := fs.String("o", "", "output PNG path (render mode)")
	pageFlag := fs.String("p", "1", "page number, or a range a-b with --workers")
	dpi := fs.Float64("r", 72, "resolution in DPI")
	verbose := fs.Bool("v", false, "enable verbose debugging output")
	analyzeMode := fs.Bool("analyze", false, "tally operator frequencies instead of rendering")
	outDir := fs.String("d", "", "output directory for -t auto-generated filenames")
	tFlag := fs.Bool("t", false, "auto-generate an output filename in -d's directory")
	capT := fs.Bool("T", false, "auto-generate an output filename in testfiles/renderer-output")
	workers := fs.Int("workers", 1, "concurrent workers for a page-range render")
	help := fs.Bool("help", false, "print usage information")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *help {
		usage()
		return 0
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "ERROR: missing input PDF file.")
		usage()
		return 1
	}
	input := fs.Arg(0)

	if *analyzeMode {
		return runAnalyze(input, *pageFlag)
	}

	outputCount := boolToInt(*output != "") + boolToInt(*tFlag) + boolToInt(*capT)
	if outputCount > 1 {
		fmt.Fprintln(os.Stderr, "ERROR: -o, -t/-d, and -T are mutually exclusive.")
		usage()
		return 1
	}
	if *tFlag && *outDir == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -t requires -d <directory>.")
		usage()
		return 1
	}

	first, last, err := parsePageRange(*pageFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}

	ctx := renderctx.NewContext(renderctx.RenderOptions{
		InputPath: input,
		DPI:       *dpi,
		Verbose:   *verbose,
		Workers:   *workers,
	})

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	if first == last {
		path, err := resolveOutputPath(input, *output, *outDir, *tFlag, *capT, first, first, rnd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			return 1
		}
		if err := renderOnePage(input, first, *dpi, path, ctx); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			return 1
		}
		return 0
	}

	return runRange(input, first, last, *dpi, *output, *outDir, *tFlag, *capT, *workers, rnd, ctx)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// parsePageRange accepts either "N" or "a-b".
func parsePageRange(spec string) (first, last int, err error) {
	if idx := strings.IndexByte(spec, '-'); idx > 0 {
		a, errA := strconv.Atoi(spec[:idx])
		b, errB := strconv.Atoi(spec[idx+1:])
		if errA != nil || errB != nil || a > b {
			return 0, 0, fmt.Errorf("invalid page range %q", spec)
		}
		return a, b, nil
	}
	n, err := strconv.Atoi(spec)
	if err != nil || n < 1 {
		return 0, 0, fmt.Errorf("invalid page number %q", spec)
	}
	return n, n, nil
}

// resolveOutputPath implements the -o / -t / -T mutually exclusive output
// naming conventions, including the randomized "<name>Result<NNN>.png"
// filename the original tool generates for -t/-T (with a "-<page>" marker
// when page differs from lastPage, i.e. in a page-range render).
func resolveOutputPath(input, explicit, dir string, tFlag, capT bool, page, lastPage int, rnd *rand.Rand) (string, error) {
	suffix := ""
	marker := -1
	if page != lastPage {
		suffix = fmt.Sprintf("-%d", page)
		marker = page
	}

	switch {
	case explicit != "":
		if suffix == "" {
			return explicit, nil
		}
		ext := filepath.Ext(explicit)
		base := strings.TrimSuffix(explicit, ext)
		return base + suffix + ext, nil
	case tFlag:
		return randomizedPath(dir, input, marker, rnd), nil
	case capT:
		return randomizedPath("testfiles/renderer-output", input, marker, rnd), nil
	default:
		return "", fmt.Errorf("missing output filename; use -o, -t/-d, or -T")
	}
}

func randomizedPath(dir, input string, page int, rnd *rand.Rand) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	n := rnd.Intn(1000)
	name := fmt.Sprintf("%sResult%03d.png", base, n)
	if page > 0 {
		name = fmt.Sprintf("%sResult%03d-%d.png", base, n, page)
	}
	return filepath.Join(dir, name)
}

func renderOnePage(input string, page int, dpi float64, outPath string, ctx *renderctx.Context) error {
	doc, err := pdfdoc.Open(input)
	if err != nil {
		return fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pg, err := doc.GetPage(page)
	if err != nil {
		return fmt.Errorf("getting page %d: %w", page, err)
	}
	contents, err := pg.GetContents()
	if err != nil {
		return fmt.Errorf("reading content stream for page %d: %w", page, err)
	}

	ctx.Log.Verbosef("page %d: mediabox %.2fx%.2f, rendering at %.0f DPI", page, pg.Width(), pg.Height(), dpi)

	dev := device.NewRaster(pg.Width(), pg.Height(), dpi, pg)
	ip := interp.New(dev, ctx)
	ip.Run(contents)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil && filepath.Dir(outPath) != "." {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := dev.SaveImage(outPath); err != nil {
		return fmt.Errorf("saving %s: %w", outPath, err)
	}
	ctx.Log.Printf("wrote %s", outPath)
	return nil
}

// runRange renders [first,last] through a bounded worker pool when workers
// > 1, each worker opening its own *pdfdoc.Document (rather than sharing
// one) so the document's lazily-populated object cache is never touched
// concurrently. Results are collected in page order regardless of
// completion order.
func runRange(input string, first, last int, dpi float64, explicit, dir string, tFlag, capT bool, workers int, rnd *rand.Rand, ctx *renderctx.Context) int {
	if workers < 1 {
		workers = 1
	}
	pages := make([]int, 0, last-first+1)
	for p := first; p <= last; p++ {
		pages = append(pages, p)
	}

	errs := make([]error, len(pages))
	jobs := make(chan int)
	var wg sync.WaitGroup

	var mu sync.Mutex // guards rnd, which is not safe for concurrent use
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				page := pages[idx]
				mu.Lock()
				path, err := resolveOutputPath(input, explicit, dir, tFlag, capT, page, -1, rnd)
				mu.Unlock()
				if err != nil {
					errs[idx] = err
					continue
				}
				errs[idx] = renderOnePage(input, page, dpi, path, ctx)
			}
		}()
	}
	for idx := range pages {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	status := 0
	for i, err := range errs {
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: page %d: %v\n", pages[i], err)
			status = 1
		}
	}
	return status
}

func runAnalyze(input, pageSpec string) int {
	first, _, err := parsePageRange(pageSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}

	doc, err := pdfdoc.Open(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: opening PDF: %v\n", err)
		return 1
	}
	defer doc.Close()

	pg, err := doc.GetPage(first)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: getting page %d: %v\n", first, err)
		return 1
	}
	contents, err := pg.GetContents()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading content stream: %v\n", err)
		return 1
	}

	fmt.Printf("--- Operator Analysis Summary ---\n")
	for _, c := range analyze.Tally(contents) {
		fmt.Printf(" Found operator %q : %d times\n", c.Name, c.Count)
	}
	return 0
}
