// Command nprfilter applies one filter to an image without the desktop UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"cv-npr/internal/app"
	"cv-npr/internal/capability"
	"cv-npr/internal/examples"
	"cv-npr/internal/filter"
	"cv-npr/internal/stage"
	"cv-npr/internal/vision"
)

// assignment is one -set name=value.
type assignment struct {
	name  string
	value float64
}

// setFlags collects repeated -set flags.
type setFlags []assignment

func (s *setFlags) String() string {
	parts := make([]string, len(*s))
	for i, a := range *s {
		parts[i] = a.name + "=" + strconv.FormatFloat(a.value, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func (s *setFlags) Set(v string) error {
	name, raw, ok := strings.Cut(v, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("want name=value, got %q", v)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("parameter %s: %w", name, err)
	}
	*s = append(*s, assignment{name: name, value: f})
	return nil
}

func main() {
	in := flag.String("in", "", "Input image: path, http(s) URL or example:<name>")
	filterID := flag.String("filter", filter.DefaultID, "Filter to apply")
	out := flag.String("out", stage.DownloadName, "Output PNG path")
	list := flag.Bool("list", false, "List filters and their parameters")
	verbose := flag.Bool("v", false, "Verbose logging")
	variantName := flag.String("variant", "", "Engine variant (wasm, simd, threads, threaded-simd); probed when empty")
	var sets setFlags
	flag.Var(&sets, "set", "Parameter assignment name=value (repeatable)")
	flag.Parse()

	if *list {
		printFilters(os.Stdout, filter.Builtin())
		return
	}
	if *in == "" {
		fmt.Println("Usage: nprfilter -in <image> [-filter id] [-set name=value ...] [-out npr.png]")
		os.Exit(1)
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger := app.NewLogger(os.Stderr, level)

	variant := capability.Resolve(capability.HostProber{})
	if *variantName != "" {
		v, ok := capability.Parse(*variantName)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown variant %q\n", *variantName)
			os.Exit(1)
		}
		variant = v
	}

	ctx := context.Background()
	engine, err := vision.Load(ctx, variant, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load vision engine: %v\n", err)
		os.Exit(1)
	}

	state := app.NewState(logger, app.ImmediateScheduler{})
	defer state.Close()
	state.On(app.EventAlert, func(data interface{}) {
		fmt.Fprintln(os.Stderr, data)
	})

	saver := stage.SaverFunc(func(_ string, r io.Reader) error {
		return writeFile(*out, r)
	})
	filters := stage.NewFilterStage(state, engine, filter.Builtin(), saver)
	resolver := &stage.Resolver{URLs: state.URLs, Examples: examples.NewCatalog()}
	load := stage.NewLoadStage(state, filters, resolver, nil)

	// Configure before loading so the image is filtered once.
	if err := configure(filters, *filterID, sets); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if err := loadInput(ctx, load, *in); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *in, err)
		os.Exit(1)
	}
	if err := filters.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Filter failed: %v\n", err)
		os.Exit(1)
	}
	if err := filters.Download(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *out, err)
		os.Exit(1)
	}

	w, h := filters.Size()
	fmt.Printf("%s: %dx%d %s -> %s\n", *in, w, h, *filterID, *out)
}

// configure selects the filter and applies the assignments.
func configure(fs *stage.FilterStage, id string, sets setFlags) error {
	if err := fs.SelectFilter(id); err != nil {
		return err
	}
	for _, a := range sets {
		got, err := fs.SetParameter(a.name, a.value)
		if err != nil {
			return err
		}
		if got != a.value {
			fmt.Fprintf(os.Stderr, "%s: %g constrained to %g\n", a.name, a.value, got)
		}
	}
	return nil
}

// loadInput treats local files like picked files, so non-images are rejected the
// same way; everything else goes through the URL path.
func loadInput(ctx context.Context, load *stage.LoadStage, in string) error {
	if examples.IsExampleURL(in) || strings.Contains(in, "://") {
		return load.LoadImage(ctx, in)
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	return load.LoadFile(ctx, stage.File{Name: in, Data: data})
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printFilters(w io.Writer, reg *filter.Registry) {
	for _, f := range reg.All() {
		fmt.Fprintf(w, "%s (%s)\n", f.ID(), f.Label())
		for _, p := range f.Parameters() {
			fmt.Fprintf(w, "  %-12s default %-6g range %g..%g step %g\n", p.Name, p.Default, p.Min, p.Max, p.Step)
		}
	}
}

