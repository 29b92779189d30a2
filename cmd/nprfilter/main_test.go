package main

import (
	"bytes"
	"flag"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"cv-npr/internal/filter"
)

func TestSetFlags(t *testing.T) {
	var sets setFlags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&sets, "set", "")
	if err := fs.Parse([]string{"-set", "sigmaS=20", "-set", " sigmaR = 0.3 "}); err != nil {
		t.Fatal(err)
	}
	want := setFlags{{name: "sigmaS", value: 20}, {name: "sigmaR", value: 0.3}}
	if diff := cmp.Diff(want, sets, cmp.AllowUnexported(assignment{})); diff != "" {
		t.Errorf("sets (-want +got):\n%s", diff)
	}
	if got := sets.String(); got != "sigmaS=20,sigmaR=0.3" {
		t.Errorf("String() = %q", got)
	}

	for _, bad := range []string{"sigmaS", "=3", "sigmaS=abc"} {
		if err := sets.Set(bad); err == nil {
			t.Errorf("Set(%q) succeeded", bad)
		}
	}
}

func TestPrintFilters(t *testing.T) {
	var buf bytes.Buffer
	printFilters(&buf, filter.Builtin())
	out := buf.String()
	for _, id := range filter.Builtin().IDs() {
		if !strings.Contains(out, id+" (") {
			t.Errorf("listing misses %s", id)
		}
	}
	if !strings.Contains(out, "dsize") {
		t.Error("listing misses mosaic parameters")
	}
}
