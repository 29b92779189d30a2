package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := GitCommit
	defer func() { GitCommit = old }()

	GitCommit = "abc1234"
	if got := String(); !strings.HasPrefix(got, Version+" (abc1234, built ") {
		t.Errorf("String() = %q", got)
	}
	if Commit() != "abc1234" {
		t.Errorf("Commit() = %q", Commit())
	}
}
