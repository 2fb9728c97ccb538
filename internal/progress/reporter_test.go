package progress

import (
	"bytes"
	"testing"
)

func TestLineReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &LineReporter{Out: &buf, Label: "Importing"}
	r.Start(2)
	r.Update(1, "a.yml")
	r.Update(2, "b.yml")
	r.Finish()

	want := "Importing: 2 files\n[1/2] a.yml\n[2/2] b.yml\nImporting: done\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestNewReporterUnderCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter("x").(*LineReporter); !ok {
		t.Error("expected LineReporter under CI")
	}
}
