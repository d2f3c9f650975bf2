package extract

import (
	"testing"

	"github.com/cloudstack-dashboard/prdash/schema"
)

// FuzzNormalize checks that normalization is idempotent and never yields an empty hypervisor.
func FuzzNormalize(f *testing.F) {
	seeds := []struct {
		hv, ver string
	}{
		{"xcpng82", ""},
		{"kvm", ""},
		{"vmware70u3", ""},
		{"kvm-ol8", ""},
		{"kvm", "ol8"},
		{"", ""},
		{"ſ1", ""},
		{"a- 1", ""},
	}
	for _, seed := range seeds {
		f.Add(seed.hv, seed.ver)
	}

	f.Fuzz(func(t *testing.T, hv, ver string) {
		h1, v1 := Normalize(hv, ver)
		if h1 == "" {
			t.Fatalf("empty hypervisor for %q/%q", hv, ver)
		}
		h2, v2 := Normalize(h1, v1)
		if h1 != h2 || v1 != v2 {
			t.Fatalf("not idempotent: (%q,%q) -> (%q,%q) -> (%q,%q)", hv, ver, h1, v1, h2, v2)
		}
	})
}

// FuzzExtractSmokeTest checks the invariants every accepted smoke fact must hold.
func FuzzExtractSmokeTest(f *testing.F) {
	seeds := []string{
		"141 look OK, 0 have errors",
		"90 look OK, 3 have errors\nTest | Result | Time\n---|---|---\ntest_a | Error | 1\n",
		"Environment: kvm-ol8\n1 look OK, 2 have errors, 3 did not run",
		"9223372036854775807 look OK, 9223372036854775807 have errors",
		"https://x/pr1-t2-xcpng82.zip 4 look OK",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, body string) {
		fact, outcome := ExtractSmokeTest(body, schema.CommentMeta{PRNumber: 1})
		again, againOutcome := ExtractSmokeTest(body, schema.CommentMeta{PRNumber: 1})
		if outcome != againOutcome || fact.Total != again.Total || fact.Status != again.Status {
			t.Fatalf("extraction is not deterministic for %q", body)
		}
		if !outcome.OK() {
			return
		}
		if fact.Passed > fact.Total {
			t.Fatalf("passed %d > total %d", fact.Passed, fact.Total)
		}
		if fact.Hypervisor == "" {
			t.Fatal("empty hypervisor")
		}
		if fact.Status == schema.StatusOK && fact.FailedTests != nil {
			t.Fatalf("passing run has failed tests %v", fact.FailedTests)
		}
		if fact.Status == schema.StatusFail && fact.FailedTests == nil {
			t.Fatal("failing run has nil failed tests")
		}
	})
}

// FuzzScanTable makes sure arbitrary bodies never panic and never yield short rows.
func FuzzScanTable(f *testing.F) {
	f.Add("Test | Result | Time\n|---|---|---|\n| a | b | c |\n")
	f.Add("Test | Result | Time\n|\n||\n")
	f.Add("")

	f.Fuzz(func(t *testing.T, body string) {
		for cells := range ScanTable(Lines(body), StrictHeader, 3) {
			if len(cells) < 3 {
				t.Fatalf("short row %v", cells)
			}
		}
		_ = ExtractTestRows(body)
		_, _ = ExtractCoverage(body, schema.PullRef{Number: 1})
	})
}
