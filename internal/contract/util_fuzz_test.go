package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncateText fuzzes TruncateText with random text and widths.
func FuzzTruncateText(f *testing.F) {
	seeds := []struct {
		text  string
		width int
	}{
		{"test_01_deploy_vm", 10},
		{"", 0},
		{"tëst", 4},
		{"abc", -1},
		{"very long test name with spaces", 4},
	}
	for _, seed := range seeds {
		f.Add(seed.text, seed.width)
	}

	f.Fuzz(func(t *testing.T, text string, width int) {
		got := TruncateText(text, width)
		if width > 3 && utf8.RuneCountInString(got) > width && utf8.ValidString(text) {
			t.Fatalf("TruncateText(%q, %d) = %q is wider than %d", text, width, got, width)
		}
	})
}

// FuzzProcessPRArg fuzzes the positional PR number parser.
func FuzzProcessPRArg(f *testing.F) {
	for _, seed := range []string{"42", "#42", "", "-1", "0", "abc", " 7 "} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, arg string) {
		cfg := &Config{}
		err := processPRArg(cfg, &ConfigRawInput{PRArg: arg})
		if err == nil && cfg.PRNumber < 0 {
			t.Fatalf("negative PR number %d accepted for %q", cfg.PRNumber, arg)
		}
	})
}
