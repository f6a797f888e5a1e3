package owners

import (
	"reflect"
	"testing"
)

func TestFilterIgnored(t *testing.T) {
	files := []string{"a.txt", "docs/readme.md", "vendor/lib/x.go", "pkg/main.go"}

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{"no patterns keeps everything", nil, files},
		{"extension glob", []string{"**/*.md"}, []string{"a.txt", "vendor/lib/x.go", "pkg/main.go"}},
		{"directory subtree", []string{"vendor/**"}, []string{"a.txt", "docs/readme.md", "pkg/main.go"}},
		{"multiple patterns", []string{"**/*.md", "vendor/**"}, []string{"a.txt", "pkg/main.go"}},
		{"invalid pattern skipped", []string{"[", "**/*.md"}, []string{"a.txt", "vendor/lib/x.go", "pkg/main.go"}},
		{"everything ignored", []string{"**"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterIgnored(files, tt.patterns)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterIgnored(%v) = %v, want %v", tt.patterns, got, tt.want)
			}
		})
	}
}
