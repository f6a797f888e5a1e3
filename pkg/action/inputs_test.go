package action

import (
	"reflect"
	"strings"
	"testing"
)

func TestLoadInputs(t *testing.T) {
	tests := []struct {
		env     map[string]string
		want    Inputs
		name    string
		wantErr string
	}{
		{
			name: "all inputs set",
			env: map[string]string{
				"INPUT_TOKEN":        "ghp_sometoken",
				"INPUT_SOURCE":       "OWNERS",
				"INPUT_IGNORE_FILES": "*.md\nvendor/**\n",
			},
			want: Inputs{
				Token:       "ghp_sometoken",
				Source:      "OWNERS",
				IgnoreFiles: []string{"*.md", "vendor/**"},
			},
		},
		{
			name: "ignore_files optional",
			env: map[string]string{
				"INPUT_TOKEN":  "ghp_sometoken",
				"INPUT_SOURCE": ".reviewers",
			},
			want: Inputs{Token: "ghp_sometoken", Source: ".reviewers"},
		},
		{
			name:    "missing token",
			env:     map[string]string{"INPUT_SOURCE": "OWNERS"},
			wantErr: `"token" is required`,
		},
		{
			name:    "missing source",
			env:     map[string]string{"INPUT_TOKEN": "ghp_sometoken"},
			wantErr: `"source" is required`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("INPUT_TOKEN", "")
			t.Setenv("INPUT_SOURCE", "")
			t.Setenv("INPUT_IGNORE_FILES", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := LoadInputs()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("LoadInputs() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadInputs() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LoadInputs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSplitPatterns(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "whitespace only", raw: "  \n\t\n", want: nil},
		{name: "trims and drops blanks", raw: " *.md \n\nvendor/**\n", want: []string{"*.md", "vendor/**"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitPatterns(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitPatterns(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
