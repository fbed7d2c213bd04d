package posterior

import "testing"

// TestClean tests factor level normalization.
func TestClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "underscores become spaces",
			input: "violent_crime",
			want:  "Violent Crime",
		},
		{
			name:  "dots and dashes become spaces",
			input: "carrington.et-al",
			want:  "Carrington Et Al",
		},
		{
			name:  "runs of whitespace collapse",
			input: "  property   crime ",
			want:  "Property Crime",
		},
		{
			name:  "inner capitals survive",
			input: "McCord 1991",
			want:  "McCord 1991",
		},
		{
			name:  "already clean labels pass through",
			input: "Total",
			want:  "Total",
		},
		{
			name:  "empty stays empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
