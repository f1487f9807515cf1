package buildinfo

import "testing"

func TestRelease(t *testing.T) {
	restore := func(v, c string) {
		Version, Commit = v, c
	}
	defer restore(Version, Commit)

	tests := []struct {
		name    string
		version string
		commit  string
		want    string
	}{
		{"both set", "v1.2.0", "0123456789abcdef", "v1.2.0+0123456"},
		{"version only", "v1.2.0", "", "v1.2.0"},
		{"commit only", "", "0123456789abcdef", "0123456"},
		{"short commit kept as is", "", "abc", "abc"},
		{"nothing set", "", "", "dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore(tt.version, tt.commit)
			if got := Release(); got != tt.want {
				t.Errorf("Release() = %q, want %q", got, tt.want)
			}
		})
	}
}
