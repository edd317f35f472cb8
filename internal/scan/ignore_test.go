package scan

import (
	"path/filepath"
	"testing"
)

func TestIgnoreSet_Match(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		path string
		want bool
	}{
		{
			name: "default sidecar extension",
			raw:  nil,
			path: "IMG_0001.xmp",
			want: true,
		},
		{
			name: "default sidecar in subdirectory",
			raw:  nil,
			path: filepath.Join("DCIM", "100CANON", "IMG_0001.pp3"),
			want: true,
		},
		{
			name: "regular image not ignored",
			raw:  nil,
			path: "IMG_0001.CR2",
			want: false,
		},
		{
			name: "configured extension",
			raw:  []string{".thm"},
			path: "MVI_0001.THM",
			want: true,
		},
		{
			name: "extension without leading dot is normalized",
			raw:  []string{"lrv"},
			path: "GL010001.LRV",
			want: true,
		},
		{
			name: "mixed case config entry",
			raw:  []string{".Thm"},
			path: "mvi_0001.thm",
			want: true,
		},
		{
			name: "file without extension",
			raw:  []string{".thm"},
			path: "README",
			want: false,
		},
		{
			name: "blank config entries skipped",
			raw:  []string{"", "  "},
			path: "IMG_0001.jpg",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewIgnoreSet(tt.raw)
			got := s.Match(tt.path)
			if got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
