// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gimp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/asset-converter/pkg/types"
)

func TestProgram(t *testing.T) {
	got, err := program("/a/key.xcf", "/b/key.xpm", true, types.FormatOptions{"alpha_threshold": 127})
	require.NoError(t, err)

	want := `(let* ((image (car (gimp-file-load RUN-NONINTERACTIVE "/a/key.xcf" "/a/key.xcf"))))` +
		` (gimp-image-merge-visible-layers image CLIP-TO-IMAGE)` +
		` (let* ((drawable (car (gimp-image-get-active-drawable image))))` +
		` (file-xpm-save RUN-NONINTERACTIVE image drawable "/b/key.xpm" "/b/key.xpm" 127))` +
		` (gimp-image-delete image))`
	assert.Equal(t, want, got)

	noMerge, err := program("/a/key.png", "/b/key.xpm", false, nil)
	require.NoError(t, err)
	assert.NotContains(t, noMerge, "merge-visible-layers")
}

func TestSaveCall(t *testing.T) {
	tests := []struct {
		name   string
		dst    string
		opts   types.FormatOptions
		want   string
		errMsg string
	}{
		{
			name: "png with build options",
			dst:  "/o/a.png",
			opts: types.FormatOptions{
				"interlace": true, "compression": 9, "bkgd": false, "gama": false,
				"offs": false, "phys": false, "time": true, "comment": true, "svtrans": true,
			},
			want: `(file-png-save2 RUN-NONINTERACTIVE image drawable "/o/a.png" "/o/a.png" TRUE 9 FALSE FALSE FALSE FALSE TRUE TRUE TRUE)`,
		},
		{
			name: "png defaults",
			dst:  "/o/a.PNG",
			want: `(file-png-save2 RUN-NONINTERACTIVE image drawable "/o/a.PNG" "/o/a.PNG" FALSE 9 TRUE FALSE FALSE TRUE TRUE TRUE TRUE)`,
		},
		{
			name: "png values from a config file",
			dst:  "/o/a.png",
			opts: types.FormatOptions{"interlace": "yes", "compression": float64(3)},
			want: `(file-png-save2 RUN-NONINTERACTIVE image drawable "/o/a.png" "/o/a.png" TRUE 3 TRUE FALSE FALSE TRUE TRUE TRUE TRUE)`,
		},
		{
			name: "xpm default threshold",
			dst:  "/o/a.xpm",
			want: `(file-xpm-save RUN-NONINTERACTIVE image drawable "/o/a.xpm" "/o/a.xpm" 127)`,
		},
		{
			name: "other formats use generic save",
			dst:  "/o/a.bmp",
			opts: types.FormatOptions{"ignored": 1},
			want: `(gimp-file-save RUN-NONINTERACTIVE image drawable "/o/a.bmp" "/o/a.bmp")`,
		},
		{
			name:   "threshold out of range",
			dst:    "/o/a.xpm",
			opts:   types.FormatOptions{"alpha_threshold": 300},
			errMsg: "outside 0-255",
		},
		{
			name:   "huge float threshold",
			dst:    "/o/a.xpm",
			opts:   types.FormatOptions{"alpha_threshold": 1e300},
			errMsg: "outside 0-255",
		},
		{
			name:   "negative int64 compression",
			dst:    "/o/a.png",
			opts:   types.FormatOptions{"compression": int64(-1)},
			errMsg: "outside 0-9",
		},
		{
			name:   "huge uint64 compression",
			dst:    "/o/a.png",
			opts:   types.FormatOptions{"compression": uint64(1) << 63},
			errMsg: "outside 0-9",
		},
		{
			name:   "fractional compression",
			dst:    "/o/a.png",
			opts:   types.FormatOptions{"compression": 4.5},
			errMsg: "want an integer",
		},
		{
			name:   "non-boolean flag",
			dst:    "/o/a.png",
			opts:   types.FormatOptions{"interlace": "sometimes"},
			errMsg: "want a boolean",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := saveCall(tt.dst, tt.opts)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"plain"`, quote("plain"))
	assert.Equal(t, `"say \"hi\""`, quote(`say "hi"`))
	assert.Equal(t, `"C:\\art\\a.png"`, quote(`C:\art\a.png`))
}
