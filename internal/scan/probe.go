package scan

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"rawdb/internal/model"
	"rawdb/internal/recon"
)

// photoExtensions are formats goexif can read a capture date from.
var photoExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".tif": {}, ".tiff": {},
	".cr2": {}, ".cr3": {}, ".nef": {}, ".dng": {},
	".arw": {}, ".raf": {}, ".orf": {}, ".rw2": {},
}

// videoExtensions are formats handed to ffprobe for date and duration.
var videoExtensions = map[string]struct{}{
	".mov": {}, ".mp4": {}, ".m4v": {}, ".avi": {},
	".mts": {}, ".mkv": {}, ".3gp": {},
}

// MediaProber extracts capture dates from photo EXIF data and dates plus
// durations from video containers via ffprobe. Files of unknown type, or
// files whose metadata cannot be parsed, yield a zero Metadata.
type MediaProber struct {
	ffprobePath string
}

// NewMediaProber creates a prober. ffprobePath may be empty, in which case
// "ffprobe" is resolved from PATH.
func NewMediaProber(ffprobePath string) *MediaProber {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &MediaProber{ffprobePath: ffprobePath}
}

// Probe extracts what metadata it can from the file at path.
func (p *MediaProber) Probe(ctx context.Context, path string) (recon.Metadata, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if _, ok := photoExtensions[ext]; ok {
		return p.probePhoto(path)
	}
	if _, ok := videoExtensions[ext]; ok {
		return p.probeVideo(ctx, path)
	}
	return recon.Metadata{}, nil
}

func (p *MediaProber) probePhoto(path string) (recon.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return recon.Metadata{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		// No EXIF block, or one we can't parse. The file still gets
		// inventoried, just without a date.
		return recon.Metadata{}, nil
	}
	dt, err := x.DateTime()
	if err != nil {
		return recon.Metadata{}, nil
	}

	return recon.Metadata{
		Date: sql.NullString{String: dt.Format(model.DateFormat), Valid: true},
	}, nil
}

func (p *MediaProber) probeVideo(ctx context.Context, path string) (recon.Metadata, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		// ffprobe missing or the container is unreadable; inventory the
		// file without metadata rather than failing the scan.
		return recon.Metadata{}, nil
	}

	return ParseFFProbeOutput(stdout.Bytes())
}

// ffprobeOutput mirrors the parts of ffprobe's -show_format JSON we use.
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		Tags     struct {
			CreationTime string `json:"creation_time"`
		} `json:"tags"`
	} `json:"format"`
}

// ParseFFProbeOutput extracts the capture date and duration from ffprobe
// -show_format JSON. Missing or malformed fields are left absent.
func ParseFFProbeOutput(data []byte) (recon.Metadata, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return recon.Metadata{}, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	var meta recon.Metadata

	if out.Format.Tags.CreationTime != "" {
		if t, err := time.Parse(time.RFC3339Nano, out.Format.Tags.CreationTime); err == nil {
			meta.Date = sql.NullString{String: t.UTC().Format(model.DateFormat), Valid: true}
		}
	}

	if out.Format.Duration != "" {
		if seconds, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
			meta.Duration = sql.NullInt64{Int64: int64(seconds * 1000), Valid: true}
		}
	}

	return meta, nil
}

// Compile-time check that MediaProber implements recon.Prober
var _ recon.Prober = (*MediaProber)(nil)
