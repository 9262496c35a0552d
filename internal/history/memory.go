package history

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/arcollage/viewer/internal/config"
)

// trail groups one marker's recorded samples.
type trail struct {
	MarkerID int          `json:"markerId"`
	Samples  []PoseSample `json:"samples"`

	// Trail is the WKT rendering of the samples as a LINESTRING ZM
	// (x, y, z, seconds since session start). Populated at export time.
	Trail string `json:"trail,omitempty"`
}

// sessionExport is the root JSON structure written on EndSession.
type sessionExport struct {
	Session  Session        `json:"session"`
	Trails   []trail        `json:"trails"`
	Controls []ControlEvent `json:"controls"`
}

// MemoryBackend keeps the session in memory and exports it to a JSON file
// when the session ends.
type MemoryBackend struct {
	cfg     config.MemoryConfig
	session *Session

	trails   map[int]*trail
	controls []ControlEvent

	lastExportPath string
	mu             sync.Mutex
}

func NewMemoryBackend(cfg config.MemoryConfig) *MemoryBackend {
	return &MemoryBackend{
		cfg:    cfg,
		trails: make(map[int]*trail),
	}
}

func (b *MemoryBackend) Init() error  { return nil }
func (b *MemoryBackend) Close() error { return nil }

// StartSession begins recording and resets any prior session state.
func (b *MemoryBackend) StartSession(s *Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.session = s
	b.trails = make(map[int]*trail)
	b.controls = nil
	return nil
}

// EndSession finalizes the session and writes the export file.
func (b *MemoryBackend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return fmt.Errorf("no session in progress")
	}
	b.session.EndTime = time.Now()
	return b.export()
}

func (b *MemoryBackend) RecordPose(sample PoseSample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.trails[sample.MarkerID]
	if !ok {
		t = &trail{MarkerID: sample.MarkerID}
		b.trails[sample.MarkerID] = t
	}
	t.Samples = append(t.Samples, sample)
	return nil
}

func (b *MemoryBackend) RecordControl(event ControlEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.controls = append(b.controls, event)
	return nil
}

// ExportedFilePath returns the path of the last written export file.
func (b *MemoryBackend) ExportedFilePath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastExportPath
}

func (b *MemoryBackend) export() error {
	out := sessionExport{
		Session:  *b.session,
		Trails:   make([]trail, 0, len(b.trails)),
		Controls: b.controls,
	}
	ids := make([]int, 0, len(b.trails))
	for id := range b.trails {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		t := *b.trails[id]
		t.Trail = trailWKT(t.Samples, b.session.StartTime)
		out.Trails = append(out.Trails, t)
	}

	name := strings.ReplaceAll(b.session.Name, " ", "_")
	timestamp := b.session.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", name, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", name, timestamp)
	}
	path := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(path, out); err != nil {
			return err
		}
	} else {
		if err := writeJSON(path, out); err != nil {
			return err
		}
	}

	b.lastExportPath = path
	return nil
}

// trailWKT renders a sample trail as a LINESTRING ZM, with M carrying
// seconds since session start. Fewer than two samples yields no linestring.
func trailWKT(samples []PoseSample, start time.Time) string {
	if len(samples) < 2 {
		return ""
	}
	coords := make([]float64, 0, len(samples)*4)
	for _, s := range samples {
		coords = append(coords,
			s.Position.X, s.Position.Y, s.Position.Z,
			s.Time.Sub(start).Seconds())
	}
	seq := geom.NewSequence(coords, geom.DimXYZM)
	return geom.NewLineString(seq).AsText()
}

func writeJSON(path string, data sessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(data)
}

func writeGzipJSON(path string, data sessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	return json.NewEncoder(gzWriter).Encode(data)
}
