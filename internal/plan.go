package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// PlanEvent is one JSON line of the import plan.
type PlanEvent struct {
	Event      string `json:"event"`
	Ts         string `json:"ts"`
	Src        string `json:"src,omitempty"`
	Dest       string `json:"dest,omitempty"`
	MediaType  string `json:"media_type,omitempty"`
	Date       string `json:"date,omitempty"`
	Provenance string `json:"provenance,omitempty"`
	Camera     string `json:"camera,omitempty"`
	Size       int64  `json:"size,omitempty"`

	// Summary fields
	Input          string `json:"input,omitempty"`
	Output         string `json:"output,omitempty"`
	Mapped         int    `json:"mapped,omitempty"`
	FromMetadata   int    `json:"from_metadata,omitempty"`
	FromFilesystem int    `json:"from_filesystem,omitempty"`
	Warnings       int    `json:"warnings,omitempty"`
	Cancelled      bool   `json:"cancelled,omitempty"`
}

// PlanWriter streams mappings as JSON lines.
type PlanWriter struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

func NewPlanWriter(out io.Writer) *PlanWriter {
	return &PlanWriter{out: out, now: time.Now}
}

// WriteMapping writes a "mapped" event.
func (p *PlanWriter) WriteMapping(m Mapping) error {
	return p.writeEvent(PlanEvent{
		Event:      "mapped",
		Src:        m.Source,
		Dest:       m.Destination,
		MediaType:  m.MediaType.String(),
		Date:       m.Timestamp.Time.Format(time.RFC3339),
		Provenance: m.Timestamp.Provenance.String(),
		Camera:     m.Camera,
		Size:       m.Size,
	})
}

// WriteSummary writes the closing "summary" event.
func (p *PlanWriter) WriteSummary(s *Summary, cancelled bool) error {
	return p.writeEvent(PlanEvent{
		Event:          "summary",
		Input:          s.Input,
		Output:         s.Output,
		Mapped:         s.Mapped(),
		FromMetadata:   s.FromMetadata,
		FromFilesystem: s.FromFilesystem,
		Warnings:       s.Warnings.Total,
		Cancelled:      cancelled,
	})
}

func (p *PlanWriter) writeEvent(event PlanEvent) error {
	event.Ts = p.now().UTC().Format(time.RFC3339)
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	return nil
}
