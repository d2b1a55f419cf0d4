package vision

import (
	"fmt"

	"github.com/teslashibe/go-navsim/pkg/nav"
	"gocv.io/x/gocv"
)

// Pipeline runs the configured filter and the heading sampler on
// encoded frames. It is the single entry point both control loops use;
// they never touch Mats directly.
type Pipeline struct {
	filter Filter
	cfg    Config
}

// NewPipeline builds a pipeline from the vision config.
func NewPipeline(cfg Config) (*Pipeline, error) {
	f, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &Pipeline{filter: f, cfg: cfg}, nil
}

// Perceive decodes an encoded frame (PNG or JPEG), masks obstacles and
// samples the cost field. The mask is released before returning; use
// Overlay for debug rendering.
func (p *Pipeline) Perceive(encoded []byte) (nav.CostField, Summary, error) {
	img, err := gocv.IMDecode(encoded, gocv.IMReadColor)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("decode frame: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return nil, Summary{}, fmt.Errorf("decode frame: empty image")
	}

	mask, sum, err := p.filter.Analyze(img)
	if err != nil {
		return nil, Summary{}, err
	}
	defer mask.Close()

	field := SampleHeadings(mask, p.cfg.NumHeadings, p.cfg.FOVDeg)
	return field, sum, nil
}

// Overlay decodes a frame, re-runs the filter and returns the frame
// blended with its mask plus a status line, encoded as JPEG. Used only
// for episode recordings; the control path never pays for it.
func (p *Pipeline) Overlay(encoded []byte, text string) ([]byte, error) {
	img, err := gocv.IMDecode(encoded, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return nil, fmt.Errorf("decode frame: empty image")
	}

	mask, _, err := p.filter.Analyze(img)
	if err != nil {
		return nil, err
	}
	defer mask.Close()

	annotated, err := Annotate(img, mask, text)
	if err != nil {
		return nil, err
	}
	defer annotated.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, annotated)
	if err != nil {
		return nil, fmt.Errorf("encode overlay: %w", err)
	}
	defer buf.Close()
	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}
