package ingest

import (
	"errors"
	"fmt"
	"io"

	"github.com/okian/swimstats/internal/domain/model"
	"github.com/okian/swimstats/internal/domain/timecodec"
	"gopkg.in/yaml.v3"
)

// SplitRecord is an entered split.
type SplitRecord struct {
	Distance int  `yaml:"distance"`
	Time     Cell `yaml:"time"`
}

// ResultRecord is an entered competition result.
type ResultRecord struct {
	ID       string        `yaml:"id"`
	OwnerID  string        `yaml:"owner_id"`
	StyleID  string        `yaml:"style_id"`
	EventID  string        `yaml:"event_id"`
	Distance int           `yaml:"distance"`
	Time     Cell          `yaml:"time"`
	Splits   []SplitRecord `yaml:"splits"`
}

// ResultDocument is a list of entered results.
type ResultDocument struct {
	Results []ResultRecord `yaml:"results"`
}

// DecodeResults reads one result document.
func DecodeResults(r io.Reader) (*ResultDocument, error) {
	var doc ResultDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrDocument)
		}
		if errors.Is(err, ErrDocument) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrDocument, err)
	}
	return &doc, nil
}

// Ref names the record for error reports.
func (r ResultRecord) Ref(index int) string {
	if r.ID != "" {
		return r.ID
	}
	return fmt.Sprintf("#%d", index)
}

// Submission parses the record's times with c. Split ordering is left to the
// splits package.
func (r ResultRecord) Submission(c *timecodec.Codec) (model.Submission, error) {
	if r.Time.Blank() {
		return model.Submission{}, fmt.Errorf("%w: time is required", ErrDocument)
	}
	d, err := c.Parse(string(r.Time))
	if err != nil {
		return model.Submission{}, err
	}
	sub := model.Submission{Result: model.CompetitionResult{
		ID:       r.ID,
		OwnerID:  r.OwnerID,
		StyleID:  r.StyleID,
		EventID:  r.EventID,
		Distance: r.Distance,
		Duration: d,
	}}
	for i, s := range r.Splits {
		sd, err := c.Parse(string(s.Time))
		if err != nil {
			return model.Submission{}, fmt.Errorf("split %d: %w", i, err)
		}
		sub.Splits = append(sub.Splits, model.SplitMarker{Distance: s.Distance, Duration: sd})
	}
	return sub, nil
}
