package onboarding

import (
	"encoding/json"
	"errors"
	"fmt"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCurrent   Status = "current"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

var (
	ErrUnknownSection = errors.New("unknown section")
	ErrDataMismatch   = errors.New("payload does not match section")
)

type Section struct {
	ID             int
	Title          string
	Description    string
	Status         Status
	OriginalStatus Status
	EstimatedTime  string
	ErrorMessage   string
	Data           SectionData
}

type sectionWire struct {
	ID             int             `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Status         Status          `json:"status"`
	OriginalStatus Status          `json:"originalStatus,omitempty"`
	EstimatedTime  string          `json:"estimatedTime,omitempty"`
	ErrorMessage   string          `json:"errorMessage,omitempty"`
	Data           json.RawMessage `json:"data"`
}

func (s Section) MarshalJSON() ([]byte, error) {
	var raw json.RawMessage
	if s.Data == nil {
		raw = json.RawMessage("null")
	} else {
		b, err := json.Marshal(s.Data)
		if err != nil {
			return nil, fmt.Errorf("encode data of section %d: %w", s.ID, err)
		}
		raw = b
	}
	return json.Marshal(sectionWire{
		ID:             s.ID,
		Title:          s.Title,
		Description:    s.Description,
		Status:         s.Status,
		OriginalStatus: s.OriginalStatus,
		EstimatedTime:  s.EstimatedTime,
		ErrorMessage:   s.ErrorMessage,
		Data:           raw,
	})
}

func (s *Section) UnmarshalJSON(b []byte) error {
	var w sectionWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	data, err := DecodeSectionData(w.ID, w.Data)
	if err != nil {
		return err
	}
	*s = Section{
		ID:             w.ID,
		Title:          w.Title,
		Description:    w.Description,
		Status:         w.Status,
		OriginalStatus: w.OriginalStatus,
		EstimatedTime:  w.EstimatedTime,
		ErrorMessage:   w.ErrorMessage,
		Data:           data,
	}
	return nil
}

// Portfolio is the wizard aggregate. Values are never edited in place; every
// reducer returns a fresh copy.
type Portfolio struct {
	Sections        []Section      `json:"sections"`
	StepperPosition int            `json:"stepperPosition"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

func (p Portfolio) clone() Portfolio {
	next := Portfolio{
		Sections:        make([]Section, len(p.Sections)),
		StepperPosition: p.StepperPosition,
	}
	copy(next.Sections, p.Sections)
	if p.Metadata != nil {
		next.Metadata = make(map[string]any, len(p.Metadata))
		for k, v := range p.Metadata {
			next.Metadata[k] = v
		}
	}
	return next
}

// IndexOf returns the position of the section with the given id, or -1.
func (p Portfolio) IndexOf(sectionID int) int {
	for i, s := range p.Sections {
		if s.ID == sectionID {
			return i
		}
	}
	return -1
}

// Section returns the section with the given id.
func (p Portfolio) Section(sectionID int) (Section, bool) {
	i := p.IndexOf(sectionID)
	if i < 0 {
		return Section{}, false
	}
	return p.Sections[i], true
}

// Current returns the active section, if any.
func (p Portfolio) Current() (Section, bool) {
	if p.StepperPosition < 0 || p.StepperPosition >= len(p.Sections) {
		return Section{}, false
	}
	return p.Sections[p.StepperPosition], true
}
