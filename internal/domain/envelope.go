package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Decision is the envelope tag.
type Decision string

const (
	// DecisionAllow marks a served request.
	DecisionAllow Decision = "allow"

	// DecisionRefuse marks a refused request.
	DecisionRefuse Decision = "refuse"
)

// TopPlace is a recommended place to look for sources on a topic.
type TopPlace struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Why  string `json:"why"`
}

// ThemeSource is a direct-PDF source grouped under a theme.
type ThemeSource struct {
	Title              string   `json:"title"`
	URL                string   `json:"url"`
	Host               string   `json:"host"`
	Year               int      `json:"year,omitempty"`
	Authors            []string `json:"authors,omitempty"`
	WhyRelevantBullets []string `json:"whyRelevantBullets"`
}

// ThemeGroup is an LLM-generated thematic grouping of sources.
type ThemeGroup struct {
	Theme               string        `json:"theme"`
	WhyThisThemeMatters string        `json:"whyThisThemeMatters"`
	Sources             []ThemeSource `json:"sources"`
}

// FlatSource is a merged metadata record as presented to the display layer.
type FlatSource struct {
	Title              string   `json:"title"`
	Authors            []string `json:"authors"`
	Year               int      `json:"year"`
	Venue              string   `json:"venue,omitempty"`
	DOI                string   `json:"doi,omitempty"`
	URL                string   `json:"url"`
	WhyRelevantBullets []string `json:"whyRelevantBullets"`
}

// Payload is the content of an allow envelope. Which optional fields are
// populated depends on the deployment mode.
type Payload struct {
	Overview              string       `json:"overview,omitempty"`
	InterpretationBullets []string     `json:"interpretationBullets,omitempty"`
	TopPlaces             []TopPlace   `json:"topPlaces,omitempty"`
	Themes                []ThemeGroup `json:"themes,omitempty"`
	SearchQueries         []string     `json:"searchQueries,omitempty"`
	Sources               []FlatSource `json:"sources,omitempty"`
	ReadingOrder          []string     `json:"readingOrder,omitempty"`
	NextSteps             []string     `json:"nextSteps"`
}

// clone returns a deep copy of p. Nil slices stay nil.
func (p Payload) clone() Payload {
	out := p
	out.InterpretationBullets = slices.Clone(p.InterpretationBullets)
	out.TopPlaces = slices.Clone(p.TopPlaces)
	out.SearchQueries = slices.Clone(p.SearchQueries)
	out.ReadingOrder = slices.Clone(p.ReadingOrder)
	out.NextSteps = slices.Clone(p.NextSteps)

	if p.Themes != nil {
		out.Themes = make([]ThemeGroup, len(p.Themes))
		for i, th := range p.Themes {
			th.Sources = cloneThemeSources(th.Sources)
			out.Themes[i] = th
		}
	}
	if p.Sources != nil {
		out.Sources = make([]FlatSource, len(p.Sources))
		for i, src := range p.Sources {
			src.Authors = slices.Clone(src.Authors)
			src.WhyRelevantBullets = slices.Clone(src.WhyRelevantBullets)
			out.Sources[i] = src
		}
	}
	return out
}

func cloneThemeSources(in []ThemeSource) []ThemeSource {
	if in == nil {
		return nil
	}
	out := make([]ThemeSource, len(in))
	for i, src := range in {
		src.Authors = slices.Clone(src.Authors)
		src.WhyRelevantBullets = slices.Clone(src.WhyRelevantBullets)
		out[i] = src
	}
	return out
}

// Envelope is the allow/refuse result of one request. It is built through
// Allow or Refuse and cannot be changed afterwards.
type Envelope struct {
	decision Decision
	reason   string
	payload  *Payload
}

// Allow builds an allow envelope. The payload is deep-copied.
func Allow(p Payload) Envelope {
	c := p.clone()
	if c.NextSteps == nil {
		c.NextSteps = []string{}
	}
	return Envelope{decision: DecisionAllow, payload: &c}
}

// Refuse builds a refuse envelope carrying only a reason.
func Refuse(reason string) Envelope {
	return Envelope{decision: DecisionRefuse, reason: reason}
}

// Decision returns the envelope tag.
func (e Envelope) Decision() Decision {
	return e.decision
}

// IsAllowed reports whether the envelope is an allow.
func (e Envelope) IsAllowed() bool {
	return e.decision == DecisionAllow
}

// Reason returns the refusal reason. It is empty for allow envelopes.
func (e Envelope) Reason() string {
	return e.reason
}

// Payload returns a deep copy of the allow payload, or nil for a refusal.
func (e Envelope) Payload() *Payload {
	if e.payload == nil {
		return nil
	}
	p := e.payload.clone()
	return &p
}

type allowWire struct {
	Decision Decision `json:"decision"`
	Payload
}

type refuseWire struct {
	Decision      Decision `json:"decision"`
	RefusalReason string   `json:"refusalReason"`
}

// MarshalJSON renders the tag together with only the fields that belong to it.
func (e Envelope) MarshalJSON() ([]byte, error) {
	switch e.decision {
	case DecisionAllow:
		return json.Marshal(allowWire{Decision: DecisionAllow, Payload: *e.payload})
	case DecisionRefuse:
		return json.Marshal(refuseWire{Decision: DecisionRefuse, RefusalReason: e.reason})
	default:
		return nil, errors.New("envelope: decision not set")
	}
}

// UnmarshalJSON decodes an envelope produced by MarshalJSON.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var head struct {
		Decision      Decision `json:"decision"`
		RefusalReason string   `json:"refusalReason"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	switch head.Decision {
	case DecisionAllow:
		var w allowWire
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*e = Allow(w.Payload)
	case DecisionRefuse:
		*e = Refuse(head.RefusalReason)
	default:
		return fmt.Errorf("envelope: unknown decision %q", head.Decision)
	}
	return nil
}
