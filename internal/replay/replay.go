// Package replay runs a scripted sequence of uses, creations, slot changes
// and sweeps through the engine with a pinned clock and random source.
package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/cheatcodes/internal/engine"
	"github.com/vytor/cheatcodes/internal/errors"
	"github.com/vytor/cheatcodes/internal/models"
	"gopkg.in/yaml.v3"
)

// StepKind names what a script step does.
type StepKind string

const (
	StepUse        StepKind = "use"
	StepCreate     StepKind = "create"
	StepArchive    StepKind = "archive"
	StepReactivate StepKind = "reactivate"
	StepSweep      StepKind = "sweep"
)

// Script is the YAML replay format.
type Script struct {
	AccountCreatedAt time.Time `yaml:"account_created_at"`
	Timezone         string    `yaml:"timezone"`
	Seed             int64     `yaml:"seed"`
	Events           []Step    `yaml:"events"`
}

// Step is one scripted event. Technique is an alias: techniques created by a
// create step get a minted id, and later steps refer to them by alias.
type Step struct {
	At           time.Time `yaml:"at"`
	Kind         StepKind  `yaml:"kind"`
	Section      string    `yaml:"section,omitempty"`
	Technique    string    `yaml:"technique,omitempty"`
	Name         string    `yaml:"name,omitempty"`
	ConfirmMerge bool      `yaml:"confirm_merge,omitempty"`
}

// StepResult is what one step did.
type StepResult struct {
	Index   int            `json:"index"`
	At      time.Time      `json:"at"`
	Kind    StepKind       `json:"kind"`
	Outcome string         `json:"outcome"`
	Events  []models.Event `json:"events,omitempty"`
}

// Result is the final state of a replay. Techniques maps script aliases to
// minted ids.
type Result struct {
	State      models.UserState  `json:"-"`
	Radar      models.RadarState `json:"radar"`
	Techniques map[string]string `json:"techniques"`
	Steps      []StepResult      `json:"steps"`
}

// Parse reads a script. Unknown fields are rejected.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, errors.NewBadRequestError("invalid replay script: " + err.Error())
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the script shape; engine rules are checked while running.
func (s *Script) Validate() error {
	var problems []string
	if s.AccountCreatedAt.IsZero() {
		problems = append(problems, "account_created_at is required")
	}
	if _, err := s.location(); err != nil {
		problems = append(problems, err.Error())
	}
	for i, st := range s.Events {
		switch st.Kind {
		case StepUse, StepArchive, StepReactivate:
			if st.Technique == "" {
				problems = append(problems, fmt.Sprintf("events[%d]: %s needs a technique", i, st.Kind))
			}
		case StepCreate:
			if st.Technique == "" || st.Name == "" {
				problems = append(problems, fmt.Sprintf("events[%d]: create needs a technique alias and a name", i))
			}
		case StepSweep:
		default:
			problems = append(problems, fmt.Sprintf("events[%d]: unknown kind %q", i, st.Kind))
		}
		if st.At.IsZero() {
			problems = append(problems, fmt.Sprintf("events[%d]: at is required", i))
		}
	}
	if len(problems) > 0 {
		return errors.NewBadRequestError("invalid replay script: " + strings.Join(problems, "; "))
	}
	return nil
}

func (s *Script) location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// Run replays s from an empty state. The same script always produces the
// same result.
func Run(s *Script) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	loc, _ := s.location()

	gains := rand.New(rand.NewSource(s.Seed))
	ids := rand.New(rand.NewSource(s.Seed))
	res := &Result{Techniques: map[string]string{}}
	mint := func() string {
		return uuid.Must(uuid.NewRandomFromReader(ids)).String()
	}
	resolve := func(alias string) string {
		if id, ok := res.Techniques[alias]; ok {
			return id
		}
		return alias
	}

	st := models.NewUserState(s.AccountCreatedAt.In(loc))
	for i, step := range s.Events {
		now := step.At.In(loc)
		sr := StepResult{Index: i, At: now, Kind: step.Kind}

		var err error
		switch step.Kind {
		case StepUse:
			var section models.Section
			if section, err = models.ParseSection(step.Section); err != nil {
				return nil, stepError(i, step, errors.NewInvalidInputError("section", err.Error()))
			}
			var out engine.UseOutcome
			in := engine.UseInput{TechniqueID: resolve(step.Technique), Name: step.Name, Section: section}
			st, out, err = engine.ApplyUseAndRescore(st, in, now, gains)
			if err == nil && out.Created {
				res.Techniques[step.Technique] = out.TechniqueID
			}
			sr.Outcome = string(out.Status)
			sr.Events = out.Events
		case StepCreate:
			var section models.Section
			if section, err = models.ParseSection(step.Section); err != nil {
				return nil, stepError(i, step, errors.NewInvalidInputError("section", err.Error()))
			}
			var out engine.CreateResult
			st, out, err = engine.CreateOrMerge(st, section, step.Name, step.ConfirmMerge, mint, now)
			if err == nil && (out.Created || out.Merged) {
				res.Techniques[step.Technique] = out.TechniqueID
			}
			sr.Outcome = string(out.Outcome.Kind)
			sr.Events = out.Events
		case StepArchive, StepReactivate:
			change := engine.Archive
			if step.Kind == StepReactivate {
				change = engine.Reactivate
			}
			var out engine.ChangeResult
			st, out, err = change(st, resolve(step.Technique), now)
			sr.Outcome = string(out.Outcome.Kind)
			sr.Events = out.Events
		case StepSweep:
			var out engine.SweepOutcome
			st, out, err = engine.Sweep(st, now)
			sr.Outcome = fmt.Sprintf("decayed=%d warned=%d demoted=%d", len(out.Decayed), len(out.Warned), len(out.Demoted))
			sr.Events = out.Events
		}
		if err != nil {
			return nil, stepError(i, step, err)
		}
		res.Steps = append(res.Steps, sr)
	}

	radar, err := engine.Radar(st)
	if err != nil {
		return nil, err
	}
	res.State = st
	res.Radar = radar
	return res, nil
}

func stepError(i int, step Step, err error) error {
	return fmt.Errorf("events[%d] %s at %s: %w", i, step.Kind, step.At.Format(time.RFC3339), err)
}

// Events flattens the events of every step in order.
func (r *Result) Events() []models.Event {
	var out []models.Event
	for _, s := range r.Steps {
		out = append(out, s.Events...)
	}
	return out
}

// Write renders the result as YAML using the same field names as the JSON
// API.
func (r *Result) Write(w io.Writer) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
