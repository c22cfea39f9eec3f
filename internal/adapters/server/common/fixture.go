package common

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hylla/actionboard/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
)

// Fixture scripts what the simulated pipeline extracts from every upload.
type Fixture struct {
	Summary     string              `toml:"summary"`
	ActionItems []domain.ActionItem `toml:"action_items"`
	// Failure, when set, makes every workflow fail with this detail.
	Failure string `toml:"failure"`
}

// DefaultFixture returns the built-in meeting fixture.
func DefaultFixture() Fixture {
	due := "2026-11-02"
	return Fixture{
		Summary: "## Weekly sync\n\n- Reviewed the launch checklist\n- Agreed to move the retro to Friday",
		ActionItems: []domain.ActionItem{
			{Assignee: "Kim", Task: "Finalize the launch checklist", DueDate: &due, Confidence: 0.92},
			{Assignee: "Lee", Task: "Book a room for the retro", Confidence: 0.81},
			{Assignee: "", Task: "Share meeting notes with the team", Confidence: 0.67},
		},
	}
}

// LoadFixture reads a TOML fixture. An empty path returns DefaultFixture.
func LoadFixture(path string) (Fixture, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultFixture(), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var fixture Fixture
	if err := toml.Unmarshal(content, &fixture); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture toml: %w", err)
	}
	if err := fixture.Validate(); err != nil {
		return Fixture{}, err
	}
	return fixture, nil
}

// Validate checks every action item carries task text and a sane confidence.
func (f Fixture) Validate() error {
	for i, item := range f.ActionItems {
		if strings.TrimSpace(item.Task) == "" {
			return fmt.Errorf("fixture action_items[%d]: %w", i, domain.ErrInvalidTaskText)
		}
		if item.Confidence < 0 || item.Confidence > 1 {
			return fmt.Errorf("fixture action_items[%d]: confidence must be within [0,1]", i)
		}
	}
	if len(f.ActionItems) == 0 && strings.TrimSpace(f.Failure) == "" {
		return errors.New("fixture needs action_items or a failure")
	}
	return nil
}
