// Package streak derives badge tiers and progress from the time elapsed since a
// user's last streak reset.
package streak

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Badge is a named tier unlocked once the elapsed streak days reach MinDays.
type Badge struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	MinDays     int    `yaml:"min_days" json:"min_days"`
	Description string `yaml:"description" json:"description"`
	ImageURL    string `yaml:"image_url" json:"image_url"`
	Color       string `yaml:"color" json:"color,omitempty"`
}

// Table is the ordered badge progression, ascending by MinDays.
type Table []Badge

// DefaultTable is the built-in progression used when no badge file is configured.
func DefaultTable() Table {
	return Table{
		{ID: "clown", Name: "Clown", MinDays: 0, ImageURL: "/1.png", Color: "bg-red-500", Description: "Starting your journey"},
		{ID: "noob", Name: "Noob", MinDays: 1, ImageURL: "/2.png", Color: "bg-orange-500", Description: "First step taken"},
		{ID: "novice", Name: "Novice", MinDays: 3, ImageURL: "/3.png", Color: "bg-yellow-500", Description: "Building momentum"},
		{ID: "average", Name: "Average", MinDays: 7, ImageURL: "/4.png", Color: "bg-blue-500", Description: "One week strong"},
		{ID: "advanced", Name: "Advanced", MinDays: 15, ImageURL: "/5.png", Color: "bg-purple-500", Description: "Two weeks of dedication"},
		{ID: "sigma", Name: "Sigma", MinDays: 30, ImageURL: "/6.png", Color: "bg-green-500", Description: "One month champion"},
		{ID: "chad", Name: "Chad", MinDays: 45, ImageURL: "/7.png", Color: "bg-indigo-500", Description: "Elite performer"},
		{ID: "absolute_chad", Name: "Absolute Chad", MinDays: 60, ImageURL: "/8.png", Color: "bg-pink-500", Description: "Two months of excellence"},
		{ID: "giga_chad", Name: "Giga Chad", MinDays: 120, ImageURL: "/9.png", Color: "bg-gradient-to-r from-yellow-400 to-orange-500", Description: "Legendary status achieved"},
		{ID: "real_man", Name: "Real Man", MinDays: 360, ImageURL: "/9.png", Color: "bg-gradient-to-r from-purple-600 to-pink-600", Description: "Ultimate mastery achieved"},
	}
}

// Validate checks the ordering invariants every engine relies on.
func (t Table) Validate() error {
	if len(t) == 0 {
		return errors.New("badge table is empty")
	}
	if t[0].MinDays != 0 {
		return fmt.Errorf("first badge %q must have min_days 0, got %d", t[0].ID, t[0].MinDays)
	}
	seen := make(map[string]struct{}, len(t))
	for i, b := range t {
		if b.ID == "" {
			return fmt.Errorf("badge at position %d has no id", i)
		}
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("duplicate badge id %q", b.ID)
		}
		seen[b.ID] = struct{}{}
		if i > 0 && b.MinDays <= t[i-1].MinDays {
			return fmt.Errorf("badge %q min_days %d must be greater than %q (%d)",
				b.ID, b.MinDays, t[i-1].ID, t[i-1].MinDays)
		}
	}
	return nil
}

type tableFile struct {
	Badges Table `yaml:"badges"`
}

// LoadTable reads a YAML badge file of the form `badges: [{id, name, min_days, ...}]`.
// An empty path returns the default table.
func LoadTable(path string) (Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read badge table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes and validates a YAML badge table.
func ParseTable(data []byte) (Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode badge table: %w", err)
	}
	if err := f.Badges.Validate(); err != nil {
		return nil, fmt.Errorf("invalid badge table: %w", err)
	}
	return f.Badges, nil
}
