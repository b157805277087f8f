// Package seeder applies a declarative study plan to the database: the
// module sequence, branching paths, and the initial consent version. The
// seed command runs it once at bootstrap; re-runs are idempotent.
package seeder

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Plan is the study-plan document consumed by the seed command.
type Plan struct {
	Modules        []ModuleDef `yaml:"modules"`
	Paths          []PathDef   `yaml:"paths"`
	ConsentVersion *ConsentDef `yaml:"consent_version"`
}

// ModuleDef declares one module of the study sequence.
type ModuleDef struct {
	Name            string `yaml:"name"`
	Title           string `yaml:"title"`
	SequenceOrder   int    `yaml:"sequence_order"`
	RequiresConsent bool   `yaml:"requires_consent"`
}

// PathDef declares one branching path and its unlock rule.
type PathDef struct {
	Name       string   `yaml:"name"`
	Title      string   `yaml:"title"`
	Module     string   `yaml:"module"`
	RequireAll []string `yaml:"require_all"`
	RequireAny []string `yaml:"require_any"`
}

// ConsentDef declares the consent version the plan ships with. When
// Activate is true the seeder makes it the ACTIVE version, retiring any
// other version that currently holds that status.
type ConsentDef struct {
	Version  string `yaml:"version"`
	Content  string `yaml:"content"`
	Activate bool   `yaml:"activate"`
}

// LoadPlan reads a study plan from a YAML file. Unlike runtime config the
// plan has no environment fallback; nested module and path lists only make
// sense as a document.
func LoadPlan(path string) (*Plan, error) {
	if path == "" {
		return nil, fmt.Errorf("seed plan: no plan file given")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("seed plan: file %s not found", path)
	}

	var plan Plan
	if err := cleanenv.ReadConfig(path, &plan); err != nil {
		return nil, fmt.Errorf("seed plan: read %s: %w", path, err)
	}

	return &plan, nil
}
