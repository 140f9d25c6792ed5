// Package profile loads the applicant's structured record used for form
// filling. The profile is read once per session and is read-only to the
// engine; resume text is extracted lazily and cached for the session's
// lifetime.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Profile is the applicant's data for form filling.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`

	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
	Website  string `json:"website"`

	School          string `json:"school"`
	Degree          string `json:"degree"`
	Major           string `json:"major"`
	GraduationYear  string `json:"graduation_year"`
	GraduationMonth string `json:"graduation_month"`

	// Canonical categorical values, translated into each form's own option
	// vocabulary at fill time.
	WorkAuthorization   string `json:"work_authorization"`
	RequiresSponsorship string `json:"requires_sponsorship"`

	CoverLetter string `json:"cover_letter"`
	ResumePath  string `json:"resume_path"`

	resumeOnce sync.Once
	resumeText string
	resumeErr  error
}

// Load reads a profile from a JSON file.
func Load(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: read %s: %w", path, err)
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("profile: parse %s: %w", path, err)
	}
	if p.FullName == "" && p.FirstName != "" {
		p.FullName = p.FirstName + " " + p.LastName
	}
	return &p, nil
}

// Save writes the profile to a JSON file.
func (p *Profile) Save(path string) error {
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("profile: marshal: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("profile: write %s: %w", path, err)
	}
	return nil
}

// ResumeText returns the full text of the resume artifact, extracting it on
// first call and caching the result. Returns "" without error when no resume
// path is configured.
func (p *Profile) ResumeText() (string, error) {
	p.resumeOnce.Do(func() {
		if p.ResumePath == "" {
			return
		}
		p.resumeText, p.resumeErr = ExtractText(p.ResumePath)
	})
	return p.resumeText, p.resumeErr
}

// GraduationDate combines month and year into the form most applications
// expect ("May 2026").
func (p *Profile) GraduationDate() string {
	switch {
	case p.GraduationMonth != "" && p.GraduationYear != "":
		return p.GraduationMonth + " " + p.GraduationYear
	case p.GraduationYear != "":
		return p.GraduationYear
	default:
		return ""
	}
}
