// Package resume turns a resume document into a structured Profile.
package resume

import (
	"encoding/json"
	"fmt"
)

type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
	Website  string `json:"website"`
}

type Experience struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Years       string   `json:"years"`
	Location    string   `json:"location"`
	Description []string `json:"description"`
}

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Years       string `json:"years"`
}

// Profile is the structured candidate data shared read-only by every match
// scoring call of a run.
type Profile struct {
	PersonalInfo   PersonalInfo `json:"personalInfo"`
	Summary        string       `json:"summary"`
	WorkExperience []Experience `json:"workExperience"`
	Education      []Education  `json:"education"`
	Skills         []string     `json:"skills"`
}

// Normalize replaces absent lists with empty ones so the profile always
// serializes with every key present.
func (p *Profile) Normalize() {
	if p.WorkExperience == nil {
		p.WorkExperience = []Experience{}
	}
	for i := range p.WorkExperience {
		if p.WorkExperience[i].Description == nil {
			p.WorkExperience[i].Description = []string{}
		}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
}

// JSON renders the profile for prompts and the parse-resume command.
func (p *Profile) JSON() (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal resume profile: %w", err)
	}
	return string(data), nil
}
