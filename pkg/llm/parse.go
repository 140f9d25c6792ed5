package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
)

// resumeParseBudget caps how much resume text is sent for profile
// extraction.
const resumeParseBudget = 4000

// ResumeProfile is the structured data extracted from a resume. Field
// names follow the profile file format so the result can be merged
// directly into a stored profile.
type ResumeProfile struct {
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	FullName        string   `json:"full_name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Location        string   `json:"location"`
	School          string   `json:"school"`
	Degree          string   `json:"degree"`
	Major           string   `json:"major"`
	GraduationYear  string   `json:"graduation_year"`
	GraduationMonth string   `json:"graduation_month"`
	LinkedIn        string   `json:"linkedin"`
	GitHub          string   `json:"github"`
	Website         string   `json:"website"`
	Skills          []string `json:"skills"`
}

// ParseResume extracts structured profile fields from resume text. Fields
// the resume does not mention come back empty.
func (c *OpenAI) ParseResume(ctx context.Context, resumeText string) (*ResumeProfile, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("llm: resume text is empty")
	}

	system, user := parseResumePrompt(resumeText, c.counter())
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(user),
	}
	reqBody := map[string]interface{}{
		"model":           c.model,
		"messages":        messages,
		"temperature":     0,
		"response_format": map[string]string{"type": "json_object"},
	}

	content, err := c.send(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	var parsed ResumeProfile
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("llm: failed to parse resume extraction: %w", err)
	}
	return &parsed, nil
}
