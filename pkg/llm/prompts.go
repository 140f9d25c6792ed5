package llm

import (
	"fmt"
	"strings"
)

const (
	// resumeTokenBudget caps how much extracted resume text is sent per
	// generation request.
	resumeTokenBudget = 3000

	// storedAnswerBudget caps the stored-answer listing for semantic
	// matching.
	storedAnswerBudget = 2000
)

// semanticMatchPrompt builds the prompt pair asking the model whether any
// stored answer covers the question.
func semanticMatchPrompt(question string, stored []StoredAnswer, count func(string) int) (system, user string) {
	system = "You match job-application form questions against previously answered questions. " +
		"The wording may differ but the meaning must be the same. " +
		"If a stored answer applies to the new question, reply with that answer exactly as stored. " +
		"If none apply, reply with exactly " + noMatchSentinel + ". " +
		"Reply with the answer text only, no explanation."

	var b strings.Builder
	b.WriteString("Previously answered questions:\n")
	for i, qa := range stored {
		b.WriteString(fmt.Sprintf("%d. Q: %s\n   A: %s\n", i+1, qa.Question, qa.Answer))
	}
	listing := truncateToTokens(b.String(), storedAnswerBudget, count)

	user = fmt.Sprintf("%s\nNew question: %s", listing, question)
	return system, user
}

// generatePrompt builds the prompt pair asking the model to answer a
// question from the candidate's resume and profile. When options are given
// the model must pick one verbatim.
func generatePrompt(question, resumeText, profileContext string, options []string, count func(string) int) (system, user string) {
	system = "You answer job-application form questions on behalf of a candidate, " +
		"using only their resume and profile below. Be truthful and concise. " +
		"Never invent experience, dates, or credentials. " +
		"If the material does not contain enough information to answer, reply with exactly " +
		unknownSentinel + ". Reply with the answer only, no explanation."

	var b strings.Builder
	if profileContext != "" {
		b.WriteString("Candidate profile:\n")
		b.WriteString(profileContext)
		b.WriteString("\n\n")
	}
	if resumeText != "" {
		b.WriteString("Resume:\n")
		b.WriteString(truncateToTokens(resumeText, resumeTokenBudget, count))
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	if len(options) > 0 {
		b.WriteString("\n\nThe answer must be exactly one of these options:\n")
		for _, opt := range options {
			b.WriteString("- ")
			b.WriteString(opt)
			b.WriteString("\n")
		}
	}
	return system, b.String()
}

// parseResumePrompt builds the prompt pair asking the model to extract
// structured profile fields from resume text as JSON.
func parseResumePrompt(resumeText string, count func(string) int) (system, user string) {
	system = "You are a precise data extraction assistant. Respond only with valid JSON."

	var b strings.Builder
	b.WriteString("Extract the following fields from the resume below and return them as a JSON object:\n")
	b.WriteString("- first_name, last_name, full_name: the applicant's name\n")
	b.WriteString("- email, phone: contact details\n")
	b.WriteString("- location: city and state, e.g. \"San Francisco, CA\"\n")
	b.WriteString("- school: current university or college name\n")
	b.WriteString("- degree: degree type, e.g. \"Bachelor of Science\"\n")
	b.WriteString("- major: field of study, e.g. \"Computer Science\"\n")
	b.WriteString("- graduation_year: e.g. \"2026\"\n")
	b.WriteString("- graduation_month: e.g. \"May\"\n")
	b.WriteString("- linkedin, github, website: profile URLs\n")
	b.WriteString("- skills: list of key technical skills\n\n")
	b.WriteString("If a field cannot be found, return an empty string for string fields or an empty list for skills. Never return null or \"N/A\".\n\n")
	b.WriteString("Resume:\n")
	b.WriteString(truncateToTokens(resumeText, resumeParseBudget, count))
	return system, b.String()
}
