// Package resolve decides what value goes into each detected form field.
// The policy is deterministic-first, AI-last: profile data and the answer
// bank are consulted before any model call, and an unresolvable field is a
// normal terminal state for the caller to escalate, never an error.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/entrhq/applyforge/pkg/answerbank"
	"github.com/entrhq/applyforge/pkg/detect"
	"github.com/entrhq/applyforge/pkg/llm"
	"github.com/entrhq/applyforge/pkg/profile"
)

// Source identifies which layer of the chain produced a value.
type Source string

const (
	SourceProfile     Source = "profile"
	SourceBankSelect  Source = "bank_select"
	SourceBank        Source = "bank"
	SourceLLMSemantic Source = "llm_semantic"
	SourceLLMGenerate Source = "llm_generate"
)

// Request carries one field through the chain.
type Request struct {
	Field   *detect.FormField
	Company string

	// Options is the select field's option texts when known. It constrains
	// LLM generation and drives value-mapping canonicalization.
	Options []string
}

// Resolution is a resolved value and where it came from.
type Resolution struct {
	Value  string
	Source Source
}

// Resolver runs the ordered strategy chain. The LLM client may be nil, in
// which case the chain ends at the answer bank.
type Resolver struct {
	profile    *profile.Profile
	bank       *answerbank.Bank
	llm        llm.Client
	log        *slog.Logger
	strategies []strategy
}

type strategy struct {
	source  Source
	resolve func(ctx context.Context, req Request) (string, bool)
}

// New creates a resolver over the given profile and answer bank.
func New(p *profile.Profile, bank *answerbank.Bank, client llm.Client, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	r := &Resolver{profile: p, bank: bank, llm: client, log: log}
	r.strategies = []strategy{
		{SourceProfile, r.fromProfile},
		{SourceBankSelect, r.fromBankSelect},
		{SourceBank, r.fromBank},
		{SourceLLMSemantic, r.fromSemanticMatch},
		{SourceLLMGenerate, r.fromResume},
	}
	return r
}

// Resolve walks the chain top to bottom and returns the first hit. A false
// result means the field is unresolved and must be escalated or reported,
// never silently filled with an empty string.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Resolution, bool) {
	for _, s := range r.strategies {
		value, ok := s.resolve(ctx, req)
		if !ok || value == "" {
			continue
		}
		value = r.canonicalize(req, value)
		r.log.Debug("field resolved",
			"label", req.Field.Label,
			"source", string(s.source))
		return Resolution{Value: value, Source: s.source}, true
	}
	return Resolution{}, false
}

// canonicalize translates a canonical profile/bank value into the option
// vocabulary the target form actually offers. The profile stores canonical
// values; the form's local wording is the moving target.
func (r *Resolver) canonicalize(req Request, value string) string {
	if len(req.Options) == 0 {
		return value
	}
	key := answerbank.PatternKey(req.Field.Label)
	if key == "" || !answerbank.HasValueMapping(key) {
		return value
	}
	if mapped, ok := answerbank.MapToOption(key, req.Options, value); ok {
		return mapped
	}
	return value
}

// fromProfile maps the field onto profile data: fixed substring triggers
// over the combined label+name haystack, declared-type matches for email
// and phone, then categorical pattern keys backed by canonical profile
// values.
func (r *Resolver) fromProfile(_ context.Context, req Request) (string, bool) {
	f := req.Field
	p := r.profile
	combined := strings.ToLower(f.Label + " " + f.Name)

	switch {
	case containsAny(combined, "first", "fname"):
		return hit(p.FirstName)
	case containsAny(combined, "last", "lname"):
		return hit(p.LastName)
	case strings.Contains(combined, "full") && strings.Contains(combined, "name"):
		return hit(p.FullName)
	case f.Type == detect.FieldEmail || strings.Contains(combined, "email"):
		return hit(p.Email)
	case f.Type == detect.FieldPhone || strings.Contains(combined, "phone"):
		return hit(p.Phone)
	case strings.Contains(combined, "linkedin"):
		return hit(p.LinkedIn)
	case strings.Contains(combined, "github"):
		return hit(p.GitHub)
	case containsAny(combined, "website", "portfolio", "personal") && len(combined) < 20:
		return hit(p.Website)
	case f.Type == detect.FieldFile:
		return hit(p.ResumePath)
	case f.Type == detect.FieldTextarea && containsAny(combined, "cover", "letter", "why", "interest"):
		return hit(p.CoverLetter)
	}

	if key := answerbank.PatternKey(f.Label); key != "" {
		return hit(r.categoricalValue(key))
	}
	return "", false
}

// categoricalValue returns the profile's canonical value for pattern keys
// it can answer directly.
func (r *Resolver) categoricalValue(key string) string {
	switch key {
	case "work_auth_us":
		return r.profile.WorkAuthorization
	case "requires_sponsorship":
		return r.profile.RequiresSponsorship
	case "degree_type":
		return r.profile.Degree
	case "graduation_date":
		return r.profile.GraduationDate()
	case "major":
		return r.profile.Major
	case "school":
		return r.profile.School
	}
	return ""
}

// fromBankSelect short-circuits dropdowns through the bank's exact and
// pattern layers. Dropdowns are cheap to resolve exactly and expensive to
// get wrong, so they get a dedicated early check.
func (r *Resolver) fromBankSelect(_ context.Context, req Request) (string, bool) {
	if req.Field.Type != detect.FieldSelect {
		return "", false
	}
	return r.bank.ExactOrPattern(req.Field.Label)
}

func (r *Resolver) fromBank(_ context.Context, req Request) (string, bool) {
	return r.bank.Answer(req.Field.Label, req.Company)
}

// fromSemanticMatch asks the model whether any stored answer is answering
// the same question in different words. Model failures degrade to a miss;
// a timeout means unresolved, not fatal.
func (r *Resolver) fromSemanticMatch(ctx context.Context, req Request) (string, bool) {
	if r.llm == nil || !req.Field.HasReadableLabel() {
		return "", false
	}

	snapshot := r.bank.Snapshot()
	stored := make([]llm.StoredAnswer, 0, len(snapshot))
	for _, qa := range snapshot {
		stored = append(stored, llm.StoredAnswer{Question: qa.Question, Answer: qa.Answer})
	}

	answer, err := r.llm.SemanticMatch(ctx, req.Field.Label, stored)
	if err != nil {
		if !errors.Is(err, llm.ErrNoMatch) {
			r.log.Warn("semantic match failed", "label", req.Field.Label, "error", err)
		}
		return "", false
	}
	return answer, true
}

// fromResume generates an answer constrained to resume content. Select
// options are passed through so generated values stay inside the form's
// permitted vocabulary.
func (r *Resolver) fromResume(ctx context.Context, req Request) (string, bool) {
	if r.llm == nil || !req.Field.HasReadableLabel() {
		return "", false
	}

	resumeText, err := r.profile.ResumeText()
	if err != nil || resumeText == "" {
		return "", false
	}

	answer, err := r.llm.GenerateAnswer(ctx, req.Field.Label, resumeText, r.profileContext(), req.Options)
	if err != nil {
		if !errors.Is(err, llm.ErrUnknown) {
			r.log.Warn("resume generation failed", "label", req.Field.Label, "error", err)
		}
		return "", false
	}
	return answer, true
}

// profileContext is the compact profile summary included in generation
// prompts.
func (r *Resolver) profileContext() string {
	p := r.profile
	var b strings.Builder
	write := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, "%s: %s\n", k, v)
		}
	}
	write("Name", p.FullName)
	write("Location", p.Location)
	write("School", p.School)
	write("Degree", p.Degree)
	write("Major", p.Major)
	write("Graduation", p.GraduationDate())
	write("Work authorization", p.WorkAuthorization)
	write("Requires sponsorship", p.RequiresSponsorship)
	return b.String()
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func hit(value string) (string, bool) {
	return value, value != ""
}
