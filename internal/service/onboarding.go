package service

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"

	"github.com/relayline/sms-assistant/internal/model"
	"github.com/relayline/sms-assistant/internal/repository"
)

// Onboarding drives the linear name -> location collection sequence.
// Each field is validated independently; invalid input re-prompts
// without changing state rather than aborting the flow.  Advance never
// returns an empty reply and never fails the request: inconsistent
// profile state falls into a generic fallback branch.
type Onboarding struct {
	Profiles ProfileStore
}

var nameStripRe = regexp.MustCompile(`[^A-Za-z '\-]`)

// Advance dispatches on the profile's current onboarding step and
// returns the next prompt to send the user.
func (o *Onboarding) Advance(ctx context.Context, key, text string) string {
	prof, err := o.Profiles.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		prof, err = o.Profiles.CreateIfAbsent(ctx, key)
	}
	if err != nil {
		log.Printf("onboarding: load profile failed for %s: %v", key, err)
		return msgFallback
	}

	switch prof.OnboardingStep {
	case model.StepNew, model.StepAwaitingName:
		name, ok := cleanName(text)
		if !ok {
			return msgNameReprompt
		}
		step := model.StepAwaitingLocation
		if err := o.Profiles.Update(ctx, key, model.ProfileUpdate{
			FirstName:      &name,
			OnboardingStep: &step,
		}); err != nil {
			log.Printf("onboarding: save name failed for %s: %v", key, err)
			return msgFallback
		}
		if err := o.Profiles.AppendOnboardingStep(ctx, key, model.StepAwaitingName, name); err != nil {
			log.Printf("onboarding: log step failed for %s: %v", key, err)
		}
		return msgLocationPrompt(name)

	case model.StepAwaitingLocation:
		loc, ok := cleanLocation(text)
		if !ok {
			return msgLocationRepromt
		}
		step := model.StepComplete
		done := true
		if err := o.Profiles.Update(ctx, key, model.ProfileUpdate{
			Location:            &loc,
			OnboardingStep:      &step,
			OnboardingCompleted: &done,
		}); err != nil {
			log.Printf("onboarding: save location failed for %s: %v", key, err)
			return msgFallback
		}
		if err := o.Profiles.AppendOnboardingStep(ctx, key, model.StepAwaitingLocation, loc); err != nil {
			log.Printf("onboarding: log step failed for %s: %v", key, err)
		}
		name := ""
		if prof.FirstName != nil {
			name = *prof.FirstName
		}
		if name == "" {
			return msgCompleteUnknown
		}
		return msgComplete(name)

	default:
		// COMPLETE or inconsistent data: answer without mutation.
		return msgCompleteUnknown
	}
}

// cleanName trims, title-cases and strips everything outside
// letters/space/hyphen/apostrophe. Results shorter than two characters
// after stripping, or titled input longer than 50 characters, are
// rejected.
func cleanName(raw string) (string, bool) {
	titled := titleCase(strings.TrimSpace(raw))
	if len(titled) > 50 {
		return "", false
	}
	cleaned := strings.TrimSpace(nameStripRe.ReplaceAllString(titled, ""))
	if len(cleaned) < 2 {
		return "", false
	}
	return cleaned, true
}

// cleanLocation trims and title-cases free-text city/zip input and
// bounds its length to 2..100 characters.
func cleanLocation(raw string) (string, bool) {
	titled := titleCase(strings.TrimSpace(raw))
	if len(titled) < 2 || len(titled) > 100 {
		return "", false
	}
	return titled, true
}

// titleCase upper-cases the first letter of each space-separated word
// and lower-cases the rest.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		for j, c := range r {
			if c >= 'a' && c <= 'z' {
				r[j] = c - 'a' + 'A'
			}
			break
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
