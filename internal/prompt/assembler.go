// Package prompt assembles the per-call system prompt from the base persona,
// the session's script and a digest of previously extracted insights.
package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/eterno-app/eterno/internal/script"
	"github.com/eterno-app/eterno/internal/store"
)

// Prior-context policy: newest extractions at or above the importance floor,
// then fixed per-category caps to bound prompt size.
const (
	minImportance    = 6
	maxExtractions   = 15
	maxStories       = 3
	maxValues        = 2
	maxRelationships = 3
	maxExpressions   = 3
)

// ExtractionSource is the read-only store slice the assembler needs.
type ExtractionSource interface {
	RecentImportantExtractions(ctx context.Context, clientID uuid.UUID, minImportance, limit int) ([]store.Extraction, error)
}

type Assembler struct {
	extractions ExtractionSource
}

func NewAssembler(extractions ExtractionSource) *Assembler {
	return &Assembler{extractions: extractions}
}

// BuildPrompt substitutes the three placeholders in the base persona template.
func BuildPrompt(clientName string, sessionNumber int, sc script.Script, previousContext string) string {
	sessionContext := fmt.Sprintf("Name: %s\nSession: %d of %d\nTheme: %s (%s)",
		clientName, sessionNumber, script.SessionCount, sc.Title, sc.Theme)

	var sb strings.Builder
	fmt.Fprintf(&sb, "OPENING: %s\n\nMAIN QUESTIONS:\n", sc.Opening)
	for i, q := range sc.Questions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, q.Main)
		if len(q.Followups) > 0 {
			fmt.Fprintf(&sb, "   Follow-ups: %s\n", strings.Join(q.Followups, ", "))
		}
	}
	fmt.Fprintf(&sb, "\nCLOSING: %s", sc.Closing)

	p := basePrompt
	p = strings.Replace(p, "{{SESSION_CONTEXT}}", sessionContext, 1)
	p = strings.Replace(p, "{{SESSION_SCRIPT}}", sb.String(), 1)
	p = strings.Replace(p, "{{PREVIOUS_CONTEXT}}", previousContext, 1)
	return p
}

// BuildPreviousContext renders the prior-insight digest for a client. Session 1
// returns a fixed sentence without querying the store. Store failures propagate
// to the caller; there is no local recovery.
func (a *Assembler) BuildPreviousContext(ctx context.Context, clientID uuid.UUID, sessionNumber int) (string, error) {
	if sessionNumber == 1 {
		return firstSessionContext, nil
	}

	extractions, err := a.extractions.RecentImportantExtractions(ctx, clientID, minImportance, maxExtractions)
	if err != nil {
		return "", fmt.Errorf("load prior extractions: %w", err)
	}
	if len(extractions) == 0 {
		return historyProcessingContext, nil
	}

	byCategory := make(map[string][]string)
	for _, e := range extractions {
		byCategory[e.Category] = append(byCategory[e.Category], e.Content)
	}

	var sb strings.Builder
	writeCategoryLine(&sb, "STORIES", byCategory["story"], maxStories)
	writeCategoryLine(&sb, "VALUES", byCategory["value"], maxValues)
	writeCategoryLine(&sb, "PEOPLE", byCategory["relationship"], maxRelationships)
	writeCategoryLine(&sb, "EXPRESSIONS", byCategory["expression"], maxExpressions)

	if sb.Len() == 0 {
		return historyProcessingContext, nil
	}
	return sb.String(), nil
}

func writeCategoryLine(sb *strings.Builder, label string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	if len(items) > limit {
		items = items[:limit]
	}
	fmt.Fprintf(sb, "\n%s: %s", label, strings.Join(items, "; "))
}

// FirstMessage picks the call greeting: a full introduction for session 1, a
// shorter welcome-back otherwise. Both contain the client's name.
func FirstMessage(clientName string, sessionNumber int) string {
	if sessionNumber == 1 {
		return fmt.Sprintf("Hello %s! I'm so happy to begin this journey with you. I'm Memory, and I'll be with you through these conversations about your life. "+
			"Don't worry, this is a conversation between friends. How are you feeling today?", clientName)
	}
	return fmt.Sprintf("Hi %s! It's so good to see you again. How are you today?", clientName)
}
