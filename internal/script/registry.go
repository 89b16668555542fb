// Package script holds the fixed 20-session interview script table.
//
// The table is embedded as JSON and validated once at startup. It is immutable
// for the life of the process; handlers only read from it.
package script

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed scripts.json
var scriptsJSON []byte

// SessionCount is the fixed number of scripted sessions.
const SessionCount = 20

// Question is one main prompt with optional follow-up prompts.
type Question struct {
	Main      string   `json:"main"`
	Followups []string `json:"followups"`
}

// Script is the fixed content for one session ordinal.
type Script struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Theme     string     `json:"theme"`
	Opening   string     `json:"opening"`
	Questions []Question `json:"questions"`
	Closing   string     `json:"closing"`
}

// Registry maps session ordinals 1..SessionCount to their scripts.
type Registry struct {
	scripts map[int]Script
}

var validThemes = map[string]bool{
	"Origins":      true,
	"Formation":    true,
	"Achievements": true,
	"Reflections":  true,
	"Messages":     true,
}

// Load parses and validates the embedded script table.
func Load() (*Registry, error) {
	var scripts []Script
	if err := json.Unmarshal(scriptsJSON, &scripts); err != nil {
		return nil, fmt.Errorf("parse scripts: %w", err)
	}
	if len(scripts) != SessionCount {
		return nil, fmt.Errorf("expected %d scripts, got %d", SessionCount, len(scripts))
	}

	byNumber := make(map[int]Script, len(scripts))
	for _, sc := range scripts {
		if sc.Number < 1 || sc.Number > SessionCount {
			return nil, fmt.Errorf("script number %d out of range", sc.Number)
		}
		if _, dup := byNumber[sc.Number]; dup {
			return nil, fmt.Errorf("duplicate script number %d", sc.Number)
		}
		if sc.Title == "" || sc.Opening == "" || sc.Closing == "" {
			return nil, fmt.Errorf("script %d missing title, opening or closing", sc.Number)
		}
		if !validThemes[sc.Theme] {
			return nil, fmt.Errorf("script %d has unknown theme %q", sc.Number, sc.Theme)
		}
		if len(sc.Questions) == 0 {
			return nil, fmt.Errorf("script %d has no questions", sc.Number)
		}
		for i, q := range sc.Questions {
			if q.Main == "" {
				return nil, fmt.Errorf("script %d question %d has no main prompt", sc.Number, i+1)
			}
		}
		byNumber[sc.Number] = sc
	}

	return &Registry{scripts: byNumber}, nil
}

// Lookup returns the script for a session ordinal. Unknown ordinals fall back
// to session 1; this is a default-safety policy, not an error path.
func (r *Registry) Lookup(sessionNumber int) Script {
	if sc, ok := r.scripts[sessionNumber]; ok {
		return sc
	}
	return r.scripts[1]
}
