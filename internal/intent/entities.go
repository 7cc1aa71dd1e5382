package intent

import (
	"fmt"
	"regexp"
	"strings"
)

// PrimaryEntity is the entity key for the first capturing group of the
// winning intent pattern.
const PrimaryEntity = "primary_entity"

// EntityExtractor runs independent regex extractors for generic entities.
// Extraction never affects confidence; it only annotates matches.
type EntityExtractor struct {
	order      []string // entity types in declaration order
	extractors map[string][]*regexp.Regexp
}

// Generic entity extractors. First matching pattern per entity type wins.
// Person and location rely on capitalization, so these run against the
// original-case utterance.
var defaultEntityPatterns = []struct {
	name     string
	patterns []string
}{
	{"time", []string{`(?i)at\s+(\d{1,2}:\d{2}\s*(?:am|pm)?)`, `(?i)(\d{1,2}\s*(?:am|pm))`}},
	{"date", []string{`(\d{1,2}/\d{1,2}/\d{2,4})`, `(\d{1,2}-\d{1,2}-\d{2,4})`}},
	{"person", []string{`(?:call|to|message|email)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`}},
	{"location", []string{`(?:in|at|near)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`}},
}

// NewEntityExtractor compiles the built-in generic extractors.
func NewEntityExtractor() *EntityExtractor {
	e := &EntityExtractor{extractors: make(map[string][]*regexp.Regexp)}
	for _, def := range defaultEntityPatterns {
		var compiled []*regexp.Regexp
		for _, src := range def.patterns {
			re, err := regexp.Compile(src)
			if err != nil {
				panic(fmt.Sprintf("built-in entity pattern %q failed to compile: %v", src, err))
			}
			compiled = append(compiled, re)
		}
		e.order = append(e.order, def.name)
		e.extractors[def.name] = compiled
	}
	return e
}

// Extract runs every generic extractor against the original-case utterance
// and merges hits into a fresh map. First matching pattern per type wins.
func (e *EntityExtractor) Extract(utterance string) map[string]string {
	entities := make(map[string]string)
	for _, name := range e.order {
		for _, re := range e.extractors[name] {
			if m := re.FindStringSubmatch(utterance); m != nil && len(m) > 1 {
				entities[name] = strings.TrimSpace(m[1])
				break
			}
		}
	}
	return entities
}
