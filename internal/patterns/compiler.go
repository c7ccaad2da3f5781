// Package patterns provides shared regex patterns and helper functions for
// bid-package parsing. This file contains the grok-style pattern compiler.

package patterns

import (
	"regexp"
	"strings"
)

// Format represents a line format with named capture groups.
type Format struct {
	Name     string         // Format name for identification
	Pattern  string         // Pattern with {PLACEHOLDER} syntax
	Compiled *regexp.Regexp // Compiled regex (populated by Compile)
	Fields   []string       // Field names in capture order (for documentation)
}

// Compiler manages pattern compilation and parsing for a set of formats.
type Compiler struct {
	basePatterns map[string]string
	formats      []Format
}

// NewCompiler creates a new pattern compiler with the given formats.
// It merges the provided base patterns with the global BasePatterns,
// allowing local patterns to override global ones.
func NewCompiler(formats []Format, localPatterns map[string]string) *Compiler {
	c := &Compiler{
		basePatterns: make(map[string]string),
		formats:      make([]Format, len(formats)),
	}

	// Copy global base patterns.
	for k, v := range BasePatterns {
		c.basePatterns[k] = v
	}

	// Overlay local patterns (can override global ones).
	for k, v := range localPatterns {
		c.basePatterns[k] = v
	}

	// Copy formats.
	copy(c.formats, formats)

	return c
}

// MustCompile expands and compiles all formats, panicking on an invalid
// pattern. Formats are package-level constants, so a failure here is a
// programming error caught at init time.
func (c *Compiler) MustCompile() *Compiler {
	if err := c.Compile(); err != nil {
		panic("patterns: " + err.Error())
	}
	return c
}

// Compile expands all {PLACEHOLDER} references and compiles regexes.
func (c *Compiler) Compile() error {
	for i := range c.formats {
		expanded := c.expand(c.formats[i].Pattern)
		re, err := regexp.Compile(expanded)
		if err != nil {
			return err
		}
		c.formats[i].Compiled = re
	}
	return nil
}

// expand replaces {PLACEHOLDER} with actual regex patterns.
func (c *Compiler) expand(pattern string) string {
	result := pattern
	for name, regex := range c.basePatterns {
		placeholder := "{" + name + "}"
		result = strings.ReplaceAll(result, placeholder, regex)
	}
	return result
}

// Match represents a successful pattern match with extracted fields.
type Match struct {
	FormatName string            // Name of the matched format
	Captures   map[string]string // Named capture group values
}

// Parse attempts to parse a line using all compiled formats.
// Returns the first successful match, or nil if no format matches.
func (c *Compiler) Parse(text string) *Match {
	for _, format := range c.formats {
		if format.Compiled == nil {
			continue
		}

		match := format.Compiled.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		result := &Match{
			FormatName: format.Name,
			Captures:   make(map[string]string),
		}

		// Extract named groups.
		for i, name := range format.Compiled.SubexpNames() {
			if i == 0 || name == "" {
				continue
			}
			result.Captures[name] = match[i]
		}

		return result
	}

	return nil
}

// ParseAll attempts to parse a line using all compiled formats and returns
// every successful match (useful when formats extract different fields).
func (c *Compiler) ParseAll(text string) []*Match {
	var results []*Match

	for _, format := range c.formats {
		if format.Compiled == nil {
			continue
		}

		match := format.Compiled.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		result := &Match{
			FormatName: format.Name,
			Captures:   make(map[string]string),
		}

		for i, name := range format.Compiled.SubexpNames() {
			if i == 0 || name == "" {
				continue
			}
			result.Captures[name] = match[i]
		}

		results = append(results, result)
	}

	return results
}
