// Package query classifies natural-language questions so the supervisor can
// route them to the right retrieval agents. Classification is a fixed-pattern
// scoring pass — no model call, no external dependency.
package query

import (
	"regexp"
	"strings"
)

// Category labels the kind of evidence a question is asking about.
type Category string

// Known categories. General is never produced by the analyzer; it exists so
// agents can declare broader capability than the analyzer emits.
const (
	CategoryText    Category = "text"
	CategoryTable   Category = "table"
	CategoryImage   Category = "image"
	CategoryGeneral Category = "general"
)

// Complexity grades how involved a question is.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// scoreThreshold is the minimum pattern score for a category to be included.
// Empirical constant — answers change if tuned, so leave it alone.
const scoreThreshold = 0.30

// defaultTextConfidence is assigned when no category clears the threshold.
const defaultTextConfidence = 0.5

// maxKeywords caps the keyword list at the first N meaningful tokens.
const maxKeywords = 10

// categoryPriority is the fixed tie-break and synthesis order.
var categoryPriority = []Category{CategoryText, CategoryTable, CategoryImage}

// Analysis is the immutable result of analysing one question.
type Analysis struct {
	// Query is the original question text.
	Query string
	// Categories are the detected categories, in priority order.
	Categories []Category
	// Confidence holds the pattern score for each detected category.
	Confidence map[Category]float64
	// Primary is the category with the highest score
	// (ties broken by text, table, image order).
	Primary Category
	// Entities are document references found in the question
	// (table 3, figure 2, page 7, ...). Order is not guaranteed.
	Entities []string
	// Keywords are up to ten meaningful tokens in source order.
	Keywords []string
	// Complexity grades the question: low, medium, or high.
	Complexity Complexity
	// MultiAgent is true when more than one category was detected.
	MultiAgent bool
}

// Analyzer scores questions against fixed per-category pattern sets.
// It never fails: every question yields at least the text category.
type Analyzer struct {
	textPatterns  []*regexp.Regexp
	tablePatterns []*regexp.Regexp
	imagePatterns []*regexp.Regexp

	entityPatterns []*regexp.Regexp
	wordPattern    *regexp.Regexp
	questionWords  *regexp.Regexp
	stopWords      map[string]struct{}
}

// NewAnalyzer constructs an Analyzer with all patterns pre-compiled.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		textPatterns: compileAll(
			`\b(what|who|when|where|why|how|explain|describe|tell me about)\b`,
			`\b(definition|meaning|concept|idea)\b`,
			`\b(summary|summarize|overview)\b`,
		),
		tablePatterns: compileAll(
			`\b(table|data|numbers|statistics|stats|values)\b`,
			`\b(row|column|cell|header)\b`,
			`\b(count|sum|average|total|maximum|minimum|mean)\b`,
			`\b(compare|comparison|versus|vs)\b`,
			`\b(list all|show all|find all)\b`,
		),
		imagePatterns: compileAll(
			`\b(image|picture|figure|chart|graph|diagram)\b`,
			`\b(visual|show|display|illustration)\b`,
			`\b(fig\.|figure \d+|image \d+)\b`,
		),
		entityPatterns: compileAll(
			`\b(table \d+|table \w+)\b`,
			`\b(figure \d+|fig\. \d+|image \d+)\b`,
			`\b(page \d+)\b`,
			`\b(chapter \d+|section \d+)\b`,
		),
		wordPattern:   regexp.MustCompile(`\w+`),
		questionWords: regexp.MustCompile(`\b(what|who|when|where|why|how)\b`),
		stopWords:     defaultStopWords(),
	}
}

// Analyze classifies question into categories and extracts routing features.
// It always returns a usable Analysis; an empty or unmatchable question
// defaults to the text category at 0.5 confidence.
func (a *Analyzer) Analyze(question string) Analysis {
	lower := strings.ToLower(question)

	confidence := make(map[Category]float64)
	var categories []Category

	scores := map[Category]float64{
		CategoryText:  patternScore(lower, a.textPatterns),
		CategoryTable: patternScore(lower, a.tablePatterns),
		CategoryImage: patternScore(lower, a.imagePatterns),
	}
	for _, cat := range categoryPriority {
		if scores[cat] > scoreThreshold {
			categories = append(categories, cat)
			confidence[cat] = scores[cat]
		}
	}

	if len(categories) == 0 {
		categories = []Category{CategoryText}
		confidence[CategoryText] = defaultTextConfidence
	}

	return Analysis{
		Query:      question,
		Categories: categories,
		Confidence: confidence,
		Primary:    primaryCategory(confidence),
		Entities:   a.extractEntities(lower),
		Keywords:   a.extractKeywords(lower),
		Complexity: a.assessComplexity(question, lower),
		MultiAgent: len(categories) > 1,
	}
}

// patternScore is the fraction of patterns in the set the question matches.
// Each category scores independently; categories are not exclusive.
func patternScore(lower string, patterns []*regexp.Regexp) float64 {
	if len(patterns) == 0 {
		return 0
	}
	matches := 0
	for _, p := range patterns {
		if p.MatchString(lower) {
			matches++
		}
	}
	return float64(matches) / float64(len(patterns))
}

// primaryCategory picks the highest-confidence category, breaking ties by
// the fixed text, table, image priority order.
func primaryCategory(confidence map[Category]float64) Category {
	best := CategoryText
	bestScore := -1.0
	for _, cat := range categoryPriority {
		if score, ok := confidence[cat]; ok && score > bestScore {
			best = cat
			bestScore = score
		}
	}
	return best
}

// extractEntities finds document references (table 3, figure 2, page 7,
// chapter 1) case-insensitively and deduplicates them.
func (a *Analyzer) extractEntities(lower string) []string {
	seen := make(map[string]struct{})
	var entities []string
	for _, p := range a.entityPatterns {
		for _, m := range p.FindAllString(lower, -1) {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			entities = append(entities, m)
		}
	}
	return entities
}

// extractKeywords tokenizes the question, drops stop words and short tokens,
// and keeps at most the first maxKeywords tokens in source order.
func (a *Analyzer) extractKeywords(lower string) []string {
	var keywords []string
	for _, w := range a.wordPattern.FindAllString(lower, -1) {
		if len(w) <= 2 {
			continue
		}
		if _, stop := a.stopWords[w]; stop {
			continue
		}
		keywords = append(keywords, w)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// assessComplexity grades the question by length and question-word density.
func (a *Analyzer) assessComplexity(question, lower string) Complexity {
	wordCount := len(strings.Fields(question))
	questionWords := len(a.questionWords.FindAllString(lower, -1))

	switch {
	case wordCount > 20 || questionWords > 2:
		return ComplexityHigh
	case wordCount > 10 || questionWords > 1:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

// compileAll compiles a fixed pattern list, panicking on programmer error.
func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

// defaultStopWords is the fixed stop-word set used by keyword extraction.
func defaultStopWords() map[string]struct{} {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"has", "he", "in", "is", "it", "its", "of", "on", "that", "the",
		"to", "was", "were", "will", "with", "what", "when", "where", "who",
		"why", "how", "can", "could", "should", "would", "do", "does", "did",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
