package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/srinivastls/AADIS/internal/docstore"
	"github.com/srinivastls/AADIS/internal/logging"
	"github.com/srinivastls/AADIS/internal/query"
)

// imageTopK caps how many relevant images are analysed per question.
const imageTopK = 5

// Relevance weights for image matching. An explicit entity reference
// ("figure 2") in a caption is the strongest possible signal.
const (
	imageCaptionWeight = 2
	imageEntityWeight  = 3
	imageAltTextWeight = 1
	imageQueryHint     = 1
)

// ImageAnalysisAgent answers image questions from the metadata the ingestion
// pipeline extracted: captions, alt text, paths, and dimensions.
type ImageAnalysisAgent struct {
	docs docstore.Reader
}

// NewImageAnalysisAgent wires the image agent to the document store.
func NewImageAnalysisAgent(docs docstore.Reader) *ImageAnalysisAgent {
	return &ImageAnalysisAgent{docs: docs}
}

func (a *ImageAnalysisAgent) Name() string { return "ImageAnalysis" }

func (a *ImageAnalysisAgent) Capabilities() []string {
	return []string{"image_query", "caption_search", "image_retrieval"}
}

func (a *ImageAnalysisAgent) CanHandle(cat query.Category) bool {
	return cat == query.CategoryImage
}

// rankedImage pairs an image with its relevance and resolved document.
type rankedImage struct {
	image     docstore.ImageRecord
	document  string
	relevance int
}

// Answer finds keyword-relevant images and describes each from its metadata.
func (a *ImageAnalysisAgent) Answer(ctx context.Context, analysis query.Analysis) Result {
	log := logging.FromContext(ctx)
	log.Debug("image agent processing query", "query", analysis.Query)

	ranked, err := a.findRelevant(ctx, analysis)
	if err != nil {
		log.Error("image lookup failed", "error", err)
		return failure(a.Name(), fmt.Sprintf("Error analyzing images: %v", err))
	}
	if len(ranked) == 0 {
		return noResults(a.Name(), "No relevant images found for your query.")
	}

	return Result{
		Agent:   a.Name(),
		Status:  StatusSuccess,
		Answer:  combineImageAnalyses(analysis.Query, ranked),
		Sources: imageSources(ranked),
		Count:   len(ranked),
	}
}

// findRelevant scores every stored image against the question's keywords and
// entities and keeps the best matches.
func (a *ImageAnalysisAgent) findRelevant(ctx context.Context, analysis query.Analysis) ([]rankedImage, error) {
	images, err := a.docs.Images(ctx)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(analysis.Query)
	queryHint := containsAny(lower, "figure", "fig", "image", "picture")

	var ranked []rankedImage
	for _, img := range images {
		relevance := scoreImage(img, analysis.Keywords, analysis.Entities)
		if queryHint {
			relevance += imageQueryHint
		}
		if relevance == 0 {
			continue
		}
		document := "Unknown"
		if doc, err := a.docs.DocumentByID(ctx, img.DocumentID); err == nil {
			document = doc.Filename
		}
		ranked = append(ranked, rankedImage{image: img, document: document, relevance: relevance})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].relevance > ranked[j].relevance
	})
	if len(ranked) > imageTopK {
		ranked = ranked[:imageTopK]
	}
	return ranked, nil
}

// scoreImage accumulates keyword and entity overlap across the image's
// caption and alt text.
func scoreImage(img docstore.ImageRecord, keywords, entities []string) int {
	score := 0

	if img.Caption != "" {
		caption := strings.ToLower(img.Caption)
		for _, kw := range keywords {
			if strings.Contains(caption, kw) {
				score += imageCaptionWeight
			}
		}
		for _, e := range entities {
			if strings.Contains(caption, strings.ToLower(e)) {
				score += imageEntityWeight
			}
		}
	}

	if img.AltText != "" {
		alt := strings.ToLower(img.AltText)
		for _, kw := range keywords {
			if strings.Contains(alt, kw) {
				score += imageAltTextWeight
			}
		}
	}

	return score
}

// describeImage answers for a single image based on what the question asks:
// a description, the caption, the dimensions, or general information.
func describeImage(lowerQuery string, img docstore.ImageRecord) string {
	switch {
	case containsAny(lowerQuery, "show", "display", "what is", "describe"):
		caption := img.Caption
		if caption == "" {
			caption = "Image without caption"
		}
		return fmt.Sprintf("Image from page %d: %s", img.PageNumber, caption)
	case containsAny(lowerQuery, "caption", "title"):
		caption := img.Caption
		if caption == "" {
			caption = "No caption available"
		}
		return fmt.Sprintf("Caption: %s", caption)
	case containsAny(lowerQuery, "size", "dimensions"):
		return fmt.Sprintf("Image dimensions: %dx%d pixels", img.Width, img.Height)
	default:
		caption := img.Caption
		if caption == "" {
			caption = fmt.Sprintf("Image from page %d", img.PageNumber)
		}
		return fmt.Sprintf("Image information: %s", caption)
	}
}

// combineImageAnalyses renders the per-image descriptions into one answer.
func combineImageAnalyses(question string, ranked []rankedImage) string {
	lower := strings.ToLower(question)

	answer := fmt.Sprintf("Based on the image analysis for your query '%s':\n\n", question)
	for i, ri := range ranked {
		caption := ri.image.Caption
		if caption == "" {
			caption = "No caption available"
		}
		answer += fmt.Sprintf("Image %d (from %s, Page %d):\n", i+1, ri.document, ri.image.PageNumber)
		answer += fmt.Sprintf("Caption: %s\n", caption)
		answer += fmt.Sprintf("Analysis: %s\n\n", describeImage(lower, ri.image))
	}
	return answer
}

// imageSources formats the ranked images as source listings.
func imageSources(ranked []rankedImage) []Source {
	sources := make([]Source, 0, len(ranked))
	for _, ri := range ranked {
		caption := ri.image.Caption
		if caption == "" {
			caption = "No caption"
		}
		dimensions := "Unknown"
		if ri.image.Width > 0 && ri.image.Height > 0 {
			dimensions = fmt.Sprintf("%dx%d", ri.image.Width, ri.image.Height)
		}
		sources = append(sources, Source{
			Type:       "image",
			Document:   ri.document,
			Page:       ri.image.PageNumber,
			Caption:    caption,
			Path:       ri.image.ImagePath,
			Dimensions: dimensions,
			Relevance:  ri.relevance,
		})
	}
	return sources
}
