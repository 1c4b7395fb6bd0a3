// Package narrative builds the qualitative overlap prompt and renders its answer.
package narrative

import (
	"fmt"
	"unicode/utf8"
)

// SystemPersona fixes the analyst role of the narrative model.
const SystemPersona = "You are an expert content analyst specializing in detecting content similarity " +
	"and providing actionable recommendations for content uniqueness. You have access to the full " +
	"content of both the draft and existing blogs, so provide detailed, specific analysis with concrete examples."

// Request is one draft-versus-document analysis. Both texts are passed in full.
type Request struct {
	DraftText         string
	Title             string
	Content           string
	SimilarityPercent string
}

const promptTemplate = `You are an expert content analyst. Analyze the similarity between this draft content and an existing blog post.

DRAFT CONTENT (%d characters):
%s

EXISTING BLOG:
Title: %s
Similarity Score: %s%%
Full Content (%d characters):
%s

Provide a comprehensive analysis with:

1. **OVERALL ASSESSMENT**: Why are these %s%% similar? What's the core overlap?

2. **SECTION-BY-SECTION BREAKDOWN**:
   - Introduction: How similar are the opening paragraphs? Quote specific overlapping text.
   - Main Content: Which specific sections/paragraphs overlap? Show exact matches.
   - Conclusion: How similar are the endings? Quote overlapping conclusions.

3. **EXACT OVERLAPS**:
   - Copy and paste the exact phrases, sentences, or paragraphs that are too similar
   - Highlight which parts of your draft match which parts of the existing blog
   - Be specific about word-for-word matches vs. paraphrased content

4. **UNIQUE ELEMENTS**: What makes the draft different from the existing blog?

5. **ACTIONABLE RECOMMENDATIONS**:
   - For each overlapping section, provide specific rewrite suggestions
   - Suggest alternative approaches, different examples, or unique angles

6. **RISK ASSESSMENT**: High/Medium/Low risk of being flagged as duplicate content

7. **CONTENT LENGTH ANALYSIS**: How does the draft length compare to the existing blog?

IMPORTANT: Since this is %s%% similar, focus on finding and quoting the actual overlapping content. Don't just summarize - show the specific text that's too similar.`

// Validate checks the request has something to compare.
func (r Request) Validate() error {
	if r.DraftText == "" {
		return fmt.Errorf("draft text is required")
	}
	if r.Content == "" {
		return fmt.Errorf("document content is required")
	}
	return nil
}

// Prompt renders the user message for r.
func (r Request) Prompt() string {
	title := r.Title
	if title == "" {
		title = "Untitled"
	}
	return fmt.Sprintf(promptTemplate,
		utf8.RuneCountInString(r.DraftText), r.DraftText,
		title, r.SimilarityPercent,
		utf8.RuneCountInString(r.Content), r.Content,
		r.SimilarityPercent, r.SimilarityPercent,
	)
}

// FailureText is the inline message stored when an analysis cannot be produced.
func FailureText(err error) string {
	return fmt.Sprintf("Analysis failed. Error: %v", err)
}
