// Package ai wraps the Gemini API for the advisory appraisal summary. The
// analysis is one-shot, built only from the employee's self-assessment text,
// and is never written back into the record.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"appraisal/internal/domain/assessment"
)

var ErrNotConfigured = errors.New("ai summary is not configured")

// Summarizer produces a free-text analysis of one assessment.
type Summarizer interface {
	Summarize(ctx context.Context, rec assessment.Assessment) (string, error)
}

type GeminiSummarizer struct {
	client *genai.Client
	model  string
}

func NewGeminiSummarizer(ctx context.Context, apiKey, model string) (*GeminiSummarizer, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = "gemini-3-flash-preview"
	}
	return &GeminiSummarizer{client: client, model: model}, nil
}

func (g *GeminiSummarizer) Summarize(ctx context.Context, rec assessment.Assessment) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(BuildPrompt(rec)),
		&genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0.7)},
	)
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "No analysis generated.", nil
	}
	return text, nil
}

// BuildPrompt assembles the manager-facing analysis request. Only
// self-authored fields are included; manager ratings must never steer the
// suggested grade.
func BuildPrompt(rec assessment.Assessment) string {
	type kpiView struct {
		Title        string            `json:"title"`
		SelfRating   assessment.Rating `json:"selfRating,omitempty"`
		SelfComments string            `json:"selfComments,omitempty"`
	}
	kpis := make([]kpiView, 0, len(rec.KPIs))
	for _, k := range rec.KPIs {
		kpis = append(kpis, kpiView{Title: k.Title, SelfRating: k.SelfRating, SelfComments: k.SelfComments})
	}
	kpiJSON, _ := json.Marshal(kpis)

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following performance appraisal for %s.\n", rec.EmployeeDetails.FullName)
	b.WriteString("Provide a concise summary for the manager focusing on:\n")
	b.WriteString("1. Key achievements based on employee comments.\n")
	b.WriteString("2. Potential areas for development.\n")
	b.WriteString("3. A suggested overall rating based on the provided evidence.\n\n")
	b.WriteString("Employee Data:\n")
	fmt.Fprintf(&b, "KPIs: %s\n", kpiJSON)
	fmt.Fprintf(&b, "Development Plan: %s\n", rec.DevelopmentPlan.SelfComments)
	fmt.Fprintf(&b, "Overall Self-Comments: %s\n", rec.OverallPerformance.SelfComments)
	return b.String()
}
