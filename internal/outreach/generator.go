// engine/internal/outreach/generator.go
package outreach

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"outreach-engine/internal/domain"
)

// Generator turns enriched listings into outreach emails. Every path
// returns a usable email: when the model server is down, has no
// models, or produces garbage, the deterministic fallback applies.
type Generator struct {
	Client   *Client
	Personas map[string]Persona
	Parallel int
}

func buildPrompt(name, title, desc, link string) string {
	return fmt.Sprintf(`
You are %s, a professional job applicant writing an email for a job.

Write a job application email for this position:
TITLE: %s

DESCRIPTION: %s

The email must:
1. Include a relevant subject line (4-6 words)
2. Start with "Hey there,"
3. Have a first paragraph mentioning the job and highlighting relevant skills (2-3 sentences)
4. Have a second paragraph expressing interest and suggesting to connect (1-2 sentences)
5. End with "Best regards, %s"
6. Include the job reference URL: %s

IMPORTANT: Write ONLY the email content. Do not include any explanations.
Output the email in this exact format:
Subject: [relevant job title]

Hey there,

[First paragraph]

[Second paragraph]

Best regards,
%s

Job Reference: %s
`, name, title, desc, link, name, name, link)
}

func (g *Generator) persona(key string) (Persona, error) {
	if key == "" {
		key = DefaultPersonaKey
	}
	p, ok := g.Personas[key]
	if !ok {
		return Persona{}, fmt.Errorf("unknown persona %q", key)
	}
	if p.Name == "" {
		p.Name = "Abj"
	}
	return p, nil
}

// Generate produces one email. Only an unknown persona is an error.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	p, err := g.persona(req.Persona)
	if err != nil {
		return "", err
	}
	req = req.Clean()

	if !g.Client.Available(ctx) {
		log.Printf("[outreach] model server unreachable, using fallback for %q", req.Title)
		return FallbackEmail(req.Title, req.Link, p.Name), nil
	}

	models, err := g.Client.Models(ctx)
	if err != nil || len(models) == 0 {
		log.Printf("[outreach] no models available (%v), using fallback for %q", err, req.Title)
		return FallbackEmail(req.Title, req.Link, p.Name), nil
	}
	model := PickModel(models, g.Client.Model)

	prompt := buildPrompt(p.Name, req.Title, req.Description, req.Link)
	raw, err := g.Client.Generate(ctx, model, p.SystemPrompt, prompt)
	if err != nil {
		log.Printf("[outreach] generate failed (%v), using fallback for %q", err, req.Title)
		return FallbackEmail(req.Title, req.Link, p.Name), nil
	}

	return EnforceTemplate(raw, req.Link, p.Name), nil
}

// Generated pairs a record with its email.
type Generated struct {
	Record domain.Enriched
	Email  string
}

// Batch generates emails for every record with a usable address,
// fanning out up to Parallel requests.
func (g *Generator) Batch(ctx context.Context, recs []domain.Enriched, persona string) ([]Generated, error) {
	limit := g.Parallel
	if limit <= 0 {
		limit = 3
	}

	out := make([]Generated, len(recs))
	var eg errgroup.Group
	eg.SetLimit(limit)

	for i, rec := range recs {
		i, rec := i, rec
		eg.Go(func() error {
			email, err := g.Generate(ctx, Request{
				Title:       rec.Title,
				Description: rec.Description,
				PostDate:    rec.PostDate,
				Link:        rec.Link,
				City:        rec.City,
				Persona:     persona,
			})
			if err != nil {
				return err
			}
			out[i] = Generated{Record: rec, Email: email}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
