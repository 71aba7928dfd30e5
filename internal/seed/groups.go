package seed

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/validation"

	"gopkg.in/yaml.v3"
)

//go:embed groups.yml
var builtInGroups []byte

type groupFile struct {
	Groups []struct {
		Title       string `yaml:"title"`
		Slug        string `yaml:"slug"`
		Description string `yaml:"description"`
	} `yaml:"groups"`
}

// ParseGroups decodes a group fixture file. Every entry needs a title and
// a valid, unique slug.
func ParseGroups(raw []byte) ([]models.Group, error) {
	var file groupFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse groups: %w", err)
	}

	seen := make(map[string]bool, len(file.Groups))
	groups := make([]models.Group, 0, len(file.Groups))
	for i, g := range file.Groups {
		title := strings.TrimSpace(g.Title)
		slug := strings.TrimSpace(g.Slug)
		if title == "" {
			return nil, fmt.Errorf("group %d: title is required", i)
		}
		if err := validation.ValidateSlug(slug); err != nil {
			return nil, fmt.Errorf("group %q: %w", title, err)
		}
		if seen[slug] {
			return nil, fmt.Errorf("group %q: duplicate slug %q", title, slug)
		}
		seen[slug] = true
		groups = append(groups, models.Group{
			Title:       title,
			Slug:        slug,
			Description: strings.TrimSpace(g.Description),
		})
	}
	return groups, nil
}

// BuiltInGroups returns the groups shipped with the application.
func BuiltInGroups() ([]models.Group, error) {
	return ParseGroups(builtInGroups)
}

// Groups upserts the given fixture (the built-in one when raw is empty)
// and returns the stored groups.
func Groups(ctx context.Context, repo repository.GroupRepository, raw []byte) ([]models.Group, error) {
	if len(raw) == 0 {
		raw = builtInGroups
	}
	groups, err := ParseGroups(raw)
	if err != nil {
		return nil, err
	}
	if err := repo.Upsert(ctx, groups); err != nil {
		return nil, err
	}
	return repo.List(ctx)
}
