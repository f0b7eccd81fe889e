package ledger

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed template.yaml
var templateYAML []byte

type TemplateCategory struct {
	Code         string       `yaml:"code"`
	DisplayName  string       `yaml:"display_name"`
	Parent       string       `yaml:"parent"`
	Level        int          `yaml:"level"`
	SortOrder    int          `yaml:"sort_order"`
	CategoryType CategoryType `yaml:"category_type"`
}

type TemplateGlAccount struct {
	AccountNumber string `yaml:"account_number"`
	AccountName   string `yaml:"account_name"`
	CategoryCode  string `yaml:"category_code"`
}

// Template is the default chart of accounts.
type Template struct {
	Categories []TemplateCategory  `yaml:"categories"`
	GlAccounts []TemplateGlAccount `yaml:"gl_accounts"`
}

// DefaultTemplate parses the embedded template. Each call returns a fresh
// copy.
func DefaultTemplate() (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(templateYAML, &t); err != nil {
		return nil, fmt.Errorf("parse category template: %w", err)
	}
	return &t, nil
}

// CropRevenueCategories returns one revenue leaf per crop, coded
// rev_<snake_case name>.
func CropRevenueCategories(crops CropList) []TemplateCategory {
	lower := cases.Lower(language.English)
	title := cases.Title(language.English)

	out := make([]TemplateCategory, 0, len(crops))
	for i, crop := range crops {
		words := strings.Fields(crop.Name)
		if len(words) == 0 {
			continue
		}
		name := strings.Join(words, " ")
		out = append(out, TemplateCategory{
			Code:         "rev_" + lower.String(strings.Join(words, "_")),
			DisplayName:  title.String(name) + " Revenue",
			Parent:       "revenue",
			Level:        1,
			SortOrder:    10 + i,
			CategoryType: CategoryRevenue,
		})
	}
	return out
}

// WithCrops returns the template categories with crop revenue leaves inserted
// before rev_other_income. Revenue children are renumbered from 2.
func (t *Template) WithCrops(crops CropList) []TemplateCategory {
	cropCats := CropRevenueCategories(crops)
	all := make([]TemplateCategory, 0, len(t.Categories)+len(cropCats))
	inserted := false
	for _, c := range t.Categories {
		if c.Code == "rev_other_income" && !inserted {
			all = append(all, cropCats...)
			inserted = true
		}
		all = append(all, c)
	}
	if !inserted {
		all = append(all, cropCats...)
	}

	next := 2
	for i := range all {
		if all[i].Parent == "revenue" {
			all[i].SortOrder = next
			next++
		}
	}
	return all
}

// InitChartOfAccounts upserts the default categories, with crop revenue
// leaves, and creates the default GL accounts that do not exist yet. Running
// it again refreshes the template categories and leaves custom ones alone.
func (s *Service) InitChartOfAccounts(ctx context.Context, farmID uuid.UUID, crops CropList) ([]Category, error) {
	tmpl, err := DefaultTemplate()
	if err != nil {
		return nil, err
	}

	type placed struct {
		id   uuid.UUID
		path string
	}
	byCode := map[string]placed{}
	cats := tmpl.WithCrops(crops)

	// Roots first so children can resolve their parent.
	for _, root := range []bool{true, false} {
		for _, tc := range cats {
			if (tc.Parent == "") != root {
				continue
			}
			c := &Category{
				FarmID:       farmID,
				Code:         tc.Code,
				DisplayName:  tc.DisplayName,
				Path:         tc.Code,
				Level:        tc.Level,
				SortOrder:    tc.SortOrder,
				CategoryType: tc.CategoryType,
				IsActive:     true,
			}
			if !root {
				p, ok := byCode[tc.Parent]
				if !ok {
					continue
				}
				id := p.id
				c.ParentID = &id
				c.Path = p.path + "." + tc.Code
			}
			if err := s.store.UpsertCategory(ctx, c); err != nil {
				return nil, fmt.Errorf("upsert category %s: %w", tc.Code, err)
			}
			byCode[tc.Code] = placed{id: c.ID, path: c.Path}
		}
	}

	existing, err := s.store.GlAccounts(ctx, farmID)
	if err != nil {
		return nil, fmt.Errorf("load GL accounts: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, a := range existing {
		have[a.AccountNumber] = true
	}
	for _, tg := range tmpl.GlAccounts {
		if have[tg.AccountNumber] {
			continue
		}
		a := &GlAccount{
			FarmID:        farmID,
			AccountNumber: tg.AccountNumber,
			AccountName:   tg.AccountName,
			IsActive:      true,
		}
		if p, ok := byCode[tg.CategoryCode]; ok {
			id := p.id
			a.CategoryID = &id
		}
		if err := s.store.SaveGlAccount(ctx, a); err != nil {
			return nil, fmt.Errorf("save GL account %s: %w", tg.AccountNumber, err)
		}
	}

	return s.Categories(ctx, farmID)
}
