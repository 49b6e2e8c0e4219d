package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LabourKeywords is the fixed search term list of the labour section.
var LabourKeywords = []string{
	"不法侵害",
	"霸凌",
	"性騷擾",
	"主管",
	"歧視",
	"科技業",
	"外籍員工",
	"調解",
	"懷孕",
}

// LabourLimit caps the de-duplicated labour section.
const LabourLimit = 8

// Section describes one topic block of the digest. Exactly one of Query and
// Keywords is set.
type Section struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Query    string   `json:"query,omitempty" yaml:"query,omitempty"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Limit    int      `json:"limit" yaml:"limit"`
}

// Aggregated reports whether the section is built from a keyword list.
func (s Section) Aggregated() bool {
	return len(s.Keywords) > 0
}

type sectionsFile struct {
	Sections []Section `json:"sections" yaml:"sections"`
}

// DefaultSections returns the four digest sections in display order.
func DefaultSections() []Section {
	keywords := make([]string, len(LabourKeywords))
	copy(keywords, LabourKeywords)

	return []Section{
		{ID: "weather", Title: "🌤 天氣新聞", Query: "台灣 天氣", Limit: 5},
		{ID: "labour", Title: "👷‍♂️ 勞工議題", Keywords: keywords, Limit: LabourLimit},
		{ID: "ai", Title: "🤖 AI 工具 / 新技術", Query: "AI 工具 OR ChatGPT OR 人工智慧", Limit: 5},
		{ID: "stocks", Title: "📈 台股 / 美股動態", Query: "台股 OR 美股 OR 股市", Limit: 6},
	}
}

// ResolveSections returns the sections from path, or the defaults when path
// is empty.
func ResolveSections(path string) ([]Section, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultSections(), nil
	}
	return LoadSections(path)
}

// LoadSections reads section definitions from a YAML or JSON file. ${VAR}
// references are expanded from the environment before decoding.
func LoadSections(path string) ([]Section, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sections file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sections file: %w", err)
	}
	expanded := []byte(os.ExpandEnv(string(raw)))

	var file sectionsFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(expanded, &file); err != nil {
			return nil, fmt.Errorf("decode yaml sections: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(expanded, &file); err != nil {
			return nil, fmt.Errorf("decode json sections: %w", err)
		}
	default:
		return nil, fmt.Errorf("sections file format %q not recognized (expected YAML or JSON)", ext)
	}

	if len(file.Sections) == 0 {
		return nil, errors.New("sections file contains no sections")
	}

	seen := make(map[string]struct{}, len(file.Sections))
	out := make([]Section, 0, len(file.Sections))
	for i, s := range file.Sections {
		s = sanitizeSection(s)
		if err := validateSection(s); err != nil {
			return nil, fmt.Errorf("sections[%d]: %w", i, err)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("duplicate section id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

func sanitizeSection(s Section) Section {
	s.ID = strings.ToLower(strings.TrimSpace(s.ID))
	s.Title = strings.TrimSpace(s.Title)
	s.Query = strings.TrimSpace(s.Query)

	var kws []string
	for _, kw := range s.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			kws = append(kws, kw)
		}
	}
	s.Keywords = kws
	return s
}

func validateSection(s Section) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.Title == "" {
		return fmt.Errorf("title is required for section %q", s.ID)
	}
	if s.Query == "" && len(s.Keywords) == 0 {
		return fmt.Errorf("section %q needs a query or keywords", s.ID)
	}
	if s.Query != "" && len(s.Keywords) > 0 {
		return fmt.Errorf("section %q sets both query and keywords", s.ID)
	}
	if s.Limit <= 0 {
		return fmt.Errorf("limit must be positive for section %q", s.ID)
	}
	return nil
}
