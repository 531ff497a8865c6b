// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// AcademicLevel is the degree the proposal is written for.
type AcademicLevel string

const (
	LevelBachelor  AcademicLevel = "本科"
	LevelMaster    AcademicLevel = "硕士"
	LevelDoctorate AcademicLevel = "博士"
)

// AcademicLevels lists the accepted levels in display order.
var AcademicLevels = []AcademicLevel{LevelBachelor, LevelMaster, LevelDoctorate}

var levelAliases = map[string]AcademicLevel{
	"undergraduate": LevelBachelor,
	"bachelor":      LevelBachelor,
	"master":        LevelMaster,
	"masters":       LevelMaster,
	"phd":           LevelDoctorate,
	"doctorate":     LevelDoctorate,
	"doctoral":      LevelDoctorate,
}

// ParseAcademicLevel accepts the canonical names or an English alias.
// An empty string yields the default level (master).
func ParseAcademicLevel(s string) (AcademicLevel, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LevelMaster, true
	}
	for _, l := range AcademicLevels {
		if string(l) == s {
			return l, true
		}
	}
	l, ok := levelAliases[strings.ToLower(s)]
	return l, ok
}

// Country is the country whose academic conventions the text follows.
type Country string

// Countries lists the accepted study countries. The first entry is the default.
var Countries = []Country{"中国", "美国", "英国", "澳大利亚", "加拿大", "日本", "欧洲"}

// ParseCountry validates s against Countries. An empty string yields the default.
func ParseCountry(s string) (Country, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Countries[0], true
	}
	for _, c := range Countries {
		if string(c) == s {
			return c, true
		}
	}
	return Country(s), false
}

// MaterialKind classifies a user-supplied material file. The numeric values
// match the business type codes used by upstream callers.
type MaterialKind int

const (
	MaterialProposal   MaterialKind = 1
	MaterialExperiment MaterialKind = 2
	MaterialPaper      MaterialKind = 4
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialProposal:
		return "proposal"
	case MaterialExperiment:
		return "experiment"
	case MaterialPaper:
		return "paper"
	default:
		return "unknown"
	}
}

// Material is the extracted text of one uploaded file.
type Material struct {
	Path    string       `json:"path" yaml:"path"`
	Kind    MaterialKind `json:"fileBizType" yaml:"kind"`
	Content string       `json:"content" yaml:"content"`
}

// ProposalRequest carries the inputs of one proposal generation run.
type ProposalRequest struct {
	Title         string        `json:"title" yaml:"title"`
	Details       string        `json:"details" yaml:"details"`
	AcademicLevel AcademicLevel `json:"academicLevel" yaml:"academic_level"`
	Country       Country       `json:"country" yaml:"country"`
	Materials     []Material    `json:"materials,omitempty" yaml:"materials,omitempty"`
}

// ProposalResult is the output of a proposal run, including the research
// gathered along the way.
type ProposalResult struct {
	Proposal         string         `json:"proposal" yaml:"proposal"`
	ExperimentDesign string         `json:"experiment_design" yaml:"experiment_design"`
	Keywords         []string       `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	PaperKeywords    [][]string     `json:"paper_keywords,omitempty" yaml:"paper_keywords,omitempty"`
	Research         []ScrapeRecord `json:"zhihu_research" yaml:"research"`
	Papers           []PaperRecord  `json:"arxiv_papers" yaml:"papers"`
}
