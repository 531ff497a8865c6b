// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package proposal

import (
	"bytes"
	"encoding/json"
	"strings"
	"text/template"
)

var searchKeywordsTmpl = template.Must(template.New("search_keywords").Parse(`
根据以下信息生成3个最适合在知乎搜索的关键词，用于收集相关技术资料：

论文标题：{{.Title}}
研究方案：{{.Details}}
学术层次：{{.Level}}

要求：
1. 关键词要精确指向研究主题
2. 避免过于宽泛的术语
3. 每个关键词不超过10个字

请只返回JSON格式的关键词列表：
["关键词1", "关键词2", "关键词3"]
`))

var paperKeywordsTmpl = template.Must(template.New("paper_keywords").Parse(`
根据以下信息生成2组英文关键词组合，用于在arXiv搜索相关论文：

论文标题：{{.Title}}
研究方案：{{.Details}}

要求：
1. 每组包含1-2个核心英文学术术语
2. 术语要精确且具有专业性
3. 能够定位到高度相关的研究文献

请只返回JSON格式：
[["keyword1", "keyword2"], ["keyword3", "keyword4"]]
`))

var polishProposalTmpl = template.Must(template.New("polish_proposal").Parse(`
请基于以下信息，对现有开题报告进行专业润色和完善：

学术背景：{{.Background}}
参考文献：{{.Papers}}
现有开题报告：{{.Existing}}

要求：
1. 保持原有核心思想和研究方向
2. 提升学术表达的专业性和严谨性
3. 根据{{.Level}}学位要求调整内容深度
4. 体现{{.Country}}学术规范
5. 输出完整的Markdown格式开题报告

请直接输出润色后的开题报告，无需解释过程。
`))

var draftProposalTmpl = template.Must(template.New("draft_proposal").Parse(`
请基于以下信息生成一份专业的学术开题报告：

学术背景：{{.Background}}
参考文献：{{.Papers}}
知乎技术资料：{{.Research}}

要求：
1. 符合{{.Level}}学位论文标准
2. 体现{{.Country}}学术规范和写作风格
3. 结构完整，包含研究背景、文献综述、研究目标、方法、预期成果等
4. 合理融入知乎技术内容中的实践见解
5. 输出Markdown格式

请直接输出完整的开题报告。
`))

var refineExperimentTmpl = template.Must(template.New("refine_experiment").Parse(`
请基于以下开题报告和现有实验设计，进行优化和完善：

开题报告：{{.Proposal}}
现有实验设计：{{.Existing}}

要求：
1. 确保实验设计与开题报告高度一致
2. 完善实验步骤和数据分析方法
3. 提高实验的可操作性和科学性
4. 输出Markdown格式

请直接输出优化后的实验设计。
`))

var draftExperimentTmpl = template.Must(template.New("draft_experiment").Parse(`
请基于以下开题报告生成详细的实验设计方案：

开题报告：{{.Proposal}}
知乎技术资料：{{.Research}}

要求：
1. 与开题报告的研究目标和方法完全对应
2. 包含具体的实验步骤、数据收集、分析方法
3. 考虑实验的可行性和可重复性
4. 融入实践经验和技术方案
5. 输出Markdown格式

请直接输出完整的实验设计方案。
`))

// promptData feeds every template; each template uses a subset.
type promptData struct {
	Title    string
	Details  string
	Level    string
	Country  string
	Proposal string

	// JSON-encoded context blocks.
	Background string
	Papers     string
	Research   string
	Existing   string
}

// background is the academic context block. Field order is the order shown
// to the model.
type background struct {
	Level   string `json:"学术层次"`
	Country string `json:"就读国家"`
	Title   string `json:"学位论文标题,omitempty"`
	Details string `json:"初步研究方案,omitempty"`
}

func render(t *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// toJSON encodes v for a prompt: non-ASCII and HTML characters are written
// as is, and indent selects pretty printing.
func toJSON(v any, indent bool) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "    ")
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
