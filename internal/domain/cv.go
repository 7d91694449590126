package domain

import (
	"bytes"
	"encoding/json"
	"sort"
)

// CVAnalysis is the analyzer's output, keyed by section name. It is kept as raw
// JSON because the plan generator expects it back verbatim.
type CVAnalysis json.RawMessage

func (c CVAnalysis) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return []byte("null"), nil
	}
	return []byte(c), nil
}

func (c *CVAnalysis) UnmarshalJSON(data []byte) error {
	*c = append((*c)[:0], data...)
	return nil
}

// Empty reports whether the analysis carries no sections.
func (c CVAnalysis) Empty() bool {
	trimmed := bytes.TrimSpace(c)
	return len(trimmed) == 0 ||
		bytes.Equal(trimmed, []byte("null")) ||
		bytes.Equal(trimmed, []byte("{}"))
}

// CVSummary is the typed view of the sections the client knows how to render.
type CVSummary struct {
	BasicInfo  CVBasicInfo     `json:"basic information"`
	Education  []CVEducation   `json:"education"`
	Experience []CVExperience  `json:"experience"`
	Skill      CVSkill         `json:"skill"`
	Summary    json.RawMessage `json:"summary"`
	CareerPath json.RawMessage `json:"career path"`
}

type CVBasicInfo struct {
	Name    string `json:"Name"`
	Phone   string `json:"Phone"`
	Email   string `json:"Email"`
	Address string `json:"Address"`
}

type CVEducation struct {
	School      string `json:"School"`
	Certificate string `json:"Certificate"`
	Year        string `json:"Year"`
}

type CVExperience struct {
	Company string   `json:"Company"`
	Period  string   `json:"Period"`
	Role    []string `json:"Role"`
}

type CVSkill struct {
	Technical []string `json:"technical skills"`
	Soft      []string `json:"soft skills"`
}

// Summary decodes the known sections. Sections with an unexpected shape are
// left empty rather than failing the whole analysis.
func (c CVAnalysis) Summary() CVSummary {
	var out CVSummary
	if c.Empty() {
		return out
	}
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(c, &sections); err != nil {
		return out
	}
	_ = json.Unmarshal(sections["basic information"], &out.BasicInfo)
	_ = json.Unmarshal(sections["education"], &out.Education)
	_ = json.Unmarshal(sections["experience"], &out.Experience)
	_ = json.Unmarshal(sections["skill"], &out.Skill)
	out.Summary = sections["summary"]
	out.CareerPath = sections["career path"]
	return out
}

// TextLines flattens a free-form section (string, list of strings, or object)
// into display lines.
func TextLines(raw json.RawMessage) []string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		lines := make([]string, 0, len(obj))
		for _, k := range sortedKeys(obj) {
			b, _ := json.Marshal(obj[k])
			v := string(b)
			if str, ok := obj[k].(string); ok {
				v = str
			}
			lines = append(lines, k+": "+v)
		}
		return lines
	}
	return []string{string(raw)}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
