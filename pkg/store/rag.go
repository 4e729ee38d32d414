package store

import (
	"fmt"
	"strings"
	"sync"
)

// Section kinds. The upstream RAG payload is heterogeneous (string or list
// per section); each section keeps its original shape as a tagged value so
// updates stay shape-preserving.
const (
	SectionText = "text"
	SectionList = "list"
)

// SectionValue is the typed value of one RAG section.
type SectionValue struct {
	Kind string   `json:"kind"`
	Text string   `json:"text,omitempty"`
	List []string `json:"list,omitempty"`
}

// Display renders the value for the UI: lists joined with ", ".
func (v SectionValue) Display() string {
	if v.Kind == SectionList {
		return strings.Join(v.List, ", ")
	}
	return v.Text
}

// RagData holds the generated sections of the active file set.
type RagData struct {
	mu       sync.Mutex
	sections map[string]SectionValue
}

func NewRagData() *RagData {
	return &RagData{sections: map[string]SectionValue{}}
}

// SetAll replaces every section from a raw upstream payload. Strings stay
// text, arrays become lists with each element coerced to string, nil becomes
// empty text, anything else is coerced with fmt.Sprint.
func (r *RagData) SetAll(raw map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections = make(map[string]SectionValue, len(raw))
	for k, v := range raw {
		r.sections[k] = normalize(v)
	}
}

func normalize(v any) SectionValue {
	switch val := v.(type) {
	case nil:
		return SectionValue{Kind: SectionText}
	case string:
		return SectionValue{Kind: SectionText, Text: val}
	case []string:
		return SectionValue{Kind: SectionList, List: val}
	case []any:
		list := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				list = append(list, s)
			} else {
				list = append(list, fmt.Sprint(item))
			}
		}
		return SectionValue{Kind: SectionList, List: list}
	default:
		return SectionValue{Kind: SectionText, Text: fmt.Sprint(val)}
	}
}

// UpdateSection replaces a section's content with edited text, preserving
// the section's shape: text stays text, a list becomes a single-element list
// holding the new text. Unknown sections are created as text, which makes
// the operation total.
func (r *RagData) UpdateSection(section, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.sections[section]
	if ok && prev.Kind == SectionList {
		r.sections[section] = SectionValue{Kind: SectionList, List: []string{text}}
		return
	}
	r.sections[section] = SectionValue{Kind: SectionText, Text: text}
}

// Section returns the typed value and whether the section exists.
func (r *RagData) Section(name string) (SectionValue, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.sections[name]
	return v, ok
}

// Display returns the rendered string for one section; empty when unknown.
func (r *RagData) Display(name string) string {
	v, _ := r.Section(name)
	return v.Display()
}

// DisplayAll returns the rendered view of every section.
func (r *RagData) DisplayAll() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.sections))
	for k, v := range r.sections {
		out[k] = v.Display()
	}
	return out
}

// Sections returns a copy of the typed section map.
func (r *RagData) Sections() map[string]SectionValue {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]SectionValue, len(r.sections))
	for k, v := range r.sections {
		out[k] = v
	}
	return out
}

func (r *RagData) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections = map[string]SectionValue{}
}
