package leaderboard

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SeedTools is the known-tools list used when nothing has been persisted yet.
var SeedTools = []string{
	"GPT-4o",
	"GPT-4",
	"o1",
	"Claude 3.5 Sonnet",
	"Claude 3 Opus",
	"Gemini 1.5 Pro",
	"Gemini Ultra",
	"Llama 3",
	"Mistral Large",
	"Mixtral 8x7B",
	"Command R+",
	"Grok",
	"Perplexity",
	"GitHub Copilot",
	"Cursor",
	"DeepSeek Coder",
	"Qwen 2",
	"Phi-3",
	"Midjourney",
	"DALL-E 3",
	"Stable Diffusion",
}

// toolSet keeps insertion order; membership is exact and case-sensitive.
type toolSet struct {
	names []string
	index map[string]struct{}
}

func newToolSet(names []string) *toolSet {
	ts := &toolSet{index: make(map[string]struct{}, len(names))}
	for _, n := range names {
		ts.add(n)
	}
	return ts
}

func (ts *toolSet) has(name string) bool {
	_, ok := ts.index[name]
	return ok
}

// add appends name unless it is empty or already present. It reports whether the set grew.
func (ts *toolSet) add(name string) bool {
	if name == "" || ts.has(name) {
		return false
	}
	ts.index[name] = struct{}{}
	ts.names = append(ts.names, name)
	return true
}

func (ts *toolSet) list() []string {
	return slices.Clone(ts.names)
}

// SortTools returns a collated, sorted copy of names.
func SortTools(names []string) []string {
	out := slices.Clone(names)
	c := collate.New(language.English)
	slices.SortStableFunc(out, c.CompareString)
	return out
}
