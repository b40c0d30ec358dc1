package prompt

import (
	"regexp"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Variable names available to templates.
const (
	VarMaxTitleChars = "maxTitleChars"
	VarNoteSnippet   = "noteSnippet"
)

const (
	noteBegin = "----- BEGIN NOTE -----"
	noteEnd   = "----- END NOTE -----"
)

// DefaultSystemTemplate is used when no system template is configured.
const DefaultSystemTemplate = `You are a writing and organizing assistant.
Task: read the given note and produce a title that works well as its file name.
Rules: output only the title itself. No explanation, no quotes, no line breaks.`

// DefaultUserTemplate is used when no user template is configured.
const DefaultUserTemplate = `Generate a title:
- Output only the title text (no "Title:" prefix)
- Do not include quotes, angle quotes or backticks
- Do not include line breaks
- Prefer the main language of the note
- At most {{maxTitleChars}} characters
- Avoid characters that are illegal in file names: \ / : * ? " < > |
- Do not end with a period, colon or other closing punctuation

The note excerpt follows:
----- BEGIN NOTE -----
{{noteSnippet}}
----- END NOTE -----`

var placeholderRe = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// Templates holds the user-editable prompt templates. Empty or whitespace-only
// fields fall back to the defaults.
type Templates struct {
	System string
	User   string
}

// Render replaces every {{name}} placeholder with vars[name]. Placeholders
// naming unknown variables are left verbatim so templates written for newer
// variable sets still render. Substituted values are not rescanned.
func Render(tpl string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(tpl, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return m
	})
}

// Build renders the system and user messages for one note snippet. If the user
// template does not reference {{noteSnippet}} the snippet is appended in a
// delimited note block, so the model always receives the content to title.
func Build(snippet string, t Templates, maxTitleChars int) []openai.ChatCompletionMessage {
	system := t.System
	if strings.TrimSpace(system) == "" {
		system = DefaultSystemTemplate
	}
	user := t.User
	if strings.TrimSpace(user) == "" {
		user = DefaultUserTemplate
	}

	vars := map[string]string{
		VarMaxTitleChars: strconv.Itoa(maxTitleChars),
		VarNoteSnippet:   snippet,
	}
	renderedUser := Render(user, vars)
	if !strings.Contains(user, "{{"+VarNoteSnippet+"}}") {
		renderedUser += "\n\n" + noteBegin + "\n" + snippet + "\n" + noteEnd
	}

	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: Render(system, vars)},
		{Role: openai.ChatMessageRoleUser, Content: renderedUser},
	}
}
