package generation

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/tyler-sommer/stick"
)

//go:embed prompts/*.twig
var defaultTemplates embed.FS

// Template names every builder must provide.
const (
	SystemTemplate = "system"
	UserTemplate   = "user"
)

// Prompt is the rendered pair of messages sent for one segment.
type Prompt struct {
	System string
	User   string
}

// Prompter renders the prompt for a request.
type Prompter interface {
	Build(req Request) (Prompt, error)
}

// PromptBuilder renders twig templates for system and user messages.
type PromptBuilder struct {
	mu        sync.Mutex
	env       *stick.Env
	templates map[string]string
}

// PromptOption configures a PromptBuilder.
type PromptOption func(*PromptBuilder) error

// WithTemplateFS loads every *.twig file under dir, replacing built-in
// templates of the same name.
func WithTemplateFS(fsys fs.FS, dir string) PromptOption {
	return func(b *PromptBuilder) error {
		return fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(p, ".twig") {
				return nil
			}
			content, err := fs.ReadFile(fsys, p)
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			b.templates[strings.TrimSuffix(path.Base(p), ".twig")] = string(content)
			return nil
		})
	}
}

// WithTemplate sets a single template from a string.
func WithTemplate(name, tpl string) PromptOption {
	return func(b *PromptBuilder) error {
		b.templates[name] = tpl
		return nil
	}
}

// NewPromptBuilder returns a builder seeded with the embedded templates.
func NewPromptBuilder(opts ...PromptOption) (*PromptBuilder, error) {
	b := &PromptBuilder{
		env:       stick.New(nil),
		templates: make(map[string]string),
	}

	opts = append([]PromptOption{WithTemplateFS(defaultTemplates, "prompts")}, opts...)
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, fmt.Errorf("%w: loading prompt templates: %v", ErrInvalidConfig, err)
		}
	}

	for _, name := range []string{SystemTemplate, UserTemplate} {
		if strings.TrimSpace(b.templates[name]) == "" {
			return nil, fmt.Errorf("%w: prompt template %q is missing", ErrInvalidConfig, name)
		}
	}

	return b, nil
}

// Build renders the system and user messages for req.
func (b *PromptBuilder) Build(req Request) (Prompt, error) {
	existing := "[]"
	if req.Mode == ModeExtend && len(req.Existing) > 0 {
		raw, err := json.Marshal(req.Existing)
		if err != nil {
			return Prompt{}, fmt.Errorf("encoding existing units: %w", err)
		}
		existing = string(raw)
	}

	vars := map[string]stick.Value{
		"continuation": req.IsContinuation(),
		"position":     strconv.Itoa(req.Ordinal + 1),
		"total":        strconv.Itoa(req.Total),
		"extend":       req.Mode == ModeExtend,
		"segment":      req.Segment,
		"existing":     existing,
		"has_known":    len(req.Known) > 0,
		"known":        strings.Join(req.Known, ", "),
	}

	system, err := b.render(SystemTemplate, vars)
	if err != nil {
		return Prompt{}, err
	}
	user, err := b.render(UserTemplate, vars)
	if err != nil {
		return Prompt{}, err
	}

	return Prompt{System: strings.TrimSpace(system), User: strings.TrimSpace(user)}, nil
}

func (b *PromptBuilder) render(name string, vars map[string]stick.Value) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out strings.Builder
	if err := b.env.Execute(b.templates[name], &out, vars); err != nil {
		return "", fmt.Errorf("execute %q: %w", name, err)
	}
	return out.String(), nil
}
