package task

import (
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"birdsong-lab/schema"
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-yaml"
)

const keyTodoList = "todo_list"

// Description is one raw task: a mapping from key to value, prior to validation.
type Description map[string]domain.Value

func (d Description) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d Description) Clone() Description {
	cp := make(Description, len(d))
	for k, v := range d {
		cp[k] = v
	}
	return cp
}

// Document is a parsed task file. Each phase section expands into its todo items.
type Document struct {
	sections map[domain.Phase][]Description
	source   string
}

// Source is the file the document was loaded from, empty when parsed from bytes.
func (d Document) Source() string {
	return d.source
}

func (d Document) Tasks(phase domain.Phase) []Description {
	return d.sections[phase]
}

// Phases returns the sections present in the document, in pipeline order.
func (d Document) Phases() []domain.Phase {
	var out []domain.Phase
	for _, p := range domain.Phases() {
		if _, ok := d.sections[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", errors.ErrTaskDocument, err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	doc.source = path
	return doc, nil
}

// ParseDocument reads a YAML (or JSON) task file. Keys of a section other than
// todo_list are shared by every todo item that does not set them.
func ParseDocument(data []byte) (Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: %v", errors.ErrTaskDocument, err)
	}
	if len(raw) == 0 {
		return Document{}, fmt.Errorf("%w: empty document", errors.ErrTaskDocument)
	}

	doc := Document{sections: make(map[domain.Phase][]Description)}
	for name, section := range raw {
		phase := domain.Phase(name)
		if !schema.IsKnownPhase(phase) {
			return Document{}, fmt.Errorf("%w: unknown section %q", errors.ErrTaskDocument, name)
		}
		value, err := domain.FromAny(section)
		if err != nil {
			return Document{}, fmt.Errorf("%w: section %s: %v", errors.ErrTaskDocument, name, err)
		}
		fields, ok := value.Map()
		if !ok {
			return Document{}, fmt.Errorf("%w: section %s must be a mapping", errors.ErrTaskDocument, name)
		}
		tasks, err := expandSection(name, fields)
		if err != nil {
			return Document{}, err
		}
		doc.sections[phase] = tasks
	}
	return doc, nil
}

func expandSection(name string, fields map[string]domain.Value) ([]Description, error) {
	shared := Description{}
	for k, v := range fields {
		if k != keyTodoList {
			shared[k] = v
		}
	}

	todo, ok := fields[keyTodoList]
	if !ok {
		return []Description{shared}, nil
	}
	items, ok := todo.List()
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s must be a list", errors.ErrTaskDocument, name, keyTodoList)
	}

	tasks := make([]Description, 0, len(items))
	for i, item := range items {
		m, ok := item.Map()
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s[%d] must be a mapping", errors.ErrTaskDocument, name, keyTodoList, i)
		}
		desc := Description(m)
		for k, v := range shared {
			if _, set := desc[k]; !set {
				desc[k] = v
			}
		}
		tasks = append(tasks, desc)
	}
	return tasks, nil
}
