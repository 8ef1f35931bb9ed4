package extension

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrInvalidReference is returned for references not shaped "package.module:Class".
var ErrInvalidReference = errors.New("invalid extension reference")

// Loader resolves a "package.module:Class" reference inside a project.
type Loader interface {
	Load(projectDir, ref string) (Class, error)
}

// SourceLoader loads classes by statically reading the project's Python
// sources. Nothing is executed: class bases, decorators and method signatures
// are read from the text, and literal decorator arguments are decoded.
type SourceLoader struct {
	modules map[string]*module
}

// NewSourceLoader returns a loader with an empty module cache.
func NewSourceLoader() *SourceLoader {
	return &SourceLoader{modules: make(map[string]*module)}
}

// Load implements Loader.
func (l *SourceLoader) Load(projectDir, ref string) (Class, error) {
	modName, className, ok := strings.Cut(ref, ":")
	if !ok || modName == "" || className == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	modName = strings.TrimSpace(modName)
	className = strings.TrimSpace(className)

	mod, err := l.module(projectDir, modName)
	if err != nil {
		return nil, err
	}
	cls, ok := mod.classes[className]
	if !ok {
		return nil, fmt.Errorf("module '%s' has no attribute '%s'", modName, className)
	}
	l.resolve(projectDir, cls, map[*sourceClass]bool{})
	cls.ref = ref
	return cls, nil
}

func (l *SourceLoader) module(projectDir, name string) (*module, error) {
	key := projectDir + "|" + name
	if m, ok := l.modules[key]; ok {
		return m, nil
	}

	base := filepath.Join(append([]string{projectDir}, strings.Split(name, ".")...)...)
	var path string
	for _, candidate := range []string{base + ".py", filepath.Join(base, "__init__.py")} {
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
			break
		}
	}
	if path == "" {
		return nil, fmt.Errorf("no module named '%s'", name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading module %s: %w", path, err)
	}
	m, err := parseModule(path, name, string(data))
	if err != nil {
		return nil, err
	}
	l.modules[key] = m
	return m, nil
}

// resolve computes the SDK families of cls, following bases defined in the
// same module or imported from other modules of the project.
func (l *SourceLoader) resolve(projectDir string, cls *sourceClass, seen map[*sourceClass]bool) {
	if cls.resolved || seen[cls] {
		return
	}
	seen[cls] = true

	families := map[Family]bool{}
	for _, base := range cls.bases {
		name := base
		if i := strings.LastIndex(base, "."); i >= 0 {
			name = base[i+1:]
		}
		if f, ok := isFamily(name); ok {
			families[f] = true
			continue
		}

		parent := l.lookupBase(projectDir, cls.mod, name)
		if parent == nil {
			continue
		}
		l.resolve(projectDir, parent, seen)
		for _, f := range parent.families {
			families[f] = true
		}
	}

	for _, f := range []Family{FamilyExtension, FamilyEventsExtension, FamilyWebApp, FamilyAnvil} {
		if families[f] {
			cls.families = append(cls.families, f)
		}
	}
	cls.resolved = true
}

func (l *SourceLoader) lookupBase(projectDir string, mod *module, name string) *sourceClass {
	if c, ok := mod.classes[name]; ok {
		return c
	}
	from, ok := mod.importedFrom[name]
	if !ok || strings.HasPrefix(from, ".") {
		return nil
	}
	other, err := l.module(projectDir, from)
	if err != nil {
		// Bases imported from installed packages are outside the project.
		return nil
	}
	return other.classes[name]
}

type module struct {
	name         string
	src          Source
	classes      map[string]*sourceClass
	names        []string
	importedFrom map[string]string
	// constants maps module-level names to the source of the literal last
	// assigned to them.
	constants map[string]string
}

type sourceClass struct {
	mod          *module
	ref          string
	name         string
	bases        []string
	decorators   []Decorator
	methods      []Method
	events       []Event
	schedulables []Schedulable
	variables    []Variable
	hasVariables bool
	variablesErr error
	families     []Family
	resolved     bool
	src          Source
}

func (c *sourceClass) Name() string { return c.name }
func (c *sourceClass) Ref() string { return c.ref }
func (c *sourceClass) File() string { return c.src.File }
func (c *sourceClass) Families() []Family { return c.families }
func (c *sourceClass) Methods() []Method { return c.methods }
func (c *sourceClass) Events() []Event { return c.events }
func (c *sourceClass) Schedulables() []Schedulable { return c.schedulables }
func (c *sourceClass) ModuleNames() []string { return c.mod.names }
func (c *sourceClass) Source() Source { return c.src }
func (c *sourceClass) ModuleSource() Source { return c.mod.src }

func (c *sourceClass) Variables() ([]Variable, bool) {
	return c.variables, c.hasVariables
}

func (c *sourceClass) VariablesErr() error { return c.variablesErr }

func (c *sourceClass) Method(name string) (Method, bool) {
	for _, m := range c.methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

var (
	classDef   = regexp.MustCompile(`(?s)^class\s+([A-Za-z_][A-Za-z0-9_]*)\s*(?:\((.*)\))?\s*:`)
	funcDef    = regexp.MustCompile(`(?s)^(?:async\s+)?def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\((.*)\)\s*(?:->.*)?:`)
	fromImport = regexp.MustCompile(`(?s)^from\s+([A-Za-z_.][A-Za-z0-9_.]*)\s+import\s+(.+)$`)
	assignment = regexp.MustCompile(`(?s)^([A-Za-z_][A-Za-z0-9_]*)\s*(?::[^=]*)?=([^=].*)$`)
)

// parseModule scans the top level of a module for imports and classes.
func parseModule(path, name, text string) (*module, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	mod := &module{
		name:         name,
		src:          Source{File: path, Lines: lines, Start: 1, End: len(lines)},
		classes:      make(map[string]*sourceClass),
		importedFrom: make(map[string]string),
		constants:    make(map[string]string),
	}

	var pending []Decorator
	for i := 0; i < len(lines); {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || indentOf(line) > 0 {
			i = skipString(lines, i)
			continue
		}

		logical, next := logicalLine(lines, i)
		switch {
		case strings.HasPrefix(trimmed, "@"):
			pending = append(pending, newDecorator(logical, i+1))
		case classDef.MatchString(logical):
			m := classDef.FindStringSubmatch(logical)
			end := blockEnd(lines, next, 0)
			cls := &sourceClass{
				mod:        mod,
				name:       m[1],
				bases:      splitBases(m[2]),
				decorators: pending,
				src:        Source{File: path, Lines: lines, Start: i + 1, End: end},
			}
			if len(pending) > 0 {
				cls.src.Start = pending[0].Line
			}
			if err := cls.parseBody(lines, next, end); err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, i+1, err)
			}
			mod.classes[cls.name] = cls
			mod.names = append(mod.names, cls.name)
			pending = nil
			next = end
		case fromImport.MatchString(logical):
			m := fromImport.FindStringSubmatch(logical)
			for _, imported := range importedNames(m[2]) {
				mod.importedFrom[imported] = m[1]
				mod.names = append(mod.names, imported)
			}
			pending = nil
		case assignment.MatchString(logical):
			m := assignment.FindStringSubmatch(logical)
			mod.constants[m[1]] = strings.TrimSpace(m[2])
			pending = nil
		default:
			pending = nil
		}
		i = next
	}
	return mod, nil
}

// parseBody reads methods and decorator declarations from lines [from, end).
func (c *sourceClass) parseBody(lines []string, from, end int) error {
	c.applyClassDecorators()

	bodyIndent := -1
	var pending []Decorator
	for i := from; i < end; {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			i++
			continue
		}
		indent := indentOf(line)
		if bodyIndent < 0 {
			bodyIndent = indent
		}
		if indent != bodyIndent {
			i = skipString(lines, i)
			continue
		}

		logical, next := logicalLine(lines, i)
		switch {
		case strings.HasPrefix(trimmed, "@"):
			pending = append(pending, newDecorator(strings.TrimSpace(logical), i+1))
			i = next
			continue
		case funcDef.MatchString(strings.TrimSpace(logical)):
			m := funcDef.FindStringSubmatch(strings.TrimSpace(logical))
			methodEnd := min(blockEnd(lines, next, bodyIndent), end)
			start := i + 1
			if len(pending) > 0 {
				start = pending[0].Line
			}
			method := Method{
				Name:       m[1],
				Params:     paramNames(m[2]),
				Decorators: pending,
				Source:     Source{File: c.src.File, Lines: lines, Start: start, End: methodEnd},
			}
			if err := c.applyMethodDecorators(method); err != nil {
				return err
			}
			c.methods = append(c.methods, method)
			next = methodEnd
		default:
			next = skipString(lines, i)
			if next == i+1 {
				next = max(next, logicalEnd(lines, i))
			}
		}
		pending = nil
		i = next
	}
	return nil
}

// applyClassDecorators reads the @variables declaration. A declaration that
// cannot be read statically is recorded in variablesErr rather than failing
// the load.
func (c *sourceClass) applyClassDecorators() {
	for _, d := range c.decorators {
		if d.Name != "variables" {
			continue
		}
		args := parseCallArgs(d.Args)
		raw, ok := args.arg(0, "variables")
		if !ok {
			continue
		}
		c.hasVariables = true
		v, err := decodeLiteral(raw, c.mod.constants)
		if err != nil {
			c.variablesErr = fmt.Errorf("@variables at line %d: %w", d.Line, err)
			continue
		}
		items, ok := v.([]any)
		if !ok {
			c.variablesErr = fmt.Errorf("@variables at line %d must be given a list, got %s", d.Line, TypeName(v))
			continue
		}
		for _, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				entry = map[string]any{}
			}
			c.variables = append(c.variables, Variable(entry))
		}
	}
}

func (c *sourceClass) applyMethodDecorators(m Method) error {
	for _, d := range m.Decorators {
		args := parseCallArgs(d.Args)
		switch d.Name {
		case "event":
			ev := Event{Method: m.Name}
			raw, ok := args.arg(0, "event_type")
			if !ok {
				return fmt.Errorf("@event at line %d has no event type", d.Line)
			}
			eventType, err := decodeString(raw, c.mod.constants)
			if err != nil {
				return fmt.Errorf("cannot evaluate @event at line %d: %w", d.Line, err)
			}
			ev.EventType = eventType
			if raw, ok := args.arg(1, "statuses"); ok {
				statuses, err := decodeStrings(raw, c.mod.constants)
				if err != nil {
					return fmt.Errorf("cannot evaluate @event statuses at line %d: %w", d.Line, err)
				}
				ev.Statuses = statuses
			}
			c.events = append(c.events, ev)
		case "schedulable":
			s := Schedulable{Method: m.Name}
			if raw, ok := args.arg(0, "name"); ok {
				s.Name, _ = decodeString(raw, c.mod.constants)
			}
			if raw, ok := args.arg(1, "description"); ok {
				s.Description, _ = decodeString(raw, c.mod.constants)
			}
			c.schedulables = append(c.schedulables, s)
		}
	}
	return nil
}

func newDecorator(text string, line int) Decorator {
	body := strings.TrimPrefix(strings.TrimSpace(text), "@")
	d := Decorator{Name: body, Text: strings.TrimSpace(text), Line: line}
	if open := strings.Index(body, "("); open >= 0 {
		d.Name = strings.TrimSpace(body[:open])
		if close := strings.LastIndex(body, ")"); close > open {
			d.Args = body[open+1 : close]
		}
	}
	return d
}

func splitBases(raw string) []string {
	var bases []string
	for _, part := range splitTopLevel(raw, ',') {
		part = strings.TrimSpace(part)
		if part == "" || strings.Contains(part, "=") {
			continue
		}
		bases = append(bases, part)
	}
	return bases
}

func importedNames(raw string) []string {
	raw = strings.Trim(strings.TrimSpace(raw), "()")
	var names []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || part == "*" {
			continue
		}
		if _, alias, ok := strings.Cut(part, " as "); ok {
			part = strings.TrimSpace(alias)
		}
		names = append(names, part)
	}
	return names
}

// paramNames returns the parameter names of a def, dropping annotations,
// defaults, star prefixes and the bare "*" and "/" markers.
func paramNames(raw string) []string {
	var names []string
	for _, part := range splitTopLevel(raw, ',') {
		part = strings.TrimSpace(part)
		if part == "" || part == "*" || part == "/" {
			continue
		}
		if i := strings.IndexAny(part, ":="); i >= 0 {
			part = part[:i]
		}
		names = append(names, strings.TrimLeft(strings.TrimSpace(part), "*"))
	}
	return names
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

// logicalLine joins physical lines starting at i until brackets balance.
// It returns the joined text and the index of the following line.
func logicalLine(lines []string, i int) (string, int) {
	end := logicalEnd(lines, i)
	return strings.Join(lines[i:end], "\n"), end
}

func logicalEnd(lines []string, i int) int {
	depth := 0
	var quote byte
	for j := i; j < len(lines); j++ {
		line := lines[j]
		for k := 0; k < len(line); k++ {
			ch := line[k]
			if quote != 0 {
				if ch == '\\' {
					k++
				} else if ch == quote {
					quote = 0
				}
				continue
			}
			switch ch {
			case '#':
				k = len(line)
			case '\'', '"':
				quote = ch
			case '(', '[', '{':
				depth++
			case ')', ']', '}':
				depth--
			}
		}
		quote = 0
		if depth <= 0 && !strings.HasSuffix(strings.TrimRight(line, " \t"), "\\") {
			return j + 1
		}
	}
	return len(lines)
}

// blockEnd returns the index of the first non-blank line after from whose
// indentation is at most indent.
func blockEnd(lines []string, from, indent int) int {
	for j := from; j < len(lines); {
		trimmed := strings.TrimSpace(lines[j])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			j++
			continue
		}
		if indentOf(lines[j]) <= indent {
			return j
		}
		j = skipString(lines, j)
	}
	return len(lines)
}

// skipString steps over line i and, when it opens a triple-quoted string,
// every line up to the one closing it.
func skipString(lines []string, i int) int {
	for _, delim := range []string{`"""`, `'''`} {
		if strings.Count(lines[i], delim)%2 == 0 {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			if strings.Contains(lines[j], delim) {
				return j + 1
			}
		}
		return len(lines)
	}
	return i + 1
}
