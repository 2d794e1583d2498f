package compiler

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aibee/wizard/internal/dto"
	"github.com/aibee/wizard/internal/logging"
	"github.com/aibee/wizard/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a transition table source.
type Format string

const (
	// FormatLines is the line-oriented nine-field format.
	FormatLines Format = "lines"
	// FormatYAML is a document with a top-level "steps" list.
	FormatYAML Format = "yaml"
)

// FieldCount is the number of fields of a line-format record.
const FieldCount = 9

// nullToken marks an absent previous step, condition or next step.
const nullToken = "null"

// FormatFromPath infers the table format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatLines
}

// RowError describes a table record that was skipped.
type RowError struct {
	Line  int
	Field string
	Err   error
}

func (e *RowError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("line %d: field %s: %v", e.Line, e.Field, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ErrFieldCount is wrapped by RowError when a line does not have nine fields.
var ErrFieldCount = errors.New("wrong number of fields")

// Parser converts raw table sources into a domain.Table.
type Parser struct {
	logger *slog.Logger
}

// ParserOption configures the Parser.
type ParserOption func(*Parser)

// WithLogger reports skipped rows through logger.
func WithLogger(logger *slog.Logger) ParserOption {
	return func(p *Parser) {
		p.logger = logger
	}
}

// NewParser creates a new parser instance.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse decodes data in the given format. Malformed rows are skipped and
// returned as RowErrors; the error result is reserved for unreadable input.
func (p *Parser) Parse(data []byte, format Format) (*domain.Table, []*RowError, error) {
	switch format {
	case FormatYAML:
		return p.ParseYAML(data)
	case FormatLines, "":
		return p.ParseLines(data)
	}
	return nil, nil, fmt.Errorf("unknown table format %q", format)
}

// ParseLines decodes the line-oriented format: one step per non-blank line with
// fields name, previousStep, condition, questions, variables, promptActions,
// promptFields, variableActions, nextStep. Fields 4 to 8 are JSON arrays.
func (p *Parser) ParseLines(data []byte) (*domain.Table, []*RowError, error) {
	table := domain.NewTable()
	var rowErrs []*RowError

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		step, rowErr := parseRecord(line, lineNo)
		if rowErr != nil {
			p.logger.Warn("Skipping malformed table row", "line", lineNo, "field", rowErr.Field, "err", rowErr.Err)
			rowErrs = append(rowErrs, rowErr)
			continue
		}
		table.Add(step)
	}
	if err := scanner.Err(); err != nil {
		return nil, rowErrs, fmt.Errorf("failed to read table: %w", err)
	}

	p.logger.Debug("Parsed transition table", "steps", table.Len(), "skipped", len(rowErrs))
	return table, rowErrs, nil
}

var listFields = []string{"questions", "variables", "promptActions", "promptFields", "variableActions"}

func parseRecord(line string, lineNo int) (domain.Step, *RowError) {
	fields := SplitFields(line)
	if len(fields) != FieldCount {
		return domain.Step{}, &RowError{
			Line: lineNo,
			Err:  fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(fields), FieldCount),
		}
	}

	lists := make([][]string, len(listFields))
	for i, name := range listFields {
		var values []string
		if err := json.Unmarshal([]byte(strings.TrimSpace(fields[3+i])), &values); err != nil {
			return domain.Step{}, &RowError{Line: lineNo, Field: name, Err: err}
		}
		if values == nil {
			values = []string{}
		}
		lists[i] = values
	}

	return domain.Step{
		Name:            strings.TrimSpace(fields[0]),
		PreviousStep:    optional(fields[1]),
		Condition:       optional(fields[2]),
		Questions:       lists[0],
		Variables:       lists[1],
		PromptActions:   lists[2],
		PromptFields:    lists[3],
		VariableActions: lists[4],
		NextStep:        optional(fields[8]),
	}, nil
}

func optional(field string) string {
	field = strings.TrimSpace(field)
	if field == nullToken {
		return ""
	}
	return field
}

// SplitFields splits a record on commas that are outside bracketed array
// literals. Inside brackets, double-quoted strings are skipped so that
// brackets and commas in question text do not end the array.
func SplitFields(line string) []string {
	var (
		parts   []string
		current strings.Builder
		depth   int
		inStr   bool
		escaped bool
	)

	for _, r := range line {
		if inStr {
			current.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inStr = false
			}
			continue
		}

		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '"':
			if depth > 0 {
				inStr = true
			}
		case ',':
			if depth == 0 {
				parts = append(parts, current.String())
				current.Reset()
				continue
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// yamlTable is the root of a YAML transition table.
type yamlTable struct {
	Steps []yaml.Node `yaml:"steps"`
}

// ParseYAML decodes a YAML document with a top-level "steps" list. Each entry
// is decoded through mapstructure into dto.StepMetadata.
func (p *Parser) ParseYAML(data []byte) (*domain.Table, []*RowError, error) {
	var root yamlTable
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("failed to parse yaml table: %w", err)
	}

	table := domain.NewTable()
	var rowErrs []*RowError
	for i := range root.Steps {
		node := &root.Steps[i]

		var raw map[string]any
		if err := node.Decode(&raw); err != nil {
			rowErrs = append(rowErrs, &RowError{Line: node.Line, Err: err})
			continue
		}

		var meta dto.StepMetadata
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &meta,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			return nil, rowErrs, fmt.Errorf("failed to build decoder: %w", err)
		}
		if err := decoder.Decode(raw); err != nil {
			rowErrs = append(rowErrs, &RowError{Line: node.Line, Err: err})
			continue
		}
		if strings.TrimSpace(meta.Name) == "" {
			rowErrs = append(rowErrs, &RowError{Line: node.Line, Field: "name", Err: errors.New("step missing name")})
			continue
		}
		table.Add(meta.ToStep())
	}

	for _, rowErr := range rowErrs {
		p.logger.Warn("Skipping malformed table step", "line", rowErr.Line, "field", rowErr.Field, "err", rowErr.Err)
	}
	return table, rowErrs, nil
}

// ParseDefaults decodes the default-value side table: a JSON or YAML object
// mapping variable names to fragments. JSON key order is preserved.
func ParseDefaults(data []byte, format Format) (domain.Answers, error) {
	var root domain.Value
	switch format {
	case FormatYAML:
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse yaml defaults: %w", err)
		}
		root = domain.FromAny(raw)
	default:
		v, err := domain.ParseJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse json defaults: %w", err)
		}
		root = v
	}

	if root.Kind() != domain.KindMapping {
		return nil, fmt.Errorf("defaults must be an object, got %s", root.Kind())
	}
	defaults := make(domain.Answers, root.Len())
	for _, f := range root.Fields() {
		defaults[f.Key] = f.Value
	}
	return defaults, nil
}
