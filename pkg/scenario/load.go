package scenario

import (
	"bytes"
	stderrors "errors"
	"io"

	"gopkg.in/yaml.v3"

	"exotic/pkg/errors"
	"exotic/pkg/source"
)

// Load reads every scenario document of a YAML file.
func Load(path string) ([]*Scenario, error) {
	sf, err := source.Read(path)
	if err != nil {
		return nil, err
	}
	return ParseSource(sf)
}

// ParseSource decodes the scenarios of sf, positioning errors at its display path.
func ParseSource(sf *source.SourceFile) ([]*Scenario, error) {
	return Parse(sf.DisplayPath(), []byte(sf.Content))
}

// Parse decodes the scenario documents in data. Decode and validation failures
// are *errors.ScenarioError values positioned in file.
func Parse(file string, data []byte) ([]*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var scenarios []*Scenario
	names := make(map[string]errors.Position)

	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.NewScenarioError(errors.Position{File: file, Line: 1, Column: 1}, "malformed YAML: %v", err).CausedBy(err)
		}
		if len(doc.Content) == 0 {
			continue
		}
		root := doc.Content[0]

		s := &Scenario{Pos: posOf(root)}
		s.Pos.File = file
		if err := root.Decode(s); err != nil {
			return nil, positioned(file, root, err)
		}
		if s.Name == "" {
			return nil, errors.NewScenarioError(s.Pos, "scenario has no name")
		}
		if prev, dup := names[s.Name]; dup {
			return nil, errors.NewScenarioError(s.Pos, "duplicate scenario %q (first defined at %s)", s.Name, prev)
		}
		if s.Operation.Kind == "" {
			return nil, errors.NewScenarioError(s.Pos, "scenario %q has no operation", s.Name)
		}
		names[s.Name] = s.Pos
		scenarios = append(scenarios, s)
	}
	if len(scenarios) == 0 {
		return nil, errors.NewScenarioError(errors.Position{File: file, Line: 1, Column: 1}, "no scenarios")
	}
	return scenarios, nil
}

// positioned stamps the file on a ScenarioError raised while decoding, or turns
// a yaml type error into one at the document root.
func positioned(file string, root *yaml.Node, err error) error {
	var se *errors.ScenarioError
	if stderrors.As(err, &se) {
		se.File = file
		return se
	}
	pos := posOf(root)
	pos.File = file
	return errors.NewScenarioError(pos, "%v", err).CausedBy(err)
}
