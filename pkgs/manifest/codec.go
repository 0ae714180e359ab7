package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the on-disk encoding of a manifest.
type Format int

const (
	JSON Format = iota
	YAML
)

func (f Format) String() string {
	if f == YAML {
		return "yaml"
	}
	return "json"
}

// FormatOf picks the format from the extension of file. Anything that is not
// a YAML extension is treated as JSON.
func FormatOf(file string) Format {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

type nodeKind int

const (
	scalarNode nodeKind = iota
	mappingNode
	sequenceNode
)

// node is a decoded document value, independent of the format it came from.
type node struct {
	kind   nodeKind
	line   int
	value  any // string, bool, number or nil for scalars
	fields []field
	items  []node
}

type field struct {
	key   string
	value node
}

func (n node) lookup(key string) (node, bool) {
	for _, f := range n.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return node{}, false
}

func decode(format Format, data []byte) (node, error) {
	if format == YAML {
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return node{}, err
		}
		if doc.Kind == 0 {
			return node{kind: mappingNode}, nil
		}
		return fromYAML(&doc)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return node{}, err
	}
	return fromJSON(v), nil
}

func fromJSON(v any) node {
	switch v := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		n := node{kind: mappingNode, fields: make([]field, 0, len(keys))}
		for _, k := range keys {
			n.fields = append(n.fields, field{key: k, value: fromJSON(v[k])})
		}
		return n
	case []any:
		n := node{kind: sequenceNode, items: make([]node, 0, len(v))}
		for _, item := range v {
			n.items = append(n.items, fromJSON(item))
		}
		return n
	default:
		return node{kind: scalarNode, value: v}
	}
}

func fromYAML(y *yaml.Node) (node, error) {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return node{kind: mappingNode, line: y.Line}, nil
		}
		return fromYAML(y.Content[0])
	case yaml.AliasNode:
		return fromYAML(y.Alias)
	case yaml.MappingNode:
		n := node{kind: mappingNode, line: y.Line}
		for i := 0; i+1 < len(y.Content); i += 2 {
			v, err := fromYAML(y.Content[i+1])
			if err != nil {
				return node{}, err
			}
			n.fields = append(n.fields, field{key: y.Content[i].Value, value: v})
		}
		return n, nil
	case yaml.SequenceNode:
		n := node{kind: sequenceNode, line: y.Line}
		for _, c := range y.Content {
			v, err := fromYAML(c)
			if err != nil {
				return node{}, err
			}
			n.items = append(n.items, v)
		}
		return n, nil
	default:
		var v any
		if err := y.Decode(&v); err != nil {
			return node{}, err
		}
		return node{kind: scalarNode, line: y.Line, value: v}, nil
	}
}

type packageDoc struct {
	Name    string   `json:"name" yaml:"name"`
	Authors []string `json:"authors" yaml:"authors"`
	Version string   `json:"version" yaml:"version"`
}

type profileDoc struct {
	Sanitizer *bool `json:"sanitizer,omitempty" yaml:"sanitizer,omitempty"`
	Coverage  *bool `json:"coverage,omitempty" yaml:"coverage,omitempty"`
}

type fileDoc struct {
	Package  packageDoc            `json:"package" yaml:"package"`
	Profiles map[string]profileDoc `json:"profiles,omitempty" yaml:"profiles,omitempty"`
}

const indent = 4

func encode(format Format, m *Manifest) ([]byte, error) {
	doc := fileDoc{
		Package: packageDoc{
			Name:    m.Package.Name,
			Authors: m.Package.Authors,
			Version: m.Package.Version.String(),
		},
	}
	if doc.Package.Authors == nil {
		doc.Package.Authors = []string{}
	}
	if len(m.Declared) > 0 {
		doc.Profiles = make(map[string]profileDoc, len(m.Declared))
		for name, p := range m.Declared {
			doc.Profiles[name] = profileDoc{Sanitizer: p.Sanitizer.ptr(), Coverage: p.Coverage.ptr()}
		}
	}

	if format == YAML {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(indent)
		if err := enc.Encode(&doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	data, err := json.MarshalIndent(&doc, "", strings.Repeat(" ", indent))
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}
