package parser

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/tsched/lib/model"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type yamlTransaction struct {
	ID string `yaml:"id"`
	Ts uint32 `yaml:"ts"`
}

type yamlSchedule struct {
	ID  string `yaml:"id"`
	Ops string `yaml:"ops"`
}

type yamlDocument struct {
	Items        []string          `yaml:"items"`
	Transactions []yamlTransaction `yaml:"transactions"`
	Schedules    []yamlSchedule    `yaml:"schedules"`
}

// ParseYAML parses a YAML document. Unknown keys are rejected.
func ParseYAML(data []byte) (*Input, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, "invalid yaml")
	}
	if len(root.Content) == 0 {
		return nil, newError(1, "input is empty")
	}

	var doc yamlDocument
	if err := decodeStrict(root.Content[0], &doc); err != nil {
		return nil, errors.Wrap(err, "invalid yaml document")
	}

	// line numbers of the schedules, for error messages
	scheduleLines := nodeLines(root.Content[0], "schedules")

	in := &Input{}
	for _, id := range doc.Items {
		if id = strings.TrimSpace(id); id != "" {
			in.DataItems = append(in.DataItems, id)
		}
	}
	if len(in.DataItems) == 0 {
		return nil, newError(keyLine(root.Content[0], "items"), "no data records found")
	}

	if len(doc.Transactions) == 0 {
		return nil, newError(keyLine(root.Content[0], "transactions"), "no transaction records found")
	}
	for _, tx := range doc.Transactions {
		id := strings.ToUpper(strings.TrimSpace(tx.ID))
		if id == "" {
			return nil, newError(keyLine(root.Content[0], "transactions"), "failed to parse transaction records: transaction without id")
		}
		in.Transactions = append(in.Transactions, model.Transaction{ID: id, Ts: tx.Ts})
	}

	for i, s := range doc.Schedules {
		line := 0
		if i < len(scheduleLines) {
			line = scheduleLines[i]
		}

		id := strings.TrimSpace(s.ID)
		if id == "" {
			return nil, newError(line, "invalid schedule plan format, schedule without id")
		}
		ops, err := ParseOperations(s.Ops)
		if err != nil {
			return nil, newError(line, "schedule %s: %v", id, err)
		}
		if len(ops) == 0 {
			return nil, newError(line, "no operations found in schedule plan %s", id)
		}
		in.Plans = append(in.Plans, model.SchedulePlan{ID: id, Operations: ops})
	}

	return in, nil
}

func decodeStrict(node *yaml.Node, v interface{}) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping at the document root", node.Line)
	}
	known := map[string]bool{"items": true, "transactions": true, "schedules": true}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if key := node.Content[i]; !known[key.Value] {
			return fmt.Errorf("line %d: unknown key %q", key.Line, key.Value)
		}
	}
	return node.Decode(v)
}

// keyLine returns the line of key in mapping node m, or m's own line if the key is missing.
func keyLine(m *yaml.Node, key string) int {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i].Line
		}
	}
	return m.Line
}

// nodeLines returns the lines of the elements of the sequence stored under key.
func nodeLines(m *yaml.Node, key string) []int {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value != key {
			continue
		}
		seq := m.Content[i+1]
		lines := make([]int, len(seq.Content))
		for j, n := range seq.Content {
			lines[j] = n.Line
		}
		return lines
	}
	return nil
}
