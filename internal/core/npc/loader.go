package npc

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config describes a tree in JSON or YAML. Nodes are referenced by name and
// every node may appear under exactly one parent.
type Config struct {
	Root  string                `json:"root" yaml:"root"`
	Nodes map[string]ConfigNode `json:"nodes" yaml:"nodes"`
}

type ConfigNode struct {
	Type     string         `json:"type" yaml:"type"`
	Children []string       `json:"children,omitempty" yaml:"children,omitempty"`
	Child    string         `json:"child,omitempty" yaml:"child,omitempty"`
	Params   Params         `json:"params,omitempty" yaml:"params,omitempty"`
	Scorers  []ConfigScorer `json:"scorers,omitempty" yaml:"scorers,omitempty"`
}

// ConfigScorer scores the utility child at the same index.
type ConfigScorer struct {
	Type   string `json:"type" yaml:"type"`
	Params Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// LoadJSON loads config from JSON reader.
func LoadJSON(r io.Reader) (*Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadYAML loads config from YAML reader.
func LoadYAML(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Build constructs the tree against binding b using reg for leaves and scorers.
func (c *Config) Build(reg *Registry, b Binding) (*Tree, error) {
	if c.Root == "" {
		return nil, fmt.Errorf("tree config has no root")
	}
	used := make(map[string]bool, len(c.Nodes))

	var buildNode func(name string) (Node, error)
	buildChildren := func(names []string) ([]Node, error) {
		children := make([]Node, 0, len(names))
		for _, chname := range names {
			ch, err := buildNode(chname)
			if err != nil {
				return nil, err
			}
			children = append(children, ch)
		}
		return children, nil
	}

	buildNode = func(name string) (Node, error) {
		if used[name] {
			return nil, fmt.Errorf("node %s has more than one parent", name)
		}
		used[name] = true
		nc, ok := c.Nodes[name]
		if !ok {
			return nil, fmt.Errorf("unknown node in config: %s", name)
		}

		var (
			n   Node
			err error
		)
		switch nc.Type {
		case "sequence", "selector", "parallel", "and", "or":
			var children []Node
			if children, err = buildChildren(nc.Children); err != nil {
				return nil, err
			}
			n = newComposite(nc.Type, children)
		case "negate":
			if nc.Child == "" || len(nc.Children) > 0 {
				return nil, fmt.Errorf("negate %s requires exactly one child", name)
			}
			var ch Node
			if ch, err = buildNode(nc.Child); err != nil {
				return nil, err
			}
			n = NewNegate(ch)
		case "utility":
			if len(nc.Scorers) != len(nc.Children) {
				return nil, fmt.Errorf("utility %s: %d children but %d scorers", name, len(nc.Children), len(nc.Scorers))
			}
			var children []Node
			if children, err = buildChildren(nc.Children); err != nil {
				return nil, err
			}
			u := NewUtility()
			for i, sc := range nc.Scorers {
				score, err := reg.NewScorer(sc.Type, b.Blackboard, sc.Params)
				if err != nil {
					return nil, fmt.Errorf("utility %s scorer %d: %w", name, i, err)
				}
				u.AddChoice(children[i], score)
			}
			n = u
		default:
			if n, err = reg.NewLeaf(nc.Type, b, nc.Params); err != nil {
				return nil, fmt.Errorf("node %s: %w", name, err)
			}
		}
		if s, ok := n.(interface{ SetName(string) }); ok {
			s.SetName(name)
		}
		return n, nil
	}

	root, err := buildNode(c.Root)
	if err != nil {
		return nil, err
	}
	return NewTree(root), nil
}

func newComposite(kind string, children []Node) Node {
	switch kind {
	case "sequence":
		return NewSequence(children...)
	case "selector":
		return NewSelector(children...)
	case "parallel":
		return NewParallel(children...)
	case "and":
		return NewAnd(children...)
	default:
		return NewOr(children...)
	}
}
