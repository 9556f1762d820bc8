package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/freekieb7/jsondoc/json"
)

// FromYAML converts a YAML document into a value tree. Mappings become
// objects and sequences become arrays; scalars keep their resolved YAML
// type. Aliases are expanded into independent copies. An empty document
// yields an empty object.
func FromYAML(data []byte) (*json.Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if node.Kind == 0 {
		return json.NewObject(), nil
	}
	return fromNode(&node, 0)
}

func fromNode(node *yaml.Node, depth int) (*json.Value, error) {
	if depth > json.DefaultMaxDepth {
		return nil, json.ErrTooDeep
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return json.NewObject(), nil
		}
		return fromNode(node.Content[0], depth)
	case yaml.AliasNode:
		return fromNode(node.Alias, depth+1)
	case yaml.MappingNode:
		obj := json.NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, valueNode := node.Content[i], node.Content[i+1]
			member, err := fromNode(valueNode, depth+1)
			if err != nil {
				obj.Release()
				return nil, err
			}
			if err := obj.Set(key.Value, member); err != nil {
				member.Release()
				obj.Release()
				return nil, err
			}
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := json.NewArray()
		for _, item := range node.Content {
			elem, err := fromNode(item, depth+1)
			if err != nil {
				arr.Release()
				return nil, err
			}
			if err := arr.Append(elem); err != nil {
				elem.Release()
				arr.Release()
				return nil, err
			}
		}
		return arr, nil
	case yaml.ScalarNode:
		return fromScalar(node)
	}

	return nil, fmt.Errorf("config: unsupported yaml node kind %d at line %d", node.Kind, node.Line)
}

func fromScalar(node *yaml.Node) (*json.Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return json.NewNull(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return json.NewBool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			return json.NewInt(i), nil
		}
		// out of int64 range
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		return json.NewDouble(f), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		return json.NewDouble(f), nil
	}
	return json.NewString(node.Value), nil
}
