package config

import (
	"fmt"

	"github.com/dsaferreira/doppelganger-go/internal/expr"
)

// parseServers dispatches on the document's top-level shape: either
// {"servers": [...]} (preferred; an empty list is rejected) or a bare
// Configuration object treated as a one-element list.
func parseServers(doc map[string]any) (Servers, error) {
	if rawServers, ok := doc["servers"]; ok {
		arr, ok := rawServers.([]any)
		if !ok {
			return Servers{}, &ConfigError{Path: "servers", Err: fmt.Errorf("must be an array")}
		}
		if len(arr) == 0 {
			return Servers{}, &ConfigError{Path: "servers", Err: fmt.Errorf("No server found")}
		}
		configs := make([]Configuration, len(arr))
		for i, rawCfg := range arr {
			cfgMap, ok := rawCfg.(map[string]any)
			if !ok {
				return Servers{}, &ConfigError{Path: fmt.Sprintf("servers[%d]", i), Err: fmt.Errorf("must be an object")}
			}
			cfg, err := parseConfiguration(cfgMap, fmt.Sprintf("servers[%d]", i))
			if err != nil {
				return Servers{}, err
			}
			configs[i] = cfg
		}
		return Servers{Configurations: configs}, nil
	}
	cfg, err := parseConfiguration(doc, "servers[0]")
	if err != nil {
		return Servers{}, err
	}
	return Servers{Configurations: []Configuration{cfg}}, nil
}

func parseConfiguration(doc map[string]any, path string) (Configuration, error) {
	port := 8000
	if raw, ok := doc["port"]; ok {
		p, err := asInt(raw)
		if err != nil {
			return Configuration{}, &ConfigError{Path: path + ".port", Err: err}
		}
		port = p
	}

	var endpoints []Endpoint
	if raw, ok := doc["endpoint"]; ok {
		arr, ok := raw.([]any)
		if !ok {
			return Configuration{}, &ConfigError{Path: path + ".endpoint", Err: fmt.Errorf("must be an array")}
		}
		endpoints = make([]Endpoint, len(arr))
		for i, rawEp := range arr {
			epMap, ok := rawEp.(map[string]any)
			if !ok {
				return Configuration{}, &ConfigError{Path: fmt.Sprintf("%s.endpoint[%d]", path, i), Err: fmt.Errorf("must be an object")}
			}
			ep, err := parseEndpoint(epMap, fmt.Sprintf("%s.endpoint[%d]", path, i))
			if err != nil {
				return Configuration{}, err
			}
			endpoints[i] = ep
		}
	}

	return Configuration{Port: port, Endpoints: endpoints}, nil
}

func parseEndpoint(doc map[string]any, path string) (Endpoint, error) {
	epPath := "/"
	if raw, ok := doc["path"]; ok {
		s, ok := raw.(string)
		if !ok {
			return Endpoint{}, &ConfigError{Path: path + ".path", Err: fmt.Errorf("must be a string")}
		}
		epPath = s
	}
	if len(epPath) == 0 || epPath[0] != '/' {
		epPath = "/" + epPath
	}

	verb := "GET"
	if raw, ok := doc["verb"]; ok {
		s, ok := raw.(string)
		if !ok {
			return Endpoint{}, &ConfigError{Path: path + ".verb", Err: fmt.Errorf("must be a string")}
		}
		verb = s
	}

	var mappings []Mapping
	if raw, ok := doc["mappings"]; ok {
		arr, ok := raw.([]any)
		if !ok {
			return Endpoint{}, &ConfigError{Path: path + ".mappings", Err: fmt.Errorf("must be an array")}
		}
		mappings = make([]Mapping, len(arr))
		for i, rawMapping := range arr {
			mMap, ok := rawMapping.(map[string]any)
			if !ok {
				return Endpoint{}, &ConfigError{Path: fmt.Sprintf("%s.mappings[%d]", path, i), Err: fmt.Errorf("must be an object")}
			}
			m, err := parseMapping(mMap, fmt.Sprintf("%s.mappings[%d]", path, i))
			if err != nil {
				return Endpoint{}, err
			}
			mappings[i] = m
		}
	}

	return Endpoint{Path: epPath, Verb: verb, Mappings: mappings}, nil
}

func parseMapping(doc map[string]any, path string) (Mapping, error) {
	var params []expr.Expression
	if raw, ok := doc["params"]; ok {
		arr, ok := raw.([]any)
		if !ok {
			return Mapping{}, &ConfigError{Path: path + ".params", Err: fmt.Errorf("must be an array")}
		}
		params = make([]expr.Expression, len(arr))
		for i, rawParam := range arr {
			node, err := expr.Build(rawParam, fmt.Sprintf("%s.params[%d]", path, i))
			if err != nil {
				return Mapping{}, err
			}
			if node.ReturnType() != expr.ReturnBool {
				return Mapping{}, &ConfigError{
					Path: fmt.Sprintf("%s.params[%d]", path, i),
					Err:  fmt.Errorf("params must evaluate to bool, got %s", node.ReturnType()),
				}
			}
			params[i] = node
		}
	}

	var content *Content
	if raw, ok := doc["content"]; ok && raw != nil {
		c, err := parseContent(raw, path+".content")
		if err != nil {
			return Mapping{}, err
		}
		content = c
	}

	code := 200
	if content == nil {
		code = 204
	}
	if raw, ok := doc["code"]; ok {
		c, err := asInt(raw)
		if err != nil {
			return Mapping{}, &ConfigError{Path: path + ".code", Err: err}
		}
		code = c
	}

	return Mapping{Params: params, Code: code, Content: content}, nil
}

func parseContent(raw any, path string) (*Content, error) {
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("must be an object")}
	}
	typeName, _ := doc["type"].(string)
	switch typeName {
	case "FILE":
		dataMap, _ := doc["data"].(map[string]any)
		filePath, _ := dataMap["path"].(string)
		if filePath == "" {
			return nil, &ConfigError{Path: path + ".data.path", Err: fmt.Errorf("required")}
		}
		return &Content{Kind: ContentFile, FilePath: filePath}, nil
	case "JSON", "":
		return &Content{Kind: ContentJSON, JSONData: doc["data"]}, nil
	default:
		return nil, &ConfigError{Path: path + ".type", Err: fmt.Errorf("unknown content type %q", typeName)}
	}
}

// asInt accepts the float64 encoding/json produces for JSON numbers as well
// as int, so callers that feed already-typed Go values (tests) work too.
func asInt(raw any) (int, error) {
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("must be a number, got %T", raw)
	}
}
