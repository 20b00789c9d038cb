// Package config loads the declarative mock server document into the
// immutable Servers → Configuration → Endpoint → Mapping tree.
package config

import (
	"github.com/dsaferreira/doppelganger-go/internal/expr"
)

// ConfigError identifies the malformed document or node that aborted
// startup. It is the same shape the expression builder uses, since an
// invalid expression node is itself a config error.
type ConfigError = expr.ConfigError

// ContentKind discriminates the two Content variants.
type ContentKind int

const (
	ContentJSON ContentKind = iota
	ContentFile
)

// Content is the tagged response body: either a literal JSON value or a
// file path to stream.
type Content struct {
	Kind     ContentKind
	JSONData any
	FilePath string
}

// Mapping is (params, resp_code, content): the unit of match-and-respond.
// Params is implicit AND — every expression must evaluate truthy.
type Mapping struct {
	Params  []expr.Expression
	Code    int
	Content *Content
}

// Endpoint binds a path/verb pair to its ordered mappings.
type Endpoint struct {
	Path     string
	Verb     string
	Mappings []Mapping
}

// Configuration is one virtual HTTP server: a port and its endpoints.
type Configuration struct {
	Port      int
	Endpoints []Endpoint
}

// Servers is the root document: an ordered, non-empty sequence of
// Configurations.
type Servers struct {
	Configurations []Configuration
}
