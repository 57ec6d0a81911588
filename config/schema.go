package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
	platformerrors "github.com/jmgilman/gitver/errors"
)

//go:embed schema.cue
var schemaSource []byte

// ValidateFile checks the contents of a YAML config file against the config
// schema. An empty file is valid.
func ValidateFile(filename string, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	cctx := cuecontext.New()
	schema := cctx.CompileBytes(schemaSource, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return platformerrors.Wrap(err, platformerrors.CodeInternal, "config schema is invalid")
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return platformerrors.Wrapf(err, platformerrors.CodeInvalidConfig, "config file %q is not valid YAML", filename)
	}

	value := cctx.BuildFile(file)
	if err := value.Err(); err != nil {
		return platformerrors.Wrapf(err, platformerrors.CodeInvalidConfig, "config file %q cannot be read", filename)
	}

	if err := schema.Unify(value).Validate(cue.Concrete(true), cue.All()); err != nil {
		return platformerrors.Newf(platformerrors.CodeInvalidConfig,
			"config file %q is invalid: %s", filename, describeIssues(err))
	}

	return nil
}

// describeIssues renders every CUE error as "path: message".
func describeIssues(err error) string {
	var issues []string
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)

		// Paths start at the #Config definition.
		path := e.Path()
		if len(path) > 0 && path[0] == "#Config" {
			path = path[1:]
		}
		if len(path) > 0 {
			msg = strings.Join(path, ".") + ": " + msg
		}
		issues = append(issues, msg)
	}
	return strings.Join(issues, "; ")
}
