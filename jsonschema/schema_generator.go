//go:build generate

// schema_generator renders the config JSON schema and example config files from config.Config.
// Run with: go run -tags generate ./jsonschema
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	iyaml "github.com/invopop/yaml"
	"github.com/mcuadros/go-defaults"

	"github.com/theopenlane/utils/envparse"

	"github.com/theopenlane/shieldphish/config"
)

const (
	tagName      = "koanf"
	skipper      = "-"
	defaultTag   = "default"
	sensitiveTag = "sensitive"
	varPrefix    = "SHIELDPHISH"
	modulePath   = "github.com/theopenlane/shieldphish/"
	fileMode     = 0o600
)

// output pairs a generated file with its renderer
type output struct {
	path   string
	render func(*config.Config) ([]byte, error)
}

func main() {
	cfg := &config.Config{}
	defaults.SetDefaults(cfg)

	outputs := []output{
		{path: "./jsonschema/shieldphish.config.json", render: renderSchema},
		{path: "./config/config.example.yaml", render: renderYAML},
		{path: "./config/.env.example", render: renderEnv},
	}

	for _, o := range outputs {
		data, err := o.render(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rendering %s: %v\n", o.path, err)
			os.Exit(1)
		}

		if err := os.WriteFile(o.path, data, fileMode); err != nil {
			fmt.Fprintf(os.Stderr, "writing %s: %v\n", o.path, err)
			os.Exit(1)
		}

		fmt.Printf("wrote %s\n", o.path)
	}
}

// renderSchema reflects the config struct, using Go doc comments from the config package as descriptions
func renderSchema(cfg *config.Config) ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
		FieldNameTag:               tagName,
	}

	if err := r.AddGoComments(modulePath, "./config"); err != nil {
		return nil, fmt.Errorf("parsing config comments: %w", err)
	}

	s := r.Reflect(cfg)
	s.Title = "shieldphish configuration"

	return json.MarshalIndent(s, "", "  ")
}

// renderYAML writes the defaults as YAML with durations in their string form and secrets left empty
func renderYAML(cfg *config.Config) ([]byte, error) {
	return iyaml.Marshal(toMap(reflect.ValueOf(cfg).Elem()))
}

func toMap(v reflect.Value) map[string]any {
	out := map[string]any{}
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)

		key := field.Tag.Get(tagName)
		if !field.IsExported() || key == "" || key == skipper {
			continue
		}

		fv := v.Field(i)

		switch {
		case field.Tag.Get(sensitiveTag) == "true":
			out[key] = ""
		case fv.Type() == reflect.TypeFor[time.Duration]():
			out[key] = time.Duration(fv.Int()).String()
		case fv.Kind() == reflect.Struct:
			out[key] = toMap(fv)
		default:
			out[key] = fv.Interface()
		}
	}

	return out
}

// renderEnv lists every SHIELDPHISH_ variable with its default
func renderEnv(cfg *config.Config) ([]byte, error) {
	cp := envparse.Config{
		FieldTagName: tagName,
		Skipper:      skipper,
	}

	vars, err := cp.GatherEnvInfo(varPrefix, cfg)
	if err != nil {
		return nil, fmt.Errorf("gathering env vars: %w", err)
	}

	var b strings.Builder

	for _, v := range vars {
		if v.Tags.Get(sensitiveTag) == "true" {
			fmt.Fprintf(&b, "# %s is sensitive and should be set securely\n%s=\"\"\n", v.Key, v.Key)
			continue
		}

		val := v.Tags.Get(defaultTag)
		if d, err := time.ParseDuration(val); err == nil && v.Type == reflect.TypeFor[time.Duration]() {
			val = d.String()
		}

		fmt.Fprintf(&b, "%s=%q\n", v.Key, val)
	}

	return []byte(b.String()), nil
}
