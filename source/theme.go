package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"wbc/css"
	"wbc/style"
)

// ThemeStyleProvider supplies the theme level style input for asset
// aggregation.
type ThemeStyleProvider interface {
	GlobalStyles(ctx context.Context) (*style.GlobalStyleContext, error)
}

// FileThemeProvider reads the theme stylesheet and the theme.json settings
// file from disk. Both paths are optional, a missing path contributes
// nothing to the global style context.
type FileThemeProvider struct {
	stylesheetPath string
	variablesPath  string
	log            *zap.Logger
}

func NewFileThemeProvider(stylesheetPath, variablesPath string, log *zap.Logger) *FileThemeProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileThemeProvider{
		stylesheetPath: stylesheetPath,
		variablesPath:  variablesPath,
		log:            log.Named("theme"),
	}
}

func (p *FileThemeProvider) GlobalStyles(ctx context.Context) (*style.GlobalStyleContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gctx := &style.GlobalStyleContext{}

	if p.stylesheetPath != "" {
		data, err := os.ReadFile(p.stylesheetPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read theme stylesheet %s: %w", p.stylesheetPath, err)
		}
		gctx.BaseStylesheetText = string(data)
	}

	if p.variablesPath != "" {
		data, err := os.ReadFile(p.variablesPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read theme settings %s: %w", p.variablesPath, err)
		}
		vars, err := parseThemeVariables(data)
		if err != nil {
			return nil, fmt.Errorf("unable to parse theme settings %s: %w", p.variablesPath, err)
		}
		gctx.Variables = vars
		p.log.Debug("Loaded theme settings", zap.Int("variables", len(vars)))
	}
	return gctx, nil
}

// parseThemeVariables flattens the settings document into custom properties
// in declaration order. Nested mappings join their keys with a dash, so
//
//	color:
//	  primary: "#1a5276"
//
// becomes --color-primary. Order matters for overrides, which is why this
// decodes through yaml.Node instead of a map.
func parseThemeVariables(data []byte) ([]css.Variable, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("settings root is not a mapping")
	}

	var vars []css.Variable
	flattenVariables(root, "", &vars)
	return vars, nil
}

func flattenVariables(node *yaml.Node, prefix string, out *[]css.Variable) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		name := key.Value
		if prefix != "" {
			name = prefix + "-" + name
		}
		switch value.Kind {
		case yaml.MappingNode:
			flattenVariables(value, name, out)
		case yaml.ScalarNode:
			*out = append(*out, css.Variable{Name: name, Value: strings.TrimSpace(value.Value)})
		}
	}
}
