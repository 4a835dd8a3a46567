// Package scorecode generates platform-native score code from a
// model's declared variables.
//
// Three variants are produced: a module script for the micro-analytic
// service, an execution variant for the compute grid, and a plain Go
// wrapper calling the published module over REST.
package scorecode

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/utils"
)

// ErrNoVariables tells that the model declares no input or no output
// variables, so no score code can be derived for it.
var ErrNoVariables = errors.New("model declares no input/output variables")

// Code bundles the generated variants.
type Code struct {
	// Module is the micro-analytic service module script.
	Module string

	// Grid is the compute-grid execution variant.
	Grid string

	// Wrapper is a Go client snippet calling the published module.
	Wrapper string
}

// Generate derives the score-code variants from the model's declared
// input/output variables.
//
// A model without variables fails with ErrNoVariables; callers decide
// whether that is fatal for them.
func Generate(model models.Model) (*Code, error) {
	if len(model.InputVariables) == 0 || len(model.OutputVariables) == 0 {
		return nil, fmt.Errorf("%w: model %q", ErrNoVariables, model.Name)
	}

	data := templateData{
		ModuleName: ModuleName(model.Name),
		ModelFile:  "model.bin",
		Inputs:     utils.Map(model.InputVariables, newParam),
		Outputs:    utils.Map(model.OutputVariables, newParam),
	}

	module, err := render(moduleTemplate, data)
	if err != nil {
		return nil, err
	}
	grid, err := render(gridTemplate, data)
	if err != nil {
		return nil, err
	}
	wrapper, err := render(wrapperTemplate, data)
	if err != nil {
		return nil, err
	}

	return &Code{Module: module, Grid: grid, Wrapper: wrapper}, nil
}

// ModuleName derives a module name from a model name: lower case,
// anything but letters, digits and underscores folded to underscores.
func ModuleName(modelName string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case 'a' <= r && r <= 'z', '0' <= r && r <= '9', r == '_':
			return r
		case 'A' <= r && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, modelName)

	if mapped == "" || '0' <= mapped[0] && mapped[0] <= '9' {
		mapped = "m_" + mapped
	}
	return mapped
}

type param struct {
	Name string
	Type string
}

func newParam(v models.Variable) param {
	return param{Name: v.Name, Type: scriptType(v.Type)}
}

// scriptType maps variable types onto the scoring runtime's types.
func scriptType(variableType string) string {
	switch variableType {
	case models.VariableTypeDecimal:
		return "double"
	case models.VariableTypeInteger:
		return "bigint"
	default:
		return "varchar"
	}
}

type templateData struct {
	ModuleName string
	ModelFile  string
	Inputs     []param
	Outputs    []param
}

func render(t *template.Template, data templateData) (string, error) {
	sb := new(strings.Builder)
	if err := t.Execute(sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func mustParse(name string, text string) *template.Template {
	return template.Must(
		template.New(name).Funcs(template.FuncMap{
			"params": func(ps []param) string {
				decls := utils.Map(ps, func(p param) string {
					return p.Name + " " + p.Type
				})
				return strings.Join(decls, ", ")
			},
			"names": func(ps []param) string {
				names := utils.Map(ps, func(p param) string { return p.Name })
				return strings.Join(names, ", ")
			},
		}).Parse(text),
	)
}

var moduleTemplate = mustParse("module", `module {{.ModuleName}};

load model "{{.ModelFile}}" as scorer;

step score({{params .Inputs}}) returns ({{params .Outputs}}):
    {{names .Outputs}} = scorer.apply({{names .Inputs}});
end;
`)

var gridTemplate = mustParse("grid", `grid module {{.ModuleName}};
option partition = byrow;

load model "{{.ModelFile}}" as scorer;

step score({{params .Inputs}}) returns ({{params .Outputs}}):
    {{names .Outputs}} = scorer.apply({{names .Inputs}});
end;
`)

var wrapperTemplate = mustParse("wrapper", `package main

// Calls the published module "{{.ModuleName}}" over REST.
//
// Inputs:  {{names .Inputs}}
// Outputs: {{names .Outputs}}

import (
	"context"
	"fmt"

	"github.com/modelmill/modelmill/pkg/rest"
)

func score(ctx context.Context, mas rest.MAS, inputs map[string]any) (map[string]any, error) {
	outputs, err := mas.ExecuteStep(ctx, "{{.ModuleName}}", "score", inputs)
	if err != nil {
		return nil, fmt.Errorf("score against {{.ModuleName}}: %w", err)
	}
	return outputs, nil
}
`)
