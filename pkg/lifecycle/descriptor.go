package lifecycle

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/utils"
)

// algorithmNames maps estimator type names onto the repository's
// algorithm vocabulary. Unknown type names pass through as they are.
var algorithmNames = map[string]string{
	"LogisticRegression":         "Logistic regression",
	"LinearRegression":           "Linear regression",
	"SVC":                        "Support vector machine",
	"GradientBoostingClassifier": "Gradient boosting",
	"GradientBoostingRegressor":  "Gradient boosting",
	"XGBClassifier":              "Gradient boosting",
	"XGBRegressor":               "Gradient boosting",
	"RandomForestClassifier":     "Forest",
	"DecisionTreeClassifier":     "Decision tree",
	"DecisionTreeRegressor":      "Decision tree",
}

// taskFunctions maps estimator task types onto model functions.
// Unknown task types pass through as they are.
var taskFunctions = map[string]string{
	"classifier": models.FunctionClassification,
	"regressor":  models.FunctionPrediction,
}

// describeEstimator derives the repository descriptor of an estimator:
// algorithm and function in repository vocabulary, the target level
// where the estimator's nature gives it away, and hyperparameters as
// properties.
//
// A preprocessing chain is described by its final estimator.
func describeEstimator(name string, e Estimator) models.Model {
	if p, ok := e.(PipelineEstimator); ok {
		if final := p.FinalEstimator(); final != nil {
			e = final
		}
	}

	typeName := e.TypeName()

	algorithm := typeName
	if mapped, ok := algorithmNames[typeName]; ok {
		algorithm = mapped
	}

	function := e.EstimatorType()
	if mapped, ok := taskFunctions[function]; ok {
		function = mapped
	}

	return models.Model{
		Name:          name,
		Description:   models.TruncateDescription(estimatorString(typeName, e.Params())),
		Function:      function,
		Algorithm:     algorithm,
		TargetLevel:   targetLevelOf(function, algorithm, typeName),
		Tool:          "Go " + strings.TrimPrefix(runtime.Version(), "go"),
		ScoreCodeType: models.ScoreCodeTypeMultiType,
		TrainCodeType: "Go",
		Properties:    hyperparameters(e.Params()),
	}
}

// targetLevelOf tells the target level where it can be read off the
// estimator, and leaves it unset where it cannot.
func targetLevelOf(function string, algorithm string, typeName string) string {
	switch function {
	case models.FunctionClassification:
		if strings.Contains(strings.ToLower(algorithm), "logistic") {
			return models.TargetLevelBinary
		}
	case models.FunctionPrediction:
		if strings.Contains(strings.ToLower(typeName), "regressor") ||
			strings.Contains(strings.ToLower(algorithm), "regression") {
			return models.TargetLevelInterval
		}
	}
	return ""
}

// outputVariablesFor declares the score columns a published model of
// the function emits. The event probability leads the classification
// outputs: projects read their probability variable off the first one.
func outputVariablesFor(function string) []models.Variable {
	switch function {
	case models.FunctionClassification:
		return []models.Variable{
			{
				Name: "EM_EVENTPROBABILITY", Role: models.VariableRoleOutput,
				Type: models.VariableTypeDecimal, Level: "interval",
			},
			{
				Name: "EM_CLASSIFICATION", Role: models.VariableRoleOutput,
				Type: models.VariableTypeString, Level: "nominal", Length: 32,
			},
		}
	case models.FunctionPrediction:
		return []models.Variable{
			{
				Name: "EM_PREDICTION", Role: models.VariableRoleOutput,
				Type: models.VariableTypeDecimal, Level: "interval",
			},
		}
	}
	return nil
}

func hyperparameters(params map[string]any) []models.Property {
	return utils.Map(
		sortedKeys(params),
		func(k string) models.Property {
			return models.NewProperty(k, fmt.Sprint(params[k]))
		},
	)
}

// estimatorString renders an estimator the way its constructor call
// would read, for the model description.
func estimatorString(typeName string, params map[string]any) string {
	args := utils.Map(
		sortedKeys(params),
		func(k string) string { return fmt.Sprintf("%s=%v", k, params[k]) },
	)
	return fmt.Sprintf("%s(%s)", typeName, strings.Join(args, ", "))
}

func sortedKeys[T any](m map[string]T) []string {
	return utils.Sorted(
		utils.KeysOf(m),
		func(a, b string) bool { return a < b },
	)
}
