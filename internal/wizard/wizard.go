// Package wizard builds scenario files interactively.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spboyer/hetsird/internal/integrator"
	"github.com/spboyer/hetsird/internal/models"
	"github.com/spboyer/hetsird/internal/rates"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Answers holds the raw text collected by the wizard.
type Answers struct {
	Name       string
	Population string
	Infectious string
	Beta       string
	Gamma      string
	Theta      string
	Delta      string
	// Subgroups is a semicolon-separated list of subgroup specs, each in
	// the form accepted by models.ParseSubgroupSpec.
	Subgroups string
	Horizon   string
	Step      string
	Method    string
}

// DefaultAnswers are the values the form starts from: a population of 1000
// with a single infectious case and a plain SIR epidemic.
func DefaultAnswers(name string) Answers {
	return Answers{
		Name:       name,
		Population: "1000",
		Infectious: "1",
		Beta:       "0.3",
		Gamma:      "0.1",
		Theta:      "0",
		Delta:      "0",
		Horizon:    "100",
		Step:       "0.1",
		Method:     string(integrator.DefaultMethod),
	}
}

// RunScenarioWizard runs an interactive huh form to collect a scenario.
// If initialName is non-empty, it pre-populates the name field.
func RunScenarioWizard(in io.Reader, out io.Writer, initialName string) (*models.Scenario, error) {
	a := DefaultAnswers(initialName)

	methodOptions := make([]huh.Option[string], 0, len(integrator.Methods()))
	for _, m := range integrator.Methods() {
		methodOptions = append(methodOptions, huh.NewOption(string(m), string(m)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Scenario name").
				Placeholder("baseline").
				Value(&a.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("scenario name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Population").
				Description("Total number of individuals N").
				Value(&a.Population).
				Validate(nonNegative),
			huh.NewInput().
				Title("Initially infectious").
				Value(&a.Infectious).
				Validate(nonNegative),
		),
		huh.NewGroup(
			huh.NewInput().Title("Infection rate β").Value(&a.Beta).Validate(nonNegative),
			huh.NewInput().Title("Recovery rate γ").Value(&a.Gamma).Validate(nonNegative),
			huh.NewInput().Title("Death rate θ").Value(&a.Theta).Validate(nonNegative),
			huh.NewInput().Title("Relapse rate δ").Value(&a.Delta).Validate(nonNegative),
			huh.NewInput().
				Title("Subgroups").
				Description("Optional, separated by ';', e.g. name=elderly,share=0.2,death_factor=3").
				Value(&a.Subgroups).
				Validate(func(s string) error {
					_, err := parseSubgroups(s)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewInput().Title("Time horizon").Value(&a.Horizon).Validate(positive),
			huh.NewInput().Title("Output step").Value(&a.Step).Validate(positive),
			huh.NewSelect[string]().
				Title("Integration method").
				Options(methodOptions...).
				Value(&a.Method),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}
	return BuildScenario(a)
}

// BuildScenario converts wizard answers into a validated scenario. Everyone
// not initially infectious starts susceptible.
func BuildScenario(a Answers) (*models.Scenario, error) {
	var (
		sc   models.Scenario
		errs []error
	)
	num := func(field, s string) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			errs = append(errs, models.Configf(field, "%q is not a number", s))
		}
		return v
	}

	sc.Name = strings.TrimSpace(a.Name)
	sc.Population = num("population", a.Population)
	infectious := num("initial.infectious", a.Infectious)
	sc.Rates = models.RateSet{
		Beta:  num("rates.beta", a.Beta),
		Gamma: num("rates.gamma", a.Gamma),
		Theta: num("rates.theta", a.Theta),
		Delta: num("rates.delta", a.Delta),
	}
	sc.Time = models.TimeConfig{Horizon: num("time.horizon", a.Horizon), Step: num("time.step", a.Step)}
	if len(errs) > 0 {
		return nil, errs[0]
	}

	if infectious > sc.Population {
		return nil, models.Configf("initial.infectious", "%g exceeds population %g", infectious, sc.Population)
	}
	sc.Initial = models.CompartmentState{S: sc.Population - infectious, I: infectious}

	method, err := integrator.ParseMethod(a.Method)
	if err != nil {
		return nil, models.Configf("solver.method", "%v", err)
	}
	if method != integrator.DefaultMethod {
		sc.Solver.Method = string(method)
	}

	if sc.Subgroups, err = parseSubgroups(a.Subgroups); err != nil {
		return nil, err
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	subgroups := sc.SubgroupList()
	if err := rates.Validate(sc.Rates, rates.ReferenceShare(subgroups), subgroups); err != nil {
		return nil, err
	}
	return &sc, nil
}

// RenderScenarioYAML renders sc as a scenario file.
func RenderScenarioYAML(sc *models.Scenario) (string, error) {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return "", fmt.Errorf("failed to render scenario: %w", err)
	}
	return string(data), nil
}

func parseSubgroups(s string) ([]models.SubgroupSpec, error) {
	var out []models.SubgroupSpec
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		g, err := models.ParseSubgroupSpec(part)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func nonNegative(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("%q is not a number", s)
	}
	if v < 0 {
		return fmt.Errorf("must be >= 0")
	}
	return nil
}

func positive(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("%q is not a number", s)
	}
	if v <= 0 {
		return fmt.Errorf("must be > 0")
	}
	return nil
}
