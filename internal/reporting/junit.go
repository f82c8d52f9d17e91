package reporting

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spboyer/hetsird/internal/models"
	"github.com/spboyer/hetsird/internal/sweep"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one sweep.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one scenario of a sweep.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a run that broke the conservation invariant.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents a run rejected before integration or one that failed
// for another reason.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a run cut short by cancellation.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertSweepToJUnit converts the outcomes of a sweep into JUnit XML
// format. Each scenario becomes a test case: a run that lost conservation is
// a failure, any other error is an error.
func ConvertSweepToJUnit(name string, outcomes []sweep.Outcome, started time.Time, elapsed time.Duration) *JUnitTestSuites {
	suite := JUnitTestSuite{
		Name:      name,
		Tests:     len(outcomes),
		Time:      elapsed.Seconds(),
		Timestamp: started.UTC().Format(time.RFC3339),
	}

	var method string
	for _, o := range outcomes {
		tc := convertOutcome(name, o)
		switch {
		case tc.Failure != nil:
			suite.Failures++
		case tc.Error != nil:
			suite.Errors++
		case tc.Skipped != nil:
			suite.Skipped++
		}
		if method == "" && o.Result != nil {
			method = o.Result.Trajectory.Info().Method
		}
		suite.TestCases = append(suite.TestCases, tc)
	}
	if method != "" {
		suite.Properties = append(suite.Properties, JUnitProperty{Name: "method", Value: method})
	}

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Errors:     suite.Errors,
		Time:       suite.Time,
		TestSuites: []JUnitTestSuite{suite},
	}
}

func convertOutcome(classname string, o sweep.Outcome) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      o.Scenario,
		Classname: classname,
	}
	if o.Result != nil {
		tc.Time = o.Result.Duration.Seconds()
	}

	if o.Err == nil {
		return tc
	}

	var instability *models.NumericalInstabilityError
	var cfgErr *models.ConfigurationError
	switch {
	case errors.Is(o.Err, context.Canceled), errors.Is(o.Err, context.DeadlineExceeded):
		tc.Skipped = &JUnitSkipped{Message: o.Err.Error()}
	case errors.As(o.Err, &instability):
		tc.Failure = &JUnitFailure{
			Message: o.Err.Error(),
			Type:    "NumericalInstability",
			Body:    fmt.Sprintf("step=%d time=%g total=%g expected=%g", instability.Step, instability.Time, instability.Total, instability.Expected),
		}
	case errors.As(o.Err, &cfgErr):
		tc.Error = &JUnitError{
			Message: o.Err.Error(),
			Type:    "ConfigurationError",
			Body:    cfgErr.Field,
		}
	default:
		tc.Error = &JUnitError{
			Message: o.Err.Error(),
			Type:    "ExecutionError",
		}
	}
	return tc
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(suites *JUnitTestSuites, path string) error {
	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
