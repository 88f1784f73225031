package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/couchcryptid/station-qa-etl/internal/domain"
)

// DatetimeLayout is the minute-resolution format of start_datetime and end_datetime.
const DatetimeLayout = "2006-01-02 15:04"

// Settings mirrors the run settings YAML file.
type Settings struct {
	StartDatetime     string                      `yaml:"start_datetime" validate:"required"`
	EndDatetime       string                      `yaml:"end_datetime" validate:"required"`
	DataFile          string                      `yaml:"data_file" validate:"required"`
	OutputFilePath    string                      `yaml:"output_file_path"`
	WindHistogramBins int                         `yaml:"wind_histogram_bins" validate:"required_with=WindGraphName,gte=0"`
	WindGraphName     string                      `yaml:"wind_graph_name"`
	DuplicatePolicy   string                      `yaml:"duplicate_policy" validate:"omitempty,oneof=first last"`
	ReportXLSX        bool                        `yaml:"report_xlsx"`
	Variables         map[string]VariableSettings `yaml:"variable" validate:"required,dive"`
}

// VariableSettings holds one variable's block under `variable:`.
type VariableSettings struct {
	QA *QALimits `yaml:"qa" validate:"required"`
}

// QALimits is the inclusive valid range of a variable.
type QALimits struct {
	LowLimit  *float64 `yaml:"low_limit" validate:"required"`
	HighLimit *float64 `yaml:"high_limit" validate:"required"`
}

// Job is a validated, resolved run.
type Job struct {
	Start           time.Time
	End             time.Time
	DataFile        string
	OutputDir       string
	HistogramBins   int
	PlotFile        string // empty disables the plot
	DuplicatePolicy domain.DuplicatePolicy
	ReportXLSX      bool
	Limits          domain.Limits
}

// LoadSettings reads a settings YAML file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes settings YAML.
func ParseSettings(data []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &domain.ConfigError{Reason: "parse settings: " + err.Error()}
	}
	return &s, nil
}

// Resolve validates the settings and converts them to a Job. Every failure is
// a *domain.ConfigError.
func (s *Settings) Resolve() (*Job, error) {
	if err := newValidator().Struct(s); err != nil {
		return nil, validationError(err)
	}

	start, err := parseDatetime("start_datetime", s.StartDatetime)
	if err != nil {
		return nil, err
	}
	end, err := parseDatetime("end_datetime", s.EndDatetime)
	if err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, &domain.ConfigError{Field: "start_datetime", Reason: "start is after end_datetime"}
	}
	if start.Minute()%5 != 0 {
		return nil, &domain.ConfigError{Field: "start_datetime", Reason: "start is not on a 5-minute boundary"}
	}

	policy, err := domain.ParseDuplicatePolicy(s.DuplicatePolicy)
	if err != nil {
		return nil, err
	}

	limits := make(domain.Limits, len(domain.QAVariables))
	for _, v := range domain.QAVariables {
		vs, ok := s.Variables[string(v)]
		if !ok {
			continue
		}
		limits[v] = domain.Bounds{Low: *vs.QA.LowLimit, High: *vs.QA.HighLimit}
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}

	job := &Job{
		Start:           start,
		End:             end,
		DataFile:        s.DataFile,
		OutputDir:       s.OutputFilePath,
		HistogramBins:   s.WindHistogramBins,
		DuplicatePolicy: policy,
		ReportXLSX:      s.ReportXLSX,
		Limits:          limits,
	}
	if job.OutputDir == "" {
		job.OutputDir = "."
	}
	if s.WindGraphName != "" {
		job.PlotFile = s.WindGraphName
	}
	return job, nil
}

func parseDatetime(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	t, err := time.ParseInLocation(DatetimeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, &domain.ConfigError{
			Field:  field,
			Reason: fmt.Sprintf("%q is not in %q format", value, DatetimeLayout),
		}
	}
	return t, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError reports the first failed rule as a ConfigError.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &domain.ConfigError{Reason: err.Error()}
	}
	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "Settings.")
	reason := "failed " + fe.Tag()
	if fe.Param() != "" {
		reason += "=" + fe.Param()
	}
	return &domain.ConfigError{Field: field, Reason: reason}
}
