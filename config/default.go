package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/playsync/playsync/color"
	"github.com/playsync/playsync/constant"
	"github.com/playsync/playsync/key"
	"github.com/playsync/playsync/style"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string

	validate func(any) error
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	return strings.ToUpper(constant.Playsync + "_" + EnvKeyReplacer.Replace(f.Key))
}

// Parse converts raw command-line values into the type of the field default and validates the result.
func (f *Field) Parse(raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: no value given", f.Key)
	}

	var (
		value any
		err   error
	)

	switch f.Value.(type) {
	case string:
		value = raw[0]
	case int:
		value, err = strconv.Atoi(raw[0])
	case float64:
		value, err = strconv.ParseFloat(raw[0], 64)
	case bool:
		value, err = strconv.ParseBool(raw[0])
	case []string:
		value = raw
	default:
		return nil, fmt.Errorf("%s: unsupported type %s", f.Key, f.typeName())
	}

	if err != nil {
		return nil, fmt.Errorf("%s: invalid %s value %q", f.Key, f.typeName(), raw[0])
	}

	if f.validate != nil {
		if err := f.validate(value); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Key, err)
		}
	}

	return value, nil
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

var errNotPositive = errors.New("must be greater than zero")

func positive(v any) error {
	switch n := v.(type) {
	case int:
		if n <= 0 {
			return errNotPositive
		}
	case float64:
		if n <= 0 {
			return errNotPositive
		}
	}
	return nil
}

func oneOf(options ...string) func(any) error {
	return func(v any) error {
		if !lo.Contains(options, v.(string)) {
			return fmt.Errorf("expected one of %s", strings.Join(options, ", "))
		}
		return nil
	}
}

func init() {
	register := func(k string, v any, desc string, validate ...func(any) error) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc, validate: lo.FirstOrEmpty(validate)}
		EnvExposed = append(EnvExposed, k)
	}

	levels := lo.Map(logrus.AllLevels, func(l logrus.Level, _ int) string { return l.String() })

	register(key.EngineScrubWindowMs, 250, "Length of the scrub audio window in milliseconds.\nRapid scrub seeks inside one window collapse into a single audio push", positive)
	register(key.EngineFrameRate, constant.DefaultFrameRate, "Frame rate used before the active canvas reports its own", positive)
	register(key.EngineChecked, false, "Treat precondition violations as fatal instead of logging them")
	register(key.MediaFpsTolerance, 1.0, "Maximum difference between the declared frame rate and frames/duration\nbefore the frame rate is recomputed from the media length", positive)
	register(key.MediaProbeCacheHours, 48, "How long probed media information is cached, in hours.\nZero keeps entries forever")
	register(key.AudioSampleRate, constant.DefaultSampleRate, "Sample rate of the reference audio backend", positive)
	register(key.AudioTapSize, 4096, "Number of samples kept by the audio level tap", positive)
	register(key.PreviewDefaultMedia, "", "Media file opened by the preview when --media is not given")
	register(key.PreviewShowHelp, true, "Show key bindings under the preview")
	register(key.PreviewFrames, 120, "Document length, in frames, of the preview canvas", positive)
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)",
		oneOf("emoji", "kaomoji", "plain", "squares", "nerd"))
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\n"+strings.Join(levels, ", "), oneOf(levels...))
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
