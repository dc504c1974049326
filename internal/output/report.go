package output

import (
	"fmt"
	"io"

	"github.com/chis/uptag/internal/image"
	"github.com/chis/uptag/internal/report"
	"github.com/chis/uptag/internal/update"
)

// UpdateJSON is an image with a newer tag.
type UpdateJSON struct {
	Image   string `json:"image"`
	Tag     string `json:"tag"`
	Version string `json:"version"`
}

// FailureJSON is an image that could not be checked completely.
type FailureJSON struct {
	Image string `json:"image"`
	Error string `json:"error"`
}

// ImageReportJSON is the JSON form of an image report.
type ImageReportJSON struct {
	NoUpdates         []string      `json:"no_updates"`
	CompatibleUpdates []UpdateJSON  `json:"compatible_updates"`
	BreakingUpdates   []UpdateJSON  `json:"breaking_updates"`
	Failures          []FailureJSON `json:"failures"`
	Level             string        `json:"level"`
	ExitCode          int           `json:"exit_code"`
}

// ServiceJSON groups the entries of one compose service.
type ServiceJSON[T any] struct {
	Service string `json:"service"`
	Images  []T    `json:"images"`
}

// ServiceFailureJSON is a failed compose service. Error is set when the
// service could not be checked at all.
type ServiceFailureJSON struct {
	Service string        `json:"service"`
	Error   string        `json:"error,omitempty"`
	Images  []FailureJSON `json:"images,omitempty"`
}

// ComposeReportJSON is the JSON form of a compose report.
type ComposeReportJSON struct {
	NoUpdates         []ServiceJSON[string]     `json:"no_updates"`
	CompatibleUpdates []ServiceJSON[UpdateJSON] `json:"compatible_updates"`
	BreakingUpdates   []ServiceJSON[UpdateJSON] `json:"breaking_updates"`
	Failures          []ServiceFailureJSON      `json:"failures"`
	Level             string                    `json:"level"`
	ExitCode          int                       `json:"exit_code"`
}

// NewImageReportJSON converts an image report.
func NewImageReportJSON(r report.ImageReport) ImageReportJSON {
	return ImageReportJSON{
		NoUpdates:         imageNames(r.NoUpdates),
		CompatibleUpdates: updates(r.CompatibleUpdates),
		BreakingUpdates:   updates(r.BreakingUpdates),
		Failures:          failures(r.Failures),
		Level:             r.Level().String(),
		ExitCode:          r.Level().ExitCode(),
	}
}

// NewComposeReportJSON converts a compose report.
func NewComposeReportJSON(r report.ComposeReport) ComposeReportJSON {
	out := ComposeReportJSON{
		NoUpdates:         make([]ServiceJSON[string], 0, len(r.NoUpdates)),
		CompatibleUpdates: make([]ServiceJSON[UpdateJSON], 0, len(r.CompatibleUpdates)),
		BreakingUpdates:   make([]ServiceJSON[UpdateJSON], 0, len(r.BreakingUpdates)),
		Failures:          make([]ServiceFailureJSON, 0, len(r.Failures)),
		Level:             r.Level().String(),
		ExitCode:          r.Level().ExitCode(),
	}
	for _, s := range r.NoUpdates {
		out.NoUpdates = append(out.NoUpdates, ServiceJSON[string]{Service: s.Key, Images: imageNames(s.Value)})
	}
	for _, s := range r.CompatibleUpdates {
		out.CompatibleUpdates = append(out.CompatibleUpdates, ServiceJSON[UpdateJSON]{Service: s.Key, Images: updates(s.Value)})
	}
	for _, s := range r.BreakingUpdates {
		out.BreakingUpdates = append(out.BreakingUpdates, ServiceJSON[UpdateJSON]{Service: s.Key, Images: updates(s.Value)})
	}
	for _, s := range r.Failures {
		f := ServiceFailureJSON{Service: s.Key}
		if s.Value.Err != nil {
			f.Error = s.Value.Err.Error()
		} else {
			f.Images = failures(s.Value.Images)
		}
		out.Failures = append(out.Failures, f)
	}
	return out
}

// WriteImageReportJSON writes an image report in the Response envelope.
func WriteImageReportJSON(w io.Writer, r report.ImageReport) error {
	return WriteJSON(w, reportResponse(r.Level(), len(r.Failures), NewImageReportJSON(r)))
}

// WriteComposeReportJSON writes a compose report in the Response envelope.
func WriteComposeReportJSON(w io.Writer, r report.ComposeReport) error {
	return WriteJSON(w, reportResponse(r.Level(), len(r.Failures), NewComposeReportJSON(r)))
}

func reportResponse(level report.Level, failed int, data interface{}) Response {
	if level == report.Failure {
		return ErrorResponseWithData(fmt.Errorf("%d with failure", failed), data)
	}
	return SuccessResponse(data)
}

func imageNames[V any](items []report.Item[image.Image, V]) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Key.String()
	}
	return out
}

func updates(items []report.Item[image.Image, update.Candidate]) []UpdateJSON {
	out := make([]UpdateJSON, len(items))
	for i, item := range items {
		out[i] = UpdateJSON{
			Image:   item.Key.String(),
			Tag:     item.Value.Tag,
			Version: item.Value.Version.String(),
		}
	}
	return out
}

func failures(items []report.Item[image.Image, error]) []FailureJSON {
	out := make([]FailureJSON, len(items))
	for i, item := range items {
		out[i] = FailureJSON{Image: item.Key.String(), Error: item.Value.Error()}
	}
	return out
}
