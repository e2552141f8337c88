package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/itohio/camcal/pkg/logger"
	"github.com/itohio/camcal/x/camera"
	"github.com/itohio/camcal/x/engine"
	"github.com/itohio/camcal/x/geom"
	"github.com/itohio/camcal/x/mapping"
	"gopkg.in/yaml.v3"
)

// sessionFile is the on-disk layout for a calibration session: the
// camera instance being solved for, plus the point mappings observed
// against it. It round-trips through either JSON or YAML, chosen by
// file extension (or the -format flag).
type sessionFile struct {
	Camera   camera.CameraInstance `json:"camera" yaml:"camera"`
	Mappings []pointMappingJSON    `json:"mappings" yaml:"mappings"`
}

type pointMappingJSON struct {
	Name    string       `json:"name" yaml:"name"`
	Model   geom.Point3D `json:"model" yaml:"model"`
	Screen  geom.Point2D `json:"screen" yaml:"screen"`
	PxError float64      `json:"error" yaml:"error"`
}

// formatFor resolves the serialization format: an explicit -format
// flag wins, otherwise it is inferred from the file extension,
// defaulting to JSON.
func formatFor(path, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return "yaml"
	}
	return "json"
}

func loadSession(path, format string) (sessionFile, []mapping.PointMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sessionFile{}, nil, fmt.Errorf("loadSession: %w", err)
	}
	var sf sessionFile
	switch format {
	case "yaml":
		err = yaml.Unmarshal(data, &sf)
	default:
		err = json.Unmarshal(data, &sf)
	}
	if err != nil {
		return sessionFile{}, nil, fmt.Errorf("loadSession: %w", err)
	}
	mappings := make([]mapping.PointMapping, len(sf.Mappings))
	for i, m := range sf.Mappings {
		mappings[i] = mapping.PointMapping{
			Point:   mapping.NamedPoint{Name: m.Name, Position: m.Model},
			Screen:  m.Screen,
			PxError: m.PxError,
		}
	}
	return sf, mappings, nil
}

func saveSession(path, format string, cam camera.CameraInstance, mappings []mapping.PointMapping) error {
	sf := sessionFile{Camera: cam}
	for _, m := range mappings {
		sf.Mappings = append(sf.Mappings, pointMappingJSON{
			Name:    m.Point.Name,
			Model:   m.Point.Position,
			Screen:  m.Screen,
			PxError: m.PxError,
		})
	}
	var data []byte
	var err error
	switch format {
	case "yaml":
		data, err = yaml.Marshal(sf)
	default:
		data, err = json.MarshalIndent(sf, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("saveSession: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func main() {
	input := flag.String("in", "", "input session file (camera + point mappings), JSON or YAML")
	output := flag.String("out", "", "output session file (default: overwrite input)")
	format := flag.String("format", "", "session file format: json or yaml (default: inferred from extension)")
	step := flag.String("step", "locate", "pipeline step to run: locate, orient, reorient, calibrate-lens")
	nPhi := flag.Int("n-phi", 30, "phi grid resolution for the location solver")
	nTheta := flag.Int("n-theta", 500, "theta grid resolution for the location solver")
	maxModelError := flag.Int("max-model-error", 1, "max per-mapping pixel error to trust for location pairs")
	lensOrder := flag.Int("lens-order", camera.CalibrationOrder, "compressed polynomial order for lens calibration")
	help := flag.Bool("help", false, "show help message")

	flag.Parse()

	if *help || *input == "" {
		flag.PrintDefaults()
		if *input == "" {
			os.Exit(1)
		}
		return
	}
	if *output == "" {
		*output = *input
	}

	inFormat := formatFor(*input, *format)
	outFormat := formatFor(*output, *format)

	sf, mappings, err := loadSession(*input, inFormat)
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to load session")
		os.Exit(1)
	}
	cam := sf.Camera

	switch *step {
	case "locate":
		residual, err := engine.LocateUsingModelLines(&cam, mappings, float64(*maxModelError), *nPhi, *nTheta)
		if err != nil {
			logger.Log.Error().Err(err).Msg("locate failed")
			os.Exit(1)
		}
		logger.Log.Info().Float64("residual", residual).Msg("located camera")
	case "orient":
		totalErr, err := engine.Orient(&cam, mappings)
		if err != nil {
			logger.Log.Error().Err(err).Msg("orient failed")
			os.Exit(1)
		}
		logger.Log.Info().Float64("total_error", totalErr).Msg("oriented camera")
	case "reorient":
		totalErr := engine.Reorient(&cam, mappings)
		logger.Log.Info().Float64("total_error", totalErr).Msg("reoriented camera")
	case "calibrate-lens":
		polys, err := engine.CalibrateLens(cam, mappings, *lensOrder, 0, 1.5)
		if err != nil {
			logger.Log.Error().Err(err).Msg("lens calibration failed")
			os.Exit(1)
		}
		cam.Lens.Polys = polys
		logger.Log.Info().Msg("calibrated lens")
	default:
		fmt.Fprintf(os.Stderr, "unknown step %q\n", *step)
		os.Exit(1)
	}

	if err := saveSession(*output, outFormat, cam, mappings); err != nil {
		logger.Log.Error().Err(err).Msg("failed to save session")
		os.Exit(1)
	}
}
