package app

import (
	"context"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tphakala/wildlife-analytics/internal/datastore"
	"github.com/tphakala/wildlife-analytics/internal/errors"
	"github.com/tphakala/wildlife-analytics/internal/logger"
)

// SeedFile is the YAML document accepted by Import.
//
//	cameras:
//	  - {id: 1, organization_id: 10, name: Ridge North}
//	species:
//	  - {id: 2, common_name: Iberian Lynx, scientific_name: Lynx pardinus, conservation_status: EN}
//	detections:
//	  - {camera_id: 1, species_id: 2, confidence: 0.91, timestamp: 2024-05-01T05:12:00Z}
type SeedFile struct {
	Cameras    []datastore.Camera    `yaml:"cameras"`
	Species    []datastore.Species   `yaml:"species"`
	Detections []datastore.Detection `yaml:"detections"`
}

// ImportResult counts the rows written by Import.
type ImportResult struct {
	Cameras    int `json:"cameras" yaml:"cameras"`
	Species    int `json:"species" yaml:"species"`
	Detections int `json:"detections" yaml:"detections"`
}

// DecodeSeedFile parses a seed document.
func DecodeSeedFile(r io.Reader) (*SeedFile, error) {
	var seed SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.New(err).
			Component("app").
			Category(errors.CategoryValidation).
			Context("operation", "decode_seed_file").
			Build()
	}
	return &seed, nil
}

// Import upserts cameras and species and inserts detections. Cameras and
// species are written first so detections can reference them.
func (a *App) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var res ImportResult

	seed, err := DecodeSeedFile(r)
	if err != nil {
		return res, err
	}

	for i := range seed.Cameras {
		if err := a.Store.SaveCamera(ctx, &seed.Cameras[i]); err != nil {
			return res, err
		}
		res.Cameras++
	}
	for i := range seed.Species {
		if err := a.Store.SaveSpecies(ctx, &seed.Species[i]); err != nil {
			return res, err
		}
		res.Species++
	}
	if len(seed.Species) > 0 {
		a.Catalog.Invalidate()
	}
	if len(seed.Detections) > 0 {
		if err := a.Store.SaveDetections(ctx, seed.Detections); err != nil {
			return res, err
		}
		res.Detections = len(seed.Detections)
	}

	a.log.Info("seed data imported",
		logger.Int("cameras", res.Cameras),
		logger.Int("species", res.Species),
		logger.Int("detections", res.Detections))
	return res, nil
}
