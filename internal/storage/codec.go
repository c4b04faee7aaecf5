package storage

import (
	"encoding/json"
	"errors"

	"gonos/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Stamp fills the current version pair in before encoding.
func Stamp(v *model.VersionedRecord) {
	v.SchemaVersion = CurrentSchemaVersion
	v.CodecVersion = CurrentCodecVersion
}

func EncodePopulation(p model.PopulationRecord) ([]byte, error) {
	return json.Marshal(p)
}

func DecodePopulation(data []byte) (model.PopulationRecord, error) {
	var population model.PopulationRecord
	if err := json.Unmarshal(data, &population); err != nil {
		return model.PopulationRecord{}, err
	}
	if err := checkVersion(population.VersionedRecord); err != nil {
		return model.PopulationRecord{}, err
	}
	return population, nil
}

func EncodeSplitReport(r model.SplitReportRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeSplitReport(data []byte) (model.SplitReportRecord, error) {
	var report model.SplitReportRecord
	if err := json.Unmarshal(data, &report); err != nil {
		return model.SplitReportRecord{}, err
	}
	if err := checkVersion(report.VersionedRecord); err != nil {
		return model.SplitReportRecord{}, err
	}
	return report, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
