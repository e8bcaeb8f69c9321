package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/baldhumanity/evonet/neat"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

type versionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

func currentVersion() versionedRecord {
	return versionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func checkVersion(v versionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, v.SchemaVersion, v.CodecVersion)
	}
	return nil
}

// score is an error value. JSON has no infinity, so non-finite scores are written as
// null and read back as +Inf, the error of a genome that could not be evaluated.
type score float64

func (s score) MarshalJSON() ([]byte, error) {
	v := float64(s)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (s *score) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = score(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = score(v)
	return nil
}

type bestJSON struct {
	versionedRecord
	RunID      string        `json:"run_id"`
	Generation int           `json:"generation"`
	Error      score         `json:"error"`
	Genome     neat.Snapshot `json:"genome"`
}

type historyJSON struct {
	versionedRecord
	History []score `json:"history"`
}

func EncodeBest(r BestRecord) ([]byte, error) {
	return json.Marshal(bestJSON{
		versionedRecord: currentVersion(),
		RunID:           r.RunID,
		Generation:      r.Generation,
		Error:           score(r.Error),
		Genome:          r.Genome,
	})
}

func DecodeBest(data []byte) (BestRecord, error) {
	var in bestJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return BestRecord{}, err
	}
	if err := checkVersion(in.versionedRecord); err != nil {
		return BestRecord{}, err
	}
	return BestRecord{
		RunID:      in.RunID,
		Generation: in.Generation,
		Error:      float64(in.Error),
		Genome:     in.Genome,
	}, nil
}

func EncodeHistory(history []float64) ([]byte, error) {
	out := historyJSON{versionedRecord: currentVersion(), History: make([]score, len(history))}
	for i, v := range history {
		out.History[i] = score(v)
	}
	return json.Marshal(out)
}

func DecodeHistory(data []byte) ([]float64, error) {
	var in historyJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	if err := checkVersion(in.versionedRecord); err != nil {
		return nil, err
	}
	history := make([]float64, len(in.History))
	for i, v := range in.History {
		history[i] = float64(v)
	}
	return history, nil
}
