package kobo

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexFloat decodes a measurement that the form backend may deliver as a
// number, a numeric string, an empty string, or null. Valid is false when
// no usable value was present.
type FlexFloat struct {
	Value float64
	Valid bool
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Unparseable measurement text is treated as absent, not fatal.
			return nil
		}
		f.Value = v
		f.Valid = true
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = v
	f.Valid = true
	return nil
}

// FlexString decodes an identifier that may arrive as a JSON string or a
// bare number (KoBo submission ids are numeric).
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	*s = FlexString(data)
	return nil
}

// Submission is one raw record from the form-collection feed. Planting and
// monitoring forms share this shape; unused fields stay zero.
type Submission struct {
	ID             FlexString `json:"_id"`
	SubmissionTime string     `json:"_submission_time"`
	Geolocation    []*float64 `json:"_geolocation"`

	// Planting form fields
	Institution    string    `json:"institution"`
	LocalName      string    `json:"local_name"`
	ScientificName string    `json:"scientific_name"`
	StudentName    string    `json:"student_name"`
	DatePlanted    string    `json:"date_planted"`
	TreeStage      string    `json:"tree_stage"`
	RCDCm          FlexFloat `json:"rcd_cm"`
	DBHCm          FlexFloat `json:"dbh_cm"`
	HeightM        FlexFloat `json:"height_m"`
	Latitude       FlexFloat `json:"latitude"`
	Longitude      FlexFloat `json:"longitude"`
	Country        string    `json:"country"`
	County         string    `json:"county"`
	SubCounty      string    `json:"sub_county"`
	Ward           string    `json:"ward"`
	Notes          string    `json:"notes"`

	// Monitoring form fields
	TreeID       string `json:"tree_id"`
	MonitorDate  string `json:"monitor_date"`
	TreeStatus   string `json:"tree_status"`
	GrowthStage  string `json:"growth_stage"`
	MonitorNotes string `json:"monitor_notes"`
	MonitorName  string `json:"monitor_name"`
}

// Coordinates resolves the submission's location: the _geolocation pair wins,
// then the separate latitude/longitude fields. Returns nil pointers when no
// usable coordinates were captured.
func (s *Submission) Coordinates() (*float64, *float64) {
	if len(s.Geolocation) >= 2 && s.Geolocation[0] != nil && s.Geolocation[1] != nil {
		lat, lon := *s.Geolocation[0], *s.Geolocation[1]
		return &lat, &lon
	}
	if s.Latitude.Valid && s.Longitude.Valid {
		lat, lon := s.Latitude.Value, s.Longitude.Value
		return &lat, &lon
	}
	return nil, nil
}
