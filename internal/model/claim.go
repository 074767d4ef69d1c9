package model

import "strings"

// Claim is the sanitized first-notice-of-loss record handed to the pipeline.
// All PII has already been replaced with tokens by the caller; the pipeline
// never mutates a claim except to backfill missing display fields.
type Claim struct {
	Source    string     `json:"source,omitempty"`
	Workshop  Workshop   `json:"workshop"`
	Policy    Policy     `json:"policy"`
	Vehicle   Vehicle    `json:"vehicle"`
	Incident  Incident   `json:"incident"`
	Documents Documents  `json:"documents"`
	CVResults *CVResults `json:"cv_results,omitempty"`
}

// Workshop identifies the reporting workshop (tokenized contact fields)
type Workshop struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Policy holds the policy attributes relevant to eligibility
type Policy struct {
	PolicyID     string   `json:"policy_id,omitempty"`
	Status       string   `json:"status"`
	CoverageType string   `json:"coverage_type"`
	Addons       []string `json:"addons"`
	Usage        string   `json:"usage,omitempty"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
}

// Vehicle describes the insured vehicle (registration is a token)
type Vehicle struct {
	VIN                string  `json:"vin,omitempty"`
	RegistrationNumber string  `json:"registration_number,omitempty"`
	Make               string  `json:"make,omitempty"`
	Model              string  `json:"model,omitempty"`
	Year               float64 `json:"year,omitempty"`
	Odometer           float64 `json:"odometer,omitempty"`
}

// Incident describes what happened
type Incident struct {
	Date               string `json:"date,omitempty"`
	Time               string `json:"time,omitempty"`
	Location           string `json:"location,omitempty"`
	ImpactPoint        string `json:"impact_point"`
	Type               string `json:"type"`
	Description        string `json:"description"`
	ThirdPartyInvolved *bool  `json:"third_party_involved,omitempty"`
}

// Documents records which supporting documents were submitted
type Documents struct {
	PoliceReportPresent bool `json:"police_report_present"`
	DLPresent           bool `json:"dl_present"`
	RCPresent           bool `json:"rc_present"`
	PhotosCount         int  `json:"photos_count"`
	EstimatePresent     bool `json:"estimate_present"`
}

// DetectedDamage is a single damaged part reported by computer vision
type DetectedDamage struct {
	PartName   string `json:"part_name"`
	DamageType string `json:"damage_type,omitempty"`
	Severity   string `json:"severity"`
}

// CVResults carries optional computer-vision findings attached to a claim
type CVResults struct {
	DamagedParts             []DetectedDamage `json:"damaged_parts"`
	LicensePlateOCR          string           `json:"license_plate_ocr,omitempty"`
	VINOCR                   string           `json:"vin_ocr,omitempty"`
	OdometerOCR              float64          `json:"odometer_ocr,omitempty"`
	ConsistencyWithIncident  string           `json:"consistency_with_incident,omitempty"`
	PreexistingDamageSignals []string         `json:"preexisting_damage_signals,omitempty"`
}

// ClaimFromRow builds a Claim from a flat sanitized spreadsheet row.
// Row keys follow the intake export: policy_number, car_number, claimant_name,
// incident_time ("<date> <time>"), incident_description, incident_location,
// photos, policy_coverage_type/coverage_type, policy_addons/addons.
func ClaimFromRow(row map[string]any) Claim {
	photos := ToStringList(row["photos"])

	var incidentDate, incidentTime string
	if raw := ToString(row["incident_time"]); raw != "" {
		parts := strings.Fields(raw)
		if len(parts) > 0 {
			incidentDate = parts[0]
		}
		if len(parts) > 1 {
			incidentTime = parts[1]
		}
	}

	coverage := ToString(row["policy_coverage_type"])
	if coverage == "" {
		coverage = ToString(row["coverage_type"])
	}
	if coverage == "" {
		coverage = "Unknown"
	}
	addons := ToStringList(row["policy_addons"])
	if len(addons) == 0 {
		addons = ToStringList(row["addons"])
	}

	return Claim{
		Source: "Other",
		Policy: Policy{
			PolicyID:     ToString(row["policy_number"]),
			Status:       "Unknown",
			CoverageType: coverage,
			Addons:       addons,
		},
		Vehicle: Vehicle{
			RegistrationNumber: ToString(row["car_number"]),
		},
		Incident: Incident{
			Date:        incidentDate,
			Time:        incidentTime,
			Location:    ToString(row["incident_location"]),
			ImpactPoint: "Unknown",
			Type:        "Collision",
			Description: ToString(row["incident_description"]),
		},
		Documents: Documents{
			PhotosCount: len(photos),
		},
	}
}
