// Package docs generates protocol-derived documents: the protocol synopsis
// and plain-language recruitment materials.
package docs

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"
)

// ProtocolInfo is the study-level input for document generation.
type ProtocolInfo struct {
	Title            string   `json:"title"`
	ProductName      string   `json:"product_name"`
	TherapeuticArea  string   `json:"therapeutic_area"`
	StudyPhase       string   `json:"study_phase"`
	Indication       string   `json:"indication"`
	PrimaryObjective string   `json:"primary_objective"`
	Endpoints        []string `json:"endpoints"`
	Population       string   `json:"population"`
	Arms             []string `json:"arms"`
	ContactEmail     string   `json:"contact_email"`
}

// LoadProtocolInfo reads the study details file. Missing or malformed files
// are logged and yield nil.
func LoadProtocolInfo(path string) *ProtocolInfo {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("protocol info file not found")
		return nil
	}
	var info ProtocolInfo
	if err := json.Unmarshal(data, &info); err != nil {
		log.Error().Err(err).Str("path", path).Msg("protocol info file is not valid JSON")
		return nil
	}
	return &info
}
