package risk

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/llm"
)

// SiteMetricsRow is one row of the internal site performance CSV, kept in
// file order so equal composite scores rank deterministically.
type SiteMetricsRow struct {
	SiteID         string
	EnrollmentRate float64
	DataQuality    float64
}

// LoadSiteMetricsCSV reads the internal performance database. Rows with
// non-numeric metrics are logged and skipped; a missing file yields an empty
// slice.
func LoadSiteMetricsCSV(path string) []SiteMetricsRow {
	file, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("internal site database not found")
		return nil
	}
	defer file.Close()

	records, header, err := readCSV(file)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("internal site database is not valid CSV")
		return nil
	}

	var rows []SiteMetricsRow
	for _, record := range records {
		siteID := columnValue(record, header, "site_id")
		enrollment, errE := parseMetric(columnValue(record, header, "enrollment_rate"))
		quality, errQ := parseMetric(columnValue(record, header, "data_quality"))
		if errE != nil || errQ != nil {
			log.Warn().Str("site_id", siteID).Msg("invalid metric in internal site database")
			continue
		}
		rows = append(rows, SiteMetricsRow{SiteID: siteID, EnrollmentRate: enrollment, DataQuality: quality})
	}
	log.Info().Int("count", len(rows)).Str("path", path).Msg("loaded internal site metrics")
	return rows
}

// LoadSiteGeographies reads the public site database, mapping site id to
// geography. A missing file yields an empty map.
func LoadSiteGeographies(path string) map[string]string {
	file, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("public site database not found")
		return map[string]string{}
	}
	defer file.Close()

	records, header, err := readCSV(file)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("public site database is not valid CSV")
		return map[string]string{}
	}

	geographies := make(map[string]string, len(records))
	for _, record := range records {
		geographies[columnValue(record, header, "site_id")] = columnValue(record, header, "geography")
	}
	return geographies
}

// LoadPopulationCounts reads the patient population report's per-geography
// counts. Missing or malformed reports are logged and yield an empty map.
func LoadPopulationCounts(path string) map[string]int {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("population report not found")
		return map[string]int{}
	}
	var report struct {
		Counts map[string]int `json:"counts"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		log.Error().Err(err).Str("path", path).Msg("population report is not valid JSON")
		return map[string]int{}
	}
	if report.Counts == nil {
		return map[string]int{}
	}
	return report.Counts
}

func readCSV(r io.Reader) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, map[string]int{}, nil
	}
	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.TrimSpace(name)] = i
	}
	return records[1:], header, nil
}

func columnValue(record []string, header map[string]int, name string) string {
	idx, ok := header[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseMetric(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

// SitePerformance is one ranked site in the performance report.
type SitePerformance struct {
	SiteID    string  `json:"site_id"`
	Geography string  `json:"geography"`
	Score     float64 `json:"score"`
}

// RankSitePerformance computes the composite performance score per site and
// returns sites sorted by score descending. The base score weighs enrollment
// rate at 0.7 and data quality at 0.3, multiplied by the geography's patient
// count (1 when the count is zero). Sites without a geography are skipped.
func RankSitePerformance(metrics []SiteMetricsRow, geographies map[string]string, counts map[string]int) []SitePerformance {
	var ranked []SitePerformance
	for _, row := range metrics {
		geography := geographies[row.SiteID]
		if geography == "" {
			log.Debug().Str("site_id", row.SiteID).Msg("no geography for site, skipping")
			continue
		}
		patientCount := counts[geography]
		if patientCount == 0 {
			patientCount = 1
		}
		base := 0.7*row.EnrollmentRate + 0.3*row.DataQuality
		composite := base * float64(patientCount)
		ranked = append(ranked, SitePerformance{
			SiteID:    row.SiteID,
			Geography: geography,
			Score:     math.Round(composite*10000) / 10000,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}

const performancePrompt = "Provide a brief summary of the top clinical trial sites given the following data:\n%s"

// SummarizePerformance asks the collaborator for a short summary of the top
// three sites. Without a collaborator, or on failure, the summary is empty.
func SummarizePerformance(ctx context.Context, client llm.Client, ranked []SitePerformance) string {
	if client == nil {
		log.Warn().Msg("collaborator not configured, skipping performance summary")
		return ""
	}
	top := ranked
	if len(top) > 3 {
		top = top[:3]
	}
	payload, err := json.Marshal(top)
	if err != nil {
		log.Error().Err(err).Msg("could not encode top sites")
		return ""
	}

	text, err := client.Complete(ctx, fmt.Sprintf(performancePrompt, payload))
	if err != nil {
		log.Error().Err(err).Msg("failed to generate performance summary")
		return ""
	}
	return strings.TrimSpace(text)
}

type performanceReport struct {
	RankedSites []SitePerformance `json:"ranked_sites"`
	Summary     string            `json:"summary"`
}

// WritePerformanceReport saves the ranked site report and returns its path.
func WritePerformanceReport(ranked []SitePerformance, summary, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(performanceReport{RankedSites: ranked, Summary: summary}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal ranked site report: %w", err)
	}
	path := filepath.Join(outputDir, "ranked_sites.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write ranked site report: %w", err)
	}
	log.Info().Str("path", path).Int("sites", len(ranked)).Msg("ranked site report saved")
	return path, nil
}
