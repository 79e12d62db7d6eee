package csr

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// TLFType classifies a statistical output artifact.
type TLFType string

// TLF types.
const (
	TLFTable   TLFType = "table"
	TLFFigure  TLFType = "figure"
	TLFListing TLFType = "listing"
)

// TLFItem is one table, figure, or listing referenced by the report.
type TLFItem struct {
	ID            string  `json:"tlf_id"`
	Title         string  `json:"title"`
	Type          TLFType `json:"tlf_type"`
	FilePath      string  `json:"file_path"`
	SectionRef    Section `json:"section_reference"`
	Description   string  `json:"description"`
	PageReference string  `json:"page_reference,omitempty"`
}

type tlfCatalog struct {
	TLFItems []TLFItem `json:"tlf_items"`
}

var tlfExtensions = map[string]bool{
	".png": true, ".jpg": true, ".pdf": true, ".html": true, ".csv": true,
}

// LoadTLFItems reads the TLF inventory. A `tlf_catalog.json` in the
// directory wins; without one the directory is scanned and items are
// classified from their file names. A missing directory yields no items.
func LoadTLFItems(dir string) []TLFItem {
	if _, err := os.Stat(dir); err != nil {
		log.Warn().Str("path", dir).Msg("TLF directory not found")
		return nil
	}

	catalogPath := filepath.Join(dir, "tlf_catalog.json")
	if data, err := os.ReadFile(catalogPath); err == nil {
		return loadTLFCatalog(data, dir, catalogPath)
	}
	return scanTLFDirectory(dir)
}

func loadTLFCatalog(data []byte, dir, path string) []TLFItem {
	var catalog tlfCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		log.Error().Err(err).Str("path", path).Msg("TLF catalog is not valid JSON")
		return nil
	}

	items := make([]TLFItem, 0, len(catalog.TLFItems))
	for _, item := range catalog.TLFItems {
		item.FilePath = filepath.Join(dir, item.FilePath)
		if item.SectionRef == "" {
			item.SectionRef = SectionTablesFiguresListings
		} else if !knownSections[item.SectionRef] {
			log.Warn().Str("tlf_id", item.ID).Str("section", string(item.SectionRef)).Msg("unknown section reference in TLF catalog")
			item.SectionRef = SectionTablesFiguresListings
		}
		if item.Type == "" {
			item.Type = TLFTable
		}
		items = append(items, item)
	}
	log.Info().Int("count", len(items)).Msg("loaded TLF items from catalog")
	return items
}

func scanTLFDirectory(dir string) []TLFItem {
	var items []TLFItem
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		if !tlfExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		tlfType := classifyTLF(stem)
		items = append(items, TLFItem{
			ID:          stem,
			Title:       titleCase(stem),
			Type:        tlfType,
			FilePath:    path,
			SectionRef:  SectionTablesFiguresListings,
			Description: "Auto-detected " + string(tlfType),
		})
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("path", dir).Msg("TLF directory scan failed")
	}
	log.Info().Int("count", len(items)).Msg("loaded TLF items from directory scan")
	return items
}

func classifyTLF(stem string) TLFType {
	lower := strings.ToLower(stem)
	switch {
	case strings.HasPrefix(lower, "t_") || strings.Contains(lower, "table"):
		return TLFTable
	case strings.HasPrefix(lower, "f_") || strings.Contains(lower, "figure"):
		return TLFFigure
	case strings.HasPrefix(lower, "l_") || strings.Contains(lower, "listing"):
		return TLFListing
	default:
		return TLFTable
	}
}

func titleCase(stem string) string {
	words := strings.Split(strings.ReplaceAll(stem, "_", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
