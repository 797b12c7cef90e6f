package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for card documents.
//
// Player names use the simple analyzer: stemming "Williams" to "william"
// would merge unrelated players. Set names are English text. Sport, year,
// brand and card type are keywords so they can be filtered and faceted
// exactly.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	playerFieldMapping := bleve.NewTextFieldMapping()
	playerFieldMapping.Analyzer = simple.Name
	playerFieldMapping.Store = true
	playerFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("player_name", playerFieldMapping)

	setNameFieldMapping := bleve.NewTextFieldMapping()
	setNameFieldMapping.Analyzer = en.AnalyzerName
	setNameFieldMapping.Store = true
	setNameFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("set_name", setNameFieldMapping)

	for _, field := range []string{"id", "card_type", "sport", "year", "brand"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = field != "id"
		docMapping.AddFieldMappingsAt(field, fm)
	}

	for _, field := range []string{"card_id", "card_number", "set_id"} {
		fm := bleve.NewNumericFieldMapping()
		fm.Store = true
		docMapping.AddFieldMappingsAt(field, fm)
	}

	ownedFieldMapping := bleve.NewBooleanFieldMapping()
	ownedFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("owned", ownedFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
