package models

// Canonical column names for tree/plot import files. Incoming headers are
// lowercased and trimmed before being matched against these.
const (
	FieldPointX            = "point x"
	FieldPointY            = "point y"
	FieldAddress           = "address"
	FieldPlotWidth         = "plot width"
	FieldPlotLength        = "plot length"
	FieldPlotType          = "plot type"
	FieldPowerlineConflict = "powerline conflict"
	FieldSidewalk          = "sidewalk"
	FieldReadOnly          = "read only"
	FieldOrigIDNumber      = "original id number"
	FieldIDNumber          = "id number"
	FieldTreePresent       = "tree present"
	FieldGenus             = "genus"
	FieldSpecies           = "species"
	FieldCultivar          = "cultivar"
	FieldOtherPartOfName   = "other part of name"
	FieldDiameter          = "diameter"
	FieldTreeHeight        = "tree height"
	FieldCanopyHeight      = "canopy height"
	FieldDatePlanted       = "date planted"
	FieldTreeCondition     = "condition"
	FieldCanopyCondition   = "canopy condition"
	FieldActions           = "actions"
	FieldPests             = "pests and diseases"
	FieldURL               = "url"
	FieldNotes             = "notes"
	FieldOwner             = "owner"
	FieldSponsor           = "sponsor"
	FieldSteward           = "steward"
	FieldLocalProjects     = "local projects"
	FieldDataSource        = "data source"
)

// Canonical column names for species catalog import files.
const (
	FieldCommonName      = "common name"
	FieldUSDASymbol      = "usda symbol"
	FieldAltSymbol       = "alternative symbol"
	FieldITreeCode       = "itree code"
	FieldFamily          = "family"
	FieldNativeStatus    = "native status"
	FieldFallColors      = "fall colors"
	FieldEdible          = "palatable human"
	FieldFlowering       = "flower conspicuous"
	FieldFloweringPeriod = "flowering period"
	FieldFruitPeriod     = "fruit or nut period"
	FieldWildlife        = "wildlife"
	FieldMaxDiameter     = "max diameter at breast height"
	FieldMaxHeight       = "max height"
	FieldFactSheet       = "fact sheet"
	FieldSpeciesID       = "id"
	FieldTreeCount       = "tree count"
)

// TreeImportFields is the full export/import column order for tree events.
var TreeImportFields = []string{
	FieldPointX, FieldPointY, FieldAddress, FieldPlotWidth, FieldPlotLength,
	FieldPlotType, FieldPowerlineConflict, FieldSidewalk, FieldReadOnly,
	FieldIDNumber, FieldTreePresent, FieldGenus, FieldSpecies, FieldCultivar,
	FieldOtherPartOfName, FieldDiameter, FieldTreeHeight, FieldOrigIDNumber,
	FieldCanopyHeight, FieldDatePlanted, FieldTreeCondition,
	FieldCanopyCondition, FieldActions, FieldPests, FieldURL, FieldNotes,
	FieldOwner, FieldSponsor, FieldSteward, FieldLocalProjects,
	FieldDataSource,
}

// SpeciesImportFields is the full export/import column order for species
// catalog events.
var SpeciesImportFields = []string{
	FieldGenus, FieldSpecies, FieldCultivar, FieldOtherPartOfName,
	FieldCommonName, FieldUSDASymbol, FieldAltSymbol, FieldITreeCode,
	FieldFamily, FieldNativeStatus, FieldFallColors, FieldEdible,
	FieldFlowering, FieldFloweringPeriod, FieldFruitPeriod, FieldWildlife,
	FieldMaxDiameter, FieldMaxHeight, FieldFactSheet,
}

// TreeRequiredFields must be present as columns for a tree import file to
// pass file verification.
var TreeRequiredFields = []string{FieldPointX, FieldPointY}

// SpeciesRequiredFields must be present as columns for a species import
// file to pass file verification.
var SpeciesRequiredFields = []string{FieldGenus, FieldCommonName}
